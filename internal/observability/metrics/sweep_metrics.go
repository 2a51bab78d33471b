package metrics

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SweepMetrics tracks the overdue invoice sweep worker.
type SweepMetrics struct {
	sweepDuration   *prometheus.HistogramVec
	invoicesFlipped *prometheus.CounterVec
	overdueBacklog  prometheus.Gauge
}

var (
	sweepMetricsOnce sync.Once
	sweepMetrics     *SweepMetrics
)

// Sweep returns the process-wide sweep metrics.
func Sweep() *SweepMetrics {
	return SweepWithConfig(Config{})
}

// SweepWithConfig returns the sweep metrics, initializing them once.
func SweepWithConfig(cfg Config) *SweepMetrics {
	sweepMetricsOnce.Do(func() {
		sweepMetrics = newSweepMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return sweepMetrics
}

// ResetSweepMetricsForTest clears the singleton between tests.
func ResetSweepMetricsForTest() {
	sweepMetricsOnce = sync.Once{}
	sweepMetrics = nil
}

func newSweepMetrics(registerer prometheus.Registerer, cfg Config) *SweepMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "faktura"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}

	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	sweepDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:        "faktura_overdue_sweep_duration_seconds",
			Help:        "Duration of a single overdue invoice sweep pass.",
			Buckets:     []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 30},
			ConstLabels: constLabels,
		},
		[]string{"result"}, // success | error
	)

	invoicesFlipped := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "faktura_invoices_marked_overdue_total",
			Help:        "Invoices flipped from sent to overdue by the sweep worker.",
			ConstLabels: constLabels,
		},
		[]string{},
	)

	overdueBacklog := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name:        "faktura_overdue_invoices",
			Help:        "Invoices currently in overdue status.",
			ConstLabels: constLabels,
		},
	)

	for _, collector := range []prometheus.Collector{sweepDuration, invoicesFlipped, overdueBacklog} {
		if err := registerer.Register(collector); err != nil {
			if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
				switch existing := already.ExistingCollector.(type) {
				case *prometheus.HistogramVec:
					sweepDuration = existing
				case *prometheus.CounterVec:
					invoicesFlipped = existing
				case prometheus.Gauge:
					overdueBacklog = existing
				}
				continue
			}
		}
	}

	return &SweepMetrics{
		sweepDuration:   sweepDuration,
		invoicesFlipped: invoicesFlipped,
		overdueBacklog:  overdueBacklog,
	}
}

// ObserveSweep records one sweep pass.
func (m *SweepMetrics) ObserveSweep(duration time.Duration, flipped int, err error) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "error"
	}
	m.sweepDuration.WithLabelValues(result).Observe(duration.Seconds())
	if flipped > 0 {
		m.invoicesFlipped.WithLabelValues().Add(float64(flipped))
	}
}

// SetOverdueBacklog records the current overdue invoice count.
func (m *SweepMetrics) SetOverdueBacklog(count int64) {
	if m == nil {
		return
	}
	m.overdueBacklog.Set(float64(count))
}

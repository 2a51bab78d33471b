package observability

import (
	"github.com/smallbiznis/faktura/internal/config"
	"github.com/smallbiznis/faktura/internal/observability/logger"
	"github.com/smallbiznis/faktura/internal/observability/metrics"
	"github.com/smallbiznis/faktura/internal/observability/tracing"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/fx"
)

// Module wires logging, tracing and HTTP metrics.
var Module = fx.Module("observability",
	logger.Module,
	fx.Provide(tracing.NewProvider),
	fx.Provide(func() metric.MeterProvider {
		return otel.GetMeterProvider()
	}),
	fx.Provide(func(cfg config.Config, provider metric.MeterProvider) (*metrics.HTTPMetrics, error) {
		return metrics.NewHTTPMetrics(metrics.Config{
			ServiceName: cfg.ServiceName,
			Environment: cfg.Environment,
		}, provider)
	}),
)

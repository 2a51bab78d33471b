package scheduler

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/faktura/internal/clock"
	"github.com/smallbiznis/faktura/internal/config"
	"github.com/smallbiznis/faktura/internal/events"
	invoicedomain "github.com/smallbiznis/faktura/internal/invoice/domain"
	"github.com/smallbiznis/faktura/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultInterval  = time.Minute
	defaultBatchSize = 100
)

// Config controls the overdue sweep cadence.
type Config struct {
	Interval  time.Duration
	BatchSize int
}

func (c Config) withDefaults() Config {
	if c.Interval <= 0 {
		c.Interval = defaultInterval
	}
	if c.BatchSize <= 0 {
		c.BatchSize = defaultBatchSize
	}
	return c
}

// Scheduler flips sent invoices past their due date to overdue.
type Scheduler struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	outbox  *events.Outbox
	metrics *metrics.SweepMetrics
	cfg     Config
}

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Clock  clock.Clock
	Outbox *events.Outbox
	Cfg    config.Config
}

func New(p Params) *Scheduler {
	cfg := Config{
		Interval:  p.Cfg.OverdueSweepInterval,
		BatchSize: p.Cfg.OverdueSweepBatch,
	}.withDefaults()

	return &Scheduler{
		db:      p.DB,
		log:     p.Log.Named("scheduler"),
		genID:   p.GenID,
		clock:   p.Clock,
		outbox:  p.Outbox,
		metrics: metrics.Sweep(),
		cfg:     cfg,
	}
}

// RunForever sweeps on a fixed interval until the context is cancelled.
func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.RunOnce(ctx); err != nil {
				s.log.Warn("overdue sweep failed", zap.Error(err))
			}
		}
	}
}

// RunOnce performs a full sweep, draining batches until no work is
// left. Returns the number of invoices marked overdue.
func (s *Scheduler) RunOnce(ctx context.Context) (int, error) {
	started := time.Now()
	total := 0

	for {
		flipped, err := s.sweepBatch(ctx)
		if err != nil {
			s.metrics.ObserveSweep(time.Since(started), total, err)
			return total, err
		}
		total += flipped
		if flipped < s.cfg.BatchSize {
			break
		}
	}

	if backlog, err := s.overdueBacklog(ctx); err == nil {
		s.metrics.SetOverdueBacklog(backlog)
	}

	s.metrics.ObserveSweep(time.Since(started), total, nil)
	if total > 0 {
		s.log.Info("overdue sweep completed", zap.Int("flipped", total))
	}
	return total, nil
}

type sweepRow struct {
	ID        snowflake.ID
	AccountID snowflake.ID
	Number    string
}

func (s *Scheduler) sweepBatch(ctx context.Context) (int, error) {
	now := s.clock.Now()
	flipped := 0

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rows []sweepRow
		if err := tx.WithContext(ctx).Raw(
			`SELECT id, account_id, number
			 FROM invoices
			 WHERE status = ? AND due_at IS NOT NULL AND due_at < ?
			 ORDER BY due_at ASC, id ASC
			 FOR UPDATE SKIP LOCKED
			 LIMIT ?`,
			invoicedomain.StatusSent,
			now,
			s.cfg.BatchSize,
		).Scan(&rows).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}

		for _, row := range rows {
			result := tx.WithContext(ctx).Exec(
				`UPDATE invoices
				 SET status = ?, updated_at = ?
				 WHERE id = ? AND status = ?`,
				invoicedomain.StatusOverdue,
				now,
				row.ID,
				invoicedomain.StatusSent,
			)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				continue
			}

			if err := s.outbox.PublishTx(ctx, tx, events.Event{
				AccountID: row.AccountID,
				Type:      events.EventInvoiceOverdue,
				Payload: events.InvoicePayload{
					InvoiceID: row.ID.String(),
					Number:    row.Number,
					Status:    string(invoicedomain.StatusOverdue),
				}.ToMap(),
				DedupeKey: "invoice_overdue:" + row.ID.String(),
			}); err != nil {
				return err
			}
			flipped++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return flipped, nil
}

func (s *Scheduler) overdueBacklog(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM invoices WHERE status = ?`,
		invoicedomain.StatusOverdue,
	).Scan(&count).Error
	return count, err
}

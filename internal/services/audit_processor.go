package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/tasklight/backend/internal/infrastructure/auditlog"
	"github.com/tasklight/backend/repository"
)

// ConnectionHealth abstracts the connection monitor functionality.
type ConnectionHealth interface {
	IsOnline() bool
}

// ProcessorConfig controls how frequently the spool is drained.
type ProcessorConfig struct {
	Interval  time.Duration
	BatchSize int
}

// AuditProcessor drains the local audit spool into the relational store.
type AuditProcessor struct {
	spool   *auditlog.Spool
	monitor ConnectionHealth
	events  repository.EventRepository
	logger  *zap.Logger
	cron    *cron.Cron
	cfg     ProcessorConfig
}

func NewAuditProcessor(
	spool *auditlog.Spool,
	monitor ConnectionHealth,
	events repository.EventRepository,
	logger *zap.Logger,
	cfg ProcessorConfig,
) *AuditProcessor {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ap := &AuditProcessor{
		spool:   spool,
		monitor: monitor,
		events:  events,
		logger:  logger,
		cfg:     cfg,
		cron:    cron.New(cron.WithSeconds()),
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	_, _ = ap.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if err := ap.Drain(ctx); err != nil {
			ap.logger.Error("audit spool drain failed", zap.Error(err))
		}
	})

	return ap
}

// Start launches the cron scheduler.
func (ap *AuditProcessor) Start() {
	if ap == nil || ap.cron == nil {
		return
	}
	ap.cron.Start()
	ap.logger.Info("audit processor started")
}

// Stop gracefully stops the scheduler.
func (ap *AuditProcessor) Stop(ctx context.Context) {
	if ap == nil || ap.cron == nil {
		return
	}
	stopCtx := ap.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	ap.logger.Info("audit processor stopped")
}

// Drain moves one batch of spooled events into the relational store.
// Events stay in the spool until the batch insert succeeds.
func (ap *AuditProcessor) Drain(ctx context.Context) error {
	if ap == nil || ap.spool == nil || ap.events == nil {
		return nil
	}
	if ap.monitor != nil && !ap.monitor.IsOnline() {
		ap.logger.Debug("skipping audit drain (offline)")
		return nil
	}

	events, err := ap.spool.GetBatch(ap.cfg.BatchSize)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return nil
	}

	if err := ap.events.AppendBatch(ctx, events); err != nil {
		return err
	}
	if err := ap.spool.Remove(events); err != nil {
		ap.logger.Warn("failed to purge drained audit events", zap.Error(err))
	}

	ap.logger.Debug("audit events drained", zap.Int("count", len(events)))
	return nil
}

// Size returns the number of spooled events.
func (ap *AuditProcessor) Size() int {
	if ap == nil || ap.spool == nil {
		return 0
	}
	size, err := ap.spool.Size()
	if err != nil {
		return 0
	}
	return size
}

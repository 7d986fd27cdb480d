package services

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/tasklight/backend/repository"
)

// RetentionJob purges audit events older than the configured horizon once a
// day.
type RetentionJob struct {
	events repository.EventRepository
	days   int
	logger *zap.Logger
	cron   *cron.Cron
}

func NewRetentionJob(events repository.EventRepository, days int, logger *zap.Logger) *RetentionJob {
	if days <= 0 {
		days = 90
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	job := &RetentionJob{
		events: events,
		days:   days,
		logger: logger,
		cron:   cron.New(),
	}

	_, _ = job.cron.AddFunc("@daily", func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		job.Purge(ctx)
	})

	return job
}

func (j *RetentionJob) Start() {
	if j == nil || j.cron == nil {
		return
	}
	j.cron.Start()
}

func (j *RetentionJob) Stop(ctx context.Context) {
	if j == nil || j.cron == nil {
		return
	}
	stopCtx := j.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
}

// Purge deletes expired audit events and logs the outcome.
func (j *RetentionJob) Purge(ctx context.Context) {
	cutoff := time.Now().AddDate(0, 0, -j.days)
	removed, err := j.events.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		j.logger.Error("audit retention purge failed", zap.Error(err))
		return
	}
	if removed > 0 {
		j.logger.Info("audit events purged", zap.Int64("count", removed), zap.Time("cutoff", cutoff))
	}
}

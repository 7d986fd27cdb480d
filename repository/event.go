package repository

import (
	"context"
	"time"

	"github.com/tasklight/backend/domain"
)

type EventRepository interface {
	AppendBatch(ctx context.Context, events []domain.Event) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

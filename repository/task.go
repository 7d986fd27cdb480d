package repository

import (
	"context"

	"github.com/tasklight/backend/domain"
)

// TaskRepository scopes every operation to an owner. There is deliberately no
// unscoped lookup: a task owned by someone else is indistinguishable from one
// that does not exist.
type TaskRepository interface {
	ListByOwner(ctx context.Context, ownerID int64) ([]domain.Task, error)
	GetByID(ctx context.Context, id, ownerID int64) (*domain.Task, error)
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	SetComplete(ctx context.Context, id, ownerID int64, isComplete bool) (*domain.Task, error)
	Delete(ctx context.Context, id, ownerID int64) (*domain.Task, error)
}

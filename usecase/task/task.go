package task

import (
	"context"

	"go.uber.org/zap"

	"github.com/tasklight/backend/domain"
	"github.com/tasklight/backend/repository"
	"github.com/tasklight/backend/usecase"
)

type UseCase struct {
	tasks  repository.TaskRepository
	audit  usecase.AuditSink
	logger *zap.Logger
}

func New(tasks repository.TaskRepository, audit usecase.AuditSink, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:  tasks,
		audit:  audit,
		logger: logger,
	}
}

// ListTasks returns the owner's tasks ordered by id ascending.
func (uc *UseCase) ListTasks(ctx context.Context, ownerID int64) ([]domain.Task, error) {
	return uc.tasks.ListByOwner(ctx, ownerID)
}

func (uc *UseCase) GetTask(ctx context.Context, id, ownerID int64) (*domain.Task, error) {
	return uc.tasks.GetByID(ctx, id, ownerID)
}

// CreateTask stores a new task owned by the caller. Any owner submitted by
// the client is ignored; ownership always comes from the authenticated id.
func (uc *UseCase) CreateTask(ctx context.Context, ownerID int64, name string, isComplete bool) (*domain.Task, error) {
	task := &domain.Task{
		Name:       name,
		IsComplete: isComplete,
		UserID:     ownerID,
	}
	created, err := uc.tasks.Create(ctx, task)
	if err != nil {
		return nil, err
	}

	uc.record(ctx, ownerID, domain.AuditTaskCreated, created.ID)
	return created, nil
}

// UpdateTask applies the completion flag to an owned task. The request body
// also carries a name, but it is accepted and discarded: only isComplete is
// mutable through this API.
func (uc *UseCase) UpdateTask(ctx context.Context, id, ownerID int64, isComplete bool) (*domain.Task, error) {
	updated, err := uc.tasks.SetComplete(ctx, id, ownerID, isComplete)
	if err != nil {
		return nil, err
	}

	uc.record(ctx, ownerID, domain.AuditTaskUpdated, id)
	return updated, nil
}

// DeleteTask removes an owned task and returns its last known state.
func (uc *UseCase) DeleteTask(ctx context.Context, id, ownerID int64) (*domain.Task, error) {
	deleted, err := uc.tasks.Delete(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	uc.record(ctx, ownerID, domain.AuditTaskDeleted, id)
	return deleted, nil
}

func (uc *UseCase) record(ctx context.Context, actorID int64, action string, taskID int64) {
	if uc.audit == nil {
		return
	}
	event := domain.Event{
		ActorID:  actorID,
		Action:   action,
		Entity:   "task",
		EntityID: taskID,
	}
	if err := uc.audit.Record(ctx, event); err != nil {
		uc.logger.Warn("failed to record audit event", zap.String("action", action), zap.Error(err))
	}
}

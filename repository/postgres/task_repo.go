package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tasklight/backend/domain"
	"github.com/tasklight/backend/repository"
)

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository returns a Postgres-backed implementation of TaskRepository.
// Every statement carries the owner id in its predicate, so a task belonging
// to another user surfaces as ErrTaskNotFound.
func NewTaskRepository(pool *pgxpool.Pool) repository.TaskRepository {
	return &taskRepository{pool: pool}
}

func (r *taskRepository) ListByOwner(ctx context.Context, ownerID int64) ([]domain.Task, error) {
	const query = `
	SELECT id, name, is_complete, user_id, created_at, updated_at
	FROM tasks
	WHERE user_id = $1
	ORDER BY id ASC
	`
	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []domain.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

func (r *taskRepository) GetByID(ctx context.Context, id, ownerID int64) (*domain.Task, error) {
	const query = `
	SELECT id, name, is_complete, user_id, created_at, updated_at
	FROM tasks
	WHERE id = $1 AND user_id = $2
	`
	return scanTask(r.pool.QueryRow(ctx, query, id, ownerID))
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO tasks (name, is_complete, user_id)
	VALUES ($1, $2, $3)
	RETURNING id, created_at, updated_at
	`
	err := r.pool.QueryRow(ctx, query, task.Name, task.IsComplete, task.UserID).
		Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (r *taskRepository) SetComplete(ctx context.Context, id, ownerID int64, isComplete bool) (*domain.Task, error) {
	// Only the completion flag is mutable; the stored name is untouched.
	const query = `
	UPDATE tasks
	SET is_complete = $3,
		updated_at = NOW()
	WHERE id = $1 AND user_id = $2
	RETURNING id, name, is_complete, user_id, created_at, updated_at
	`
	return scanTask(r.pool.QueryRow(ctx, query, id, ownerID, isComplete))
}

func (r *taskRepository) Delete(ctx context.Context, id, ownerID int64) (*domain.Task, error) {
	const query = `
	DELETE FROM tasks
	WHERE id = $1 AND user_id = $2
	RETURNING id, name, is_complete, user_id, created_at, updated_at
	`
	return scanTask(r.pool.QueryRow(ctx, query, id, ownerID))
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var task domain.Task
	err := row.Scan(
		&task.ID,
		&task.Name,
		&task.IsComplete,
		&task.UserID,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}
	return &task, nil
}

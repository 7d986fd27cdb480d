package repository

import (
	"context"

	"github.com/tasklight/backend/domain"
)

type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByUserName(ctx context.Context, userName string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}

package account

import (
	"context"

	"go.uber.org/zap"

	"github.com/tasklight/backend/domain"
	"github.com/tasklight/backend/repository"
)

// UseCase exposes the authenticated user's own record. The API never mutates
// users, so this surface is read-only.
type UseCase struct {
	users  repository.UserRepository
	logger *zap.Logger
}

func New(users repository.UserRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:  users,
		logger: logger,
	}
}

func (uc *UseCase) GetAccount(ctx context.Context, userID int64) (*domain.User, error) {
	return uc.users.GetByID(ctx, userID)
}

package services

import (
	"context"

	"task-tracker/backend/internal/logger"
	"task-tracker/backend/internal/models"
	"task-tracker/backend/internal/repositories"

	"go.uber.org/zap"
)

type UserService interface {
	ListUsers(ctx context.Context, actor models.Actor, role *models.Role) ([]models.User, error)
}

type UserServiceImpl struct {
	store  *repositories.Store
	logger *zap.Logger
}

func NewUserService(store *repositories.Store, log *zap.Logger) *UserServiceImpl {
	return &UserServiceImpl{store: store, logger: logger.OrNop(log)}
}

// ListUsers is lead only. An unknown role filter is ignored.
func (s *UserServiceImpl) ListUsers(ctx context.Context, actor models.Actor, role *models.Role) ([]models.User, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if !CanListUsers(actor) {
		return nil, forbidden("only leads can list users")
	}

	var preds repositories.Predicates
	if role != nil && role.Valid() {
		preds = preds.And(repositories.RoleIs(*role))
	}
	users, err := s.store.Users.List(ctx, preds)
	if err != nil {
		s.logger.Error("failed to list users", zap.Error(err))
		return nil, internal(err, "failed to list users")
	}
	return users, nil
}

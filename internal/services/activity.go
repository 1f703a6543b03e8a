package services

import (
	"context"

	"task-tracker/backend/internal/logger"
	"task-tracker/backend/internal/models"
	"task-tracker/backend/internal/repositories"

	"go.uber.org/zap"
)

type LogFilter struct {
	EntityType *models.EntityType
	Action     *models.LogAction
	Limit      int
}

type ActivityLogService interface {
	ListLogs(ctx context.Context, actor models.Actor, filter LogFilter) ([]models.ActivityLogView, error)
}

type ActivityLogServiceImpl struct {
	store  *repositories.Store
	logger *zap.Logger
}

func NewActivityLogService(store *repositories.Store, log *zap.Logger) *ActivityLogServiceImpl {
	return &ActivityLogServiceImpl{store: store, logger: logger.OrNop(log)}
}

// ListLogs returns the newest entries first. Team members only see entries
// they authored.
func (s *ActivityLogServiceImpl) ListLogs(ctx context.Context, actor models.Actor, filter LogFilter) ([]models.ActivityLogView, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	var preds repositories.Predicates
	if !actor.IsLead() {
		preds = preds.And(repositories.ActorIs(actor.ID))
	}
	if filter.EntityType != nil && filter.EntityType.Valid() {
		preds = preds.And(repositories.EntityTypeIs(*filter.EntityType))
	}
	if filter.Action != nil && filter.Action.Valid() {
		preds = preds.And(repositories.ActionIs(*filter.Action))
	}

	logs, err := s.store.Activity.List(ctx, preds, filter.Limit)
	if err != nil {
		s.logger.Error("failed to list activity logs", zap.Error(err))
		return nil, internal(err, "failed to list activity logs")
	}

	entities, err := s.resolveEntities(ctx, logs)
	if err != nil {
		s.logger.Error("failed to resolve activity log entities", zap.Error(err))
		return nil, internal(err, "failed to list activity logs")
	}

	views := make([]models.ActivityLogView, 0, len(logs))
	for i := range logs {
		view := logs[i].View()
		if ref, err := logs[i].Entity(); err == nil {
			view.Entity = entities.lookup(ref)
		}
		views = append(views, view)
	}
	return views, nil
}

type entitySummaries struct {
	tasks map[int64]string
	users map[int64]*models.User
}

func (e entitySummaries) lookup(ref models.EntityRef) *models.EntitySummary {
	switch r := ref.(type) {
	case models.TaskEntity:
		if title, ok := e.tasks[r.ID]; ok {
			return &models.EntitySummary{ID: r.ID, Label: title}
		}
	case models.UserEntity:
		if user, ok := e.users[r.ID]; ok {
			return &models.EntitySummary{ID: r.ID, Label: user.Name}
		}
	}
	return nil
}

// resolveEntities batches one lookup per entity kind.
func (s *ActivityLogServiceImpl) resolveEntities(ctx context.Context, logs []models.ActivityLog) (entitySummaries, error) {
	var taskIDs, userIDs []int64
	for i := range logs {
		ref, err := logs[i].Entity()
		if err != nil {
			s.logger.Warn("activity log with unknown entity type",
				zap.Int64("log_id", logs[i].ID),
				zap.String("entity_type", string(logs[i].EntityType)))
			continue
		}
		switch r := ref.(type) {
		case models.TaskEntity:
			taskIDs = append(taskIDs, r.ID)
		case models.UserEntity:
			userIDs = append(userIDs, r.ID)
		}
	}

	tasks, err := s.store.Tasks.Titles(ctx, taskIDs)
	if err != nil {
		return entitySummaries{}, err
	}
	users, err := s.store.Users.FindByIDs(ctx, userIDs)
	if err != nil {
		return entitySummaries{}, err
	}
	return entitySummaries{tasks: tasks, users: users}, nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"task-tracker/backend/internal/cache"
	"task-tracker/backend/internal/logger"
	"task-tracker/backend/internal/models"

	"go.uber.org/zap"
)

const (
	summaryKeyPrefix = "tasks:summary:"
	summaryTTL       = time.Minute
)

// CachedTaskService caches per-actor task summaries and drops all of them
// after any successful create or update. Cache failures are logged and
// never fail the call.
type CachedTaskService struct {
	TaskService
	cache  cache.Cache
	logger *zap.Logger
}

var _ TaskService = (*CachedTaskService)(nil)

func NewCachedTaskService(taskService TaskService, cacheInstance cache.Cache, log *zap.Logger) *CachedTaskService {
	return &CachedTaskService{
		TaskService: taskService,
		cache:       cacheInstance,
		logger:      logger.OrNop(log),
	}
}

func summaryKey(actor models.Actor) string {
	return fmt.Sprintf("%s%s:%d", summaryKeyPrefix, actor.Role, actor.ID)
}

func (s *CachedTaskService) CreateTask(ctx context.Context, actor models.Actor, input CreateTaskInput) (*models.TaskView, error) {
	task, err := s.TaskService.CreateTask(ctx, actor, input)
	if err != nil {
		return nil, err
	}
	s.invalidateSummaries(ctx)
	return task, nil
}

func (s *CachedTaskService) UpdateTask(ctx context.Context, actor models.Actor, id int64, patch TaskPatch) (*models.TaskView, error) {
	task, err := s.TaskService.UpdateTask(ctx, actor, id, patch)
	if err != nil {
		return nil, err
	}
	s.invalidateSummaries(ctx)
	return task, nil
}

func (s *CachedTaskService) SummarizeTasks(ctx context.Context, actor models.Actor) (models.TaskSummary, error) {
	key := summaryKey(actor)

	var cached models.TaskSummary
	err := s.cache.Get(ctx, key, &cached)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("summary cache read failed", zap.String("key", key), zap.Error(err))
	}

	summary, err := s.TaskService.SummarizeTasks(ctx, actor)
	if err != nil {
		return summary, err
	}
	if err := s.cache.Set(ctx, key, summary, summaryTTL); err != nil {
		s.logger.Warn("summary cache write failed", zap.String("key", key), zap.Error(err))
	}
	return summary, nil
}

func (s *CachedTaskService) invalidateSummaries(ctx context.Context) {
	if err := s.cache.DeletePrefix(ctx, summaryKeyPrefix); err != nil {
		s.logger.Warn("summary cache invalidation failed", zap.Error(err))
	}
}

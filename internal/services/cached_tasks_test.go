package services_test

import (
	"context"
	"testing"

	"task-tracker/backend/internal/cache"
	"task-tracker/backend/internal/models"
	"task-tracker/backend/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingTaskService struct {
	services.TaskService
	summaries int
}

func (c *countingTaskService) SummarizeTasks(ctx context.Context, actor models.Actor) (models.TaskSummary, error) {
	c.summaries++
	return c.TaskService.SummarizeTasks(ctx, actor)
}

func TestCachedTaskService_SummaryCachedUntilWrite(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	lead := createUser(t, store, "John Lead", "lead@example.com", models.RoleLead)
	member := createUser(t, store, "Alice Member", "alice@example.com", models.RoleTeamMember)

	inner := &countingTaskService{TaskService: services.NewTaskService(store, nil)}
	memoryCache := cache.NewMultiLevelCache(nil, cache.Options{})
	t.Cleanup(func() { memoryCache.Close() })
	svc := services.NewCachedTaskService(inner, memoryCache, nil)

	first, err := svc.SummarizeTasks(ctx, lead)
	require.NoError(t, err)
	assert.Equal(t, int64(0), first.Total)

	_, err = svc.SummarizeTasks(ctx, lead)
	require.NoError(t, err)
	assert.Equal(t, 1, inner.summaries)

	task, err := svc.CreateTask(ctx, lead, services.CreateTaskInput{Title: "Write docs", AssignedToID: &member.ID})
	require.NoError(t, err)

	afterCreate, err := svc.SummarizeTasks(ctx, lead)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.summaries)
	assert.Equal(t, int64(1), afterCreate.Total)
	assert.Equal(t, int64(1), afterCreate.Counts[models.StatusNotStarted])

	memberSummary, err := svc.SummarizeTasks(ctx, member)
	require.NoError(t, err)
	assert.Equal(t, int64(1), memberSummary.Total)
	assert.Equal(t, 3, inner.summaries)

	_, err = svc.UpdateTask(ctx, member, task.ID, services.TaskPatch{Status: ptr(models.StatusDone)})
	require.NoError(t, err)

	afterUpdate, err := svc.SummarizeTasks(ctx, member)
	require.NoError(t, err)
	assert.Equal(t, 4, inner.summaries)
	assert.Equal(t, int64(1), afterUpdate.Counts[models.StatusDone])
	assert.Equal(t, int64(0), afterUpdate.Counts[models.StatusNotStarted])
}

func TestCachedTaskService_FailedWriteKeepsCache(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	member := createUser(t, store, "Alice Member", "alice@example.com", models.RoleTeamMember)

	inner := &countingTaskService{TaskService: services.NewTaskService(store, nil)}
	svc := services.NewCachedTaskService(inner, cache.NewMultiLevelCache(nil, cache.Options{}), nil)

	_, err := svc.SummarizeTasks(ctx, member)
	require.NoError(t, err)

	_, err = svc.CreateTask(ctx, member, services.CreateTaskInput{Title: "Not allowed"})
	assert.ErrorIs(t, err, services.ErrForbidden)

	_, err = svc.SummarizeTasks(ctx, member)
	require.NoError(t, err)
	assert.Equal(t, 1, inner.summaries)
}

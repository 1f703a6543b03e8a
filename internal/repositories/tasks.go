package repositories

import (
	"context"

	"task-tracker/backend/internal/models"

	"github.com/m-mizutani/goerr/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TaskRepository struct {
	db *gorm.DB
}

func CreatedBy(userID int64) Predicate {
	return Eq("tasks.created_by_id", userID)
}

func AssignedTo(userID int64) Predicate {
	return Eq("tasks.assigned_to_id", userID)
}

func StatusIs(status models.TaskStatus) Predicate {
	return Eq("tasks.status", status)
}

func (r *TaskRepository) withUsers(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("CreatedBy").Preload("AssignedTo")
}

func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(task).Error; err != nil {
		return goerr.Wrap(err, "failed to create task", goerr.V("title", task.Title))
	}
	return nil
}

// FindByID loads a task with its creator and assignee.
func (r *TaskRepository) FindByID(ctx context.Context, id int64) (*models.Task, error) {
	var task models.Task
	if err := r.withUsers(ctx).First(&task, id).Error; err != nil {
		return nil, notFoundOr(err, "failed to find task", goerr.V("taskID", id))
	}
	return &task, nil
}

func (r *TaskRepository) List(ctx context.Context, preds Predicates, limit int) ([]models.Task, error) {
	var tasks []models.Task
	query := preds.Apply(r.withUsers(ctx).Model(&models.Task{}))
	err := query.
		Order("tasks.created_at DESC").
		Order("tasks.id DESC").
		Limit(NormalizeLimit(limit)).
		Find(&tasks).Error
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list tasks")
	}
	return tasks, nil
}

// Update writes the given column changes. The map keys are column names.
func (r *TaskRepository) Update(ctx context.Context, id int64, changes map[string]any) error {
	result := r.db.WithContext(ctx).Model(&models.Task{}).Where("id = ?", id).Updates(changes)
	if result.Error != nil {
		return goerr.Wrap(result.Error, "failed to update task", goerr.V("taskID", id))
	}
	if result.RowsAffected == 0 {
		return goerr.Wrap(ErrNotFound, "failed to update task", goerr.V("taskID", id))
	}
	return nil
}

func (r *TaskRepository) CountByStatus(ctx context.Context, preds Predicates) (map[models.TaskStatus]int64, error) {
	var rows []struct {
		Status models.TaskStatus
		Count  int64
	}
	query := preds.Apply(r.db.WithContext(ctx).Model(&models.Task{}))
	if err := query.Select("tasks.status AS status, COUNT(*) AS count").Group("tasks.status").Scan(&rows).Error; err != nil {
		return nil, goerr.Wrap(err, "failed to count tasks")
	}
	counts := make(map[models.TaskStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// Titles returns task titles keyed by id for the tasks that exist.
func (r *TaskRepository) Titles(ctx context.Context, ids []int64) (map[int64]string, error) {
	out := make(map[int64]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []struct {
		ID    int64
		Title string
	}
	if err := r.db.WithContext(ctx).Model(&models.Task{}).Select("id, title").Where("id IN ?", ids).Scan(&rows).Error; err != nil {
		return nil, goerr.Wrap(err, "failed to load task titles", goerr.V("count", len(ids)))
	}
	for _, row := range rows {
		out[row.ID] = row.Title
	}
	return out, nil
}

package repositories

import (
	"context"

	"task-tracker/backend/internal/models"

	"github.com/m-mizutani/goerr/v2"
	"gorm.io/gorm"
)

// ActivityRepository only appends and reads; entries are never changed.
type ActivityRepository struct {
	db *gorm.DB
}

func ActorIs(userID int64) Predicate {
	return Eq("activity_logs.user_id", userID)
}

func EntityTypeIs(entityType models.EntityType) Predicate {
	return Eq("activity_logs.entity_type", entityType)
}

func ActionIs(action models.LogAction) Predicate {
	return Eq("activity_logs.action", action)
}

func EntityIs(ref models.EntityRef) Predicates {
	return Predicates{
		EntityTypeIs(ref.EntityType()),
		Eq("activity_logs.entity_id", ref.EntityID()),
	}
}

func (r *ActivityRepository) Append(ctx context.Context, entry *models.ActivityLog) error {
	if entry.Details == nil {
		entry.Details = models.Details{}
	}
	if err := r.db.WithContext(ctx).Omit("Actor").Create(entry).Error; err != nil {
		return goerr.Wrap(err, "failed to append activity log",
			goerr.V("entityType", entry.EntityType),
			goerr.V("entityID", entry.EntityID),
			goerr.V("action", entry.Action))
	}
	return nil
}

func (r *ActivityRepository) List(ctx context.Context, preds Predicates, limit int) ([]models.ActivityLog, error) {
	var logs []models.ActivityLog
	query := preds.Apply(r.db.WithContext(ctx).Preload("Actor").Model(&models.ActivityLog{}))
	err := query.
		Order("activity_logs.created_at DESC").
		Order("activity_logs.id DESC").
		Limit(NormalizeLimit(limit)).
		Find(&logs).Error
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list activity logs")
	}
	return logs, nil
}

func (r *ActivityRepository) Count(ctx context.Context, preds Predicates) (int64, error) {
	var count int64
	if err := preds.Apply(r.db.WithContext(ctx).Model(&models.ActivityLog{})).Count(&count).Error; err != nil {
		return 0, goerr.Wrap(err, "failed to count activity logs")
	}
	return count, nil
}

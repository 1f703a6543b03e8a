package database

import (
	"task-tracker/backend/internal/models"

	"github.com/m-mizutani/goerr/v2"
	"gorm.io/gorm"
)

// Migrate creates or updates the users, tasks and activity_logs tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}, &models.Task{}, &models.ActivityLog{}); err != nil {
		return goerr.Wrap(err, "failed to migrate schema")
	}
	return nil
}

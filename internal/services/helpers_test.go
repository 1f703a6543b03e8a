package services_test

import (
	"context"
	"testing"

	"task-tracker/backend/internal/database"
	"task-tracker/backend/internal/models"
	"task-tracker/backend/internal/repositories"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func newTestStore(t *testing.T) *repositories.Store {
	t.Helper()

	cfg := database.DefaultPoolConfig()
	cfg.Driver = database.DriverSQLite
	cfg.DSN = ":memory:"
	cfg.LogLevel = logger.Silent

	pool, err := database.NewDatabasePool(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })
	require.NoError(t, database.Migrate(pool.DB))

	return repositories.NewStore(pool.DB)
}

func createUser(t *testing.T, store *repositories.Store, name, email string, role models.Role) models.Actor {
	t.Helper()
	user := &models.User{Name: name, Email: email, PasswordHash: "hash", Role: role}
	require.NoError(t, store.Users.Create(context.Background(), user))
	return models.Actor{ID: user.ID, Role: user.Role}
}

func ptr[T any](v T) *T {
	return &v
}

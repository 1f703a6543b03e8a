package services_test

import (
	"context"
	"testing"
	"time"

	"task-tracker/backend/internal/models"
	"task-tracker/backend/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestAuthService_LoginAndParse(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := services.NewRegisterService(store, bcrypt.MinCost, nil).RegisterUser(ctx, services.RegistrationRequest{
		Name: "John Lead", Email: "lead@example.com", Password: "password123", Role: models.RoleLead,
	})
	require.NoError(t, err)

	auth := services.NewAuthService(store, services.TokenConfig{Secret: "test-secret", Issuer: "task-tracker", TTL: time.Hour}, nil)

	result, err := auth.Login(ctx, "LEAD@example.com", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, "lead@example.com", result.User.Email)

	actor, err := auth.ParseToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, actor.ID)
	assert.Equal(t, models.RoleLead, actor.Role)

	_, err = auth.Login(ctx, "lead@example.com", "wrong-password")
	assert.ErrorIs(t, err, services.ErrUnauthenticated)

	_, err = auth.Login(ctx, "nobody@example.com", "password123")
	assert.ErrorIs(t, err, services.ErrUnauthenticated)

	_, err = auth.Login(ctx, "", "")
	assert.ErrorIs(t, err, services.ErrValidation)
}

func TestAuthService_RejectsBadTokens(t *testing.T) {
	store := newTestStore(t)
	auth := services.NewAuthService(store, services.TokenConfig{Secret: "test-secret", Issuer: "task-tracker", TTL: time.Hour}, nil)
	other := services.NewAuthService(store, services.TokenConfig{Secret: "other-secret", Issuer: "task-tracker", TTL: time.Hour}, nil)
	issuedAt := time.Now().Add(-2 * time.Hour)
	expired := services.NewAuthService(store, services.TokenConfig{Secret: "test-secret", Issuer: "task-tracker", TTL: time.Hour}, nil).
		WithClock(func() time.Time { return issuedAt })
	wrongIssuer := services.NewAuthService(store, services.TokenConfig{Secret: "test-secret", Issuer: "someone-else", TTL: time.Hour}, nil)

	actor := models.Actor{ID: 7, Role: models.RoleTeamMember}

	forged, _, err := other.GenerateToken(actor)
	require.NoError(t, err)
	_, err = auth.ParseToken(forged)
	assert.ErrorIs(t, err, services.ErrUnauthenticated)

	stale, _, err := expired.GenerateToken(actor)
	require.NoError(t, err)
	_, err = auth.ParseToken(stale)
	assert.ErrorIs(t, err, services.ErrUnauthenticated)

	fresh, _, err := auth.GenerateToken(actor)
	require.NoError(t, err)
	parsed, err := auth.ParseToken(fresh)
	require.NoError(t, err)
	assert.Equal(t, actor, parsed)

	foreign, _, err := wrongIssuer.GenerateToken(actor)
	require.NoError(t, err)
	_, err = auth.ParseToken(foreign)
	assert.ErrorIs(t, err, services.ErrUnauthenticated)

	_, err = auth.ParseToken("not-a-token")
	assert.ErrorIs(t, err, services.ErrUnauthenticated)
}

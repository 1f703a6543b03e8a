package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"task-tracker/backend/internal/logger"
	"task-tracker/backend/internal/models"
	"task-tracker/backend/internal/repositories"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type RegistrationRequest struct {
	Name     string      `json:"name" validate:"required,min=2,max=255"`
	Email    string      `json:"email" validate:"required,email,max=255"`
	Password string      `json:"password" validate:"required,min=8,max=72"`
	Role     models.Role `json:"role" validate:"required,oneof=lead team_member"`
}

type RegisterService interface {
	RegisterUser(ctx context.Context, req RegistrationRequest) (*models.User, error)
}

type RegisterServiceImpl struct {
	store      *repositories.Store
	validate   *validator.Validate
	bcryptCost int
	logger     *zap.Logger
	now        func() time.Time
}

func NewRegisterService(store *repositories.Store, bcryptCost int, log *zap.Logger) *RegisterServiceImpl {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &RegisterServiceImpl{
		store:      store,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		bcryptCost: bcryptCost,
		logger:     logger.OrNop(log),
		now:        time.Now,
	}
}

func validationMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return "invalid registration data"
	}
	fe := fieldErrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return "invalid email address"
	case "min":
		return field + " must be at least " + fe.Param() + " characters"
	case "max":
		return field + " must be at most " + fe.Param() + " characters"
	case "oneof":
		return "role must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	default:
		return "invalid " + field
	}
}

// RegisterUser creates the account and its USER/CREATED log entry in one
// transaction. The user is recorded as their own actor.
func (s *RegisterServiceImpl) RegisterUser(ctx context.Context, req RegistrationRequest) (*models.User, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.validate.Struct(req); err != nil {
		return nil, invalid("%s", validationMessage(err))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		s.logger.Error("failed to hash password", zap.Error(err))
		return nil, internal(err, "failed to register user")
	}

	now := s.now()
	user := models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         req.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.store.Transaction(ctx, func(tx *repositories.Store) error {
		if err := tx.Users.Create(ctx, &user); err != nil {
			return err
		}
		return tx.Activity.Append(ctx, &models.ActivityLog{
			EntityType: models.EntityUser,
			EntityID:   user.ID,
			Action:     models.ActionCreated,
			UserID:     user.ID,
			Details:    models.Details{"role": user.Role},
			CreatedAt:  now,
		})
	})
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateEmail) {
			return nil, newError(KindConflict, "user with this email already exists")
		}
		s.logger.Error("failed to register user", zap.Error(err))
		return nil, internal(err, "failed to register user")
	}

	s.logger.Info("user registered", zap.Int64("user_id", user.ID), zap.String("role", string(user.Role)))
	return &user, nil
}

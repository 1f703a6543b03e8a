package repositories

import (
	"context"
	"errors"

	"task-tracker/backend/internal/models"

	"github.com/m-mizutani/goerr/v2"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	exists, err := r.EmailExists(ctx, user.Email)
	if err != nil {
		return err
	}
	if exists {
		return goerr.Wrap(ErrDuplicateEmail, "failed to create user", goerr.V("email", user.Email))
	}
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return goerr.Wrap(ErrDuplicateEmail, "failed to create user", goerr.V("email", user.Email))
		}
		return goerr.Wrap(err, "failed to create user", goerr.V("email", user.Email))
	}
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFoundOr(err, "failed to find user", goerr.V("userID", id))
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, notFoundOr(err, "failed to find user", goerr.V("email", email))
	}
	return &user, nil
}

func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, goerr.Wrap(err, "failed to check email", goerr.V("email", email))
	}
	return count > 0, nil
}

// FindByIDs returns the users keyed by id; missing ids are absent from the map.
func (r *UserRepository) FindByIDs(ctx context.Context, ids []int64) (map[int64]*models.User, error) {
	out := make(map[int64]*models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var users []models.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, goerr.Wrap(err, "failed to find users", goerr.V("count", len(ids)))
	}
	for i := range users {
		out[users[i].ID] = &users[i]
	}
	return out, nil
}

func (r *UserRepository) List(ctx context.Context, preds Predicates) ([]models.User, error) {
	var users []models.User
	query := preds.Apply(r.db.WithContext(ctx).Model(&models.User{}))
	if err := query.Order("name ASC").Order("id ASC").Find(&users).Error; err != nil {
		return nil, goerr.Wrap(err, "failed to list users")
	}
	return users, nil
}

func RoleIs(role models.Role) Predicate {
	return Eq("role", role)
}

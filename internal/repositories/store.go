package repositories

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"gorm.io/gorm"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

// Store groups the repositories that share one connection or transaction.
type Store struct {
	db       *gorm.DB
	Users    *UserRepository
	Tasks    *TaskRepository
	Activity *ActivityRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:       db,
		Users:    &UserRepository{db: db},
		Tasks:    &TaskRepository{db: db},
		Activity: &ActivityRepository{db: db},
	}
}

func (s *Store) DB() *gorm.DB {
	return s.db
}

// Transaction runs fn against a Store bound to a single transaction.
// Any error returned by fn rolls the transaction back.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

func notFoundOr(err error, msg string, values ...goerr.Option) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return goerr.Wrap(ErrNotFound, msg, values...)
	}
	return goerr.Wrap(err, msg, values...)
}

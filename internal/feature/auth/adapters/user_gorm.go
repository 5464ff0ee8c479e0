// Package adapters provides the gorm repositories of the auth feature.
package adapters

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"appt_calendar/internal/feature/auth/domain"
	"appt_calendar/internal/feature/auth/domain/entity"
	"appt_calendar/internal/feature/auth/usecase"
	"appt_calendar/internal/platform/db"
)

// userGorm stores users through gorm.
type userGorm struct {
	db *gorm.DB
}

var _ usecase.UserRepository = (*userGorm)(nil)

// NewUserGorm returns a UserRepository backed by db.
func NewUserGorm(db *gorm.DB) *userGorm {
	return &userGorm{db: db}
}

// Create inserts u and fills its ID and timestamps.
// A taken email yields domain.ErrDuplicateEmail.
func (r *userGorm) Create(ctx context.Context, u *entity.User) error {
	if u == nil {
		return errors.New("nil user")
	}
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if db.IsUniqueViolation(err) {
			return domain.ErrDuplicateEmail
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// FindByEmail returns domain.ErrUserNotFound when no user has email.
func (r *userGorm) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.first(ctx, "email = ?", email)
}

// FindByID returns domain.ErrUserNotFound when no user has id.
func (r *userGorm) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *userGorm) first(ctx context.Context, query string, arg any) (*entity.User, error) {
	var u entity.User
	if err := r.db.WithContext(ctx).Where(query, arg).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

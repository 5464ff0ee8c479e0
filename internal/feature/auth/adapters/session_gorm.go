package adapters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"appt_calendar/internal/feature/auth/domain/entity"
	"appt_calendar/internal/feature/auth/usecase"
)

// sessionGorm is the SQL fallback session store, used when Redis is not configured.
type sessionGorm struct {
	db  *gorm.DB
	now func() time.Time
}

var _ usecase.SessionRepository = (*sessionGorm)(nil)

// NewSessionGorm returns a SessionRepository backed by db.
func NewSessionGorm(db *gorm.DB) *sessionGorm {
	return &sessionGorm{db: db, now: time.Now}
}

// active restricts a query to unrevoked, unexpired sessions of userID.
func (r *sessionGorm) active(userID uint) func(*gorm.DB) *gorm.DB {
	now := r.now()
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Where("user_id = ? AND revoked_at IS NULL AND expires_at > ?", userID, now)
	}
}

func (r *sessionGorm) Create(ctx context.Context, s *entity.Session) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(SessionModelFromEntity(s)).Error; err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (r *sessionGorm) FindByID(ctx context.Context, id string) (*entity.Session, error) {
	var m SessionModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrSessionNotFound
		}
		return nil, fmt.Errorf("find session: %w", err)
	}
	return m.ToEntity(), nil
}

// FindByUserID returns the active sessions of userID, oldest first.
func (r *sessionGorm) FindByUserID(ctx context.Context, userID uint) ([]*entity.Session, error) {
	var models []SessionModel
	if err := r.db.WithContext(ctx).Scopes(r.active(userID)).Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	out := make([]*entity.Session, len(models))
	for i := range models {
		out[i] = models[i].ToEntity()
	}
	return out, nil
}

func (r *sessionGorm) Revoke(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Model(&SessionModel{}).
		Where("id = ? AND revoked_at IS NULL", id).
		Update("revoked_at", r.now())
	if res.Error != nil {
		return fmt.Errorf("revoke session: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		// Either unknown or already revoked.
		if _, err := r.FindByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (r *sessionGorm) RevokeAllByUserID(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Model(&SessionModel{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Update("revoked_at", r.now()).Error
}

// DeleteExpired removes expired sessions and returns how many were removed.
func (r *sessionGorm) DeleteExpired(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at <= ?", r.now()).Delete(&SessionModel{})
	return res.RowsAffected, res.Error
}

func (r *sessionGorm) CountByUserID(ctx context.Context, userID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&SessionModel{}).Scopes(r.active(userID)).Count(&n).Error
	return n, err
}

// DeleteOldestByUserID removes the oldest active session of userID, if any.
func (r *sessionGorm) DeleteOldestByUserID(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var oldest SessionModel
		err := tx.Scopes(r.active(userID)).Order("created_at ASC").First(&oldest).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return tx.Delete(&SessionModel{}, "id = ?", oldest.ID).Error
	})
}

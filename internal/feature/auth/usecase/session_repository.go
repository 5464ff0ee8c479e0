package usecase

import (
	"context"

	"appt_calendar/internal/feature/auth/domain/entity"
)

// SessionRepository persists refresh-token sessions.
// Implemented by the gorm store and the Redis store.
type SessionRepository interface {
	Create(ctx context.Context, session *entity.Session) error

	// FindByID returns ErrSessionNotFound for an unknown ID.
	FindByID(ctx context.Context, id string) (*entity.Session, error)

	// FindByUserID returns the active sessions of a user.
	FindByUserID(ctx context.Context, userID uint) ([]*entity.Session, error)

	Revoke(ctx context.Context, id string) error
	RevokeAllByUserID(ctx context.Context, userID uint) error

	// DeleteExpired removes expired sessions and reports how many were removed.
	DeleteExpired(ctx context.Context) (int64, error)

	// CountByUserID counts the active sessions of a user.
	CountByUserID(ctx context.Context, userID uint) (int64, error)

	// DeleteOldestByUserID removes the oldest active session of a user.
	DeleteOldestByUserID(ctx context.Context, userID uint) error
}

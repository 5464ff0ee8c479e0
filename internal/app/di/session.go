// Package di picks concrete implementations for ports with more than one backend.
package di

import (
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	authadapters "appt_calendar/internal/feature/auth/adapters"
	"appt_calendar/internal/feature/auth/usecase"
	"appt_calendar/internal/platform/session"
)

// NewSessionRepository returns the Redis store when rdb is set and the SQL
// store otherwise.
func NewSessionRepository(rdb *redis.Client, db *gorm.DB) usecase.SessionRepository {
	if rdb != nil {
		return session.NewSessionRedis(rdb, "session")
	}
	return authadapters.NewSessionGorm(db)
}

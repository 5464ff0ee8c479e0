package di

import (
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	apptadapters "appt_calendar/internal/feature/appointments/adapters"
	"appt_calendar/internal/feature/appointments/usecase"
	"appt_calendar/internal/platform/cache"
)

// NewAppointmentRepository returns the gorm repository, wrapped in the list
// cache when rdb is set.
func NewAppointmentRepository(rdb *redis.Client, db *gorm.DB, ttl time.Duration) usecase.AppointmentRepository {
	repo := apptadapters.NewAppointmentGorm(db)
	if rdb == nil {
		return repo
	}
	return cache.NewCachingAppointmentRepository(rdb, ttl, repo, "appointments")
}

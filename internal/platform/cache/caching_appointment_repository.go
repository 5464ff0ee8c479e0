// Package cache provides Redis caching decorators for repositories.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"appt_calendar/internal/feature/appointments/domain/entity"
	"appt_calendar/internal/feature/appointments/usecase"
)

// CachingAppointmentRepository caches each owner's appointment list in Redis.
// Every successful mutation drops the owner's entry, so a list read after a
// write always comes from the database.
type CachingAppointmentRepository struct {
	inner     usecase.AppointmentRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ usecase.AppointmentRepository = (*CachingAppointmentRepository)(nil)

// NewCachingAppointmentRepository decorates inner. A nil rdb disables caching.
// ttl defaults to one minute and namespace to "appointments".
func NewCachingAppointmentRepository(rdb *redis.Client, ttl time.Duration, inner usecase.AppointmentRepository, namespace string) *CachingAppointmentRepository {
	if ttl <= 0 {
		ttl = time.Minute
	}
	if namespace == "" {
		namespace = "appointments"
	}
	return &CachingAppointmentRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

func (c *CachingAppointmentRepository) cacheKey(owner uint) string {
	return fmt.Sprintf("%s:owner:%d", c.namespace, owner)
}

// ListByOwner serves from cache when possible and fills it on a miss.
func (c *CachingAppointmentRepository) ListByOwner(ctx context.Context, owner uint) ([]entity.Appointment, error) {
	if c.rdb == nil {
		return c.inner.ListByOwner(ctx, owner)
	}
	key := c.cacheKey(owner)

	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out []entity.Appointment
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		_ = c.rdb.Del(ctx, key).Err()
	}

	out, err := c.inner.ListByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(out); err == nil {
		if err := c.rdb.Set(ctx, key, b, c.ttl).Err(); err != nil {
			slog.Warn("appointment cache write failed", "error", err, "key", key)
		}
	}
	return out, nil
}

func (c *CachingAppointmentRepository) FindOwned(ctx context.Context, id, owner uint) (*entity.Appointment, error) {
	return c.inner.FindOwned(ctx, id, owner)
}

func (c *CachingAppointmentRepository) Create(ctx context.Context, a *entity.Appointment) error {
	if err := c.inner.Create(ctx, a); err != nil {
		return err
	}
	c.invalidate(ctx, a.OwnerID)
	return nil
}

func (c *CachingAppointmentRepository) UpdateOwned(ctx context.Context, id, owner uint, mutate func(*entity.Appointment) error) (*entity.Appointment, error) {
	a, err := c.inner.UpdateOwned(ctx, id, owner, mutate)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, owner)
	return a, nil
}

func (c *CachingAppointmentRepository) DeleteOwned(ctx context.Context, id, owner uint) error {
	if err := c.inner.DeleteOwned(ctx, id, owner); err != nil {
		return err
	}
	c.invalidate(ctx, owner)
	return nil
}

// invalidate is best effort; a failure is logged and the TTL bounds staleness.
func (c *CachingAppointmentRepository) invalidate(ctx context.Context, owner uint) {
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, c.cacheKey(owner)).Err(); err != nil {
		slog.Warn("appointment cache invalidation failed", "error", err, "owner", owner)
	}
}

// Package adapters provides the gorm repository of the appointment store.
package adapters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"appt_calendar/internal/feature/appointments/domain"
	"appt_calendar/internal/feature/appointments/domain/entity"
	"appt_calendar/internal/feature/appointments/usecase"
)

type appointmentGorm struct {
	db *gorm.DB
}

var _ usecase.AppointmentRepository = (*appointmentGorm)(nil)

// NewAppointmentGorm returns an AppointmentRepository backed by db.
func NewAppointmentGorm(db *gorm.DB) *appointmentGorm {
	return &appointmentGorm{db: db}
}

func (r *appointmentGorm) ListByOwner(ctx context.Context, owner uint) ([]entity.Appointment, error) {
	var models []AppointmentModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", owner).
		Order("start_at ASC").Order("id ASC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	out := make([]entity.Appointment, len(models))
	for i := range models {
		out[i] = *models[i].ToEntity()
	}
	return out, nil
}

func (r *appointmentGorm) FindOwned(ctx context.Context, id, owner uint) (*entity.Appointment, error) {
	return lockOwned(r.db.WithContext(ctx), id, owner, false)
}

func (r *appointmentGorm) Create(ctx context.Context, a *entity.Appointment) error {
	m := AppointmentModelFromEntity(a)
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(m).Error; err != nil {
		return fmt.Errorf("create appointment: %w", err)
	}
	a.ID = m.ID
	a.CreatedAt = m.CreatedAt
	a.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *appointmentGorm) UpdateOwned(ctx context.Context, id, owner uint, mutate func(*entity.Appointment) error) (*entity.Appointment, error) {
	var out *entity.Appointment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		a, err := lockOwned(tx, id, owner, true)
		if err != nil {
			return err
		}
		if err := mutate(a); err != nil {
			return err
		}
		if a.UpdatedAt.IsZero() {
			a.UpdatedAt = time.Now()
		}
		// A map keeps zero values and the caller's updated_at.
		err = tx.Model(&AppointmentModel{ID: a.ID}).Updates(map[string]any{
			"title":       a.Title,
			"start_at":    a.Start,
			"end_at":      a.End,
			"all_day":     a.AllDay,
			"location":    a.Location,
			"description": a.Description,
			"updated_at":  a.UpdatedAt,
		}).Error
		if err != nil {
			return fmt.Errorf("update appointment: %w", err)
		}
		out = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *appointmentGorm) DeleteOwned(ctx context.Context, id, owner uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockOwned(tx, id, owner, true); err != nil {
			return err
		}
		if err := tx.Delete(&AppointmentModel{}, id).Error; err != nil {
			return fmt.Errorf("delete appointment: %w", err)
		}
		return nil
	})
}

// lockOwned loads id and applies the ownership guard. With forUpdate the row
// is locked for the rest of the transaction where the dialect supports it.
func lockOwned(tx *gorm.DB, id, owner uint, forUpdate bool) (*entity.Appointment, error) {
	if forUpdate {
		tx = tx.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate})
	}
	var m AppointmentModel
	var found *entity.Appointment
	err := tx.Where("id = ?", id).First(&m).Error
	switch {
	case err == nil:
		found = m.ToEntity()
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("find appointment: %w", err)
	}
	if err := domain.EnsureOwner(found, owner); err != nil {
		return nil, err
	}
	return found, nil
}

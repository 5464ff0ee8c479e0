// Package usecase implements the appointment store. Every operation takes the
// acting user explicitly and only ever touches that user's appointments.
package usecase

import (
	"context"
	"time"

	"appt_calendar/internal/feature/appointments/domain"
	"appt_calendar/internal/feature/appointments/domain/entity"
)

// AppointmentRepository persists appointments. The *Owned methods run the
// lookup, domain.EnsureOwner and the mutation as one unit.
type AppointmentRepository interface {
	// ListByOwner returns owner's appointments ordered by Start, then ID.
	ListByOwner(ctx context.Context, owner uint) ([]entity.Appointment, error)

	// FindOwned fails with domain.ErrNotFound when id is missing or not owner's.
	FindOwned(ctx context.Context, id, owner uint) (*entity.Appointment, error)

	// Create inserts a and assigns its ID.
	Create(ctx context.Context, a *entity.Appointment) error

	// UpdateOwned loads id, guards it, applies mutate and saves the result.
	// An error from mutate aborts the update and is returned as is.
	UpdateOwned(ctx context.Context, id, owner uint, mutate func(*entity.Appointment) error) (*entity.Appointment, error)

	// DeleteOwned removes id permanently after the guard.
	DeleteOwned(ctx context.Context, id, owner uint) error
}

type appointmentUsecase struct {
	repo AppointmentRepository
	now  func() time.Time
}

func NewAppointmentUsecase(repo AppointmentRepository) *appointmentUsecase {
	return &appointmentUsecase{repo: repo, now: time.Now}
}

// List returns the actor's appointments in chronological order.
func (u *appointmentUsecase) List(ctx context.Context, actor uint) ([]entity.Appointment, error) {
	return u.repo.ListByOwner(ctx, actor)
}

// Get returns one of the actor's appointments.
func (u *appointmentUsecase) Get(ctx context.Context, actor, id uint) (*entity.Appointment, error) {
	return u.repo.FindOwned(ctx, id, actor)
}

// Create validates f and stores a new appointment owned by actor.
func (u *appointmentUsecase) Create(ctx context.Context, actor uint, f entity.Fields) (*entity.Appointment, error) {
	f = f.Normalized()
	if err := domain.Validate(f); err != nil {
		return nil, err
	}

	now := u.now()
	a := &entity.Appointment{OwnerID: actor, CreatedAt: now, UpdatedAt: now}
	a.Apply(f)
	if err := u.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Update replaces the editable fields of one of the actor's appointments.
// The owner is never taken from f.
func (u *appointmentUsecase) Update(ctx context.Context, actor, id uint, f entity.Fields) (*entity.Appointment, error) {
	f = f.Normalized()
	return u.repo.UpdateOwned(ctx, id, actor, func(a *entity.Appointment) error {
		if err := domain.Validate(f); err != nil {
			return err
		}
		a.Apply(f)
		a.UpdatedAt = u.now()
		return nil
	})
}

// Delete removes one of the actor's appointments.
func (u *appointmentUsecase) Delete(ctx context.Context, actor, id uint) error {
	return u.repo.DeleteOwned(ctx, id, actor)
}

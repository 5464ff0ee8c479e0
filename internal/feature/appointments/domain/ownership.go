package domain

import "appt_calendar/internal/feature/appointments/domain/entity"

// EnsureOwner fails with ErrNotFound unless a exists and belongs to actor.
func EnsureOwner(a *entity.Appointment, actor uint) error {
	if a == nil || a.OwnerID != actor {
		return ErrNotFound
	}
	return nil
}

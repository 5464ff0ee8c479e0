// Package seed loads the demo account and its sample appointments.
package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"appt_calendar/internal/feature/appointments/domain/entity"
	"appt_calendar/internal/feature/auth/domain"
	authentity "appt_calendar/internal/feature/auth/domain/entity"
)

const (
	DemoEmail    = "user@email.com"
	DemoPassword = "password"
)

// Registrar creates accounts.
type Registrar interface {
	Register(ctx context.Context, email, password string) (*authentity.User, error)
}

// Creator stores appointments for a user.
type Creator interface {
	Create(ctx context.Context, actor uint, f entity.Fields) (*entity.Appointment, error)
}

// ErrAlreadySeeded is returned when the demo account exists.
var ErrAlreadySeeded = errors.New("demo data already present")

// Samples returns the demo appointments relative to now.
func Samples(now time.Time) []entity.Fields {
	day := 24 * time.Hour
	return []entity.Fields{
		{Title: "My Appointment", Start: now, End: now.Add(30 * time.Minute)},
		{Title: "Important Meeting", Start: now.Add(3 * day), End: now.Add(3*day + time.Hour), Location: "The Office"},
		{Title: "Past Meeting", Start: now.Add(-3*day - time.Hour), End: now.Add(-3 * day), Location: "The Office"},
		{Title: "Follow Up", Start: now.Add(4 * day), End: now.Add(4*day + time.Hour), Location: "The Office"},
		{Title: "Day Off", Start: now.Add(5 * day), End: now.Add(5 * day), AllDay: true},
	}
}

// Run registers the demo user and creates the samples. It returns
// ErrAlreadySeeded without writing anything when the user exists.
func Run(ctx context.Context, users Registrar, appointments Creator, now time.Time) (*authentity.User, error) {
	user, err := users.Register(ctx, DemoEmail, DemoPassword)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, ErrAlreadySeeded
		}
		return nil, fmt.Errorf("register demo user: %w", err)
	}
	for _, f := range Samples(now) {
		if _, err := appointments.Create(ctx, user.ID, f); err != nil {
			return nil, fmt.Errorf("create %q: %w", f.Title, err)
		}
	}
	return user, nil
}

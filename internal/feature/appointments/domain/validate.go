package domain

import (
	"unicode/utf8"

	"appt_calendar/internal/feature/appointments/domain/entity"
)

const (
	MaxTitleLength    = 255
	MaxLocationLength = 255
)

// Validate checks normalized fields and reports every violation at once.
func Validate(f entity.Fields) error {
	verr := &ValidationError{}

	switch n := utf8.RuneCountInString(f.Title); {
	case n == 0:
		verr.Add("title", ReasonRequired)
	case n > MaxTitleLength:
		verr.Add("title", ReasonTooLong)
	}
	if f.Start.IsZero() {
		verr.Add("start", ReasonRequired)
	}
	if utf8.RuneCountInString(f.Location) > MaxLocationLength {
		verr.Add("location", ReasonTooLong)
	}
	return verr.ErrOrNil()
}

// Package dto defines the request, form and response shapes of the appointment endpoints.
package dto

import (
	"errors"
	"strings"
	"time"

	"appt_calendar/internal/feature/appointments/domain"
	"appt_calendar/internal/feature/appointments/domain/entity"
)

// Accepted timestamp layouts, tried in order. Layouts without an offset are
// read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// FormTimeLayout is what datetime-local inputs submit and display.
const FormTimeLayout = "2006-01-02T15:04"

// ParseTimestamp parses s with the first matching layout.
// A blank string yields the zero time and no error.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	var err error
	for _, layout := range timestampLayouts {
		var t time.Time
		if t, err = time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

// AppointmentReq is the JSON body of POST and PUT /api/appointments.
type AppointmentReq struct {
	Title       string `json:"title"`
	Start       string `json:"start"`
	End         string `json:"end"`
	AllDay      bool   `json:"all_day"`
	Location    string `json:"location"`
	Description string `json:"description"`
}

// ToFields converts the request. Unparseable timestamps are reported with
// reason "invalid" under the field name, together with any other field the
// domain rules reject.
func (r AppointmentReq) ToFields() (entity.Fields, error) {
	return toFields(r.Title, r.Start, r.End, r.AllDay, r.Location, r.Description)
}

// AppointmentForm is the HTML create/edit form.
type AppointmentForm struct {
	Title       string `form:"title"`
	Start       string `form:"start"`
	End         string `form:"end"`
	AllDay      bool   `form:"all_day"`
	Location    string `form:"location"`
	Description string `form:"description"`
}

// ToFields converts the form the same way as AppointmentReq.ToFields.
func (f AppointmentForm) ToFields() (entity.Fields, error) {
	return toFields(f.Title, f.Start, f.End, f.AllDay, f.Location, f.Description)
}

// FormFrom fills the form from stored fields for the edit page.
func FormFrom(f entity.Fields) AppointmentForm {
	form := AppointmentForm{
		Title:       f.Title,
		AllDay:      f.AllDay,
		Location:    f.Location,
		Description: f.Description,
	}
	if !f.Start.IsZero() {
		form.Start = f.Start.UTC().Format(FormTimeLayout)
	}
	if !f.End.IsZero() {
		form.End = f.End.UTC().Format(FormTimeLayout)
	}
	return form
}

func toFields(title, start, end string, allDay bool, location, description string) (entity.Fields, error) {
	f := entity.Fields{
		Title:       title,
		AllDay:      allDay,
		Location:    location,
		Description: description,
	}
	verr := &domain.ValidationError{}
	var err error
	if f.Start, err = ParseTimestamp(start); err != nil {
		verr.Add("start", domain.ReasonInvalid)
	}
	if f.End, err = ParseTimestamp(end); err != nil {
		verr.Add("end", domain.ReasonInvalid)
	}
	if len(verr.Fields) == 0 {
		return f, nil
	}

	// Report the remaining field errors in the same response. A field that
	// failed to parse keeps its "invalid" reason.
	var rest *domain.ValidationError
	if errors.As(domain.Validate(f.Normalized()), &rest) {
		for _, fe := range rest.Fields {
			if !verr.Has(fe.Field) {
				verr.Add(fe.Field, fe.Reason)
			}
		}
	}
	return f, verr
}

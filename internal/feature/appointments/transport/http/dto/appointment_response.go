package dto

import (
	"time"

	"appt_calendar/internal/feature/appointments/domain/entity"
	"appt_calendar/internal/platform/format"
)

// AppointmentRes is the JSON view of an appointment.
type AppointmentRes struct {
	ID              uint      `json:"id"`
	Title           string    `json:"title"`
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	AllDay          bool      `json:"all_day"`
	Location        string    `json:"location"`
	Description     string    `json:"description"`
	DurationSeconds int64     `json:"duration_seconds"`
	Duration        string    `json:"duration"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func ToAppointmentRes(a *entity.Appointment) AppointmentRes {
	secs := a.Duration()
	return AppointmentRes{
		ID:              a.ID,
		Title:           a.Title,
		Start:           a.Start,
		End:             a.End,
		AllDay:          a.AllDay,
		Location:        a.Location,
		Description:     a.Description,
		DurationSeconds: secs,
		Duration:        format.FormatDuration(secs),
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

func ToAppointmentList(list []entity.Appointment) []AppointmentRes {
	out := make([]AppointmentRes, len(list))
	for i := range list {
		out[i] = ToAppointmentRes(&list[i])
	}
	return out
}

// ValidationRes is the 422 body.
type ValidationRes struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

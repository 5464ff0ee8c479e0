// Package entity defines the appointment entity and its replaceable fields.
package entity

import (
	"strings"
	"time"
)

// Appointment is a calendar entry owned by exactly one user.
type Appointment struct {
	ID          uint      `json:"id"`
	OwnerID     uint      `json:"owner_id"`
	Title       string    `json:"title"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	AllDay      bool      `json:"all_day"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Duration is End minus Start in whole seconds, rounded toward negative
// infinity. An End before Start yields a negative value.
// Computed from Unix seconds because time.Duration overflows past ~292 years.
func (a *Appointment) Duration() int64 {
	secs := a.End.Unix() - a.Start.Unix()
	if a.End.Nanosecond() < a.Start.Nanosecond() {
		secs--
	}
	return secs
}

// Fields are the user-editable attributes of an appointment.
type Fields struct {
	Title       string
	Start       time.Time
	End         time.Time
	AllDay      bool
	Location    string
	Description string
}

// Normalized trims the title and location, defaults a missing End to Start
// and converts both instants to UTC. Storage orders rows by start, and
// SQLite compares the stored text, so every row must carry the same offset.
func (f Fields) Normalized() Fields {
	f.Title = strings.TrimSpace(f.Title)
	f.Location = strings.TrimSpace(f.Location)
	if f.End.IsZero() {
		f.End = f.Start
	}
	f.Start = f.Start.UTC()
	f.End = f.End.UTC()
	return f
}

// Apply replaces every editable attribute of a with f.
// ID, OwnerID and CreatedAt are left untouched.
func (a *Appointment) Apply(f Fields) {
	a.Title = f.Title
	a.Start = f.Start
	a.End = f.End
	a.AllDay = f.AllDay
	a.Location = f.Location
	a.Description = f.Description
}

// Fields returns the editable attributes of a.
func (a *Appointment) Fields() Fields {
	return Fields{
		Title:       a.Title,
		Start:       a.Start,
		End:         a.End,
		AllDay:      a.AllDay,
		Location:    a.Location,
		Description: a.Description,
	}
}

// Package domain holds the appointment rules shared by every layer:
// field validation, the ownership guard and the error taxonomy.
package domain

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned when an appointment does not exist or is not
	// owned by the acting user. The two cases are deliberately indistinguishable.
	ErrNotFound = errors.New("appointment not found")

	// ErrInvalid is the class of every *ValidationError.
	ErrInvalid = errors.New("invalid appointment")
)

// Validation failure reasons.
const (
	ReasonRequired = "required"
	ReasonTooLong  = "too_long"
	ReasonInvalid  = "invalid"
)

// FieldError names one rejected field.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError lists every rejected field of a request.
type ValidationError struct {
	Fields []FieldError
}

// Add records a rejected field.
func (e *ValidationError) Add(field, reason string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Reason: reason})
}

// Has reports whether field was rejected.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// ErrOrNil returns e when at least one field was rejected, nil otherwise.
func (e *ValidationError) ErrOrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

// Map returns field -> reason, keeping the first reason per field.
func (e *ValidationError) Map() map[string]string {
	out := make(map[string]string, len(e.Fields))
	for _, f := range e.Fields {
		if _, ok := out[f.Field]; !ok {
			out[f.Field] = f.Reason
		}
	}
	return out
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + " " + f.Reason
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalid
}

// Package domain defines domain-level errors for the auth feature.
package domain

import "errors"

var (
	// ErrDuplicateEmail is returned when registering an email that is already taken.
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrUserNotFound is returned when no user matches the lookup.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidCredentials is returned for an unknown email and for a wrong
	// password alike, so callers cannot tell the two apart.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrWeakPassword is returned when a password is shorter than MinPasswordLength.
	ErrWeakPassword = errors.New("password too short")
)

// MinPasswordLength is the minimum accepted password length in characters.
const MinPasswordLength = 8

package usecase

import "errors"

var (
	// ErrSessionNotFound is returned when no session has the given ID.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionRevoked is returned when a revoked session is presented.
	ErrSessionRevoked = errors.New("session has been revoked")

	// ErrSessionExpired is returned when an expired session is presented.
	ErrSessionExpired = errors.New("session has expired")

	// ErrInvalidRefreshToken is returned for any refresh token that cannot be exchanged.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
)

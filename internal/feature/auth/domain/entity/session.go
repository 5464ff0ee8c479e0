package entity

import "time"

// Session is a refresh-token session issued at login.
type Session struct {
	ID        string     // refresh token value (64-character hex string)
	UserID    uint       // owning user
	UserAgent string     // client's User-Agent header
	IPAddress string     // client's IP address
	CreatedAt time.Time  // issue time
	ExpiresAt time.Time  // expiry time
	RevokedAt *time.Time // revocation time, nil while active
}

// IsExpired reports whether the session has expired at now.
func (s *Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// IsRevoked reports whether the session has been revoked.
func (s *Session) IsRevoked() bool {
	return s.RevokedAt != nil
}

// IsValid reports whether the session is usable at now.
func (s *Session) IsValid(now time.Time) bool {
	return !s.IsExpired(now) && !s.IsRevoked()
}

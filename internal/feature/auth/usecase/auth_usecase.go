// Package usecase implements the identity store and the session lifecycle.
package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"appt_calendar/internal/feature/auth/domain"
	"appt_calendar/internal/feature/auth/domain/entity"
)

// dummyHash is compared against when the email is unknown so that both
// failure paths cost one bcrypt comparison.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// DefaultMaxSessionsPerUser caps concurrent sessions; the oldest is evicted.
const DefaultMaxSessionsPerUser = 5

// UserRepository persists users. Defined here, implemented in adapters.
type UserRepository interface {
	// Create fails with domain.ErrDuplicateEmail when the email is taken.
	Create(ctx context.Context, user *entity.User) error

	// FindByEmail fails with domain.ErrUserNotFound.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindByID fails with domain.ErrUserNotFound.
	FindByID(ctx context.Context, id uint) (*entity.User, error)
}

// TokenGenerator issues signed access tokens.
type TokenGenerator interface {
	GenerateToken(userID uint, email string) (string, error)
}

// SessionMeta describes the client a session is issued to.
type SessionMeta struct {
	UserAgent string
	IPAddress string
}

// TokenPair is the result of a login or a refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64 // access token lifetime in seconds
}

// Config tunes token lifetimes and the session cap.
type Config struct {
	AccessTTL          time.Duration
	RefreshTTL         time.Duration
	MaxSessionsPerUser int
}

type authUsecase struct {
	users    UserRepository
	sessions SessionRepository
	tokens   TokenGenerator
	cfg      Config
	now      func() time.Time
}

// NewAuthUsecase wires the identity store. Zero Config fields take defaults.
func NewAuthUsecase(users UserRepository, sessions SessionRepository, tokens TokenGenerator, cfg Config) *authUsecase {
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = time.Hour
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = 7 * 24 * time.Hour
	}
	if cfg.MaxSessionsPerUser <= 0 {
		cfg.MaxSessionsPerUser = DefaultMaxSessionsPerUser
	}
	return &authUsecase{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		cfg:      cfg,
		now:      time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new identity with a bcrypt-hashed password.
func (u *authUsecase) Register(ctx context.Context, email, password string) (*entity.User, error) {
	if utf8.RuneCountInString(password) < domain.MinPasswordLength {
		return nil, domain.ErrWeakPassword
	}
	user := &entity.User{Email: normalizeEmail(email)}
	if err := user.SetPassword(password); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	if err := u.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate checks email and password. Unknown email and wrong password
// both return domain.ErrInvalidCredentials.
func (u *authUsecase) Authenticate(ctx context.Context, email, password string) (*entity.User, error) {
	user, err := u.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	candidate := user
	if candidate == nil {
		candidate = &entity.User{PasswordHash: dummyHash}
	}
	ok := candidate.VerifyPassword(password)

	if user == nil || !ok {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

// Load returns the identity with id, or domain.ErrUserNotFound.
func (u *authUsecase) Load(ctx context.Context, id uint) (*entity.User, error) {
	return u.users.FindByID(ctx, id)
}

// Login authenticates and opens a new session.
func (u *authUsecase) Login(ctx context.Context, email, password string, meta SessionMeta) (*TokenPair, error) {
	user, err := u.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return u.issue(ctx, user, meta)
}

// Refresh exchanges a refresh token for a new pair and revokes the old one.
// Presenting an already revoked token revokes every session of its user.
func (u *authUsecase) Refresh(ctx context.Context, refreshToken string, meta SessionMeta) (*TokenPair, error) {
	if refreshToken == "" {
		return nil, ErrInvalidRefreshToken
	}
	s, err := u.sessions.FindByID(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}

	now := u.now()
	switch {
	case s.IsRevoked():
		if err := u.sessions.RevokeAllByUserID(ctx, s.UserID); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidRefreshToken, ErrSessionRevoked)
	case s.IsExpired(now):
		return nil, fmt.Errorf("%w: %w", ErrInvalidRefreshToken, ErrSessionExpired)
	}

	user, err := u.users.FindByID(ctx, s.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}
	if err := u.sessions.Revoke(ctx, s.ID); err != nil {
		return nil, err
	}
	return u.issue(ctx, user, meta)
}

// Logout revokes every session of userID.
func (u *authUsecase) Logout(ctx context.Context, userID uint) error {
	return u.sessions.RevokeAllByUserID(ctx, userID)
}

// PruneExpiredSessions deletes expired sessions.
func (u *authUsecase) PruneExpiredSessions(ctx context.Context) (int64, error) {
	return u.sessions.DeleteExpired(ctx)
}

func (u *authUsecase) issue(ctx context.Context, user *entity.User, meta SessionMeta) (*TokenPair, error) {
	count, err := u.sessions.CountByUserID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	for ; count >= int64(u.cfg.MaxSessionsPerUser); count-- {
		if err := u.sessions.DeleteOldestByUserID(ctx, user.ID); err != nil {
			return nil, err
		}
	}

	access, err := u.tokens.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	refresh, err := newRefreshToken()
	if err != nil {
		return nil, err
	}

	now := u.now()
	s := &entity.Session{
		ID:        refresh,
		UserID:    user.ID,
		UserAgent: meta.UserAgent,
		IPAddress: meta.IPAddress,
		CreatedAt: now,
		ExpiresAt: now.Add(u.cfg.RefreshTTL),
	}
	if err := u.sessions.Create(ctx, s); err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(u.cfg.AccessTTL / time.Second),
	}, nil
}

// newRefreshToken returns 32 random bytes as 64 hex characters.
func newRefreshToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

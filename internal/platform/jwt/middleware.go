package jwtmw

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"appt_calendar/internal/feature/auth/domain"
	"appt_calendar/internal/feature/auth/domain/entity"
)

const (
	// ContextUserID holds the acting user's id (uint).
	ContextUserID = "userID"
	// ContextUser holds the acting *entity.User.
	ContextUser = "user"
	// CookieName is the cookie carrying the access token for browser sessions.
	CookieName = "access_token"
)

// TokenParser verifies an access token.
type TokenParser interface {
	ParseToken(token string) (uint, error)
}

// UserLoader rehydrates an identity by id.
type UserLoader interface {
	Load(ctx context.Context, id uint) (*entity.User, error)
}

var errNoToken = errors.New("missing bearer token")

// tokenFrom returns the bearer token, falling back to the session cookie.
func tokenFrom(c *gin.Context) string {
	if auth := c.GetHeader("Authorization"); auth != "" {
		if strings.HasPrefix(auth, "Bearer ") {
			return strings.TrimPrefix(auth, "Bearer ")
		}
		return ""
	}
	if v, err := c.Cookie(CookieName); err == nil {
		return v
	}
	return ""
}

func resolve(c *gin.Context, parser TokenParser, users UserLoader) (*entity.User, error) {
	raw := tokenFrom(c)
	if raw == "" {
		return nil, errNoToken
	}
	id, err := parser.ParseToken(raw)
	if err != nil {
		return nil, err
	}
	user, err := users.Load(c.Request.Context(), id)
	if errors.Is(err, domain.ErrUserNotFound) {
		// Token outlived its user.
		return nil, ErrInvalidToken
	}
	return user, err
}

func setUser(c *gin.Context, user *entity.User) {
	c.Set(ContextUser, user)
	c.Set(ContextUserID, user.ID)
}

// AuthRequired rejects requests without a valid token with 401 JSON.
func AuthRequired(parser TokenParser, users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := resolve(c, parser, users)
		switch {
		case errors.Is(err, errNoToken):
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		case errors.Is(err, ErrInvalidToken):
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		case err != nil:
			slog.Error("failed to load acting user", "error", err, "remote_addr", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		setUser(c, user)
		c.Next()
	}
}

// PageAuthRequired redirects unauthenticated browser requests to loginPath,
// passing the original path in the "next" query parameter.
func PageAuthRequired(parser TokenParser, users UserLoader, loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := resolve(c, parser, users)
		if err != nil {
			if !errors.Is(err, errNoToken) && !errors.Is(err, ErrInvalidToken) {
				slog.Error("failed to load acting user", "error", err, "remote_addr", c.ClientIP())
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
			target := loginPath + "?next=" + url.QueryEscape(c.Request.URL.RequestURI())
			c.Redirect(http.StatusSeeOther, target)
			c.Abort()
			return
		}
		setUser(c, user)
		c.Next()
	}
}

// OptionalAuth sets the acting user when one can be resolved and never aborts.
func OptionalAuth(parser TokenParser, users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := resolve(c, parser, users)
		if err == nil {
			setUser(c, user)
		} else if !errors.Is(err, errNoToken) && !errors.Is(err, ErrInvalidToken) {
			slog.Warn("failed to load acting user", "error", err, "remote_addr", c.ClientIP())
		}
		c.Next()
	}
}

// CurrentUser returns the acting user set by one of the middlewares.
func CurrentUser(c *gin.Context) (*entity.User, bool) {
	v, ok := c.Get(ContextUser)
	if !ok {
		return nil, false
	}
	user, ok := v.(*entity.User)
	return user, ok && user != nil
}

// CurrentUserID returns the acting user's id.
func CurrentUserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

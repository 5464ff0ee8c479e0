// Package handler provides the HTTP handlers of the auth feature.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"appt_calendar/internal/feature/auth/domain"
	"appt_calendar/internal/feature/auth/domain/entity"
	"appt_calendar/internal/feature/auth/transport/http/dto"
	"appt_calendar/internal/feature/auth/usecase"
	jwtmw "appt_calendar/internal/platform/jwt"
)

// AuthUsecase is the identity store as seen by the HTTP layer.
type AuthUsecase interface {
	Register(ctx context.Context, email, password string) (*entity.User, error)
	Login(ctx context.Context, email, password string, meta usecase.SessionMeta) (*usecase.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string, meta usecase.SessionMeta) (*usecase.TokenPair, error)
	Logout(ctx context.Context, userID uint) error
}

// AuthHandler serves the JSON auth endpoints.
type AuthHandler struct {
	auth AuthUsecase
}

func NewAuthHandler(auth AuthUsecase) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func sessionMeta(c *gin.Context) usecase.SessionMeta {
	return usecase.SessionMeta{UserAgent: c.Request.UserAgent(), IPAddress: c.ClientIP()}
}

func tokenResponse(p *usecase.TokenPair) dto.TokenRes {
	return dto.TokenRes{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    p.ExpiresIn,
	}
}

// Signup registers a user.
//   - 400 on a malformed body
//   - 409 when the email cannot be registered (the reason is not disclosed)
//   - 201 on success
func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("signup validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	_, err := h.auth.Register(c.Request.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, domain.ErrWeakPassword):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, domain.ErrDuplicateEmail):
		slog.Warn("signup failed", "error", err, "email", req.Email, "remote_addr", c.ClientIP())
		c.JSON(http.StatusConflict, gin.H{"error": "signup failed"})
		return
	case err != nil:
		slog.Error("signup failed", "error", err, "email", req.Email, "remote_addr", c.ClientIP())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	slog.Info("user signup successful", "email", req.Email, "remote_addr", c.ClientIP())
	c.JSON(http.StatusCreated, gin.H{"message": "ok"})
}

// Login authenticates and returns a token pair.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("login validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	pair, err := h.auth.Login(c.Request.Context(), req.Email, req.Password, sessionMeta(c))
	if err != nil {
		if !errors.Is(err, domain.ErrInvalidCredentials) {
			slog.Error("login failed", "error", err, "email", req.Email, "remote_addr", c.ClientIP())
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		slog.Warn("login failed", "error", err, "email", req.Email, "remote_addr", c.ClientIP())
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
		return
	}
	slog.Info("user login successful", "email", req.Email, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, tokenResponse(pair))
}

// Refresh rotates a refresh token.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	pair, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken, sessionMeta(c))
	if err != nil {
		if !errors.Is(err, usecase.ErrInvalidRefreshToken) {
			slog.Error("token refresh failed", "error", err, "remote_addr", c.ClientIP())
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		slog.Warn("token refresh rejected", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
		return
	}
	c.JSON(http.StatusOK, tokenResponse(pair))
}

// Logout revokes every session of the acting user. Requires AuthRequired.
func (h *AuthHandler) Logout(c *gin.Context) {
	userID, ok := jwtmw.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	if err := h.auth.Logout(c.Request.Context(), userID); err != nil {
		slog.Error("logout failed", "error", err, "user_id", userID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.Status(http.StatusNoContent)
}

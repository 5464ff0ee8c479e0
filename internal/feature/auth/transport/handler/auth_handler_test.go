package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"appt_calendar/internal/feature/auth/domain"
	"appt_calendar/internal/feature/auth/domain/entity"
	"appt_calendar/internal/feature/auth/usecase"
	jwtmw "appt_calendar/internal/platform/jwt"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// mockAuthUsecase is a mock implementation of AuthUsecase.
type mockAuthUsecase struct {
	RegisterFunc func(ctx context.Context, email, password string) (*entity.User, error)
	LoginFunc    func(ctx context.Context, email, password string, meta usecase.SessionMeta) (*usecase.TokenPair, error)
	RefreshFunc  func(ctx context.Context, token string, meta usecase.SessionMeta) (*usecase.TokenPair, error)
	LogoutFunc   func(ctx context.Context, userID uint) error
}

func (m *mockAuthUsecase) Register(ctx context.Context, email, password string) (*entity.User, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, email, password)
	}
	return &entity.User{ID: 1, Email: email}, nil
}

func (m *mockAuthUsecase) Login(ctx context.Context, email, password string, meta usecase.SessionMeta) (*usecase.TokenPair, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password, meta)
	}
	return nil, domain.ErrInvalidCredentials
}

func (m *mockAuthUsecase) Refresh(ctx context.Context, token string, meta usecase.SessionMeta) (*usecase.TokenPair, error) {
	if m.RefreshFunc != nil {
		return m.RefreshFunc(ctx, token, meta)
	}
	return nil, usecase.ErrInvalidRefreshToken
}

func (m *mockAuthUsecase) Logout(ctx context.Context, userID uint) error {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx, userID)
	}
	return nil
}

var testPair = &usecase.TokenPair{AccessToken: "access", RefreshToken: "refresh", ExpiresIn: 3600}

func postJSON(router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "test-agent")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthHandler_Signup(t *testing.T) {
	tests := []struct {
		name         string
		body         gin.H
		registerFunc func(ctx context.Context, email, password string) (*entity.User, error)
		wantStatus   int
		wantBody     string
	}{
		{
			name:       "success: user registration",
			body:       gin.H{"email": "test@example.com", "password": "password123"},
			wantStatus: http.StatusCreated,
			wantBody:   `{"message":"ok"}`,
		},
		{
			name:       "failure: invalid email address",
			body:       gin.H{"email": "invalid-email", "password": "password123"},
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"Key: 'SignupReq.Email' Error:Field validation for 'Email' failed on the 'email' tag"}`,
		},
		{
			name:       "failure: short password",
			body:       gin.H{"email": "test@example.com", "password": "short"},
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"Key: 'SignupReq.Password' Error:Field validation for 'Password' failed on the 'min' tag"}`,
		},
		{
			name: "failure: duplicate email",
			body: gin.H{"email": "existing@example.com", "password": "password123"},
			registerFunc: func(ctx context.Context, email, password string) (*entity.User, error) {
				return nil, domain.ErrDuplicateEmail
			},
			wantStatus: http.StatusConflict,
			wantBody:   `{"error":"signup failed"}`,
		},
		{
			name: "failure: weak password from usecase",
			body: gin.H{"email": "test@example.com", "password": "12345678"},
			registerFunc: func(ctx context.Context, email, password string) (*entity.User, error) {
				return nil, domain.ErrWeakPassword
			},
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"` + domain.ErrWeakPassword.Error() + `"}`,
		},
		{
			name: "failure: storage error",
			body: gin.H{"email": "test@example.com", "password": "password123"},
			registerFunc: func(ctx context.Context, email, password string) (*entity.User, error) {
				return nil, errors.New("db down")
			},
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"internal server error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAuthHandler(&mockAuthUsecase{RegisterFunc: tt.registerFunc})
			router := gin.New()
			router.POST("/signup", h.Signup)

			w := postJSON(router, "/signup", tt.body)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	tests := []struct {
		name       string
		body       gin.H
		loginFunc  func(ctx context.Context, email, password string, meta usecase.SessionMeta) (*usecase.TokenPair, error)
		wantStatus int
		wantBody   string
	}{
		{
			name: "success",
			body: gin.H{"email": "test@example.com", "password": "password123"},
			loginFunc: func(ctx context.Context, email, password string, meta usecase.SessionMeta) (*usecase.TokenPair, error) {
				if meta.UserAgent != "test-agent" {
					return nil, errors.New("user agent not forwarded")
				}
				return testPair, nil
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"access_token":"access","refresh_token":"refresh","token_type":"Bearer","expires_in":3600}`,
		},
		{
			name:       "failure: missing password",
			body:       gin.H{"email": "test@example.com"},
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"Key: 'LoginReq.Password' Error:Field validation for 'Password' failed on the 'required' tag"}`,
		},
		{
			name:       "failure: wrong credentials",
			body:       gin.H{"email": "test@example.com", "password": "wrong"},
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"error":"invalid email or password"}`,
		},
		{
			name: "failure: storage error",
			body: gin.H{"email": "test@example.com", "password": "password123"},
			loginFunc: func(ctx context.Context, email, password string, meta usecase.SessionMeta) (*usecase.TokenPair, error) {
				return nil, errors.New("db down")
			},
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"internal server error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAuthHandler(&mockAuthUsecase{LoginFunc: tt.loginFunc})
			router := gin.New()
			router.POST("/login", h.Login)

			w := postJSON(router, "/login", tt.body)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
		})
	}
}

func TestAuthHandler_Refresh(t *testing.T) {
	tests := []struct {
		name        string
		body        gin.H
		refreshFunc func(ctx context.Context, token string, meta usecase.SessionMeta) (*usecase.TokenPair, error)
		wantStatus  int
	}{
		{
			name: "success",
			body: gin.H{"refresh_token": "refresh"},
			refreshFunc: func(ctx context.Context, token string, meta usecase.SessionMeta) (*usecase.TokenPair, error) {
				return testPair, nil
			},
			wantStatus: http.StatusOK,
		},
		{"missing token", gin.H{}, nil, http.StatusBadRequest},
		{"rejected token", gin.H{"refresh_token": "stale"}, nil, http.StatusUnauthorized},
		{
			name: "reused token",
			body: gin.H{"refresh_token": "reused"},
			refreshFunc: func(ctx context.Context, token string, meta usecase.SessionMeta) (*usecase.TokenPair, error) {
				return nil, errors.Join(usecase.ErrInvalidRefreshToken, usecase.ErrSessionRevoked)
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "storage error",
			body: gin.H{"refresh_token": "refresh"},
			refreshFunc: func(ctx context.Context, token string, meta usecase.SessionMeta) (*usecase.TokenPair, error) {
				return nil, errors.New("db down")
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAuthHandler(&mockAuthUsecase{RefreshFunc: tt.refreshFunc})
			router := gin.New()
			router.POST("/refresh", h.Refresh)

			w := postJSON(router, "/refresh", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	t.Run("revokes the acting user's sessions", func(t *testing.T) {
		var got uint
		h := NewAuthHandler(&mockAuthUsecase{LogoutFunc: func(ctx context.Context, userID uint) error {
			got = userID
			return nil
		}})
		router := gin.New()
		router.POST("/logout", func(c *gin.Context) { c.Set(jwtmw.ContextUserID, uint(7)) }, h.Logout)

		w := postJSON(router, "/logout", nil)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, uint(7), got)
	})

	t.Run("no identity", func(t *testing.T) {
		h := NewAuthHandler(&mockAuthUsecase{})
		router := gin.New()
		router.POST("/logout", h.Logout)

		w := postJSON(router, "/logout", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("usecase error", func(t *testing.T) {
		h := NewAuthHandler(&mockAuthUsecase{LogoutFunc: func(ctx context.Context, userID uint) error {
			return errors.New("db down")
		}})
		router := gin.New()
		router.POST("/logout", func(c *gin.Context) { c.Set(jwtmw.ContextUserID, uint(7)) }, h.Logout)

		w := postJSON(router, "/logout", nil)
		require.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

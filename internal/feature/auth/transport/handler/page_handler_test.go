package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"appt_calendar/internal/feature/auth/domain"
	"appt_calendar/internal/feature/auth/domain/entity"
	"appt_calendar/internal/feature/auth/usecase"
	jwtmw "appt_calendar/internal/platform/jwt"
	"appt_calendar/internal/web"
)

func setupPageRouter(auth AuthUsecase, signedIn bool) *gin.Engine {
	h := NewPageHandler(auth, CookieConfig{MaxAge: time.Hour})
	r := gin.New()
	r.SetHTMLTemplate(web.MustTemplates())
	if signedIn {
		r.Use(func(c *gin.Context) {
			c.Set(jwtmw.ContextUserID, uint(7))
			c.Set(jwtmw.ContextUser, &entity.User{ID: 7, Email: "me@example.com"})
		})
	}
	r.GET("/login", h.LoginForm)
	r.POST("/login", h.LoginSubmit)
	r.GET("/register", h.RegisterForm)
	r.POST("/register", h.RegisterSubmit)
	r.GET("/logout", h.Logout)
	return r
}

func postForm(r *gin.Engine, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func sessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == jwtmw.CookieName {
			return c
		}
	}
	return nil
}

func TestSafeNext(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"":                      "/",
		"/appointments/3":       "/appointments/3",
		"https://evil.example":  "/",
		"//evil.example":        "/",
		"/\\evil.example":       "/",
		"appointments":          "/",
		"/appointments/new?x=1": "/appointments/new?x=1",
	}
	for in, want := range tests {
		assert.Equal(t, want, safeNext(in), "input %q", in)
	}
}

func TestPageHandler_LoginForm(t *testing.T) {
	t.Run("renders the form with next", func(t *testing.T) {
		r := setupPageRouter(&mockAuthUsecase{}, false)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/login?next=/appointments/3", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `name="next" value="/appointments/3"`)
	})

	t.Run("signed-in users go to the list", func(t *testing.T) {
		r := setupPageRouter(&mockAuthUsecase{}, true)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/login", nil))

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/", w.Header().Get("Location"))
	})
}

func TestPageHandler_LoginSubmit(t *testing.T) {
	success := func(ctx context.Context, email, password string, meta usecase.SessionMeta) (*usecase.TokenPair, error) {
		return testPair, nil
	}

	t.Run("success sets cookie and follows next", func(t *testing.T) {
		r := setupPageRouter(&mockAuthUsecase{LoginFunc: success}, false)
		w := postForm(r, "/login", url.Values{"email": {"a@b.c"}, "password": {"password"}, "next": {"/appointments/3"}})

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/appointments/3", w.Header().Get("Location"))
		c := sessionCookie(w)
		require.NotNil(t, c)
		assert.Equal(t, "access", c.Value)
		assert.True(t, c.HttpOnly)
		assert.Equal(t, 3600, c.MaxAge)
	})

	t.Run("offsite next falls back to the list", func(t *testing.T) {
		r := setupPageRouter(&mockAuthUsecase{LoginFunc: success}, false)
		w := postForm(r, "/login", url.Values{"email": {"a@b.c"}, "password": {"password"}, "next": {"//evil.example"}})

		assert.Equal(t, "/", w.Header().Get("Location"))
	})

	t.Run("wrong credentials re-render", func(t *testing.T) {
		r := setupPageRouter(&mockAuthUsecase{}, false)
		w := postForm(r, "/login", url.Values{"email": {"a@b.c"}, "password": {"nope"}})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid email or password.")
		assert.Contains(t, w.Body.String(), `value="a@b.c"`)
		assert.Nil(t, sessionCookie(w))
	})

	t.Run("missing fields", func(t *testing.T) {
		r := setupPageRouter(&mockAuthUsecase{}, false)
		w := postForm(r, "/login", url.Values{"email": {"a@b.c"}})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Email and password are required.")
	})

	t.Run("storage error renders the error page", func(t *testing.T) {
		r := setupPageRouter(&mockAuthUsecase{LoginFunc: func(ctx context.Context, email, password string, meta usecase.SessionMeta) (*usecase.TokenPair, error) {
			return nil, errors.New("db down")
		}}, false)
		w := postForm(r, "/login", url.Values{"email": {"a@b.c"}, "password": {"password"}})

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "Something went wrong.")
	})
}

func TestPageHandler_RegisterSubmit(t *testing.T) {
	valid := url.Values{"email": {"new@example.com"}, "password": {"password123"}, "confirm": {"password123"}}

	t.Run("success signs in", func(t *testing.T) {
		var registered string
		auth := &mockAuthUsecase{
			RegisterFunc: func(ctx context.Context, email, password string) (*entity.User, error) {
				registered = email
				return &entity.User{ID: 1, Email: email}, nil
			},
			LoginFunc: func(ctx context.Context, email, password string, meta usecase.SessionMeta) (*usecase.TokenPair, error) {
				return testPair, nil
			},
		}
		r := setupPageRouter(auth, false)
		w := postForm(r, "/register", valid)

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/", w.Header().Get("Location"))
		assert.Equal(t, "new@example.com", registered)
		require.NotNil(t, sessionCookie(w))
	})

	t.Run("field errors", func(t *testing.T) {
		tests := []struct {
			name string
			form url.Values
			want string
		}{
			{"bad email", url.Values{"email": {"nope"}, "password": {"password123"}, "confirm": {"password123"}}, "Enter a valid email address."},
			{"short password", url.Values{"email": {"a@b.co"}, "password": {"short"}, "confirm": {"short"}}, "Password must be at least 8 characters."},
			{"mismatch", url.Values{"email": {"a@b.co"}, "password": {"password123"}, "confirm": {"password124"}}, "Passwords do not match."},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				r := setupPageRouter(&mockAuthUsecase{}, false)
				w := postForm(r, "/register", tt.form)

				assert.Equal(t, http.StatusBadRequest, w.Code)
				assert.Contains(t, w.Body.String(), tt.want)
			})
		}
	})

	t.Run("duplicate email", func(t *testing.T) {
		r := setupPageRouter(&mockAuthUsecase{RegisterFunc: func(ctx context.Context, email, password string) (*entity.User, error) {
			return nil, domain.ErrDuplicateEmail
		}}, false)
		w := postForm(r, "/register", valid)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "That email is already registered.")
	})

	t.Run("login failure after registration", func(t *testing.T) {
		r := setupPageRouter(&mockAuthUsecase{LoginFunc: func(ctx context.Context, email, password string, meta usecase.SessionMeta) (*usecase.TokenPair, error) {
			return nil, errors.New("session store down")
		}}, false)
		w := postForm(r, "/register", valid)

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/login", w.Header().Get("Location"))
	})
}

func TestPageHandler_Logout(t *testing.T) {
	var revoked uint
	r := setupPageRouter(&mockAuthUsecase{LogoutFunc: func(ctx context.Context, userID uint) error {
		revoked = userID
		return nil
	}}, true)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/logout", nil))

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
	assert.Equal(t, uint(7), revoked)
	c := sessionCookie(w)
	require.NotNil(t, c)
	assert.Empty(t, c.Value)
	assert.Negative(t, c.MaxAge)
}

package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"appt_calendar/internal/feature/auth/domain"
	"appt_calendar/internal/feature/auth/transport/http/dto"
	jwtmw "appt_calendar/internal/platform/jwt"
)

// CookieConfig controls the browser session cookie.
type CookieConfig struct {
	MaxAge time.Duration
	Secure bool
}

// PageHandler serves the HTML login, registration and logout pages.
type PageHandler struct {
	auth   AuthUsecase
	cookie CookieConfig
}

func NewPageHandler(auth AuthUsecase, cookie CookieConfig) *PageHandler {
	return &PageHandler{auth: auth, cookie: cookie}
}

var registerMessages = map[string]string{
	"Email":    "Enter a valid email address.",
	"Password": "Password must be at least 8 characters.",
	"Confirm":  "Passwords do not match.",
}

// safeNext only allows local absolute paths as redirect targets.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}

func (h *PageHandler) setSession(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(jwtmw.CookieName, token, int(h.cookie.MaxAge/time.Second), "/", "", h.cookie.Secure, true)
}

func (h *PageHandler) clearSession(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(jwtmw.CookieName, "", -1, "/", "", h.cookie.Secure, true)
}

// LoginForm renders the login page. Signed-in users go to the list.
func (h *PageHandler) LoginForm(c *gin.Context) {
	if _, ok := jwtmw.CurrentUser(c); ok {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	c.HTML(http.StatusOK, "login.html", gin.H{"Title": "Log in", "Next": c.Query("next")})
}

// LoginSubmit authenticates the form and sets the session cookie.
func (h *PageHandler) LoginSubmit(c *gin.Context) {
	var form dto.LoginForm
	if err := c.ShouldBind(&form); err != nil {
		c.HTML(http.StatusBadRequest, "login.html", gin.H{
			"Title": "Log in", "Email": form.Email, "Next": form.Next,
			"Error": "Email and password are required.",
		})
		return
	}

	pair, err := h.auth.Login(c.Request.Context(), form.Email, form.Password, sessionMeta(c))
	if err != nil {
		if !errors.Is(err, domain.ErrInvalidCredentials) {
			slog.Error("login failed", "error", err, "email", form.Email, "remote_addr", c.ClientIP())
			c.HTML(http.StatusInternalServerError, "error.html", gin.H{"Title": "Error", "Message": "Something went wrong."})
			return
		}
		slog.Warn("login failed", "error", err, "email", form.Email, "remote_addr", c.ClientIP())
		c.HTML(http.StatusUnauthorized, "login.html", gin.H{
			"Title": "Log in", "Email": form.Email, "Next": form.Next,
			"Error": "Invalid email or password.",
		})
		return
	}

	h.setSession(c, pair.AccessToken)
	c.Redirect(http.StatusSeeOther, safeNext(form.Next))
}

// RegisterForm renders the registration page.
func (h *PageHandler) RegisterForm(c *gin.Context) {
	if _, ok := jwtmw.CurrentUser(c); ok {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	c.HTML(http.StatusOK, "register.html", gin.H{"Title": "Register"})
}

// RegisterSubmit creates the account and signs the new user in.
func (h *PageHandler) RegisterSubmit(c *gin.Context) {
	var form dto.RegisterForm
	if err := c.ShouldBind(&form); err != nil {
		errs := map[string]string{}
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				errs[fe.Field()] = registerMessages[fe.Field()]
			}
		} else {
			errs["Email"] = registerMessages["Email"]
		}
		c.HTML(http.StatusBadRequest, "register.html", gin.H{"Title": "Register", "Email": form.Email, "Errors": errs})
		return
	}

	ctx := c.Request.Context()
	if _, err := h.auth.Register(ctx, form.Email, form.Password); err != nil {
		switch {
		case errors.Is(err, domain.ErrDuplicateEmail):
			slog.Warn("registration failed", "error", err, "email", form.Email, "remote_addr", c.ClientIP())
			c.HTML(http.StatusConflict, "register.html", gin.H{
				"Title": "Register", "Email": form.Email,
				"Errors": map[string]string{"Email": "That email is already registered."},
			})
		case errors.Is(err, domain.ErrWeakPassword):
			c.HTML(http.StatusBadRequest, "register.html", gin.H{
				"Title": "Register", "Email": form.Email,
				"Errors": map[string]string{"Password": registerMessages["Password"]},
			})
		default:
			slog.Error("registration failed", "error", err, "email", form.Email, "remote_addr", c.ClientIP())
			c.HTML(http.StatusInternalServerError, "error.html", gin.H{"Title": "Error", "Message": "Something went wrong."})
		}
		return
	}

	pair, err := h.auth.Login(ctx, form.Email, form.Password, sessionMeta(c))
	if err != nil {
		slog.Error("login after registration failed", "error", err, "email", form.Email)
		c.Redirect(http.StatusSeeOther, "/login")
		return
	}
	slog.Info("user registered", "email", form.Email, "remote_addr", c.ClientIP())
	h.setSession(c, pair.AccessToken)
	c.Redirect(http.StatusSeeOther, "/")
}

// Logout revokes the user's sessions, clears the cookie and returns to login.
func (h *PageHandler) Logout(c *gin.Context) {
	if userID, ok := jwtmw.CurrentUserID(c); ok {
		if err := h.auth.Logout(c.Request.Context(), userID); err != nil {
			slog.Error("logout failed", "error", err, "user_id", userID)
		}
	}
	h.clearSession(c)
	c.Redirect(http.StatusSeeOther, "/login")
}

// Package router assembles the gin engine: middleware, templates and routes.
package router

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	appthandler "appt_calendar/internal/feature/appointments/transport/handler"
	authhandler "appt_calendar/internal/feature/auth/transport/handler"
	"appt_calendar/internal/platform/http/handler"
	"appt_calendar/internal/platform/http/middleware"
	jwtmw "appt_calendar/internal/platform/jwt"
	"appt_calendar/internal/shared/ratelimiter"
	"appt_calendar/internal/web"
)

const loginPath = "/login"

// Config holds router-level settings.
type Config struct {
	// AllowedOrigins lists CORS origins; "*" allows any. Empty disables CORS.
	AllowedOrigins []string

	// TrustedProxies lists the proxy IPs or CIDRs whose X-Forwarded-For is
	// believed. Empty means the client IP is always the remote address.
	TrustedProxies []string
}

// LoadConfig reads CORS_ALLOWED_ORIGINS and TRUSTED_PROXIES as
// comma-separated lists.
func LoadConfig() Config {
	return Config{
		AllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		TrustedProxies: splitList(os.Getenv("TRUSTED_PROXIES")),
	}
}

func splitList(s string) []string {
	var out []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Deps are the handlers and collaborators the routes are bound to.
type Deps struct {
	Auth             *authhandler.AuthHandler
	AuthPages        *authhandler.PageHandler
	Appointments     *appthandler.AppointmentHandler
	AppointmentPages *appthandler.PageHandler
	Tokens           jwtmw.TokenParser
	Users            jwtmw.UserLoader
	Limiter          *ratelimiter.RateLimiter
	Health           []handler.Pinger
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders:    []string{middleware.HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 1 && origins[0] == "*" {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

// byContentType sends JSON bodies to api and everything else to page.
func byContentType(api, page gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.ContentType() == gin.MIMEJSON {
			api(c)
			return
		}
		page(c)
	}
}

func NewRouter(cfg Config, d Deps) (*gin.Engine, error) {
	r := gin.New()
	// The rate limiter keys on ClientIP, so forwarded headers count only
	// when they come from a configured proxy.
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogger(nil, "/healthz"))
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(corsMiddleware(cfg.AllowedOrigins))
	}

	r.SetHTMLTemplate(web.MustTemplates())
	r.StaticFS("/static", web.Static())

	health := handler.Health(d.Health...)
	r.GET("/healthz", health)
	r.HEAD("/healthz", health)
	r.OPTIONS("/healthz", health)

	limit := d.Limiter.Middleware()
	optional := jwtmw.OptionalAuth(d.Tokens, d.Users)
	required := jwtmw.AuthRequired(d.Tokens, d.Users)
	pages := jwtmw.PageAuthRequired(d.Tokens, d.Users, loginPath)

	// Accounts. POST /login serves both the JSON API and the HTML form.
	r.POST("/signup", limit, d.Auth.Signup)
	r.POST("/refresh", limit, d.Auth.Refresh)
	r.POST("/logout", required, d.Auth.Logout)
	r.GET(loginPath, optional, d.AuthPages.LoginForm)
	r.POST(loginPath, limit, byContentType(d.Auth.Login, d.AuthPages.LoginSubmit))
	r.GET("/register", optional, d.AuthPages.RegisterForm)
	r.POST("/register", limit, d.AuthPages.RegisterSubmit)
	r.GET("/logout", optional, d.AuthPages.Logout)

	// JSON API. DELETE resolves identity optionally so that an anonymous
	// caller gets the Forbidden status rather than a 401.
	api := r.Group("/api/appointments")
	api.DELETE("/:id", optional, d.Appointments.Delete)
	authed := api.Group("", required)
	{
		authed.GET("", d.Appointments.List)
		authed.POST("", d.Appointments.Create)
		authed.GET("/:id", d.Appointments.Get)
		authed.PUT("/:id", d.Appointments.Update)
	}

	// HTML pages.
	r.DELETE("/appointments/:id", optional, d.Appointments.Delete)
	page := r.Group("/", pages)
	{
		page.GET("", d.AppointmentPages.List)
		page.GET("appointments/new", d.AppointmentPages.NewForm)
		page.POST("appointments/new", d.AppointmentPages.CreateSubmit)
		page.GET("appointments/:id", d.AppointmentPages.Detail)
		page.GET("appointments/:id/edit", d.AppointmentPages.EditForm)
		page.POST("appointments/:id/edit", d.AppointmentPages.EditSubmit)
	}

	r.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") || c.ContentType() == gin.MIMEJSON {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.HTML(http.StatusNotFound, "error.html", gin.H{"Title": "Not found", "Message": "That page does not exist."})
	})

	return r, nil
}

package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	redisv9 "github.com/redis/go-redis/v9"

	"appt_calendar/internal/app/di"
	"appt_calendar/internal/app/router"
	apptadapters "appt_calendar/internal/feature/appointments/adapters"
	appthandler "appt_calendar/internal/feature/appointments/transport/handler"
	apptusecase "appt_calendar/internal/feature/appointments/usecase"
	authadapters "appt_calendar/internal/feature/auth/adapters"
	"appt_calendar/internal/feature/auth/domain/entity"
	authhandler "appt_calendar/internal/feature/auth/transport/handler"
	authusecase "appt_calendar/internal/feature/auth/usecase"
	"appt_calendar/internal/platform/db"
	"appt_calendar/internal/platform/http/handler"
	jwtmw "appt_calendar/internal/platform/jwt"
	platformredis "appt_calendar/internal/platform/redis"
	"appt_calendar/internal/shared/ratelimiter"
)

const (
	shutdownTimeout = 10 * time.Second
	janitorInterval = time.Hour
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to read .env", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// db
	dbCfg := db.LoadConfigFromEnv()
	gdb, err := db.Open(dbCfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer func() {
		if err := db.Close(gdb); err != nil {
			slog.Error("failed to close database", "error", err)
		}
	}()
	if dbCfg.RunMigrations || dbCfg.Driver == db.DriverSQLite {
		if err := db.AutoMigrate(gdb, &entity.User{}, &authadapters.SessionModel{}, &apptadapters.AppointmentModel{}); err != nil {
			log.Fatalf("database: %v", err)
		}
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	// Redis
	var rdb *redisv9.Client
	redisCfg := platformredis.LoadConfig()
	if redisCfg.Enabled() {
		if tmp, err := platformredis.NewRedisClient(ctx, redisCfg); err != nil {
			slog.Warn("Redis unavailable, running with SQL sessions and no cache")
		} else {
			rdb = tmp
			defer func() {
				if err := rdb.Close(); err != nil {
					slog.Error("failed to close Redis client", "error", err)
				}
			}()
		}
	}

	// JWT
	jwtCfg, err := jwtmw.LoadConfigFromEnv()
	if err != nil {
		log.Fatalf("jwt: %v", err)
	}
	tokens := jwtmw.NewGenerator(jwtCfg.Secret, jwtCfg.Expiration)

	// Usecase
	authUC := authusecase.NewAuthUsecase(
		authadapters.NewUserGorm(gdb),
		di.NewSessionRepository(rdb, gdb),
		tokens,
		authusecase.Config{AccessTTL: jwtCfg.Expiration, RefreshTTL: envDuration("REFRESH_TOKEN_TTL", 0)},
	)
	apptUC := apptusecase.NewAppointmentUsecase(di.NewAppointmentRepository(rdb, gdb, redisCfg.CacheTTL))

	// Handler
	cookieSecure, _ := strconv.ParseBool(os.Getenv("COOKIE_SECURE"))
	limiter := ratelimiter.NewRateLimiter(ratelimiter.LoadConfigFromEnv())
	health := []handler.Pinger{sqlDB}
	if rdb != nil {
		health = append(health, handler.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() }))
	}

	engine, err := router.NewRouter(router.LoadConfig(), router.Deps{
		Auth:             authhandler.NewAuthHandler(authUC),
		AuthPages:        authhandler.NewPageHandler(authUC, authhandler.CookieConfig{MaxAge: jwtCfg.Expiration, Secure: cookieSecure}),
		Appointments:     appthandler.NewAppointmentHandler(apptUC),
		AppointmentPages: appthandler.NewPageHandler(apptUC),
		Tokens:           tokens,
		Users:            authUC,
		Limiter:          limiter,
		Health:           health,
	})
	if err != nil {
		log.Fatalf("router: %v", err)
	}

	// Background workers stop with ctx.
	go limiter.Run(ctx, time.Minute)
	go authusecase.RunSessionJanitor(ctx, authUC, janitorInterval)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
}

// envDuration parses key as a time.Duration, returning fallback when unset or invalid.
func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("ignoring invalid duration", "key", key, "value", v)
		return fallback
	}
	return d
}

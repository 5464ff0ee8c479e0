// Package db opens the gorm connection for the configured driver.
package db

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// retryInterval is the pause between connection attempts.
var retryInterval = 3 * time.Second

// Config holds the database connection settings.
type Config struct {
	Driver         string
	Path           string // sqlite file path
	Host           string
	Port           string
	User           string
	Password       string
	Name           string
	SSLMode        string
	RunMigrations  bool
	ConnectTimeout time.Duration
}

// LoadConfigFromEnv reads the database settings from the environment.
// The sqlite driver with "calendar.db" is the default.
func LoadConfigFromEnv() Config {
	cfg := Config{
		Driver:         strings.ToLower(getenv("DB_DRIVER", DriverSQLite)),
		Path:           getenv("DB_PATH", "calendar.db"),
		Host:           getenv("DB_HOST", "localhost"),
		Port:           getenv("DB_PORT", "5432"),
		User:           os.Getenv("DB_USER"),
		Password:       os.Getenv("DB_PASSWORD"),
		Name:           os.Getenv("DB_NAME"),
		SSLMode:        getenv("DB_SSLMODE", "disable"),
		ConnectTimeout: 60 * time.Second,
	}
	cfg.RunMigrations, _ = strconv.ParseBool(os.Getenv("RUN_MIGRATIONS"))
	return cfg
}

// BuildDSN returns the postgres keyword/value DSN for cfg.
func BuildDSN(cfg Config) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)
}

// SQLiteDSN enables foreign keys on a sqlite path unless the caller
// already passed connection parameters.
func SQLiteDSN(path string) string {
	if strings.Contains(path, "?") {
		return path
	}
	return path + "?_foreign_keys=on"
}

// Opener opens a gorm connection for a DSN.
type Opener func(dsn string) (*gorm.DB, error)

// ConnectWithRetry calls open until it succeeds or timeout elapses.
func ConnectWithRetry(dsn string, timeout time.Duration, open Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := open(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("db connect failed after %s: %w", timeout, err)
		}
		slog.Warn("db connect failed, retrying", "error", err, "retry_in", retryInterval)
		time.Sleep(retryInterval)
	}
}

// Open connects to the database selected by cfg.Driver.
func Open(cfg Config) (*gorm.DB, error) {
	switch cfg.Driver {
	case DriverSQLite, "":
		db, err := gorm.Open(sqlite.Open(SQLiteDSN(cfg.Path)), gormConfig())
		if err != nil {
			return nil, fmt.Errorf("open sqlite %q: %w", cfg.Path, err)
		}
		return db, nil
	case DriverPostgres:
		return ConnectWithRetry(BuildDSN(cfg), cfg.ConnectTimeout, func(dsn string) (*gorm.DB, error) {
			return gorm.Open(postgres.Open(dsn), gormConfig())
		})
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}
}

// AutoMigrate creates or updates the tables of the given models.
func AutoMigrate(db *gorm.DB, models ...any) error {
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}

// Close releases the connection pool behind db.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func gormConfig() *gorm.Config {
	return &gorm.Config{TranslateError: true}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

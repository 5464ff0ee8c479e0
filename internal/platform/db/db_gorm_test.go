package db

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestBuildDSN(t *testing.T) {
	t.Parallel()

	cfg := Config{
		Host:     "db.internal",
		Port:     "5433",
		User:     "calendar",
		Password: "secret",
		Name:     "calendar",
		SSLMode:  "require",
	}

	assert.Equal(t,
		"host=db.internal port=5433 user=calendar password=secret dbname=calendar sslmode=require TimeZone=UTC",
		BuildDSN(cfg))
}

func TestSQLiteDSN(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "calendar.db?_foreign_keys=on", SQLiteDSN("calendar.db"))
	assert.Equal(t, "file::memory:?cache=shared", SQLiteDSN("file::memory:?cache=shared"))
}

func TestConnectWithRetry_SuccessOnFirstTry(t *testing.T) {
	mockDB := &gorm.DB{}
	attempts := 0
	opener := func(dsn string) (*gorm.DB, error) {
		attempts++
		assert.Equal(t, "test-dsn", dsn)
		return mockDB, nil
	}

	db, err := ConnectWithRetry("test-dsn", 5*time.Second, opener)

	require.NoError(t, err)
	assert.Same(t, mockDB, db)
	assert.Equal(t, 1, attempts)
}

func TestConnectWithRetry_RetriesOnFailure(t *testing.T) {
	retryInterval = 10 * time.Millisecond
	t.Cleanup(func() { retryInterval = 3 * time.Second })

	mockDB := &gorm.DB{}
	attempts := 0
	opener := func(dsn string) (*gorm.DB, error) {
		attempts++
		if attempts < 3 {
			return nil, errors.New("connection refused")
		}
		return mockDB, nil
	}

	db, err := ConnectWithRetry("test-dsn", time.Second, opener)

	require.NoError(t, err)
	assert.Same(t, mockDB, db)
	assert.Equal(t, 3, attempts)
}

func TestConnectWithRetry_TimeoutAfterRetries(t *testing.T) {
	retryInterval = 10 * time.Millisecond
	t.Cleanup(func() { retryInterval = 3 * time.Second })

	attempts := 0
	cause := errors.New("connection refused")
	opener := func(dsn string) (*gorm.DB, error) {
		attempts++
		return nil, cause
	}

	_, err := ConnectWithRetry("test-dsn", 50*time.Millisecond, opener)

	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.GreaterOrEqual(t, attempts, 1)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("DB_HOST", "envhost")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_USER", "envuser")
	t.Setenv("DB_PASSWORD", "envpass")
	t.Setenv("DB_NAME", "envdb")
	t.Setenv("DB_SSLMODE", "verify-full")
	t.Setenv("RUN_MIGRATIONS", "true")

	cfg := LoadConfigFromEnv()

	assert.Equal(t, DriverPostgres, cfg.Driver)
	assert.Equal(t, "envhost", cfg.Host)
	assert.Equal(t, "6543", cfg.Port)
	assert.Equal(t, "envuser", cfg.User)
	assert.Equal(t, "envpass", cfg.Password)
	assert.Equal(t, "envdb", cfg.Name)
	assert.Equal(t, "verify-full", cfg.SSLMode)
	assert.True(t, cfg.RunMigrations)
}

func TestLoadConfigFromEnv_Defaults(t *testing.T) {
	for _, key := range []string{"DB_DRIVER", "DB_PATH", "DB_HOST", "DB_PORT", "DB_SSLMODE", "RUN_MIGRATIONS"} {
		t.Setenv(key, "")
	}

	cfg := LoadConfigFromEnv()

	assert.Equal(t, DriverSQLite, cfg.Driver)
	assert.Equal(t, "calendar.db", cfg.Path)
	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, "5432", cfg.Port)
	assert.Equal(t, "disable", cfg.SSLMode)
	assert.False(t, cfg.RunMigrations)
	assert.Equal(t, 60*time.Second, cfg.ConnectTimeout)
}

func TestOpen_SQLiteInMemory(t *testing.T) {
	type widget struct {
		ID   uint
		Name string `gorm:"uniqueIndex"`
	}

	db, err := Open(Config{Driver: DriverSQLite, Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, AutoMigrate(db, &widget{}))
	require.NoError(t, db.Create(&widget{Name: "a"}).Error)

	err = db.Create(&widget{Name: "a"}).Error
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err), "duplicate insert should be detected: %v", err)
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(Config{Driver: "oracle"})
	assert.ErrorContains(t, err, "unsupported DB_DRIVER")
}

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"gorm translated", gorm.ErrDuplicatedKey, true},
		{"wrapped gorm translated", fmt.Errorf("create user: %w", gorm.ErrDuplicatedKey), true},
		{"postgres unique violation", &pgconn.PgError{Code: "23505"}, true},
		{"postgres other violation", &pgconn.PgError{Code: "23503"}, false},
		{"sqlite message", errors.New("UNIQUE constraint failed: users.email"), true},
		{"unrelated", errors.New("connection reset"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsUniqueViolation(tt.err))
		})
	}
}

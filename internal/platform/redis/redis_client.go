// Package redis builds the optional Redis client used for sessions and caching.
package redis

import (
	"context"
	"log/slog"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds connection settings read from the environment.
type Config struct {
	Host     string
	Port     string
	Password string
	DB       int
	CacheTTL time.Duration
}

// Enabled reports whether a Redis host was configured.
func (c Config) Enabled() bool {
	return c.Host != ""
}

// Addr returns host:port.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// LoadConfig reads REDIS_HOST, REDIS_PORT, REDIS_PASSWORD, REDIS_DB and
// REDIS_CACHE_TTL. An empty REDIS_HOST leaves Redis disabled.
func LoadConfig() Config {
	cfg := Config{
		Host:     os.Getenv("REDIS_HOST"),
		Port:     os.Getenv("REDIS_PORT"),
		Password: os.Getenv("REDIS_PASSWORD"),
		CacheTTL: time.Minute,
	}
	if cfg.Port == "" {
		cfg.Port = "6379"
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.DB = n
		} else {
			slog.Warn("ignoring invalid REDIS_DB", "value", v, "error", err)
		}
	}
	if v := os.Getenv("REDIS_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.CacheTTL = d
		} else {
			slog.Warn("ignoring invalid REDIS_CACHE_TTL", "value", v)
		}
	}
	return cfg
}

// NewRedisClient connects and pings. The caller owns the returned client.
func NewRedisClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	addr := cfg.Addr()
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Error("Redis connection failed", "address", addr, "error", err)
		_ = rdb.Close()
		return nil, err
	}

	slog.Info("Redis connection successful", "address", addr)
	return rdb, nil
}

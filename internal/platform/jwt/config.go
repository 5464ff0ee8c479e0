package jwtmw

import (
	"errors"
	"fmt"
	"os"
	"time"
)

const (
	EnvKeyJWTSecret     = "JWT_SECRET"
	EnvKeyJWTExpiration = "JWT_EXPIRATION"
)

// Config holds the signing secret and access token lifetime.
type Config struct {
	Secret     string
	Expiration time.Duration
}

// LoadConfigFromEnv reads JWT_SECRET (required) and JWT_EXPIRATION
// (a time.Duration string, default 1h).
func LoadConfigFromEnv() (Config, error) {
	cfg := Config{
		Secret:     os.Getenv(EnvKeyJWTSecret),
		Expiration: time.Hour,
	}
	if cfg.Secret == "" {
		return Config{}, errors.New("JWT_SECRET environment variable is required")
	}
	if v := os.Getenv(EnvKeyJWTExpiration); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("invalid %s %q", EnvKeyJWTExpiration, v)
		}
		cfg.Expiration = d
	}
	return cfg, nil
}

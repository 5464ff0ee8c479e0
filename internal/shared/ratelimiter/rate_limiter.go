// Package ratelimiter throttles requests per client with token buckets.
package ratelimiter

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	defaultRPS   = 1.0
	defaultBurst = 5

	// Client entries idle for longer than this are dropped by Run.
	idleTTL = 3 * time.Minute
)

// Config holds the bucket parameters shared by every client.
type Config struct {
	RPS   float64
	Burst int
}

// LoadConfigFromEnv reads RATE_LIMIT_RPS and RATE_LIMIT_BURST.
func LoadConfigFromEnv() Config {
	cfg := Config{RPS: defaultRPS, Burst: defaultBurst}
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.RPS = f
		} else {
			slog.Warn("ignoring invalid RATE_LIMIT_RPS", "value", v)
		}
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Burst = n
		} else {
			slog.Warn("ignoring invalid RATE_LIMIT_BURST", "value", v)
		}
	}
	return cfg
}

type client struct {
	lim  *rate.Limiter
	seen time.Time
}

// RateLimiter keeps one token bucket per client key.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*client
	r       rate.Limit
	burst   int
	now     func() time.Time
}

// NewRateLimiter creates a limiter. Non-positive values fall back to the defaults.
func NewRateLimiter(cfg Config) *RateLimiter {
	if cfg.RPS <= 0 {
		cfg.RPS = defaultRPS
	}
	if cfg.Burst <= 0 {
		cfg.Burst = defaultBurst
	}
	return &RateLimiter{
		clients: make(map[string]*client),
		r:       rate.Limit(cfg.RPS),
		burst:   cfg.Burst,
		now:     time.Now,
	}
}

func (rl *RateLimiter) get(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if c, ok := rl.clients[key]; ok {
		c.seen = rl.now()
		return c.lim
	}
	l := rate.NewLimiter(rl.r, rl.burst)
	rl.clients[key] = &client{lim: l, seen: rl.now()}
	return l
}

// Allow consumes a token for key and reports whether one was available.
func (rl *RateLimiter) Allow(key string) bool {
	return rl.get(key).AllowN(rl.now(), 1)
}

// Sweep drops clients idle for longer than idleTTL and returns how many.
func (rl *RateLimiter) Sweep() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	cutoff := rl.now().Add(-idleTTL)
	n := 0
	for key, c := range rl.clients {
		if c.seen.Before(cutoff) {
			delete(rl.clients, key)
			n++
		}
	}
	return n
}

// Run sweeps idle clients every interval until ctx is done.
func (rl *RateLimiter) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			rl.Sweep()
		}
	}
}

// Middleware rejects requests over the limit with 429, keyed by client IP.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	retryAfter := strconv.Itoa(int(math.Ceil(1 / float64(rl.r))))
	return func(c *gin.Context) {
		if !rl.Allow(c.ClientIP()) {
			slog.Warn("rate limit exceeded", "remote_addr", c.ClientIP(), "path", c.FullPath())
			c.Header("Retry-After", retryAfter)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}

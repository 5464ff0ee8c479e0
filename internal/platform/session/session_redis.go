// Package session provides the Redis-backed refresh-token session store.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"appt_calendar/internal/feature/auth/domain/entity"
	"appt_calendar/internal/feature/auth/usecase"
)

// SessionRedis stores each refresh-token session as a JSON string under
// "<prefix>:<token>", expiring with the session. A set under
// "<prefix>:user:<id>" indexes a user's tokens; members whose string has
// expired are dropped lazily on the next read.
type SessionRedis struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

var _ usecase.SessionRepository = (*SessionRedis)(nil)

// NewSessionRedis returns a store using prefix, "session" when empty.
func NewSessionRedis(client *redis.Client, prefix string) *SessionRedis {
	if prefix == "" {
		prefix = "session"
	}
	return &SessionRedis{client: client, prefix: prefix, now: time.Now}
}

func (r *SessionRedis) key(token string) string {
	return r.prefix + ":" + token
}

func (r *SessionRedis) indexKey(userID uint) string {
	return fmt.Sprintf("%s:user:%d", r.prefix, userID)
}

func encode(s *entity.Session) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}
	return data, nil
}

func decode(data []byte) (*entity.Session, error) {
	var s entity.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &s, nil
}

// Create writes the session and its index entry in one transaction.
func (r *SessionRedis) Create(ctx context.Context, s *entity.Session) error {
	ttl := s.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		return errors.New("session already expired")
	}
	data, err := encode(s)
	if err != nil {
		return err
	}
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.key(s.ID), data, ttl)
		pipe.SAdd(ctx, r.indexKey(s.UserID), s.ID)
		return nil
	})
	return err
}

// FindByID fails with usecase.ErrSessionNotFound once the key has expired.
func (r *SessionRedis) FindByID(ctx context.Context, id string) (*entity.Session, error) {
	data, err := r.client.Get(ctx, r.key(id)).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, usecase.ErrSessionNotFound
	case err != nil:
		return nil, err
	}
	return decode(data)
}

// load fetches every indexed session of userID with one MGET, revoked ones
// included, and drops index members whose key is gone.
func (r *SessionRedis) load(ctx context.Context, userID uint) ([]*entity.Session, error) {
	index := r.indexKey(userID)
	ids, err := r.client.SMembers(ctx, index).Result()
	if err != nil || len(ids) == 0 {
		return nil, err
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.key(id)
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	var (
		out   []*entity.Session
		stale []any
	)
	for i, v := range values {
		str, ok := v.(string)
		if !ok {
			stale = append(stale, ids[i])
			continue
		}
		s, err := decode([]byte(str))
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if len(stale) > 0 {
		// Best effort; a failure only leaves the members for the next read.
		r.client.SRem(ctx, index, stale...)
	}
	return out, nil
}

// FindByUserID returns the user's unrevoked, unexpired sessions, oldest first.
func (r *SessionRedis) FindByUserID(ctx context.Context, userID uint) ([]*entity.Session, error) {
	all, err := r.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := r.now()
	var active []*entity.Session
	for _, s := range all {
		if s.IsValid(now) {
			active = append(active, s)
		}
	}
	sort.Slice(active, func(i, j int) bool {
		return active[i].CreatedAt.Before(active[j].CreatedAt)
	})
	return active, nil
}

// markRevoked rewrites s with RevokedAt set. XX with KEEPTTL leaves the
// expiry alone and never resurrects a key that expired meanwhile, so a
// revoked token is still recognised as reused until it would have expired
// anyway. The XX miss surfaces as redis.Nil.
func (r *SessionRedis) markRevoked(ctx context.Context, cmd redis.Cmdable, s *entity.Session, at time.Time) (*redis.StatusCmd, error) {
	s.RevokedAt = &at
	data, err := encode(s)
	if err != nil {
		return nil, err
	}
	return cmd.SetArgs(ctx, r.key(s.ID), data, redis.SetArgs{Mode: "XX", KeepTTL: true}), nil
}

// Revoke is idempotent. An unknown or expired token gives
// usecase.ErrSessionNotFound.
func (r *SessionRedis) Revoke(ctx context.Context, id string) error {
	s, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if s.IsRevoked() {
		return nil
	}
	set, err := r.markRevoked(ctx, r.client, s, r.now())
	if err != nil {
		return err
	}
	err = set.Err()
	if errors.Is(err, redis.Nil) {
		return usecase.ErrSessionNotFound
	}
	return err
}

// RevokeAllByUserID revokes every live session of userID in one round trip.
func (r *SessionRedis) RevokeAllByUserID(ctx context.Context, userID uint) error {
	all, err := r.load(ctx, userID)
	if err != nil {
		return err
	}
	now := r.now()
	_, err = r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, s := range all {
			if s.IsRevoked() {
				continue
			}
			if _, err := r.markRevoked(ctx, pipe, s, now); err != nil {
				return err
			}
		}
		return nil
	})
	// XX misses are keys that expired between the read and the write.
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}

// DeleteExpired has nothing to do: keys carry their own TTL.
func (r *SessionRedis) DeleteExpired(ctx context.Context) (int64, error) {
	return 0, nil
}

func (r *SessionRedis) CountByUserID(ctx context.Context, userID uint) (int64, error) {
	active, err := r.FindByUserID(ctx, userID)
	return int64(len(active)), err
}

// DeleteOldestByUserID evicts the user's oldest active session, if any.
func (r *SessionRedis) DeleteOldestByUserID(ctx context.Context, userID uint) error {
	active, err := r.FindByUserID(ctx, userID)
	if err != nil || len(active) == 0 {
		return err
	}
	oldest := active[0].ID
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.key(oldest))
		pipe.SRem(ctx, r.indexKey(userID), oldest)
		return nil
	})
	return err
}

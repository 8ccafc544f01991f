package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"pix-storefront/internal/model"
)

const sessionKeyPrefix = "storefront:session:"

type redisSessionRepoImpl struct {
	rdb *redis.Client
	ttl time.Duration
	now func() time.Time
}

// NewRedisSessionRepository stores sessions as JSON values. Keys expire with the
// session, or after ttl when the session has no expiry of its own.
func NewRedisSessionRepository(rdb *redis.Client, ttl time.Duration) SessionRepository {
	return &redisSessionRepoImpl{
		rdb: rdb,
		ttl: ttl,
		now: time.Now,
	}
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

func (r *redisSessionRepoImpl) Get(ctx context.Context, id string) (*model.Session, error) {
	raw, err := r.rdb.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}

	var session model.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &session, nil
}

func (r *redisSessionRepoImpl) Save(ctx context.Context, session *model.Session) error {
	now := r.now()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now

	ttl := r.ttl
	if session.ExpiresAt != nil {
		ttl = session.ExpiresAt.Sub(now)
		if ttl <= 0 {
			return r.Delete(ctx, session.ID)
		}
	}

	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", session.ID, err)
	}
	if err := r.rdb.Set(ctx, sessionKey(session.ID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("save session %s: %w", session.ID, err)
	}
	return nil
}

func (r *redisSessionRepoImpl) Delete(ctx context.Context, id string) error {
	if err := r.rdb.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	return nil
}

// DeleteExpired is a no-op: redis evicts keys on their own TTL.
func (r *redisSessionRepoImpl) DeleteExpired(context.Context, time.Time) (int64, error) {
	return 0, nil
}

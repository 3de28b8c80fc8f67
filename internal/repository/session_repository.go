package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/attendance-dashboard-api/pkg/cache"
)

// SessionRepository tracks revoked session ids in Redis. A nil client turns
// every call into a no-op so the service can run without Redis.
type SessionRepository struct {
	client *redis.Client
	keys   cache.Keyspace
}

// NewSessionRepository stores revocations under keys; client may be nil.
func NewSessionRepository(client *redis.Client, keys cache.Keyspace) *SessionRepository {
	return &SessionRepository{client: client, keys: keys}
}

func (r *SessionRepository) revokedKey(id string) string {
	return r.keys.Key("session", "revoked", id)
}

// Revoke marks the session id as logged out until it would have expired anyway.
func (r *SessionRepository) Revoke(ctx context.Context, id string, ttl time.Duration) error {
	if r.client == nil || id == "" || ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, r.revokedKey(id), "1", ttl).Err(); err != nil {
		return fmt.Errorf("redis revoke session %s: %w", id, err)
	}
	return nil
}

// IsRevoked reports whether the session id was logged out.
func (r *SessionRepository) IsRevoked(ctx context.Context, id string) (bool, error) {
	if r.client == nil || id == "" {
		return false, nil
	}
	err := r.client.Get(ctx, r.revokedKey(id)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis lookup session %s: %w", id, err)
	}
	return true, nil
}

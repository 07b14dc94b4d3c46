package repository

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

const revokedTokenPrefix = "auth:revoked:"

// SessionRepository keeps revoked token ids in redis until the token would have expired anyway.
type SessionRepository struct {
	Redis *redis.Client
}

func NewSessionRepository(rdb *redis.Client) *SessionRepository {
	return &SessionRepository{Redis: rdb}
}

func (r *SessionRepository) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return r.Redis.Set(ctx, revokedTokenPrefix+tokenID, 1, ttl).Err()
}

func (r *SessionRepository) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.Redis.Exists(ctx, revokedTokenPrefix+tokenID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

const pendingMarker = "pending"

// StoredResponse is a completed response kept for replay.
type StoredResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// IdempotencyRepository tracks Idempotency-Key usage in redis.
// A key is either absent, pending (request in flight) or holds a StoredResponse.
type IdempotencyRepository struct {
	Redis *redis.Client
	TTL   time.Duration
}

func NewIdempotencyRepository(rdb *redis.Client, ttl time.Duration) *IdempotencyRepository {
	return &IdempotencyRepository{Redis: rdb, TTL: ttl}
}

// Load returns the stored response, or pending=true while the first request is still running.
// A nil response with pending=false means the key is unused.
func (r *IdempotencyRepository) Load(ctx context.Context, key string) (resp *StoredResponse, pending bool, err error) {
	raw, err := r.Redis.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if string(raw) == pendingMarker {
		return nil, true, nil
	}

	var stored StoredResponse
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, false, err
	}
	return &stored, false, nil
}

// Reserve claims the key. It reports false when another request got there first.
func (r *IdempotencyRepository) Reserve(ctx context.Context, key string) (bool, error) {
	return r.Redis.SetNX(ctx, key, pendingMarker, r.TTL).Result()
}

func (r *IdempotencyRepository) Save(ctx context.Context, key string, resp *StoredResponse) error {
	raw, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return r.Redis.Set(ctx, key, raw, r.TTL).Err()
}

func (r *IdempotencyRepository) Release(ctx context.Context, key string) error {
	return r.Redis.Del(ctx, key).Err()
}

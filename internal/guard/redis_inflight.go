package guard

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisInFlight stores in-flight marks with SET NX so that two workers never
// handle the same delivery at once.
type RedisInFlight struct {
	redis  *redis.Client
	prefix string
}

// NewRedisInFlight creates a redis-backed InFlightStore.
func NewRedisInFlight(client *redis.Client) *RedisInFlight {
	if client == nil {
		panic("guard: redis client cannot be nil")
	}
	return &RedisInFlight{redis: client, prefix: "inflight:"}
}

func (r *RedisInFlight) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := r.redis.SetNX(ctx, r.prefix+key, time.Now().UTC().Format(time.RFC3339Nano), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("guard: acquire in-flight mark: %w", err)
	}
	return ok, nil
}

func (r *RedisInFlight) Release(ctx context.Context, key string) error {
	if err := r.redis.Del(ctx, r.prefix+key).Err(); err != nil {
		return fmt.Errorf("guard: release in-flight mark: %w", err)
	}
	return nil
}

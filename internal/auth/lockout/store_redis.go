package lockout

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const failureKeyPrefix = "lockout:"

// RedisStore shares failure counts across instances.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore constructs a Redis-backed lockout store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	fullKey := failureKeyPrefix + key

	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, fullKey)
	// NX keeps the window anchored at the first failure.
	pipe.ExpireNX(ctx, fullKey, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

func (s *RedisStore) Count(ctx context.Context, key string) (int64, error) {
	n, err := s.client.Get(ctx, failureKeyPrefix+key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (s *RedisStore) Reset(ctx context.Context, key string) error {
	return s.client.Del(ctx, failureKeyPrefix+key).Err()
}

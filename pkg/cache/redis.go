package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// Redis is a Cache backed by a Redis client. TTL handling is delegated
// to Redis; DeletePrefix scans incrementally to avoid blocking the
// server on large keyspaces.
type Redis struct {
	client redis.UniversalClient
	group  singleflight.Group
}

var _ Cache = (*Redis)(nil)

// NewRedis wraps an existing client.
func NewRedis(client redis.UniversalClient) *Redis {
	return &Redis{client: client}
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return value, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *Redis) GetOrSet(ctx context.Context, key string, ttl time.Duration, load Loader) ([]byte, error) {
	if value, err := r.Get(ctx, key); err == nil {
		return value, nil
	}

	value, err, _ := r.group.Do(key, func() (any, error) {
		if value, err := r.Get(ctx, key); err == nil {
			return value, nil
		}
		loaded, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if err := r.Set(ctx, key, loaded, ttl); err != nil {
			return nil, err
		}
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}
	return value.([]byte), nil
}

func (r *Redis) GetOrDefault(ctx context.Context, key string, def []byte) []byte {
	if value, err := r.Get(ctx, key); err == nil {
		return value
	}
	return def
}

func (r *Redis) DeletePrefix(ctx context.Context, prefix string) error {
	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, prefix+"*", 100).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := r.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// Redis is the shared Cache backend for multi-process deployments.
type Redis struct {
	client     *redis.Client
	group      singleflight.Group
	keyPrefix  string
	defaultTTL time.Duration
}

// NewRedis creates a cache over the given Redis client. Connectivity is
// verified up front so a misconfigured address fails at startup, not on the
// first dashboard request.
func NewRedis(ctx context.Context, client *redis.Client, keyPrefix string, defaultTTL time.Duration) (*Redis, error) {
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to reach redis: %w", err)
	}
	return &Redis{client: client, keyPrefix: keyPrefix, defaultTTL: defaultTTL}, nil
}

func (r *Redis) GetOrCompute(ctx context.Context, key string, ttl time.Duration, compute func(context.Context) ([]byte, error)) ([]byte, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err == nil {
		return data, nil
	}
	if err != redis.Nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = r.defaultTTL
	}

	v, err, _ := r.group.Do(key, func() (any, error) {
		if data, err := r.client.Get(ctx, key).Bytes(); err == nil {
			return data, nil
		}
		data, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		if err := r.client.Set(ctx, key, data, ttl).Err(); err != nil {
			return nil, err
		}
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (r *Redis) Invalidate(ctx context.Context, prefix string) (int, error) {
	removed := 0
	iter := r.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, iter.Err()
}

func (r *Redis) Clear(ctx context.Context) (int, error) {
	return r.Invalidate(ctx, r.keyPrefix+":")
}

func (r *Redis) Info(ctx context.Context) (Info, error) {
	keys := 0
	iter := r.client.Scan(ctx, 0, r.keyPrefix+":*", 100).Iterator()
	for iter.Next(ctx) {
		keys++
	}
	if err := iter.Err(); err != nil {
		return Info{}, err
	}
	return Info{
		Backend:    "redis",
		Keys:       keys,
		KeyPrefix:  r.keyPrefix,
		DefaultTTL: r.defaultTTL,
	}, nil
}

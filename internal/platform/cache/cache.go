// Package cache provides a small Redis-backed store for evaluated cohort
// member sets, keyed by a caller-computed fingerprint of the definition.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores patient-id sets under string keys. Implementations must be
// safe for concurrent use.
type Cache interface {
	GetMembers(ctx context.Context, key string) ([]int, bool, error)
	PutMembers(ctx context.Context, key string, memberIDs []int) error
}

// Redis implements Cache on a Redis instance.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis connects to the Redis instance at the given URL
// (redis://[user:pass@]host:port/db) and verifies the connection.
func NewRedis(ctx context.Context, url string, ttl time.Duration) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &Redis{client: client, ttl: ttl}, nil
}

// GetMembers returns the cached member set for key, reporting whether it was
// present.
func (r *Redis) GetMembers(ctx context.Context, key string) ([]int, bool, error) {
	raw, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get %s: %w", key, err)
	}

	var ids []int
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, false, fmt.Errorf("cache decode %s: %w", key, err)
	}
	return ids, true, nil
}

// PutMembers stores the member set for key with the configured TTL.
func (r *Redis) PutMembers(ctx context.Context, key string, memberIDs []int) error {
	raw, err := json.Marshal(memberIDs)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	if err := r.client.Set(ctx, key, raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("cache put %s: %w", key, err)
	}
	return nil
}

// Close releases the underlying client.
func (r *Redis) Close() error {
	return r.client.Close()
}

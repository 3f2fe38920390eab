package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/clearmeat/assessment/internal/models"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "assessment:"

// RedisTier implements DurableTier using Redis. It serves server-side
// deployments of the facade, where the durable tier lives in Redis instead
// of on local disk. Serialization is provided by Redis itself; per-command
// atomicity gives the same last-writer-wins guarantee as the disk tier.
type RedisTier struct {
	client *redis.Client
}

// NewRedisTier creates a new Redis-backed durable tier
func NewRedisTier(redisURL string) (DurableTier, error) {
	return newRedisTier(redisURL)
}

// newRedisTier creates the concrete implementation
func newRedisTier(redisURL string) (*RedisTier, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisTier{client: client}, nil
}

// ReadEntry loads the entry for key. Missing or undecodable values are
// reported as misses; undecodable values are deleted.
func (r *RedisTier) ReadEntry(ctx context.Context, key string) (*Entry, error) {
	data, err := r.client.Get(ctx, redisKeyPrefix+key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, models.ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal([]byte(data), &entry); err != nil {
		_ = r.client.Del(ctx, redisKeyPrefix+key).Err()
		return nil, models.ErrCacheMiss
	}

	return &entry, nil
}

// WriteEntry persists the entry for key, overwriting any prior entry
func (r *RedisTier) WriteEntry(ctx context.Context, key string, entry *Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	if err := r.client.Set(ctx, redisKeyPrefix+key, data, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", models.ErrStorageFailure, err)
	}

	return nil
}

// DeleteEntry removes the entry for key; absent entries are not an error
func (r *RedisTier) DeleteEntry(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, redisKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("%w: %v", models.ErrStorageFailure, err)
	}
	return nil
}

// Keys enumerates all persisted keys
func (r *RedisTier) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := r.client.Scan(ctx, 0, redisKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val()[len(redisKeyPrefix):])
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan failed: %w", err)
	}
	return keys, nil
}

// Stats sums stored value sizes. Enumeration failures report (0, 0) rather
// than propagating.
func (r *RedisTier) Stats(ctx context.Context) (models.CacheStats, error) {
	keys, err := r.Keys(ctx)
	if err != nil {
		return models.CacheStats{}, nil
	}

	var stats models.CacheStats
	for _, key := range keys {
		size, err := r.client.StrLen(ctx, redisKeyPrefix+key).Result()
		if err != nil {
			continue
		}
		stats.Count++
		stats.TotalBytes += size
	}

	return stats, nil
}

// Clear deletes every persisted entry
func (r *RedisTier) Clear(ctx context.Context) error {
	keys, err := r.Keys(ctx)
	if err != nil {
		return err
	}

	for _, key := range keys {
		if err := r.client.Del(ctx, redisKeyPrefix+key).Err(); err != nil {
			return fmt.Errorf("%w: %v", models.ErrStorageFailure, err)
		}
	}

	return nil
}

// Close closes the Redis connection
func (r *RedisTier) Close() error {
	return r.client.Close()
}

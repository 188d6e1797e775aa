package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const idempotencyKeyPrefix = "idem:"

// IdempotencyCache is the fast lookup layer in front of the durable
// idempotency log. Entries expire; the durable log never does, so a cache
// miss only costs one extra database read.
type IdempotencyCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewIdempotencyCache creates a cache with the given entry TTL. A
// non-positive TTL defaults to 24 hours.
func NewIdempotencyCache(client *redis.Client, ttl time.Duration) *IdempotencyCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &IdempotencyCache{client: client, ttl: ttl}
}

// Get returns the cached response for the key, or nil on a miss. Redis
// outages are reported as errors; the caller falls through to the durable
// log.
func (c *IdempotencyCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, idempotencyKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

// Set stores the response bytes under the key. A non-positive ttl falls
// back to the cache's configured default.
func (c *IdempotencyCache) Set(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.ttl
	}
	return c.client.Set(ctx, idempotencyKeyPrefix+key, response, ttl).Err()
}

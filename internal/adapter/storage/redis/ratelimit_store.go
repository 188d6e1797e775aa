package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const rateLimitKeyPrefix = "rl:"

// RateLimitStore implements fixed-window request counting. Each window gets
// its own counter keyed by caller identity; the first increment arms the
// expiry so idle keys clean themselves up.
type RateLimitStore struct {
	client *redis.Client
}

func NewRateLimitStore(client *redis.Client) *RateLimitStore {
	return &RateLimitStore{client: client}
}

// Allow increments the counter for key and reports whether the caller is
// still within limit for the current window.
func (s *RateLimitStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	redisKey := rateLimitKeyPrefix + key

	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.ExpireNX(ctx, redisKey, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return incr.Val() <= int64(limit), nil
}

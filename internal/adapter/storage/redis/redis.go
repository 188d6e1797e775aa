// Package redis provides the optional cache layer: idempotency response
// caching and rate-limit counters. The application degrades gracefully when
// no redis host is configured; the durable idempotency log in primary
// storage remains authoritative either way.
package redis

import (
	"context"
	"fmt"
	"time"

	"digital-wallet-backend/config"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// NewClient connects to redis and verifies the connection with a ping.
func NewClient(ctx context.Context, cfg config.RedisConfig, log zerolog.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	log.Info().Str("addr", client.Options().Addr).Int("db", cfg.DB).Msg("connected to redis")
	return client, nil
}

// HealthCheck reports redis liveness for the health endpoint.
type HealthCheck struct {
	client *redis.Client
}

func NewHealthCheck(client *redis.Client) *HealthCheck {
	return &HealthCheck{client: client}
}

func (h *HealthCheck) Ping(ctx context.Context) error {
	return h.client.Ping(ctx).Err()
}

func (h *HealthCheck) Name() string { return "redis" }

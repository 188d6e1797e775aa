package middleware

import (
	"fmt"
	"time"

	redisStore "digital-wallet-backend/internal/adapter/storage/redis"
	"digital-wallet-backend/pkg/apperror"
	"digital-wallet-backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RateLimitRule defines a fixed-window limit for an endpoint group.
type RateLimitRule struct {
	Limit  int
	Window time.Duration
}

// DefaultRateLimitRules returns the per-group limits. Money movement is
// limited tighter than reads.
func DefaultRateLimitRules() map[string]RateLimitRule {
	return map[string]RateLimitRule{
		"transfers":     {Limit: 30, Window: time.Minute},
		"wallet_mutate": {Limit: 30, Window: time.Minute},
		"auth_login":    {Limit: 10, Window: time.Minute},
		"auth_register": {Limit: 5, Window: time.Hour},
		"read":          {Limit: 120, Window: time.Minute},
	}
}

// RateLimiter limits requests per caller for an endpoint group. Store
// errors degrade to allowing the request: availability over strictness.
func RateLimiter(store *redisStore.RateLimitStore, group string, rule RateLimitRule, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("%s:%s", extractIdentifier(c), group)

		allowed, err := store.Allow(c.Request.Context(), key, rule.Limit, rule.Window)
		if err != nil {
			log.Warn().Err(err).Str("group", group).Msg("rate limit check failed, allowing request")
			c.Next()
			return
		}
		if !allowed {
			response.Abort(c, apperror.ErrRateLimitExceeded())
			return
		}
		c.Next()
	}
}

// extractIdentifier keys the limit by authenticated account when present,
// falling back to client IP.
func extractIdentifier(c *gin.Context) string {
	if id, exists := c.Get(CtxAccountID); exists {
		return fmt.Sprintf("%v", id)
	}
	return c.ClientIP()
}

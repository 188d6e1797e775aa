package middleware

import (
	"net/http"
	"time"

	"digital-wallet-backend/internal/core/ports"
	"digital-wallet-backend/pkg/apperror"
	"digital-wallet-backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Context keys set by JWTAuth.
const (
	CtxAccountID = "account_id"
	CtxEmail     = "email"
)

// JWTAuth validates bearer tokens on authenticated routes.
func JWTAuth(tokenSvc ports.TokenService, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if len(authHeader) < 8 || authHeader[:7] != "Bearer " {
			response.Abort(c, apperror.ErrInvalidToken())
			return
		}

		claims, err := tokenSvc.Validate(authHeader[7:])
		if err != nil {
			response.Abort(c, apperror.ErrInvalidToken())
			return
		}

		c.Set(CtxAccountID, claims.AccountID)
		c.Set(CtxEmail, claims.Email)
		c.Next()
	}
}

// RequestLogger logs every HTTP request with latency and status.
func RequestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()

		event := log.Info()
		if status >= http.StatusInternalServerError {
			event = log.Error()
		} else if status >= http.StatusBadRequest {
			event = log.Warn()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", latency).
			Str("client_ip", c.ClientIP()).
			Msg("http request")
	}
}

// Recovery converts panics into opaque 500 responses.
func Recovery(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Str("path", c.Request.URL.Path).Msg("panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": "Internal server error",
					"code":  "SYS_001",
				})
			}
		}()
		c.Next()
	}
}

// MaxBodySize limits the request body size. Once the limit is exceeded the
// reader errors and binding fails.
func MaxBodySize(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}

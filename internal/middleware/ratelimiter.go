package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimiter bounds per-user request rates using Redis
type RateLimiter interface {
	// Allow checks and consumes one request from the user's minute window.
	// Returns: allowed bool, used int64, error
	Allow(ctx context.Context, userID uint) (bool, int64, error)

	// Close closes the Redis connection
	Close() error
}

type redisRateLimiter struct {
	client *redis.Client
	limit  int64
	logger *slog.Logger
}

// NewRateLimiter creates a new Redis-based rate limiter sharing an already
// connected client
func NewRateLimiter(client *redis.Client, limit int64, logger *slog.Logger) RateLimiter {
	return &redisRateLimiter{
		client: client,
		limit:  limit,
		logger: logger,
	}
}

// minuteKey generates the Redis key for the current minute window
// Format: rate:minute:{userID}:{YYYY-MM-DDTHH:MM}
func minuteKey(userID uint) string {
	window := time.Now().UTC().Format("2006-01-02T15:04")
	return fmt.Sprintf("rate:minute:%d:%s", userID, window)
}

func (r *redisRateLimiter) Allow(ctx context.Context, userID uint) (bool, int64, error) {
	// If limit is 0 or negative, unlimited
	if r.limit <= 0 {
		return true, 0, nil
	}

	key := minuteKey(userID)

	pipe := r.client.Pipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, time.Minute)
	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Error("❌ [RateLimiter] Failed to count request", "error", err, "user_id", userID)
		// On error, allow the request but log it
		return true, 0, err
	}

	used := incr.Val()
	return used <= r.limit, used, nil
}

func (r *redisRateLimiter) Close() error {
	return r.client.Close()
}

// Limit is the gin middleware wrapping a RateLimiter. It must run after
// RequireAuth since it keys on the authenticated user.
func Limit(limiter RateLimiter, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID")
		if !exists {
			c.Next()
			return
		}

		allowed, used, _ := limiter.Allow(c.Request.Context(), userID.(uint))
		if !allowed {
			logger.Warn("⚠️ [RateLimiter] Rate limit exceeded", "user_id", userID, "used", used)
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
			c.Abort()
			return
		}

		c.Next()
	}
}

// NoOpRateLimiter is a rate limiter that always allows requests
// Used when Redis is not available
type NoOpRateLimiter struct {
	logger *slog.Logger
}

// NewNoOpRateLimiter creates a no-op rate limiter
func NewNoOpRateLimiter(logger *slog.Logger) RateLimiter {
	logger.Warn("⚠️ [RateLimiter] Using no-op rate limiter - rate limiting is disabled")
	return &NoOpRateLimiter{logger: logger}
}

func (r *NoOpRateLimiter) Allow(ctx context.Context, userID uint) (bool, int64, error) {
	return true, 0, nil
}

func (r *NoOpRateLimiter) Close() error {
	return nil
}

package middleware

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/slotmachine/backend/internal/infra/cache"
	"github.com/slotmachine/backend/internal/pkg/errors"
	"github.com/slotmachine/backend/internal/pkg/logger"
)

// RateLimiterConfig holds rate limiter configuration.
type RateLimiterConfig struct {
	PublicRPS int
}

// RateLimiter implements Redis-based rate limiting at the HTTP edge. This
// is a defensive ambient concern and never substitutes for the
// per-player lock's own ROUND_IN_PROGRESS behavior.
type RateLimiter struct {
	redis  *cache.RedisClient
	config RateLimiterConfig
	logger *logger.Logger
}

// NewRateLimiter creates a new rate limiter with a Redis backend.
func NewRateLimiter(redis *cache.RedisClient, config RateLimiterConfig, log *logger.Logger) *RateLimiter {
	return &RateLimiter{redis: redis, config: config, logger: log}
}

// PublicMiddleware rate-limits by client IP and path.
func (rl *RateLimiter) PublicMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		log := rl.logger.WithTrace(c)

		if rl.redis == nil {
			return c.Next()
		}

		clientIP := c.Get("x-real-ip")
		if clientIP == "" {
			clientIP = c.IP()
		}

		path := c.Path()
		limit := rl.config.PublicRPS
		window := time.Second

		timestamp := time.Now().Unix()
		key := fmt.Sprintf("ratelimit:public:%s:%s:%d", clientIP, path, timestamp)

		allowed, remaining, resetTime := rl.checkLimit(key, limit, window)

		c.Set("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Set("X-RateLimit-Reset", strconv.FormatInt(resetTime, 10))

		if !allowed {
			log.Warn().
				Str("ip", clientIP).
				Str("path", path).
				Int("limit", limit).
				Str("method", c.Method()).
				Msg("rate limit exceeded")

			return writeRateLimitError(c)
		}

		return c.Next()
	}
}

func (rl *RateLimiter) checkLimit(key string, limit int, window time.Duration) (allowed bool, remaining int, resetTime int64) {
	ctx := context.Background()
	client := rl.redis.GetClient()

	count, err := client.Incr(ctx, key).Result()
	if err != nil {
		// Redis failure fails open: the edge limiter is defensive, not the
		// source of correctness.
		return true, limit, time.Now().Add(window).Unix()
	}
	if count == 1 {
		client.Expire(ctx, key, window)
	}

	resetTime = time.Now().Add(window).Unix()
	if count > int64(limit) {
		return false, 0, resetTime
	}

	remaining = limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return true, remaining, resetTime
}

func writeRateLimitError(c *fiber.Ctx) error {
	gameErr := errors.RateLimitExceeded("too many requests, slow down")
	return c.Status(gameErr.StatusCode()).JSON(fiber.Map{
		"protocolVersion": "1.0",
		"error": fiber.Map{
			"code":        string(gameErr.Code),
			"message":     gameErr.Message,
			"recoverable": gameErr.Recoverable(),
		},
	})
}

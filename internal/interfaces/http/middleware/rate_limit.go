package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"tapmove.backend/pkg/redis"
)

// RateLimitConfig controls the fixed-window limiter.
type RateLimitConfig struct {
	Requests int           // max requests per window
	Window   time.Duration // window length
}

func (c RateLimitConfig) withDefaults() RateLimitConfig {
	if c.Requests <= 0 {
		c.Requests = 100
	}
	if c.Window <= 0 {
		c.Window = time.Minute
	}
	return c
}

// RateLimitMiddleware applies a per-client fixed window counter backed by
// Redis. Requests fail open when Redis is unavailable: payment flow beats
// throttling accuracy.
func RateLimitMiddleware(cfg RateLimitConfig) gin.HandlerFunc {
	cfg = cfg.withDefaults()

	return func(c *gin.Context) {
		if redis.GetClient() == nil {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		window := time.Now().Unix() / int64(cfg.Window.Seconds())
		key := fmt.Sprintf("ratelimit:%s:%d", c.ClientIP(), window)

		count, err := redis.Incr(ctx, key)
		if err != nil {
			c.Next()
			return
		}
		if count == 1 {
			_ = redis.Expire(ctx, key, cfg.Window)
		}

		if count > int64(cfg.Requests) {
			c.Header("Retry-After", fmt.Sprintf("%d", int(cfg.Window.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many requests",
			})
			return
		}

		c.Next()
	}
}

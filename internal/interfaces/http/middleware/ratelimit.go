package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"journey-narrator/internal/infrastructure/persistence/redis"
	apperrors "journey-narrator/pkg/errors"
	"journey-narrator/pkg/logger"
)

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	Enabled bool
	Limit   int
	Window  time.Duration
}

// RateLimiter 限流器接口（由 redis.RateLimiter 实现）
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// RateLimit 按调用方限制旅程启动频率；未认证时以客户端 IP 区分
func RateLimit(cfg RateLimitConfig, limiter RateLimiter) gin.HandlerFunc {
	if !cfg.Enabled || limiter == nil {
		return func(c *gin.Context) { c.Next() }
	}
	if cfg.Limit <= 0 {
		cfg.Limit = 10
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}

	return func(c *gin.Context) {
		subject := c.GetString(SubjectKey)
		if subject == "" {
			subject = "ip:" + c.ClientIP()
		}
		key := redis.BuildJourneyRateLimitKey(subject)

		allowed, err := limiter.Allow(c.Request.Context(), key, cfg.Limit, cfg.Window)
		if err != nil {
			// 限流器故障时放行
			logger.Warn(c.Request.Context(), "rate limiter unavailable", "error", err.Error())
			c.Next()
			return
		}
		if !allowed {
			abortWith(c, apperrors.ErrRateLimited)
			return
		}
		c.Next()
	}
}

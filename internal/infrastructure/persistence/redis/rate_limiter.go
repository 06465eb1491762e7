package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
)

// RateLimiter 固定窗口计数限流，限制旅程启动频率
type RateLimiter struct {
	rdb redis.Cmdable
	now func() time.Time
}

// NewRateLimiter 创建限流器
func NewRateLimiter(client *Client) *RateLimiter {
	return &RateLimiter{rdb: client.rdb, now: time.Now}
}

// Allow 对当前窗口计数加一，超过 limit 时拒绝
func (l *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if window <= 0 {
		window = time.Minute
	}
	bucket := windowKey(key, l.now(), window)

	ctx, span := tracer.Start(ctx, "ratelimit.Allow")
	defer span.End()
	span.SetAttributes(
		attribute.String("ratelimit.key", bucket),
		attribute.Int("ratelimit.limit", limit),
	)

	pipe := l.rdb.TxPipeline()
	incr := pipe.Incr(ctx, bucket)
	pipe.ExpireNX(ctx, bucket, window)
	if _, err := pipe.Exec(ctx); err != nil {
		span.RecordError(err)
		return false, fmt.Errorf("rate limit %s: %w", key, err)
	}

	count := incr.Val()
	allowed := count <= int64(limit)
	span.SetAttributes(
		attribute.Int64("ratelimit.count", count),
		attribute.Bool("ratelimit.allowed", allowed),
	)
	return allowed, nil
}

// windowKey 以窗口起点区分计数键
func windowKey(key string, now time.Time, window time.Duration) string {
	return fmt.Sprintf("%s:%d", key, now.Truncate(window).Unix())
}

// BuildJourneyRateLimitKey 构建旅程启动限流键
func BuildJourneyRateLimitKey(subject string) string {
	return fmt.Sprintf("ratelimit:journeys:%s", subject)
}

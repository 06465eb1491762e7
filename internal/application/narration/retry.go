package narration

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"

	"journey-narrator/internal/config"
	"journey-narrator/pkg/logger"
	"journey-narrator/pkg/metrics"
)

// RetryPolicy 单阶段重试策略
type RetryPolicy struct {
	// MaxRetries 首次失败后的额外尝试次数
	MaxRetries int
	Backoff    config.BackoffConfig
}

func (p RetryPolicy) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	if p.Backoff.Initial > 0 {
		b.InitialInterval = p.Backoff.Initial
	}
	if p.Backoff.Max > 0 {
		b.MaxInterval = p.Backoff.Max
	}
	if p.Backoff.Multiplier >= 1 {
		b.Multiplier = p.Backoff.Multiplier
	}
	return b
}

// retryStage 在 ctx 有效期内按策略重试 op；ctx 取消时立即停止
func retryStage[T any](ctx context.Context, p RetryPolicy, stage Stage, index int, op func(context.Context) (T, error)) (T, error) {
	maxTries := p.MaxRetries + 1
	if maxTries < 1 {
		maxTries = 1
	}

	return backoff.Retry(ctx, func() (T, error) {
		v, err := op(ctx)
		if err != nil && ctx.Err() != nil {
			return v, backoff.Permanent(err)
		}
		return v, err
	},
		backoff.WithBackOff(p.newBackOff()),
		backoff.WithMaxTries(uint(maxTries)),
		backoff.WithNotify(func(err error, next time.Duration) {
			metrics.StageRetriesTotal.WithLabelValues(string(stage)).Inc()
			logger.Warn(ctx, "pipeline stage failed, retrying",
				"stage", stage,
				"index", index,
				"retry_in", next.String(),
				"error", err.Error(),
			)
		}),
	)
}

package messaging

import (
	"context"
	"errors"

	"journey-narrator/internal/domain/entity"
	"journey-narrator/internal/domain/service"
)

// FanOut 依次发布到多个发布器，单个失败不影响其余
type FanOut []service.SegmentEventPublisher

// Publish 实现 service.SegmentEventPublisher，返回全部失败的合并错误
func (f FanOut) Publish(ctx context.Context, ev entity.SegmentEvent) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

package service

import (
	"context"
	"errors"

	"journey-narrator/internal/domain/entity"
)

// 说明：以下接口位于 domain/service，作为跨层的稳定契约（port），避免基础设施层依赖应用层实现。

// ErrMalformedAudio 合成后端返回了无法解析的音频
var ErrMalformedAudio = errors.New("malformed audio payload")

// Synthesizer 将叙述文本转换为可播放音频。
// 实现需返回固定声道数与采样率、时长与文本长度成正比的音频；失败以 error 返回。
type Synthesizer interface {
	Name() string
	Synthesize(ctx context.Context, text, voiceID string) (*entity.AudioBuffer, error)
}

// SegmentEventPublisher 将片段事件扇出给外部播放端。
// 约定：实现应尽量 best-effort，不应阻塞叙述主流程。
type SegmentEventPublisher interface {
	Publish(ctx context.Context, event entity.SegmentEvent) error
}

// NopPublisher 不做任何事的发布者
type NopPublisher struct{}

// Publish 实现 SegmentEventPublisher
func (NopPublisher) Publish(context.Context, entity.SegmentEvent) error { return nil }

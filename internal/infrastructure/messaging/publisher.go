package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"journey-narrator/internal/domain/entity"
	"journey-narrator/pkg/logger"
	"journey-narrator/pkg/metrics"
	"journey-narrator/pkg/tracer"
)

var otelTracer = otel.Tracer("messaging")

// streamAdder go-redis 客户端中发布所需的最小子集
type streamAdder interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

// Publisher 将片段事件写入 Redis Stream，供外部播放/缓冲消费者订阅
type Publisher struct {
	client streamAdder
	stream Stream
	maxLen int64
}

// NewPublisher 创建片段事件发布器
func NewPublisher(client streamAdder, stream Stream, maxLen int64) *Publisher {
	if stream == "" {
		stream = StreamJourneySegments
	}
	if maxLen <= 0 {
		maxLen = 10000
	}
	return &Publisher{client: client, stream: stream, maxLen: maxLen}
}

// Publish 实现 service.SegmentEventPublisher
func (p *Publisher) Publish(ctx context.Context, ev entity.SegmentEvent) error {
	ctx, span := otelTracer.Start(ctx, "publisher.Publish",
		trace.WithAttributes(
			attribute.String("stream", string(p.stream)),
			attribute.String("event.type", string(ev.Type)),
			attribute.String("journey.id", ev.JourneyID),
		))
	defer span.End()

	msg, err := NewSegmentMessage(ev)
	if err != nil {
		tracer.Fail(span, err)
		return err
	}
	if reqID, ok := ctx.Value(logger.RequestIDKey).(string); ok && reqID != "" {
		msg.SetMetadata("request_id", reqID)
	}
	if traceID := tracer.TraceID(ctx); traceID != "" {
		msg.SetMetadata("trace_id", traceID)
	}

	data, err := json.Marshal(msg)
	if err != nil {
		tracer.Fail(span, err)
		return fmt.Errorf("marshal message: %w", err)
	}

	id, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: string(p.stream),
		MaxLen: p.maxLen,
		Approx: true,
		Values: map[string]interface{}{
			"type": msg.Type,
			"data": string(data),
		},
	}).Result()
	if err != nil {
		metrics.RedisStreamPublished.WithLabelValues(string(p.stream), "error").Inc()
		tracer.Fail(span, err)
		return fmt.Errorf("publish segment event: %w", err)
	}

	metrics.RedisStreamPublished.WithLabelValues(string(p.stream), "success").Inc()
	span.SetAttributes(attribute.String("stream.message_id", id))
	return nil
}

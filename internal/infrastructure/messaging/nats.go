package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"journey-narrator/internal/config"
	"journey-narrator/internal/domain/entity"
	"journey-narrator/pkg/logger"
	"journey-narrator/pkg/metrics"
	"journey-narrator/pkg/tracer"
)

// DefaultSubjectPrefix 片段事件的 NATS 主题前缀
const DefaultSubjectPrefix = "journey.segments"

// subjectPublisher nats.Conn 中发布所需的最小子集
type subjectPublisher interface {
	Publish(subj string, data []byte) error
}

// ConnectNATS 连接 NATS 服务器
func ConnectNATS(ctx context.Context, cfg config.NATSConfig) (*nats.Conn, error) {
	if len(cfg.Servers) == 0 {
		return nil, fmt.Errorf("no NATS servers configured")
	}
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}

	options := []nats.Option{
		nats.Name("journey-narrator"),
		nats.Timeout(timeout),
	}
	if cfg.Username != "" || cfg.Password != "" {
		options = append(options, nats.UserInfo(cfg.Username, cfg.Password))
	}
	if cfg.Token != "" {
		options = append(options, nats.Token(cfg.Token))
	}

	url := strings.Join(cfg.Servers, ",")
	conn, err := nats.Connect(url, options...)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	logger.Info(ctx, "connected to NATS", "servers", url)
	return conn, nil
}

// NATSPublisher 将片段事件发布到 <prefix>.<journey_id>.<type> 主题
type NATSPublisher struct {
	conn   subjectPublisher
	prefix string
}

// NewNATSPublisher 创建 NATS 发布器
func NewNATSPublisher(conn subjectPublisher, prefix string) *NATSPublisher {
	prefix = strings.Trim(prefix, ".")
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return &NATSPublisher{conn: conn, prefix: prefix}
}

// Subject 事件对应的主题
func (p *NATSPublisher) Subject(ev entity.SegmentEvent) string {
	return p.prefix + "." + ev.JourneyID + "." + string(ev.Type)
}

// Publish 实现 service.SegmentEventPublisher
func (p *NATSPublisher) Publish(ctx context.Context, ev entity.SegmentEvent) error {
	subject := p.Subject(ev)
	ctx, span := otelTracer.Start(ctx, "nats.Publish",
		trace.WithAttributes(
			attribute.String("nats.subject", subject),
			attribute.String("journey.id", ev.JourneyID),
		))
	defer span.End()

	msg, err := NewSegmentMessage(ev)
	if err != nil {
		tracer.Fail(span, err)
		return err
	}
	if traceID := tracer.TraceID(ctx); traceID != "" {
		msg.SetMetadata("trace_id", traceID)
	}
	data, err := json.Marshal(msg)
	if err != nil {
		tracer.Fail(span, err)
		return fmt.Errorf("marshal message: %w", err)
	}

	if err := p.conn.Publish(subject, data); err != nil {
		metrics.NATSPublished.WithLabelValues("error").Inc()
		tracer.Fail(span, err)
		return fmt.Errorf("publish segment event: %w", err)
	}
	metrics.NATSPublished.WithLabelValues("success").Inc()
	return nil
}

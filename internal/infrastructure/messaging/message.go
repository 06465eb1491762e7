// Package messaging 提供片段事件的 Redis Stream 发布与订阅
package messaging

import (
	"encoding/json"
	"fmt"
	"time"

	"journey-narrator/internal/domain/entity"
)

// Stream 流定义
type Stream string

// StreamJourneySegments 默认的片段事件流
const StreamJourneySegments Stream = "stream:journey:segments"

// Message 流内消息信封，载荷为 entity.SegmentEvent（不含音频字节）
type Message struct {
	ID        string            `json:"id"`
	Type      string            `json:"type"`
	JourneyID string            `json:"journey_id"`
	Payload   json.RawMessage   `json:"payload"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// NewSegmentMessage 将片段事件封装为消息
func NewSegmentMessage(ev entity.SegmentEvent) (*Message, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("marshal segment event: %w", err)
	}
	id := ev.JourneyID + ":" + string(ev.Type)
	if ev.Segment != nil {
		id = fmt.Sprintf("%s:%d", id, ev.Segment.Index)
	}
	createdAt := ev.Timestamp
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	return &Message{
		ID:        id,
		Type:      string(ev.Type),
		JourneyID: ev.JourneyID,
		Payload:   payload,
		CreatedAt: createdAt,
	}, nil
}

// SetMetadata 设置元数据
func (m *Message) SetMetadata(key, value string) {
	if m.Metadata == nil {
		m.Metadata = make(map[string]string)
	}
	m.Metadata[key] = value
}

// GetMetadata 获取元数据
func (m *Message) GetMetadata(key string) string {
	if m.Metadata == nil {
		return ""
	}
	return m.Metadata[key]
}

// SegmentEvent 解析载荷
func (m *Message) SegmentEvent() (entity.SegmentEvent, error) {
	var ev entity.SegmentEvent
	if err := json.Unmarshal(m.Payload, &ev); err != nil {
		return ev, fmt.Errorf("unmarshal segment event: %w", err)
	}
	return ev, nil
}

package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"journey-narrator/internal/domain/entity"
	"journey-narrator/pkg/logger"
)

// ErrInvalidMessage 流内条目格式不合法
var ErrInvalidMessage = errors.New("invalid stream message")

// EventHandler 片段事件处理函数，返回错误即停止订阅
type EventHandler func(ctx context.Context, ev entity.SegmentEvent) error

// streamReader go-redis 客户端中订阅所需的最小子集
type streamReader interface {
	XRead(ctx context.Context, a *redis.XReadArgs) *redis.XStreamSliceCmd
}

// Tail 从流尾部跟随片段事件（无消费者组，播放端只读）
type Tail struct {
	client       streamReader
	stream       Stream
	blockTimeout time.Duration
	journeyID    string
}

// TailConfig 订阅配置
type TailConfig struct {
	Stream       Stream
	BlockTimeout time.Duration
	// JourneyID 非空时只投递该旅程的事件
	JourneyID string
}

// NewTail 创建流订阅
func NewTail(client streamReader, cfg TailConfig) *Tail {
	if cfg.Stream == "" {
		cfg.Stream = StreamJourneySegments
	}
	if cfg.BlockTimeout <= 0 {
		cfg.BlockTimeout = 5 * time.Second
	}
	return &Tail{
		client:       client,
		stream:       cfg.Stream,
		blockTimeout: cfg.BlockTimeout,
		journeyID:    cfg.JourneyID,
	}
}

// Follow 阻塞读取新事件直到 ctx 取消或 handler 返回错误；
// 设置了 JourneyID 时在该旅程的终止事件后返回 nil。
func (t *Tail) Follow(ctx context.Context, handler EventHandler) error {
	lastID := "$"
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		streams, err := t.client.XRead(ctx, &redis.XReadArgs{
			Streams: []string{string(t.stream), lastID},
			Count:   16,
			Block:   t.blockTimeout,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read stream %s: %w", t.stream, err)
		}

		for _, s := range streams {
			for _, xmsg := range s.Messages {
				lastID = xmsg.ID
				ev, err := decodeEntry(xmsg)
				if err != nil {
					logger.Warn(ctx, "skip undecodable stream entry", "message_id", xmsg.ID, "error", err.Error())
					continue
				}
				if t.journeyID != "" && ev.JourneyID != t.journeyID {
					continue
				}
				if err := handler(ctx, ev); err != nil {
					return err
				}
				if t.journeyID != "" && ev.Terminal() {
					return nil
				}
			}
		}
	}
}

func decodeEntry(xmsg redis.XMessage) (entity.SegmentEvent, error) {
	raw, ok := xmsg.Values["data"].(string)
	if !ok {
		return entity.SegmentEvent{}, ErrInvalidMessage
	}
	var msg Message
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		return entity.SegmentEvent{}, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	return msg.SegmentEvent()
}

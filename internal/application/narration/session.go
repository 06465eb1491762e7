package narration

import (
	"context"
	"errors"
	"sync"

	"journey-narrator/internal/domain/entity"
	"journey-narrator/pkg/logger"
)

// ErrNoActiveJourney 当前没有旅程
var ErrNoActiveJourney = errors.New("no active journey")

// Session 一次旅程叙述会话
type Session struct {
	Story  *entity.Story
	cancel context.CancelFunc
	done   chan struct{}
}

// Journey 会话对应的旅程
func (s *Session) Journey() *entity.Journey {
	return s.Story.Journey()
}

// Done 流水线结束后关闭
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// SessionManager 进程内只保留一个活动旅程；规划新路线即取代旧旅程。
type SessionManager struct {
	orch *Orchestrator

	mu      sync.Mutex
	current *Session
}

// NewSessionManager 创建会话管理器
func NewSessionManager(orch *Orchestrator) *SessionManager {
	return &SessionManager{orch: orch}
}

// Start 取消并等待上一个旅程结束后启动新旅程，返回的事件流与 ctx 绑定
func (m *SessionManager) Start(ctx context.Context, journey *entity.Journey) (*Session, <-chan entity.SegmentEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if prev := m.current; prev != nil {
		prev.cancel()
		<-prev.done
		logger.Info(ctx, "previous journey superseded", "previous_journey_id", prev.Journey().ID, "journey_id", journey.ID)
	}

	runCtx, cancel := context.WithCancel(ctx)
	story, events := m.orch.Run(runCtx, journey)

	sess := &Session{Story: story, cancel: cancel, done: make(chan struct{})}
	out := make(chan entity.SegmentEvent)
	go func() {
		defer close(sess.done)
		defer close(out)
		defer cancel()
		for ev := range events {
			select {
			case out <- ev:
			case <-runCtx.Done():
				// 消费者已放弃，继续排空直到流水线退出
			}
		}
	}()

	m.current = sess
	return sess, out
}

// Current 当前（或最近一次）旅程会话
func (m *SessionManager) Current() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil, ErrNoActiveJourney
	}
	return m.current, nil
}

// Cancel 取消当前旅程，已生成的片段保持可播放
func (m *SessionManager) Cancel() error {
	m.mu.Lock()
	sess := m.current
	m.mu.Unlock()
	if sess == nil {
		return ErrNoActiveJourney
	}
	sess.cancel()
	<-sess.done
	return nil
}

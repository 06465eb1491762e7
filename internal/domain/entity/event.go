package entity

import (
	"fmt"
	"time"
)

// Phase 流水线阶段
type Phase string

const (
	PhaseSizing       Phase = "SIZING"
	PhaseOutlining    Phase = "OUTLINING"
	PhaseGenerating   Phase = "GENERATING"
	PhaseSynthesizing Phase = "SYNTHESIZING"
	PhaseComplete     Phase = "COMPLETE"
	PhaseAborted      Phase = "ABORTED"
)

// PipelineState 流水线状态，Index 仅在 GENERATING / SYNTHESIZING 时有效
type PipelineState struct {
	Phase Phase `json:"phase"`
	Index int   `json:"index,omitempty"`
}

// Terminal 是否为终态
func (s PipelineState) Terminal() bool {
	return s.Phase == PhaseComplete || s.Phase == PhaseAborted
}

// String 实现 fmt.Stringer
func (s PipelineState) String() string {
	if s.Phase == PhaseGenerating || s.Phase == PhaseSynthesizing {
		return fmt.Sprintf("%s(%d)", s.Phase, s.Index)
	}
	return string(s.Phase)
}

// EventType 片段事件类型
type EventType string

const (
	EventOutline            EventType = "outline"
	EventSegmentText        EventType = "segment_text"
	EventSegmentAudio       EventType = "segment_audio"
	EventSegmentAudioFailed EventType = "segment_audio_failed"
	EventComplete           EventType = "complete"
	EventAborted            EventType = "aborted"
)

// SegmentEvent 推送给播放/缓冲消费者的事件
type SegmentEvent struct {
	Type      EventType `json:"type"`
	JourneyID string    `json:"journey_id"`
	// Outline 仅 outline 事件携带
	Outline []string `json:"outline,omitempty"`
	// SegmentCount 预计片段总数
	SegmentCount int      `json:"segment_count,omitempty"`
	Segment      *Segment `json:"segment,omitempty"`
	// Reason 音频失败或中止原因
	Reason string `json:"reason,omitempty"`
	// Playable 终态时可播放的片段数
	Playable int `json:"playable,omitempty"`
	// Partial 中止时是否保留了部分可播放片段
	Partial   bool      `json:"partial,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Terminal 是否为终止事件
func (e SegmentEvent) Terminal() bool {
	return e.Type == EventComplete || e.Type == EventAborted
}

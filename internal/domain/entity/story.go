package entity

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrSegmentOutOfOrder 追加的片段序号不连续
	ErrSegmentOutOfOrder = errors.New("segment appended out of order")
	// ErrSegmentMissing 片段不存在
	ErrSegmentMissing = errors.New("segment does not exist")
	// ErrAudioAlreadyAttached 片段音频只能写入一次
	ErrAudioAlreadyAttached = errors.New("segment audio already attached")
)

// Story 单个旅程的片段序列，只追加，并发安全
type Story struct {
	mu       sync.RWMutex
	journey  *Journey
	outline  []string
	state    PipelineState
	segments []Segment
	reason   string
}

// NewStory 创建空故事
func NewStory(journey *Journey) *Story {
	return &Story{journey: journey, state: PipelineState{Phase: PhaseSizing}}
}

// Journey 所属旅程
func (s *Story) Journey() *Journey {
	return s.journey
}

// SetOutline 写入大纲，只允许一次
func (s *Story) SetOutline(outline []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.outline != nil {
		return errors.New("outline already set")
	}
	s.outline = append([]string(nil), outline...)
	return nil
}

// Outline 大纲副本
func (s *Story) Outline() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.outline...)
}

// SetState 记录流水线状态
func (s *Story) SetState(state PipelineState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Terminal() {
		return
	}
	s.state = state
}

// Finish 进入终态并记录原因
func (s *Story) Finish(phase Phase, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Terminal() {
		return
	}
	s.state = PipelineState{Phase: phase}
	s.reason = reason
}

// State 当前状态与终止原因
func (s *Story) State() (PipelineState, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state, s.reason
}

// Append 追加片段，序号必须等于当前长度 + 1
func (s *Story) Append(seg Segment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if want := len(s.segments) + 1; seg.Index != want {
		return fmt.Errorf("%w: got %d, want %d", ErrSegmentOutOfOrder, seg.Index, want)
	}
	seg.Audio = nil
	seg.AudioErr = ""
	s.segments = append(s.segments, seg)
	return nil
}

// AttachAudio 为片段写入音频，音频由无到有仅一次
func (s *Story) AttachAudio(index int, audio *AudioBuffer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 1 || index > len(s.segments) {
		return fmt.Errorf("%w: %d", ErrSegmentMissing, index)
	}
	seg := &s.segments[index-1]
	if seg.Audio != nil {
		return fmt.Errorf("%w: %d", ErrAudioAlreadyAttached, index)
	}
	seg.Audio = audio
	seg.AudioErr = ""
	return nil
}

// MarkAudioFailed 记录片段音频合成失败，片段仍可按文本播放
func (s *Story) MarkAudioFailed(index int, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 1 || index > len(s.segments) {
		return fmt.Errorf("%w: %d", ErrSegmentMissing, index)
	}
	if s.segments[index-1].Audio == nil {
		s.segments[index-1].AudioErr = reason
	}
	return nil
}

// Segment 按序号获取片段
func (s *Story) Segment(index int) (Segment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if index < 1 || index > len(s.segments) {
		return Segment{}, false
	}
	return s.segments[index-1], true
}

// Len 已生成文本的片段数
func (s *Story) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.segments)
}

// Segments 片段副本
func (s *Story) Segments() []Segment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Segment(nil), s.segments...)
}

// StorySnapshot 故事只读快照
type StorySnapshot struct {
	Journey  *Journey      `json:"journey"`
	State    PipelineState `json:"state"`
	Reason   string        `json:"reason,omitempty"`
	Outline  []string      `json:"outline,omitempty"`
	Segments []Segment     `json:"segments"`
}

// Snapshot 获取快照
func (s *Story) Snapshot() StorySnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return StorySnapshot{
		Journey:  s.journey,
		State:    s.state,
		Reason:   s.reason,
		Outline:  append([]string(nil), s.outline...),
		Segments: append([]Segment(nil), s.segments...),
	}
}

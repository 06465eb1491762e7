package narration

import "math"

const (
	// DefaultSegmentSeconds 每个片段的目标朗读时长
	DefaultSegmentSeconds = 60
	// DefaultWordsPerMinute 叙述语速
	DefaultWordsPerMinute = 150
)

// Sizer 将旅程时长换算为片段数与每段目标词数
type Sizer struct {
	SegmentSeconds int
	WordsPerMinute int
}

// NewSizer 非正参数回落到默认值
func NewSizer(segmentSeconds, wordsPerMinute int) Sizer {
	if segmentSeconds <= 0 {
		segmentSeconds = DefaultSegmentSeconds
	}
	if wordsPerMinute <= 0 {
		wordsPerMinute = DefaultWordsPerMinute
	}
	return Sizer{SegmentSeconds: segmentSeconds, WordsPerMinute: wordsPerMinute}
}

// SegmentCount 返回 max(1, ceil(D / T))；负时长按 0 处理
func (s Sizer) SegmentCount(durationSeconds float64) int {
	if durationSeconds <= 0 || math.IsNaN(durationSeconds) {
		return 1
	}
	n := int(math.Ceil(durationSeconds / float64(s.segmentSeconds())))
	if n < 1 {
		return 1
	}
	return n
}

// WordsPerSegment 每段目标词数：语速按片段时长缩放
func (s Sizer) WordsPerSegment() int {
	wpm := s.WordsPerMinute
	if wpm <= 0 {
		wpm = DefaultWordsPerMinute
	}
	words := wpm * s.segmentSeconds() / 60
	if words < 1 {
		return 1
	}
	return words
}

func (s Sizer) segmentSeconds() int {
	if s.SegmentSeconds <= 0 {
		return DefaultSegmentSeconds
	}
	return s.SegmentSeconds
}

// SegmentCount 使用默认片段时长计算片段数
func SegmentCount(durationSeconds float64) int {
	return NewSizer(DefaultSegmentSeconds, DefaultWordsPerMinute).SegmentCount(durationSeconds)
}

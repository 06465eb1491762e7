package entity

import "time"

// AudioBuffer 片段合成后的可播放音频
type AudioBuffer struct {
	ContentType string        `json:"content_type"`
	Data        []byte        `json:"-"`
	SampleRate  int           `json:"sample_rate"`
	Channels    int           `json:"channels"`
	Duration    time.Duration `json:"duration"`
}

// Size 音频字节数
func (b *AudioBuffer) Size() int {
	if b == nil {
		return 0
	}
	return len(b.Data)
}

// Segment 一章叙述，文本先于音频就绪
type Segment struct {
	Index    int          `json:"index"`
	Text     string       `json:"text"`
	Audio    *AudioBuffer `json:"audio,omitempty"`
	Fallback bool         `json:"fallback,omitempty"`
	AudioErr string       `json:"audio_error,omitempty"`
}

// HasAudio 音频是否已就绪
func (s Segment) HasAudio() bool {
	return s.Audio != nil
}

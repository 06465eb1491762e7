package audio

import (
	"context"
	"math"
	"strings"
	"time"

	"journey-narrator/internal/domain/entity"
)

const (
	minSilence = time.Second
	maxSilence = 10 * time.Minute
)

// SilenceSynthesizer 占位合成后端：生成与朗读时长等长的静音 WAV。
// 未接入真实语音服务时保证流水线端到端可用。
type SilenceSynthesizer struct {
	format         PCMFormat
	wordsPerMinute int
}

// NewSilenceSynthesizer 创建静音合成器
func NewSilenceSynthesizer(format PCMFormat, wordsPerMinute int) *SilenceSynthesizer {
	if wordsPerMinute <= 0 {
		wordsPerMinute = 150
	}
	if format.SampleRate <= 0 {
		format.SampleRate = 16000
	}
	if format.Channels <= 0 {
		format.Channels = 1
	}
	if format.BitDepth <= 0 {
		format.BitDepth = 16
	}
	return &SilenceSynthesizer{format: format, wordsPerMinute: wordsPerMinute}
}

// Name 实现 service.Synthesizer
func (s *SilenceSynthesizer) Name() string { return "silence" }

// Synthesize 实现 service.Synthesizer
func (s *SilenceSynthesizer) Synthesize(ctx context.Context, text, _ string) (*entity.AudioBuffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d := s.SpokenDuration(text)
	frames := int(d.Seconds() * float64(s.format.SampleRate))
	data, err := EncodeWAV(make([]int, frames*s.format.Channels), s.format)
	if err != nil {
		return nil, err
	}
	return &entity.AudioBuffer{
		ContentType: ContentTypeWAV,
		Data:        data,
		SampleRate:  s.format.SampleRate,
		Channels:    s.format.Channels,
		Duration:    time.Duration(frames) * time.Second / time.Duration(s.format.SampleRate),
	}, nil
}

// SpokenDuration 按语速估算朗读时长，取整到秒并限制在 [1s, 10m]
func (s *SilenceSynthesizer) SpokenDuration(text string) time.Duration {
	words := len(strings.Fields(text))
	seconds := math.Ceil(float64(words) * 60 / float64(s.wordsPerMinute))
	d := time.Duration(seconds) * time.Second
	if d < minSilence {
		return minSilence
	}
	if d > maxSilence {
		return maxSilence
	}
	return d
}

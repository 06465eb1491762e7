package audio

import (
	"fmt"

	"journey-narrator/internal/config"
	"journey-narrator/internal/domain/service"
)

// NewSynthesizer 按 audio.provider 选择合成后端
func NewSynthesizer(cfg config.AudioConfig, wordsPerMinute int) (service.Synthesizer, error) {
	switch cfg.Provider {
	case "", config.AudioProviderSilence:
		return NewSilenceSynthesizer(PCMFormat{
			SampleRate: cfg.SampleRate,
			Channels:   cfg.Channels,
			BitDepth:   cfg.BitDepth,
		}, wordsPerMinute), nil
	case config.AudioProviderOpenAI:
		return NewSpeechSynthesizer(cfg.OpenAI, cfg.DefaultVoice, cfg.RequestTimeout), nil
	default:
		return nil, fmt.Errorf("unknown audio provider %q", cfg.Provider)
	}
}

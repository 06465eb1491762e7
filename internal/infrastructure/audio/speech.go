package audio

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"journey-narrator/internal/config"
	"journey-narrator/internal/domain/entity"
	"journey-narrator/pkg/logger"
)

// ErrSpeechRequest 语音接口返回非 2xx
var ErrSpeechRequest = errors.New("speech request failed")

const maxSpeechBody = 64 << 20

// SpeechSynthesizer OpenAI 兼容的 /audio/speech 合成后端，请求 WAV 格式
type SpeechSynthesizer struct {
	cfg          config.OpenAISpeechConfig
	defaultVoice string
	client       *http.Client
}

// NewSpeechSynthesizer 创建语音合成器
func NewSpeechSynthesizer(cfg config.OpenAISpeechConfig, defaultVoice string, timeout time.Duration) *SpeechSynthesizer {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "tts-1"
	}
	if defaultVoice == "" {
		defaultVoice = "alloy"
	}
	return &SpeechSynthesizer{
		cfg:          cfg,
		defaultVoice: defaultVoice,
		client:       &http.Client{Timeout: timeout},
	}
}

// Name 实现 service.Synthesizer
func (s *SpeechSynthesizer) Name() string { return "openai" }

type speechRequest struct {
	Model          string  `json:"model"`
	Input          string  `json:"input"`
	Voice          string  `json:"voice"`
	ResponseFormat string  `json:"response_format"`
	Speed          float64 `json:"speed,omitempty"`
}

// Synthesize 实现 service.Synthesizer
func (s *SpeechSynthesizer) Synthesize(ctx context.Context, text, voiceID string) (*entity.AudioBuffer, error) {
	if voiceID == "" {
		voiceID = s.defaultVoice
	}
	body, err := json.Marshal(speechRequest{
		Model:          s.cfg.Model,
		Input:          text,
		Voice:          voiceID,
		ResponseFormat: "wav",
		Speed:          s.cfg.Speed,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal speech request: %w", err)
	}

	url := strings.TrimRight(s.cfg.BaseURL, "/") + "/audio/speech"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build speech request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("speech request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxSpeechBody))
	if err != nil {
		return nil, fmt.Errorf("read speech response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d: %s", ErrSpeechRequest, resp.StatusCode, truncate(string(data), 256))
	}

	buf, err := DecodeWAV(data)
	if err != nil {
		logger.Warn(ctx, "speech backend returned undecodable audio",
			"content_type", resp.Header.Get("Content-Type"),
			"bytes", len(data),
		)
		return nil, err
	}
	return buf, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

package config

import (
	"errors"
	"fmt"
	"strings"
)

// 片段失败策略
const (
	SegmentPolicySubstitute = "substitute"
	SegmentPolicyAbort      = "abort"
)

// 音频失败策略
const (
	AudioPolicyContinue = "continue"
	AudioPolicyAbort    = "abort"
)

// 音频合成后端
const (
	AudioProviderSilence = "silence"
	AudioProviderOpenAI  = "openai"
)

// ErrInvalidConfig 配置校验失败
var ErrInvalidConfig = errors.New("invalid config")

// Validate 启动时一次性校验配置
func (c *Config) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if c.Server.HTTP.Port <= 0 || c.Server.HTTP.Port > 65535 {
		add("server.http.port out of range: %d", c.Server.HTTP.Port)
	}

	if strings.TrimSpace(c.LLM.DefaultProvider) == "" {
		add("llm.default_provider is required")
	} else if p, ok := c.LLM.Providers[c.LLM.DefaultProvider]; !ok {
		add("llm.providers.%s is not configured", c.LLM.DefaultProvider)
	} else if p.Timeout <= 0 {
		add("llm.providers.%s.timeout must be positive", c.LLM.DefaultProvider)
	}

	if c.Narration.SegmentSeconds <= 0 {
		add("narration.segment_seconds must be positive")
	}
	if c.Narration.WordsPerMinute <= 0 {
		add("narration.words_per_minute must be positive")
	}
	if c.Narration.ContextChars < 0 {
		add("narration.context_chars must not be negative")
	}

	if c.Pipeline.MaxRetries < 0 {
		add("pipeline.max_retries must not be negative")
	}
	if c.Pipeline.MaxInflightSynthesis <= 0 {
		add("pipeline.max_inflight_synthesis must be positive")
	}
	if c.Pipeline.WorkerPoolSize <= 0 {
		add("pipeline.worker_pool_size must be positive")
	}
	switch c.Pipeline.SegmentFailurePolicy {
	case SegmentPolicySubstitute, SegmentPolicyAbort:
	default:
		add("pipeline.segment_failure_policy unknown: %q", c.Pipeline.SegmentFailurePolicy)
	}
	switch c.Pipeline.AudioFailurePolicy {
	case AudioPolicyContinue, AudioPolicyAbort:
	default:
		add("pipeline.audio_failure_policy unknown: %q", c.Pipeline.AudioFailurePolicy)
	}

	switch c.Audio.Provider {
	case AudioProviderSilence, AudioProviderOpenAI:
	default:
		add("audio.provider unknown: %q", c.Audio.Provider)
	}
	if c.Audio.SampleRate <= 0 || c.Audio.Channels <= 0 {
		add("audio.sample_rate and audio.channels must be positive")
	}
	if c.Audio.BitDepth != 8 && c.Audio.BitDepth != 16 && c.Audio.BitDepth != 24 && c.Audio.BitDepth != 32 {
		add("audio.bit_depth unsupported: %d", c.Audio.BitDepth)
	}
	if c.Audio.RequestTimeout <= 0 {
		add("audio.request_timeout must be positive")
	}

	if c.Security.JWT.Enabled && c.Security.JWT.Secret == "" && c.Security.JWT.JWKSURL == "" {
		add("security.jwt.secret or security.jwt.jwks_url is required when jwt is enabled")
	}
	if c.Security.RateLimit.Enabled {
		if c.Security.RateLimit.JourneysPerWindow <= 0 || c.Security.RateLimit.Window <= 0 {
			add("security.rate_limit.journeys_per_window and window must be positive")
		}
	}

	if c.Messaging.NATS.Enabled && len(c.Messaging.NATS.Servers) == 0 {
		add("messaging.nats.servers must not be empty when nats is enabled")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

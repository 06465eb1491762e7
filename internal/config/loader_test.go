package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFromDefaults(t *testing.T) {
	cfg, err := LoadFrom(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Narration.SegmentSeconds != 60 {
		t.Fatalf("expected segment seconds 60, got %d", cfg.Narration.SegmentSeconds)
	}
	if cfg.Narration.WordsPerMinute != 150 {
		t.Fatalf("expected 150 wpm, got %d", cfg.Narration.WordsPerMinute)
	}
	if cfg.Narration.ContextChars != 1500 {
		t.Fatalf("expected context chars 1500, got %d", cfg.Narration.ContextChars)
	}
	if cfg.Pipeline.SegmentFailurePolicy != SegmentPolicySubstitute {
		t.Fatalf("unexpected segment policy %q", cfg.Pipeline.SegmentFailurePolicy)
	}
	if cfg.Audio.Provider != AudioProviderSilence {
		t.Fatalf("unexpected audio provider %q", cfg.Audio.Provider)
	}
	if cfg.Messaging.RedisStream.Stream != "stream:journey:segments" {
		t.Fatalf("unexpected stream %q", cfg.Messaging.RedisStream.Stream)
	}
	p, ok := cfg.LLM.Providers["openai"]
	if !ok {
		t.Fatalf("expected default openai provider, got %v", cfg.LLM.Providers)
	}
	if p.Timeout != 60*time.Second {
		t.Fatalf("expected 60s llm timeout, got %v", p.Timeout)
	}
}

func TestLoadFromFileWithEnvExpansion(t *testing.T) {
	dir := t.TempDir()
	content := `
narration:
  segment_seconds: ${TEST_SEGMENT_SECONDS:45}
audio:
  provider: ${TEST_AUDIO_PROVIDER:silence}
  sample_rate: 22050
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("TEST_AUDIO_PROVIDER", "openai")

	cfg, err := LoadFrom(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Narration.SegmentSeconds != 45 {
		t.Fatalf("expected default from placeholder 45, got %d", cfg.Narration.SegmentSeconds)
	}
	if cfg.Audio.Provider != AudioProviderOpenAI {
		t.Fatalf("expected env override openai, got %q", cfg.Audio.Provider)
	}
	if cfg.Audio.SampleRate != 22050 {
		t.Fatalf("expected sample rate 22050, got %d", cfg.Audio.SampleRate)
	}
}

func TestLoadFromEnvOverridesAndAppEnvFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("pipeline:\n  max_retries: 1\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.staging.yaml"), []byte("pipeline:\n  max_retries: 4\n"), 0o600); err != nil {
		t.Fatalf("write env config: %v", err)
	}
	t.Setenv("APP_ENV", "staging")
	t.Setenv("PIPELINE_AUDIO_FAILURE_POLICY", "abort")

	cfg, err := LoadFrom(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Pipeline.MaxRetries != 4 {
		t.Fatalf("expected staging override 4, got %d", cfg.Pipeline.MaxRetries)
	}
	if cfg.Pipeline.AudioFailurePolicy != AudioPolicyAbort {
		t.Fatalf("expected env override abort, got %q", cfg.Pipeline.AudioFailurePolicy)
	}
}

func TestLoadFromRejectsUnknownPolicy(t *testing.T) {
	t.Setenv("PIPELINE_SEGMENT_FAILURE_POLICY", "skip")

	_, err := LoadFrom(t.TempDir())
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("NARRATOR_SET", "value")

	cases := []struct {
		in   string
		want string
	}{
		{"a: ${NARRATOR_SET}", "a: value"},
		{"a: ${NARRATOR_SET:fallback}", "a: value"},
		{"a: ${NARRATOR_UNSET_VAR:fallback}", "a: fallback"},
		{"a: ${NARRATOR_UNSET_VAR:}", "a: "},
		{"a: ${NARRATOR_UNSET_VAR}", "a: ${NARRATOR_UNSET_VAR}"},
	}
	for _, tc := range cases {
		if got := expandEnv(tc.in); got != tc.want {
			t.Fatalf("expandEnv(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestValidateJWTSecretRequired(t *testing.T) {
	cfg, err := LoadFrom(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg.Security.JWT.Enabled = true
	cfg.Security.JWT.Secret = ""
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

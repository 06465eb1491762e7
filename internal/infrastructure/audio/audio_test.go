package audio

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"journey-narrator/internal/config"
	"journey-narrator/internal/domain/service"
)

func TestWAVRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		format   PCMFormat
		frames   int
		duration time.Duration
	}{
		{"mono 16k", PCMFormat{SampleRate: 16000, Channels: 1, BitDepth: 16}, 32000, 2 * time.Second},
		{"stereo 8k", PCMFormat{SampleRate: 8000, Channels: 2, BitDepth: 16}, 4000, 500 * time.Millisecond},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			samples := make([]int, tt.frames*tt.format.Channels)
			for i := range samples {
				samples[i] = (i % 200) - 100
			}
			data, err := EncodeWAV(samples, tt.format)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			if !strings.HasPrefix(string(data), "RIFF") {
				t.Fatalf("missing RIFF header")
			}

			buf, err := DecodeWAV(data)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if buf.SampleRate != tt.format.SampleRate || buf.Channels != tt.format.Channels {
				t.Fatalf("format mismatch: %+v", buf)
			}
			if buf.Duration != tt.duration {
				t.Fatalf("expected %v, got %v", tt.duration, buf.Duration)
			}
			if buf.ContentType != ContentTypeWAV {
				t.Fatalf("unexpected content type %q", buf.ContentType)
			}
		})
	}
}

func TestDecodeWAVRejectsGarbage(t *testing.T) {
	for _, data := range [][]byte{nil, []byte("not a wav file at all"), []byte(`{"error":"bad"}`)} {
		if _, err := DecodeWAV(data); !errors.Is(err, service.ErrMalformedAudio) {
			t.Fatalf("expected ErrMalformedAudio for %q, got %v", data, err)
		}
	}
}

func TestMemWriteSeekerOverwrite(t *testing.T) {
	ws := &memWriteSeeker{}
	_, _ = ws.Write([]byte("hello world"))
	if _, err := ws.Seek(0, io.SeekStart); err != nil {
		t.Fatalf("seek: %v", err)
	}
	_, _ = ws.Write([]byte("HELLO"))
	if got := string(ws.Bytes()); got != "HELLO world" {
		t.Fatalf("unexpected buffer %q", got)
	}
	if _, err := ws.Seek(-1, io.SeekStart); err == nil {
		t.Fatal("negative seek should fail")
	}
}

func TestSilenceSynthesizerDuration(t *testing.T) {
	s := NewSilenceSynthesizer(PCMFormat{SampleRate: 8000, Channels: 1, BitDepth: 16}, 150)

	tests := []struct {
		words int
		want  time.Duration
	}{
		{0, time.Second},
		{1, time.Second},
		{10, 4 * time.Second},
		{150, time.Minute},
		{100000, 10 * time.Minute},
	}
	for _, tt := range tests {
		text := strings.TrimSpace(strings.Repeat("word ", tt.words))
		if got := s.SpokenDuration(text); got != tt.want {
			t.Fatalf("SpokenDuration(%d words) = %v, want %v", tt.words, got, tt.want)
		}
	}
}

func TestSilenceSynthesizerProducesPlayableWAV(t *testing.T) {
	s := NewSilenceSynthesizer(PCMFormat{}, 150)
	text := strings.Repeat("road ", 25)

	buf, err := s.Synthesize(context.Background(), text, "")
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if buf.SampleRate != 16000 || buf.Channels != 1 || buf.Duration != 10*time.Second {
		t.Fatalf("unexpected buffer: %+v", buf)
	}
	decoded, err := DecodeWAV(buf.Data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Duration != buf.Duration {
		t.Fatalf("decoded duration %v != %v", decoded.Duration, buf.Duration)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Synthesize(ctx, text, ""); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestSpeechSynthesizer(t *testing.T) {
	wavData, err := EncodeWAV(make([]int, 24000), PCMFormat{SampleRate: 24000, Channels: 1, BitDepth: 16})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	var got speechRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/audio/speech" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		auth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&got)
		switch got.Input {
		case "fail":
			http.Error(w, `{"error":"overloaded"}`, http.StatusServiceUnavailable)
		case "garbage":
			_, _ = w.Write([]byte("ID3 mp3 bytes"))
		default:
			w.Header().Set("Content-Type", "audio/wav")
			_, _ = w.Write(wavData)
		}
	}))
	defer srv.Close()

	s := NewSpeechSynthesizer(config.OpenAISpeechConfig{BaseURL: srv.URL + "/v1/", APIKey: "sk-test"}, "nova", time.Second)

	buf, err := s.Synthesize(context.Background(), "The coast road bends north.", "")
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if buf.Duration != time.Second || buf.SampleRate != 24000 {
		t.Fatalf("unexpected buffer: %+v", buf)
	}
	if got.Voice != "nova" || got.Model != "tts-1" || got.ResponseFormat != "wav" {
		t.Fatalf("unexpected request: %+v", got)
	}
	if auth != "Bearer sk-test" {
		t.Fatalf("unexpected auth header %q", auth)
	}

	if _, err := s.Synthesize(context.Background(), "x", "echo"); err != nil || got.Voice != "echo" {
		t.Fatalf("explicit voice should be used: %v %q", err, got.Voice)
	}
	if _, err := s.Synthesize(context.Background(), "fail", ""); !errors.Is(err, ErrSpeechRequest) {
		t.Fatalf("expected ErrSpeechRequest, got %v", err)
	}
	if _, err := s.Synthesize(context.Background(), "garbage", ""); !errors.Is(err, service.ErrMalformedAudio) {
		t.Fatalf("expected ErrMalformedAudio, got %v", err)
	}
}

func TestSpeechSynthesizerTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	s := NewSpeechSynthesizer(config.OpenAISpeechConfig{BaseURL: srv.URL}, "", 20*time.Millisecond)
	_, err := s.Synthesize(context.Background(), "slow", "")
	if err == nil || !strings.Contains(strings.ToLower(err.Error()), "timeout") {
		t.Fatalf("expected a timeout error, got %v", err)
	}
}

func TestNewSynthesizer(t *testing.T) {
	tests := []struct {
		provider string
		want     string
		wantErr  bool
	}{
		{"", "silence", false},
		{config.AudioProviderSilence, "silence", false},
		{config.AudioProviderOpenAI, "openai", false},
		{"polly", "", true},
	}
	for _, tt := range tests {
		s, err := NewSynthesizer(config.AudioConfig{Provider: tt.provider, SampleRate: 16000, Channels: 1, BitDepth: 16, RequestTimeout: time.Second}, 150)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("provider %q should be rejected", tt.provider)
			}
			continue
		}
		if err != nil || s.Name() != tt.want {
			t.Fatalf("provider %q: got %v, %v", tt.provider, s, err)
		}
	}
}

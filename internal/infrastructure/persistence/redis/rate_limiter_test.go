package redis

import (
	"testing"
	"time"

	"journey-narrator/internal/config"
)

func TestBuildJourneyRateLimitKey(t *testing.T) {
	tests := []struct {
		subject string
		want    string
	}{
		{"user-1", "ratelimit:journeys:user-1"},
		{"10.0.0.7", "ratelimit:journeys:10.0.0.7"},
	}
	for _, tt := range tests {
		if got := BuildJourneyRateLimitKey(tt.subject); got != tt.want {
			t.Fatalf("BuildJourneyRateLimitKey(%q) = %q, want %q", tt.subject, got, tt.want)
		}
	}
}

func TestWindowKey(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		name   string
		a, b   time.Time
		window time.Duration
		same   bool
	}{
		{"same minute", base.Add(5 * time.Second), base.Add(50 * time.Second), time.Minute, true},
		{"next minute", base.Add(50 * time.Second), base.Add(70 * time.Second), time.Minute, false},
		{"hour window", base.Add(time.Minute), base.Add(59 * time.Minute), time.Hour, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ka := windowKey("ratelimit:journeys:u", tt.a, tt.window)
			kb := windowKey("ratelimit:journeys:u", tt.b, tt.window)
			if (ka == kb) != tt.same {
				t.Fatalf("windowKey %q vs %q, same = %v, want %v", ka, kb, ka == kb, tt.same)
			}
		})
	}
}

func TestOptions(t *testing.T) {
	opts := options(config.RedisConfig{Host: "cache.local", Port: 6380, DB: 2, PoolSize: 8})
	if opts.Addr != "cache.local:6380" {
		t.Fatalf("Addr = %q", opts.Addr)
	}
	if opts.DB != 2 || opts.PoolSize != 8 {
		t.Fatalf("unexpected options: %+v", opts)
	}
}

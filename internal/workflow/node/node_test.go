package node

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestExtractJSONArray(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"bare", `["a","b"]`, `["a","b"]`},
		{"prose around", "Here is the outline:\n[\"a\", \"b\"]\nEnjoy!", `["a", "b"]`},
		{"code fence", "```json\n[\"a\"]\n```", `["a"]`},
		{"bracket in string", `["see [1]", "b"] trailing ]`, `["see [1]", "b"]`},
		{"escaped quote", `["say \"]\"", "b"]`, `["say \"]\"", "b"]`},
		{"nested", `[["a"], "b"] [x]`, `[["a"], "b"]`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ExtractJSONArray(tc.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestExtractJSONArrayMissing(t *testing.T) {
	for _, in := range []string{"", "no array here", `["unterminated"`, `{"a": 1}`} {
		if _, err := ExtractJSONArray(in); !errors.Is(err, ErrNoJSONArray) {
			t.Fatalf("ExtractJSONArray(%q) expected ErrNoJSONArray, got %v", in, err)
		}
	}
}

func TestParseStringArray(t *testing.T) {
	got, err := ParseStringArray("Outline: [\" one \", \"two\"]")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0] != "one" || got[1] != "two" {
		t.Fatalf("unexpected result %q", got)
	}

	for _, in := range []string{`[]`, `[1, 2]`, `["a", {"b": 1}]`, `["a", "  "]`} {
		if _, err := ParseStringArray(in); !errors.Is(err, ErrNotStringArray) {
			t.Fatalf("ParseStringArray(%q) expected ErrNotStringArray, got %v", in, err)
		}
	}
	if _, err := ParseStringArray(`[,]`); !errors.Is(err, ErrNoJSONArray) {
		t.Fatalf("expected ErrNoJSONArray for invalid json, got %v", err)
	}
}

func TestTailByRunes(t *testing.T) {
	prev := strings.Repeat("甲", 500) + strings.Repeat("乙", 1500)
	got := TailByRunes(prev, 1500)
	if got != strings.Repeat("乙", 1500) {
		t.Fatalf("tail mismatch: %d runes", len([]rune(got)))
	}
	if TailByRunes("short", 1500) != "short" {
		t.Fatal("short input should be returned unchanged")
	}
	if TailByRunes("abc", 0) != "" {
		t.Fatal("zero window should be empty")
	}
	if TailByRunes("abcdef", 2) != "ef" {
		t.Fatal("ascii tail mismatch")
	}
}

func TestTruncateByRunes(t *testing.T) {
	if got := TruncateByRunes("旅程开始了", 2); got != "旅程" {
		t.Fatalf("got %q", got)
	}
	if got := TruncateByRunes("abc", 10); got != "abc" {
		t.Fatalf("got %q", got)
	}
}

func TestCleanNarration(t *testing.T) {
	in := "# Chapter 2\n\nThe road bent toward the sea.\n\n\n\nGulls circled overhead."
	want := "The road bent toward the sea.\n\nGulls circled overhead."
	if got := CleanNarration(in); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if got := CleanNarration(`"The lamps flickered."`); got != "The lamps flickered." {
		t.Fatalf("quotes not stripped: %q", got)
	}
	if got := CleanNarration("   \n  "); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}

func TestIsTimeoutError(t *testing.T) {
	if !IsTimeoutError(fmt.Errorf("wrap: %w", context.DeadlineExceeded)) {
		t.Fatal("deadline exceeded should be a timeout")
	}
	if !IsTimeoutError(errors.New("upstream: Request Timeout")) {
		t.Fatal("provider timeout message should be a timeout")
	}
	if IsTimeoutError(errors.New("401 unauthorized")) || IsTimeoutError(nil) {
		t.Fatal("unexpected timeout classification")
	}
}

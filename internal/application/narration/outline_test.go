package narration

import (
	"context"
	"strings"
	"testing"

	"journey-narrator/internal/domain/entity"
)

func TestGenerateOutlinePadsShortResponse(t *testing.T) {
	m := &scriptedChatModel{outline: func(string) (string, error) {
		return `Sure! ["Arrival at dusk.", "A stranger appears."]`, nil
	}}
	got := newOutlineGenerator(m).GenerateOutline(context.Background(), mustJourney(300, entity.StyleNoir), 5)

	if len(got) != 5 {
		t.Fatalf("expected 5 chapters, got %d", len(got))
	}
	if got[0] != "Arrival at dusk." || got[1] != "A stranger appears." {
		t.Fatalf("model chapters not kept: %q", got)
	}
	for i := 2; i < 5; i++ {
		if got[i] != OutlinePadding {
			t.Fatalf("chapter %d = %q, want padding", i+1, got[i])
		}
	}
}

func TestGenerateOutlineTruncatesLongResponse(t *testing.T) {
	m := &scriptedChatModel{outline: func(string) (string, error) {
		return `["1", "2", "3", "4", "5", "6", "7", "8"]`, nil
	}}
	got := newOutlineGenerator(m).GenerateOutline(context.Background(), mustJourney(300, entity.StyleNoir), 5)

	want := []string{"1", "2", "3", "4", "5"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestGenerateOutlineNeverFails(t *testing.T) {
	cases := map[string]func(string) (string, error){
		"network error": func(string) (string, error) { return "", errNetwork },
		"garbage":       func(string) (string, error) { return "I cannot help with that.", nil },
		"empty array":   func(string) (string, error) { return "[]", nil },
		"not strings":   func(string) (string, error) { return "[1, 2, 3]", nil },
		"object":        func(string) (string, error) { return `{"chapters": "none"}`, nil },
		"blank":         func(string) (string, error) { return "   ", nil },
	}
	for name, reply := range cases {
		t.Run(name, func(t *testing.T) {
			m := &scriptedChatModel{outline: reply}
			got := newOutlineGenerator(m).GenerateOutline(context.Background(), mustJourney(185, entity.StyleFantasy), 4)
			if len(got) != 4 {
				t.Fatalf("expected 4 chapters, got %d", len(got))
			}
			for i, c := range got {
				if c != OutlinePlaceholder {
					t.Fatalf("chapter %d = %q, want placeholder", i+1, c)
				}
			}
		})
	}
}

func TestGenerateOutlineRequestsSegmentCountChapters(t *testing.T) {
	m := &scriptedChatModel{}
	newOutlineGenerator(m).GenerateOutline(context.Background(), mustJourney(185, entity.StyleFantasy), 4)

	prompts := m.Prompts()
	if len(prompts) != 1 {
		t.Fatalf("expected one outline request, got %d", len(prompts))
	}
	for _, want := range []string{"exactly 4 chapters", "Old Town", "Harbor", "walking", ResolveStyleInstruction(entity.StyleFantasy)} {
		if !strings.Contains(prompts[0], want) {
			t.Fatalf("outline prompt missing %q:\n%s", want, prompts[0])
		}
	}
}

func TestFitOutline(t *testing.T) {
	if got := FitOutline(nil, 2); got[0] != OutlinePadding || got[1] != OutlinePadding {
		t.Fatalf("unexpected %q", got)
	}
	if got := FitOutline([]string{"a", "b"}, 2); got[0] != "a" || got[1] != "b" {
		t.Fatalf("unexpected %q", got)
	}
}

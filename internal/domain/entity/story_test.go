package entity

import (
	"errors"
	"testing"
	"time"
)

func newTestJourney(t *testing.T) *Journey {
	t.Helper()
	j, err := NewJourney("Old Town", "Harbor", TravelModeWalking, 185, 1200, StyleFantasy, "alloy")
	if err != nil {
		t.Fatalf("new journey: %v", err)
	}
	return j
}

func TestStoryAppendIsDenseAndOrdered(t *testing.T) {
	s := NewStory(newTestJourney(t))

	if err := s.Append(Segment{Index: 1, Text: "one"}); err != nil {
		t.Fatalf("append 1: %v", err)
	}
	if err := s.Append(Segment{Index: 3, Text: "three"}); !errors.Is(err, ErrSegmentOutOfOrder) {
		t.Fatalf("expected ErrSegmentOutOfOrder for gap, got %v", err)
	}
	if err := s.Append(Segment{Index: 1, Text: "again"}); !errors.Is(err, ErrSegmentOutOfOrder) {
		t.Fatalf("expected ErrSegmentOutOfOrder for duplicate, got %v", err)
	}
	if err := s.Append(Segment{Index: 2, Text: "two"}); err != nil {
		t.Fatalf("append 2: %v", err)
	}
	if s.Len() != 2 {
		t.Fatalf("expected 2 segments, got %d", s.Len())
	}
	seg, ok := s.Segment(1)
	if !ok || seg.Text != "one" {
		t.Fatalf("segment 1 text mutated: %+v", seg)
	}
}

func TestStoryAttachAudioOnce(t *testing.T) {
	s := NewStory(newTestJourney(t))
	if err := s.Append(Segment{Index: 1, Text: "one"}); err != nil {
		t.Fatalf("append: %v", err)
	}

	buf := &AudioBuffer{ContentType: "audio/wav", Data: []byte{1, 2}, SampleRate: 16000, Channels: 1, Duration: time.Second}
	if err := s.AttachAudio(1, buf); err != nil {
		t.Fatalf("attach: %v", err)
	}
	if err := s.AttachAudio(1, buf); !errors.Is(err, ErrAudioAlreadyAttached) {
		t.Fatalf("expected ErrAudioAlreadyAttached, got %v", err)
	}
	if err := s.AttachAudio(2, buf); !errors.Is(err, ErrSegmentMissing) {
		t.Fatalf("expected ErrSegmentMissing, got %v", err)
	}
	seg, _ := s.Segment(1)
	if !seg.HasAudio() || seg.Audio.Size() != 2 {
		t.Fatalf("expected attached audio, got %+v", seg)
	}
}

func TestStoryTerminalStateIsSticky(t *testing.T) {
	s := NewStory(newTestJourney(t))
	s.SetState(PipelineState{Phase: PhaseGenerating, Index: 1})
	s.Finish(PhaseAborted, "segment 1 failed")
	s.SetState(PipelineState{Phase: PhaseGenerating, Index: 2})
	s.Finish(PhaseComplete, "")

	state, reason := s.State()
	if state.Phase != PhaseAborted || reason != "segment 1 failed" {
		t.Fatalf("expected sticky ABORTED, got %v %q", state, reason)
	}
}

func TestParseStoryStyle(t *testing.T) {
	cases := map[string]StoryStyle{
		"noir":       StyleNoir,
		" Fantasy ":  StyleFantasy,
		"CHILDREN":   StyleChildren,
		"historical": StyleHistorical,
		"":           StyleDefault,
		"cyberpunk":  StyleDefault,
		"default":    StyleDefault,
	}
	for in, want := range cases {
		if got := ParseStoryStyle(in); got != want {
			t.Fatalf("ParseStoryStyle(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestNewJourneyValidation(t *testing.T) {
	if _, err := NewJourney("", "B", TravelModeDriving, 60, 0, StyleDefault, ""); !errors.Is(err, ErrInvalidJourney) {
		t.Fatalf("expected ErrInvalidJourney for empty start, got %v", err)
	}
	if _, err := NewJourney("A", "B", TravelModeDriving, MaxJourneyDuration.Seconds()+1, 0, StyleDefault, ""); !errors.Is(err, ErrInvalidJourney) {
		t.Fatalf("expected ErrInvalidJourney for long journey, got %v", err)
	}
	j, err := NewJourney("A", "B", "", 0, 0, StyleDefault, "")
	if err != nil {
		t.Fatalf("zero duration should be valid: %v", err)
	}
	if j.TravelMode != TravelModeDriving || j.ID == "" {
		t.Fatalf("unexpected defaults: %+v", j)
	}
}

func TestPipelineStateString(t *testing.T) {
	if got := (PipelineState{Phase: PhaseGenerating, Index: 3}).String(); got != "GENERATING(3)" {
		t.Fatalf("unexpected %q", got)
	}
	if got := (PipelineState{Phase: PhaseComplete}).String(); got != "COMPLETE" {
		t.Fatalf("unexpected %q", got)
	}
}

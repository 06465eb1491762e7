package narration

import (
	"context"
	"errors"
	"testing"
	"time"

	"journey-narrator/internal/domain/entity"
)

func TestSessionManagerSupersedesPreviousJourney(t *testing.T) {
	oldJourney := mustJourney(600, entity.StyleNoir)
	first := &stubSegments{started: make(chan int, 32)}
	orch := NewOrchestrator(NewSizer(60, 150), &fixedOutline{}, &blockOnIndex{inner: first, index: 2, journeyID: oldJourney.ID}, &fakeSynthesizer{}, nil, nil, testPolicy())
	mgr := NewSessionManager(orch)

	if _, err := mgr.Current(); !errors.Is(err, ErrNoActiveJourney) {
		t.Fatalf("expected ErrNoActiveJourney, got %v", err)
	}

	oldSess, oldEvents := mgr.Start(context.Background(), oldJourney)
	go collect(oldEvents)
	for idx := range first.started {
		if idx == 2 {
			break
		}
	}

	newJourney := mustJourney(120, entity.StyleChildren)
	newSess, newEvents := mgr.Start(context.Background(), newJourney)

	select {
	case <-oldSess.Done():
	default:
		t.Fatal("previous session should be finished once the new one starts")
	}
	state, _ := oldSess.Story.State()
	if state.Phase != entity.PhaseAborted {
		t.Fatalf("superseded journey should be ABORTED, got %v", state)
	}

	got := collect(newEvents)
	if last := lastEvent(t, got); last.Type != entity.EventComplete || last.JourneyID != newJourney.ID {
		t.Fatalf("expected new journey to complete, got %+v", last)
	}
	for _, ev := range got {
		if ev.JourneyID == oldJourney.ID {
			t.Fatal("events from the superseded journey leaked into the new stream")
		}
	}

	cur, err := mgr.Current()
	if err != nil || cur != newSess {
		t.Fatalf("current session should be the new journey, got %v %v", cur, err)
	}
}

func TestSessionManagerCancelKeepsPlayableSegments(t *testing.T) {
	segments := &stubSegments{started: make(chan int, 8)}
	orch := NewOrchestrator(NewSizer(60, 150), &fixedOutline{}, &blockOnIndex{inner: segments, index: 3}, &fakeSynthesizer{}, nil, nil, testPolicy())
	mgr := NewSessionManager(orch)

	if err := mgr.Cancel(); !errors.Is(err, ErrNoActiveJourney) {
		t.Fatalf("expected ErrNoActiveJourney, got %v", err)
	}

	sess, events := mgr.Start(context.Background(), mustJourney(600, entity.StyleHistorical))
	go collect(events)
	for idx := range segments.started {
		if idx == 3 {
			break
		}
	}

	done := make(chan error, 1)
	go func() { done <- mgr.Cancel() }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("cancel: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("cancel did not return")
	}

	if sess.Story.Len() != 2 {
		t.Fatalf("expected 2 playable segments after cancel, got %d", sess.Story.Len())
	}
	for i := 1; i <= 2; i++ {
		if seg, ok := sess.Story.Segment(i); !ok || seg.Text == "" {
			t.Fatalf("segment %d should remain available", i)
		}
	}
	state, reason := sess.Story.State()
	if state.Phase != entity.PhaseAborted || reason == "" {
		t.Fatalf("expected ABORTED with reason, got %v %q", state, reason)
	}
}

package sinks

import (
	"context"
	"testing"

	"blast-arena/server/logging"
)

func TestMemorySinkAccumulatesAndCopies(t *testing.T) {
	sink := NewMemorySink()
	if err := sink.Write(logging.Event{Type: "combat.kill", Tick: 3}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := sink.Write(logging.Event{Type: "combat.hit", Tick: 4}); err != nil {
		t.Fatalf("write: %v", err)
	}

	events := sink.Events()
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Type != "combat.kill" || events[1].Tick != 4 {
		t.Fatalf("unexpected events %+v", events)
	}

	// The returned slice is a copy; mutating it must not touch the sink.
	events[0].Type = "mutated"
	if sink.Events()[0].Type != "combat.kill" {
		t.Fatalf("Events must return a copy")
	}

	if err := sink.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
}

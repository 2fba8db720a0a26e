package sinks

import (
	"strings"
	"testing"

	"blast-arena/server/logging"
)

func TestConsoleSinkFormatsEvent(t *testing.T) {
	var buf strings.Builder
	sink := NewConsoleSink(&buf)

	err := sink.Write(logging.Event{
		Type:     "combat.hit",
		Room:     "ROOM42",
		Tick:     12,
		Actor:    logging.EntityRef{ID: "p_1", Kind: logging.EntityKindPlayer},
		Targets:  []logging.EntityRef{{ID: "p_2", Kind: logging.EntityKindPlayer}},
		Severity: logging.SeverityInfo,
		Payload:  map[string]any{"damage": 22},
	})
	if err != nil {
		t.Fatalf("write: %v", err)
	}

	line := buf.String()
	for _, want := range []string{"[combat.hit]", "room=ROOM42", "tick=12", "actor=player:p_1", "severity=info", "targets=player:p_2", `"damage":22`} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %q in output, got %q", want, line)
		}
	}
}

func TestConsoleSinkOmitsEmptySections(t *testing.T) {
	var buf strings.Builder
	sink := NewConsoleSink(&buf)

	if err := sink.Write(logging.Event{Type: "lifecycle.room_created", Severity: logging.SeverityInfo}); err != nil {
		t.Fatalf("write: %v", err)
	}

	line := buf.String()
	if strings.Contains(line, "room=") || strings.Contains(line, "targets=") || strings.Contains(line, "payload=") {
		t.Fatalf("empty sections should be omitted, got %q", line)
	}
}

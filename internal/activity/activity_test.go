package activity

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

type countRecorder struct {
	n int
}

func (c *countRecorder) Record(context.Context, Event) { c.n++ }

// TestMultiFansOut verifies every recorder in a Multi receives the event.
func TestMultiFansOut(t *testing.T) {
	a, b := &countRecorder{}, &countRecorder{}
	m := Multi{a, b, Discard{}}

	m.Record(context.Background(), Event{Type: TypeWorkoutCompleted, UserID: 1})

	if a.n != 1 || b.n != 1 {
		t.Errorf("recorder counts = %d, %d, want 1, 1", a.n, b.n)
	}
}

// TestLogRecorder verifies the event appears in structured log output.
func TestLogRecorder(t *testing.T) {
	var buf bytes.Buffer
	r := &LogRecorder{Log: slog.New(slog.NewTextHandler(&buf, nil))}

	r.Record(context.Background(), Event{
		Type:       TypePersonalRecord,
		UserID:     7,
		OccurredAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		Payload:    map[string]any{"exercise": "Squat"},
	})

	out := buf.String()
	if !strings.Contains(out, TypePersonalRecord) {
		t.Errorf("log output missing event type: %s", out)
	}
	if !strings.Contains(out, "user_id=7") {
		t.Errorf("log output missing user id: %s", out)
	}
}

// Package activity is the fire-and-forget event sink for activity-worthy
// moments (program completed, personal record, session finished). Recorder
// failures are logged and swallowed: no state transition is ever rolled back
// because its notification could not be delivered.
package activity

import (
	"context"
	"log/slog"
	"time"
)

// Event types emitted by the engine.
const (
	TypeProgramCompleted = "program_completed"
	TypeWorkoutCompleted = "workout_completed"
	TypeWorkoutSkipped   = "workout_skipped"
	TypeSessionCompleted = "session_completed"
	TypePersonalRecord   = "personal_record"
)

// Event is one recorded activity entry.
type Event struct {
	Type       string         `json:"type"`
	UserID     int64          `json:"user_id"`
	OccurredAt time.Time      `json:"occurred_at"`
	Payload    map[string]any `json:"payload,omitempty"`
}

// Recorder receives events. Implementations must not block the caller on
// failure; Record has no error return on purpose.
type Recorder interface {
	Record(ctx context.Context, ev Event)
}

// LogRecorder writes events to structured logs.
type LogRecorder struct {
	Log *slog.Logger
}

func (r *LogRecorder) Record(_ context.Context, ev Event) {
	r.Log.Info("activity",
		"type", ev.Type,
		"user_id", ev.UserID,
		"occurred_at", ev.OccurredAt,
		"payload", ev.Payload,
	)
}

// Multi fans one event out to several recorders.
type Multi []Recorder

func (m Multi) Record(ctx context.Context, ev Event) {
	for _, r := range m {
		r.Record(ctx, ev)
	}
}

// Discard drops all events; useful in tests and offline tooling.
type Discard struct{}

func (Discard) Record(context.Context, Event) {}

package storage

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/claude/ironlog/internal/activity"
)

// ActivityRecorder persists activity events to the activity_log table.
// Failures are logged and swallowed: the recorder contract is fire-and-forget
// and must never roll back the transition that emitted the event.
type ActivityRecorder struct {
	db  *DB
	log *slog.Logger
}

// NewActivityRecorder creates a store-backed recorder.
func NewActivityRecorder(db *DB, log *slog.Logger) *ActivityRecorder {
	return &ActivityRecorder{db: db, log: log}
}

func (r *ActivityRecorder) Record(ctx context.Context, ev activity.Event) {
	payload, err := json.Marshal(ev.Payload)
	if err != nil {
		r.log.Warn("activity payload marshal failed", "type", ev.Type, "error", err)
		payload = nil
	}
	_, err = r.db.Pool.Exec(ctx,
		`INSERT INTO activity_log (user_id, type, occurred_at, payload) VALUES ($1,$2,$3,$4)`,
		ev.UserID, ev.Type, ev.OccurredAt, payload)
	if err != nil {
		r.log.Warn("activity record failed", "type", ev.Type, "error", err)
	}
}

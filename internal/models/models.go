package models

import (
	"time"

	"github.com/google/uuid"
)

// Unit is the user's display unit system. Weights are stored in the user's
// display unit throughout; only calculator baselines convert.
type Unit string

const (
	UnitMetric   Unit = "metric"
	UnitImperial Unit = "imperial"
)

// Profile carries the numeric user inputs the engine needs: body weight,
// unit system, and the smallest plate/dumbbell increment for rounding.
type Profile struct {
	UserID     int64   `json:"user_id"`
	BodyWeight float64 `json:"body_weight"`
	Unit       Unit    `json:"unit"`
	// Increment is the smallest loadable step, e.g. 2.5 kg or 5 lb.
	Increment float64 `json:"increment"`
}

// Program is an immutable multi-week training plan template. Execution never
// mutates it; only explicit edit operations (duplicate, reorder) do.
type Program struct {
	ID          uuid.UUID          `json:"id"`
	Name        string             `json:"name"`
	WeeksTotal  int                `json:"weeks_total"`
	DaysPerWeek int                `json:"days_per_week"`
	IsCustom    bool               `json:"is_custom"`
	CreatedAt   time.Time          `json:"created_at"`
	Workouts    []*WorkoutTemplate `json:"workouts"`
}

// WorkoutTemplate is a reusable ordered list of exercises performed in one
// sitting. Its position inside Program.Workouts drives rotation.
type WorkoutTemplate struct {
	ID        uuid.UUID           `json:"id"`
	ProgramID uuid.UUID           `json:"program_id"`
	Name      string              `json:"name"`
	Exercises []*ExerciseTemplate `json:"exercises"`
}

// ExerciseTemplate prescribes one exercise inside a workout. OrderIndex is
// 0-based, unique within the workout, and kept contiguous across reorders.
type ExerciseTemplate struct {
	ID           uuid.UUID `json:"id"`
	WorkoutID    uuid.UUID `json:"workout_id"`
	Name         string    `json:"name"`
	OrderIndex   int       `json:"order_index"`
	TargetSets   int       `json:"target_sets"`
	TargetReps   int       `json:"target_reps"`
	TargetWeight *float64  `json:"target_weight,omitempty"`
	RestSeconds  *int      `json:"rest_seconds,omitempty"`
	// IsSupersetWith references the OrderIndex of the paired template,
	// nil when the exercise is not supersetted.
	IsSupersetWith *int `json:"is_superset_with,omitempty"`
}

// ProgramExecution tracks a user's position inside a program schedule.
type ProgramExecution struct {
	ID          uuid.UUID                 `json:"id"`
	ProgramID   uuid.UUID                 `json:"program_id"`
	UserID      int64                     `json:"user_id"`
	CurrentWeek int                       `json:"current_week"`
	CurrentDay  int                       `json:"current_day"`
	IsCompleted bool                      `json:"is_completed"`
	IsPaused    bool                      `json:"is_paused"`
	StartedAt   time.Time                 `json:"started_at"`
	EndedAt     *time.Time                `json:"ended_at,omitempty"`
	History     []*CompletedWorkoutRecord `json:"history"`
}

// CompletedWorkoutRecord is one advancement step of an execution, completed
// or skipped. Immutable once appended, except for late-attached notes.
type CompletedWorkoutRecord struct {
	ID          uuid.UUID  `json:"id"`
	ExecutionID uuid.UUID  `json:"execution_id"`
	// WorkoutID is nil when the step was skipped with no workout resolved.
	WorkoutID   *uuid.UUID `json:"workout_id,omitempty"`
	WeekNumber  int        `json:"week_number"`
	DayNumber   int        `json:"day_number"`
	CompletedAt time.Time  `json:"completed_at"`
	IsSkipped   bool       `json:"is_skipped"`
	SkipReason  *string    `json:"skip_reason,omitempty"`
	SessionID   *uuid.UUID `json:"session_id,omitempty"`
	Notes       *string    `json:"notes,omitempty"`
}

// Session is one concrete attempt at a workout template.
type Session struct {
	ID          uuid.UUID         `json:"id"`
	WorkoutID   uuid.UUID         `json:"workout_id"`
	UserID      int64             `json:"user_id"`
	StartedAt   time.Time         `json:"started_at"`
	EndedAt     *time.Time        `json:"ended_at,omitempty"`
	IsCompleted bool              `json:"is_completed"`
	TotalVolume float64           `json:"total_volume"`
	TotalSets   int               `json:"total_sets"`
	TotalReps   int               `json:"total_reps"`
	Results     []*ExerciseResult `json:"results"`
}

// ExerciseResult is the recorded performance for one exercise within a
// session. Its position in Session.Results mirrors the workout's exercise
// order and stays in sync across reorders.
type ExerciseResult struct {
	ID               uuid.UUID    `json:"id"`
	SessionID        uuid.UUID    `json:"session_id"`
	ExerciseID       uuid.UUID    `json:"exercise_id"`
	ExerciseName     string       `json:"exercise_name"`
	IsPersonalRecord bool         `json:"is_personal_record"`
	Notes            *string      `json:"notes,omitempty"`
	Sets             []*SetRecord `json:"sets"`
}

// SetRecord is one logged set. SetNumber is 1-based and renumbered after
// removals so the sequence stays contiguous.
type SetRecord struct {
	ID          uuid.UUID  `json:"id"`
	ResultID    uuid.UUID  `json:"result_id"`
	SetNumber   int        `json:"set_number"`
	Weight      *float64   `json:"weight,omitempty"`
	Reps        int        `json:"reps"`
	IsWarmup    bool       `json:"is_warmup"`
	IsCompleted bool       `json:"is_completed"`
	RPE         *float64   `json:"rpe,omitempty"`
	RIR         *int       `json:"rir,omitempty"`
	Timestamp   *time.Time `json:"timestamp,omitempty"`
}

// ValidateSet checks the SetRecord invariants that are enforced at record
// time: reps never negative, RPE in [1,10] when present.
func (s *SetRecord) ValidateSet() error {
	if s.Reps < 0 {
		return &ValidationError{Entity: "SetRecord", Field: "reps", Reason: "must be >= 0"}
	}
	if s.RPE != nil && (*s.RPE < 1 || *s.RPE > 10) {
		return &ValidationError{Entity: "SetRecord", Field: "rpe", Reason: "must be within [1,10]"}
	}
	return nil
}

// Package execution advances a user through a program schedule: week/day
// counters, cyclic workout rotation, pause/resume/reset, and completion
// detection.
//
// Pausing is bookkeeping only: advancement operations remain callable while
// paused. Callers that want strict pause semantics gate at their own layer;
// the machine deliberately does not.
package execution

import (
	"context"
	"time"

	"github.com/claude/ironlog/internal/activity"
	"github.com/claude/ironlog/internal/models"
	"github.com/google/uuid"
)

// WorkoutIndex resolves which workout in the rotation is scheduled for a
// given (week, day) position. Rotation is cyclic over the template list, so
// a 2-workout program alternates A-B-A-B across week boundaries. Pure
// function; never cached on the execution.
func WorkoutIndex(week, day, daysPerWeek, workoutCount int) int {
	return ((week-1)*daysPerWeek + (day - 1)) % workoutCount
}

// Machine wraps a program execution and its program with the transition
// operations. States are {Active, Paused, Completed}.
type Machine struct {
	exec    *models.ProgramExecution
	program *models.Program
	events  activity.Recorder
	now     func() time.Time
}

// Option customizes a Machine.
type Option func(*Machine)

// WithClock overrides the machine's time source.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) { m.now = now }
}

// WithRecorder attaches an activity event sink.
func WithRecorder(r activity.Recorder) Option {
	return func(m *Machine) { m.events = r }
}

// Start creates a fresh execution positioned at week 1, day 1.
func Start(program *models.Program, userID int64, opts ...Option) (*Machine, error) {
	if program.WeeksTotal < 1 {
		return nil, &models.ValidationError{Entity: "Program", Field: "weeks_total", Reason: "must be >= 1"}
	}
	if program.DaysPerWeek < 1 {
		return nil, &models.ValidationError{Entity: "Program", Field: "days_per_week", Reason: "must be >= 1"}
	}

	m := &Machine{
		program: program,
		events:  activity.Discard{},
		now:     time.Now,
	}
	for _, o := range opts {
		o(m)
	}
	m.exec = &models.ProgramExecution{
		ID:          uuid.New(),
		ProgramID:   program.ID,
		UserID:      userID,
		CurrentWeek: 1,
		CurrentDay:  1,
		StartedAt:   m.now().UTC(),
	}
	return m, nil
}

// Resume rehydrates a machine around a stored execution.
func Resume(exec *models.ProgramExecution, program *models.Program, opts ...Option) *Machine {
	m := &Machine{
		exec:    exec,
		program: program,
		events:  activity.Discard{},
		now:     time.Now,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Execution exposes the underlying entity for persistence.
func (m *Machine) Execution() *models.ProgramExecution { return m.exec }

// CurrentWorkout resolves the workout template scheduled at the current
// position. A completed execution or an empty program surfaces an
// InvalidTransitionError.
func (m *Machine) CurrentWorkout() (*models.WorkoutTemplate, error) {
	if m.exec.IsCompleted {
		return nil, &models.InvalidTransitionError{Entity: "ProgramExecution", Op: "CurrentWorkout", Reason: "execution already completed"}
	}
	if len(m.program.Workouts) == 0 {
		return nil, &models.InvalidTransitionError{Entity: "ProgramExecution", Op: "CurrentWorkout", Reason: "program has no workouts"}
	}
	idx := WorkoutIndex(m.exec.CurrentWeek, m.exec.CurrentDay, m.program.DaysPerWeek, len(m.program.Workouts))
	return m.program.Workouts[idx], nil
}

// CompleteCurrentWorkout appends a completed record for the current position
// and advances the schedule. sessionID optionally links the session that was
// performed. Completing past the last week transitions to Completed and
// emits a one-time program-completed event.
func (m *Machine) CompleteCurrentWorkout(ctx context.Context, sessionID *uuid.UUID) (*models.CompletedWorkoutRecord, error) {
	workout, err := m.CurrentWorkout()
	if err != nil {
		return nil, err
	}

	rec := &models.CompletedWorkoutRecord{
		ID:          uuid.New(),
		ExecutionID: m.exec.ID,
		WorkoutID:   &workout.ID,
		WeekNumber:  m.exec.CurrentWeek,
		DayNumber:   m.exec.CurrentDay,
		CompletedAt: m.now().UTC(),
		SessionID:   sessionID,
	}
	m.exec.History = append(m.exec.History, rec)

	m.events.Record(ctx, activity.Event{
		Type:       activity.TypeWorkoutCompleted,
		UserID:     m.exec.UserID,
		OccurredAt: rec.CompletedAt,
		Payload: map[string]any{
			"program": m.program.Name,
			"workout": workout.Name,
			"week":    rec.WeekNumber,
			"day":     rec.DayNumber,
		},
	})

	m.advance(ctx)
	return rec, nil
}

// SkipCurrentWorkout advances the schedule exactly like a completion but
// marks the record skipped; skipped records never count toward streak or
// adherence views.
func (m *Machine) SkipCurrentWorkout(ctx context.Context, reason *string) (*models.CompletedWorkoutRecord, error) {
	if m.exec.IsCompleted {
		return nil, &models.InvalidTransitionError{Entity: "ProgramExecution", Op: "SkipCurrentWorkout", Reason: "execution already completed"}
	}

	rec := &models.CompletedWorkoutRecord{
		ID:          uuid.New(),
		ExecutionID: m.exec.ID,
		WeekNumber:  m.exec.CurrentWeek,
		DayNumber:   m.exec.CurrentDay,
		CompletedAt: m.now().UTC(),
		IsSkipped:   true,
		SkipReason:  reason,
	}
	if len(m.program.Workouts) > 0 {
		idx := WorkoutIndex(m.exec.CurrentWeek, m.exec.CurrentDay, m.program.DaysPerWeek, len(m.program.Workouts))
		rec.WorkoutID = &m.program.Workouts[idx].ID
	}
	m.exec.History = append(m.exec.History, rec)

	m.events.Record(ctx, activity.Event{
		Type:       activity.TypeWorkoutSkipped,
		UserID:     m.exec.UserID,
		OccurredAt: rec.CompletedAt,
		Payload:    map[string]any{"program": m.program.Name, "week": rec.WeekNumber, "day": rec.DayNumber},
	})

	m.advance(ctx)
	return rec, nil
}

// advance moves to the next day, rolling over weeks, and completes the
// program past the final week.
func (m *Machine) advance(ctx context.Context) {
	m.exec.CurrentDay++
	if m.exec.CurrentDay > m.program.DaysPerWeek {
		m.exec.CurrentDay = 1
		m.exec.CurrentWeek++
	}
	if m.exec.CurrentWeek > m.program.WeeksTotal {
		m.completeProgram(ctx)
	}
}

// CompleteProgram marks the execution finished. It is also reached
// automatically when advancement passes the final week. Completing an
// already-completed execution surfaces an InvalidTransitionError so callers
// can prevent double-completion logging.
func (m *Machine) CompleteProgram(ctx context.Context) error {
	if m.exec.IsCompleted {
		return &models.InvalidTransitionError{Entity: "ProgramExecution", Op: "CompleteProgram", Reason: "execution already completed"}
	}
	m.completeProgram(ctx)
	return nil
}

func (m *Machine) completeProgram(ctx context.Context) {
	ended := m.now().UTC()
	m.exec.IsCompleted = true
	m.exec.EndedAt = &ended

	performed := 0
	for _, rec := range m.exec.History {
		if !rec.IsSkipped {
			performed++
		}
	}
	m.events.Record(ctx, activity.Event{
		Type:       activity.TypeProgramCompleted,
		UserID:     m.exec.UserID,
		OccurredAt: ended,
		Payload: map[string]any{
			"program":  m.program.Name,
			"workouts": performed,
			"weeks":    m.program.WeeksTotal,
		},
	})
}

// PauseProgram flags the execution paused. Week/day counters are untouched
// and advancement stays callable.
func (m *Machine) PauseProgram() { m.exec.IsPaused = true }

// ResumeProgram clears the paused flag.
func (m *Machine) ResumeProgram() { m.exec.IsPaused = false }

// ResetProgram returns to week 1 day 1, clears completion and pause state,
// and discards history, regardless of prior state.
func (m *Machine) ResetProgram() {
	m.exec.CurrentWeek = 1
	m.exec.CurrentDay = 1
	m.exec.IsCompleted = false
	m.exec.IsPaused = false
	m.exec.EndedAt = nil
	m.exec.History = nil
}

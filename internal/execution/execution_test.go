package execution

import (
	"context"
	"errors"
	"testing"

	"github.com/claude/ironlog/internal/activity"
	"github.com/claude/ironlog/internal/models"
	"github.com/google/uuid"
)

func twoWorkoutProgram(weeks, daysPerWeek int) *models.Program {
	pid := uuid.New()
	return &models.Program{
		ID:          pid,
		Name:        "Test 5x5",
		WeeksTotal:  weeks,
		DaysPerWeek: daysPerWeek,
		Workouts: []*models.WorkoutTemplate{
			{ID: uuid.New(), ProgramID: pid, Name: "Workout A"},
			{ID: uuid.New(), ProgramID: pid, Name: "Workout B"},
		},
	}
}

// capture records activity events for assertions.
type capture struct {
	events []activity.Event
}

func (c *capture) Record(_ context.Context, e activity.Event) {
	c.events = append(c.events, e)
}

// TestWorkoutIndex verifies the cyclic rotation across week boundaries:
// a 2-workout, 3-day program runs A B A / B A B.
func TestWorkoutIndex(t *testing.T) {
	cases := []struct {
		week, day, want int
	}{
		{1, 1, 0},
		{1, 2, 1},
		{1, 3, 0},
		{2, 1, 1},
		{2, 2, 0},
		{2, 3, 1},
		{3, 1, 0},
	}
	for _, c := range cases {
		if got := WorkoutIndex(c.week, c.day, 3, 2); got != c.want {
			t.Errorf("WorkoutIndex(%d, %d, 3, 2) = %d, want %d", c.week, c.day, got, c.want)
		}
	}
}

// TestStart verifies a fresh execution begins at week 1, day 1.
func TestStart(t *testing.T) {
	m, err := Start(twoWorkoutProgram(12, 3), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	exec := m.Execution()
	if exec.CurrentWeek != 1 || exec.CurrentDay != 1 {
		t.Errorf("position = week %d day %d, want 1/1", exec.CurrentWeek, exec.CurrentDay)
	}
	if exec.IsCompleted || exec.IsPaused {
		t.Error("fresh execution has completion or pause flags set")
	}
}

// TestStartBadProgram verifies dimension validation.
func TestStartBadProgram(t *testing.T) {
	p := twoWorkoutProgram(0, 3)
	if _, err := Start(p, 1); err == nil {
		t.Error("expected error for zero weeks")
	}
	p = twoWorkoutProgram(12, 0)
	if _, err := Start(p, 1); err == nil {
		t.Error("expected error for zero days per week")
	}
}

// TestCompleteAdvances verifies day advancement, week rollover, and that the
// appended record captures the pre-advance position.
func TestCompleteAdvances(t *testing.T) {
	m, err := Start(twoWorkoutProgram(12, 3), 1)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	rec, err := m.CompleteCurrentWorkout(ctx, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.WeekNumber != 1 || rec.DayNumber != 1 {
		t.Errorf("record position = %d/%d, want 1/1", rec.WeekNumber, rec.DayNumber)
	}
	exec := m.Execution()
	if exec.CurrentWeek != 1 || exec.CurrentDay != 2 {
		t.Errorf("position = week %d day %d, want 1/2", exec.CurrentWeek, exec.CurrentDay)
	}

	// Two more completions roll into week 2.
	if _, err := m.CompleteCurrentWorkout(ctx, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := m.CompleteCurrentWorkout(ctx, nil); err != nil {
		t.Fatal(err)
	}
	if exec.CurrentWeek != 2 || exec.CurrentDay != 1 {
		t.Errorf("position = week %d day %d, want 2/1", exec.CurrentWeek, exec.CurrentDay)
	}
}

// TestCurrentWorkoutRotation verifies schedule resolution alternates the two
// workouts as the machine advances.
func TestCurrentWorkoutRotation(t *testing.T) {
	p := twoWorkoutProgram(2, 2)
	m, err := Start(p, 1)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	want := []string{"Workout A", "Workout B", "Workout A", "Workout B"}
	for i, name := range want {
		w, err := m.CurrentWorkout()
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if w.Name != name {
			t.Errorf("step %d workout = %q, want %q", i, w.Name, name)
		}
		if _, err := m.CompleteCurrentWorkout(ctx, nil); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
}

// TestFullRunCompletes verifies a 2-week, 3-day schedule completes after six
// advancements, emits a single program-completed event, and refuses further
// advancement.
func TestFullRunCompletes(t *testing.T) {
	sink := &capture{}
	m, err := Start(twoWorkoutProgram(2, 3), 1, WithRecorder(sink))
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		if _, err := m.CompleteCurrentWorkout(ctx, nil); err != nil {
			t.Fatalf("completion %d: %v", i, err)
		}
	}

	exec := m.Execution()
	if !exec.IsCompleted {
		t.Fatal("execution not completed after full run")
	}
	if exec.EndedAt == nil {
		t.Error("EndedAt not stamped")
	}
	if len(exec.History) != 6 {
		t.Errorf("len(History) = %d, want 6", len(exec.History))
	}
	if got := m.ProgressPercentage(); got != 1 {
		t.Errorf("ProgressPercentage = %v, want 1", got)
	}

	completed := 0
	for _, e := range sink.events {
		if e.Type == activity.TypeProgramCompleted {
			completed++
			if e.Payload["workouts"] != 6 {
				t.Errorf("payload workouts = %v, want 6", e.Payload["workouts"])
			}
		}
	}
	if completed != 1 {
		t.Errorf("program-completed events = %d, want 1", completed)
	}

	// Further advancement is rejected.
	if _, err := m.CompleteCurrentWorkout(ctx, nil); err == nil {
		t.Error("expected error completing a finished execution")
	}
	var it *models.InvalidTransitionError
	_, err = m.CurrentWorkout()
	if !errors.As(err, &it) {
		t.Errorf("CurrentWorkout error = %v, want InvalidTransitionError", err)
	}
}

// TestSkipAdvances verifies skipping consumes the slot like a completion but
// is marked skipped with the reason attached.
func TestSkipAdvances(t *testing.T) {
	m, err := Start(twoWorkoutProgram(2, 3), 1)
	if err != nil {
		t.Fatal(err)
	}
	reason := "travel"
	rec, err := m.SkipCurrentWorkout(context.Background(), &reason)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rec.IsSkipped {
		t.Error("record not marked skipped")
	}
	if rec.SkipReason == nil || *rec.SkipReason != "travel" {
		t.Errorf("skip reason = %v, want travel", rec.SkipReason)
	}
	exec := m.Execution()
	if exec.CurrentDay != 2 {
		t.Errorf("skip did not advance: day = %d", exec.CurrentDay)
	}
	if got := m.ProgressPercentage(); got != 1.0/6.0 {
		t.Errorf("ProgressPercentage = %v, want %v", got, 1.0/6.0)
	}
}

// TestCompleteProgramExplicit verifies early completion and the error on a
// second call.
func TestCompleteProgramExplicit(t *testing.T) {
	m, err := Start(twoWorkoutProgram(12, 3), 1)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if err := m.CompleteProgram(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !m.Execution().IsCompleted {
		t.Fatal("execution not completed")
	}

	err = m.CompleteProgram(ctx)
	var it *models.InvalidTransitionError
	if !errors.As(err, &it) {
		t.Errorf("second CompleteProgram error = %v, want InvalidTransitionError", err)
	}
}

// TestPauseDoesNotBlockAdvancement verifies pause is bookkeeping only.
func TestPauseDoesNotBlockAdvancement(t *testing.T) {
	m, err := Start(twoWorkoutProgram(12, 3), 1)
	if err != nil {
		t.Fatal(err)
	}
	m.PauseProgram()
	if !m.Execution().IsPaused {
		t.Fatal("not paused")
	}
	if _, err := m.CompleteCurrentWorkout(context.Background(), nil); err != nil {
		t.Errorf("advancement while paused: %v", err)
	}
	m.ResumeProgram()
	if m.Execution().IsPaused {
		t.Error("still paused after resume")
	}
}

// TestResetProgram verifies reset restores the initial position and clears
// history and flags, even on a completed execution.
func TestResetProgram(t *testing.T) {
	m, err := Start(twoWorkoutProgram(1, 2), 1)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if _, err := m.CompleteCurrentWorkout(ctx, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := m.CompleteCurrentWorkout(ctx, nil); err != nil {
		t.Fatal(err)
	}
	if !m.Execution().IsCompleted {
		t.Fatal("execution should be completed")
	}

	m.ResetProgram()
	exec := m.Execution()
	if exec.CurrentWeek != 1 || exec.CurrentDay != 1 {
		t.Errorf("position = %d/%d, want 1/1", exec.CurrentWeek, exec.CurrentDay)
	}
	if exec.IsCompleted || exec.IsPaused || exec.EndedAt != nil {
		t.Error("flags not cleared by reset")
	}
	if len(exec.History) != 0 {
		t.Errorf("history not discarded: %d records", len(exec.History))
	}
	if _, err := m.CurrentWorkout(); err != nil {
		t.Errorf("CurrentWorkout after reset: %v", err)
	}
}

// TestSessionLink verifies a completion record carries the linked session id.
func TestSessionLink(t *testing.T) {
	m, err := Start(twoWorkoutProgram(12, 3), 1)
	if err != nil {
		t.Fatal(err)
	}
	sid := uuid.New()
	rec, err := m.CompleteCurrentWorkout(context.Background(), &sid)
	if err != nil {
		t.Fatal(err)
	}
	if rec.SessionID == nil || *rec.SessionID != sid {
		t.Errorf("SessionID = %v, want %v", rec.SessionID, sid)
	}
}

// Package session manages one in-progress or completed workout attempt: it
// instantiates per-exercise result slots from a workout template, records
// sets, and rolls completed sets up into volume, personal-record, and
// completion statistics.
//
// An Engine mutates a shared in-memory graph and is single-writer by design:
// callers that let multiple actors touch the same session must serialize
// access externally (the HTTP layer holds one mutation lock per session id).
package session

import (
	"fmt"
	"time"

	"github.com/claude/ironlog/internal/models"
	"github.com/claude/ironlog/internal/progression"
	"github.com/google/uuid"
)

// History extends the calculator's history with the all-time max used for
// personal-record detection.
type History interface {
	progression.History
	AllTimeMaxWeight(exerciseName string) (float64, bool)
}

// Options configures session instantiation. A nil Profile skips set
// pre-population; a nil History disables both weight suggestions and
// personal-record detection.
type Options struct {
	Profile           *models.Profile
	History           History
	CompletedWorkouts int
	Now               func() time.Time
}

// Engine wraps a session and its workout template with the mutation and
// aggregation operations. States are {Active, Completed}; Complete is the
// only transition and is idempotent. A completed session is read-only: set
// mutations surface an InvalidTransitionError and the structural helpers
// become no-ops, so the finalized totals never drift from the sets.
type Engine struct {
	sess    *models.Session
	workout *models.WorkoutTemplate
	history History
	now     func() time.Time
}

// Start instantiates a new session from a workout template. One
// ExerciseResult is created per ExerciseTemplate, in template order. When a
// profile is supplied, each result is pre-populated with the template's
// target sets at the calculator's suggested working weight (working sets
// only, no warm-ups).
func Start(workout *models.WorkoutTemplate, userID int64, opts Options) *Engine {
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	sess := &models.Session{
		ID:        uuid.New(),
		WorkoutID: workout.ID,
		UserID:    userID,
		StartedAt: now().UTC(),
	}

	for _, t := range workout.Exercises {
		result := &models.ExerciseResult{
			ID:           uuid.New(),
			SessionID:    sess.ID,
			ExerciseID:   t.ID,
			ExerciseName: t.Name,
		}
		if opts.Profile != nil {
			weight := progression.WorkingWeight(t, *opts.Profile, opts.History, opts.CompletedWorkouts)
			for n := 1; n <= t.TargetSets; n++ {
				result.Sets = append(result.Sets, &models.SetRecord{
					ID:        uuid.New(),
					ResultID:  result.ID,
					SetNumber: n,
					Weight:    &weight,
					Reps:      t.TargetReps,
				})
			}
		}
		sess.Results = append(sess.Results, result)
	}

	return &Engine{sess: sess, workout: workout, history: opts.History, now: now}
}

// Resume rehydrates an engine around a stored session, e.g. after a reload
// from the persistence layer.
func Resume(sess *models.Session, workout *models.WorkoutTemplate, history History) *Engine {
	return &Engine{sess: sess, workout: workout, history: history, now: time.Now}
}

// Session exposes the underlying entity for persistence and serialization.
func (e *Engine) Session() *models.Session { return e.sess }

// Workout exposes the session's workout template, whose exercise order the
// engine keeps in sync with the result order.
func (e *Engine) Workout() *models.WorkoutTemplate { return e.workout }

// mutable guards set mutations on a completed session.
func (e *Engine) mutable(op string) error {
	if e.sess.IsCompleted {
		return &models.InvalidTransitionError{Entity: "Session", Op: op, Reason: "session already completed"}
	}
	return nil
}

func (e *Engine) result(exerciseIdx int, op string) (*models.ExerciseResult, error) {
	if exerciseIdx < 0 || exerciseIdx >= len(e.sess.Results) {
		return nil, &models.NotFoundError{Entity: "ExerciseResult", Op: op, Ref: fmt.Sprintf("index %d", exerciseIdx)}
	}
	return e.sess.Results[exerciseIdx], nil
}

func (e *Engine) template(r *models.ExerciseResult) *models.ExerciseTemplate {
	for _, t := range e.workout.Exercises {
		if t.ID == r.ExerciseID {
			return t
		}
	}
	return nil
}

// AddSet appends a set to the exercise at exerciseIdx. The new set inherits
// the previous set's weight and reps; with no prior set it falls back to the
// template's targets.
func (e *Engine) AddSet(exerciseIdx int) (*models.SetRecord, error) {
	if err := e.mutable("AddSet"); err != nil {
		return nil, err
	}
	r, err := e.result(exerciseIdx, "AddSet")
	if err != nil {
		return nil, err
	}

	set := &models.SetRecord{
		ID:        uuid.New(),
		ResultID:  r.ID,
		SetNumber: len(r.Sets) + 1,
	}
	if n := len(r.Sets); n > 0 {
		prev := r.Sets[n-1]
		if prev.Weight != nil {
			w := *prev.Weight
			set.Weight = &w
		}
		set.Reps = prev.Reps
	} else if t := e.template(r); t != nil {
		set.Reps = t.TargetReps
		if t.TargetWeight != nil {
			w := *t.TargetWeight
			set.Weight = &w
		}
	}

	r.Sets = append(r.Sets, set)
	return set, nil
}

// RemoveSet removes the set at setIdx and renumbers the remaining sets
// contiguously from 1. Out-of-range indices surface a NotFoundError.
func (e *Engine) RemoveSet(exerciseIdx, setIdx int) error {
	if err := e.mutable("RemoveSet"); err != nil {
		return err
	}
	r, err := e.result(exerciseIdx, "RemoveSet")
	if err != nil {
		return err
	}
	if setIdx < 0 || setIdx >= len(r.Sets) {
		return &models.NotFoundError{Entity: "SetRecord", Op: "RemoveSet", Ref: fmt.Sprintf("index %d", setIdx)}
	}

	r.Sets = append(r.Sets[:setIdx], r.Sets[setIdx+1:]...)
	for i, s := range r.Sets {
		s.SetNumber = i + 1
	}
	return nil
}

// UpdateSet records weight, reps, and optional intensity feedback on a set.
func (e *Engine) UpdateSet(exerciseIdx, setIdx int, weight *float64, reps int, rpe *float64, rir *int) error {
	if err := e.mutable("UpdateSet"); err != nil {
		return err
	}
	r, err := e.result(exerciseIdx, "UpdateSet")
	if err != nil {
		return err
	}
	if setIdx < 0 || setIdx >= len(r.Sets) {
		return &models.NotFoundError{Entity: "SetRecord", Op: "UpdateSet", Ref: fmt.Sprintf("index %d", setIdx)}
	}

	set := *r.Sets[setIdx]
	set.Weight = weight
	set.Reps = reps
	set.RPE = rpe
	set.RIR = rir
	if err := set.ValidateSet(); err != nil {
		return err
	}
	*r.Sets[setIdx] = set
	return nil
}

// CompleteSet marks a set completed, stamps its timestamp, and flags the
// owning result as a personal record when the completed weight exceeds the
// exercise's historical max. Completing an already-completed set changes
// nothing.
func (e *Engine) CompleteSet(exerciseIdx, setIdx int) error {
	if err := e.mutable("CompleteSet"); err != nil {
		return err
	}
	r, err := e.result(exerciseIdx, "CompleteSet")
	if err != nil {
		return err
	}
	if setIdx < 0 || setIdx >= len(r.Sets) {
		return &models.NotFoundError{Entity: "SetRecord", Op: "CompleteSet", Ref: fmt.Sprintf("index %d", setIdx)}
	}

	set := r.Sets[setIdx]
	if set.IsCompleted {
		return nil
	}
	set.IsCompleted = true
	ts := e.now().UTC()
	set.Timestamp = &ts

	if e.history != nil && set.Weight != nil && *set.Weight > 0 && !set.IsWarmup {
		max, ok := e.history.AllTimeMaxWeight(r.ExerciseName)
		if !ok || *set.Weight > max {
			r.IsPersonalRecord = true
		}
	}
	return nil
}

// SafeAddExerciseResult appends a result slot for a template, guarding
// against duplicate insertion: a result already referencing the template is
// returned unchanged. On a completed session it only looks up, never adds.
func (e *Engine) SafeAddExerciseResult(t *models.ExerciseTemplate) *models.ExerciseResult {
	for _, r := range e.sess.Results {
		if r.ExerciseID == t.ID {
			return r
		}
	}
	if e.sess.IsCompleted {
		return nil
	}
	r := &models.ExerciseResult{
		ID:           uuid.New(),
		SessionID:    e.sess.ID,
		ExerciseID:   t.ID,
		ExerciseName: t.Name,
	}
	e.sess.Results = append(e.sess.Results, r)
	return r
}

// SafeRemoveExerciseResult removes the result with the given id if present
// and re-derives contiguous order indices on the remaining templates.
// Removing an absent id, or removing from a completed session, changes
// nothing.
func (e *Engine) SafeRemoveExerciseResult(id uuid.UUID) {
	if e.sess.IsCompleted {
		return
	}
	idx := -1
	for i, r := range e.sess.Results {
		if r.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	e.sess.Results = append(e.sess.Results[:idx], e.sess.Results[idx+1:]...)
	e.reindexTemplates()
}

// ReorderExerciseResults moves the results at fromIndices (in their current
// order) so the first lands at toIndex, then re-derives each underlying
// template's order index so future reads of the workout's exercise order
// match the session's order. An empty selection, an out-of-range source, a
// destination outside [0, count], or a completed session leaves everything
// unchanged.
func (e *Engine) ReorderExerciseResults(fromIndices []int, toIndex int) {
	if e.sess.IsCompleted {
		return
	}
	n := len(e.sess.Results)
	if len(fromIndices) == 0 || toIndex < 0 || toIndex > n {
		return
	}
	selected := map[int]bool{}
	for _, i := range fromIndices {
		if i < 0 || i >= n || selected[i] {
			return
		}
		selected[i] = true
	}

	var moved, rest []*models.ExerciseResult
	insertAt := toIndex
	for i, r := range e.sess.Results {
		if selected[i] {
			moved = append(moved, r)
			if i < toIndex {
				insertAt--
			}
		} else {
			rest = append(rest, r)
		}
	}

	reordered := make([]*models.ExerciseResult, 0, n)
	reordered = append(reordered, rest[:insertAt]...)
	reordered = append(reordered, moved...)
	reordered = append(reordered, rest[insertAt:]...)
	e.sess.Results = reordered
	e.reindexTemplates()
}

// reindexTemplates rewrites template order indices to match the session's
// result order and re-sorts the workout's exercise list to agree.
func (e *Engine) reindexTemplates() {
	pos := map[uuid.UUID]int{}
	for i, r := range e.sess.Results {
		pos[r.ExerciseID] = i
	}

	next := len(e.sess.Results)
	var ordered []*models.ExerciseTemplate
	for _, t := range e.workout.Exercises {
		if i, ok := pos[t.ID]; ok {
			t.OrderIndex = i
		} else {
			// Templates with no result slot keep their relative order
			// after the session's exercises.
			t.OrderIndex = next
			next++
		}
		ordered = append(ordered, t)
	}
	for i := 0; i < len(ordered); i++ {
		for j := i + 1; j < len(ordered); j++ {
			if ordered[j].OrderIndex < ordered[i].OrderIndex {
				ordered[i], ordered[j] = ordered[j], ordered[i]
			}
		}
	}
	e.workout.Exercises = ordered
}

// Complete finalizes the session: stamps EndedAt, flips to Completed, and
// recomputes totals over completed sets only. Calling it again returns the
// same totals without recomputation.
func (e *Engine) Complete() {
	if e.sess.IsCompleted {
		return
	}

	var volume float64
	var sets, reps int
	for _, r := range e.sess.Results {
		for _, s := range r.Sets {
			if !s.IsCompleted {
				continue
			}
			sets++
			reps += s.Reps
			if s.Weight != nil {
				volume += *s.Weight * float64(s.Reps)
			}
		}
	}

	ended := e.now().UTC()
	e.sess.EndedAt = &ended
	e.sess.IsCompleted = true
	e.sess.TotalVolume = volume
	e.sess.TotalSets = sets
	e.sess.TotalReps = reps
}

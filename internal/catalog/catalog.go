// Package catalog builds and inspects training program templates. Programs
// are read-mostly: execution never mutates them, only explicit edit
// operations here do.
package catalog

import (
	"sort"
	"time"

	"github.com/claude/ironlog/internal/models"
	"github.com/google/uuid"
)

// ExerciseSpec describes one exercise when authoring a workout.
type ExerciseSpec struct {
	Name           string
	TargetSets     int
	TargetReps     int
	TargetWeight   *float64
	RestSeconds    *int
	IsSupersetWith *int
}

// WorkoutSpec describes one workout when authoring a program.
type WorkoutSpec struct {
	Name      string
	Exercises []ExerciseSpec
}

// NewProgram validates and assembles a program aggregate, assigning fresh
// identities and contiguous order indices.
func NewProgram(name string, weeksTotal, daysPerWeek int, workouts []WorkoutSpec) (*models.Program, error) {
	if weeksTotal < 1 {
		return nil, &models.ValidationError{Entity: "Program", Field: "weeks_total", Reason: "must be >= 1"}
	}
	if daysPerWeek < 1 {
		return nil, &models.ValidationError{Entity: "Program", Field: "days_per_week", Reason: "must be >= 1"}
	}

	p := &models.Program{
		ID:          uuid.New(),
		Name:        name,
		WeeksTotal:  weeksTotal,
		DaysPerWeek: daysPerWeek,
		CreatedAt:   time.Now().UTC(),
	}

	for _, ws := range workouts {
		w := &models.WorkoutTemplate{
			ID:        uuid.New(),
			ProgramID: p.ID,
			Name:      ws.Name,
		}
		for i, es := range ws.Exercises {
			if es.TargetSets < 1 {
				return nil, &models.ValidationError{Entity: "ExerciseTemplate", Field: "target_sets", Reason: "must be >= 1"}
			}
			if es.TargetReps < 1 {
				return nil, &models.ValidationError{Entity: "ExerciseTemplate", Field: "target_reps", Reason: "must be >= 1"}
			}
			w.Exercises = append(w.Exercises, &models.ExerciseTemplate{
				ID:             uuid.New(),
				WorkoutID:      w.ID,
				Name:           es.Name,
				OrderIndex:     i,
				TargetSets:     es.TargetSets,
				TargetReps:     es.TargetReps,
				TargetWeight:   es.TargetWeight,
				RestSeconds:    es.RestSeconds,
				IsSupersetWith: es.IsSupersetWith,
			})
		}
		p.Workouts = append(p.Workouts, w)
	}

	return p, nil
}

// TotalWorkouts is the number of scheduled slots across the whole program.
func TotalWorkouts(p *models.Program) int {
	return p.WeeksTotal * p.DaysPerWeek
}

// UniqueExerciseNames returns the deduplicated, sorted set of exercise names
// across all workouts.
func UniqueExerciseNames(p *models.Program) []string {
	seen := map[string]bool{}
	var names []string
	for _, w := range p.Workouts {
		for _, e := range w.Exercises {
			if !seen[e.Name] {
				seen[e.Name] = true
				names = append(names, e.Name)
			}
		}
	}
	sort.Strings(names)
	return names
}

// Duplicate deep-copies a program with fresh identities, suffixes the name,
// and marks the copy as user-customized.
func Duplicate(p *models.Program) *models.Program {
	dup := &models.Program{
		ID:          uuid.New(),
		Name:        p.Name + " (Copy)",
		WeeksTotal:  p.WeeksTotal,
		DaysPerWeek: p.DaysPerWeek,
		IsCustom:    true,
		CreatedAt:   time.Now().UTC(),
	}
	for _, w := range p.Workouts {
		nw := &models.WorkoutTemplate{
			ID:        uuid.New(),
			ProgramID: dup.ID,
			Name:      w.Name,
		}
		for _, e := range w.Exercises {
			ne := *e
			ne.ID = uuid.New()
			ne.WorkoutID = nw.ID
			nw.Exercises = append(nw.Exercises, &ne)
		}
		dup.Workouts = append(dup.Workouts, nw)
	}
	return dup
}

// Package progression derives prescribed loads for upcoming sessions. All
// functions are pure: same template, profile, and history always produce the
// same weight, and every returned weight is an exact multiple of the
// profile's rounding increment.
package progression

import (
	"math"
	"strings"

	"github.com/claude/ironlog/internal/models"
)

// DefaultStep is the weight added per completed cycle of an exercise.
const DefaultStep = 2.5

// DefaultIncrement is the fallback plate increment when the profile does not
// configure one.
const DefaultIncrement = 2.5

const kgToLb = 2.20462

// History supplies prior performance for an exercise: the max weight across
// the sets of the most recent ExerciseResult for that exercise name. The
// second return is false when the user has never logged the exercise with a
// non-nil weight.
type History interface {
	LastMaxWeight(exerciseName string) (float64, bool)
}

// baselines are starting loads in kg per exercise family, matched by
// case-insensitive substring on the exercise name. Unmatched names fall back
// to the squat baseline.
var baselines = []struct {
	family string
	kg     float64
}{
	{"squat", 40},
	{"bench", 30},
	{"deadlift", 60},
	{"press", 25},
	{"row", 35},
}

// Round rounds w to the nearest multiple of increment. A non-positive
// increment falls back to DefaultIncrement.
func Round(w, increment float64) float64 {
	if increment <= 0 {
		increment = DefaultIncrement
	}
	return math.Round(w/increment) * increment
}

// Baseline returns the starting weight for an exercise name in the profile's
// display unit, before rounding.
func Baseline(exerciseName string, unit models.Unit) float64 {
	name := strings.ToLower(exerciseName)
	kg := baselines[0].kg
	for _, b := range baselines {
		if strings.Contains(name, b.family) {
			kg = b.kg
			break
		}
	}
	if unit == models.UnitImperial {
		return kg * kgToLb
	}
	return kg
}

// Step returns the per-cycle progression step in the profile's display unit.
func Step(unit models.Unit) float64 {
	if unit == models.UnitImperial {
		return 5 // 2×2.5 lb plates, the smallest common barbell jump
	}
	return DefaultStep
}

// WorkingWeight derives the load to prescribe for the next occurrence of an
// exercise:
//
//  1. an explicit template target wins, rounded to the increment;
//  2. otherwise the most recent logged max for this exercise plus one
//     progression step;
//  3. otherwise a per-family baseline plus one step per workout already
//     completed in the active execution.
func WorkingWeight(t *models.ExerciseTemplate, profile models.Profile, hist History, completedWorkouts int) float64 {
	inc := profile.Increment
	if inc <= 0 {
		inc = DefaultIncrement
	}

	if t.TargetWeight != nil {
		return Round(*t.TargetWeight, inc)
	}

	step := Step(profile.Unit)
	if hist != nil {
		if last, ok := hist.LastMaxWeight(t.Name); ok {
			return Round(last+step, inc)
		}
	}

	start := Baseline(t.Name, profile.Unit) + float64(completedWorkouts)*step
	return Round(start, inc)
}

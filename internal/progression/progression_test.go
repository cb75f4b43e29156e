package progression

import (
	"math"
	"testing"

	"github.com/claude/ironlog/internal/models"
)

type stubHistory map[string]float64

func (h stubHistory) LastMaxWeight(name string) (float64, bool) {
	w, ok := h[name]
	return w, ok
}

func floatPtr(f float64) *float64 { return &f }

// TestRound verifies rounding to the nearest increment multiple.
func TestRound(t *testing.T) {
	cases := []struct {
		w, inc, want float64
	}{
		{61.3, 2.5, 62.5},
		{61.2, 2.5, 60.0},
		{63.74, 2.5, 62.5},
		{60.0, 2.5, 60.0},
		{58.7, 2.5, 57.5},
		{102.4, 5, 100},
		{102.6, 5, 105},
		{0, 2.5, 0},
	}
	for _, c := range cases {
		if got := Round(c.w, c.inc); got != c.want {
			t.Errorf("Round(%v, %v) = %v, want %v", c.w, c.inc, got, c.want)
		}
	}
}

// TestRoundBadIncrement verifies that a non-positive increment falls back to
// the default instead of dividing by zero.
func TestRoundBadIncrement(t *testing.T) {
	if got := Round(61.3, 0); got != 62.5 {
		t.Errorf("Round with zero increment = %v, want 62.5", got)
	}
	if got := Round(61.3, -1); got != 62.5 {
		t.Errorf("Round with negative increment = %v, want 62.5", got)
	}
}

// TestBaselineFamilies verifies the per-family starting loads and the
// substring matching on exercise names.
func TestBaselineFamilies(t *testing.T) {
	cases := []struct {
		name string
		want float64
	}{
		{"Squat", 40},
		{"Back Squat", 40},
		{"Bench Press", 30},
		{"Deadlift", 60},
		{"Romanian Deadlift", 60},
		{"Overhead Press", 25},
		{"Barbell Row", 35},
		{"Bicep Curl", 40}, // unmatched falls back to squat baseline
	}
	for _, c := range cases {
		if got := Baseline(c.name, models.UnitMetric); got != c.want {
			t.Errorf("Baseline(%q, metric) = %v, want %v", c.name, got, c.want)
		}
	}
}

// TestBaselineImperial verifies kg baselines are converted to pounds.
func TestBaselineImperial(t *testing.T) {
	got := Baseline("Bench Press", models.UnitImperial)
	want := 30 * 2.20462
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("Baseline(bench, imperial) = %v, want %v", got, want)
	}
}

// TestStep verifies per-unit progression steps.
func TestStep(t *testing.T) {
	if got := Step(models.UnitMetric); got != 2.5 {
		t.Errorf("Step(metric) = %v, want 2.5", got)
	}
	if got := Step(models.UnitImperial); got != 5 {
		t.Errorf("Step(imperial) = %v, want 5", got)
	}
}

// TestWorkingWeightExplicitTarget verifies that a template target weight wins
// over history, rounded to the increment.
func TestWorkingWeightExplicitTarget(t *testing.T) {
	tmpl := &models.ExerciseTemplate{Name: "Squat", TargetWeight: floatPtr(61.3)}
	profile := models.Profile{Unit: models.UnitMetric, Increment: 2.5}
	hist := stubHistory{"Squat": 100}

	if got := WorkingWeight(tmpl, profile, hist, 0); got != 62.5 {
		t.Errorf("WorkingWeight = %v, want 62.5", got)
	}
}

// TestWorkingWeightFromHistory verifies last logged max plus one step.
func TestWorkingWeightFromHistory(t *testing.T) {
	tmpl := &models.ExerciseTemplate{Name: "Bench Press"}
	profile := models.Profile{Unit: models.UnitMetric, Increment: 2.5}
	hist := stubHistory{"Bench Press": 60}

	if got := WorkingWeight(tmpl, profile, hist, 5); got != 62.5 {
		t.Errorf("WorkingWeight = %v, want 62.5", got)
	}
}

// TestWorkingWeightBaselineProgression verifies the baseline path ramps with
// completed workouts when the exercise has never been logged.
func TestWorkingWeightBaselineProgression(t *testing.T) {
	tmpl := &models.ExerciseTemplate{Name: "Squat"}
	profile := models.Profile{Unit: models.UnitMetric, Increment: 2.5}

	// 40 baseline + 4 completed workouts * 2.5 step
	if got := WorkingWeight(tmpl, profile, stubHistory{}, 4); got != 50 {
		t.Errorf("WorkingWeight = %v, want 50", got)
	}
	// nil history behaves like empty history
	if got := WorkingWeight(tmpl, profile, nil, 0); got != 40 {
		t.Errorf("WorkingWeight with nil history = %v, want 40", got)
	}
}

// TestWorkingWeightImperialRounding verifies the converted baseline lands on
// an increment multiple in pounds.
func TestWorkingWeightImperialRounding(t *testing.T) {
	tmpl := &models.ExerciseTemplate{Name: "Bench Press"}
	profile := models.Profile{Unit: models.UnitImperial, Increment: 5}

	// 30 kg -> 66.14 lb, rounded to 65
	if got := WorkingWeight(tmpl, profile, nil, 0); got != 65 {
		t.Errorf("WorkingWeight = %v, want 65", got)
	}
}

// TestWorkingWeightDeterministic verifies identical inputs always produce the
// same output, and that the output is a multiple of the increment.
func TestWorkingWeightDeterministic(t *testing.T) {
	tmpl := &models.ExerciseTemplate{Name: "Deadlift"}
	profile := models.Profile{Unit: models.UnitMetric, Increment: 2.5}
	hist := stubHistory{"Deadlift": 97.5}

	first := WorkingWeight(tmpl, profile, hist, 3)
	for i := 0; i < 10; i++ {
		if got := WorkingWeight(tmpl, profile, hist, 3); got != first {
			t.Fatalf("WorkingWeight not deterministic: %v vs %v", got, first)
		}
	}
	if rem := math.Mod(first, 2.5); rem != 0 {
		t.Errorf("WorkingWeight %v is not a multiple of 2.5", first)
	}
}

// TestEstimateOneRM verifies the Epley estimate and its edge cases.
func TestEstimateOneRM(t *testing.T) {
	got := EstimateOneRM(100, 5)
	want := 100 * (1 + 5.0/30)
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("EstimateOneRM(100, 5) = %v, want %v", got, want)
	}
	if got := EstimateOneRM(120, 1); got != 120 {
		t.Errorf("EstimateOneRM(120, 1) = %v, want 120", got)
	}
	if got := EstimateOneRM(0, 5); got != 0 {
		t.Errorf("EstimateOneRM(0, 5) = %v, want 0", got)
	}
	if got := EstimateOneRM(100, 0); got != 0 {
		t.Errorf("EstimateOneRM(100, 0) = %v, want 0", got)
	}
}

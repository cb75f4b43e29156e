package session

import (
	"time"

	"github.com/claude/ironlog/internal/models"
	"github.com/claude/ironlog/internal/progression"
)

// CompletionPercentage is the ratio of completed sets to the sum of template
// target sets across all exercises, in [0,1]. Zero targets yield 0.
func (e *Engine) CompletionPercentage() float64 {
	var target, done int
	for _, t := range e.workout.Exercises {
		target += t.TargetSets
	}
	for _, r := range e.sess.Results {
		for _, s := range r.Sets {
			if s.IsCompleted {
				done++
			}
		}
	}
	if target == 0 {
		return 0
	}
	return float64(done) / float64(target)
}

// BestSet returns the completed set of a result that maximizes the Epley
// estimate, or nil when no completed set carries a weight.
func BestSet(r *models.ExerciseResult) *models.SetRecord {
	var best *models.SetRecord
	var bestRM float64
	for _, s := range r.Sets {
		if !s.IsCompleted || s.Weight == nil {
			continue
		}
		rm := progression.EstimateOneRM(*s.Weight, s.Reps)
		if best == nil || rm > bestRM {
			best, bestRM = s, rm
		}
	}
	return best
}

// EstimatedOneRM is the Epley estimate over the best completed set of a
// result, 0 when nothing qualifies.
func EstimatedOneRM(r *models.ExerciseResult) float64 {
	best := BestSet(r)
	if best == nil {
		return 0
	}
	return progression.EstimateOneRM(*best.Weight, best.Reps)
}

// AverageRPE is the mean of RPE values recorded on completed sets, nil when
// none were recorded.
func (e *Engine) AverageRPE() *float64 {
	var sum float64
	var count int
	for _, r := range e.sess.Results {
		for _, s := range r.Sets {
			if s.IsCompleted && s.RPE != nil {
				sum += *s.RPE
				count++
			}
		}
	}
	if count == 0 {
		return nil
	}
	avg := sum / float64(count)
	return &avg
}

// Duration is the elapsed time of a finished session, 0 while still active.
func (e *Engine) Duration() time.Duration {
	if e.sess.EndedAt == nil {
		return 0
	}
	return e.sess.EndedAt.Sub(e.sess.StartedAt)
}

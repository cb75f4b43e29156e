package storage

import (
	"context"
	"fmt"
	"time"
)

// PerformanceHistory is an in-memory snapshot of a user's prior performance
// for a set of exercises. It satisfies the session engine's History
// interface, keeping the engine itself free of storage calls.
type PerformanceHistory struct {
	last map[string]float64
	all  map[string]float64
}

// LastMaxWeight is the max weight across the sets of the most recent result
// for the exercise.
func (h *PerformanceHistory) LastMaxWeight(exerciseName string) (float64, bool) {
	w, ok := h.last[exerciseName]
	return w, ok
}

// AllTimeMaxWeight is the heaviest completed weight ever logged for the
// exercise.
func (h *PerformanceHistory) AllTimeMaxWeight(exerciseName string) (float64, bool) {
	w, ok := h.all[exerciseName]
	return w, ok
}

// LoadHistory snapshots prior performance for the named exercises. Exercises
// the user has never logged are simply absent from the snapshot.
func (db *DB) LoadHistory(ctx context.Context, userID int64, exerciseNames []string) (*PerformanceHistory, error) {
	h := &PerformanceHistory{
		last: map[string]float64{},
		all:  map[string]float64{},
	}
	if len(exerciseNames) == 0 {
		return h, nil
	}

	// Max weight of the most recent result per exercise that carries any
	// non-null weight.
	rows, err := db.Pool.Query(ctx,
		`SELECT DISTINCT ON (r.exercise_name) r.exercise_name, agg.max_weight
		 FROM exercise_results r
		 JOIN sessions s ON s.id = r.session_id
		 JOIN LATERAL (
		     SELECT MAX(sr.weight) AS max_weight
		     FROM set_records sr WHERE sr.result_id = r.id AND sr.weight IS NOT NULL
		 ) agg ON agg.max_weight IS NOT NULL
		 WHERE s.user_id = $1 AND r.exercise_name = ANY($2)
		 ORDER BY r.exercise_name, s.started_at DESC`,
		userID, exerciseNames)
	if err != nil {
		return nil, fmt.Errorf("querying last performance: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		var weight float64
		if err := rows.Scan(&name, &weight); err != nil {
			return nil, fmt.Errorf("scanning last performance: %w", err)
		}
		h.last[name] = weight
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// All-time max over completed, weighted sets.
	allRows, err := db.Pool.Query(ctx,
		`SELECT r.exercise_name, MAX(sr.weight)
		 FROM exercise_results r
		 JOIN sessions s ON s.id = r.session_id
		 JOIN set_records sr ON sr.result_id = r.id
		 WHERE s.user_id = $1 AND r.exercise_name = ANY($2)
		   AND sr.is_completed AND sr.weight IS NOT NULL
		 GROUP BY r.exercise_name`,
		userID, exerciseNames)
	if err != nil {
		return nil, fmt.Errorf("querying all-time max: %w", err)
	}
	defer allRows.Close()

	for allRows.Next() {
		var name string
		var weight float64
		if err := allRows.Scan(&name, &weight); err != nil {
			return nil, fmt.Errorf("scanning all-time max: %w", err)
		}
		h.all[name] = weight
	}
	return h, allRows.Err()
}

// PersonalRecord is a user's best logged set for one exercise.
type PersonalRecord struct {
	ExerciseName string    `json:"exercise_name"`
	Weight       float64   `json:"weight"`
	Reps         int       `json:"reps"`
	AchievedAt   time.Time `json:"achieved_at"`
}

// PersonalRecords returns each exercise's heaviest completed set, heaviest
// first.
func (db *DB) PersonalRecords(ctx context.Context, userID int64) ([]PersonalRecord, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT DISTINCT ON (r.exercise_name) r.exercise_name, sr.weight, sr.reps, sr.completed_at
		 FROM exercise_results r
		 JOIN sessions s ON s.id = r.session_id
		 JOIN set_records sr ON sr.result_id = r.id
		 WHERE s.user_id = $1 AND sr.is_completed AND sr.weight IS NOT NULL AND sr.completed_at IS NOT NULL
		 ORDER BY r.exercise_name, sr.weight DESC, sr.completed_at ASC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("querying personal records: %w", err)
	}
	defer rows.Close()

	var result []PersonalRecord
	for rows.Next() {
		var pr PersonalRecord
		if err := rows.Scan(&pr.ExerciseName, &pr.Weight, &pr.Reps, &pr.AchievedAt); err != nil {
			return nil, fmt.Errorf("scanning personal record: %w", err)
		}
		result = append(result, pr)
	}
	return result, rows.Err()
}

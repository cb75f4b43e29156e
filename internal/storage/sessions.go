package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/claude/ironlog/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// SaveSession upserts a session aggregate (session, results, sets) in one
// transaction. Result and set rows are replaced wholesale; the aggregate is
// small (tens of rows) and this keeps ordering columns trivially consistent.
func (db *DB) SaveSession(ctx context.Context, s *models.Session) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO sessions (id, workout_id, user_id, started_at, ended_at, is_completed, total_volume, total_sets, total_reps)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		 ON CONFLICT (id) DO UPDATE SET
		   ended_at = EXCLUDED.ended_at, is_completed = EXCLUDED.is_completed,
		   total_volume = EXCLUDED.total_volume, total_sets = EXCLUDED.total_sets, total_reps = EXCLUDED.total_reps`,
		s.ID, s.WorkoutID, s.UserID, s.StartedAt, s.EndedAt,
		s.IsCompleted, s.TotalVolume, s.TotalSets, s.TotalReps)
	if err != nil {
		return fmt.Errorf("upserting session: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`DELETE FROM exercise_results WHERE session_id = $1`, s.ID); err != nil {
		return fmt.Errorf("clearing session results: %w", err)
	}

	for pos, r := range s.Results {
		_, err = tx.Exec(ctx,
			`INSERT INTO exercise_results (id, session_id, exercise_id, exercise_name, is_personal_record, notes, position)
			 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			r.ID, s.ID, r.ExerciseID, r.ExerciseName, r.IsPersonalRecord, r.Notes, pos)
		if err != nil {
			return fmt.Errorf("inserting exercise result: %w", err)
		}
		for _, set := range r.Sets {
			_, err = tx.Exec(ctx,
				`INSERT INTO set_records (id, result_id, set_number, weight, reps, is_warmup, is_completed, rpe, rir, completed_at)
				 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
				set.ID, r.ID, set.SetNumber, set.Weight, set.Reps,
				set.IsWarmup, set.IsCompleted, set.RPE, set.RIR, set.Timestamp)
			if err != nil {
				return fmt.Errorf("inserting set record: %w", err)
			}
		}
	}

	return tx.Commit(ctx)
}

// GetSession loads a session with results and sets in stored order.
func (db *DB) GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	s := &models.Session{}
	err := db.Pool.QueryRow(ctx,
		`SELECT id, workout_id, user_id, started_at, ended_at, is_completed, total_volume, total_sets, total_reps
		 FROM sessions WHERE id = $1`, id).
		Scan(&s.ID, &s.WorkoutID, &s.UserID, &s.StartedAt, &s.EndedAt,
			&s.IsCompleted, &s.TotalVolume, &s.TotalSets, &s.TotalReps)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &models.NotFoundError{Entity: "Session", Op: "GetSession", Ref: id.String()}
	}
	if err != nil {
		return nil, fmt.Errorf("querying session: %w", err)
	}

	rRows, err := db.Pool.Query(ctx,
		`SELECT id, session_id, exercise_id, exercise_name, is_personal_record, notes
		 FROM exercise_results WHERE session_id = $1 ORDER BY position ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("querying exercise results: %w", err)
	}
	defer rRows.Close()

	for rRows.Next() {
		r := &models.ExerciseResult{}
		if err := rRows.Scan(&r.ID, &r.SessionID, &r.ExerciseID, &r.ExerciseName, &r.IsPersonalRecord, &r.Notes); err != nil {
			return nil, fmt.Errorf("scanning exercise result: %w", err)
		}
		s.Results = append(s.Results, r)
	}
	if err := rRows.Err(); err != nil {
		return nil, err
	}

	for _, r := range s.Results {
		sRows, err := db.Pool.Query(ctx,
			`SELECT id, result_id, set_number, weight, reps, is_warmup, is_completed, rpe, rir, completed_at
			 FROM set_records WHERE result_id = $1 ORDER BY set_number ASC`, r.ID)
		if err != nil {
			return nil, fmt.Errorf("querying set records: %w", err)
		}
		for sRows.Next() {
			set := &models.SetRecord{}
			if err := sRows.Scan(&set.ID, &set.ResultID, &set.SetNumber, &set.Weight, &set.Reps,
				&set.IsWarmup, &set.IsCompleted, &set.RPE, &set.RIR, &set.Timestamp); err != nil {
				sRows.Close()
				return nil, fmt.Errorf("scanning set record: %w", err)
			}
			r.Sets = append(r.Sets, set)
		}
		err = sRows.Err()
		sRows.Close()
		if err != nil {
			return nil, err
		}
	}
	return s, nil
}

// QuerySessions returns a user's sessions started in a time range, newest
// first, without their result aggregates.
func (db *DB) QuerySessions(ctx context.Context, userID int64, start, end time.Time) ([]*models.Session, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, workout_id, user_id, started_at, ended_at, is_completed, total_volume, total_sets, total_reps
		 FROM sessions
		 WHERE user_id = $1 AND started_at >= $2 AND started_at < $3
		 ORDER BY started_at DESC`, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var result []*models.Session
	for rows.Next() {
		s := &models.Session{}
		if err := rows.Scan(&s.ID, &s.WorkoutID, &s.UserID, &s.StartedAt, &s.EndedAt,
			&s.IsCompleted, &s.TotalVolume, &s.TotalSets, &s.TotalReps); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

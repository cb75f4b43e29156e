package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/claude/ironlog/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// InsertExecution stores a freshly started execution.
func (db *DB) InsertExecution(ctx context.Context, e *models.ProgramExecution) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO program_executions
		 (id, program_id, user_id, current_week, current_day, is_completed, is_paused, started_at, ended_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		e.ID, e.ProgramID, e.UserID, e.CurrentWeek, e.CurrentDay,
		e.IsCompleted, e.IsPaused, e.StartedAt, e.EndedAt)
	if err != nil {
		return fmt.Errorf("inserting execution: %w", err)
	}
	return nil
}

// SaveExecution writes the execution counters/flags and replaces its history
// in one transaction, so a transition and its derived records land
// atomically.
func (db *DB) SaveExecution(ctx context.Context, e *models.ProgramExecution) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning tx: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE program_executions
		 SET current_week = $2, current_day = $3, is_completed = $4, is_paused = $5, ended_at = $6
		 WHERE id = $1`,
		e.ID, e.CurrentWeek, e.CurrentDay, e.IsCompleted, e.IsPaused, e.EndedAt)
	if err != nil {
		return fmt.Errorf("updating execution: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &models.NotFoundError{Entity: "ProgramExecution", Op: "SaveExecution", Ref: e.ID.String()}
	}

	if _, err := tx.Exec(ctx,
		`DELETE FROM completed_workouts WHERE execution_id = $1`, e.ID); err != nil {
		return fmt.Errorf("clearing execution history: %w", err)
	}
	for pos, rec := range e.History {
		_, err = tx.Exec(ctx,
			`INSERT INTO completed_workouts
			 (id, execution_id, workout_id, week_number, day_number, completed_at, is_skipped, skip_reason, session_id, notes, position)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
			rec.ID, e.ID, rec.WorkoutID, rec.WeekNumber, rec.DayNumber,
			rec.CompletedAt, rec.IsSkipped, rec.SkipReason, rec.SessionID, rec.Notes, pos)
		if err != nil {
			return fmt.Errorf("inserting completed workout: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// GetExecution loads an execution with its history in recorded order.
func (db *DB) GetExecution(ctx context.Context, id uuid.UUID) (*models.ProgramExecution, error) {
	e := &models.ProgramExecution{}
	err := db.Pool.QueryRow(ctx,
		`SELECT id, program_id, user_id, current_week, current_day, is_completed, is_paused, started_at, ended_at
		 FROM program_executions WHERE id = $1`, id).
		Scan(&e.ID, &e.ProgramID, &e.UserID, &e.CurrentWeek, &e.CurrentDay,
			&e.IsCompleted, &e.IsPaused, &e.StartedAt, &e.EndedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &models.NotFoundError{Entity: "ProgramExecution", Op: "GetExecution", Ref: id.String()}
	}
	if err != nil {
		return nil, fmt.Errorf("querying execution: %w", err)
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT id, execution_id, workout_id, week_number, day_number, completed_at, is_skipped, skip_reason, session_id, notes
		 FROM completed_workouts WHERE execution_id = $1 ORDER BY position ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("querying execution history: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		rec := &models.CompletedWorkoutRecord{}
		if err := rows.Scan(&rec.ID, &rec.ExecutionID, &rec.WorkoutID, &rec.WeekNumber, &rec.DayNumber,
			&rec.CompletedAt, &rec.IsSkipped, &rec.SkipReason, &rec.SessionID, &rec.Notes); err != nil {
			return nil, fmt.Errorf("scanning completed workout: %w", err)
		}
		e.History = append(e.History, rec)
	}
	return e, rows.Err()
}

// ActiveExecution returns the user's most recent unfinished execution, or a
// NotFoundError when none is active.
func (db *DB) ActiveExecution(ctx context.Context, userID int64) (*models.ProgramExecution, error) {
	var id uuid.UUID
	err := db.Pool.QueryRow(ctx,
		`SELECT id FROM program_executions
		 WHERE user_id = $1 AND NOT is_completed
		 ORDER BY started_at DESC LIMIT 1`, userID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &models.NotFoundError{Entity: "ProgramExecution", Op: "ActiveExecution", Ref: fmt.Sprintf("user %d", userID)}
	}
	if err != nil {
		return nil, fmt.Errorf("querying active execution: %w", err)
	}
	return db.GetExecution(ctx, id)
}

package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/claude/ironlog/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// SaveProgram inserts a program aggregate (program, workouts, exercises) in
// one transaction. Workout and exercise order is preserved through position
// and order_index columns.
func (db *DB) SaveProgram(ctx context.Context, p *models.Program) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO programs (id, name, weeks_total, days_per_week, is_custom, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		p.ID, p.Name, p.WeeksTotal, p.DaysPerWeek, p.IsCustom, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting program: %w", err)
	}

	for pos, w := range p.Workouts {
		_, err = tx.Exec(ctx,
			`INSERT INTO workout_templates (id, program_id, name, position) VALUES ($1,$2,$3,$4)`,
			w.ID, p.ID, w.Name, pos)
		if err != nil {
			return fmt.Errorf("inserting workout template: %w", err)
		}
		for _, e := range w.Exercises {
			_, err = tx.Exec(ctx,
				`INSERT INTO exercise_templates
				 (id, workout_id, name, order_index, target_sets, target_reps, target_weight, rest_seconds, is_superset_with)
				 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
				e.ID, w.ID, e.Name, e.OrderIndex, e.TargetSets, e.TargetReps,
				e.TargetWeight, e.RestSeconds, e.IsSupersetWith)
			if err != nil {
				return fmt.Errorf("inserting exercise template: %w", err)
			}
		}
	}

	return tx.Commit(ctx)
}

// ListPrograms returns all programs without their workout aggregates.
func (db *DB) ListPrograms(ctx context.Context) ([]*models.Program, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, name, weeks_total, days_per_week, is_custom, created_at
		 FROM programs ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying programs: %w", err)
	}
	defer rows.Close()

	var result []*models.Program
	for rows.Next() {
		p := &models.Program{}
		if err := rows.Scan(&p.ID, &p.Name, &p.WeeksTotal, &p.DaysPerWeek, &p.IsCustom, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning program: %w", err)
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

// GetProgram loads a full program aggregate with workouts and exercises in
// stored order.
func (db *DB) GetProgram(ctx context.Context, id uuid.UUID) (*models.Program, error) {
	p := &models.Program{}
	err := db.Pool.QueryRow(ctx,
		`SELECT id, name, weeks_total, days_per_week, is_custom, created_at
		 FROM programs WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.WeeksTotal, &p.DaysPerWeek, &p.IsCustom, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &models.NotFoundError{Entity: "Program", Op: "GetProgram", Ref: id.String()}
	}
	if err != nil {
		return nil, fmt.Errorf("querying program: %w", err)
	}

	wRows, err := db.Pool.Query(ctx,
		`SELECT id, program_id, name FROM workout_templates
		 WHERE program_id = $1 ORDER BY position ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("querying workout templates: %w", err)
	}
	defer wRows.Close()

	for wRows.Next() {
		w := &models.WorkoutTemplate{}
		if err := wRows.Scan(&w.ID, &w.ProgramID, &w.Name); err != nil {
			return nil, fmt.Errorf("scanning workout template: %w", err)
		}
		p.Workouts = append(p.Workouts, w)
	}
	if err := wRows.Err(); err != nil {
		return nil, err
	}

	for _, w := range p.Workouts {
		w.Exercises, err = db.getExerciseTemplates(ctx, w.ID)
		if err != nil {
			return nil, err
		}
	}
	return p, nil
}

// GetWorkoutTemplate loads one workout template with its exercises.
func (db *DB) GetWorkoutTemplate(ctx context.Context, id uuid.UUID) (*models.WorkoutTemplate, error) {
	w := &models.WorkoutTemplate{}
	err := db.Pool.QueryRow(ctx,
		`SELECT id, program_id, name FROM workout_templates WHERE id = $1`, id).
		Scan(&w.ID, &w.ProgramID, &w.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &models.NotFoundError{Entity: "WorkoutTemplate", Op: "GetWorkoutTemplate", Ref: id.String()}
	}
	if err != nil {
		return nil, fmt.Errorf("querying workout template: %w", err)
	}
	w.Exercises, err = db.getExerciseTemplates(ctx, id)
	return w, err
}

func (db *DB) getExerciseTemplates(ctx context.Context, workoutID uuid.UUID) ([]*models.ExerciseTemplate, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, workout_id, name, order_index, target_sets, target_reps, target_weight, rest_seconds, is_superset_with
		 FROM exercise_templates WHERE workout_id = $1 ORDER BY order_index ASC`, workoutID)
	if err != nil {
		return nil, fmt.Errorf("querying exercise templates: %w", err)
	}
	defer rows.Close()

	var result []*models.ExerciseTemplate
	for rows.Next() {
		e := &models.ExerciseTemplate{}
		if err := rows.Scan(&e.ID, &e.WorkoutID, &e.Name, &e.OrderIndex, &e.TargetSets,
			&e.TargetReps, &e.TargetWeight, &e.RestSeconds, &e.IsSupersetWith); err != nil {
			return nil, fmt.Errorf("scanning exercise template: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// UpdateExerciseOrder rewrites the order indices of a workout's exercise
// templates after a session reorder, inside one transaction.
func (db *DB) UpdateExerciseOrder(ctx context.Context, exercises []*models.ExerciseTemplate) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, e := range exercises {
		_, err = tx.Exec(ctx,
			`UPDATE exercise_templates SET order_index = $2 WHERE id = $1`,
			e.ID, e.OrderIndex)
		if err != nil {
			return fmt.Errorf("updating exercise order: %w", err)
		}
	}
	return tx.Commit(ctx)
}

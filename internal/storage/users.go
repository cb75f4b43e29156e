package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/claude/ironlog/internal/models"
	"github.com/jackc/pgx/v5"
)

// GetOrCreateUser finds or creates a user by login name. Returns the user
// ID. Updates last_seen and display_name on each call.
func (db *DB) GetOrCreateUser(ctx context.Context, login, displayName string) (int64, error) {
	var id int64
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO users (login, display_name)
		VALUES ($1, $2)
		ON CONFLICT (login) DO UPDATE
			SET last_seen = NOW(), display_name = COALESCE(NULLIF($2, ''), users.display_name)
		RETURNING id
	`, login, displayName).Scan(&id)
	return id, err
}

// GetProfile loads the numeric inputs the working-weight calculator needs.
func (db *DB) GetProfile(ctx context.Context, userID int64) (*models.Profile, error) {
	p := &models.Profile{UserID: userID}
	err := db.Pool.QueryRow(ctx,
		`SELECT body_weight, unit, increment FROM users WHERE id = $1`,
		userID).Scan(&p.BodyWeight, &p.Unit, &p.Increment)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &models.NotFoundError{Entity: "User", Op: "GetProfile", Ref: fmt.Sprintf("id %d", userID)}
	}
	if err != nil {
		return nil, fmt.Errorf("querying profile: %w", err)
	}
	return p, nil
}

// UpdateProfile stores body weight, unit system, and rounding increment.
func (db *DB) UpdateProfile(ctx context.Context, p *models.Profile) error {
	tag, err := db.Pool.Exec(ctx,
		`UPDATE users SET body_weight = $2, unit = $3, increment = $4 WHERE id = $1`,
		p.UserID, p.BodyWeight, p.Unit, p.Increment)
	if err != nil {
		return fmt.Errorf("updating profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &models.NotFoundError{Entity: "User", Op: "UpdateProfile", Ref: fmt.Sprintf("id %d", p.UserID)}
	}
	return nil
}

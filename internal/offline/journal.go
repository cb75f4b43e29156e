// Package offline journals training sessions logged away from the server in
// a local SQLite database and syncs completed ones to the server's import
// endpoint. Uploaded sessions are remembered so re-running a sync never
// duplicates data.
package offline

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/claude/ironlog/internal/models"
	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

// Journal is the local SQLite store of offline sessions and their upload
// state.
type Journal struct {
	db *sql.DB
}

// Open opens (or creates) the journal database at dir/journal.db.
func Open(dir string) (*Journal, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating journal dir %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, "journal.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening journal db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS sessions (
		id          TEXT PRIMARY KEY,
		body        TEXT NOT NULL,
		logged_at   TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		uploaded_at TIMESTAMP
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating sessions table: %w", err)
	}

	return &Journal{db: db}, nil
}

// Record stores or replaces a session in the journal. An already-uploaded
// session keeps its upload mark only if the body is unchanged.
func (j *Journal) Record(sess *models.Session) error {
	body, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshaling session: %w", err)
	}
	_, err = j.db.Exec(`
		INSERT INTO sessions (id, body) VALUES (?, ?)
		ON CONFLICT (id) DO UPDATE SET
			body = excluded.body,
			uploaded_at = CASE WHEN sessions.body = excluded.body THEN sessions.uploaded_at ELSE NULL END`,
		sess.ID.String(), string(body))
	if err != nil {
		return fmt.Errorf("recording session: %w", err)
	}
	return nil
}

// Pending returns journaled sessions not yet uploaded, oldest first.
func (j *Journal) Pending() ([]*models.Session, error) {
	rows, err := j.db.Query(
		`SELECT body FROM sessions WHERE uploaded_at IS NULL ORDER BY logged_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying pending sessions: %w", err)
	}
	defer rows.Close()

	var result []*models.Session
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scanning pending session: %w", err)
		}
		sess := &models.Session{}
		if err := json.Unmarshal([]byte(body), sess); err != nil {
			return nil, fmt.Errorf("decoding journaled session: %w", err)
		}
		result = append(result, sess)
	}
	return result, rows.Err()
}

// MarkUploaded records that a session reached the server.
func (j *Journal) MarkUploaded(id uuid.UUID, at time.Time) error {
	_, err := j.db.Exec(
		`UPDATE sessions SET uploaded_at = ? WHERE id = ?`,
		at.UTC(), id.String())
	return err
}

// Close closes the journal database.
func (j *Journal) Close() error {
	return j.db.Close()
}

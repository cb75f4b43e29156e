package storage

import (
	"os"
	"strings"
	"testing"
)

// TestInitMigrationSeedsDefaultUser verifies the schema migration creates
// the single-tenant default user, so profile and session flows work against
// a fresh database before any other write happens.
func TestInitMigrationSeedsDefaultUser(t *testing.T) {
	sql, err := os.ReadFile("../../migrations/0001_init.up.sql")
	if err != nil {
		t.Fatalf("reading migration: %v", err)
	}
	up := string(sql)

	if !strings.Contains(up, "INSERT INTO users (id, login, display_name) VALUES (1, 'local'") {
		t.Error("migration does not seed the default user (id 1)")
	}
	// The sequence must be advanced past the explicit id, or the next
	// GetOrCreateUser insert collides with it.
	if !strings.Contains(up, "setval('users_id_seq', 1, true)") {
		t.Error("migration does not advance users_id_seq past the seeded id")
	}
}

package mcp

import (
	"context"
	"time"

	"github.com/claude/ironlog/internal/models"
	"github.com/claude/ironlog/internal/storage"
	"github.com/google/uuid"
)

// DataSource abstracts the data layer for MCP tools, satisfied by
// *storage.DB.
type DataSource interface {
	ActiveExecution(ctx context.Context, userID int64) (*models.ProgramExecution, error)
	GetProgram(ctx context.Context, id uuid.UUID) (*models.Program, error)
	GetProfile(ctx context.Context, userID int64) (*models.Profile, error)
	PersonalRecords(ctx context.Context, userID int64) ([]storage.PersonalRecord, error)
	QuerySessions(ctx context.Context, userID int64, start, end time.Time) ([]*models.Session, error)
	LoadHistory(ctx context.Context, userID int64, exerciseNames []string) (*storage.PerformanceHistory, error)
}

// Compile-time check: *storage.DB satisfies DataSource.
var _ DataSource = (*storage.DB)(nil)

package mcp

import (
	"context"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type contextKey int

const userIDKey contextKey = iota

// UserIDFromContext extracts the user ID injected by the transport layer.
func UserIDFromContext(ctx context.Context) int64 {
	if id, ok := ctx.Value(userIDKey).(int64); ok {
		return id
	}
	return 1
}

// WithUserID returns a context with the given user ID.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("ironlog", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("ironlog strength-training server. Query the current workout, program progress, personal records, session history, and working-weight suggestions. All data is scoped to the authenticated user."),
	)

	h := &handlers{ds: ds, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolGetCurrentWorkout, Handler: h.getCurrentWorkout},
		server.ServerTool{Tool: toolGetTrainingProgress, Handler: h.getTrainingProgress},
		server.ServerTool{Tool: toolGetPersonalRecords, Handler: h.getPersonalRecords},
		server.ServerTool{Tool: toolGetRecentSessions, Handler: h.getRecentSessions},
		server.ServerTool{Tool: toolSuggestWorkingWeight, Handler: h.suggestWorkingWeight},
	)

	s.AddResources(
		server.ServerResource{Resource: resTrainingSummary, Handler: h.trainingSummary},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

var resTrainingSummary = mcp.NewResource(
	"ironlog://training_summary",
	"Training Summary",
	mcp.WithResourceDescription("Current program position, recent sessions, and personal records"),
	mcp.WithMIMEType("application/json"),
)

func (h *handlers) trainingSummary(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uid := UserIDFromContext(ctx)

	summary := map[string]any{}

	if exec, err := h.ds.ActiveExecution(ctx, uid); err == nil {
		summary["execution"] = exec
	} else {
		h.log.Warn("training_summary: no active execution", "error", err)
	}

	now := time.Now()
	sessions, err := h.ds.QuerySessions(ctx, uid, now.AddDate(0, 0, -14), now)
	if err != nil {
		h.log.Warn("training_summary: session query failed", "error", err)
	}
	summary["recent_sessions"] = sessions

	records, err := h.ds.PersonalRecords(ctx, uid)
	if err != nil {
		h.log.Warn("training_summary: records query failed", "error", err)
	}
	summary["personal_records"] = records

	return jsonResource(req.Params.URI, summary)
}

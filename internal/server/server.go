package server

import (
	"log/slog"
	"net/http"

	"github.com/claude/ironlog/internal/activity"
	"github.com/claude/ironlog/internal/models"
	"github.com/claude/ironlog/internal/storage"
	"github.com/go-chi/chi/v5"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	db       *storage.DB
	events   activity.Recorder
	log      *slog.Logger
	apiKey   string
	defaults Defaults
	locks    *entityLocks
	router   chi.Router
}

// Defaults are the profile values applied to users who have not configured
// body weight, unit system, or plate increment yet.
type Defaults struct {
	Unit      models.Unit
	Increment float64
}

// New creates a new Server with all routes configured.
func New(db *storage.DB, events activity.Recorder, apiKey string, defaults Defaults, log *slog.Logger) *Server {
	s := &Server{
		db:       db,
		events:   events,
		log:      log,
		apiKey:   apiKey,
		defaults: defaults,
		locks:    newEntityLocks(),
		router:   chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Get("/api/v1/health", s.handleHealth)

	// Program catalog
	s.router.Route("/api/v1/programs", func(r chi.Router) {
		r.Get("/", s.handleListPrograms)
		r.Post("/", s.handleCreateProgram)
		r.Get("/{id}", s.handleGetProgram)
		r.Post("/{id}/duplicate", s.handleDuplicateProgram)
	})

	// Program executions
	s.router.Route("/api/v1/executions", func(r chi.Router) {
		r.Post("/", s.handleStartExecution)
		r.Get("/{id}", s.handleGetExecution)
		r.Get("/{id}/progress", s.handleExecutionProgress)
		r.Post("/{id}/complete", s.handleCompleteWorkout)
		r.Post("/{id}/skip", s.handleSkipWorkout)
		r.Post("/{id}/pause", s.handlePauseExecution)
		r.Post("/{id}/resume", s.handleResumeExecution)
		r.Post("/{id}/reset", s.handleResetExecution)
	})

	// Workout sessions
	s.router.Route("/api/v1/sessions", func(r chi.Router) {
		r.Post("/", s.handleStartSession)
		r.Get("/{id}", s.handleGetSession)
		r.Post("/{id}/exercises/{exercise}/sets", s.handleAddSet)
		r.Delete("/{id}/exercises/{exercise}/sets/{set}", s.handleRemoveSet)
		r.Put("/{id}/exercises/{exercise}/sets/{set}", s.handleUpdateSet)
		r.Post("/{id}/exercises/{exercise}/sets/{set}/complete", s.handleCompleteSet)
		r.Post("/{id}/reorder", s.handleReorderResults)
		r.Post("/{id}/complete", s.handleCompleteSession)
	})

	s.router.Get("/api/v1/records", s.handleGetRecords)
	s.router.Get("/api/v1/profile", s.handleGetProfile)
	s.router.Put("/api/v1/profile", s.handleUpdateProfile)

	// Offline sync import (API key required)
	s.router.Route("/api/v1/import", func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Post("/sessions", s.handleImportSessions)
	})
}

// MountMCP mounts the MCP transport handler at /mcp.
func (s *Server) MountMCP(h http.Handler) {
	s.router.Mount("/mcp", h)
}

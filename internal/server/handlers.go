package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/claude/ironlog/internal/catalog"
	"github.com/claude/ironlog/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps the engine's error taxonomy onto HTTP statuses: validation
// 400, not-found 404, illegal transition 409, everything else 500.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var ve *models.ValidationError
	var nf *models.NotFoundError
	var it *models.InvalidTransitionError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": ve.Error()})
	case errors.As(err, &nf):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": nf.Error()})
	case errors.As(err, &it):
		writeJSON(w, http.StatusConflict, map[string]string{"error": it.Error()})
	default:
		s.log.Error("internal error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

func urlID(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, name))
}

func urlIndex(r *http.Request, name string) (int, error) {
	return strconv.Atoi(chi.URLParam(r, name))
}

// userID resolves the acting user from the ?user= query parameter,
// defaulting to the single-tenant user 1.
func userID(r *http.Request) int64 {
	if v := r.URL.Query().Get("user"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			return id
		}
	}
	return 1
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListPrograms(w http.ResponseWriter, r *http.Request) {
	programs, err := s.db.ListPrograms(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, programs)
}

type createProgramRequest struct {
	Name        string                `json:"name"`
	WeeksTotal  int                   `json:"weeks_total"`
	DaysPerWeek int                   `json:"days_per_week"`
	Workouts    []catalog.WorkoutSpec `json:"workouts"`
}

func (s *Server) handleCreateProgram(w http.ResponseWriter, r *http.Request) {
	var req createProgramRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	program, err := catalog.NewProgram(req.Name, req.WeeksTotal, req.DaysPerWeek, req.Workouts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	program.IsCustom = true

	if err := s.db.SaveProgram(r.Context(), program); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, program)
}

func (s *Server) handleGetProgram(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid program id"})
		return
	}
	program, err := s.db.GetProgram(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"program":        program,
		"total_workouts": catalog.TotalWorkouts(program),
		"exercises":      catalog.UniqueExerciseNames(program),
	})
}

func (s *Server) handleDuplicateProgram(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid program id"})
		return
	}
	program, err := s.db.GetProgram(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}

	dup := catalog.Duplicate(program)
	if err := s.db.SaveProgram(r.Context(), dup); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, dup)
}

func (s *Server) handleGetRecords(w http.ResponseWriter, r *http.Request) {
	records, err := s.db.PersonalRecords(r.Context(), userID(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := s.db.GetProfile(r.Context(), userID(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.withDefaults(profile))
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var profile models.Profile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	profile.UserID = userID(r)
	if err := s.db.UpdateProfile(r.Context(), &profile); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// withDefaults fills unset profile fields from the server configuration.
func (s *Server) withDefaults(p *models.Profile) *models.Profile {
	out := *p
	if out.Unit == "" {
		out.Unit = s.defaults.Unit
	}
	if out.Increment <= 0 {
		out.Increment = s.defaults.Increment
	}
	return &out
}

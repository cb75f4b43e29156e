package server

import (
	"encoding/json"
	"net/http"

	"github.com/claude/ironlog/internal/execution"
	"github.com/claude/ironlog/internal/models"
	"github.com/google/uuid"
)

type startExecutionRequest struct {
	ProgramID uuid.UUID `json:"program_id"`
}

func (s *Server) handleStartExecution(w http.ResponseWriter, r *http.Request) {
	var req startExecutionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	program, err := s.db.GetProgram(r.Context(), req.ProgramID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	m, err := execution.Start(program, userID(r), execution.WithRecorder(s.events))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.db.InsertExecution(r.Context(), m.Execution()); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, m.Execution())
}

func (s *Server) handleGetExecution(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid execution id"})
		return
	}
	exec, err := s.db.GetExecution(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, exec)
}

// loadMachine resolves an execution and its program into a state machine.
func (s *Server) loadMachine(r *http.Request) (*execution.Machine, error) {
	id, err := urlID(r, "id")
	if err != nil {
		return nil, &models.NotFoundError{Entity: "ProgramExecution", Op: "loadMachine", Ref: "invalid id"}
	}
	exec, err := s.db.GetExecution(r.Context(), id)
	if err != nil {
		return nil, err
	}
	program, err := s.db.GetProgram(r.Context(), exec.ProgramID)
	if err != nil {
		return nil, err
	}
	return execution.Resume(exec, program, execution.WithRecorder(s.events)), nil
}

func (s *Server) handleExecutionProgress(w http.ResponseWriter, r *http.Request) {
	m, err := s.loadMachine(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	view := map[string]any{
		"progress_percentage":   m.ProgressPercentage(),
		"current_streak":        m.CurrentStreak(),
		"completed_this_week":   m.CompletedWorkoutsThisWeek(),
		"current_week":          m.Execution().CurrentWeek,
		"current_day":           m.Execution().CurrentDay,
		"is_completed":          m.Execution().IsCompleted,
		"is_paused":             m.Execution().IsPaused,
	}
	if workout, err := m.CurrentWorkout(); err == nil {
		view["current_workout"] = workout
	}
	writeJSON(w, http.StatusOK, view)
}

type completeWorkoutRequest struct {
	SessionID *uuid.UUID `json:"session_id,omitempty"`
}

func (s *Server) handleCompleteWorkout(w http.ResponseWriter, r *http.Request) {
	var req completeWorkoutRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
			return
		}
	}

	m, err := s.loadMachine(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	unlock := s.locks.Lock(m.Execution().ID)
	defer unlock()

	rec, err := m.CompleteCurrentWorkout(r.Context(), req.SessionID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.db.SaveExecution(r.Context(), m.Execution()); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"record":    rec,
		"execution": m.Execution(),
	})
}

type skipWorkoutRequest struct {
	Reason *string `json:"reason,omitempty"`
}

func (s *Server) handleSkipWorkout(w http.ResponseWriter, r *http.Request) {
	var req skipWorkoutRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
			return
		}
	}

	m, err := s.loadMachine(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	unlock := s.locks.Lock(m.Execution().ID)
	defer unlock()

	rec, err := m.SkipCurrentWorkout(r.Context(), req.Reason)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.db.SaveExecution(r.Context(), m.Execution()); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"record":    rec,
		"execution": m.Execution(),
	})
}

func (s *Server) handleExecutionToggle(w http.ResponseWriter, r *http.Request, apply func(*execution.Machine)) {
	m, err := s.loadMachine(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	unlock := s.locks.Lock(m.Execution().ID)
	defer unlock()

	apply(m)
	if err := s.db.SaveExecution(r.Context(), m.Execution()); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m.Execution())
}

func (s *Server) handlePauseExecution(w http.ResponseWriter, r *http.Request) {
	s.handleExecutionToggle(w, r, func(m *execution.Machine) { m.PauseProgram() })
}

func (s *Server) handleResumeExecution(w http.ResponseWriter, r *http.Request) {
	s.handleExecutionToggle(w, r, func(m *execution.Machine) { m.ResumeProgram() })
}

func (s *Server) handleResetExecution(w http.ResponseWriter, r *http.Request) {
	s.handleExecutionToggle(w, r, func(m *execution.Machine) { m.ResetProgram() })
}

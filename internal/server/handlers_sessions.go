package server

import (
	"encoding/json"
	"net/http"

	"github.com/claude/ironlog/internal/activity"
	"github.com/claude/ironlog/internal/execution"
	"github.com/claude/ironlog/internal/models"
	"github.com/claude/ironlog/internal/session"
	"github.com/google/uuid"
)

type startSessionRequest struct {
	ExecutionID *uuid.UUID `json:"execution_id,omitempty"`
	WorkoutID   *uuid.UUID `json:"workout_id,omitempty"`
}

// handleStartSession instantiates a session either from an execution's
// current workout or from an explicit workout template. Sets are
// pre-populated with the calculator's suggested weights.
func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	uid := userID(r)
	var workout *models.WorkoutTemplate
	completedWorkouts := 0

	switch {
	case req.ExecutionID != nil:
		exec, err := s.db.GetExecution(r.Context(), *req.ExecutionID)
		if err != nil {
			s.writeError(w, err)
			return
		}
		program, err := s.db.GetProgram(r.Context(), exec.ProgramID)
		if err != nil {
			s.writeError(w, err)
			return
		}
		m := execution.Resume(exec, program)
		workout, err = m.CurrentWorkout()
		if err != nil {
			s.writeError(w, err)
			return
		}
		for _, rec := range exec.History {
			if !rec.IsSkipped {
				completedWorkouts++
			}
		}
		uid = exec.UserID
	case req.WorkoutID != nil:
		var err error
		workout, err = s.db.GetWorkoutTemplate(r.Context(), *req.WorkoutID)
		if err != nil {
			s.writeError(w, err)
			return
		}
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "execution_id or workout_id required"})
		return
	}

	profile, err := s.db.GetProfile(r.Context(), uid)
	if err != nil {
		s.writeError(w, err)
		return
	}
	profile = s.withDefaults(profile)

	names := make([]string, 0, len(workout.Exercises))
	for _, e := range workout.Exercises {
		names = append(names, e.Name)
	}
	history, err := s.db.LoadHistory(r.Context(), uid, names)
	if err != nil {
		s.writeError(w, err)
		return
	}

	eng := session.Start(workout, uid, session.Options{
		Profile:           profile,
		History:           history,
		CompletedWorkouts: completedWorkouts,
	})
	if err := s.db.SaveSession(r.Context(), eng.Session()); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, eng.Session())
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid session id"})
		return
	}
	sess, err := s.db.GetSession(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// loadEngine rehydrates a session engine with its workout template and
// performance history.
func (s *Server) loadEngine(r *http.Request) (*session.Engine, error) {
	id, err := urlID(r, "id")
	if err != nil {
		return nil, &models.NotFoundError{Entity: "Session", Op: "loadEngine", Ref: "invalid id"}
	}
	sess, err := s.db.GetSession(r.Context(), id)
	if err != nil {
		return nil, err
	}
	workout, err := s.db.GetWorkoutTemplate(r.Context(), sess.WorkoutID)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(sess.Results))
	for _, res := range sess.Results {
		names = append(names, res.ExerciseName)
	}
	history, err := s.db.LoadHistory(r.Context(), sess.UserID, names)
	if err != nil {
		return nil, err
	}
	return session.Resume(sess, workout, history), nil
}

// mutateSession runs one engine mutation under the session's lock and saves
// the aggregate. The mutation either fully applies or the stored session is
// untouched.
func (s *Server) mutateSession(w http.ResponseWriter, r *http.Request, mutate func(*session.Engine) error) {
	eng, err := s.loadEngine(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	unlock := s.locks.Lock(eng.Session().ID)
	defer unlock()

	if err := mutate(eng); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.db.SaveSession(r.Context(), eng.Session()); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, eng.Session())
}

func (s *Server) handleAddSet(w http.ResponseWriter, r *http.Request) {
	exerciseIdx, err := urlIndex(r, "exercise")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid exercise index"})
		return
	}
	s.mutateSession(w, r, func(eng *session.Engine) error {
		_, err := eng.AddSet(exerciseIdx)
		return err
	})
}

func (s *Server) handleRemoveSet(w http.ResponseWriter, r *http.Request) {
	exerciseIdx, err1 := urlIndex(r, "exercise")
	setIdx, err2 := urlIndex(r, "set")
	if err1 != nil || err2 != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid set reference"})
		return
	}
	s.mutateSession(w, r, func(eng *session.Engine) error {
		return eng.RemoveSet(exerciseIdx, setIdx)
	})
}

type updateSetRequest struct {
	Weight *float64 `json:"weight,omitempty"`
	Reps   int      `json:"reps"`
	RPE    *float64 `json:"rpe,omitempty"`
	RIR    *int     `json:"rir,omitempty"`
}

func (s *Server) handleUpdateSet(w http.ResponseWriter, r *http.Request) {
	exerciseIdx, err1 := urlIndex(r, "exercise")
	setIdx, err2 := urlIndex(r, "set")
	if err1 != nil || err2 != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid set reference"})
		return
	}
	var req updateSetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	s.mutateSession(w, r, func(eng *session.Engine) error {
		return eng.UpdateSet(exerciseIdx, setIdx, req.Weight, req.Reps, req.RPE, req.RIR)
	})
}

func (s *Server) handleCompleteSet(w http.ResponseWriter, r *http.Request) {
	exerciseIdx, err1 := urlIndex(r, "exercise")
	setIdx, err2 := urlIndex(r, "set")
	if err1 != nil || err2 != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid set reference"})
		return
	}
	s.mutateSession(w, r, func(eng *session.Engine) error {
		return eng.CompleteSet(exerciseIdx, setIdx)
	})
}

type reorderRequest struct {
	From []int `json:"from"`
	To   int   `json:"to"`
}

func (s *Server) handleReorderResults(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	eng, err := s.loadEngine(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	unlock := s.locks.Lock(eng.Session().ID)
	defer unlock()

	eng.ReorderExerciseResults(req.From, req.To)
	if err := s.db.SaveSession(r.Context(), eng.Session()); err != nil {
		s.writeError(w, err)
		return
	}
	// Persist the re-derived template order so future reads of the workout
	// match the session's order.
	if err := s.db.UpdateExerciseOrder(r.Context(), eng.Workout().Exercises); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, eng.Session())
}

func (s *Server) handleCompleteSession(w http.ResponseWriter, r *http.Request) {
	eng, err := s.loadEngine(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	unlock := s.locks.Lock(eng.Session().ID)
	defer unlock()

	eng.Complete()
	if err := s.db.SaveSession(r.Context(), eng.Session()); err != nil {
		s.writeError(w, err)
		return
	}

	sess := eng.Session()
	s.events.Record(r.Context(), activity.Event{
		Type:       activity.TypeSessionCompleted,
		UserID:     sess.UserID,
		OccurredAt: *sess.EndedAt,
		Payload: map[string]any{
			"session":      sess.ID.String(),
			"total_volume": sess.TotalVolume,
			"total_sets":   sess.TotalSets,
		},
	})

	avgRPE := eng.AverageRPE()
	writeJSON(w, http.StatusOK, map[string]any{
		"session":               sess,
		"completion_percentage": eng.CompletionPercentage(),
		"average_rpe":           avgRPE,
		"duration_sec":          eng.Duration().Seconds(),
	})
}

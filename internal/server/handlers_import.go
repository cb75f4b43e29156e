package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/claude/ironlog/internal/models"
)

type importSessionsRequest struct {
	Sessions []*models.Session `json:"sessions"`
}

type importSessionsResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// handleImportSessions ingests sessions logged offline by the sync client.
// Sessions already present are skipped so re-sending a journal is harmless.
func (s *Server) handleImportSessions(w http.ResponseWriter, r *http.Request) {
	var req importSessionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	var result importSessionsResult
	for _, sess := range req.Sessions {
		_, err := s.db.GetSession(r.Context(), sess.ID)
		if err == nil {
			result.Skipped++
			continue
		}
		var nf *models.NotFoundError
		if !errors.As(err, &nf) {
			s.writeError(w, err)
			return
		}

		unlock := s.locks.Lock(sess.ID)
		err = s.db.SaveSession(r.Context(), sess)
		unlock()
		if err != nil {
			s.writeError(w, err)
			return
		}
		result.Imported++
	}

	writeJSON(w, http.StatusOK, result)
}

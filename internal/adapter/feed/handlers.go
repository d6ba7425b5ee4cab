package feed

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/simaogato/portfoliosim-backend/internal/domain"
	"github.com/simaogato/portfoliosim-backend/internal/usecase/simulation"
)

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "healthy",
		"service":  "portfoliosim",
		"sessions": len(s.sessions.List()),
	})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"sessions": s.sessions.List(),
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, ok := s.lookup(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, session.Snapshot())
}

// lookup resolves the {id} URL parameter, writing the error response itself
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*simulation.Session, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid session id")
		return nil, false
	}

	session, err := s.sessions.Get(id)
	if errors.Is(err, domain.ErrSessionNotFound) {
		s.writeError(w, http.StatusNotFound, err.Error())
		return nil, false
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	return session, true
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes an error response
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{
		"error": message,
	})
}

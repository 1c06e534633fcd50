package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/limbx/limbx-core/internal/engine"
)

// handleListOutcomes returns the archive of finished runs, oldest first.
// The optional circuit query parameter filters by circuit id.
func (s *Server) handleListOutcomes(w http.ResponseWriter, r *http.Request) {
	filter := r.URL.Query().Get("circuit")
	all := s.engine.Archive().List()

	outcomes := make([]engine.Outcome, 0, len(all))
	for _, o := range all {
		if filter == "" || o.CircuitID == filter {
			outcomes = append(outcomes, o)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"outcomes": outcomes,
		"count":    len(outcomes),
	})
}

// handleGetOutcome returns one archived run.
func (s *Server) handleGetOutcome(w http.ResponseWriter, r *http.Request) {
	o, err := s.engine.Archive().Get(chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// handleAssignOutcomePlayers edits the players of an archived run, the
// only part of an outcome that may change.
func (s *Server) handleAssignOutcomePlayers(w http.ResponseWriter, r *http.Request) {
	var req playersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	o, err := s.engine.Archive().AssignPlayers(chi.URLParam(r, "id"), req.Players)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	s.hub.Broadcast(engine.EventOutcomeUpdated, o)
	writeJSON(w, http.StatusOK, o)
}

package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/limbx/limbx-core/internal/circuit"
)

// playersRequest is the body of the player assignment endpoints.
type playersRequest struct {
	Players []string `json:"players"`
}

// handleListInstances returns every live instance.
func (s *Server) handleListInstances(w http.ResponseWriter, _ *http.Request) {
	instances := s.engine.Instances()
	writeJSON(w, http.StatusOK, map[string]any{
		"instances": instances,
		"count":     len(instances),
	})
}

// handleGetInstance returns one live instance.
func (s *Server) handleGetInstance(w http.ResponseWriter, r *http.Request) {
	snap, err := s.engine.Instance(chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleSkipStep(w http.ResponseWriter, r *http.Request) {
	s.instanceAction(w, r, "skip", s.engine.SkipStep)
}

func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	s.instanceAction(w, r, "complete", s.engine.Complete)
}

func (s *Server) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	s.instanceAction(w, r, "deactivate", s.engine.Deactivate)
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	s.instanceAction(w, r, "restart", s.engine.Restart)
}

// instanceAction runs one manual operation on the instance named in the
// URL and writes the resulting snapshot.
func (s *Server) instanceAction(w http.ResponseWriter, r *http.Request, action string, op func(string) (circuit.Snapshot, error)) {
	id := chi.URLParam(r, "id")
	snap, err := op(id)
	if err != nil {
		s.logger.Info("instance action rejected",
			"action", action,
			"instance_id", id,
			"error", err,
			"request_id", r.Context().Value(ctxKeyRequestID),
		)
		writeDomainError(w, err)
		return
	}
	s.logger.Info("instance action",
		"action", action,
		"instance_id", id,
		"state", snap.State,
		"request_id", r.Context().Value(ctxKeyRequestID),
	)
	writeJSON(w, http.StatusOK, snap)
}

// handleAssignInstancePlayers sets the players of a live instance.
func (s *Server) handleAssignInstancePlayers(w http.ResponseWriter, r *http.Request) {
	var req playersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	snap, err := s.engine.AssignPlayers(chi.URLParam(r, "id"), req.Players)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// handleRestartAll re-arms every running or finished instance.
func (s *Server) handleRestartAll(w http.ResponseWriter, _ *http.Request) {
	s.engine.RestartAll()
	s.handleListInstances(w, nil)
}

// handleDeactivateAll disables every live instance.
func (s *Server) handleDeactivateAll(w http.ResponseWriter, _ *http.Request) {
	s.engine.DeactivateAll()
	s.handleListInstances(w, nil)
}

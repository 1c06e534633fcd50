package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/limbx/limbx-core/internal/circuit"
	"github.com/limbx/limbx-core/internal/engine"
)

// circuitView is a definition plus whether it is currently desired.
type circuitView struct {
	*circuit.Definition
	Active bool `json:"active"`
}

// activeRequest is the body of PUT /active.
type activeRequest struct {
	Circuits []string `json:"circuits"`
}

// handleListCircuits returns every loaded definition.
func (s *Server) handleListCircuits(w http.ResponseWriter, _ *http.Request) {
	active := s.activeSet()
	defs := s.engine.Catalog().List()
	views := make([]circuitView, 0, len(defs))
	for _, def := range defs {
		_, on := active[def.ID]
		views = append(views, circuitView{Definition: def, Active: on})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"circuits": views,
		"count":    len(views),
	})
}

// handleGetCircuit returns one definition.
func (s *Server) handleGetCircuit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	def, err := s.engine.Catalog().Get(id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	_, on := s.activeSet()[id]
	writeJSON(w, http.StatusOK, circuitView{Definition: def, Active: on})
}

// handleGetActive returns the desired circuit ids.
func (s *Server) handleGetActive(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, activeRequest{Circuits: s.engine.Desired()})
}

// handleSetActive replaces the desired set and reconciles the live
// instances against it.
func (s *Server) handleSetActive(w http.ResponseWriter, r *http.Request) {
	var req activeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Circuits == nil {
		writeBadRequest(w, "circuits is required")
		return
	}

	unknown := s.engine.Reconcile(req.Circuits)
	s.logger.Info("active circuits changed",
		"desired", req.Circuits,
		"unknown", unknown,
		"request_id", r.Context().Value(ctxKeyRequestID),
	)

	writeJSON(w, http.StatusOK, engine.ReconcileEvent{
		Desired:   s.engine.Desired(),
		Unknown:   unknown,
		Instances: s.engine.Instances(),
	})
}

func (s *Server) activeSet() map[string]struct{} {
	desired := s.engine.Desired()
	set := make(map[string]struct{}, len(desired))
	for _, id := range desired {
		set[id] = struct{}{}
	}
	return set
}

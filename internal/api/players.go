package api

import (
	"encoding/json"
	"net/http"
)

// addPlayerRequest is the body of POST /players.
type addPlayerRequest struct {
	Name string `json:"name"`
}

// handleListPlayers returns the roster.
func (s *Server) handleListPlayers(w http.ResponseWriter, _ *http.Request) {
	if s.roster == nil {
		writeJSON(w, http.StatusOK, playersRequest{Players: []string{}})
		return
	}
	writeJSON(w, http.StatusOK, playersRequest{Players: s.roster.List()})
}

// handleReplacePlayers replaces the whole roster.
func (s *Server) handleReplacePlayers(w http.ResponseWriter, r *http.Request) {
	if s.roster == nil {
		writeNotFound(w, "no roster configured")
		return
	}
	var req playersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	players, err := s.roster.Replace(req.Players)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, playersRequest{Players: players})
}

// handleAddPlayer appends one player to the roster.
func (s *Server) handleAddPlayer(w http.ResponseWriter, r *http.Request) {
	if s.roster == nil {
		writeNotFound(w, "no roster configured")
		return
	}
	var req addPlayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	players, err := s.roster.Add(req.Name)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, playersRequest{Players: players})
}

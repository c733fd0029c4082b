package web

import (
	"encoding/json"
	"net/http"
)

func (s *Server) getMatches(w http.ResponseWriter, _ *http.Request) {
	matches, err := s.back.GetMatches()
	if err != nil {
		s.error(w, err)
		return
	}

	s.response(w, http.StatusOK, matches)
}

func (s *Server) createMatch(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Player1ID    string `json:"player1Id"`
		Player2ID    string `json:"player2Id"`
		Player1Score int    `json:"player1Score"`
		Player2Score int    `json:"player2Score"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.error(w, errBadPayload)
		return
	}

	p1, err := bodyID(payload.Player1ID, "player1Id")
	if err != nil {
		s.error(w, err)
		return
	}

	p2, err := bodyID(payload.Player2ID, "player2Id")
	if err != nil {
		s.error(w, err)
		return
	}

	match, err := s.back.SubmitMatch(p1, p2, payload.Player1Score, payload.Player2Score)
	if err != nil {
		s.error(w, err)
		return
	}

	s.response(w, http.StatusCreated, match)
}

func (s *Server) deleteMatch(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		s.error(w, err)
		return
	}

	if err := s.back.DeleteMatch(id); err != nil {
		s.error(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

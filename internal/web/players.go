package web

import (
	"encoding/json"
	"net/http"
	"topspin/internal/util"
)

const errBadPayload = util.ErrPublic("unable to decode request body")

func (s *Server) getPlayers(w http.ResponseWriter, _ *http.Request) {
	players, err := s.back.GetLeaderboard()
	if err != nil {
		s.error(w, err)
		return
	}

	s.response(w, http.StatusOK, players)
}

func (s *Server) createPlayer(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.error(w, errBadPayload)
		return
	}

	player, err := s.back.RegisterPlayer(payload.Name)
	if err != nil {
		s.error(w, err)
		return
	}

	s.response(w, http.StatusCreated, player)
}

func (s *Server) deletePlayer(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		s.error(w, err)
		return
	}

	if err := s.back.DeletePlayer(id); err != nil {
		s.error(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getPrediction(w http.ResponseWriter, r *http.Request) {
	p1, err := util.ParseUUIDAsBlob(r.URL.Query().Get("player1"))
	if err != nil {
		s.error(w, util.ErrPublic("invalid player1 id"))
		return
	}

	p2, err := util.ParseUUIDAsBlob(r.URL.Query().Get("player2"))
	if err != nil {
		s.error(w, util.ErrPublic("invalid player2 id"))
		return
	}

	prediction, err := s.back.PredictMatch(p1, p2)
	if err != nil {
		s.error(w, err)
		return
	}

	s.response(w, http.StatusOK, prediction)
}

package web

import (
	"encoding/json"
	"net/http"
	"topspin/internal/util"
)

func (s *Server) getAvatars(w http.ResponseWriter, _ *http.Request) {
	avatars, err := s.back.GetAvatarCatalogue()
	if err != nil {
		s.error(w, err)
		return
	}

	s.response(w, http.StatusOK, avatars)
}

func (s *Server) getPlayerAvatars(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		s.error(w, err)
		return
	}

	avatars, err := s.back.GetPlayerAvatars(id)
	if err != nil {
		s.error(w, err)
		return
	}

	s.response(w, http.StatusOK, avatars)
}

func (s *Server) setPlayerAvatar(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		s.error(w, err)
		return
	}

	var payload struct {
		AvatarID string `json:"avatarId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.error(w, errBadPayload)
		return
	}
	if payload.AvatarID == "" {
		s.error(w, util.ErrPublic("missing avatarId"))
		return
	}

	avatar, err := s.back.SetCurrentAvatar(id, payload.AvatarID)
	if err != nil {
		s.error(w, err)
		return
	}

	s.response(w, http.StatusOK, avatar)
}

func (s *Server) openLootbox(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		s.error(w, err)
		return
	}

	reward, err := s.back.OpenLootbox(id)
	if err != nil {
		s.error(w, err)
		return
	}

	s.response(w, http.StatusOK, reward)
}

func (s *Server) getCurrentAvatar(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		s.error(w, err)
		return
	}

	avatar, err := s.back.GetCurrentAvatar(id)
	if err != nil {
		s.error(w, err)
		return
	}

	s.response(w, http.StatusOK, avatar)
}

func (s *Server) getLootboxes(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		s.error(w, err)
		return
	}

	player, err := s.back.GetPlayer(id)
	if err != nil {
		s.error(w, err)
		return
	}

	s.response(w, http.StatusOK, map[string]int{"lootboxes": player.Lootboxes})
}

package web

import (
	"errors"
	"net/http"
	"strings"

	"courtside-app/internal/model"
	"courtside-app/internal/state"

	"github.com/go-chi/chi/v5"
)

type playerRequest struct {
	Name       string `json:"name"`
	SkillLevel string `json:"skillLevel"`
}

type paymentRequest struct {
	Amount *float64 `json:"amount"`
	All    bool     `json:"all"`
}

type playerIDsRequest struct {
	PlayerIDs []string `json:"playerIds"`
}

func (s *Server) handlePlayerAdd(w http.ResponseWriter, r *http.Request) {
	var req playerRequest
	if err := decodeBody(r, &req); err != nil {
		respondBadRequest(w, "Invalid player data.")
		return
	}
	player, err := s.state.AddNewPlayer(req.Name, model.SkillLevel(strings.TrimSpace(req.SkillLevel)))
	if err != nil {
		s.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, player)
}

func (s *Server) handlePlayerUpdate(w http.ResponseWriter, r *http.Request) {
	playerID := chi.URLParam(r, "playerID")
	var req playerRequest
	if err := decodeBody(r, &req); err != nil {
		respondBadRequest(w, "Invalid player data.")
		return
	}
	if err := s.state.UpdatePlayer(playerID, req.Name, model.SkillLevel(strings.TrimSpace(req.SkillLevel))); err != nil {
		s.respondError(w, err)
		return
	}
	player, _ := s.state.Snapshot().Player(playerID)
	respondJSON(w, http.StatusOK, player)
}

// handlePayment records a payment. Without an amount, or with all set, the
// whole outstanding balance is settled.
func (s *Server) handlePayment(w http.ResponseWriter, r *http.Request) {
	playerID := chi.URLParam(r, "playerID")
	var req paymentRequest
	if err := decodeBody(r, &req); err != nil {
		respondBadRequest(w, "Invalid payment.")
		return
	}
	var err error
	if req.All || req.Amount == nil {
		err = s.state.MarkAllFeesPaid(playerID)
	} else {
		err = s.state.MarkFeesAsPaid(playerID, *req.Amount)
	}
	if err != nil {
		s.respondError(w, err)
		return
	}
	player, ok := s.state.Snapshot().Player(playerID)
	if !ok {
		s.respondError(w, state.ErrPlayerNotFound)
		return
	}
	respondJSON(w, http.StatusOK, player)
}

func (s *Server) handlePlayersDone(w http.ResponseWriter, r *http.Request) {
	ids, ok := s.readPlayerIDs(w, r)
	if !ok {
		return
	}
	s.state.MarkPlayersAsDonePlaying(ids)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePlayersActive(w http.ResponseWriter, r *http.Request) {
	ids, ok := s.readPlayerIDs(w, r)
	if !ok {
		return
	}
	s.state.MarkPlayersAsActive(ids)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) readPlayerIDs(w http.ResponseWriter, r *http.Request) ([]string, bool) {
	var req playerIDsRequest
	if err := decodeBody(r, &req); err != nil {
		respondBadRequest(w, "Invalid player list.")
		return nil, false
	}
	ids := cleanIDs(req.PlayerIDs)
	if len(ids) == 0 {
		respondBadRequest(w, "Select at least one player.")
		return nil, false
	}
	return ids, true
}

func (s *Server) handleQueueAdd(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PlayerIDs []string `json:"playerIds"`
		IsDoubles bool     `json:"isDoubles"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondBadRequest(w, "Invalid queue entry.")
		return
	}
	item, err := s.state.AddPlayerToQueue(cleanIDs(req.PlayerIDs), req.IsDoubles)
	if err != nil {
		s.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, item)
}

func (s *Server) handleQueueRemove(w http.ResponseWriter, r *http.Request) {
	s.state.RemovePlayerFromQueue(chi.URLParam(r, "queueID"))
	w.WriteHeader(http.StatusNoContent)
}

func isBusy(err error) bool {
	return errors.Is(err, state.ErrPlayersBusy)
}

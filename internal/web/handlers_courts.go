package web

import (
	"net/http"
	"strings"

	"courtside-app/internal/model"
	"courtside-app/internal/state"
)

type assignRequest struct {
	PlayerIDs []string `json:"playerIds"`
	QueueID   string   `json:"queueId"`
}

func (s *Server) handleCourtAdd(w http.ResponseWriter, r *http.Request) {
	court, err := s.state.AddCourt()
	if err != nil {
		s.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, court)
}

func (s *Server) handleCourtRemove(w http.ResponseWriter, r *http.Request) {
	courtID, ok := courtIDParam(r)
	if !ok {
		respondBadRequest(w, "Invalid court.")
		return
	}
	if err := s.state.RemoveCourt(courtID); err != nil {
		s.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleCourtAssign starts a game from an explicit player list or from a
// queue entry. Busy players come back as conflicts with status 409.
func (s *Server) handleCourtAssign(w http.ResponseWriter, r *http.Request) {
	courtID, ok := courtIDParam(r)
	if !ok {
		respondBadRequest(w, "Invalid court.")
		return
	}
	var req assignRequest
	if err := decodeBody(r, &req); err != nil {
		respondBadRequest(w, "Invalid assignment.")
		return
	}

	var (
		result state.AssignResult
		err    error
	)
	if queueID := strings.TrimSpace(req.QueueID); queueID != "" {
		result, err = s.state.AssignFromQueue(courtID, queueID)
	} else {
		result, err = s.state.AssignToCourt(courtID, cleanIDs(req.PlayerIDs))
	}
	if isBusy(err) {
		respondJSON(w, http.StatusConflict, AssignView{Conflicts: playerRefs(result.Conflicts)})
		return
	}
	if err != nil {
		s.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, AssignView{Success: true, GameID: result.GameID})
}

func (s *Server) handleCourtComplete(w http.ResponseWriter, r *http.Request) {
	courtID, ok := courtIDParam(r)
	if !ok {
		respondBadRequest(w, "Invalid court.")
		return
	}
	record, completed := s.state.CompleteMatch(courtID)
	view := CompleteView{Completed: completed}
	if completed {
		view.Match = &record
	}
	respondJSON(w, http.StatusOK, view)
}

func playerRefs(players []model.Player) []PlayerRef {
	refs := make([]PlayerRef, 0, len(players))
	for _, p := range players {
		refs = append(refs, PlayerRef{ID: p.ID, Name: p.Name})
	}
	return refs
}

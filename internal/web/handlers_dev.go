package web

import (
	"errors"
	"net/http"

	"courtside-app/internal/model"
	"courtside-app/internal/state"
)

var devRoster = []struct {
	name  string
	skill model.SkillLevel
}{
	{"Alice", model.SkillAdvanced},
	{"Bob", model.SkillIntermediate},
	{"Carol", model.SkillIntermediate},
	{"Dan", model.SkillBeginner},
	{"Erin", model.SkillAdvanced},
	{"Frank", model.SkillBeginner},
}

// handleDevSeed fills an empty session with a demo roster. Only available
// when the server runs in dev mode.
func (s *Server) handleDevSeed(w http.ResponseWriter, r *http.Request) {
	if !s.opts.DevMode {
		http.NotFound(w, r)
		return
	}
	added := []model.Player{}
	for _, p := range devRoster {
		player, err := s.state.AddNewPlayer(p.name, p.skill)
		if errors.Is(err, state.ErrDuplicateName) {
			continue
		}
		if err != nil {
			s.respondError(w, err)
			return
		}
		added = append(added, player)
	}
	respondJSON(w, http.StatusCreated, added)
}

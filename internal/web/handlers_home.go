package web

import (
	"net/http"

	"courtside-app/internal/mirror"
)

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, StateView{
		AppState: s.state.Snapshot(),
		Sharing:  s.shareView(),
	})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.dashboardView(s.state.Snapshot(), s.opts.Now()))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st := s.state.Snapshot()
	view := StatusView{
		Status:        "ok",
		Players:       len(st.Players),
		Queued:        len(st.Queue),
		Sharing:       s.shareView().Enabled,
		EventsEnabled: s.opts.EventsEnabled,
	}
	for _, c := range st.Courts {
		if c.Occupied() {
			view.ActiveGames++
		}
	}
	respondJSON(w, http.StatusOK, view)
}

// handleReset clears the session. An active share keeps running and will
// mirror the empty state.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.state.ResetAll()
	s.handleState(w, r)
}

func (s *Server) shareView() ShareView {
	if s.sharer == nil {
		return ShareView{}
	}
	flags := s.sharer.Status()
	if !flags.Active() {
		return ShareView{}
	}
	return ShareView{
		Enabled:    true,
		Code:       flags.Code,
		Address:    s.sharer.Address(flags.Code),
		ViewerPath: mirror.ViewerPath(flags.Code),
	}
}

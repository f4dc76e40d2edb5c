package web

import (
	"fmt"
	"net/http"

	"courtside-app/internal/fees"
	"courtside-app/internal/model"
)

func (s *Server) handleFeeConfig(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.state.Snapshot().FeeConfig)
}

// handleFeeConfigUpdate replaces the fee settings. Fields left out of the
// body keep their current values.
func (s *Server) handleFeeConfigUpdate(w http.ResponseWriter, r *http.Request) {
	cfg := s.state.Snapshot().FeeConfig
	if err := decodeBody(r, &cfg); err != nil {
		respondBadRequest(w, "Invalid fee settings.")
		return
	}
	applied, err := s.state.UpdateFeeConfig(cfg)
	if err != nil {
		s.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, applied)
}

func (s *Server) handleFeeReport(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, fees.BuildReport(s.state.Snapshot()))
}

func (s *Server) handleFeeReportCSV(w http.ResponseWriter, r *http.Request) {
	report := fees.BuildReport(s.state.Snapshot())
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "fees-"+s.opts.Now().Format("2006-01-02")+".csv"))
	if err := report.WriteCSV(w); err != nil {
		s.logger.Error("write fee csv", "err", err)
	}
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	history := s.state.Snapshot().MatchHistory
	out := make([]model.MatchRecord, 0, len(history))
	for i := len(history) - 1; i >= 0; i-- {
		out = append(out, history[i])
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleStandings(w http.ResponseWriter, r *http.Request) {
	st := s.state.Snapshot()
	respondJSON(w, http.StatusOK, BuildStandings(st.Players, st.MatchHistory))
}

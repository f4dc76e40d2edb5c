package web

import (
	"math"
	"time"

	"courtside-app/internal/fees"
	"courtside-app/internal/model"
)

const recentMatches = 10

func playerNames(st model.AppState, ids []string) []string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if p, ok := st.Player(id); ok {
			names = append(names, p.Name)
		} else {
			names = append(names, "Unknown")
		}
	}
	return names
}

func courtViews(st model.AppState, now time.Time) []CourtView {
	views := make([]CourtView, 0, len(st.Courts))
	for _, c := range st.Courts {
		view := CourtView{Court: c, PlayerNames: playerNames(st, c.Players)}
		if c.Occupied() && c.StartTime != nil {
			view.ElapsedMinutes = int(math.Max(0, math.Floor(now.Sub(*c.StartTime).Minutes())))
		}
		views = append(views, view)
	}
	return views
}

func queueViews(st model.AppState) []QueueView {
	views := make([]QueueView, 0, len(st.Queue))
	for i, q := range st.Queue {
		views = append(views, QueueView{
			QueueItem:   q,
			Position:    i + 1,
			PlayerNames: playerNames(st, q.PlayerIDs),
		})
	}
	return views
}

// dashboardView splits the roster the way the organiser works through it:
// players free to assign, players who have left, and the courts and queue.
func (s *Server) dashboardView(st model.AppState, now time.Time) DashboardView {
	view := DashboardView{
		Courts:    courtViews(st, now),
		Queue:     queueViews(st),
		Available: []model.Player{},
		Done:      []model.Player{},
		Standings: BuildStandings(st.Players, st.MatchHistory),
		Recent:    []model.MatchRecord{},
		Fees:      fees.BuildReport(st),
		Sharing:   s.shareView(),
	}
	for _, p := range st.Players {
		switch {
		case p.DonePlaying:
			view.Done = append(view.Done, p)
		case !p.CurrentlyPlaying && !p.InQueue:
			view.Available = append(view.Available, p)
		}
	}
	for i := len(st.MatchHistory) - 1; i >= 0 && len(view.Recent) < recentMatches; i-- {
		view.Recent = append(view.Recent, st.MatchHistory[i])
	}
	return view
}

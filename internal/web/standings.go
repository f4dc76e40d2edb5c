package web

import (
	"sort"
	"strings"

	"courtside-app/internal/model"
)

// BuildStandings tallies games from the match history. Players are ranked by
// games played, then minutes on court, then name.
func BuildStandings(players []model.Player, history []model.MatchRecord) []StandingEntry {
	index := make(map[string]*StandingEntry, len(players))
	for _, p := range players {
		index[p.ID] = &StandingEntry{
			Player:      PlayerRef{ID: p.ID, Name: p.Name},
			GamesPlayed: p.GamesPlayed,
			TotalFees:   p.TotalFees,
			UnpaidFees:  p.UnpaidFees,
		}
	}

	for _, match := range history {
		for _, id := range match.PlayerIDs {
			entry := index[id]
			if entry == nil {
				continue
			}
			entry.MinutesPlayed += match.Duration
			if match.GameType == model.GameDoubles {
				entry.Doubles++
			} else {
				entry.Singles++
			}
		}
	}

	standings := make([]StandingEntry, 0, len(players))
	for _, p := range players {
		standings = append(standings, *index[p.ID])
	}
	sort.SliceStable(standings, func(i, j int) bool {
		if standings[i].GamesPlayed != standings[j].GamesPlayed {
			return standings[i].GamesPlayed > standings[j].GamesPlayed
		}
		if standings[i].MinutesPlayed != standings[j].MinutesPlayed {
			return standings[i].MinutesPlayed > standings[j].MinutesPlayed
		}
		return strings.ToLower(standings[i].Player.Name) < strings.ToLower(standings[j].Player.Name)
	})
	return standings
}

package fees

import (
	"encoding/csv"
	"io"
	"sort"
	"strconv"
	"strings"

	"courtside-app/internal/model"
)

type PlayerRow struct {
	PlayerID    string  `json:"playerId"`
	Name        string  `json:"name"`
	GamesPlayed int     `json:"gamesPlayed"`
	TotalFees   float64 `json:"totalFees"`
	PaidFees    float64 `json:"paidFees"`
	UnpaidFees  float64 `json:"unpaidFees"`
	UnpaidGames int     `json:"unpaidGames"`
}

type Report struct {
	Currency    string      `json:"currency"`
	Collected   float64     `json:"collected"`
	Outstanding float64     `json:"outstanding"`
	Total       float64     `json:"total"`
	CourtRental float64     `json:"courtRental"`
	Players     []PlayerRow `json:"players"`
}

// BuildReport summarises player balances. Collected and Outstanding sum
// paid and unpaid fees; together they equal Total.
func BuildReport(s model.AppState) Report {
	r := Report{
		Currency:    s.FeeConfig.Currency,
		CourtRental: CourtRental(s.FeeConfig),
		Players:     make([]PlayerRow, 0, len(s.Players)),
	}
	for _, p := range s.Players {
		row := PlayerRow{
			PlayerID:    p.ID,
			Name:        p.Name,
			GamesPlayed: p.GamesPlayed,
			TotalFees:   p.TotalFees,
			PaidFees:    p.PaidFees,
			UnpaidFees:  p.UnpaidFees,
		}
		for _, e := range p.FeeHistory {
			if !e.Paid {
				row.UnpaidGames++
			}
		}
		r.Collected += p.PaidFees
		r.Outstanding += p.UnpaidFees
		r.Total += p.TotalFees
		r.Players = append(r.Players, row)
	}
	r.Collected = Round(r.Collected)
	r.Outstanding = Round(r.Outstanding)
	r.Total = Round(r.Total)
	sort.SliceStable(r.Players, func(i, j int) bool {
		if r.Players[i].UnpaidFees == r.Players[j].UnpaidFees {
			return strings.ToLower(r.Players[i].Name) < strings.ToLower(r.Players[j].Name)
		}
		return r.Players[i].UnpaidFees > r.Players[j].UnpaidFees
	})
	return r
}

func (r Report) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"player", "games", "total", "paid", "unpaid", "currency"}); err != nil {
		return err
	}
	for _, p := range r.Players {
		if err := cw.Write([]string{
			p.Name,
			strconv.Itoa(p.GamesPlayed),
			money(p.TotalFees),
			money(p.PaidFees),
			money(p.UnpaidFees),
			r.Currency,
		}); err != nil {
			return err
		}
	}
	summary := [][]string{
		{"collected", "", "", money(r.Collected), "", r.Currency},
		{"outstanding", "", "", "", money(r.Outstanding), r.Currency},
		{"total", "", money(r.Total), "", "", r.Currency},
		{"court rental", "", money(r.CourtRental), "", "", r.Currency},
	}
	if err := cw.WriteAll(summary); err != nil {
		return err
	}
	return cw.Error()
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// Package fees computes per-game player fees, court rental totals and
// revenue reports from a FeeConfig and the current state.
package fees

import (
	"math"

	"courtside-app/internal/model"
)

// GameTypeFor derives the game type from the number of players on court.
func GameTypeFor(players int) model.GameType {
	if players == 4 {
		return model.GameDoubles
	}
	return model.GameSingles
}

// PerPlayer is the flat fee each participant owes for one game.
func PerPlayer(gameType model.GameType, cfg model.FeeConfig) float64 {
	if gameType == model.GameDoubles {
		return cfg.DoublesFee
	}
	return cfg.SinglesFee
}

// CourtRental is the venue rental total. It is reported only and never
// debited to any player balance.
func CourtRental(cfg model.FeeConfig) float64 {
	switch cfg.CourtFeeType {
	case model.CourtFeePerHour:
		return Round(cfg.CourtFeeAmount * float64(cfg.NumCourts) * cfg.RentalHours)
	case model.CourtFeePerHead:
		return Round(cfg.CourtFeeAmount)
	}
	return 0
}

// Round rounds to cents.
func Round(v float64) float64 {
	return math.Round(v*100) / 100
}

// Covers reports whether amount pays fee in full, ignoring sub-cent noise.
func Covers(amount, fee float64) bool {
	return amount+0.000001 >= fee
}

package state

import (
	"errors"
	"fmt"
	"math"

	"courtside-app/internal/model"
)

// Validate checks the cross-collection invariants: fee conservation per
// player, court occupancy consistency and queue membership flags.
func Validate(s model.AppState) error {
	var errs []error

	queued := map[string]bool{}
	for _, q := range s.Queue {
		for _, id := range q.PlayerIDs {
			queued[id] = true
		}
	}
	for _, p := range s.Players {
		if math.Abs(p.TotalFees-(p.PaidFees+p.UnpaidFees)) > 0.005 {
			errs = append(errs, fmt.Errorf("player %s: total %.2f != paid %.2f + unpaid %.2f", p.Name, p.TotalFees, p.PaidFees, p.UnpaidFees))
		}
		if p.TotalFees < 0 || p.PaidFees < 0 || p.UnpaidFees < 0 {
			errs = append(errs, fmt.Errorf("player %s: negative fee balance", p.Name))
		}
		if p.InQueue != queued[p.ID] {
			errs = append(errs, fmt.Errorf("player %s: inQueue=%v but queued=%v", p.Name, p.InQueue, queued[p.ID]))
		}
	}

	for _, c := range s.Courts {
		occupied := c.Status == model.CourtOccupied
		hasGame := c.CurrentGameID != ""
		hasPlayers := len(c.Players) == 2 || len(c.Players) == 4
		if occupied != hasGame || occupied != hasPlayers {
			errs = append(errs, fmt.Errorf("court %d: status=%s game=%q players=%d", c.ID, c.Status, c.CurrentGameID, len(c.Players)))
		}
		if !occupied && (len(c.Players) != 0 || c.StartTime != nil) {
			errs = append(errs, fmt.Errorf("court %d: available court holds players or start time", c.ID))
		}
	}
	return errors.Join(errs...)
}

package state

import (
	"errors"
	"strings"

	"courtside-app/internal/model"
)

var (
	// ErrNoChange marks a transition that left the state untouched, such as
	// completing a match on an idle court. Store methods never return it.
	ErrNoChange = errors.New("no change")

	ErrEmptyName          = errors.New("player name is required")
	ErrDuplicateName      = errors.New("player name already exists")
	ErrInvalidSkill       = errors.New("invalid skill level")
	ErrPlayerNotFound     = errors.New("player not found")
	ErrCourtNotFound      = errors.New("court not found")
	ErrCourtOccupied      = errors.New("court is occupied")
	ErrCourtLimit         = errors.New("court limit reached")
	ErrQueueItemNotFound  = errors.New("queue item not found")
	ErrInvalidPlayerCount = errors.New("a game needs 2 or 4 distinct players")
	ErrInvalidAmount      = errors.New("amount must be positive")
	ErrInvalidFeeConfig   = errors.New("invalid fee configuration")
	ErrPlayersBusy        = errors.New("players already on court")
)

// BusyPlayersError lists the players that blocked a court assignment because
// they are already playing.
type BusyPlayersError struct {
	Players []model.Player
}

func (e *BusyPlayersError) Error() string {
	names := make([]string, 0, len(e.Players))
	for _, p := range e.Players {
		names = append(names, p.Name)
	}
	return ErrPlayersBusy.Error() + ": " + strings.Join(names, ", ")
}

func (e *BusyPlayersError) Is(target error) bool {
	return target == ErrPlayersBusy
}

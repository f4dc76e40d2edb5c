package events

import (
	"strconv"
	"time"

	"courtside-app/internal/fees"
	"courtside-app/internal/model"
	"courtside-app/internal/state"
)

const DefaultTopic = "courtside-events"

type Type string

const (
	TypeCourtAssigned  Type = "courtAssigned"
	TypeMatchCompleted Type = "matchCompleted"
	TypeFeesPaid       Type = "feesPaid"
	TypePlayerAdded    Type = "playerAdded"
	TypeQueueChanged   Type = "queueChanged"
	TypeStateChanged   Type = "stateChanged"
)

// Event is the JSON payload published for each committed transition.
type Event struct {
	Type      Type      `json:"type"`
	Op        state.Op  `json:"op"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
}

type CourtAssignedData struct {
	CourtID   int            `json:"courtId"`
	GameID    string         `json:"gameId"`
	GameType  model.GameType `json:"gameType"`
	PlayerIDs []string       `json:"playerIds"`
}

type FeesPaidData struct {
	PlayerID   string  `json:"playerId"`
	Amount     float64 `json:"amount"`
	UnpaidLeft float64 `json:"unpaidLeft"`
	Currency   string  `json:"currency"`
}

type PlayerData struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
}

type QueueData struct {
	Length int `json:"length"`
}

// Message is one keyed event ready for the broker.
type Message struct {
	Key   string
	Event Event
}

// Build turns a committed transition into the messages to publish. Keys are
// court ids for court events and player ids for player events.
func Build(ev state.Event) []Message {
	base := Event{Op: ev.Op, Timestamp: ev.At.UTC()}

	switch ev.Op {
	case state.OpAssignToCourt, state.OpAssignFromQueue:
		var out []Message
		for _, c := range ev.Next.Courts {
			prev, ok := ev.Prev.Court(c.ID)
			if !c.Occupied() || (ok && prev.CurrentGameID == c.CurrentGameID) {
				continue
			}
			e := base
			e.Type = TypeCourtAssigned
			e.Data = CourtAssignedData{
				CourtID:   c.ID,
				GameID:    c.CurrentGameID,
				GameType:  fees.GameTypeFor(len(c.Players)),
				PlayerIDs: append([]string{}, c.Players...),
			}
			out = append(out, Message{Key: strconv.Itoa(c.ID), Event: e})
		}
		return out

	case state.OpCompleteMatch:
		if len(ev.Next.MatchHistory) <= len(ev.Prev.MatchHistory) {
			return nil
		}
		record := ev.Next.MatchHistory[len(ev.Next.MatchHistory)-1]
		e := base
		e.Type = TypeMatchCompleted
		e.Data = record
		return []Message{{Key: strconv.Itoa(record.CourtID), Event: e}}

	case state.OpMarkFeesPaid:
		var out []Message
		for _, p := range ev.Next.Players {
			prev, ok := ev.Prev.Player(p.ID)
			if !ok || p.PaidFees <= prev.PaidFees {
				continue
			}
			e := base
			e.Type = TypeFeesPaid
			e.Data = FeesPaidData{
				PlayerID:   p.ID,
				Amount:     fees.Round(p.PaidFees - prev.PaidFees),
				UnpaidLeft: p.UnpaidFees,
				Currency:   ev.Next.FeeConfig.Currency,
			}
			out = append(out, Message{Key: p.ID, Event: e})
		}
		return out

	case state.OpAddPlayer:
		if len(ev.Next.Players) == 0 {
			return nil
		}
		p := ev.Next.Players[len(ev.Next.Players)-1]
		e := base
		e.Type = TypePlayerAdded
		e.Data = PlayerData{PlayerID: p.ID, Name: p.Name}
		return []Message{{Key: p.ID, Event: e}}

	case state.OpAddToQueue, state.OpRemoveFromQueue:
		e := base
		e.Type = TypeQueueChanged
		e.Data = QueueData{Length: len(ev.Next.Queue)}
		return []Message{{Key: "queue", Event: e}}
	}

	e := base
	e.Type = TypeStateChanged
	return []Message{{Key: string(ev.Op), Event: e}}
}

package mirror

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"courtside-app/internal/model"
)

var ErrInvalidDocument = errors.New("mirror: invalid document")

// Document is the read-only projection viewers consume.
type Document struct {
	Queue       []model.QueueItem `json:"queue"`
	Players     []model.Player    `json:"players"`
	Courts      []model.Court     `json:"courts"`
	LastUpdated time.Time         `json:"lastUpdated"`
	CreatedAt   *time.Time        `json:"createdAt,omitempty"`
}

// Project copies the shared part of st into a Document stamped with now.
func Project(st model.AppState, now time.Time) Document {
	c := st.Clone()
	return Document{
		Queue:       c.Queue,
		Players:     c.Players,
		Courts:      c.Courts,
		LastUpdated: now.UTC(),
	}
}

func (d Document) Encode() ([]byte, error) {
	return json.Marshal(d)
}

// DecodeDocument parses a stored document and fills typed defaults for
// anything a partial or older writer left out. Entries without an id are
// dropped.
func DecodeDocument(raw []byte) (Document, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return Document{}, ErrInvalidDocument
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	players := make([]model.Player, 0, len(doc.Players))
	for _, p := range doc.Players {
		if p.ID == "" {
			continue
		}
		if _, ok := model.ParseSkillLevel(string(p.SkillLevel)); !ok {
			p.SkillLevel = model.SkillBeginner
		}
		if p.FeeHistory == nil {
			p.FeeHistory = []model.FeeEntry{}
		}
		players = append(players, p)
	}
	doc.Players = players

	courts := make([]model.Court, 0, len(doc.Courts))
	for _, c := range doc.Courts {
		if c.ID <= 0 {
			continue
		}
		if c.Players == nil {
			c.Players = []string{}
		}
		switch c.Status {
		case model.CourtOccupied:
		case model.CourtAvailable:
		default:
			c.Status = model.CourtAvailable
		}
		if c.Status == model.CourtAvailable {
			c.Players = []string{}
			c.StartTime = nil
			c.CurrentGameID = ""
			c.IsDoubles = false
		}
		courts = append(courts, c)
	}
	doc.Courts = courts

	queue := make([]model.QueueItem, 0, len(doc.Queue))
	for _, q := range doc.Queue {
		if q.ID == "" {
			continue
		}
		if q.PlayerIDs == nil {
			q.PlayerIDs = []string{}
		}
		queue = append(queue, q)
	}
	doc.Queue = queue
	return doc, nil
}

// PlayerName resolves an id against the document's players.
func (d Document) PlayerName(id string) string {
	for _, p := range d.Players {
		if p.ID == id {
			return p.Name
		}
	}
	return ""
}

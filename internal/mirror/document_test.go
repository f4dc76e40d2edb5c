package mirror

import (
	"errors"
	"testing"
	"time"

	"courtside-app/internal/model"
)

func TestDecodeDocumentFillsDefaults(t *testing.T) {
	raw := []byte(`{
		"players": [{"id": "p1", "name": "Alice", "skillLevel": "wizard"}, {"name": "no id"}],
		"courts": [
			{"id": 1, "status": "closed", "players": ["p1"]},
			{"id": 2, "status": "occupied", "players": ["p1", "p2"], "currentGameId": "g1"}
		],
		"lastUpdated": "2026-03-01T18:00:00Z"
	}`)
	doc, err := DecodeDocument(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.Queue == nil || len(doc.Queue) != 0 {
		t.Fatalf("queue = %#v, want empty", doc.Queue)
	}
	if len(doc.Players) != 1 {
		t.Fatalf("players = %d, want 1", len(doc.Players))
	}
	p := doc.Players[0]
	if p.SkillLevel != model.SkillBeginner || p.FeeHistory == nil {
		t.Fatalf("player defaults not applied: %+v", p)
	}
	if doc.Courts[0].Status != model.CourtAvailable || len(doc.Courts[0].Players) != 0 {
		t.Fatalf("court 1 = %+v", doc.Courts[0])
	}
	if doc.Courts[1].Status != model.CourtOccupied || doc.Courts[1].CurrentGameID != "g1" {
		t.Fatalf("court 2 = %+v", doc.Courts[1])
	}
	if doc.PlayerName("p1") != "Alice" || doc.PlayerName("p9") != "" {
		t.Fatalf("PlayerName lookup wrong")
	}
}

func TestDecodeDocumentEmptyObject(t *testing.T) {
	doc, err := DecodeDocument([]byte(`{}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.Players == nil || doc.Courts == nil || doc.Queue == nil {
		t.Fatalf("collections must be non-nil: %#v", doc)
	}
}

func TestDecodeDocumentRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "null", "[1,2]", "{not json"} {
		if _, err := DecodeDocument([]byte(raw)); !errors.Is(err, ErrInvalidDocument) {
			t.Fatalf("DecodeDocument(%q) err = %v", raw, err)
		}
	}
}

func TestProjectCopiesSharedFields(t *testing.T) {
	st := model.NewAppState(1, model.DefaultFeeConfig())
	st.Players = append(st.Players, model.Player{ID: "p1", Name: "Alice", FeeHistory: []model.FeeEntry{}})
	st.Queue = append(st.Queue, model.QueueItem{ID: "q1", PlayerIDs: []string{"p1"}})
	now := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)

	doc := Project(st, now)
	st.Players[0].Name = "Changed"
	if doc.Players[0].Name != "Alice" {
		t.Fatalf("projection shares memory with state")
	}
	if !doc.LastUpdated.Equal(now) || doc.CreatedAt != nil {
		t.Fatalf("timestamps = %v, %v", doc.LastUpdated, doc.CreatedAt)
	}
	if len(doc.Queue) != 1 || len(doc.Courts) != 1 {
		t.Fatalf("document = %+v", doc)
	}
}

package model

import (
	"testing"
	"time"
)

func TestNewAppStateNumbersCourts(t *testing.T) {
	s := NewAppState(3, DefaultFeeConfig())
	if len(s.Courts) != 3 {
		t.Fatalf("courts = %d, want 3", len(s.Courts))
	}
	for i, c := range s.Courts {
		if c.ID != i+1 {
			t.Fatalf("court %d id = %d", i, c.ID)
		}
		if c.Status != CourtAvailable || len(c.Players) != 0 || c.StartTime != nil || c.CurrentGameID != "" {
			t.Fatalf("court %d not available: %+v", c.ID, c)
		}
	}
	if s.Players == nil || s.Queue == nil || s.GameSessions == nil || s.MatchHistory == nil {
		t.Fatalf("initial collections must be non-nil")
	}
}

func TestNewAppStateCapsCourts(t *testing.T) {
	if got := len(NewAppState(50, DefaultFeeConfig()).Courts); got != MaxCourts {
		t.Fatalf("courts = %d, want %d", got, MaxCourts)
	}
}

func TestCloneIsDeep(t *testing.T) {
	now := time.Now()
	s := NewAppState(1, DefaultFeeConfig())
	s.Players = append(s.Players, Player{ID: "p1", Name: "Alice", FeeHistory: []FeeEntry{{GameID: "g1", FeeAmount: 3}}})
	s.Courts[0].Players = []string{"p1", "p2"}
	s.Courts[0].StartTime = &now
	s.Queue = append(s.Queue, QueueItem{ID: "q1", PlayerIDs: []string{"p1"}})

	c := s.Clone()
	c.Players[0].FeeHistory[0].Paid = true
	c.Players[0].Name = "Changed"
	c.Courts[0].Players[0] = "x"
	*c.Courts[0].StartTime = now.Add(time.Hour)
	c.Queue[0].PlayerIDs[0] = "y"

	if s.Players[0].FeeHistory[0].Paid || s.Players[0].Name != "Alice" {
		t.Fatalf("player mutated through clone")
	}
	if s.Courts[0].Players[0] != "p1" || !s.Courts[0].StartTime.Equal(now) {
		t.Fatalf("court mutated through clone")
	}
	if s.Queue[0].PlayerIDs[0] != "p1" {
		t.Fatalf("queue mutated through clone")
	}
}

func TestParseSkillLevel(t *testing.T) {
	if got, ok := ParseSkillLevel(" Advanced "); !ok || got != SkillAdvanced {
		t.Fatalf("ParseSkillLevel = %q, %v", got, ok)
	}
	if _, ok := ParseSkillLevel("pro"); ok {
		t.Fatalf("expected pro to be rejected")
	}
}

func TestSharingFlagsActive(t *testing.T) {
	if (SharingFlags{Code: "ABC123"}).Active() {
		t.Fatalf("disabled flags reported active")
	}
	if (SharingFlags{Enabled: true}).Active() {
		t.Fatalf("flags without code reported active")
	}
	if !(SharingFlags{Code: "ABC123", Enabled: true}).Active() {
		t.Fatalf("expected active")
	}
}

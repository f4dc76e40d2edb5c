package fees

import (
	"bytes"
	"strings"
	"testing"

	"courtside-app/internal/model"
)

func TestPerPlayerByGameType(t *testing.T) {
	cfg := model.FeeConfig{SinglesFee: 5, DoublesFee: 3.5}
	if got := PerPlayer(model.GameSingles, cfg); got != 5 {
		t.Fatalf("singles fee = %v", got)
	}
	if got := PerPlayer(model.GameDoubles, cfg); got != 3.5 {
		t.Fatalf("doubles fee = %v", got)
	}
	if GameTypeFor(4) != model.GameDoubles || GameTypeFor(2) != model.GameSingles {
		t.Fatalf("unexpected game type derivation")
	}
}

func TestCourtRental(t *testing.T) {
	perHour := model.FeeConfig{CourtFeeType: model.CourtFeePerHour, CourtFeeAmount: 12.5, NumCourts: 4, RentalHours: 2}
	if got := CourtRental(perHour); got != 100 {
		t.Fatalf("per hour rental = %v, want 100", got)
	}
	perHead := model.FeeConfig{CourtFeeType: model.CourtFeePerHead, CourtFeeAmount: 7, NumCourts: 4, RentalHours: 2}
	if got := CourtRental(perHead); got != 7 {
		t.Fatalf("per head rental = %v, want 7", got)
	}
	if got := CourtRental(model.FeeConfig{}); got != 0 {
		t.Fatalf("unknown type rental = %v, want 0", got)
	}
}

func TestCovers(t *testing.T) {
	if !Covers(0.3, 0.1+0.2) {
		t.Fatalf("expected float noise to be tolerated")
	}
	if Covers(2.99, 3) {
		t.Fatalf("2.99 must not cover 3")
	}
}

func TestBuildReportTotals(t *testing.T) {
	s := model.NewAppState(0, model.DefaultFeeConfig())
	s.Players = []model.Player{
		{ID: "a", Name: "Alice", TotalFees: 6, PaidFees: 3, UnpaidFees: 3, FeeHistory: []model.FeeEntry{{FeeAmount: 3, Paid: true}, {FeeAmount: 3}}},
		{ID: "b", Name: "Bob", TotalFees: 5, PaidFees: 0, UnpaidFees: 5, FeeHistory: []model.FeeEntry{{FeeAmount: 5}}},
		{ID: "c", Name: "Carol"},
	}
	r := BuildReport(s)
	if r.Collected != 3 || r.Outstanding != 8 || r.Total != 11 {
		t.Fatalf("report = %+v", r)
	}
	if r.Collected+r.Outstanding != r.Total {
		t.Fatalf("collected + outstanding != total")
	}
	if r.Players[0].Name != "Bob" || r.Players[1].Name != "Alice" {
		t.Fatalf("rows not ordered by unpaid: %+v", r.Players)
	}
	if r.Players[1].UnpaidGames != 1 {
		t.Fatalf("Alice unpaid games = %d", r.Players[1].UnpaidGames)
	}
}

func TestReportWriteCSV(t *testing.T) {
	s := model.NewAppState(0, model.DefaultFeeConfig())
	s.Players = []model.Player{{ID: "a", Name: "Alice", GamesPlayed: 2, TotalFees: 6, PaidFees: 6}}
	var buf bytes.Buffer
	if err := BuildReport(s).WriteCSV(&buf); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "player,games,total,paid,unpaid,currency\n") {
		t.Fatalf("missing header: %q", out)
	}
	if !strings.Contains(out, "Alice,2,6.00,6.00,0.00,USD") {
		t.Fatalf("missing player row: %q", out)
	}
	if !strings.Contains(out, "collected,,,6.00,,USD") {
		t.Fatalf("missing collected row: %q", out)
	}
}

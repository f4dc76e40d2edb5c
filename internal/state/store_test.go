package state

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"testing"
	"time"

	"courtside-app/internal/model"

	"github.com/charmbracelet/log"
)

type testClock struct {
	t time.Time
}

func (c *testClock) Now() time.Time { return c.t }

func (c *testClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newTestStore(t *testing.T) (*Store, *testClock) {
	t.Helper()
	clock := &testClock{t: time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)}
	cfg := model.DefaultFeeConfig()
	cfg.SinglesFee = 5
	cfg.DoublesFee = 3
	s := New(model.NewAppState(4, cfg),
		WithClock(clock.Now),
		WithIDs(sequentialIDs()),
		WithLogger(log.New(io.Discard)),
	)
	return s, clock
}

func addPlayers(t *testing.T, s *Store, names ...string) []string {
	t.Helper()
	out := make([]string, 0, len(names))
	for _, name := range names {
		p, err := s.AddNewPlayer(name, model.SkillIntermediate)
		if err != nil {
			t.Fatalf("AddNewPlayer(%q): %v", name, err)
		}
		out = append(out, p.ID)
	}
	return out
}

func mustValidate(t *testing.T, s *Store) {
	t.Helper()
	if err := Validate(s.Snapshot()); err != nil {
		t.Fatalf("invariants violated: %v", err)
	}
}

func TestAddNewPlayerValidation(t *testing.T) {
	s, _ := newTestStore(t)
	addPlayers(t, s, "Alice")

	if _, err := s.AddNewPlayer("   ", model.SkillBeginner); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("empty name err = %v", err)
	}
	if _, err := s.AddNewPlayer(" alice ", model.SkillBeginner); !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("duplicate name err = %v", err)
	}
	if _, err := s.AddNewPlayer("Bob", model.SkillLevel("pro")); !errors.Is(err, ErrInvalidSkill) {
		t.Fatalf("invalid skill err = %v", err)
	}

	snap := s.Snapshot()
	if len(snap.Players) != 1 {
		t.Fatalf("players = %d, want 1", len(snap.Players))
	}
	p := snap.Players[0]
	if p.GamesPlayed != 0 || p.InQueue || p.CurrentlyPlaying || p.DonePlaying || p.TotalFees != 0 {
		t.Fatalf("new player not zeroed: %+v", p)
	}
}

func TestEndToEndDoublesMatch(t *testing.T) {
	s, clock := newTestStore(t)
	ids := addPlayers(t, s, "Alice", "Bob", "Carol", "Dan")

	res, err := s.AssignToCourt(1, ids)
	if err != nil || !res.Success {
		t.Fatalf("AssignToCourt: %+v, %v", res, err)
	}
	snap := s.Snapshot()
	court, _ := snap.Court(1)
	if court.Status != model.CourtOccupied || !court.IsDoubles || court.CurrentGameID != res.GameID {
		t.Fatalf("court after assign: %+v", court)
	}
	for _, p := range snap.Players {
		if !p.CurrentlyPlaying {
			t.Fatalf("%s not playing", p.Name)
		}
	}
	if len(snap.GameSessions) != 1 || snap.GameSessions[0].Status != model.SessionActive {
		t.Fatalf("sessions: %+v", snap.GameSessions)
	}
	mustValidate(t, s)

	clock.Advance(31*time.Minute + 40*time.Second)
	record, ok := s.CompleteMatch(1)
	if !ok {
		t.Fatalf("CompleteMatch reported no game")
	}

	snap = s.Snapshot()
	court, _ = snap.Court(1)
	if court.Status != model.CourtAvailable || len(court.Players) != 0 || court.StartTime != nil || court.CurrentGameID != "" {
		t.Fatalf("court after complete: %+v", court)
	}
	for _, p := range snap.Players {
		if p.GamesPlayed != 1 || p.CurrentlyPlaying {
			t.Fatalf("%s after match: %+v", p.Name, p)
		}
		if p.UnpaidFees != 3 || p.TotalFees != 3 || len(p.FeeHistory) != 1 || p.FeeHistory[0].Paid {
			t.Fatalf("%s fees after match: %+v", p.Name, p)
		}
	}
	if len(snap.MatchHistory) != 1 {
		t.Fatalf("match history = %d", len(snap.MatchHistory))
	}
	want := []string{"Alice", "Bob", "Carol", "Dan"}
	if !reflect.DeepEqual(snap.MatchHistory[0].PlayerNames, want) {
		t.Fatalf("names = %v, want %v", snap.MatchHistory[0].PlayerNames, want)
	}
	if record.Duration != 32 {
		t.Fatalf("duration = %d, want 32", record.Duration)
	}
	g := snap.GameSessions[0]
	if g.Status != model.SessionCompleted || g.EndTime == nil || g.Duration != 32 {
		t.Fatalf("session after complete: %+v", g)
	}
	mustValidate(t, s)
}

func TestAssignRejectsBusyPlayersWithoutChange(t *testing.T) {
	s, _ := newTestStore(t)
	ids := addPlayers(t, s, "Alice", "Bob", "Carol", "Dan")
	if _, err := s.AssignToCourt(1, ids[:2]); err != nil {
		t.Fatalf("first assign: %v", err)
	}
	before := s.Snapshot()

	res, err := s.AssignToCourt(2, []string{ids[2], ids[0], ids[3], ids[1]})
	if !errors.Is(err, ErrPlayersBusy) {
		t.Fatalf("err = %v, want ErrPlayersBusy", err)
	}
	var busy *BusyPlayersError
	if !errors.As(err, &busy) {
		t.Fatalf("err is not *BusyPlayersError")
	}
	if res.Success || len(res.Conflicts) != 2 {
		t.Fatalf("result = %+v", res)
	}
	got := map[string]bool{res.Conflicts[0].Name: true, res.Conflicts[1].Name: true}
	if !got["Alice"] || !got["Bob"] {
		t.Fatalf("conflicts = %+v", res.Conflicts)
	}
	if !reflect.DeepEqual(before, s.Snapshot()) {
		t.Fatalf("state changed after rejected assignment")
	}
}

func TestAssignValidation(t *testing.T) {
	s, _ := newTestStore(t)
	ids := addPlayers(t, s, "Alice", "Bob", "Carol")

	cases := []struct {
		name    string
		court   int
		players []string
		want    error
	}{
		{"unknown court", 99, ids[:2], ErrCourtNotFound},
		{"three players", 1, ids, ErrInvalidPlayerCount},
		{"duplicate player", 1, []string{ids[0], ids[0]}, ErrInvalidPlayerCount},
		{"unknown player", 1, []string{ids[0], "ghost"}, ErrPlayerNotFound},
	}
	for _, tc := range cases {
		if _, err := s.AssignToCourt(tc.court, tc.players); !errors.Is(err, tc.want) {
			t.Fatalf("%s: err = %v, want %v", tc.name, err, tc.want)
		}
	}

	if _, err := s.AssignToCourt(1, ids[:2]); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if _, err := s.AssignToCourt(1, []string{ids[2], ids[2]}); !errors.Is(err, ErrCourtOccupied) {
		t.Fatalf("occupied court err = %v", err)
	}
}

func TestCompleteMatchOnIdleCourtIsNoop(t *testing.T) {
	s, _ := newTestStore(t)
	addPlayers(t, s, "Alice")
	notified := 0
	s.Subscribe(func(Event) { notified++ })
	before := s.Snapshot()

	if _, ok := s.CompleteMatch(1); ok {
		t.Fatalf("expected no game on idle court")
	}
	if _, ok := s.CompleteMatch(42); ok {
		t.Fatalf("expected no game on unknown court")
	}
	if !reflect.DeepEqual(before, s.Snapshot()) {
		t.Fatalf("state changed")
	}
	if notified != 0 {
		t.Fatalf("listeners notified %d times for no-ops", notified)
	}
}

func TestCompleteMatchWithoutAutoCalculateSkipsFees(t *testing.T) {
	s, _ := newTestStore(t)
	ids := addPlayers(t, s, "Alice", "Bob")
	if _, err := s.AssignToCourt(1, ids); err != nil {
		t.Fatalf("assign: %v", err)
	}
	// Force the flag off to exercise the guard in CompleteMatch.
	s.mu.Lock()
	s.state.FeeConfig.AutoCalculate = false
	s.mu.Unlock()

	if _, ok := s.CompleteMatch(1); !ok {
		t.Fatalf("complete failed")
	}
	for _, p := range s.Snapshot().Players {
		if p.GamesPlayed != 1 || p.TotalFees != 0 || len(p.FeeHistory) != 0 {
			t.Fatalf("%s charged without auto calculation: %+v", p.Name, p)
		}
	}
}

func TestMatchHistoryKeepsNamesAfterRename(t *testing.T) {
	s, _ := newTestStore(t)
	ids := addPlayers(t, s, "Alice", "Bob")
	if _, err := s.AssignToCourt(2, ids); err != nil {
		t.Fatalf("assign: %v", err)
	}
	s.CompleteMatch(2)
	if err := s.UpdatePlayer(ids[0], "Alicia", ""); err != nil {
		t.Fatalf("UpdatePlayer: %v", err)
	}
	if err := s.UpdatePlayer(ids[1], "alicia", ""); !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("rename to taken name err = %v", err)
	}
	snap := s.Snapshot()
	if snap.MatchHistory[0].PlayerNames[0] != "Alice" {
		t.Fatalf("history rewritten: %v", snap.MatchHistory[0].PlayerNames)
	}
	if p, _ := snap.Player(ids[0]); p.Name != "Alicia" || p.SkillLevel != model.SkillIntermediate {
		t.Fatalf("player after rename: %+v", p)
	}
}

func TestQueueHandoff(t *testing.T) {
	s, _ := newTestStore(t)
	ids := addPlayers(t, s, "Alice", "Bob")

	item, err := s.AddPlayerToQueue(ids, false)
	if err != nil {
		t.Fatalf("AddPlayerToQueue: %v", err)
	}
	for _, p := range s.Snapshot().Players {
		if !p.InQueue {
			t.Fatalf("%s not in queue", p.Name)
		}
	}
	mustValidate(t, s)

	s.RemovePlayerFromQueue(item.ID)
	snap := s.Snapshot()
	if len(snap.Queue) != 0 {
		t.Fatalf("queue = %d, want 0", len(snap.Queue))
	}
	for _, p := range snap.Players {
		if p.InQueue {
			t.Fatalf("%s still in queue", p.Name)
		}
	}
	mustValidate(t, s)
}

func TestRemoveFromQueueRecomputesMembership(t *testing.T) {
	s, _ := newTestStore(t)
	ids := addPlayers(t, s, "Alice", "Bob", "Carol")

	first, _ := s.AddPlayerToQueue([]string{ids[0], ids[1]}, false)
	if _, err := s.AddPlayerToQueue([]string{ids[0], ids[2]}, false); err != nil {
		t.Fatalf("second queue item: %v", err)
	}
	s.RemovePlayerFromQueue(first.ID)

	snap := s.Snapshot()
	alice, _ := snap.Player(ids[0])
	bob, _ := snap.Player(ids[1])
	if !alice.InQueue {
		t.Fatalf("Alice still queued in second item but flag cleared")
	}
	if bob.InQueue {
		t.Fatalf("Bob flag not cleared")
	}
	mustValidate(t, s)

	s.RemovePlayerFromQueue("missing")
	if !reflect.DeepEqual(snap, s.Snapshot()) {
		t.Fatalf("removing unknown queue item changed state")
	}
}

func TestAddPlayerToQueueChecksCount(t *testing.T) {
	s, _ := newTestStore(t)
	ids := addPlayers(t, s, "Alice", "Bob")
	if _, err := s.AddPlayerToQueue(ids, true); !errors.Is(err, ErrInvalidPlayerCount) {
		t.Fatalf("err = %v", err)
	}
}

func TestAssignFromQueue(t *testing.T) {
	s, _ := newTestStore(t)
	ids := addPlayers(t, s, "Alice", "Bob", "Carol", "Dan")
	item, _ := s.AddPlayerToQueue(ids, true)

	res, err := s.AssignFromQueue(3, item.ID)
	if err != nil || !res.Success {
		t.Fatalf("AssignFromQueue: %+v %v", res, err)
	}
	snap := s.Snapshot()
	if len(snap.Queue) != 0 {
		t.Fatalf("queue item not consumed")
	}
	court, _ := snap.Court(3)
	if !court.IsDoubles || !reflect.DeepEqual(court.Players, ids) {
		t.Fatalf("court = %+v", court)
	}
	for _, p := range snap.Players {
		if p.InQueue || !p.CurrentlyPlaying {
			t.Fatalf("%s flags = %+v", p.Name, p)
		}
	}
	mustValidate(t, s)

	if _, err := s.AssignFromQueue(3, "missing"); !errors.Is(err, ErrQueueItemNotFound) {
		t.Fatalf("missing queue item err = %v", err)
	}
}

func TestAssignLeavesQueueFlagsUntouched(t *testing.T) {
	s, _ := newTestStore(t)
	ids := addPlayers(t, s, "Alice", "Bob")
	s.AddPlayerToQueue(ids, false)
	if _, err := s.AssignToCourt(1, ids); err != nil {
		t.Fatalf("assign: %v", err)
	}
	for _, p := range s.Snapshot().Players {
		if !p.InQueue {
			t.Fatalf("assignment cleared inQueue for %s", p.Name)
		}
	}
}

func playMatch(t *testing.T, s *Store, court int, ids []string) {
	t.Helper()
	if _, err := s.AssignToCourt(court, ids); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if _, ok := s.CompleteMatch(court); !ok {
		t.Fatalf("complete: no game")
	}
}

func TestMarkFeesAsPaidAlignedPayments(t *testing.T) {
	s, _ := newTestStore(t)
	ids := addPlayers(t, s, "Alice", "Bob")
	playMatch(t, s, 1, ids)
	playMatch(t, s, 1, ids)

	if err := s.MarkFeesAsPaid(ids[0], 5); err != nil {
		t.Fatalf("MarkFeesAsPaid: %v", err)
	}
	alice, _ := s.Snapshot().Player(ids[0])
	if alice.PaidFees != 5 || alice.UnpaidFees != 5 || alice.TotalFees != 10 {
		t.Fatalf("balances = %+v", alice)
	}
	if !alice.FeeHistory[0].Paid || alice.FeeHistory[1].Paid {
		t.Fatalf("history flags = %+v", alice.FeeHistory)
	}

	if err := s.MarkAllFeesPaid(ids[0]); err != nil {
		t.Fatalf("MarkAllFeesPaid: %v", err)
	}
	alice, _ = s.Snapshot().Player(ids[0])
	if alice.PaidFees != 10 || alice.UnpaidFees != 0 || !alice.FeeHistory[1].Paid {
		t.Fatalf("after pay all = %+v", alice)
	}
	mustValidate(t, s)
}

func TestMarkFeesAsPaidPartialPaymentsSettleCumulatively(t *testing.T) {
	s, _ := newTestStore(t)
	ids := addPlayers(t, s, "Alice", "Bob")
	playMatch(t, s, 1, ids)

	if err := s.MarkFeesAsPaid(ids[0], 2); err != nil {
		t.Fatalf("first payment: %v", err)
	}
	alice, _ := s.Snapshot().Player(ids[0])
	if alice.FeeHistory[0].Paid || alice.PaidFees != 2 || alice.UnpaidFees != 3 {
		t.Fatalf("after partial = %+v", alice)
	}
	if err := s.MarkFeesAsPaid(ids[0], 3); err != nil {
		t.Fatalf("second payment: %v", err)
	}
	alice, _ = s.Snapshot().Player(ids[0])
	if !alice.FeeHistory[0].Paid || alice.PaidFees != 5 || alice.UnpaidFees != 0 {
		t.Fatalf("after completing payment = %+v", alice)
	}
	mustValidate(t, s)
}

func TestMarkFeesAsPaidCapsOverpayment(t *testing.T) {
	s, _ := newTestStore(t)
	ids := addPlayers(t, s, "Alice", "Bob")
	playMatch(t, s, 1, ids)

	if err := s.MarkFeesAsPaid(ids[1], 50); err != nil {
		t.Fatalf("MarkFeesAsPaid: %v", err)
	}
	bob, _ := s.Snapshot().Player(ids[1])
	if bob.PaidFees != 5 || bob.UnpaidFees != 0 || bob.TotalFees != 5 {
		t.Fatalf("balances = %+v", bob)
	}
	if err := s.MarkFeesAsPaid(ids[1], -1); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("negative amount err = %v", err)
	}
	if err := s.MarkFeesAsPaid("ghost", 1); !errors.Is(err, ErrPlayerNotFound) {
		t.Fatalf("unknown player err = %v", err)
	}
	mustValidate(t, s)
}

func TestMarkPlayersAsDonePlayingSkipsPlayers(t *testing.T) {
	s, _ := newTestStore(t)
	ids := addPlayers(t, s, "Alice", "Bob", "Carol")
	if _, err := s.AssignToCourt(1, ids[:2]); err != nil {
		t.Fatalf("assign: %v", err)
	}
	s.MarkPlayersAsDonePlaying(ids)
	s.MarkPlayersAsDonePlaying(ids)

	snap := s.Snapshot()
	for _, p := range snap.Players {
		if p.CurrentlyPlaying && p.DonePlaying {
			t.Fatalf("%s marked done while playing", p.Name)
		}
	}
	carol, _ := snap.Player(ids[2])
	if !carol.DonePlaying {
		t.Fatalf("Carol not marked done")
	}

	s.MarkPlayersAsActive([]string{ids[2]})
	carol, _ = s.Snapshot().Player(ids[2])
	if carol.DonePlaying {
		t.Fatalf("Carol still done after reactivation")
	}
}

func TestUpdateFeeConfigForcesPolicy(t *testing.T) {
	s, _ := newTestStore(t)
	cfg, err := s.UpdateFeeConfig(model.FeeConfig{
		SinglesFee:     8,
		DoublesFee:     4,
		CourtFeeType:   model.CourtFeePerHead,
		CourtFeeAmount: 2,
		AutoCalculate:  false,
		RequirePayment: true,
	})
	if err != nil {
		t.Fatalf("UpdateFeeConfig: %v", err)
	}
	if !cfg.AutoCalculate || cfg.RequirePayment {
		t.Fatalf("policy flags not forced: %+v", cfg)
	}
	if cfg.Currency != "USD" {
		t.Fatalf("empty currency should keep previous, got %q", cfg.Currency)
	}
	if got := s.Snapshot().FeeConfig; got != cfg {
		t.Fatalf("stored config = %+v", got)
	}
	if _, err := s.UpdateFeeConfig(model.FeeConfig{SinglesFee: -1}); !errors.Is(err, ErrInvalidFeeConfig) {
		t.Fatalf("negative fee err = %v", err)
	}
	if _, err := s.UpdateFeeConfig(model.FeeConfig{CourtFeeType: "perGame"}); !errors.Is(err, ErrInvalidFeeConfig) {
		t.Fatalf("unknown court fee type err = %v", err)
	}
}

func TestAddAndRemoveCourts(t *testing.T) {
	s, _ := newTestStore(t)
	court, err := s.AddCourt()
	if err != nil || court.ID != 5 {
		t.Fatalf("AddCourt = %+v, %v", court, err)
	}
	if err := s.RemoveCourt(3); err != nil {
		t.Fatalf("RemoveCourt: %v", err)
	}
	court, _ = s.AddCourt()
	if court.ID != 6 {
		t.Fatalf("new court id = %d, want 6", court.ID)
	}

	for len(s.Snapshot().Courts) < model.MaxCourts {
		if _, err := s.AddCourt(); err != nil {
			t.Fatalf("AddCourt below cap: %v", err)
		}
	}
	if _, err := s.AddCourt(); !errors.Is(err, ErrCourtLimit) {
		t.Fatalf("cap err = %v", err)
	}

	ids := addPlayers(t, s, "Alice", "Bob")
	if _, err := s.AssignToCourt(1, ids); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if err := s.RemoveCourt(1); !errors.Is(err, ErrCourtOccupied) {
		t.Fatalf("remove occupied err = %v", err)
	}
	if _, ok := s.Snapshot().Court(1); !ok {
		t.Fatalf("occupied court removed")
	}
	if err := s.RemoveCourt(404); err != nil {
		t.Fatalf("remove unknown court err = %v", err)
	}
}

type recordingWriter struct {
	saved   []model.AppState
	cleared int
}

func (w *recordingWriter) SaveState(s model.AppState) error {
	w.saved = append(w.saved, s)
	return nil
}

func (w *recordingWriter) ClearState() error {
	w.cleared++
	return nil
}

func TestPersistListenerAndReset(t *testing.T) {
	s, _ := newTestStore(t)
	w := &recordingWriter{}
	unsubscribe := s.Subscribe(PersistTo(w, log.New(io.Discard)))

	ids := addPlayers(t, s, "Alice", "Bob")
	s.AddPlayerToQueue(ids, false)
	if len(w.saved) != 3 {
		t.Fatalf("saves = %d, want 3", len(w.saved))
	}
	if len(w.saved[2].Queue) != 1 {
		t.Fatalf("last saved snapshot missing queue item")
	}

	s.ResetAll()
	if w.cleared != 1 {
		t.Fatalf("clears = %d, want 1", w.cleared)
	}
	snap := s.Snapshot()
	if len(snap.Players) != 0 || len(snap.Queue) != 0 || len(snap.Courts) != 4 {
		t.Fatalf("state after reset = %+v", snap)
	}

	unsubscribe()
	addPlayers(t, s, "Carol")
	if len(w.saved) != 3 {
		t.Fatalf("listener called after unsubscribe")
	}
}

func TestFeeConservationAcrossOperations(t *testing.T) {
	s, clock := newTestStore(t)
	ids := addPlayers(t, s, "Alice", "Bob", "Carol", "Dan", "Eve")
	for round := 0; round < 5; round++ {
		playMatch(t, s, 1, ids[:4])
		clock.Advance(20 * time.Minute)
		playMatch(t, s, 2, []string{ids[4], ids[round%4]})
		if err := s.MarkFeesAsPaid(ids[round%5], 3); err != nil {
			t.Fatalf("payment: %v", err)
		}
		mustValidate(t, s)
	}
	total, paid, unpaid := 0.0, 0.0, 0.0
	for _, p := range s.Snapshot().Players {
		total += p.TotalFees
		paid += p.PaidFees
		unpaid += p.UnpaidFees
	}
	if total != paid+unpaid {
		t.Fatalf("total %.2f != paid %.2f + unpaid %.2f", total, paid, unpaid)
	}
}

func TestListenersSeeCommitOrder(t *testing.T) {
	s, _ := newTestStore(t)
	var ops []Op
	s.Subscribe(func(ev Event) {
		ops = append(ops, ev.Op)
		if len(ev.Next.Players) < len(ev.Prev.Players) {
			t.Errorf("player count went backwards")
		}
	})
	ids := addPlayers(t, s, "Alice", "Bob")
	s.AssignToCourt(1, ids)
	s.CompleteMatch(1)
	want := []Op{OpAddPlayer, OpAddPlayer, OpAssignToCourt, OpCompleteMatch}
	if !reflect.DeepEqual(ops, want) {
		t.Fatalf("ops = %v, want %v", ops, want)
	}
}

func TestListenerCanReadDuringConcurrentCommit(t *testing.T) {
	s, _ := newTestStore(t)
	entered := make(chan struct{})
	release := make(chan struct{})
	first := true
	var seen int
	s.Subscribe(func(ev Event) {
		if !first {
			return
		}
		first = false
		close(entered)
		<-release
		seen = len(s.Snapshot().Players)
	})

	done := make(chan struct{}, 2)
	go func() {
		_, _ = s.AddNewPlayer("Alice", model.SkillBeginner)
		done <- struct{}{}
	}()
	<-entered
	go func() {
		_, _ = s.AddNewPlayer("Bob", model.SkillBeginner)
		done <- struct{}{}
	}()
	time.Sleep(20 * time.Millisecond)
	close(release)

	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatalf("store blocked: listener read waited on a pending commit")
		}
	}
	if seen != 1 {
		t.Fatalf("listener saw %d players, want the committed 1", seen)
	}
	if got := len(s.Snapshot().Players); got != 2 {
		t.Fatalf("players = %d, want 2", got)
	}
}

func TestSnapshotDoesNotWaitForListeners(t *testing.T) {
	s, _ := newTestStore(t)
	entered := make(chan struct{})
	release := make(chan struct{})
	s.Subscribe(func(Event) {
		close(entered)
		<-release
	})
	go func() { _, _ = s.AddNewPlayer("Alice", model.SkillBeginner) }()
	<-entered
	defer close(release)

	got := make(chan int, 1)
	go func() { got <- len(s.Snapshot().Players) }()
	select {
	case n := <-got:
		if n != 1 {
			t.Fatalf("players = %d, want 1", n)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Snapshot blocked behind a running listener")
	}
}

package state

import (
	"fmt"
	"math"
	"strings"
	"time"

	"courtside-app/internal/fees"
	"courtside-app/internal/model"
)

// The functions in this file are pure: each takes the previous state and
// returns either a wholly new state or an error. On error the previous state
// is returned unchanged.

func AddNewPlayer(s model.AppState, id, name string, skill model.SkillLevel, now time.Time) (model.AppState, model.Player, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return s, model.Player{}, ErrEmptyName
	}
	if skill == "" {
		skill = model.SkillBeginner
	}
	skill, ok := model.ParseSkillLevel(string(skill))
	if !ok {
		return s, model.Player{}, ErrInvalidSkill
	}
	if nameTaken(s, name, "") {
		return s, model.Player{}, ErrDuplicateName
	}
	player := model.Player{
		ID:         id,
		Name:       name,
		SkillLevel: skill,
		FeeHistory: []model.FeeEntry{},
		CreatedAt:  now,
	}
	next := s.Clone()
	next.Players = append(next.Players, player)
	return next, player, nil
}

// UpdatePlayer renames a player or changes their skill level. Match history
// keeps the names captured at completion time.
func UpdatePlayer(s model.AppState, id, name string, skill model.SkillLevel) (model.AppState, error) {
	idx := s.PlayerIndex(id)
	if idx < 0 {
		return s, ErrPlayerNotFound
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return s, ErrEmptyName
	}
	if skill == "" {
		skill = s.Players[idx].SkillLevel
	}
	skill, ok := model.ParseSkillLevel(string(skill))
	if !ok {
		return s, ErrInvalidSkill
	}
	if nameTaken(s, name, id) {
		return s, ErrDuplicateName
	}
	current := s.Players[idx]
	if current.Name == name && current.SkillLevel == skill {
		return s, ErrNoChange
	}
	next := s.Clone()
	next.Players[idx].Name = name
	next.Players[idx].SkillLevel = skill
	return next, nil
}

func nameTaken(s model.AppState, name, exceptID string) bool {
	for _, p := range s.Players {
		if p.ID != exceptID && strings.EqualFold(strings.TrimSpace(p.Name), name) {
			return true
		}
	}
	return false
}

// AssignToCourt occupies an available court with 2 or 4 players and opens a
// game session under gameID. Queue flags are left as they are.
func AssignToCourt(s model.AppState, courtID int, playerIDs []string, gameID string, now time.Time) (model.AppState, error) {
	courtIdx := s.CourtIndex(courtID)
	if courtIdx < 0 {
		return s, ErrCourtNotFound
	}
	if s.Courts[courtIdx].Occupied() {
		return s, ErrCourtOccupied
	}
	if len(playerIDs) != 2 && len(playerIDs) != 4 {
		return s, ErrInvalidPlayerCount
	}
	seen := make(map[string]bool, len(playerIDs))
	busy := []model.Player{}
	for _, id := range playerIDs {
		if seen[id] {
			return s, ErrInvalidPlayerCount
		}
		seen[id] = true
		p, ok := s.Player(id)
		if !ok {
			return s, fmt.Errorf("%w: %s", ErrPlayerNotFound, id)
		}
		if p.CurrentlyPlaying {
			busy = append(busy, p)
		}
	}
	if len(busy) > 0 {
		return s, &BusyPlayersError{Players: busy}
	}

	gameType := fees.GameTypeFor(len(playerIDs))
	feePerPlayer := fees.PerPlayer(gameType, s.FeeConfig)
	start := now

	next := s.Clone()
	court := &next.Courts[courtIdx]
	court.Status = model.CourtOccupied
	court.Players = append([]string{}, playerIDs...)
	court.StartTime = &start
	court.IsDoubles = gameType == model.GameDoubles
	court.CurrentGameID = gameID

	next.GameSessions = append(next.GameSessions, model.GameSession{
		ID:           gameID,
		CourtID:      courtID,
		PlayerIDs:    append([]string{}, playerIDs...),
		GameType:     gameType,
		StartTime:    now,
		FeePerPlayer: feePerPlayer,
		TotalFees:    fees.Round(feePerPlayer * float64(len(playerIDs))),
		Status:       model.SessionActive,
	})

	for i := range next.Players {
		if seen[next.Players[i].ID] {
			next.Players[i].CurrentlyPlaying = true
		}
	}
	return next, nil
}

// AssignFromQueue assigns a queued group to a court and drops the queue item
// in the same transition.
func AssignFromQueue(s model.AppState, courtID int, queueID, gameID string, now time.Time) (model.AppState, error) {
	item, ok := s.QueueItem(queueID)
	if !ok {
		return s, ErrQueueItemNotFound
	}
	next, err := AssignToCourt(s, courtID, item.PlayerIDs, gameID, now)
	if err != nil {
		return s, err
	}
	return RemovePlayerFromQueue(next, queueID)
}

// CompleteMatch closes the active game on a court, charges its players when
// auto calculation is on, frees the court and appends the match record.
func CompleteMatch(s model.AppState, courtID int, now time.Time) (model.AppState, model.MatchRecord, error) {
	courtIdx := s.CourtIndex(courtID)
	if courtIdx < 0 {
		return s, model.MatchRecord{}, ErrNoChange
	}
	court := s.Courts[courtIdx]
	if !court.Occupied() || court.CurrentGameID == "" {
		return s, model.MatchRecord{}, ErrNoChange
	}

	next := s.Clone()

	gameType := fees.GameTypeFor(len(court.Players))
	feePerPlayer := fees.PerPlayer(gameType, s.FeeConfig)
	start := now
	if court.StartTime != nil {
		start = *court.StartTime
	}
	sessionIdx := -1
	for i, g := range next.GameSessions {
		if g.ID == court.CurrentGameID {
			sessionIdx = i
			break
		}
	}
	if sessionIdx >= 0 {
		g := next.GameSessions[sessionIdx]
		gameType = g.GameType
		feePerPlayer = g.FeePerPlayer
		start = g.StartTime
	}
	duration := int(math.Round(now.Sub(start).Minutes()))
	if duration < 0 {
		duration = 0
	}
	if sessionIdx >= 0 && next.GameSessions[sessionIdx].Status == model.SessionActive {
		end := now
		g := &next.GameSessions[sessionIdx]
		g.Status = model.SessionCompleted
		g.EndTime = &end
		g.Duration = duration
	}

	onCourt := make(map[string]bool, len(court.Players))
	for _, id := range court.Players {
		onCourt[id] = true
	}
	charge := s.FeeConfig.AutoCalculate
	for i := range next.Players {
		p := &next.Players[i]
		if !onCourt[p.ID] {
			continue
		}
		p.CurrentlyPlaying = false
		p.GamesPlayed++
		if charge {
			p.TotalFees = fees.Round(p.TotalFees + feePerPlayer)
			p.UnpaidFees = fees.Round(p.UnpaidFees + feePerPlayer)
			p.FeeHistory = append(p.FeeHistory, model.FeeEntry{
				GameID:    court.CurrentGameID,
				CourtID:   court.ID,
				GameType:  gameType,
				FeeAmount: feePerPlayer,
				Timestamp: now,
			})
		}
	}

	names := make([]string, 0, len(court.Players))
	for _, id := range court.Players {
		if p, ok := s.Player(id); ok {
			names = append(names, p.Name)
		} else {
			names = append(names, id)
		}
	}
	record := model.MatchRecord{
		ID:           court.CurrentGameID,
		CourtID:      court.ID,
		PlayerIDs:    append([]string{}, court.Players...),
		PlayerNames:  names,
		GameType:     gameType,
		StartTime:    start,
		EndTime:      now,
		Duration:     duration,
		FeePerPlayer: feePerPlayer,
		TotalFees:    fees.Round(feePerPlayer * float64(len(court.Players))),
	}
	next.MatchHistory = append(next.MatchHistory, record)

	next.Courts[courtIdx] = model.NewCourt(court.ID)
	return next, record, nil
}

// AddPlayerToQueue appends a queue request. Availability of the players is
// not checked here; callers pick from idle players.
func AddPlayerToQueue(s model.AppState, id string, playerIDs []string, isDoubles bool, now time.Time) (model.AppState, model.QueueItem, error) {
	want := 2
	if isDoubles {
		want = 4
	}
	if len(playerIDs) != want {
		return s, model.QueueItem{}, ErrInvalidPlayerCount
	}
	item := model.QueueItem{
		ID:            id,
		PlayerIDs:     append([]string{}, playerIDs...),
		RequestedTime: now,
		IsDoubles:     isDoubles,
	}
	queued := make(map[string]bool, len(playerIDs))
	for _, pid := range playerIDs {
		queued[pid] = true
	}
	next := s.Clone()
	next.Queue = append(next.Queue, item)
	for i := range next.Players {
		if queued[next.Players[i].ID] {
			next.Players[i].InQueue = true
		}
	}
	return next, item, nil
}

// RemovePlayerFromQueue drops a queue item and recomputes inQueue for its
// players from the remaining queue.
func RemovePlayerFromQueue(s model.AppState, queueID string) (model.AppState, error) {
	idx := -1
	for i, q := range s.Queue {
		if q.ID == queueID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return s, ErrNoChange
	}
	next := s.Clone()
	removed := next.Queue[idx]
	next.Queue = append(next.Queue[:idx], next.Queue[idx+1:]...)

	stillQueued := map[string]bool{}
	for _, q := range next.Queue {
		for _, pid := range q.PlayerIDs {
			stillQueued[pid] = true
		}
	}
	affected := make(map[string]bool, len(removed.PlayerIDs))
	for _, pid := range removed.PlayerIDs {
		affected[pid] = true
	}
	for i := range next.Players {
		if affected[next.Players[i].ID] {
			next.Players[i].InQueue = stillQueued[next.Players[i].ID]
		}
	}
	return next, nil
}

// MarkFeesAsPaid applies a payment to a player's outstanding balance. The
// applied amount is capped at the unpaid balance. Fee history entries are
// settled oldest first, each only once cumulative payments cover it in full.
func MarkFeesAsPaid(s model.AppState, playerID string, amount float64) (model.AppState, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return s, ErrInvalidAmount
	}
	idx := s.PlayerIndex(playerID)
	if idx < 0 {
		return s, ErrPlayerNotFound
	}
	current := s.Players[idx]
	applied := math.Min(amount, current.UnpaidFees)
	if applied <= 0 {
		return s, ErrNoChange
	}

	next := s.Clone()
	p := &next.Players[idx]

	settled := 0.0
	for _, e := range p.FeeHistory {
		if e.Paid {
			settled += e.FeeAmount
		}
	}
	credit := math.Max(0, p.PaidFees-settled) + applied
	for i := range p.FeeHistory {
		e := &p.FeeHistory[i]
		if e.Paid {
			continue
		}
		if !fees.Covers(credit, e.FeeAmount) {
			break
		}
		e.Paid = true
		credit -= e.FeeAmount
	}

	p.PaidFees = fees.Round(p.PaidFees + applied)
	p.UnpaidFees = fees.Round(math.Max(0, p.UnpaidFees-applied))
	return next, nil
}

func MarkAllFeesPaid(s model.AppState, playerID string) (model.AppState, error) {
	p, ok := s.Player(playerID)
	if !ok {
		return s, ErrPlayerNotFound
	}
	if p.UnpaidFees <= 0 {
		return s, ErrNoChange
	}
	return MarkFeesAsPaid(s, playerID, p.UnpaidFees)
}

// MarkPlayersAsDonePlaying flags idle players as finished for the session.
// Players on court are skipped.
func MarkPlayersAsDonePlaying(s model.AppState, playerIDs []string) (model.AppState, error) {
	return setDonePlaying(s, playerIDs, true)
}

func MarkPlayersAsActive(s model.AppState, playerIDs []string) (model.AppState, error) {
	return setDonePlaying(s, playerIDs, false)
}

func setDonePlaying(s model.AppState, playerIDs []string, done bool) (model.AppState, error) {
	want := make(map[string]bool, len(playerIDs))
	for _, id := range playerIDs {
		want[id] = true
	}
	var next model.AppState
	changed := false
	for i, p := range s.Players {
		if !want[p.ID] || p.DonePlaying == done {
			continue
		}
		if done && p.CurrentlyPlaying {
			continue
		}
		if !changed {
			next = s.Clone()
			changed = true
		}
		next.Players[i].DonePlaying = done
	}
	if !changed {
		return s, ErrNoChange
	}
	return next, nil
}

// UpdateFeeConfig replaces the fee configuration. Automatic calculation is
// always on and payment requirement always off.
func UpdateFeeConfig(s model.AppState, cfg model.FeeConfig) (model.AppState, error) {
	if cfg.SinglesFee < 0 || cfg.DoublesFee < 0 || cfg.CourtFeeAmount < 0 || cfg.NumCourts < 0 || cfg.RentalHours < 0 {
		return s, ErrInvalidFeeConfig
	}
	switch cfg.CourtFeeType {
	case "":
		cfg.CourtFeeType = model.CourtFeePerHour
	case model.CourtFeePerHead, model.CourtFeePerHour:
	default:
		return s, ErrInvalidFeeConfig
	}
	cfg.Currency = strings.TrimSpace(cfg.Currency)
	if cfg.Currency == "" {
		cfg.Currency = s.FeeConfig.Currency
	}
	cfg.AutoCalculate = true
	cfg.RequirePayment = false
	if cfg == s.FeeConfig {
		return s, ErrNoChange
	}
	next := s.Clone()
	next.FeeConfig = cfg
	return next, nil
}

// AddCourt appends an available court numbered one past the highest id.
func AddCourt(s model.AppState) (model.AppState, model.Court, error) {
	if len(s.Courts) >= model.MaxCourts {
		return s, model.Court{}, ErrCourtLimit
	}
	maxID := 0
	for _, c := range s.Courts {
		if c.ID > maxID {
			maxID = c.ID
		}
	}
	court := model.NewCourt(maxID + 1)
	next := s.Clone()
	next.Courts = append(next.Courts, court)
	return next, court, nil
}

func RemoveCourt(s model.AppState, courtID int) (model.AppState, error) {
	idx := s.CourtIndex(courtID)
	if idx < 0 {
		return s, ErrNoChange
	}
	if s.Courts[idx].Occupied() {
		return s, ErrCourtOccupied
	}
	next := s.Clone()
	next.Courts = append(next.Courts[:idx], next.Courts[idx+1:]...)
	return next, nil
}

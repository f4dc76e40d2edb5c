package model

import (
	"strings"
	"time"
)

type SkillLevel string
type GameType string
type CourtStatus string
type SessionStatus string
type CourtFeeType string

const (
	SkillBeginner     SkillLevel = "beginner"
	SkillIntermediate SkillLevel = "intermediate"
	SkillAdvanced     SkillLevel = "advanced"

	GameSingles GameType = "singles"
	GameDoubles GameType = "doubles"

	CourtAvailable CourtStatus = "available"
	CourtOccupied  CourtStatus = "occupied"

	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"

	CourtFeePerHead CourtFeeType = "perHead"
	CourtFeePerHour CourtFeeType = "perHour"
)

const MaxCourts = 20

func ParseSkillLevel(value string) (SkillLevel, bool) {
	switch SkillLevel(strings.ToLower(strings.TrimSpace(value))) {
	case SkillBeginner:
		return SkillBeginner, true
	case SkillIntermediate:
		return SkillIntermediate, true
	case SkillAdvanced:
		return SkillAdvanced, true
	}
	return "", false
}

type FeeEntry struct {
	GameID    string    `json:"gameId"`
	CourtID   int       `json:"courtId"`
	GameType  GameType  `json:"gameType"`
	FeeAmount float64   `json:"feeAmount"`
	Timestamp time.Time `json:"timestamp"`
	Paid      bool      `json:"paid"`
}

type Player struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	SkillLevel       SkillLevel `json:"skillLevel"`
	GamesPlayed      int        `json:"gamesPlayed"`
	InQueue          bool       `json:"inQueue"`
	CurrentlyPlaying bool       `json:"currentlyPlaying"`
	DonePlaying      bool       `json:"donePlaying"`
	TotalFees        float64    `json:"totalFees"`
	PaidFees         float64    `json:"paidFees"`
	UnpaidFees       float64    `json:"unpaidFees"`
	FeeHistory       []FeeEntry `json:"feeHistory"`
	CreatedAt        time.Time  `json:"createdAt"`
}

type Court struct {
	ID            int         `json:"id"`
	Status        CourtStatus `json:"status"`
	Players       []string    `json:"players"`
	StartTime     *time.Time  `json:"startTime"`
	IsDoubles     bool        `json:"isDoubles"`
	CurrentGameID string      `json:"currentGameId,omitempty"`
}

func (c Court) Occupied() bool {
	return c.Status == CourtOccupied
}

type QueueItem struct {
	ID            string    `json:"id"`
	PlayerIDs     []string  `json:"playerIds"`
	RequestedTime time.Time `json:"requestedTime"`
	IsDoubles     bool      `json:"isDoubles"`
}

type GameSession struct {
	ID           string        `json:"id"`
	CourtID      int           `json:"courtId"`
	PlayerIDs    []string      `json:"playerIds"`
	GameType     GameType      `json:"gameType"`
	StartTime    time.Time     `json:"startTime"`
	EndTime      *time.Time    `json:"endTime"`
	Duration     int           `json:"duration"`
	FeePerPlayer float64       `json:"feePerPlayer"`
	TotalFees    float64       `json:"totalFees"`
	Status       SessionStatus `json:"status"`
}

type MatchRecord struct {
	ID           string    `json:"id"`
	CourtID      int       `json:"courtId"`
	PlayerIDs    []string  `json:"playerIds"`
	PlayerNames  []string  `json:"playerNames"`
	GameType     GameType  `json:"gameType"`
	StartTime    time.Time `json:"startTime"`
	EndTime      time.Time `json:"endTime"`
	Duration     int       `json:"duration"`
	FeePerPlayer float64   `json:"feePerPlayer"`
	TotalFees    float64   `json:"totalFees"`
}

type FeeConfig struct {
	SinglesFee     float64      `json:"singlesFee" toml:"singles_fee"`
	DoublesFee     float64      `json:"doublesFee" toml:"doubles_fee"`
	Currency       string       `json:"currency" toml:"currency"`
	CourtFeeType   CourtFeeType `json:"courtFeeType" toml:"court_fee_type"`
	CourtFeeAmount float64      `json:"courtFeeAmount" toml:"court_fee_amount"`
	NumCourts      int          `json:"numCourts" toml:"num_courts"`
	RentalHours    float64      `json:"rentalHours" toml:"rental_hours"`
	AutoCalculate  bool         `json:"autoCalculate" toml:"-"`
	RequirePayment bool         `json:"requirePayment" toml:"-"`
}

func DefaultFeeConfig() FeeConfig {
	return FeeConfig{
		SinglesFee:     5,
		DoublesFee:     3,
		Currency:       "USD",
		CourtFeeType:   CourtFeePerHour,
		CourtFeeAmount: 0,
		NumCourts:      4,
		RentalHours:    2,
		AutoCalculate:  true,
		RequirePayment: false,
	}
}

type AppState struct {
	Players      []Player      `json:"players"`
	Courts       []Court       `json:"courts"`
	Queue        []QueueItem   `json:"queue"`
	FeeConfig    FeeConfig     `json:"feeConfig"`
	GameSessions []GameSession `json:"gameSessions"`
	MatchHistory []MatchRecord `json:"matchHistory"`
}

// NewAppState returns the empty initial state with courts numbered 1..courts.
func NewAppState(courts int, fees FeeConfig) AppState {
	if courts < 0 {
		courts = 0
	}
	if courts > MaxCourts {
		courts = MaxCourts
	}
	s := AppState{
		Players:      []Player{},
		Courts:       make([]Court, 0, courts),
		Queue:        []QueueItem{},
		FeeConfig:    fees,
		GameSessions: []GameSession{},
		MatchHistory: []MatchRecord{},
	}
	for i := 1; i <= courts; i++ {
		s.Courts = append(s.Courts, NewCourt(i))
	}
	return s
}

func NewCourt(id int) Court {
	return Court{ID: id, Status: CourtAvailable, Players: []string{}}
}

func (s AppState) PlayerIndex(id string) int {
	for i, p := range s.Players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (s AppState) CourtIndex(id int) int {
	for i, c := range s.Courts {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (s AppState) Player(id string) (Player, bool) {
	if i := s.PlayerIndex(id); i >= 0 {
		return s.Players[i], true
	}
	return Player{}, false
}

func (s AppState) Court(id int) (Court, bool) {
	if i := s.CourtIndex(id); i >= 0 {
		return s.Courts[i], true
	}
	return Court{}, false
}

func (s AppState) QueueItem(id string) (QueueItem, bool) {
	for _, q := range s.Queue {
		if q.ID == id {
			return q, true
		}
	}
	return QueueItem{}, false
}

// Clone returns a deep copy; the result shares no slices or pointers with s.
func (s AppState) Clone() AppState {
	out := AppState{FeeConfig: s.FeeConfig}

	out.Players = make([]Player, len(s.Players))
	for i, p := range s.Players {
		p.FeeHistory = append([]FeeEntry{}, p.FeeHistory...)
		out.Players[i] = p
	}

	out.Courts = make([]Court, len(s.Courts))
	for i, c := range s.Courts {
		c.Players = append([]string{}, c.Players...)
		c.StartTime = cloneTime(c.StartTime)
		out.Courts[i] = c
	}

	out.Queue = make([]QueueItem, len(s.Queue))
	for i, q := range s.Queue {
		q.PlayerIDs = append([]string{}, q.PlayerIDs...)
		out.Queue[i] = q
	}

	out.GameSessions = make([]GameSession, len(s.GameSessions))
	for i, g := range s.GameSessions {
		g.PlayerIDs = append([]string{}, g.PlayerIDs...)
		g.EndTime = cloneTime(g.EndTime)
		out.GameSessions[i] = g
	}

	out.MatchHistory = make([]MatchRecord, len(s.MatchHistory))
	for i, m := range s.MatchHistory {
		m.PlayerIDs = append([]string{}, m.PlayerIDs...)
		m.PlayerNames = append([]string{}, m.PlayerNames...)
		out.MatchHistory[i] = m
	}
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

type SharingFlags struct {
	Code    string `json:"code"`
	Enabled bool   `json:"enabled"`
}

func (f SharingFlags) Active() bool {
	return f.Enabled && strings.TrimSpace(f.Code) != ""
}

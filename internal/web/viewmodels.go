package web

import (
	"courtside-app/internal/fees"
	"courtside-app/internal/mirror"
	"courtside-app/internal/model"
)

type StateView struct {
	model.AppState
	Sharing ShareView `json:"sharing"`
}

type ShareView struct {
	Enabled    bool   `json:"enabled"`
	Code       string `json:"code,omitempty"`
	Address    string `json:"address,omitempty"`
	ViewerPath string `json:"viewerPath,omitempty"`
}

type StatusView struct {
	Status        string `json:"status"`
	Players       int    `json:"players"`
	ActiveGames   int    `json:"activeGames"`
	Queued        int    `json:"queued"`
	Sharing       bool   `json:"sharing"`
	EventsEnabled bool   `json:"eventsEnabled"`
}

type ErrorView struct {
	Error     string      `json:"error"`
	Conflicts []PlayerRef `json:"conflicts,omitempty"`
}

type PlayerRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type AssignView struct {
	Success   bool        `json:"success"`
	GameID    string      `json:"gameId,omitempty"`
	Conflicts []PlayerRef `json:"conflicts,omitempty"`
}

type CompleteView struct {
	Completed bool               `json:"completed"`
	Match     *model.MatchRecord `json:"match,omitempty"`
}

type CourtView struct {
	model.Court
	PlayerNames    []string `json:"playerNames"`
	ElapsedMinutes int      `json:"elapsedMinutes"`
}

type QueueView struct {
	model.QueueItem
	Position    int      `json:"position"`
	PlayerNames []string `json:"playerNames"`
}

type DashboardView struct {
	Courts    []CourtView         `json:"courts"`
	Queue     []QueueView         `json:"queue"`
	Available []model.Player      `json:"available"`
	Done      []model.Player      `json:"done"`
	Standings []StandingEntry     `json:"standings"`
	Recent    []model.MatchRecord `json:"recent"`
	Fees      fees.Report         `json:"fees"`
	Sharing   ShareView           `json:"sharing"`
}

type StandingEntry struct {
	Player        PlayerRef `json:"player"`
	GamesPlayed   int       `json:"gamesPlayed"`
	Singles       int       `json:"singles"`
	Doubles       int       `json:"doubles"`
	MinutesPlayed int       `json:"minutesPlayed"`
	TotalFees     float64   `json:"totalFees"`
	UnpaidFees    float64   `json:"unpaidFees"`
}

type ViewerView struct {
	Code     string
	Document ViewerDocument
}

type ViewerDocument struct {
	LastUpdated string
	Courts      []ViewerCourt
	Queue       []ViewerQueueItem
}

type ViewerCourt struct {
	ID          int
	Occupied    bool
	GameType    string
	PlayerNames []string
}

type ViewerQueueItem struct {
	Position    int
	GameType    string
	PlayerNames []string
}

type viewerMessage struct {
	Type     string           `json:"type"`
	Document *mirror.Document `json:"document,omitempty"`
}

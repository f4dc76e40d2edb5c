package state

import (
	"errors"
	"sync"
	"time"

	"courtside-app/internal/ids"
	"courtside-app/internal/model"

	"github.com/charmbracelet/log"
)

type Op string

const (
	OpAddPlayer       Op = "addNewPlayer"
	OpUpdatePlayer    Op = "updatePlayer"
	OpAssignToCourt   Op = "assignToCourt"
	OpAssignFromQueue Op = "assignFromQueue"
	OpCompleteMatch   Op = "completeMatch"
	OpAddToQueue      Op = "addPlayerToQueue"
	OpRemoveFromQueue Op = "removePlayerFromQueue"
	OpMarkFeesPaid    Op = "markFeesAsPaid"
	OpMarkDonePlaying Op = "markPlayersAsDonePlaying"
	OpMarkActive      Op = "markPlayersAsActive"
	OpUpdateFeeConfig Op = "updateFeeConfig"
	OpAddCourt        Op = "addCourt"
	OpRemoveCourt     Op = "removeCourt"
	OpReset           Op = "resetAll"
)

// Event describes one committed transition.
type Event struct {
	Op   Op
	Prev model.AppState
	Next model.AppState
	At   time.Time
}

// Listener is notified after every committed transition, in commit order.
// Listeners may read the store but must not call its mutating methods.
type Listener func(Event)

type AssignResult struct {
	Success   bool
	GameID    string
	Conflicts []model.Player
}

// Store owns the AppState and serializes every transition through its named
// operations. Rejected and no-op operations notify nobody.
type Store struct {
	mu       sync.Mutex
	notifyMu sync.Mutex
	state    model.AppState
	empty    func() model.AppState

	listenerMu sync.RWMutex
	listeners  map[int]Listener
	nextID     int

	now    func() time.Time
	newID  func() string
	logger *log.Logger
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithIDs(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

func WithLogger(logger *log.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithEmptyState sets the value ResetAll returns to.
func WithEmptyState(empty func() model.AppState) Option {
	return func(s *Store) { s.empty = empty }
}

func New(initial model.AppState, opts ...Option) *Store {
	s := &Store{
		state:     initial.Clone(),
		listeners: make(map[int]Listener),
		now:       time.Now,
		newID:     ids.New,
		empty: func() model.AppState {
			return model.NewAppState(model.DefaultFeeConfig().NumCourts, model.DefaultFeeConfig())
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	if err := Validate(s.state); err != nil {
		s.logger.Warn("loaded state violates invariants", "err", err)
	}
	return s
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() model.AppState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Subscribe registers a listener and returns a function that removes it.
func (s *Store) Subscribe(l Listener) func() {
	s.listenerMu.Lock()
	defer s.listenerMu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	return func() {
		s.listenerMu.Lock()
		defer s.listenerMu.Unlock()
		delete(s.listeners, id)
	}
}

// apply runs one transition. notifyMu is held across commit and
// notification so listeners see commits in order; mu covers only the commit,
// so readers never wait on a listener.
func (s *Store) apply(op Op, fn func(prev model.AppState, now time.Time) (model.AppState, error)) error {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	now := s.now()
	prev := s.state
	next, err := fn(prev, now)
	if err != nil {
		s.mu.Unlock()
		if errors.Is(err, ErrNoChange) {
			return nil
		}
		s.logger.Debug("transition rejected", "op", op, "err", err)
		return err
	}
	s.state = next
	s.mu.Unlock()

	s.listenerMu.RLock()
	listeners := make([]Listener, 0, len(s.listeners))
	for i := 0; i < s.nextID; i++ {
		if l, ok := s.listeners[i]; ok {
			listeners = append(listeners, l)
		}
	}
	s.listenerMu.RUnlock()

	ev := Event{Op: op, Prev: prev, Next: next, At: now}
	for _, l := range listeners {
		l(ev)
	}
	return nil
}

func (s *Store) AddNewPlayer(name string, skill model.SkillLevel) (model.Player, error) {
	var created model.Player
	err := s.apply(OpAddPlayer, func(prev model.AppState, now time.Time) (model.AppState, error) {
		next, p, err := AddNewPlayer(prev, s.newID(), name, skill, now)
		created = p
		return next, err
	})
	return created, err
}

func (s *Store) UpdatePlayer(id, name string, skill model.SkillLevel) error {
	return s.apply(OpUpdatePlayer, func(prev model.AppState, _ time.Time) (model.AppState, error) {
		return UpdatePlayer(prev, id, name, skill)
	})
}

// AssignToCourt starts a game. When any player is already on a court the
// result lists them and the state is left untouched.
func (s *Store) AssignToCourt(courtID int, playerIDs []string) (AssignResult, error) {
	gameID := s.newID()
	err := s.apply(OpAssignToCourt, func(prev model.AppState, now time.Time) (model.AppState, error) {
		return AssignToCourt(prev, courtID, playerIDs, gameID, now)
	})
	return assignResult(gameID, err)
}

func (s *Store) AssignFromQueue(courtID int, queueID string) (AssignResult, error) {
	gameID := s.newID()
	err := s.apply(OpAssignFromQueue, func(prev model.AppState, now time.Time) (model.AppState, error) {
		return AssignFromQueue(prev, courtID, queueID, gameID, now)
	})
	return assignResult(gameID, err)
}

func assignResult(gameID string, err error) (AssignResult, error) {
	if err != nil {
		var busy *BusyPlayersError
		if errors.As(err, &busy) {
			return AssignResult{Conflicts: busy.Players}, err
		}
		return AssignResult{}, err
	}
	return AssignResult{Success: true, GameID: gameID}, nil
}

// CompleteMatch finishes the game on a court. It reports false when the
// court had no active game.
func (s *Store) CompleteMatch(courtID int) (model.MatchRecord, bool) {
	var record model.MatchRecord
	completed := false
	_ = s.apply(OpCompleteMatch, func(prev model.AppState, now time.Time) (model.AppState, error) {
		next, r, err := CompleteMatch(prev, courtID, now)
		if err == nil {
			record = r
			completed = true
		}
		return next, err
	})
	return record, completed
}

func (s *Store) AddPlayerToQueue(playerIDs []string, isDoubles bool) (model.QueueItem, error) {
	var item model.QueueItem
	err := s.apply(OpAddToQueue, func(prev model.AppState, now time.Time) (model.AppState, error) {
		next, q, err := AddPlayerToQueue(prev, s.newID(), playerIDs, isDoubles, now)
		item = q
		return next, err
	})
	return item, err
}

func (s *Store) RemovePlayerFromQueue(queueID string) {
	_ = s.apply(OpRemoveFromQueue, func(prev model.AppState, _ time.Time) (model.AppState, error) {
		return RemovePlayerFromQueue(prev, queueID)
	})
}

func (s *Store) MarkFeesAsPaid(playerID string, amount float64) error {
	return s.apply(OpMarkFeesPaid, func(prev model.AppState, _ time.Time) (model.AppState, error) {
		return MarkFeesAsPaid(prev, playerID, amount)
	})
}

func (s *Store) MarkAllFeesPaid(playerID string) error {
	return s.apply(OpMarkFeesPaid, func(prev model.AppState, _ time.Time) (model.AppState, error) {
		return MarkAllFeesPaid(prev, playerID)
	})
}

func (s *Store) MarkPlayersAsDonePlaying(playerIDs []string) {
	_ = s.apply(OpMarkDonePlaying, func(prev model.AppState, _ time.Time) (model.AppState, error) {
		return MarkPlayersAsDonePlaying(prev, playerIDs)
	})
}

func (s *Store) MarkPlayersAsActive(playerIDs []string) {
	_ = s.apply(OpMarkActive, func(prev model.AppState, _ time.Time) (model.AppState, error) {
		return MarkPlayersAsActive(prev, playerIDs)
	})
}

func (s *Store) UpdateFeeConfig(cfg model.FeeConfig) (model.FeeConfig, error) {
	var applied model.FeeConfig
	err := s.apply(OpUpdateFeeConfig, func(prev model.AppState, _ time.Time) (model.AppState, error) {
		next, err := UpdateFeeConfig(prev, cfg)
		applied = next.FeeConfig
		return next, err
	})
	return applied, err
}

func (s *Store) AddCourt() (model.Court, error) {
	var court model.Court
	err := s.apply(OpAddCourt, func(prev model.AppState, _ time.Time) (model.AppState, error) {
		next, c, err := AddCourt(prev)
		court = c
		return next, err
	})
	return court, err
}

func (s *Store) RemoveCourt(courtID int) error {
	return s.apply(OpRemoveCourt, func(prev model.AppState, _ time.Time) (model.AppState, error) {
		return RemoveCourt(prev, courtID)
	})
}

// ResetAll returns the store to its empty initial state. Persistence
// listeners clear local storage on this event; remote sharing is left to the
// caller.
func (s *Store) ResetAll() {
	_ = s.apply(OpReset, func(model.AppState, time.Time) (model.AppState, error) {
		return s.empty(), nil
	})
}

package store

import (
	"errors"
	"fmt"
	"strings"

	"courtside-app/internal/model"

	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// Snapshots stores the AppState and the sharing flags in a key/value Store.
type Snapshots struct {
	store  Store
	logger *log.Logger
}

func NewSnapshots(store Store, logger *log.Logger) *Snapshots {
	if logger == nil {
		logger = log.Default()
	}
	return &Snapshots{store: store, logger: logger.WithPrefix("store")}
}

// LoadState returns the saved state, or fallback when nothing is stored or
// the snapshot cannot be decoded. A failed read is returned as an error so
// the caller never overwrites a snapshot it could not see.
func (s *Snapshots) LoadState(fallback model.AppState) (model.AppState, error) {
	raw, err := s.store.Get(StateKey)
	if errors.Is(err, ErrNotFound) {
		return fallback, nil
	}
	if err != nil {
		return fallback, fmt.Errorf("load snapshot: %w", err)
	}
	if len(raw) == 0 {
		return fallback, nil
	}
	var st model.AppState
	if err := msgpack.Unmarshal(raw, &st); err != nil {
		s.logger.Warn("discarding unreadable snapshot", "err", err)
		return fallback, nil
	}
	return normalize(st), nil
}

func (s *Snapshots) SaveState(st model.AppState) error {
	raw, err := msgpack.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return s.store.Put(StateKey, raw)
}

func (s *Snapshots) ClearState() error {
	return s.store.Delete(StateKey)
}

// LoadSharing returns the persisted sharing flags. A failed read is logged
// and reported as sharing off; the stored flags are left in place.
func (s *Snapshots) LoadSharing() model.SharingFlags {
	code, err := s.store.Get(ShareCodeKey)
	if err == nil {
		var enabled []byte
		enabled, err = s.store.Get(SharingKey)
		if err == nil {
			return model.SharingFlags{Code: strings.TrimSpace(string(code)), Enabled: string(enabled) == "true"}
		}
	}
	if !errors.Is(err, ErrNotFound) {
		s.logger.Warn("read sharing flags", "err", err)
	}
	return model.SharingFlags{}
}

func (s *Snapshots) SaveSharing(flags model.SharingFlags) error {
	if err := s.store.Put(ShareCodeKey, []byte(flags.Code)); err != nil {
		return err
	}
	enabled := "false"
	if flags.Enabled {
		enabled = "true"
	}
	return s.store.Put(SharingKey, []byte(enabled))
}

func (s *Snapshots) ClearSharing() error {
	if err := s.store.Delete(ShareCodeKey); err != nil {
		return err
	}
	return s.store.Delete(SharingKey)
}

// normalize fills collections an older snapshot may lack and pins the fee
// flags that are no longer configurable.
func normalize(st model.AppState) model.AppState {
	if st.Players == nil {
		st.Players = []model.Player{}
	}
	for i := range st.Players {
		if st.Players[i].FeeHistory == nil {
			st.Players[i].FeeHistory = []model.FeeEntry{}
		}
	}
	if st.Courts == nil {
		st.Courts = []model.Court{}
	}
	for i := range st.Courts {
		if st.Courts[i].Players == nil {
			st.Courts[i].Players = []string{}
		}
	}
	if st.Queue == nil {
		st.Queue = []model.QueueItem{}
	}
	if st.GameSessions == nil {
		st.GameSessions = []model.GameSession{}
	}
	if st.MatchHistory == nil {
		st.MatchHistory = []model.MatchRecord{}
	}
	if st.FeeConfig.CourtFeeType == "" {
		st.FeeConfig.CourtFeeType = model.CourtFeePerHour
	}
	st.FeeConfig.AutoCalculate = true
	st.FeeConfig.RequirePayment = false
	return st
}

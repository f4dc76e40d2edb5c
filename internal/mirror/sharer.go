package mirror

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"courtside-app/internal/ids"
	"courtside-app/internal/model"
	"courtside-app/internal/state"

	"github.com/charmbracelet/log"
)

const (
	DefaultDebounce = 300 * time.Millisecond
	writeTimeout    = 10 * time.Second
)

// FlagStore persists the local sharing flags.
type FlagStore interface {
	LoadSharing() model.SharingFlags
	SaveSharing(model.SharingFlags) error
	ClearSharing() error
}

type Options struct {
	BaseURL  string
	Debounce time.Duration
	Logger   *log.Logger
	Now      func() time.Time
	NewCode  func() string
}

// Sharer mirrors the local state to a Backend under a share code. Remote
// failures never propagate into the state store: they are logged and sharing
// is switched off locally.
type Sharer struct {
	backend Backend
	flags   FlagStore
	baseURL string
	delay   time.Duration
	logger  *log.Logger
	now     func() time.Time
	newCode func() string

	mu          sync.Mutex
	code        string
	createdAt   *time.Time
	timer       *time.Timer
	pending     *model.AppState
	gen         uint64
	cancelWatch context.CancelFunc
	creating    bool
	closed      bool

	syncMu  sync.Mutex
	written uint64
}

func NewSharer(backend Backend, flags FlagStore, opts Options) *Sharer {
	s := &Sharer{
		backend: backend,
		flags:   flags,
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		delay:   opts.Debounce,
		logger:  opts.Logger,
		now:     opts.Now,
		newCode: opts.NewCode,
	}
	if s.delay <= 0 {
		s.delay = DefaultDebounce
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	s.logger = s.logger.WithPrefix("mirror")
	if s.now == nil {
		s.now = time.Now
	}
	if s.newCode == nil {
		s.newCode = ids.ShareCode
	}
	return s
}

// ViewerPath is the viewer route for code.
func ViewerPath(code string) string {
	return "/shared-queue/" + code
}

// Address is the shareable viewer URL for code.
func (s *Sharer) Address(code string) string {
	return s.baseURL + ViewerPath(code)
}

// Status reports the code currently being mirrored, if any.
func (s *Sharer) Status() model.SharingFlags {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.SharingFlags{Code: s.code, Enabled: s.code != ""}
}

// Create starts sharing st under a fresh code and returns the viewer address.
// When sharing is already active the current address is returned.
func (s *Sharer) Create(ctx context.Context, st model.AppState) (string, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return "", errors.New("mirror: sharer closed")
	}
	if s.code != "" {
		code := s.code
		s.mu.Unlock()
		return s.Address(code), nil
	}
	if s.creating {
		s.mu.Unlock()
		return "", errors.New("mirror: share already being created")
	}
	// Changes committed while the first write is in flight are kept in
	// pending and flushed once the code is live.
	s.creating = true
	s.pending = nil
	s.mu.Unlock()

	code := s.newCode()
	now := s.now().UTC()
	doc := Project(st, now)
	doc.CreatedAt = &now
	raw, err := doc.Encode()
	if err == nil {
		err = s.backend.Set(ctx, code, raw)
	}
	if err != nil {
		s.logger.Error("create shared queue", "code", code, "err", err)
		s.mu.Lock()
		s.creating = false
		s.pending = nil
		s.mu.Unlock()
		s.clearFlags()
		return "", err
	}

	if err := s.flags.SaveSharing(model.SharingFlags{Code: code, Enabled: true}); err != nil {
		s.logger.Warn("save sharing flags", "code", code, "err", err)
	}
	s.mu.Lock()
	s.code = code
	s.createdAt = &now
	s.creating = false
	s.gen++
	seq := s.gen
	if s.pending != nil && !s.closed {
		s.gen++
		gen := s.gen
		s.timer = time.AfterFunc(s.delay, func() { s.flush(gen) })
	}
	s.mu.Unlock()

	s.syncMu.Lock()
	if seq > s.written {
		s.written = seq
	}
	s.syncMu.Unlock()

	s.startWatch(code)
	s.logger.Info("sharing started", "code", code)
	return s.Address(code), nil
}

// Stop deletes the remote document for code, or the active one when code is
// empty. Stopping the active share clears the local flags even when the
// delete fails; the error is returned for reporting.
func (s *Sharer) Stop(ctx context.Context, code string) error {
	s.mu.Lock()
	if code == "" {
		code = s.code
	}
	active := code == s.code
	if active {
		s.detachLocked()
	}
	s.mu.Unlock()
	if active {
		s.clearFlags()
	}

	if code == "" {
		return nil
	}
	if err := s.backend.Delete(ctx, code); err != nil {
		s.logger.Error("delete shared queue", "code", code, "err", err)
		return err
	}
	s.logger.Info("sharing stopped", "code", code)
	return nil
}

// Sync overwrites the remote document with st right away. It does nothing
// when sharing is off.
func (s *Sharer) Sync(ctx context.Context, st model.AppState) error {
	s.mu.Lock()
	s.gen++
	seq := s.gen
	s.mu.Unlock()
	return s.write(ctx, st, seq)
}

// Schedule debounces a sync of st. Each call replaces the pending state and
// restarts the single timer.
func (s *Sharer) Schedule(st model.AppState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || (s.code == "" && !s.creating) {
		return
	}
	s.pending = &st
	s.gen++
	gen := s.gen
	if s.code == "" {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, func() { s.flush(gen) })
}

// Listener schedules a sync for every committed transition that changes
// what viewers see.
func (s *Sharer) Listener() state.Listener {
	return func(ev state.Event) {
		if ev.Op == state.OpUpdateFeeConfig {
			return
		}
		s.Schedule(ev.Next)
	}
}

// Flush writes a pending debounced sync right away. It is for hosts that may
// freeze the process once a request returns.
func (s *Sharer) Flush(ctx context.Context) error {
	s.mu.Lock()
	if s.code == "" || s.pending == nil || s.closed {
		s.mu.Unlock()
		return nil
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	st := *s.pending
	s.pending = nil
	gen := s.gen
	s.mu.Unlock()
	return s.write(ctx, st, gen)
}

func (s *Sharer) flush(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || s.pending == nil || s.closed {
		s.mu.Unlock()
		return
	}
	st := *s.pending
	s.pending = nil
	s.timer = nil
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	_ = s.write(ctx, st, gen)
}

func (s *Sharer) write(ctx context.Context, st model.AppState, seq uint64) error {
	s.syncMu.Lock()
	defer s.syncMu.Unlock()

	s.mu.Lock()
	code := s.code
	var createdAt *time.Time
	if s.createdAt != nil {
		t := *s.createdAt
		createdAt = &t
	}
	s.mu.Unlock()
	if code == "" || seq <= s.written {
		return nil
	}

	doc := Project(st, s.now())
	doc.CreatedAt = createdAt
	raw, err := doc.Encode()
	if err == nil {
		err = s.backend.Set(ctx, code, raw)
	}
	if err != nil {
		s.disable(code, "sync shared queue", err)
		return err
	}
	s.written = seq
	return nil
}

// VerifyOnLoad re-attaches to a share code persisted by a previous run. A
// missing or unreachable document clears the local flags; a present one is
// refreshed with st immediately.
func (s *Sharer) VerifyOnLoad(ctx context.Context, st model.AppState) {
	flags := s.flags.LoadSharing()
	if !flags.Active() {
		return
	}
	code := strings.TrimSpace(flags.Code)

	raw, err := s.backend.Get(ctx, code)
	if errors.Is(err, ErrNotFound) {
		s.logger.Info("shared queue no longer exists", "code", code)
		s.clearFlags()
		return
	}
	if err != nil {
		s.logger.Warn("verify shared queue", "code", code, "err", err)
		s.clearFlags()
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.code = code
	if doc, err := DecodeDocument(raw); err == nil && doc.CreatedAt != nil {
		t := *doc.CreatedAt
		s.createdAt = &t
	}
	s.mu.Unlock()

	if err := s.Sync(ctx, st); err != nil {
		return
	}
	s.startWatch(code)
	s.logger.Info("sharing resumed", "code", code)
}

func (s *Sharer) startWatch(code string) {
	ctx, cancel := context.WithCancel(context.Background())
	changes, err := s.backend.Watch(ctx, code)
	if err != nil {
		cancel()
		s.logger.Warn("watch shared queue", "code", code, "err", err)
		return
	}

	s.mu.Lock()
	if s.code != code || s.closed {
		s.mu.Unlock()
		cancel()
		return
	}
	if s.cancelWatch != nil {
		s.cancelWatch()
	}
	s.cancelWatch = cancel
	s.mu.Unlock()

	go func() {
		for c := range changes {
			if c.Deleted {
				s.handleExternalDelete(code)
				return
			}
		}
	}()
}

func (s *Sharer) handleExternalDelete(code string) {
	s.mu.Lock()
	if s.code != code {
		s.mu.Unlock()
		return
	}
	s.detachLocked()
	s.mu.Unlock()
	s.clearFlags()
	s.logger.Info("shared queue deleted remotely", "code", code)
}

// disable switches sharing off after a remote failure on code.
func (s *Sharer) disable(code, what string, err error) {
	s.logger.Error(what, "code", code, "err", err)
	s.mu.Lock()
	if s.code == code {
		s.detachLocked()
	}
	s.mu.Unlock()
	s.clearFlags()
}

// detachLocked drops the active code, the pending timer and the watch.
func (s *Sharer) detachLocked() {
	s.code = ""
	s.createdAt = nil
	s.pending = nil
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.cancelWatch != nil {
		s.cancelWatch()
		s.cancelWatch = nil
	}
}

func (s *Sharer) clearFlags() {
	if err := s.flags.ClearSharing(); err != nil {
		s.logger.Warn("clear sharing flags", "err", err)
	}
}

// Close cancels the pending sync and the watch. The local flags are kept so
// the next start can re-attach.
func (s *Sharer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.pending = nil
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.cancelWatch != nil {
		s.cancelWatch()
		s.cancelWatch = nil
	}
}

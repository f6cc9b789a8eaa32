// Package service implements the scoring session behind the HTTP API: it
// owns the match store, the persistence codec and the currently selected
// match.
package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/scoreboard/internal/adapters/persistence"
	"github.com/okian/scoreboard/internal/adapters/repository"
	"github.com/okian/scoreboard/internal/domain/match"
	"github.com/okian/scoreboard/pkg/logger"
)

const defaultDataFile = "matches.txt"

// Session serialises user actions against one match store.
type Session struct {
	mu sync.Mutex

	store    *repository.MemoryStore
	codec    *persistence.Codec
	dataFile string

	// current is the name of the match being scored, "" when none.
	current string

	saveOnChange bool
	started      bool

	logger logger.Logger
}

// Option applies a configuration option to the Session.
type Option func(*Session)

// WithLogger sets a custom logger for the session.
func WithLogger(l logger.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithCodec sets the codec used to load and save matches.
func WithCodec(c *persistence.Codec) Option {
	return func(s *Session) {
		if c != nil {
			s.codec = c
			s.dataFile = ""
		}
	}
}

// WithDataFile saves to path through a codec that logs with the session logger.
func WithDataFile(path string) Option {
	return func(s *Session) {
		if path != "" {
			s.dataFile = path
			s.codec = nil
		}
	}
}

// WithStore replaces the initial, empty store.
func WithStore(st *repository.MemoryStore) Option {
	return func(s *Session) {
		if st != nil {
			s.store = st
		}
	}
}

// WithSaveOnChange also saves after creation and score edits.
func WithSaveOnChange(enabled bool) Option {
	return func(s *Session) {
		s.saveOnChange = enabled
	}
}

// New constructs a Session. Without WithCodec or WithDataFile the session
// saves to "matches.txt" in the working directory.
func New(opts ...Option) *Session {
	s := &Session{}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Nop()
	}
	if s.codec == nil {
		path := s.dataFile
		if path == "" {
			path = defaultDataFile
		}
		s.codec = persistence.NewCodec(path, persistence.WithLogger(s.logger.Named("persistence")))
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore(repository.WithLogger(s.logger))
	}
	return s
}

// Start loads persisted matches. It runs once; later calls are no-ops.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	report, err := s.codec.LoadInto(ctx, s.store)
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	s.started = true
	s.logger.Info(ctx, "scoring session started",
		logger.String("data_file", s.codec.Path()),
		logger.Int("matches", s.store.Count(ctx)),
		logger.Int("skipped_lines", report.Skipped),
	)
	return nil
}

// NewMatch creates a match and selects it for scoring.
func (s *Session) NewMatch(ctx context.Context, name, team1, team2 string) (match.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkStarted(); err != nil {
		return match.View{}, err
	}
	id, err := s.store.CreateMatch(ctx, name, team1, team2)
	if err != nil {
		return match.View{}, err
	}
	s.current = id
	s.logger.Info(ctx, "match created", logger.String("match", id))

	if s.saveOnChange {
		if err := s.saveLocked(ctx); err != nil {
			return match.View{}, err
		}
	}
	return s.store.Get(ctx, id)
}

// StartScoring selects an existing match. A locked match is only selected
// when unlock is true, in which case its lock is overridden and saved.
func (s *Session) StartScoring(ctx context.Context, name string, unlock bool) (match.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkStarted(); err != nil {
		return match.View{}, err
	}
	v, err := s.store.Get(ctx, name)
	if err != nil {
		return match.View{}, err
	}
	if v.Locked() {
		if !unlock {
			return match.View{}, fmt.Errorf("start scoring %q: %w", name, match.ErrLockedMatch)
		}
		if err := s.store.SetLocked(ctx, name, false); err != nil {
			return match.View{}, err
		}
		if err := s.saveLocked(ctx); err != nil {
			s.restoreLock(ctx, name, v.Lock)
			return match.View{}, err
		}
		s.logger.Info(ctx, "lock overridden", logger.String("match", name))
	}
	s.current = name
	return s.store.Get(ctx, name)
}

// Current returns the selected match.
func (s *Session) Current(ctx context.Context) (match.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == "" {
		return match.View{}, ErrNoSelection
	}
	return s.store.Get(ctx, s.current)
}

// AddPoints adds points to one team of the selected match.
func (s *Session) AddPoints(ctx context.Context, team match.Team, points int) (match.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == "" {
		return match.View{}, ErrNoSelection
	}
	if err := s.store.AddPoints(ctx, s.current, team, points); err != nil {
		return match.View{}, err
	}
	if s.saveOnChange {
		if err := s.saveLocked(ctx); err != nil {
			return match.View{}, err
		}
	}
	return s.store.Get(ctx, s.current)
}

// EndMatch sets the lock state of the selected match, saves, and clears
// the selection. If the save fails the lock and selection are left as they
// were.
func (s *Session) EndMatch(ctx context.Context, lock bool) (match.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == "" {
		return match.View{}, ErrNoSelection
	}
	name := s.current
	prev, err := s.store.Get(ctx, name)
	if err != nil {
		return match.View{}, err
	}
	if err := s.store.SetLocked(ctx, name, lock); err != nil {
		return match.View{}, err
	}
	if err := s.saveLocked(ctx); err != nil {
		s.restoreLock(ctx, name, prev.Lock)
		return match.View{}, err
	}
	s.current = ""
	s.logger.Info(ctx, "match ended", logger.String("match", name), logger.Bool("locked", lock))
	return s.store.Get(ctx, name)
}

// SetLocked locks or unlocks any match directly and saves.
func (s *Session) SetLocked(ctx context.Context, name string, locked bool) (match.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkStarted(); err != nil {
		return match.View{}, err
	}
	prev, err := s.store.Get(ctx, name)
	if err != nil {
		return match.View{}, err
	}
	if err := s.store.SetLocked(ctx, name, locked); err != nil {
		return match.View{}, err
	}
	if err := s.saveLocked(ctx); err != nil {
		s.restoreLock(ctx, name, prev.Lock)
		return match.View{}, err
	}
	return s.store.Get(ctx, name)
}

// Get returns one match.
func (s *Session) Get(ctx context.Context, name string) (match.View, error) {
	return s.store.Get(ctx, name)
}

// List returns every match in creation order.
func (s *Session) List(ctx context.Context) []match.View {
	return s.store.List(ctx)
}

// Results renders one summary line per match in creation order.
func (s *Session) Results(ctx context.Context) []string {
	views := s.store.List(ctx)
	out := make([]string, len(views))
	for i, v := range views {
		out[i] = v.Summary()
	}
	return out
}

// Save writes the store to the data file. It is refused before Start so an
// empty store never replaces saved matches.
func (s *Session) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkStarted(); err != nil {
		return err
	}
	return s.saveLocked(ctx)
}

// GetStats returns session statistics for monitoring.
func (s *Session) GetStats() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx := context.Background()
	locked := 0
	for _, v := range s.store.List(ctx) {
		if v.Locked() {
			locked++
		}
	}
	return map[string]interface{}{
		"started":       s.started,
		"dataFile":      s.codec.Path(),
		"totalMatches":  s.store.Count(ctx),
		"lockedMatches": locked,
		"currentMatch":  s.current,
		"saveOnChange":  s.saveOnChange,
	}
}

func (s *Session) saveLocked(ctx context.Context) error {
	if err := s.codec.Save(ctx, s.store); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// restoreLock undoes a lock change whose save failed.
func (s *Session) restoreLock(ctx context.Context, name string, prev match.LockState) {
	if err := s.store.SetLocked(ctx, name, prev.IsLocked()); err != nil {
		s.logger.Error(ctx, "lock rollback failed", logger.String("match", name), logger.Error(err))
	}
}

func (s *Session) checkStarted() error {
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

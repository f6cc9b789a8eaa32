package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/scoreboard/internal/domain/match"
	"github.com/okian/scoreboard/pkg/logger"
	"github.com/okian/scoreboard/pkg/metrics"
)

const nanosecondsPerMillisecond = 1e6

// MemoryStore keeps matches in a map indexed by name plus a slice that
// records creation order. Matches are never removed.
type MemoryStore struct {
	mu       sync.RWMutex
	byName   map[string]*match.Match
	order    []*match.Match
	capacity int
	logger   logger.Logger
}

var (
	_ Store    = (*MemoryStore)(nil)
	_ Restorer = (*MemoryStore)(nil)
)

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{logger: logger.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	s.byName = make(map[string]*match.Match, s.capacity)
	s.order = make([]*match.Match, 0, s.capacity)
	return s
}

// CreateMatch implements Store.
func (s *MemoryStore) CreateMatch(ctx context.Context, name, team1, team2 string) (string, error) {
	start := time.Now()
	defer recordUpdateLatency(start)

	m, err := match.New(name, team1, team2)
	if err != nil {
		metrics.RecordRejectedEdit("invalid_input")
		return "", fmt.Errorf("create match: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byName[m.Name()]; ok {
		metrics.RecordRejectedEdit("duplicate_name")
		return "", fmt.Errorf("create match %q: %w", m.Name(), match.ErrDuplicateName)
	}
	s.insertLocked(m)

	metrics.RecordMatchCreated()
	s.logger.Debug(ctx, "match created", logger.String("match", m.Name()))
	return m.Name(), nil
}

// AddPoints implements Store.
func (s *MemoryStore) AddPoints(ctx context.Context, id string, team match.Team, points int) error {
	start := time.Now()
	defer recordUpdateLatency(start)

	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.byName[id]
	if !ok {
		return fmt.Errorf("add points to %q: %w", id, match.ErrNotFound)
	}
	if err := m.AddPoints(team, points); err != nil {
		metrics.RecordRejectedEdit(rejectReason(err))
		return fmt.Errorf("add points to %q: %w", id, err)
	}

	metrics.RecordPointsAdded(teamLabel(team), points)
	s.logger.Debug(ctx, "points added",
		logger.String("match", id),
		logger.Int("team", int(team)),
		logger.Int("points", points),
	)
	return nil
}

// SetLocked implements Store.
func (s *MemoryStore) SetLocked(ctx context.Context, id string, locked bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.byName[id]
	if !ok {
		return fmt.Errorf("set lock on %q: %w", id, match.ErrNotFound)
	}
	state := match.LockStateOf(locked)
	m.SetLock(state)

	metrics.RecordLockChange(state.String())
	s.logger.Debug(ctx, "lock state set", logger.String("match", id), logger.String("lock", state.String()))
	return nil
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, id string) (match.View, error) {
	start := time.Now()
	defer recordQueryLatency(start)

	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.byName[id]
	if !ok {
		return match.View{}, fmt.Errorf("get %q: %w", id, match.ErrNotFound)
	}
	return m.View(), nil
}

// List implements Store. The returned slice is a fresh copy.
func (s *MemoryStore) List(_ context.Context) []match.View {
	start := time.Now()
	defer recordQueryLatency(start)

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]match.View, len(s.order))
	for i, m := range s.order {
		out[i] = m.View()
	}
	return out
}

// Count implements Store.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Restore inserts v verbatim, or replaces the record with the same name in
// place so that it keeps its original position.
func (s *MemoryStore) Restore(_ context.Context, v match.View) error {
	m, err := match.FromView(v)
	if err != nil {
		return fmt.Errorf("restore %q: %w", v.Name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.byName[m.Name()]; ok {
		*old = *m
		return nil
	}
	s.insertLocked(m)
	return nil
}

func (s *MemoryStore) insertLocked(m *match.Match) {
	s.byName[m.Name()] = m
	s.order = append(s.order, m)
	metrics.UpdateTotalMatches(len(s.order))
}

func rejectReason(err error) string {
	switch err {
	case match.ErrLockedMatch:
		return "locked"
	case match.ErrInvalidTeam:
		return "invalid_team"
	case match.ErrInvalidPoints:
		return "invalid_points"
	default:
		return "other"
	}
}

func teamLabel(t match.Team) string {
	if t == match.Team2 {
		return "team2"
	}
	return "team1"
}

func recordUpdateLatency(start time.Time) {
	metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Nanoseconds()) / nanosecondsPerMillisecond)
}

func recordQueryLatency(start time.Time) {
	metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Nanoseconds()) / nanosecondsPerMillisecond)
}

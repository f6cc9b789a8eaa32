// Package match holds the scored head-to-head match model shared by the
// store, the persistence codec and the HTTP adapter.
package match

import (
	"fmt"
	"strings"
)

// LockState is the two-valued edit lock of a match. The zero value is Unlocked.
type LockState uint8

const (
	Unlocked LockState = iota
	Locked
)

// Text tokens used in the data file and JSON payloads.
const (
	tokenLocked   = "locked"
	tokenUnlocked = "unlocked"
)

// LockStateOf converts a boolean lock flag.
func LockStateOf(locked bool) LockState {
	if locked {
		return Locked
	}
	return Unlocked
}

// IsLocked reports whether score edits are rejected.
func (s LockState) IsLocked() bool { return s == Locked }

func (s LockState) String() string {
	if s == Locked {
		return tokenLocked
	}
	return tokenUnlocked
}

// ParseLockState accepts exactly "locked" or "unlocked".
func ParseLockState(token string) (LockState, error) {
	switch token {
	case tokenLocked:
		return Locked, nil
	case tokenUnlocked:
		return Unlocked, nil
	default:
		return Unlocked, fmt.Errorf("lock state %q: %w", token, ErrParse)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s LockState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *LockState) UnmarshalText(b []byte) error {
	v, err := ParseLockState(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Team selects one side of a match.
type Team int

const (
	Team1 Team = 1
	Team2 Team = 2
)

// Valid reports whether t names one of the two sides.
func (t Team) Valid() bool { return t == Team1 || t == Team2 }

// View is an immutable snapshot of a match.
type View struct {
	Name       string    `json:"name"`
	Team1Name  string    `json:"team1_name"`
	Team1Score int       `json:"team1_score"`
	Team2Name  string    `json:"team2_name"`
	Team2Score int       `json:"team2_score"`
	Lock       LockState `json:"lock"`
}

// Locked reports whether the snapshot was taken while the match was locked.
func (v View) Locked() bool { return v.Lock.IsLocked() }

// Summary renders the one-line result shown in the results listing.
func (v View) Summary() string {
	return fmt.Sprintf("%s: %s %d - %d %s [%s]",
		v.Name, v.Team1Name, v.Team1Score, v.Team2Score, v.Team2Name, v.Lock)
}

// Match is the mutable record owned by a store.
type Match struct {
	name   string
	teams  [2]string
	scores [2]int
	lock   LockState
}

// New validates the names and returns an unlocked match with zero scores.
// Names are trimmed of surrounding whitespace.
func New(name, team1, team2 string) (*Match, error) {
	name, team1, team2 = strings.TrimSpace(name), strings.TrimSpace(team1), strings.TrimSpace(team2)
	for _, s := range []string{name, team1, team2} {
		if s == "" || strings.ContainsAny(s, "\r\n") {
			return nil, ErrInvalidInput
		}
	}
	return &Match{name: name, teams: [2]string{team1, team2}}, nil
}

// FromView rebuilds a record from a snapshot, e.g. one read back from disk.
func FromView(v View) (*Match, error) {
	m, err := New(v.Name, v.Team1Name, v.Team2Name)
	if err != nil {
		return nil, err
	}
	if v.Team1Score < 0 || v.Team2Score < 0 {
		return nil, fmt.Errorf("negative score: %w", ErrParse)
	}
	m.scores = [2]int{v.Team1Score, v.Team2Score}
	m.lock = v.Lock
	return m, nil
}

// Name returns the unique match key.
func (m *Match) Name() string { return m.name }

// AddPoints adds points to team. It fails on a locked match and leaves the
// scores untouched.
func (m *Match) AddPoints(team Team, points int) error {
	if m.lock.IsLocked() {
		return ErrLockedMatch
	}
	if !team.Valid() {
		return ErrInvalidTeam
	}
	if points < 1 {
		return ErrInvalidPoints
	}
	m.scores[team-1] += points
	return nil
}

// SetLock sets the lock state unconditionally.
func (m *Match) SetLock(s LockState) { m.lock = s }

// View returns a snapshot of the current fields.
func (m *Match) View() View {
	return View{
		Name:       m.name,
		Team1Name:  m.teams[0],
		Team1Score: m.scores[0],
		Team2Name:  m.teams[1],
		Team2Score: m.scores[1],
		Lock:       m.lock,
	}
}

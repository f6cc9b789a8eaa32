// Package repository holds the authoritative in-memory collection of matches.
package repository

import (
	"context"

	"github.com/okian/scoreboard/internal/domain/match"
)

// Store provides read/write access to the match collection.
type Store interface {
	// CreateMatch inserts a new unlocked match with zero scores and returns its id.
	// Returns match.ErrDuplicateName if the name exists or any name is empty.
	CreateMatch(ctx context.Context, name, team1, team2 string) (string, error)

	// AddPoints adds points to one team of an unlocked match.
	// Returns match.ErrNotFound or match.ErrLockedMatch.
	AddPoints(ctx context.Context, id string, team match.Team, points int) error

	// SetLocked sets the lock state unconditionally.
	SetLocked(ctx context.Context, id string, locked bool) error

	// Get returns a snapshot of one match.
	Get(ctx context.Context, id string) (match.View, error)

	// List returns snapshots of all matches in creation order.
	List(ctx context.Context) []match.View

	// Count returns the number of matches tracked.
	Count(ctx context.Context) int
}

// Restorer accepts records read back from persistence.
type Restorer interface {
	Restore(ctx context.Context, v match.View) error
}

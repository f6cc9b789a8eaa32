package match

import "errors"

// Sentinel kinds for match errors. Callers match them with errors.Is.
var (
	ErrDuplicateName = errors.New("match name already exists")
	ErrNotFound      = errors.New("match not found")
	ErrLockedMatch   = errors.New("match is locked")
	ErrInvalidTeam   = errors.New("team must be 1 or 2")
	ErrInvalidPoints = errors.New("points must be positive")
	ErrParse         = errors.New("malformed match record")

	// ErrInvalidInput is returned for empty or multi-line names. It also
	// matches ErrDuplicateName: creation reports both cases as a rejected name.
	ErrInvalidInput error = invalidInputError{}
)

type invalidInputError struct{}

func (invalidInputError) Error() string {
	return "match name and team names must be non-empty single-line text"
}

func (invalidInputError) Is(target error) bool { return target == ErrDuplicateName }

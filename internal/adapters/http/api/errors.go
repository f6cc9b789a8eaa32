package api

import (
	"errors"
	"net/http"

	service "github.com/okian/scoreboard/internal/app"
	"github.com/okian/scoreboard/internal/domain/match"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
)

// statusFor maps domain errors onto HTTP status codes and stable error codes.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, match.ErrInvalidInput):
		return http.StatusBadRequest, "invalid_input"
	case errors.Is(err, match.ErrDuplicateName):
		return http.StatusConflict, "duplicate_name"
	case errors.Is(err, match.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, match.ErrLockedMatch):
		return http.StatusLocked, "locked"
	case errors.Is(err, match.ErrInvalidTeam), errors.Is(err, match.ErrInvalidPoints):
		return http.StatusBadRequest, "invalid_score"
	case errors.Is(err, service.ErrNoSelection):
		return http.StatusConflict, "no_selection"
	case errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, "not_started"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

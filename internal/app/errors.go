package service

import "errors"

// Sentinel kinds for session errors.
var (
	ErrNoSelection = errors.New("no match selected")
	ErrNotStarted  = errors.New("session not started")
)

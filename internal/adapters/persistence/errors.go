package persistence

import "errors"

// Sentinel kinds for persistence errors.
var (
	ErrSave = errors.New("save matches failed")
	ErrLoad = errors.New("load matches failed")
)

package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrNilStore = errors.New("match store is nil")
)

package config

import "errors"

// Returned by Load. ErrInvalidConfig marks values that fail Validate.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)

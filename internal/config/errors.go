package config

import "errors"

// Sentinel kinds for configuration errors; callers match with errors.Is.
var (
	// ErrInvalidConfig marks a loaded configuration that failed validation.
	ErrInvalidConfig = errors.New("invalid config")

	// ErrLoadConfig wraps provider and unmarshal failures during Load.
	ErrLoadConfig = errors.New("load config failed")
)

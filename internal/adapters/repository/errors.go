package repository

import "errors"

// Sentinel kinds for store errors.
var (
	// ErrReadOnlyTx is the panic value for a write attempted inside View.
	ErrReadOnlyTx = errors.New("write inside read-only transaction")
)

package engine

import "errors"

var (
	// ErrInvalidRequest indicates a request that fails up-front validation
	// (non-positive bar count, zero bar duration, unknown scenario).
	ErrInvalidRequest = errors.New("invalid generation request")

	// ErrNonStationary indicates volatility parameters with alpha+beta >= 1.
	// Rejected at construction, never discovered through runtime blow-up.
	ErrNonStationary = errors.New("non-stationary volatility parameters")
)

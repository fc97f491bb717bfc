package health

import "errors"

var (
	// ErrCheckTimeout indicates a health check timed out.
	ErrCheckTimeout = errors.New("health: check timeout")

	// ErrCheckPanicked indicates a health check panicked.
	ErrCheckPanicked = errors.New("health: check panicked")

	// ErrCheckNotStarted indicates a check never got a slot before the
	// aggregation deadline.
	ErrCheckNotStarted = errors.New("health: check not started")
)

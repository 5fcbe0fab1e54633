package services

import "errors"

// Engine-level errors. Per-strategy failures are always recovered locally and
// never reach the caller; only these surface.
var (
	// ErrEngineTimeout is returned when the engine-level deadline elapses
	// before a full result is assembled.
	ErrEngineTimeout = errors.New("recommendation engine timed out")

	// ErrEngineInternal wraps any unexpected failure escaping the
	// orchestrator scope that is not a scorer-local recovery.
	ErrEngineInternal = errors.New("recommendation engine internal error")
)

// ErrInvalidAction is the tracking-boundary rejection for malformed events.
var ErrInvalidAction = errors.New("invalid action")

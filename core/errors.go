package core

import "errors"

// Sentinel errors for the failure taxonomy. Public operations return
// these (possibly wrapped with context via fmt.Errorf and %w); callers
// classify with errors.Is.
var (
	// ErrNotInitialized is returned by entry points called before
	// Initialize succeeds or after Shutdown.
	ErrNotInitialized = errors.New("engine not initialized")

	// ErrInvalidHandle is returned when a handle does not resolve to a
	// live task, including stale handles from freed tasks.
	ErrInvalidHandle = errors.New("invalid task handle")

	// ErrInvalidInput is returned for unusable task input, e.g. missing
	// content or a result requested before completion.
	ErrInvalidInput = errors.New("invalid input")

	// ErrRenderFailed wraps failures reported by the render engine.
	ErrRenderFailed = errors.New("render failed")

	// ErrOutputWrite is returned when the output file cannot be opened or
	// written after a successful render.
	ErrOutputWrite = errors.New("output write failed")

	// ErrPoolStopped is returned when work is submitted to a pool that
	// has been shut down.
	ErrPoolStopped = errors.New("worker pool stopped")

	// ErrInitialization is returned when the render engine cannot start.
	ErrInitialization = errors.New("initialization failed")
)

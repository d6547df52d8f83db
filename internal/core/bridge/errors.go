package bridge

import "errors"

var (
	// ErrWorldClosed means the world is tearing down; tasks must stop
	// requesting main-thread work.
	ErrWorldClosed = errors.New("world unavailable")

	// ErrResponseLost means a main-thread callback was consumed but never
	// delivered its result (it panicked, or teardown discarded it). The
	// waiting task receives this as a recoverable failure.
	ErrResponseLost = errors.New("main-thread response lost")
)

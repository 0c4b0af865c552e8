package pool

import "errors"

// Sentinel errors for object pool misuse. The pool itself never fails
// during normal operation; these guard programmer errors surfaced by sanity
// checks elsewhere in the engine.
var (
	// ErrHandleInvalidated is returned by diagnostic helpers when a caller
	// retains a handle across a Clear call. Production code must not observe
	// this condition; it exists for assertion-style checks.
	ErrHandleInvalidated = errors.New("pool: handle invalidated by Clear")
)

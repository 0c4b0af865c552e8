package config

import "errors"

// Fatal load errors, reported by callers (one-line reason to
// stderr, exit status 1).
var (
	ErrStoreEmpty  = errors.New("config: CAF_STORE is not set")
	ErrBadSeed     = errors.New("config: CAF_SEED is not a valid uint32")
	ErrBadMaxCalls = errors.New("config: CAF_MAX_CALLS is not a valid positive integer")
	ErrBadMaxDepth = errors.New("config: CAF_MAX_DEPTH is not a valid positive integer")
	ErrBadMaxStr   = errors.New("config: CAF_MAX_STRING_LEN is not a valid positive integer")
	ErrBadMaxArr   = errors.New("config: CAF_MAX_ARRAY_LEN is not a valid positive integer")
)

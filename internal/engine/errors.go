package engine

import "errors"

// Fatal errors surfaced by custom_init: missing env var or an
// unreadable/malformed catalog. The caller prints a one-line reason to
// stderr and exits with status 1.
var (
	ErrStoreEnvMissing = errors.New("engine: CAF_STORE is not set")
)

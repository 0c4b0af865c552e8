// Package corpus writes CAF artifacts to disk atomically, for the --dump
// flag of cmd/caf-mutator's debug passthrough mode. AFL itself owns the real
// corpus directory; this package only needs to save a test case or a
// synthesized script durably enough to survive a crash mid-write: a single
// rename, never a partial file.
package corpus

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
)

// DumpBinary atomically writes the codec-encoded bytes of a test case to
// path, creating parent directories as needed.
func DumpBinary(path string, encoded []byte) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	if err := atomic.WriteFile(path, bytes.NewReader(encoded)); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// DumpScript atomically writes a synthesized JavaScript program to path.
func DumpScript(path string, script string) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	if err := atomic.WriteFile(path, bytes.NewReader([]byte(script))); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return nil
}

// Package caflog provides the structured diagnostic logger used by the
// engine's AFL-facing commands. CAF runs inside an AFL child process instead
// of a terminal, so diagnostics are emitted as single-line JSON via zerolog,
// letting a harness collect and correlate them across thousands of
// short-lived forkserver children.
package caflog

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Logger wraps a zerolog.Logger scoped to one engine process.
type Logger struct {
	zl zerolog.Logger
}

// New returns a Logger writing JSON lines to w, tagged with the given seed
// so log lines from concurrent AFL workers can be told apart.
func New(w io.Writer, seed uint32) Logger {
	zl := zerolog.New(w).With().Timestamp().Uint32("seed", seed).Logger()
	return Logger{zl: zl}
}

// Stderr returns a Logger writing to os.Stderr, the default destination for
// every CAF binary.
func Stderr(seed uint32) Logger {
	return New(os.Stderr, seed)
}

func (l Logger) Info(msg string)          { l.zl.Info().Msg(msg) }
func (l Logger) Debug(msg string)         { l.zl.Debug().Msg(msg) }
func (l Logger) Warn(msg string)          { l.zl.Warn().Msg(msg) }
func (l Logger) Error(err error, msg string) {
	l.zl.Error().Err(err).Msg(msg)
}

// Fatal logs msg at error level and exits the process with status 1: the
// required behavior for every fatal condition (missing env var, malformed
// catalog, corrupt test case, internal invariant violation).
func (l Logger) Fatal(err error, msg string) {
	l.zl.Error().Err(err).Msg(msg)
	os.Exit(1)
}

// With returns a child Logger with an additional string field, used to tag
// e.g. the catalog path or subcommand name onto every subsequent line.
func (l Logger) With(key, value string) Logger {
	return Logger{zl: l.zl.With().Str(key, value).Logger()}
}

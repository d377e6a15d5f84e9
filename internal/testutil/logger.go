package testutil

import (
	"io"
	"log/slog"
	"os"
	"testing"
)

// NopLogger returns a logger that discards all output.
// Use this in tests to avoid log noise.
func NopLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// VerboseLogger returns a text logger on stderr when tests run with -v,
// otherwise a discarding one.
func VerboseLogger(t *testing.T) *slog.Logger {
	t.Helper()
	if !testing.Verbose() {
		return NopLogger()
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

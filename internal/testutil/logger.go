package testutil

import (
	"log/slog"
	"testing"
)

// DiscardLogger returns a slog.Logger that discards all output. For
// components that use log.Logger (an alias for *slog.Logger), log.NewNop()
// returns the same thing; prefer that when the internal/log package is
// already imported.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// NewTestLogger returns a logger routed through t.Log, so test output stays
// attached to the test that produced it.
func NewTestLogger(t *testing.T) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(testWriter{t}, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

type testWriter struct {
	t *testing.T
}

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}

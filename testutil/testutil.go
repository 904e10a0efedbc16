// Package testutil has helpers shared by the package tests.
package testutil

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

// WriteNamesFile writes content to a temporary name file and returns its
// path. The file is removed when the test ends.
func WriteNamesFile(t testing.TB, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "names.txt")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing names file: %v", err)
	}
	return path
}

// testWriter sends log output to t.Log
type testWriter struct {
	t testing.TB
}

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(string(p))
	return len(p), nil
}

// NewTestLogger creates a debug level logger writing to the test log
func NewTestLogger(t testing.TB) *slog.Logger {
	handler := slog.NewTextHandler(testWriter{t: t}, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})
	return slog.New(handler)
}

// Package testutil provides fixture helpers shared by package tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteText writes content to a new file under the test's temp dir and
// returns its path.
func WriteText(tb testing.TB, name, content string) string {
	tb.Helper()
	return WriteBytes(tb, name, []byte(content))
}

// WriteBytes writes raw bytes to a new file under the test's temp dir
// and returns its path. Use this for fixtures that are not valid UTF-8.
func WriteBytes(tb testing.TB, name string, content []byte) string {
	tb.Helper()
	path := filepath.Join(tb.TempDir(), name)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		tb.Fatalf("write %s: %v", name, err)
	}
	return path
}

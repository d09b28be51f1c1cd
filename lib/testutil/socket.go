// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// SocketDir creates a short-named directory in /tmp for Unix sockets,
// removed when the test completes.
func SocketDir(t testing.TB) string {
	t.Helper()
	directory, err := os.MkdirTemp("/tmp", "museum-test-*")
	if err != nil {
		t.Fatalf("creating socket directory: %v", err)
	}
	t.Cleanup(func() {
		_ = os.RemoveAll(directory)
	})
	return directory
}

// SocketPath returns a socket path named name inside a fresh SocketDir.
func SocketPath(t testing.TB, name string) string {
	t.Helper()
	return filepath.Join(SocketDir(t), name+".sock")
}

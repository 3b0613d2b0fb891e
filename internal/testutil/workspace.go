// Package testutil provides workspace fixtures and golden-file helpers for
// command-level tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteWorkspace materializes files (path -> content) under a fresh temp
// directory and returns its root. Nested directories are created as needed.
func WriteWorkspace(t *testing.T, files map[string]string) string {
	t.Helper()

	root := t.TempDir()
	for path, content := range files {
		full := filepath.Join(root, filepath.FromSlash(path))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("cannot create %s: %v", filepath.Dir(full), err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatalf("cannot write %s: %v", full, err)
		}
	}
	return root
}

// ReadWorkspaceFile reads one file back from a workspace root.
func ReadWorkspaceFile(t *testing.T, root, path string) string {
	t.Helper()

	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(path)))
	if err != nil {
		t.Fatalf("cannot read %s: %v", path, err)
	}
	return string(data)
}

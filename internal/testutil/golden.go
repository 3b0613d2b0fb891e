package testutil

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"scalpel/internal/output"
)

// updateGolden rewrites golden files instead of comparing against them.
// Use: go test ./... -update
var updateGolden = flag.Bool("update", false, "update golden files")

// ShouldUpdate reports whether golden files should be rewritten.
func ShouldUpdate() bool {
	return *updateGolden
}

// AssertGolden compares got (a JSON response) against the golden file at
// path, ignoring time-varying fields. With -update the file is rewritten.
func AssertGolden(t *testing.T, path string, got []byte) {
	t.Helper()

	normalized, err := output.NormalizeForSnapshot(got)
	if err != nil {
		t.Fatalf("cannot normalize response: %v\n%s", err, got)
	}

	if ShouldUpdate() {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("cannot create golden dir: %v", err)
		}
		if err := os.WriteFile(path, append(normalized, '\n'), 0o644); err != nil {
			t.Fatalf("cannot write golden file: %v", err)
		}
		return
	}

	want, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("cannot read golden file %s (run with -update to create it): %v", path, err)
	}

	equal, reason := output.CompareSnapshots(normalized, want)
	if !equal {
		t.Errorf("response differs from %s: %s\ngot:  %s\nwant: %s", path, reason, normalized, want)
	}
}

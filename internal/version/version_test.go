package version

import (
	"strings"
	"testing"
)

func TestInfo(t *testing.T) {
	origCommit := Commit
	defer func() { Commit = origCommit }()

	Commit = "unknown"
	if got := Info(); got != Version {
		t.Errorf("Info() = %q, want %q", got, Version)
	}

	Commit = "abcdef1234567890"
	if got := Info(); got != Version+" (abcdef1)" {
		t.Errorf("Info() = %q, want short commit suffix", got)
	}
}

func TestFull(t *testing.T) {
	full := Full()
	if !strings.Contains(full, Version) {
		t.Errorf("Full() missing version: %q", full)
	}
	if !strings.Contains(full, "Commit:") {
		t.Errorf("Full() missing commit line: %q", full)
	}
}

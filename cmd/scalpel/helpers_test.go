package main

import (
	"testing"

	"scalpel/internal/errors"
)

func TestParseSelectValue(t *testing.T) {
	tests := []struct {
		input     string
		wantIndex int // 0 means nil
		wantHash  string
		wantErr   bool
	}{
		{"", 0, "", false},
		{"1", 1, "", false},
		{"12", 12, "", false},
		{"hash:9f2c4a1b", 0, "9f2c4a1b", false},
		{"hash:", 0, "", true},
		{"0", 0, "", true},
		{"-3", 0, "", true},
		{"first", 0, "", true},
	}
	for _, tt := range tests {
		index, hash, err := parseSelectValue(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseSelectValue(%q) succeeded, want error", tt.input)
				continue
			}
			var se *errors.ScalpelError
			if !errors.AsScalpelError(err, &se) || se.Code != errors.InvalidParameter {
				t.Errorf("parseSelectValue(%q) error = %v, want INVALID_PARAMETER", tt.input, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseSelectValue(%q) error = %v", tt.input, err)
			continue
		}
		if tt.wantIndex == 0 && index != nil {
			t.Errorf("parseSelectValue(%q) index = %d, want nil", tt.input, *index)
		}
		if tt.wantIndex != 0 && (index == nil || *index != tt.wantIndex) {
			t.Errorf("parseSelectValue(%q) index = %v, want %d", tt.input, index, tt.wantIndex)
		}
		if hash != tt.wantHash {
			t.Errorf("parseSelectValue(%q) hash = %q, want %q", tt.input, hash, tt.wantHash)
		}
	}
}

func TestSelectorOptionsHashShorthand(t *testing.T) {
	opts := selectorOptions("hash:9f2c4a1b", "", "", false)
	if opts.SelectHash != "9f2c4a1b" {
		t.Errorf("SelectHash = %q, want the digest from --select", opts.SelectHash)
	}
	if opts.SelectIndex != nil {
		t.Errorf("SelectIndex = %v, want nil", opts.SelectIndex)
	}

	opts = selectorOptions("2", "body.if", "abcd1234", true)
	if opts.SelectIndex == nil || *opts.SelectIndex != 2 {
		t.Errorf("SelectIndex = %v, want 2", opts.SelectIndex)
	}
	if opts.SelectPath != "body.if" || opts.SelectHash != "abcd1234" {
		t.Errorf("path/hash = %q/%q, want passthrough", opts.SelectPath, opts.SelectHash)
	}
	if !opts.Multiple {
		t.Error("Multiple flag dropped")
	}
}

func TestResumeTokenFromArgv(t *testing.T) {
	if got := resumeToken([]string{"eyJ0b2siOjF9"}); got != "eyJ0b2siOjF9" {
		t.Errorf("resumeToken(argv) = %q", got)
	}
}

func TestParseByteSpan(t *testing.T) {
	if s := parseByteSpan("--range", ""); s != nil {
		t.Errorf("empty value = %v, want nil", s)
	}
	s := parseByteSpan("--range", "10-24")
	if s == nil || s.Start != 10 || s.End != 24 {
		t.Errorf("parseByteSpan(10-24) = %v", s)
	}
}

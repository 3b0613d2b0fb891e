package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestScalpelErrorFormat(t *testing.T) {
	tests := []struct {
		name  string
		err   *ScalpelError
		wants []string
	}{
		{
			name:  "with cause",
			err:   New(ParseFailure, "cannot parse app.js", fmt.Errorf("unexpected token")),
			wants: []string{"PARSE_FAILURE", "cannot parse app.js", "unexpected token"},
		},
		{
			name:  "without cause",
			err:   Newf(NoMatch, "selector %q matched nothing", "foo"),
			wants: []string{"NO_MATCH", `selector "foo" matched nothing`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, want := range tt.wants {
				if !strings.Contains(msg, want) {
					t.Errorf("Error() = %q, missing %q", msg, want)
				}
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	cause := fmt.Errorf("io failure")
	err := New(InternalError, "extraction failed", cause)
	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"scalpel error", New(PathDrift, "gone", nil), PathDrift},
		{"wrapped scalpel error", fmt.Errorf("outer: %w", New(TokenInvalid, "bad sig", nil)), TokenInvalid},
		{"plain error", fmt.Errorf("plain"), InternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CodeOf(tt.err); got != tt.want {
				t.Errorf("CodeOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsCode(t *testing.T) {
	err := New(AmbiguousMatch, "5 candidates", nil)
	if !IsCode(err, AmbiguousMatch) {
		t.Error("IsCode should match AmbiguousMatch")
	}
	if IsCode(err, NoMatch) {
		t.Error("IsCode should not match NoMatch")
	}
}

func TestSuggestedFixes(t *testing.T) {
	err := New(AmbiguousMatch, "too many", nil)
	if len(err.SuggestedFixes) == 0 {
		t.Fatal("AmbiguousMatch should carry suggested fixes")
	}
	if err.SuggestedFixes[0].Type != RefineSelector {
		t.Errorf("fix type = %v, want RefineSelector", err.SuggestedFixes[0].Type)
	}
	if fixes := GetSuggestedFixes(InternalError); fixes != nil {
		t.Errorf("InternalError should have no canned fixes, got %v", fixes)
	}
}

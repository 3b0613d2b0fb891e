package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// ParseFailure indicates source could not be turned into an AST.
	// Fatal for the whole file; extraction produces no partial results.
	ParseFailure ErrorCode = "PARSE_FAILURE"
	// NoMatch indicates a selector resolved to zero records
	NoMatch ErrorCode = "NO_MATCH"
	// AmbiguousMatch indicates a selector resolved to more than one record
	// without multi-match mode
	AmbiguousMatch ErrorCode = "AMBIGUOUS_MATCH"
	// GuardViolation indicates a pre-mutation hash/span expectation failed
	GuardViolation ErrorCode = "GUARD_VIOLATION"
	// PathDrift indicates the target's path signature vanished after mutation
	PathDrift ErrorCode = "PATH_DRIFT"
	// InvalidResult indicates the mutated buffer no longer parses.
	// Never bypassable: writing invalid source is never acceptable.
	InvalidResult ErrorCode = "INVALID_RESULT"
	// TokenInvalid indicates a continuation token failed signature or expiry checks
	TokenInvalid ErrorCode = "TOKEN_INVALID"
	// DigestMismatch indicates replay produced a different results digest.
	// Surfaced as a warning, not a failure.
	DigestMismatch ErrorCode = "RESULTS_DIGEST_MISMATCH"
	// WorkspaceNotReady indicates workspace discovery has not run yet
	WorkspaceNotReady ErrorCode = "WORKSPACE_NOT_READY"
	// InvalidParameter indicates a malformed caller-supplied parameter
	InvalidParameter ErrorCode = "INVALID_PARAMETER"
	// InternalError indicates an unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// FixActionType represents the type of fix action
type FixActionType string

const (
	// RunCommand suggests running a command
	RunCommand FixActionType = "run-command"
	// RefineSelector suggests narrowing the selector
	RefineSelector FixActionType = "refine-selector"
)

// FixAction represents a suggested fix for an error
type FixAction struct {
	Type        FixActionType `json:"type"`
	Command     string        `json:"command,omitempty"`
	Safe        bool          `json:"safe,omitempty"`
	Description string        `json:"description,omitempty"`
}

// ScalpelError represents a scalpel failure with code, message, and suggestions
type ScalpelError struct {
	Code           ErrorCode   `json:"code"`
	Message        string      `json:"message"`
	Details        interface{} `json:"details,omitempty"`
	SuggestedFixes []FixAction `json:"suggestedFixes,omitempty"`
	cause          error       // Underlying error (not exported to JSON)
}

// New creates a new ScalpelError
func New(code ErrorCode, message string, cause error) *ScalpelError {
	return &ScalpelError{
		Code:           code,
		Message:        message,
		cause:          cause,
		SuggestedFixes: GetSuggestedFixes(code),
	}
}

// Newf creates a new ScalpelError with a formatted message and no cause
func Newf(code ErrorCode, format string, args ...interface{}) *ScalpelError {
	return New(code, fmt.Sprintf(format, args...), nil)
}

// Error implements the error interface
func (e *ScalpelError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *ScalpelError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *ScalpelError) WithDetails(details interface{}) *ScalpelError {
	e.Details = details
	return e
}

// CodeOf returns the ErrorCode carried by err, or InternalError when err is
// not a ScalpelError.
func CodeOf(err error) ErrorCode {
	var se *ScalpelError
	if errors.As(err, &se) {
		return se.Code
	}
	return InternalError
}

// IsCode reports whether err carries the given code
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// AsScalpelError unwraps err into target when a ScalpelError is anywhere in
// the chain. Convenience for callers that shadow the stdlib errors package.
func AsScalpelError(err error, target **ScalpelError) bool {
	return errors.As(err, target)
}

// ErrorActions maps error codes to suggested fix actions
var ErrorActions = map[ErrorCode][]FixAction{
	NoMatch: {
		{
			Type:        RunCommand,
			Command:     "scalpel symbols <file>",
			Safe:        true,
			Description: "List extractable symbols and their canonical names",
		},
	},
	AmbiguousMatch: {
		{
			Type:        RefineSelector,
			Description: "Disambiguate with --select <index>, --select-path, or --select hash:<h>",
		},
	},
	GuardViolation: {
		{
			Type:        RunCommand,
			Command:     "scalpel symbols <file> --json",
			Safe:        true,
			Description: "Re-read current hashes; the file changed since the expectation was captured",
		},
	},
	TokenInvalid: {
		{
			Type:        RunCommand,
			Command:     "scalpel symbols <file>",
			Safe:        true,
			Description: "Start a fresh session; the token is expired or tampered with",
		},
	},
}

// GetSuggestedFixes returns suggested fixes for an error code
func GetSuggestedFixes(code ErrorCode) []FixAction {
	if fixes, ok := ErrorActions[code]; ok {
		return fixes
	}
	return nil
}

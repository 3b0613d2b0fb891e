package output

import (
	"time"

	"scalpel/internal/version"
)

// SchemaVersion is bumped when the envelope layout changes incompatibly.
const SchemaVersion = 1

// Envelope is the uniform wrapper around every command's payload.
type Envelope struct {
	ScalpelVersion    string      `json:"scalpelVersion"`
	SchemaVersion     int         `json:"schemaVersion"`
	Command           string      `json:"command"`
	RequestID         string      `json:"requestId,omitempty"`
	GeneratedAt       time.Time   `json:"generatedAt"`
	Data              interface{} `json:"data"`
	Warnings          []Warning   `json:"warnings,omitempty"`
	ContinuationToken string      `json:"continuationToken,omitempty"`
}

// Warning is a non-fatal diagnostic attached to a response.
type Warning struct {
	Severity string `json:"severity"` // "error", "warning", or "info"
	Code     string `json:"code,omitempty"`
	Text     string `json:"text"`
}

// NewEnvelope wraps data for the named command, stamping version and time.
func NewEnvelope(command string, data interface{}) *Envelope {
	return &Envelope{
		ScalpelVersion: version.Version,
		SchemaVersion:  SchemaVersion,
		Command:        command,
		GeneratedAt:    time.Now().UTC(),
		Data:           data,
	}
}

// AddWarning appends a diagnostic to the envelope.
func (e *Envelope) AddWarning(severity, code, text string) {
	e.Warnings = append(e.Warnings, Warning{Severity: severity, Code: code, Text: text})
}

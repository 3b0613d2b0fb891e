// Package output is the presentation layer shared by every command. It has
// three responsibilities:
//
//  1. Deterministic JSON encoding. Two runs over the same data produce
//     byte-identical output: map keys are sorted, floats are rounded to six
//     decimal places, and nil or empty fields are omitted. Continuation
//     tokens sign these bytes, so determinism is a correctness requirement,
//     not a cosmetic one.
//
//  2. The response envelope. Commands wrap their payload in an Envelope
//     carrying the tool version, the command name, warnings, and an optional
//     continuation token, so downstream tooling can parse every command the
//     same way.
//
//  3. Rendering. Render writes an envelope or payload as JSON, YAML, or a
//     plain-text table depending on the requested format.
//
// Snapshot helpers strip time-varying fields (request IDs, timestamps,
// tokens) so tests can compare responses byte for byte.
package output

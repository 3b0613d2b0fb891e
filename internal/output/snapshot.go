package output

import (
	"bytes"
	"encoding/json"
	"strings"
)

// SnapshotExcludeFields lists envelope fields that vary between otherwise
// identical runs. Snapshot comparisons in tests strip them first.
var SnapshotExcludeFields = []string{
	"generatedAt",
	"requestId",
	"continuationToken",
	"data.plan.id",
	"data.plan.createdAt",
}

// NormalizeForSnapshot strips time-varying fields and re-encodes
// deterministically.
func NormalizeForSnapshot(data []byte) ([]byte, error) {
	var parsed map[string]interface{}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, err
	}
	for _, field := range SnapshotExcludeFields {
		removeNestedField(parsed, field)
	}
	return DeterministicEncode(parsed)
}

// CompareSnapshots reports whether two responses are identical once
// time-varying fields are removed.
func CompareSnapshots(a, b []byte) (bool, string) {
	normalizedA, err := NormalizeForSnapshot(a)
	if err != nil {
		return false, "cannot normalize first snapshot: " + err.Error()
	}
	normalizedB, err := NormalizeForSnapshot(b)
	if err != nil {
		return false, "cannot normalize second snapshot: " + err.Error()
	}
	if !bytes.Equal(normalizedA, normalizedB) {
		return false, "snapshots differ"
	}
	return true, ""
}

// removeNestedField deletes a dot-separated path from a decoded JSON object.
// Missing intermediate objects are a no-op.
func removeNestedField(data map[string]interface{}, path string) {
	parts := strings.Split(path, ".")
	current := data
	for _, key := range parts[:len(parts)-1] {
		next, ok := current[key].(map[string]interface{})
		if !ok {
			return
		}
		current = next
	}
	delete(current, parts[len(parts)-1])
}

// SnapshotEqual compares two values after JSON encoding and normalization.
func SnapshotEqual(a, b interface{}) bool {
	aJSON, err := json.Marshal(a)
	if err != nil {
		return false
	}
	bJSON, err := json.Marshal(b)
	if err != nil {
		return false
	}
	equal, _ := CompareSnapshots(aJSON, bJSON)
	return equal
}

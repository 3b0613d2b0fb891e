package output

import "testing"

func TestNormalizeForSnapshot(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "strips generatedAt and requestId",
			input: `{"command":"symbols","generatedAt":"2026-01-01T00:00:00Z","requestId":"r-1","data":{"files":1}}`,
			want:  `{"command":"symbols","data":{"files":1}}`,
		},
		{
			name:  "strips nested plan identity",
			input: `{"command":"replace","data":{"plan":{"id":"abc","createdAt":"2026-01-01T00:00:00Z","operation":"replace"}}}`,
			want:  `{"command":"replace","data":{"plan":{"operation":"replace"}}}`,
		},
		{
			name:  "strips continuation token",
			input: `{"command":"calls","continuationToken":"opaque","data":{"n":2}}`,
			want:  `{"command":"calls","data":{"n":2}}`,
		},
		{
			name:  "no excluded fields present",
			input: `{"command":"context","data":{"text":"x"}}`,
			want:  `{"command":"context","data":{"text":"x"}}`,
		},
		{
			name:    "invalid JSON",
			input:   `{broken`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeForSnapshot([]byte(tt.input))
			if (err != nil) != tt.wantErr {
				t.Fatalf("NormalizeForSnapshot() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && string(got) != tt.want {
				t.Errorf("NormalizeForSnapshot() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestCompareSnapshots(t *testing.T) {
	a := []byte(`{"command":"symbols","generatedAt":"2026-01-01T00:00:00Z","data":{"n":1}}`)
	b := []byte(`{"command":"symbols","generatedAt":"2026-02-02T00:00:00Z","data":{"n":1}}`)
	c := []byte(`{"command":"symbols","generatedAt":"2026-02-02T00:00:00Z","data":{"n":2}}`)

	if equal, reason := CompareSnapshots(a, b); !equal {
		t.Errorf("timestamp-only difference should compare equal: %s", reason)
	}
	if equal, _ := CompareSnapshots(a, c); equal {
		t.Error("payload difference must not compare equal")
	}
}

func TestSnapshotEqual(t *testing.T) {
	a := NewEnvelope("symbols", map[string]int{"n": 1})
	b := NewEnvelope("symbols", map[string]int{"n": 1})
	b.RequestID = "other"

	if !SnapshotEqual(a, b) {
		t.Error("envelopes differing only in volatile fields should be snapshot-equal")
	}

	c := NewEnvelope("symbols", map[string]int{"n": 2})
	if SnapshotEqual(a, c) {
		t.Error("different payloads must not be snapshot-equal")
	}
}

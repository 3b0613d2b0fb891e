package output

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestDeterministicEncode(t *testing.T) {
	tests := []struct {
		name     string
		input    interface{}
		wantJSON string
	}{
		{
			name: "struct with floats",
			input: struct {
				Name  string  `json:"name"`
				Score float64 `json:"score"`
				Count int     `json:"count"`
			}{Name: "helper", Score: 0.123456789, Count: 42},
			wantJSON: `{"count":42,"name":"helper","score":0.123457}`,
		},
		{
			name: "nil pointer field omitted",
			input: struct {
				Name  string   `json:"name"`
				Score *float64 `json:"score,omitempty"`
			}{Name: "helper"},
			wantJSON: `{"name":"helper"}`,
		},
		{
			name: "zero value with omitempty",
			input: struct {
				Name  string `json:"name"`
				Count int    `json:"count,omitempty"`
			}{Name: "helper"},
			wantJSON: `{"name":"helper"}`,
		},
		{
			name: "map keys sorted",
			input: map[string]interface{}{
				"zebra": "last",
				"alpha": "first",
				"beta":  "second",
			},
			wantJSON: `{"alpha":"first","beta":"second","zebra":"last"}`,
		},
		{
			name:     "nil value",
			input:    nil,
			wantJSON: `null`,
		},
		{
			name:     "empty slice collapses to null",
			input:    []string{},
			wantJSON: `null`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DeterministicEncode(tt.input)
			if err != nil {
				t.Fatalf("DeterministicEncode() error = %v", err)
			}
			if string(got) != tt.wantJSON {
				t.Errorf("DeterministicEncode() = %s, want %s", got, tt.wantJSON)
			}
		})
	}
}

func TestDeterministicEncodeConsistency(t *testing.T) {
	env := NewEnvelope("symbols", map[string]interface{}{
		"files": []string{"b.js", "a.js"},
		"counts": map[string]int{
			"functions": 3,
			"variables": 2,
		},
		"reduction": 0.987654321,
	})

	var first []byte
	for i := 0; i < 10; i++ {
		encoded, err := DeterministicEncode(env)
		if err != nil {
			t.Fatalf("DeterministicEncode() error = %v", err)
		}
		if first == nil {
			first = encoded
			continue
		}
		if !bytes.Equal(first, encoded) {
			t.Fatalf("run %d differs:\n%s\n%s", i, first, encoded)
		}
	}
}

func TestDeterministicEncodeIndented(t *testing.T) {
	got, err := DeterministicEncodeIndented(map[string]interface{}{
		"name":  "helper",
		"score": 0.123456789,
	}, "  ")
	if err != nil {
		t.Fatalf("DeterministicEncodeIndented() error = %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(got, &decoded); err != nil {
		t.Fatalf("result is not valid JSON: %v", err)
	}
	if !bytes.Contains(got, []byte("\n")) {
		t.Error("indented output should span multiple lines")
	}
	if decoded["score"] != 0.123457 {
		t.Errorf("score = %v, want rounded 0.123457", decoded["score"])
	}
}

func TestDeterministicMapMarshalJSON(t *testing.T) {
	dm := DeterministicMap{
		"zebra": "last",
		"alpha": "first",
		"beta":  "second",
	}
	got, err := json.Marshal(dm)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `{"alpha":"first","beta":"second","zebra":"last"}`
	if string(got) != want {
		t.Errorf("MarshalJSON() = %s, want %s", got, want)
	}
}

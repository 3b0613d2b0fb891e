package output

import "testing"

func TestRoundFloat(t *testing.T) {
	tests := []struct {
		name  string
		input float64
		want  float64
	}{
		{name: "already short", input: 42.5, want: 42.5},
		{name: "rounds down", input: 0.1234561234, want: 0.123456},
		{name: "rounds up", input: 0.12345678, want: 0.123457},
		{name: "negative", input: -3.14159265, want: -3.141593},
		{name: "zero", input: 0, want: 0},
		{name: "integer valued", input: 100, want: 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RoundFloat(tt.input); got != tt.want {
				t.Errorf("RoundFloat(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestRoundFloatDeterministic(t *testing.T) {
	input := 87.3 / 7.1
	first := RoundFloat(input)
	for i := 0; i < 10; i++ {
		if got := RoundFloat(input); got != first {
			t.Fatalf("RoundFloat(%v) varies: %v != %v", input, got, first)
		}
	}
}

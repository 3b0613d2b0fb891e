package output

import "math"

// RoundFloat rounds to 6 decimal places so float fields encode identically
// across runs.
func RoundFloat(f float64) float64 {
	const scale = 1e6
	return math.Round(f*scale) / scale
}

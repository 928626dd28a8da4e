package grading

import (
	"math"
	"strconv"
)

// round rounds half away from zero at the given number of decimal places.
func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

// formatFixed renders v with exactly places decimals after rounding half away
// from zero, so every view prints the same digits for the same value.
func formatFixed(v float64, places int) string {
	return strconv.FormatFloat(round(v, places), 'f', places, 64)
}

// FormatScore renders a final score the way tables and reports show it.
func FormatScore(score float64) string {
	return formatFixed(score, 1)
}

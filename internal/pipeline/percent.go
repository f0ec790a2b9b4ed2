package pipeline

import (
	"math"
	"strconv"
)

// DefaultPercentDecimals is the precision used by summaries and tables.
const DefaultPercentDecimals = 1

// CalculatePercentage returns value as a percentage of total, or 0 when total
// is 0.
func CalculatePercentage(value, total float64) float64 {
	if total == 0 {
		return 0
	}
	return value / total * 100
}

// FormatPercentage renders value with the given number of decimals, rounding
// half away from zero, followed by "%".
// e.g., (31.25, 1) -> "31.3%", (25.678, 0) -> "26%"
func FormatPercentage(value float64, decimals int) string {
	if decimals < 0 {
		decimals = 0
	}
	scale := math.Pow(10, float64(decimals))
	rounded := math.Round(value*scale) / scale
	return strconv.FormatFloat(rounded, 'f', decimals, 64) + "%"
}

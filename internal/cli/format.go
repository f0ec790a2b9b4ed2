// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/theirongolddev/cusage/internal/pipeline"
)

// FormatRequests formats a request volume with comma separators, keeping up
// to two decimals for fractional volumes.
// e.g., 1234 -> "1,234", 1234.5 -> "1,234.5", 0.25 -> "0.25"
func FormatRequests(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return humanize.Comma(int64(v))
	}
	return humanize.CommafWithDigits(v, 2)
}

// FormatCompact formats a volume with K/M/B suffixes.
// e.g., 1234 -> "1.2K", 1234567 -> "1.2M"
func FormatCompact(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1_000_000_000:
		return fmt.Sprintf("%.1fB", v/1_000_000_000)
	case abs >= 1_000_000:
		return fmt.Sprintf("%.1fM", v/1_000_000)
	case abs >= 1_000:
		return fmt.Sprintf("%.1fK", v/1_000)
	default:
		return FormatRequests(v)
	}
}

// FormatCost formats a USD cost value.
func FormatCost(cost float64) string {
	if cost >= 1000 {
		return "$" + humanize.Comma(int64(math.Round(cost)))
	}
	if cost >= 100 {
		return fmt.Sprintf("$%.0f", cost)
	}
	return fmt.Sprintf("$%.2f", cost)
}

// FormatPercent formats a 0-100 percentage at one decimal.
func FormatPercent(pct float64) string {
	return pipeline.FormatPercentage(pct, pipeline.DefaultPercentDecimals)
}

// FormatRank renders a 1-based rank as an ordinal.
// e.g., 1 -> "1st", 12 -> "12th"
func FormatRank(rank int) string {
	return humanize.Ordinal(rank)
}

// FormatAgo renders a timestamp relative to now.
// e.g., "3 minutes ago"
func FormatAgo(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return humanize.Time(t)
}

// FormatMultiplier renders a model multiplier, "free" for zero.
func FormatMultiplier(m float64) string {
	if m == 0 {
		return "free"
	}
	return humanize.Ftoa(m) + "x"
}

package components

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/cusage/internal/tui/theme"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// ProgressBar renders the file-parsing progress bar with a percentage.
func ProgressBar(pct float64, width int) string {
	t := theme.Active
	pct = clamp01(pct)
	filled := min(int(pct*float64(width)), width)

	barColor := t.Cyan
	switch {
	case pct >= 0.8:
		barColor = t.AccentBright
	case pct >= 0.5:
		barColor = t.Accent
	}

	filledStyle := lipgloss.NewStyle().Foreground(barColor).Background(t.Surface)
	emptyStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(barColor).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	var b strings.Builder
	b.WriteString(filledStyle.Render(strings.Repeat("█", filled)))
	b.WriteString(emptyStyle.Render(strings.Repeat("░", width-filled)))

	return b.String() + spaceStyle.Render(" ") + pctStyle.Render(fmt.Sprintf("%.0f%%", pct*100))
}

// ComplianceBar renders the compliant share of compliant+exceeding as a
// solid bar: compliant in green, the exceeding remainder in red.
func ComplianceBar(compliant, exceeding float64, width int) string {
	t := theme.Active

	share := 0.0
	if total := compliant + exceeding; total > 0 {
		share = compliant / total
	}

	bar := progress.New(
		progress.WithSolidFill(string(t.Compliant())),
		progress.WithWidth(max(width, 4)),
		progress.WithoutPercentage(),
	)
	bar.Full = '█'
	bar.Empty = '█'
	bar.EmptyColor = string(t.Exceeding())
	if compliant+exceeding == 0 {
		bar.EmptyColor = string(t.TextDim)
	}
	return bar.ViewAs(share)
}

// LabeledComplianceBar prefixes a ComplianceBar with a fixed-width label
// and follows it with the exceeding percentage.
func LabeledComplianceBar(label string, compliant, exceeding float64, labelW, barW int) string {
	t := theme.Active

	pct := 0.0
	if total := compliant + exceeding; total > 0 {
		pct = exceeding / total * 100
	}

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(t.ForExceedingShare(pct)).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	return labelStyle.Render(fmt.Sprintf("%-*s", labelW, truncate(label, labelW))) +
		spaceStyle.Render(" ") +
		ComplianceBar(compliant, exceeding, barW) +
		spaceStyle.Render(" ") +
		pctStyle.Render(fmt.Sprintf("%5.1f%%", pct))
}

func clamp01(v float64) float64 {
	return min(max(v, 0), 1)
}

func truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/theirongolddev/cusage/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders a unicode sparkline from values.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	t := theme.Active

	peak := 0.0
	for _, v := range values {
		peak = max(peak, v)
	}
	if peak == 0 {
		peak = 1
	}

	var buf strings.Builder
	buf.Grow(len(values) * 3)
	for _, v := range values {
		idx := int(v / peak * float64(len(sparkBlocks)-1))
		idx = min(max(idx, 0), len(sparkBlocks)-1)
		buf.WriteRune(sparkBlocks[idx])
	}

	return lipgloss.NewStyle().Foreground(color).Background(t.Surface).Render(buf.String())
}

// StackedBars renders one column per date with the compliant part at the
// bottom and the exceeding part stacked above it. compliant and exceeding
// must have equal length; labels is optional.
func StackedBars(compliant, exceeding []float64, labels []string, width, height int) string {
	n := min(len(compliant), len(exceeding))
	if n == 0 {
		return ""
	}
	t := theme.Active

	totals := make([]float64, n)
	peak := 0.0
	for i := range n {
		totals[i] = compliant[i] + exceeding[i]
		peak = max(peak, totals[i])
	}
	if width < 15 || height < 3 {
		return Sparkline(totals, t.Accent)
	}
	if peak == 0 {
		peak = 1
	}

	yLabel := formatChartLabel(peak)
	yLabelW := max(len(yLabel)+1, 4)
	chartW := max(width-yLabelW-1, 5)

	// Keep the most recent dates when there are more than fit.
	barW, gap := 1, 1
	if maxBars := (chartW + 1) / 2; n > maxBars {
		compliant = compliant[n-maxBars : n]
		exceeding = exceeding[n-maxBars : n]
		totals = totals[n-maxBars:]
		if len(labels) == n {
			labels = labels[n-maxBars:]
		}
		n = maxBars
	} else {
		barW = min(max((chartW-(n-1))/n, 1), 4)
	}
	axisLen := n*barW + (n-1)*gap

	axisStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	okStyle := lipgloss.NewStyle().Foreground(t.Compliant()).Background(t.Surface)
	overStyle := lipgloss.NewStyle().Foreground(t.Exceeding()).Background(t.Surface)
	blank := lipgloss.NewStyle().Background(t.Surface)

	// Column heights in rows, rounded so any non-zero value shows.
	okRows := make([]int, n)
	allRows := make([]int, n)
	for i := range n {
		allRows[i] = scaleRows(totals[i], peak, height)
		okRows[i] = min(scaleRows(compliant[i], peak, height), allRows[i])
	}

	var b strings.Builder
	for row := height; row >= 1; row-- {
		label := ""
		if row == height {
			label = yLabel
		}
		b.WriteString(axisStyle.Render(fmt.Sprintf("%*s", yLabelW, label)))
		b.WriteString(axisStyle.Render("│"))
		for i := range n {
			if i > 0 {
				b.WriteString(blank.Render(strings.Repeat(" ", gap)))
			}
			cell := strings.Repeat("█", barW)
			switch {
			case row <= okRows[i]:
				b.WriteString(okStyle.Render(cell))
			case row <= allRows[i]:
				b.WriteString(overStyle.Render(cell))
			default:
				b.WriteString(blank.Render(strings.Repeat(" ", barW)))
			}
		}
		b.WriteString("\n")
	}

	b.WriteString(axisStyle.Render(fmt.Sprintf("%*s", yLabelW, "0")))
	b.WriteString(axisStyle.Render("└" + strings.Repeat("─", axisLen)))

	if len(labels) == n {
		first, last := labels[0], labels[n-1]
		pad := axisLen - len(first) - len(last)
		b.WriteString("\n")
		b.WriteString(blank.Render(strings.Repeat(" ", yLabelW+1)))
		if pad > 0 {
			b.WriteString(axisStyle.Render(first + strings.Repeat(" ", pad) + last))
		} else {
			b.WriteString(axisStyle.Render(last))
		}
	}

	return b.String()
}

func scaleRows(v, peak float64, height int) int {
	if v <= 0 {
		return 0
	}
	return min(max(int(math.Round(v/peak*float64(height))), 1), height)
}

func formatChartLabel(v float64) string {
	switch {
	case v >= 1e6:
		return trimZero(fmt.Sprintf("%.1f", v/1e6)) + "M"
	case v >= 1e3:
		return trimZero(fmt.Sprintf("%.1f", v/1e3)) + "k"
	case v >= 1:
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}

func trimZero(s string) string {
	return strings.TrimSuffix(s, ".0")
}

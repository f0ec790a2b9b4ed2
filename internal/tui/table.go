package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/cusage/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// column describes one fixed-width table column.
type column struct {
	title string
	width int
	left  bool
}

// renderTable renders a header and rows on the surface color. The row at
// cursor (or none when cursor < 0) is highlighted.
func renderTable(cols []column, rows [][]string, cursor int) string {
	t := theme.Active

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	cursorStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceHover).Bold(true)

	var b strings.Builder
	b.WriteString(headerStyle.Render(formatRow(cols, titles(cols))))
	for i, row := range rows {
		b.WriteString("\n")
		style := rowStyle
		if i == cursor {
			style = cursorStyle
		}
		b.WriteString(style.Render(formatRow(cols, row)))
	}
	return b.String()
}

func titles(cols []column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.title
	}
	return out
}

func formatRow(cols []column, cells []string) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		cell := ""
		if i < len(cells) {
			cell = truncStr(cells[i], c.width)
		}
		if c.left {
			parts[i] = fmt.Sprintf("%-*s", c.width, cell)
		} else {
			parts[i] = fmt.Sprintf("%*s", c.width, cell)
		}
	}
	return strings.Join(parts, " ")
}

// tableWidth is the rendered width of a row for cols.
func tableWidth(cols []column) int {
	w := max(len(cols)-1, 0)
	for _, c := range cols {
		w += c.width
	}
	return w
}

// visibleWindow returns the [start, end) slice of n rows that keeps cursor
// visible in a window of size rows.
func visibleWindow(n, cursor, size int) (int, int) {
	if size <= 0 || n <= size {
		return 0, n
	}
	start := max(cursor-size/2, 0)
	end := start + size
	if end > n {
		end = n
		start = n - size
	}
	return start, end
}

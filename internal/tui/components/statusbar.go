package components

import (
	"github.com/theirongolddev/cusage/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// StatusInfo is the state summarized in the bottom status bar.
type StatusInfo struct {
	Plan       string
	Records    int
	DataAge    string
	Refreshing bool
	// Error is the last refresh failure; the previous data stays on screen.
	Error string
}

// RenderStatusBar renders the bottom status bar.
func RenderStatusBar(width int, info StatusInfo) string {
	t := theme.Active

	base := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	accent := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)

	left := base.Render(" [?]help  [p]lan ") + accent.Render(info.Plan) + base.Render("  [r]efresh  [q]uit")

	right := ""
	switch {
	case info.Error != "":
		errStyle := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface)
		right = errStyle.Render(truncate(info.Error, max(width/2, 10)) + " ")
	case info.Refreshing:
		right = accent.Render("refreshing… ")
	case info.DataAge != "":
		right = base.Render(formatRecords(info.Records) + " · loaded " + info.DataAge + " ")
	}

	padding := max(width-lipgloss.Width(left)-lipgloss.Width(right), 0)
	return left + base.Render(spaces(padding)) + right
}

func formatRecords(n int) string {
	if n == 1 {
		return "1 record"
	}
	return itoa(n) + " records"
}

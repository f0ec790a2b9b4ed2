package components

import (
	"strconv"
	"strings"

	"github.com/theirongolddev/cusage/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Tab represents a single tab in the tab bar.
type Tab struct {
	Name   string
	Key    rune
	KeyPos int // position of the shortcut letter in the name (-1 if not in name)
}

// Tabs defines all available tabs.
var Tabs = []Tab{
	{Name: "Overview", Key: 'o', KeyPos: 0},
	{Name: "Daily", Key: 'd', KeyPos: 0},
	{Name: "Models", Key: 'm', KeyPos: 0},
	{Name: "Power Users", Key: 'u', KeyPos: 6},
	{Name: "Exceeded", Key: 'e', KeyPos: 0},
}

// tabPadding is the horizontal padding on each side of a tab label.
const tabPadding = 1

// RenderTabBar renders the tab bar with the given active index.
func RenderTabBar(activeIdx int, width int) string {
	t := theme.Active

	activeStyle := lipgloss.NewStyle().
		Foreground(t.AccentBright).
		Background(t.SurfaceHover).
		Bold(true).
		Padding(0, tabPadding)
	inactiveStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface)
	keyStyle := lipgloss.NewStyle().
		Foreground(t.Accent).
		Background(t.Surface).
		Bold(true)
	pad := inactiveStyle.Render(strings.Repeat(" ", tabPadding))

	parts := make([]string, 0, len(Tabs))
	for i, tab := range Tabs {
		if i == activeIdx {
			parts = append(parts, activeStyle.Render(tab.Name))
			continue
		}
		if tab.KeyPos >= 0 && tab.KeyPos < len(tab.Name) {
			parts = append(parts, pad+
				inactiveStyle.Render(tab.Name[:tab.KeyPos])+
				keyStyle.Render(tab.Name[tab.KeyPos:tab.KeyPos+1])+
				inactiveStyle.Render(tab.Name[tab.KeyPos+1:])+
				pad)
			continue
		}
		parts = append(parts, pad+inactiveStyle.Render(tab.Name)+pad)
	}

	row := strings.Join(parts, inactiveStyle.Render(" "))
	fill := max(width-lipgloss.Width(row), 0)
	return row + inactiveStyle.Render(spaces(fill))
}

// TabVisualWidth returns the rendered width of a tab label. Active and
// inactive tabs share the same width so click targets do not shift.
func TabVisualWidth(tab Tab) int {
	return lipgloss.Width(tab.Name) + 2*tabPadding
}

// TabIdxByKey returns the tab index for a given key press, or -1.
func TabIdxByKey(key rune) int {
	for i, tab := range Tabs {
		if tab.Key == key {
			return i
		}
	}
	return -1
}

func spaces(n int) string {
	return strings.Repeat(" ", max(n, 0))
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

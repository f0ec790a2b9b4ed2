// Package theme defines color themes for the cusage TUI dashboard.
package theme

import "github.com/charmbracelet/lipgloss"

// Theme defines the color roles used throughout the TUI.
type Theme struct {
	Name string

	// Surfaces, back to front.
	Background   lipgloss.Color
	Surface      lipgloss.Color // cards and bars
	SurfaceHover lipgloss.Color // selected row, active tab
	Border       lipgloss.Color
	BorderAccent lipgloss.Color // focused card

	TextDim     lipgloss.Color // hints, axis labels
	TextMuted   lipgloss.Color // labels
	TextPrimary lipgloss.Color

	Accent       lipgloss.Color
	AccentBright lipgloss.Color

	// Status colors. Green and Red carry compliant and exceeding volume.
	Green   lipgloss.Color
	Yellow  lipgloss.Color
	Orange  lipgloss.Color
	Red     lipgloss.Color
	Blue    lipgloss.Color
	Magenta lipgloss.Color
	Cyan    lipgloss.Color
}

// Compliant is the color for requests within quota.
func (t Theme) Compliant() lipgloss.Color { return t.Green }

// Exceeding is the color for requests over quota.
func (t Theme) Exceeding() lipgloss.Color { return t.Red }

// ForExceedingShare grades an exceeding percentage (0-100) from calm to alarming.
func (t Theme) ForExceedingShare(pct float64) lipgloss.Color {
	switch {
	case pct >= 50:
		return t.Red
	case pct >= 25:
		return t.Orange
	case pct >= 10:
		return t.Yellow
	default:
		return t.Green
	}
}

// Active is the currently selected theme.
var Active = FlexokiDark

// FlexokiDark is the default: warm paper tones on near-black.
var FlexokiDark = Theme{
	Name:       "flexoki-dark",
	Background: "#100F0F", Surface: "#1C1B1A", SurfaceHover: "#282726",
	Border: "#403E3C", BorderAccent: "#3AA99F",
	TextDim: "#575653", TextMuted: "#878580", TextPrimary: "#FFFCF0",
	Accent: "#3AA99F", AccentBright: "#5BC8BE",
	Green: "#879A39", Yellow: "#D0A215", Orange: "#DA702C", Red: "#D14D41",
	Blue: "#4385BE", Magenta: "#CE5D97", Cyan: "#24837B",
}

var CatppuccinMocha = Theme{
	Name:       "catppuccin-mocha",
	Background: "#1E1E2E", Surface: "#313244", SurfaceHover: "#45475A",
	Border: "#585B70", BorderAccent: "#89B4FA",
	TextDim: "#6C7086", TextMuted: "#A6ADC8", TextPrimary: "#CDD6F4",
	Accent: "#89B4FA", AccentBright: "#B4D0FB",
	Green: "#A6E3A1", Yellow: "#F9E2AF", Orange: "#FAB387", Red: "#F38BA8",
	Blue: "#89B4FA", Magenta: "#F5C2E7", Cyan: "#94E2D5",
}

var TokyoNight = Theme{
	Name:       "tokyo-night",
	Background: "#1A1B26", Surface: "#24283B", SurfaceHover: "#343A52",
	Border: "#565F89", BorderAccent: "#7AA2F7",
	TextDim: "#565F89", TextMuted: "#A9B1D6", TextPrimary: "#C0CAF5",
	Accent: "#7AA2F7", AccentBright: "#A9C1FF",
	Green: "#9ECE6A", Yellow: "#E0AF68", Orange: "#FF9E64", Red: "#F7768E",
	Blue: "#7AA2F7", Magenta: "#BB9AF7", Cyan: "#7DCFFF",
}

// Terminal sticks to the 16 ANSI colors.
var Terminal = Theme{
	Name:       "terminal",
	Background: "0", Surface: "0", SurfaceHover: "8",
	Border: "8", BorderAccent: "6",
	TextDim: "8", TextMuted: "7", TextPrimary: "15",
	Accent: "6", AccentBright: "14",
	Green: "2", Yellow: "3", Orange: "3", Red: "1",
	Blue: "4", Magenta: "5", Cyan: "6",
}

// All lists the selectable themes; the setup form offers them in this order.
var All = []Theme{FlexokiDark, CatppuccinMocha, TokyoNight, Terminal}

// Names lists the theme names in display order.
func Names() []string {
	names := make([]string, len(All))
	for i, t := range All {
		names[i] = t.Name
	}
	return names
}

// ByName returns a theme by its name, defaulting to FlexokiDark.
func ByName(name string) Theme {
	for _, t := range All {
		if t.Name == name {
			return t
		}
	}
	return FlexokiDark
}

// SetActive sets the active theme by name.
func SetActive(name string) {
	Active = ByName(name)
}

package cmd

import (
	"fmt"

	"github.com/theirongolddev/cusage/internal/config"
	"github.com/theirongolddev/cusage/internal/tui"
	"github.com/theirongolddev/cusage/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive TUI dashboard",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	// First run without --file: there is nothing to load until setup names an export.
	if len(flagFiles) == 0 && !config.Exists() {
		if err := runSetup(cmd, args); err != nil {
			return err
		}
	}

	s, err := loadSettings()
	if err != nil {
		return err
	}
	theme.SetActive(s.cfg.Appearance.Theme)

	// Force TrueColor so all background styling produces ANSI codes
	lipgloss.SetColorProfile(termenv.TrueColor)

	opts := s.reportOptions()
	app := tui.NewApp(tui.Options{
		Paths:    s.paths,
		Plan:     opts.Plan,
		Plans:    opts.Plans,
		Pricing:  opts.Pricing,
		UseCache: !flagNoCache,
	})
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

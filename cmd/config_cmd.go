package cmd

import (
	"fmt"
	"sort"

	"github.com/theirongolddev/cusage/internal/cli"
	"github.com/theirongolddev/cusage/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.Path())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Default plan:   %s\n", cfg.General.DefaultPlan)
	if cfg.General.DefaultFile != "" {
		fmt.Printf("    Default export: %s\n", cfg.General.DefaultFile)
	} else {
		fmt.Println("    Default export: not set")
	}
	if cfg.General.LogLevel != "" {
		fmt.Printf("    Log level:      %s\n", cfg.General.LogLevel)
	}
	fmt.Println()

	fmt.Println("  [Pricing]")
	fmt.Printf("    Price per excess request: %s\n", cli.FormatCost(cfg.Pricing.PricePerUnit))
	fmt.Println()

	fmt.Println("  [Plans]")
	fmt.Printf("    Built-in models: %d\n", config.DefaultPlanTable().Len())
	if len(cfg.Plans.Overrides) == 0 {
		fmt.Println("    Overrides: none")
	} else {
		names := make([]string, 0, len(cfg.Plans.Overrides))
		for name := range cfg.Plans.Overrides {
			names = append(names, name)
		}
		sort.Strings(names)
		table := cfg.PlanTable()
		for _, name := range names {
			p, _ := table.Lookup(name)
			fmt.Printf("    %-24s %s  individual %g  business %g  enterprise %g\n",
				name, cli.FormatMultiplier(p.Multiplier), p.Individual, p.Business, p.Enterprise)
		}
	}
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [Daemon]")
	fmt.Printf("    Address:       %s\n", cfg.Daemon.Addr)
	fmt.Printf("    Events buffer: %d\n", cfg.Daemon.EventsBuffer)
	fmt.Println()

	fmt.Println("  Environment overrides: " + config.EnvPlan + ", " + config.EnvPricePerUnit + ", " +
		config.EnvFile + ", " + config.EnvLogLevel)
	fmt.Println("  Run `cusage setup` to reconfigure.")
	return nil
}

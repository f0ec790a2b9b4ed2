package cmd

import (
	"fmt"

	"github.com/theirongolddev/cusage/internal/cli"
	"github.com/theirongolddev/cusage/internal/model"

	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Per-model requests, compliance, and plan limits",
	RunE:  runModels,
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}

func runModels(cmd *cobra.Command, _ []string) error {
	data, err := loadData()
	if err != nil {
		return err
	}
	if noData(data) {
		return nil
	}
	r, err := data.report(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("MODEL USAGE  %s plan", r.Plan.Label())))
	fmt.Println()

	unconfigured := false
	rows := make([][]string, 0, len(r.ModelSummaries)+2)
	for _, m := range r.ModelSummaries {
		name := m.Model
		if !m.Configured {
			name += "*"
			unconfigured = true
		}
		rows = append(rows, []string{
			name,
			cli.FormatMultiplier(m.Multiplier),
			m.PlanLimitLabel(r.Plan),
			cli.FormatRequests(m.TotalRequests),
			cli.FormatPercent(m.PercentageOfTotal),
			cli.FormatPercent(m.CompliantPercentage),
			cli.FormatPercent(m.ExceedingPercentage),
			cli.FormatCost(m.ExcessCost),
		})
	}
	rows = append(rows, cli.SeparatorRow)
	rows = append(rows, []string{
		"TOTAL", "", "",
		cli.FormatRequests(r.Status.TotalRequests),
		"",
		cli.FormatPercent(r.Status.CompliantPercentage),
		cli.FormatPercent(r.Status.ExceedingPercentage),
		cli.FormatCost(r.ExcessCost),
	})

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Model", "Mult", r.Plan.Label() + " limit", "Requests", "Share", "Compliant", "Exceeding", "Excess"},
		Rows:    rows,
	}))
	if unconfigured {
		fmt.Printf("  * not in the plan table; using multiplier 0 and default limits\n")
	}
	fmt.Printf("  %s limits are per month; %q means the model is free.\n\n", r.Plan.Label(), model.UnlimitedQuota)
	return nil
}

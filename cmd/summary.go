package cmd

import (
	"fmt"

	"github.com/theirongolddev/cusage/internal/cli"
	"github.com/theirongolddev/cusage/internal/pipeline"

	"github.com/spf13/cobra"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Quota compliance summary (default command)",
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, _ []string) error {
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
	st := r.Status

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("PREMIUM REQUESTS  %s plan", r.Plan.Label())))
	fmt.Println()

	powerShare := pipeline.CalculatePercentage(r.PowerUsers.TotalPowerUserRequests, st.TotalRequests)
	rows := [][]string{
		{"Records", cli.FormatRequests(float64(r.Records))},
		{"Users", cli.FormatRequests(float64(r.Users))},
		{"Models", cli.FormatRequests(float64(len(r.Models)))},
		{"Last date", r.LastDate},
		cli.SeparatorRow,
		{"Total requests", cli.FormatRequests(st.TotalRequests)},
		{"Compliant", fmt.Sprintf("%s  (%s)", cli.FormatRequests(st.CompliantRequests), cli.FormatPercent(st.CompliantPercentage))},
		{"Exceeding", fmt.Sprintf("%s  (%s)", cli.FormatRequests(st.ExceedingRequests), cli.FormatPercent(st.ExceedingPercentage))},
		{"Users over quota", cli.FormatRequests(float64(r.UsersExceedingQuota))},
		cli.SeparatorRow,
		{"Power users", fmt.Sprintf("%d  (%s of requests)", r.PowerUsers.TotalPowerUsers, cli.FormatPercent(powerShare))},
		{"Excess cost", cli.FormatCost(r.ExcessCost)},
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows:    rows,
	}))
	fmt.Println()
	fmt.Println("  " + cli.RenderComplianceBar(st.CompliantRequests, st.ExceedingRequests, 50))

	if len(r.DailyCompliance) > 1 {
		totals := make([]float64, len(r.DailyCompliance))
		for i, d := range r.DailyCompliance {
			totals[i] = d.CompliantRequests + d.ExceedingRequests
		}
		fmt.Printf("  %s  %d days\n", cli.RenderSparkline(totals), len(totals))
	}
	fmt.Println()
	return nil
}

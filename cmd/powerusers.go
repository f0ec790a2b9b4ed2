package cmd

import (
	"fmt"
	"slices"

	"github.com/theirongolddev/cusage/internal/cli"
	"github.com/theirongolddev/cusage/internal/pipeline"

	"github.com/spf13/cobra"
)

var flagPowerUsers []string

var powerUsersCmd = &cobra.Command{
	Use:     "power-users",
	Aliases: []string{"powerusers"},
	Short:   "Top 10% of users by request volume",
	RunE:    runPowerUsers,
}

func init() {
	powerUsersCmd.Flags().StringSliceVar(&flagPowerUsers, "user", nil, "Limit the daily breakdown to these power users (repeatable)")
	rootCmd.AddCommand(powerUsersCmd)
}

func runPowerUsers(cmd *cobra.Command, _ []string) error {
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
	pu := r.PowerUsers

	names := pu.UserNames()
	for _, u := range flagPowerUsers {
		if !slices.Contains(names, u) {
			return fmt.Errorf("%q is not a power user", u)
		}
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("POWER USERS  top %d of %d", pu.TotalPowerUsers, r.Users)))
	fmt.Println()

	rows := make([][]string, 0, len(pu.PowerUsers))
	for i, u := range pu.PowerUsers {
		rows = append(rows, []string{
			cli.FormatRank(i + 1),
			u.User,
			cli.FormatRequests(u.TotalRequests),
			cli.FormatRequests(u.ExceedingRequests),
			cli.FormatPercent(pipeline.CalculatePercentage(u.TotalRequests, r.Status.TotalRequests)),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers:  []string{"#", "User", "Requests", "Exceeding", "Share"},
		Rows:     rows,
		LeftCols: 2,
	}))

	modelRows := make([][]string, 0, len(pu.PowerUserModelSummary))
	for _, m := range pu.PowerUserModelSummary {
		modelRows = append(modelRows, []string{
			m.Model,
			cli.FormatRequests(m.TotalRequests),
			cli.FormatPercent(pipeline.CalculatePercentage(m.TotalRequests, pu.TotalPowerUserRequests)),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Power User Models",
		Headers: []string{"Model", "Requests", "Share"},
		Rows:    modelRows,
	}))

	breakdown := r.PowerUserBreakdown
	label := "all power users"
	if len(flagPowerUsers) > 0 {
		breakdown = pipeline.PowerUserDailyBreakdown(data.records, flagPowerUsers)
		label = fmt.Sprintf("%d selected", len(flagPowerUsers))
	}

	if len(flagPowerUsers) == 0 && len(r.PowerUserDaily) > 0 {
		fmt.Println(cli.RenderLineChart(cli.DailySeries(r.PowerUserDaily), 60, 8, "power user requests/day"))
		fmt.Println()
	}

	dayRows := make([][]string, 0, len(breakdown))
	for _, d := range breakdown {
		dayRows = append(dayRows, []string{
			d.Date,
			cli.FormatRequests(d.CompliantRequests),
			cli.FormatRequests(d.ExceedingRequests),
			cli.RenderComplianceBar(d.CompliantRequests, d.ExceedingRequests, 20),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Daily Breakdown (" + label + ")",
		Headers: []string{"Date", "Compliant", "Exceeding", ""},
		Rows:    dayRows,
	}))
	fmt.Println()
	return nil
}

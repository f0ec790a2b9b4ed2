package cmd

import (
	"fmt"

	"github.com/theirongolddev/cusage/internal/cli"
	"github.com/theirongolddev/cusage/internal/pipeline"

	"github.com/spf13/cobra"
)

var (
	flagDailyByModel bool
	flagDailyChart   bool
)

var dailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Daily compliant and exceeding requests",
	RunE:  runDaily,
}

func init() {
	dailyCmd.Flags().BoolVar(&flagDailyByModel, "by-model", false, "Split each day by model")
	dailyCmd.Flags().BoolVar(&flagDailyChart, "chart", true, "Show a chart under the table")
	rootCmd.AddCommand(dailyCmd)
}

func runDaily(cmd *cobra.Command, _ []string) error {
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
	if flagDailyByModel {
		fmt.Println(cli.RenderTitle("DAILY REQUESTS BY MODEL"))
		fmt.Println()

		rows := make([][]string, 0, len(r.Daily))
		prevDate := ""
		for _, d := range r.Daily {
			if prevDate != "" && d.Date != prevDate {
				rows = append(rows, cli.SeparatorRow)
			}
			prevDate = d.Date
			rows = append(rows, []string{
				d.Date,
				d.Model,
				cli.FormatRequests(d.CompliantRequests),
				cli.FormatRequests(d.ExceedingRequests),
				cli.FormatRequests(d.CompliantRequests + d.ExceedingRequests),
			})
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Headers:  []string{"Date", "Model", "Compliant", "Exceeding", "Total"},
			Rows:     rows,
			LeftCols: 2,
		}))

		if flagDailyChart {
			matrix := pipeline.DailyModelMatrix(r.DailyVolume)
			fmt.Println()
			fmt.Println(cli.RenderLineChart(matrix.Totals(), 60, 10,
				fmt.Sprintf("requests/day across %d models", len(matrix.Models))))
		}
		fmt.Println()
		return nil
	}

	fmt.Println(cli.RenderTitle("DAILY REQUESTS"))
	fmt.Println()

	rows := make([][]string, 0, len(r.DailyCompliance))
	for _, d := range r.DailyCompliance {
		total := d.CompliantRequests + d.ExceedingRequests
		rows = append(rows, []string{
			d.Date,
			cli.FormatRequests(d.CompliantRequests),
			cli.FormatRequests(d.ExceedingRequests),
			cli.FormatRequests(total),
			cli.FormatPercent(pipeline.CalculatePercentage(d.ExceedingRequests, total)),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Date", "Compliant", "Exceeding", "Total", "Exceed %"},
		Rows:    rows,
	}))

	if flagDailyChart {
		fmt.Println()
		fmt.Println(cli.RenderComplianceChart(r.DailyCompliance, 60, 10, "compliant (green) vs exceeding (red)"))
	}
	fmt.Println()
	return nil
}

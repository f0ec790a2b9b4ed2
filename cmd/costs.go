package cmd

import (
	"fmt"

	"github.com/theirongolddev/cusage/internal/cli"
	"github.com/theirongolddev/cusage/internal/pipeline"

	"github.com/spf13/cobra"
)

var costsCmd = &cobra.Command{
	Use:   "costs",
	Short: "Excess cost of requests over quota, by model",
	RunE:  runCosts,
}

func init() {
	rootCmd.AddCommand(costsCmd)
}

func runCosts(cmd *cobra.Command, _ []string) error {
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

	costs := pipeline.AggregateExcessCosts(r.ModelSummaryRows())

	fmt.Println()
	fmt.Println(cli.RenderTitle("EXCESS COST"))
	fmt.Println()

	if len(costs.ByModel) == 0 {
		fmt.Println("  No billable requests over quota.")
		if costs.FreeExceeding > 0 {
			fmt.Printf("  %s exceeding requests were on free models.\n", cli.FormatRequests(costs.FreeExceeding))
		}
		fmt.Println()
		return nil
	}

	rows := make([][]string, 0, len(costs.ByModel)+2)
	for _, mc := range costs.ByModel {
		rows = append(rows, []string{
			mc.Model,
			cli.FormatRequests(mc.Exceeding),
			cli.FormatMultiplier(mc.Multiplier),
			cli.FormatRequests(mc.Weighted),
			cli.FormatCost(mc.TotalCost),
			cli.FormatPercent(mc.Share),
		})
	}
	rows = append(rows, cli.SeparatorRow)
	rows = append(rows, []string{"TOTAL", "", "", "", cli.FormatCost(costs.TotalCost), ""})

	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "By Model",
		Headers: []string{"Model", "Exceeding", "Mult", "Weighted", "Cost", "Share"},
		Rows:    rows,
	}))

	top := costs.ByModel[0].TotalCost
	for _, mc := range costs.ByModel {
		fmt.Printf("%s  %s\n", cli.RenderHorizontalBar(fmt.Sprintf("%-24s", mc.Model), mc.TotalCost, top, 30), cli.FormatCost(mc.TotalCost))
	}

	if costs.FreeExceeding > 0 {
		fmt.Printf("\n  %s exceeding requests on free models are not billed.\n", cli.FormatRequests(costs.FreeExceeding))
	}
	fmt.Printf("  Price: %s per weighted request\n\n", cli.FormatCost(data.cfg.Pricing.PricePerUnit))
	return nil
}

package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/cusage/internal/cli"
	"github.com/theirongolddev/cusage/internal/pipeline"
	"github.com/theirongolddev/cusage/internal/tui/components"
)

func (a App) renderModelsTab(cw int) string {
	r := a.report
	if len(r.ModelSummaries) == 0 {
		return components.ContentCard("Models", mutedText("No data"), cw)
	}

	cols := []column{
		{title: "Model", width: 26, left: true},
		{title: "Mult", width: 6},
		{title: r.Plan.Label(), width: 10},
		{title: "Requests", width: 11},
		{title: "Share", width: 7},
		{title: "Compliant", width: 9},
		{title: "Exceeding", width: 9},
		{title: "Excess", width: 10},
	}
	if a.isCompactLayout() {
		cols[0].width = 20
		cols = append(cols[:5], cols[6:]...)
	}

	rows := make([][]string, 0, len(r.ModelSummaries))
	for _, m := range r.ModelSummaries {
		name := m.Model
		if !m.Configured {
			name += "*"
		}
		row := []string{
			name,
			cli.FormatMultiplier(m.Multiplier),
			m.PlanLimitLabel(r.Plan),
			cli.FormatRequests(m.TotalRequests),
			cli.FormatPercent(m.PercentageOfTotal),
			cli.FormatPercent(m.CompliantPercentage),
			cli.FormatPercent(m.ExceedingPercentage),
			cli.FormatCost(m.ExcessCost),
		}
		if a.isCompactLayout() {
			row = append(row[:5], row[6:]...)
		}
		rows = append(rows, row)
	}

	body := renderTable(cols, rows, -1)
	for _, m := range r.ModelSummaries {
		if !m.Configured {
			body += "\n" + mutedText("* not in the plan table; fallback limits shown")
			break
		}
	}

	var b strings.Builder
	b.WriteString(components.ContentCard(fmt.Sprintf("Models · %s plan limits  [p] to cycle", r.Plan.Label()), body, cw))
	b.WriteString("\n")
	b.WriteString(components.ContentCard("Excess Cost", a.excessCostBody(), cw))
	return b.String()
}

func (a App) excessCostBody() string {
	costs := pipeline.AggregateExcessCosts(a.report.ModelSummaryRows())
	if len(costs.ByModel) == 0 {
		lines := []string{mutedText("No billable requests over quota")}
		if costs.FreeExceeding > 0 {
			lines = append(lines, mutedText(cli.FormatRequests(costs.FreeExceeding)+" exceeding requests on free models"))
		}
		return strings.Join(lines, "\n")
	}

	cols := []column{
		{title: "Model", width: 26, left: true},
		{title: "Exceeding", width: 11},
		{title: "Mult", width: 6},
		{title: "Weighted", width: 11},
		{title: "Cost", width: 10},
		{title: "Share", width: 7},
	}
	rows := make([][]string, 0, len(costs.ByModel)+1)
	for _, c := range costs.ByModel {
		rows = append(rows, []string{
			c.Model,
			cli.FormatRequests(c.Exceeding),
			cli.FormatMultiplier(c.Multiplier),
			cli.FormatRequests(c.Weighted),
			cli.FormatCost(c.TotalCost),
			cli.FormatPercent(c.Share),
		})
	}
	rows = append(rows, []string{"Total", "", "", "", cli.FormatCost(costs.TotalCost), ""})

	body := renderTable(cols, rows, -1)
	if costs.FreeExceeding > 0 {
		body += "\n" + mutedText(cli.FormatRequests(costs.FreeExceeding)+" exceeding requests on free models are not billed")
	}
	return body
}

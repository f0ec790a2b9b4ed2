package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/cusage/internal/cli"
	"github.com/theirongolddev/cusage/internal/pipeline"
	"github.com/theirongolddev/cusage/internal/tui/components"
	"github.com/theirongolddev/cusage/internal/tui/theme"
)

var dailyColumns = []column{
	{title: "Date", width: 10, left: true},
	{title: "Compliant", width: 11},
	{title: "Exceeding", width: 11},
	{title: "Total", width: 11},
	{title: "Exceed %", width: 9},
}

func (a App) renderDailyTab(cw, contentH int) string {
	days := a.report.DailyCompliance
	if len(days) == 0 {
		return components.ContentCard("Daily", mutedText("No data"), cw)
	}

	// Newest first; the table keeps as many recent days as fit.
	rowsH := max(contentH-4, 3)
	rows := make([][]string, 0, min(len(days), rowsH))
	for i := len(days) - 1; i >= 0 && len(rows) < rowsH; i-- {
		d := days[i]
		total := d.CompliantRequests + d.ExceedingRequests
		rows = append(rows, []string{
			d.Date,
			cli.FormatRequests(d.CompliantRequests),
			cli.FormatRequests(d.ExceedingRequests),
			cli.FormatRequests(total),
			cli.FormatPercent(pipeline.CalculatePercentage(d.ExceedingRequests, total)),
		})
	}

	tableW := tableWidth(dailyColumns) + 4
	tableCard := components.ContentCard(
		fmt.Sprintf("Daily Compliance (%d days)", len(days)),
		renderTable(dailyColumns, rows, -1),
		tableW,
	)

	rightW := cw - tableW
	if rightW < 30 {
		return tableCard
	}
	return components.CardRow([]string{
		tableCard,
		components.ContentCard("Requests by Model", a.modelSparklines(components.CardInnerWidth(rightW), rowsH), rightW),
	})
}

// modelSparklines renders one sparkline per model over the full date range.
func (a App) modelSparklines(width, limit int) string {
	t := theme.Active
	matrix := pipeline.DailyModelMatrix(a.report.DailyVolume)
	if len(matrix.Dates) == 0 {
		return mutedText("No data")
	}

	type modelRow struct {
		name   string
		values []float64
		total  float64
	}
	var rows []modelRow
	for _, m := range a.report.ModelSummaries {
		rows = append(rows, modelRow{name: m.Model, values: matrix.Column(m.Model), total: m.TotalRequests})
	}

	nameW := min(22, width/3)
	totalW := 9
	sparkW := max(width-nameW-totalW-2, 4)

	var b strings.Builder
	b.WriteString(mutedText(fmt.Sprintf("%s → %s", matrix.Dates[0], matrix.Dates[len(matrix.Dates)-1])))
	for i, r := range rows {
		if i >= limit-1 {
			b.WriteString("\n")
			b.WriteString(mutedText(fmt.Sprintf("+%d more", len(rows)-i)))
			break
		}
		values := r.values
		if len(values) > sparkW {
			values = values[len(values)-sparkW:]
		}
		b.WriteString("\n")
		b.WriteString(mutedText(fmt.Sprintf("%-*s ", nameW, truncStr(r.name, nameW))))
		b.WriteString(components.Sparkline(values, t.Blue))
		b.WriteString(mutedText(fmt.Sprintf(" %*s", totalW, cli.FormatCompact(r.total))))
	}
	return b.String()
}

package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/cusage/internal/cli"
	"github.com/theirongolddev/cusage/internal/pipeline"
	"github.com/theirongolddev/cusage/internal/tui/components"
)

var exceededUserColumns = []column{
	{title: "User", width: 22, left: true},
}

var exceededDayColumns = []column{
	{title: "Date", width: 10, left: true},
	{title: "Exceeded", width: 10},
	{title: "Compliant", width: 10},
	{title: "Total", width: 10},
	{title: "Models", width: 30, left: true},
}

func (a App) renderExceededTab(cw int) string {
	if len(a.exceedingUsers) == 0 {
		return components.ContentCard("Users Exceeding Quota", mutedText("Nobody exceeded their quota"), cw)
	}

	rows := make([][]string, len(a.exceedingUsers))
	for i, u := range a.exceedingUsers {
		rows[i] = []string{u}
	}
	const listRows = 20
	start, end := visibleWindow(len(rows), a.exCursor, listRows)
	list := renderTable(exceededUserColumns, rows[start:end], a.exCursor-start)
	list += "\n" + mutedText(fmt.Sprintf("%d users", len(a.exceedingUsers)))

	listW := tableWidth(exceededUserColumns) + 4
	detailW := max(cw-listW, 40)
	user := a.exceedingUsers[a.exCursor]

	return components.CardRow([]string{
		components.ContentCard("Users Exceeding Quota", list, listW),
		components.ContentCard(user, a.exceededDetail(user, components.CardInnerWidth(detailW)), detailW),
	})
}

func (a App) exceededDetail(user string, width int) string {
	summary := pipeline.UserExceededSummary(a.records, user)

	var b strings.Builder
	pairs := [][2]string{
		{"Days over quota", fmt.Sprintf("%d", summary.TotalExceededDays)},
		{"Exceeded requests", cli.FormatRequests(summary.TotalExceededRequests)},
		{"Average per day", cli.FormatRequests(summary.AverageExceededPerDay)},
	}
	if w := summary.WorstDay; w != nil {
		pairs = append(pairs, [2]string{"Worst day", fmt.Sprintf("%s (%s of %s)",
			w.Date, cli.FormatRequests(w.ExceededRequests), cli.FormatRequests(w.TotalRequests))})
	}
	for i, p := range pairs {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(mutedText(fmt.Sprintf("%-18s %s", p[0], p[1])))
	}

	cols := exceededDayColumns
	if used := tableWidth(cols[:4]) + 1; width-used < cols[4].width {
		cols = append(cols[:4:4], column{title: "Models", width: max(width-used, 6), left: true})
	}

	details := pipeline.ExceededRequestDetails(a.records, "", user)
	rows := make([][]string, 0, len(details))
	for i := len(details) - 1; i >= 0; i-- {
		d := details[i]
		rows = append(rows, []string{
			d.Date,
			cli.FormatRequests(d.ExceededRequests),
			cli.FormatRequests(d.CompliantRequestsOnDay),
			cli.FormatRequests(d.TotalRequestsOnDay),
			strings.Join(d.ModelsUsed, ", "),
		})
	}
	b.WriteString("\n\n")
	b.WriteString(renderTable(cols, rows, -1))
	return b.String()
}

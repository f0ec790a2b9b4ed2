package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/theirongolddev/cusage/internal/cli"
	"github.com/theirongolddev/cusage/internal/model"
	"github.com/theirongolddev/cusage/internal/tui/components"
	"github.com/theirongolddev/cusage/internal/tui/theme"
)

var powerUserColumns = []column{
	{title: " ", width: 3, left: true},
	{title: "#", width: 4},
	{title: "User", width: 20, left: true},
	{title: "Requests", width: 10},
	{title: "Exceeding", width: 10},
}

func (a App) renderPowerUsersTab(cw int) string {
	pu := a.report.PowerUsers
	if pu.TotalPowerUsers == 0 {
		return components.ContentCard("Power Users", mutedText("No data"), cw)
	}

	rows := make([][]string, len(pu.PowerUsers))
	for i, u := range pu.PowerUsers {
		mark := "[ ]"
		if a.puSelected[u.User] {
			mark = "[x]"
		}
		rows[i] = []string{
			mark,
			cli.FormatRank(i + 1),
			u.User,
			cli.FormatRequests(u.TotalRequests),
			cli.FormatRequests(u.ExceedingRequests),
		}
	}

	const listRows = 12
	start, end := visibleWindow(len(rows), a.puCursor, listRows)
	list := renderTable(powerUserColumns, rows[start:end], a.puCursor-start)
	list += "\n" + mutedText(fmt.Sprintf("%d users · %s requests", pu.TotalPowerUsers, cli.FormatRequests(pu.TotalPowerUserRequests)))

	listW := tableWidth(powerUserColumns) + 4
	detailW := max(cw-listW, 30)

	var b strings.Builder
	b.WriteString(components.CardRow([]string{
		components.ContentCard("Top 10% by Volume", list, listW),
		components.ContentCard(pu.PowerUsers[a.puCursor].User, a.powerUserDetail(pu.PowerUsers[a.puCursor], components.CardInnerWidth(detailW)), detailW),
	}))
	b.WriteString("\n")

	title := "Daily Breakdown · all power users"
	if n := len(a.selectedUsers()); n > 0 {
		title = fmt.Sprintf("Daily Breakdown · %d selected  [esc] clear", n)
	}
	b.WriteString(components.ContentCard(title, a.breakdownChart(components.CardInnerWidth(cw)), cw))
	return b.String()
}

func (a App) powerUserDetail(u model.PowerUserInfo, width int) string {
	t := theme.Active
	var b strings.Builder

	b.WriteString(components.LabeledComplianceBar("Compliance", u.TotalRequests-u.ExceedingRequests, u.ExceedingRequests, 12, max(width-22, 6)))

	byModel := make([]model.ModelRequests, 0, len(u.RequestsByModel))
	for m, v := range u.RequestsByModel {
		byModel = append(byModel, model.ModelRequests{Model: m, TotalRequests: v})
	}
	sort.Slice(byModel, func(i, j int) bool {
		if byModel[i].TotalRequests != byModel[j].TotalRequests {
			return byModel[i].TotalRequests > byModel[j].TotalRequests
		}
		return byModel[i].Model < byModel[j].Model
	})

	nameW := min(22, width/2)
	for i, m := range byModel {
		if i == 5 {
			b.WriteString("\n" + mutedText(fmt.Sprintf("+%d more models", len(byModel)-i)))
			break
		}
		b.WriteString("\n")
		b.WriteString(mutedText(fmt.Sprintf("%-*s %10s", nameW, truncStr(m.Model, nameW), cli.FormatRequests(m.TotalRequests))))
	}

	dates := make([]string, 0, len(u.RequestsByDate))
	for d := range u.RequestsByDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	values := make([]float64, len(dates))
	for i, d := range dates {
		values[i] = u.RequestsByDate[d]
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}
	if len(values) > 0 {
		b.WriteString("\n\n")
		b.WriteString(components.Sparkline(values, t.Magenta))
	}
	return b.String()
}

func (a App) breakdownChart(width int) string {
	if len(a.breakdown) == 0 {
		return mutedText("No data")
	}
	compliant := make([]float64, len(a.breakdown))
	exceeding := make([]float64, len(a.breakdown))
	labels := make([]string, len(a.breakdown))
	for i, d := range a.breakdown {
		compliant[i] = d.CompliantRequests
		exceeding[i] = d.ExceedingRequests
		labels[i] = shortDate(d.Date)
	}
	height := 6
	if a.isCompactLayout() {
		height = 4
	}
	return components.StackedBars(compliant, exceeding, labels, width, height)
}

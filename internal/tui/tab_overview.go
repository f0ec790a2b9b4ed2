package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/cusage/internal/cli"
	"github.com/theirongolddev/cusage/internal/pipeline"
	"github.com/theirongolddev/cusage/internal/tui/components"
	"github.com/theirongolddev/cusage/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

const overviewTopModels = 6

func (a App) renderOverviewTab(cw int) string {
	t := theme.Active
	r := a.report
	st := r.Status
	var b strings.Builder

	powerShare := pipeline.CalculatePercentage(r.PowerUsers.TotalPowerUserRequests, st.TotalRequests)
	metrics := []components.Metric{
		{Label: "Requests", Value: cli.FormatRequests(st.TotalRequests), Note: cli.FormatRequests(st.CompliantRequests) + " compliant"},
		{Label: "Exceeding", Value: cli.FormatPercent(st.ExceedingPercentage), Note: cli.FormatRequests(st.ExceedingRequests) + " requests", Color: t.ForExceedingShare(st.ExceedingPercentage)},
		{Label: "Users", Value: cli.FormatRequests(float64(r.Users)), Note: fmt.Sprintf("%d over quota", r.UsersExceedingQuota)},
		{Label: "Power Users", Value: cli.FormatRequests(float64(r.PowerUsers.TotalPowerUsers)), Note: cli.FormatPercent(powerShare) + " of requests"},
		{Label: "Excess Cost", Value: cli.FormatCost(r.ExcessCost), Note: r.Plan.Label() + " plan"},
	}
	if a.isCompactLayout() {
		metrics = metrics[:4]
	}
	b.WriteString(components.MetricCardRow(metrics, cw))
	b.WriteString("\n")

	inner := components.CardInnerWidth(cw)
	labelW := 24
	barW := max(inner-labelW-10, 10)

	var status strings.Builder
	status.WriteString(components.LabeledComplianceBar("All requests", st.CompliantRequests, st.ExceedingRequests, labelW, barW))
	status.WriteString("\n")
	status.WriteString(legend())
	if r.LastDate != "" {
		dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
		status.WriteString(dim.Render(fmt.Sprintf("   ·   %d records through %s", r.Records, r.LastDate)))
	}
	b.WriteString(components.ContentCard("Quota Compliance", status.String(), cw))
	b.WriteString("\n")

	halves := components.LayoutRow(cw, 2)
	chartH := 8
	if a.isCompactLayout() {
		chartH = 6
	}
	chart := a.dailyChart(components.CardInnerWidth(halves[0]), chartH)
	b.WriteString(components.CardRow([]string{
		components.ContentCard("Daily Requests", chart, halves[0]),
		components.ContentCard("Top Models", a.topModels(components.CardInnerWidth(halves[1])), halves[1]),
	}))

	return b.String()
}

func (a App) dailyChart(width, height int) string {
	days := a.report.DailyCompliance
	if len(days) == 0 {
		return mutedText("No data")
	}
	compliant := make([]float64, len(days))
	exceeding := make([]float64, len(days))
	labels := make([]string, len(days))
	for i, d := range days {
		compliant[i] = d.CompliantRequests
		exceeding[i] = d.ExceedingRequests
		labels[i] = shortDate(d.Date)
	}
	return components.StackedBars(compliant, exceeding, labels, width, height)
}

func (a App) topModels(width int) string {
	models := a.report.ModelSummaries
	if len(models) == 0 {
		return mutedText("No data")
	}
	n := min(len(models), overviewTopModels)
	labelW := min(20, width/3)
	barW := max(width-labelW-10, 6)

	lines := make([]string, 0, n+1)
	for _, m := range models[:n] {
		lines = append(lines, components.LabeledComplianceBar(m.Model, m.CompliantRequests, m.ExceedingRequests, labelW, barW))
	}
	if rest := len(models) - n; rest > 0 {
		lines = append(lines, mutedText(fmt.Sprintf("+%d more on the Models tab", rest)))
	}
	return strings.Join(lines, "\n")
}

func legend() string {
	t := theme.Active
	ok := lipgloss.NewStyle().Foreground(t.Compliant()).Background(t.Surface)
	over := lipgloss.NewStyle().Foreground(t.Exceeding()).Background(t.Surface)
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	return ok.Render("█") + muted.Render(" compliant  ") + over.Render("█") + muted.Render(" exceeding")
}

func mutedText(s string) string {
	t := theme.Active
	return lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Render(s)
}

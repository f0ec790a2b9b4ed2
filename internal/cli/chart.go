package cli

import (
	"github.com/guptarohit/asciigraph"

	"github.com/theirongolddev/cusage/internal/model"
)

// RenderLineChart creates a single-series ASCII line chart.
func RenderLineChart(data []float64, width, height int, caption string) string {
	if len(data) == 0 {
		return mutedStyle.Render("No data available")
	}
	width = max(width, 20)
	height = max(height, 3)

	// asciigraph needs at least two points to draw a line.
	if len(data) == 1 {
		data = []float64{data[0], data[0]}
	}

	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.LowerBound(0),
		asciigraph.Caption(caption),
	)
}

// RenderComplianceChart plots compliant and exceeding volume per day as two
// series, green and red.
func RenderComplianceChart(days []model.DailyCompliance, width, height int, caption string) string {
	if len(days) == 0 {
		return mutedStyle.Render("No data available")
	}
	width = max(width, 20)
	height = max(height, 3)

	compliant := make([]float64, 0, len(days)+1)
	exceeding := make([]float64, 0, len(days)+1)
	for _, d := range days {
		compliant = append(compliant, d.CompliantRequests)
		exceeding = append(exceeding, d.ExceedingRequests)
	}
	if len(days) == 1 {
		compliant = append(compliant, compliant[0])
		exceeding = append(exceeding, exceeding[0])
	}

	return asciigraph.PlotMany([][]float64{compliant, exceeding},
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.LowerBound(0),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(
			asciigraph.Green,
			asciigraph.Red,
		),
	)
}

// DailySeries extracts the request values of a per-date series.
func DailySeries(days []model.DailyRequests) []float64 {
	out := make([]float64, len(days))
	for i, d := range days {
		out[i] = d.Requests
	}
	return out
}

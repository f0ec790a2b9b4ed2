package pipeline

import (
	"sort"

	"github.com/theirongolddev/cusage/internal/model"
)

// ExcessCosts holds the excess cost total and the billable per-model rows.
type ExcessCosts struct {
	TotalCost float64
	// FreeExceeding is exceeding volume on zero-multiplier models.
	FreeExceeding float64
	ByModel       []ModelExcessCost
}

// ModelExcessCost holds cost components for one model.
type ModelExcessCost struct {
	Model      string
	Exceeding  float64
	Multiplier float64
	// Weighted is exceeding volume scaled by the multiplier.
	Weighted  float64
	TotalCost float64
	Share     float64
}

// AggregateExcessCosts summarizes excess cost across model summaries.
// Rows are sorted by cost descending; models with no cost are omitted.
func AggregateExcessCosts(summaries []model.ModelSummary) ExcessCosts {
	var out ExcessCosts
	for _, s := range summaries {
		if s.Multiplier == 0 {
			out.FreeExceeding += s.ExceedingRequests
		}
		if s.ExcessCost <= 0 {
			continue
		}
		out.TotalCost += s.ExcessCost
		out.ByModel = append(out.ByModel, ModelExcessCost{
			Model:      s.Model,
			Exceeding:  s.ExceedingRequests,
			Multiplier: s.Multiplier,
			Weighted:   s.ExceedingRequests * s.Multiplier,
			TotalCost:  s.ExcessCost,
		})
	}

	for i := range out.ByModel {
		out.ByModel[i].Share = CalculatePercentage(out.ByModel[i].TotalCost, out.TotalCost)
	}
	sort.SliceStable(out.ByModel, func(i, j int) bool {
		return out.ByModel[i].TotalCost > out.ByModel[j].TotalCost
	})
	return out
}

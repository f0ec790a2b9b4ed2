// Package pipeline computes the derived usage views from a parsed record set
// and orchestrates loading, caching, and report assembly.
package pipeline

import (
	"sort"

	"github.com/theirongolddev/cusage/internal/config"
	"github.com/theirongolddev/cusage/internal/model"
)

type dateModelKey struct {
	date  string
	model string
}

// AggregateDaily groups records by (date, model) and splits the volume by
// quota compliance. Groups appear in first-encounter order; only groups with
// at least one record are emitted.
func AggregateDaily(records []model.UsageRecord) []model.DailyModelCompliance {
	idx := make(map[dateModelKey]int)
	var out []model.DailyModelCompliance

	for _, r := range records {
		key := dateModelKey{r.Date(), r.Model}
		i, ok := idx[key]
		if !ok {
			i = len(out)
			idx[key] = i
			out = append(out, model.DailyModelCompliance{Date: key.date, Model: key.model})
		}
		if r.ExceedsQuota {
			out[i].ExceedingRequests += r.RequestsUsed
		} else {
			out[i].CompliantRequests += r.RequestsUsed
		}
	}
	return out
}

// AggregateDailyModel groups records by (date, model) into raw request
// totals regardless of compliance.
func AggregateDailyModel(records []model.UsageRecord) []model.DailyModelVolume {
	idx := make(map[dateModelKey]int)
	var out []model.DailyModelVolume

	for _, r := range records {
		key := dateModelKey{r.Date(), r.Model}
		i, ok := idx[key]
		if !ok {
			i = len(out)
			idx[key] = i
			out = append(out, model.DailyModelVolume{Date: key.date, Model: key.model})
		}
		out[i].Requests += r.RequestsUsed
	}
	return out
}

// DailyCompliance collapses the model dimension out of the daily view,
// sorted by date ascending.
func DailyCompliance(records []model.UsageRecord) []model.DailyCompliance {
	return complianceByDate(records, nil)
}

// complianceByDate sums compliant/exceeding volume per date, restricted to
// users in keep when keep is non-nil.
func complianceByDate(records []model.UsageRecord, keep map[string]struct{}) []model.DailyCompliance {
	byDate := make(map[string]*model.DailyCompliance)
	for _, r := range records {
		if keep != nil {
			if _, ok := keep[r.User]; !ok {
				continue
			}
		}
		d := r.Date()
		dc, ok := byDate[d]
		if !ok {
			dc = &model.DailyCompliance{Date: d}
			byDate[d] = dc
		}
		if r.ExceedsQuota {
			dc.ExceedingRequests += r.RequestsUsed
		} else {
			dc.CompliantRequests += r.RequestsUsed
		}
	}

	out := make([]model.DailyCompliance, 0, len(byDate))
	for _, dc := range byDate {
		out = append(out, *dc)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date < out[j].Date
	})
	return out
}

// DailyMatrix is a zero-filled date x model grid. Values[i][j] is the volume
// of Models[j] on Dates[i].
type DailyMatrix struct {
	Dates  []string
	Models []string
	Values [][]float64
}

// Column returns the per-date series for one model, or nil if the model is
// not in the grid.
func (m DailyMatrix) Column(modelName string) []float64 {
	for j, name := range m.Models {
		if name != modelName {
			continue
		}
		col := make([]float64, len(m.Dates))
		for i := range m.Dates {
			col[i] = m.Values[i][j]
		}
		return col
	}
	return nil
}

// Totals returns the per-date sum across models.
func (m DailyMatrix) Totals() []float64 {
	out := make([]float64, len(m.Dates))
	for i, row := range m.Values {
		for _, v := range row {
			out[i] += v
		}
	}
	return out
}

// DailyModelMatrix fills the full date x model cross-product from the sparse
// daily volumes. Dates and models are sorted ascending.
func DailyModelMatrix(volumes []model.DailyModelVolume) DailyMatrix {
	dateSet := make(map[string]struct{})
	modelSet := make(map[string]struct{})
	for _, v := range volumes {
		dateSet[v.Date] = struct{}{}
		modelSet[v.Model] = struct{}{}
	}

	m := DailyMatrix{
		Dates:  sortedKeys(dateSet),
		Models: sortedKeys(modelSet),
	}
	dateIdx := indexOf(m.Dates)
	modelIdx := indexOf(m.Models)

	m.Values = make([][]float64, len(m.Dates))
	for i := range m.Values {
		m.Values[i] = make([]float64, len(m.Models))
	}
	for _, v := range volumes {
		m.Values[dateIdx[v.Date]][modelIdx[v.Model]] += v.Requests
	}
	return m
}

// AggregateModels groups records by model and attaches the plan
// configuration and excess cost. Models appear in first-encounter order.
// A nil price uses config.DefaultPricing.
func AggregateModels(records []model.UsageRecord, plans config.PlanTable, price config.PricingFunc) []model.ModelSummary {
	if price == nil {
		price = config.DefaultPricing()
	}

	idx := make(map[string]int)
	var out []model.ModelSummary

	for _, r := range records {
		i, ok := idx[r.Model]
		if !ok {
			i = len(out)
			idx[r.Model] = i
			out = append(out, model.ModelSummary{Model: r.Model})
		}
		if r.ExceedsQuota {
			out[i].ExceedingRequests += r.RequestsUsed
		} else {
			out[i].CompliantRequests += r.RequestsUsed
		}
	}

	for i := range out {
		ms := &out[i]
		ms.TotalRequests = ms.CompliantRequests + ms.ExceedingRequests

		p, ok := plans.Lookup(ms.Model)
		ms.Configured = ok
		ms.Multiplier = p.Multiplier
		ms.IndividualPlanLimit = p.Individual
		ms.BusinessPlanLimit = p.Business
		ms.EnterprisePlanLimit = p.Enterprise
		ms.ExcessCost = price(ms.Model, ms.ExceedingRequests, ms.Multiplier)
	}
	return out
}

// AggregateModelsWithPercentages extends AggregateModels with share-of-total
// and per-model compliance percentages, sorted by total descending. Ties keep
// encounter order.
func AggregateModelsWithPercentages(records []model.UsageRecord, plans config.PlanTable, price config.PricingFunc) []model.ModelSummaryWithPercentages {
	summaries := AggregateModels(records, plans, price)

	var grand float64
	for _, s := range summaries {
		grand += s.TotalRequests
	}

	out := make([]model.ModelSummaryWithPercentages, len(summaries))
	for i, s := range summaries {
		out[i] = model.ModelSummaryWithPercentages{
			ModelSummary:        s,
			PercentageOfTotal:   CalculatePercentage(s.TotalRequests, grand),
			CompliantPercentage: CalculatePercentage(s.CompliantRequests, s.TotalRequests),
			ExceedingPercentage: CalculatePercentage(s.ExceedingRequests, s.TotalRequests),
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalRequests > out[j].TotalRequests
	})
	return out
}

// SummarizeRequestStatus computes the global compliant/exceeding split.
func SummarizeRequestStatus(records []model.UsageRecord) model.RequestStatusSummary {
	var s model.RequestStatusSummary
	for _, r := range records {
		if r.ExceedsQuota {
			s.ExceedingRequests += r.RequestsUsed
		} else {
			s.CompliantRequests += r.RequestsUsed
		}
	}
	s.TotalRequests = s.CompliantRequests + s.ExceedingRequests
	s.CompliantPercentage = CalculatePercentage(s.CompliantRequests, s.TotalRequests)
	s.ExceedingPercentage = CalculatePercentage(s.ExceedingRequests, s.TotalRequests)
	return s
}

// LastDate returns the latest calendar date present in records.
func LastDate(records []model.UsageRecord) (string, bool) {
	var last string
	for _, r := range records {
		if d := r.Date(); d > last {
			last = d
		}
	}
	return last, last != ""
}

// UniqueModels returns the distinct models in first-seen order.
func UniqueModels(records []model.UsageRecord) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range records {
		if _, ok := seen[r.Model]; ok {
			continue
		}
		seen[r.Model] = struct{}{}
		out = append(out, r.Model)
	}
	return out
}

// UniqueUserCount returns the number of distinct users.
func UniqueUserCount(records []model.UsageRecord) int {
	seen := make(map[string]struct{})
	for _, r := range records {
		seen[r.User] = struct{}{}
	}
	return len(seen)
}

// FilterByUser returns the records belonging to user.
func FilterByUser(records []model.UsageRecord, user string) []model.UsageRecord {
	var out []model.UsageRecord
	for _, r := range records {
		if r.User == user {
			out = append(out, r)
		}
	}
	return out
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func indexOf(keys []string) map[string]int {
	idx := make(map[string]int, len(keys))
	for i, k := range keys {
		idx[k] = i
	}
	return idx
}

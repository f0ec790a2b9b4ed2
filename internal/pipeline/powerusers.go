package pipeline

import (
	"sort"

	"github.com/theirongolddev/cusage/internal/model"
)

// PowerUserCount returns how many of n users form the top decile:
// ceil(n/10), at least 1 when n > 0.
func PowerUserCount(n int) int {
	if n <= 0 {
		return 0
	}
	return (n + 9) / 10
}

// AnalyzePowerUsers ranks users by total volume and selects the top decile.
// Users with equal totals keep the order in which they first appear.
func AnalyzePowerUsers(records []model.UsageRecord) model.PowerUserSummary {
	type userTotal struct {
		user  string
		total float64
	}

	idx := make(map[string]int)
	var totals []userTotal
	for _, r := range records {
		i, ok := idx[r.User]
		if !ok {
			i = len(totals)
			idx[r.User] = i
			totals = append(totals, userTotal{user: r.User})
		}
		totals[i].total += r.RequestsUsed
	}

	sort.SliceStable(totals, func(i, j int) bool {
		return totals[i].total > totals[j].total
	})
	selected := totals[:PowerUserCount(len(totals))]

	rank := make(map[string]int, len(selected))
	users := make([]model.PowerUserInfo, len(selected))
	for i, ut := range selected {
		rank[ut.user] = i
		users[i] = model.PowerUserInfo{
			User:            ut.user,
			RequestsByModel: make(map[string]float64),
			RequestsByDate:  make(map[string]float64),
		}
	}

	modelIdx := make(map[string]int)
	var byModel []model.ModelRequests
	var grand float64

	for _, r := range records {
		i, ok := rank[r.User]
		if !ok {
			continue
		}
		u := &users[i]
		u.TotalRequests += r.RequestsUsed
		if r.ExceedsQuota {
			u.ExceedingRequests += r.RequestsUsed
		}
		u.RequestsByModel[r.Model] += r.RequestsUsed
		u.RequestsByDate[r.Date()] += r.RequestsUsed
		grand += r.RequestsUsed

		j, ok := modelIdx[r.Model]
		if !ok {
			j = len(byModel)
			modelIdx[r.Model] = j
			byModel = append(byModel, model.ModelRequests{Model: r.Model})
		}
		byModel[j].TotalRequests += r.RequestsUsed
	}

	sort.SliceStable(byModel, func(i, j int) bool {
		return byModel[i].TotalRequests > byModel[j].TotalRequests
	})

	return model.PowerUserSummary{
		TotalPowerUsers:        len(users),
		TotalPowerUserRequests: grand,
		PowerUserModelSummary:  byModel,
		PowerUsers:             users,
	}
}

// PowerUserDailyData merges the per-date volumes of the given users into one
// series sorted by date.
func PowerUserDailyData(users []model.PowerUserInfo) []model.DailyRequests {
	byDate := make(map[string]float64)
	for _, u := range users {
		for d, v := range u.RequestsByDate {
			byDate[d] += v
		}
	}

	out := make([]model.DailyRequests, 0, len(byDate))
	for d, v := range byDate {
		out = append(out, model.DailyRequests{Date: d, Requests: v})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date < out[j].Date
	})
	return out
}

// PowerUserDailyBreakdown splits per-date volume by compliance for the named
// users. An empty userNames selects the current power users.
func PowerUserDailyBreakdown(records []model.UsageRecord, userNames []string) []model.PowerUserDailyBreakdown {
	if len(userNames) == 0 {
		userNames = AnalyzePowerUsers(records).UserNames()
	}
	keep := make(map[string]struct{}, len(userNames))
	for _, u := range userNames {
		keep[u] = struct{}{}
	}
	return complianceByDate(records, keep)
}

package pipeline

import (
	"sort"

	"github.com/theirongolddev/cusage/internal/model"
)

// ExceededRequestDetails reconstructs the days on which user exceeded quota,
// sorted by date. A non-empty date restricts the result to that day.
func ExceededRequestDetails(records []model.UsageRecord, date, user string) []model.ExceededRequestDetail {
	byDate := make(map[string]*model.ExceededRequestDetail)
	seenModel := make(map[dateModelKey]struct{})
	exceeded := make(map[string]bool)

	for _, r := range records {
		if r.User != user {
			continue
		}
		d := r.Date()
		if date != "" && d != date {
			continue
		}

		det, ok := byDate[d]
		if !ok {
			det = &model.ExceededRequestDetail{
				User:             user,
				Date:             d,
				ExceedingByModel: make(map[string]float64),
			}
			byDate[d] = det
		}

		det.TotalRequestsOnDay += r.RequestsUsed
		key := dateModelKey{d, r.Model}
		if _, ok := seenModel[key]; !ok {
			seenModel[key] = struct{}{}
			det.ModelsUsed = append(det.ModelsUsed, r.Model)
		}
		if r.ExceedsQuota {
			exceeded[d] = true
			det.ExceededRequests += r.RequestsUsed
			det.ExceedingByModel[r.Model] += r.RequestsUsed
		} else {
			det.CompliantRequestsOnDay += r.RequestsUsed
		}
	}

	out := make([]model.ExceededRequestDetail, 0, len(exceeded))
	for d, det := range byDate {
		if !exceeded[d] {
			continue
		}
		out = append(out, *det)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date < out[j].Date
	})
	return out
}

// UserExceededSummary aggregates a user's exceeded days. The worst day is the
// one with the most exceeding volume; the earliest wins a tie.
func UserExceededSummary(records []model.UsageRecord, user string) model.UserExceededSummary {
	days := ExceededRequestDetails(records, "", user)

	var s model.UserExceededSummary
	s.TotalExceededDays = len(days)
	for _, d := range days {
		s.TotalExceededRequests += d.ExceededRequests
		// days are ascending, so strict > keeps the earliest on ties.
		if s.WorstDay == nil || d.ExceededRequests > s.WorstDay.ExceededRequests {
			s.WorstDay = &model.WorstDay{
				Date:             d.Date,
				ExceededRequests: d.ExceededRequests,
				TotalRequests:    d.TotalRequestsOnDay,
			}
		}
	}
	if s.TotalExceededDays > 0 {
		s.AverageExceededPerDay = s.TotalExceededRequests / float64(s.TotalExceededDays)
	}
	return s
}

// UniqueUsersExceedingQuota counts distinct users with at least one
// exceeding record.
func UniqueUsersExceedingQuota(records []model.UsageRecord) int {
	users := make(map[string]struct{})
	for _, r := range records {
		if r.ExceedsQuota {
			users[r.User] = struct{}{}
		}
	}
	return len(users)
}

// UsersExceedingQuota lists the distinct exceeding users in first-seen order.
func UsersExceedingQuota(records []model.UsageRecord) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range records {
		if !r.ExceedsQuota {
			continue
		}
		if _, ok := seen[r.User]; ok {
			continue
		}
		seen[r.User] = struct{}{}
		out = append(out, r.User)
	}
	return out
}

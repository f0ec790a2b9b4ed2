package model

import "strconv"

// DailyModelCompliance splits one (date, model) group by quota compliance.
type DailyModelCompliance struct {
	Date              string  `json:"date" yaml:"date"`
	Model             string  `json:"model" yaml:"model"`
	CompliantRequests float64 `json:"compliant_requests" yaml:"compliant_requests"`
	ExceedingRequests float64 `json:"exceeding_requests" yaml:"exceeding_requests"`
}

// DailyModelVolume is the compliance-agnostic total of one (date, model) group.
type DailyModelVolume struct {
	Date     string  `json:"date" yaml:"date"`
	Model    string  `json:"model" yaml:"model"`
	Requests float64 `json:"requests" yaml:"requests"`
}

// DailyCompliance is the per-date compliant/exceeding series, across models
// or across a selected set of users.
type DailyCompliance struct {
	Date              string  `json:"date" yaml:"date"`
	CompliantRequests float64 `json:"compliant_requests" yaml:"compliant_requests"`
	ExceedingRequests float64 `json:"exceeding_requests" yaml:"exceeding_requests"`
}

// PowerUserDailyBreakdown is the per-date compliance split for a set of users.
type PowerUserDailyBreakdown = DailyCompliance

// DailyRequests is a single per-date total.
type DailyRequests struct {
	Date     string  `json:"date" yaml:"date"`
	Requests float64 `json:"requests" yaml:"requests"`
}

// ModelSummary holds per-model totals and the plan configuration attached
// to that model.
type ModelSummary struct {
	Model               string  `json:"model" yaml:"model"`
	TotalRequests       float64 `json:"total_requests" yaml:"total_requests"`
	CompliantRequests   float64 `json:"compliant_requests" yaml:"compliant_requests"`
	ExceedingRequests   float64 `json:"exceeding_requests" yaml:"exceeding_requests"`
	Multiplier          float64 `json:"multiplier" yaml:"multiplier"`
	IndividualPlanLimit float64 `json:"individual_plan_limit" yaml:"individual_plan_limit"`
	BusinessPlanLimit   float64 `json:"business_plan_limit" yaml:"business_plan_limit"`
	EnterprisePlanLimit float64 `json:"enterprise_plan_limit" yaml:"enterprise_plan_limit"`
	ExcessCost          float64 `json:"excess_cost" yaml:"excess_cost"`
	// Configured is false when the model is missing from the plan table and
	// the values above are fallbacks.
	Configured bool `json:"configured" yaml:"configured"`
}

// PlanLimit returns the limit for the given tier.
func (m ModelSummary) PlanLimit(tier PlanTier) float64 {
	switch tier {
	case PlanIndividual:
		return m.IndividualPlanLimit
	case PlanEnterprise:
		return m.EnterprisePlanLimit
	default:
		return m.BusinessPlanLimit
	}
}

// PlanLimitLabel renders the tier limit, or "Unlimited" for free models.
func (m ModelSummary) PlanLimitLabel(tier PlanTier) string {
	if m.Multiplier == 0 {
		return UnlimitedQuota
	}
	return strconv.FormatFloat(m.PlanLimit(tier), 'f', -1, 64)
}

// ModelSummaryWithPercentages extends ModelSummary with share-of-total and
// per-model compliance percentages.
type ModelSummaryWithPercentages struct {
	ModelSummary        `yaml:",inline"`
	PercentageOfTotal   float64 `json:"percentage_of_total" yaml:"percentage_of_total"`
	CompliantPercentage float64 `json:"compliant_percentage" yaml:"compliant_percentage"`
	ExceedingPercentage float64 `json:"exceeding_percentage" yaml:"exceeding_percentage"`
}

// PowerUserInfo is one selected power user with its breakdowns.
type PowerUserInfo struct {
	User              string             `json:"user" yaml:"user"`
	TotalRequests     float64            `json:"total_requests" yaml:"total_requests"`
	ExceedingRequests float64            `json:"exceeding_requests" yaml:"exceeding_requests"`
	RequestsByModel   map[string]float64 `json:"requests_by_model" yaml:"requests_by_model"`
	RequestsByDate    map[string]float64 `json:"requests_by_date" yaml:"requests_by_date"`
}

// ModelRequests is a (model, total) pair.
type ModelRequests struct {
	Model         string  `json:"model" yaml:"model"`
	TotalRequests float64 `json:"total_requests" yaml:"total_requests"`
}

// PowerUserSummary describes the top decile of users by volume.
type PowerUserSummary struct {
	TotalPowerUsers        int             `json:"total_power_users" yaml:"total_power_users"`
	TotalPowerUserRequests float64         `json:"total_power_user_requests" yaml:"total_power_user_requests"`
	PowerUserModelSummary  []ModelRequests `json:"power_user_model_summary" yaml:"power_user_model_summary"`
	PowerUsers             []PowerUserInfo `json:"power_users" yaml:"power_users"`
}

// UserNames returns the selected users in rank order.
func (s PowerUserSummary) UserNames() []string {
	names := make([]string, 0, len(s.PowerUsers))
	for _, u := range s.PowerUsers {
		names = append(names, u.User)
	}
	return names
}

// ExceededRequestDetail describes one day on which a user exceeded quota.
type ExceededRequestDetail struct {
	User                   string             `json:"user" yaml:"user"`
	Date                   string             `json:"date" yaml:"date"`
	ExceededRequests       float64            `json:"exceeded_requests" yaml:"exceeded_requests"`
	TotalRequestsOnDay     float64            `json:"total_requests_on_day" yaml:"total_requests_on_day"`
	CompliantRequestsOnDay float64            `json:"compliant_requests_on_day" yaml:"compliant_requests_on_day"`
	ModelsUsed             []string           `json:"models_used" yaml:"models_used"`
	ExceedingByModel       map[string]float64 `json:"exceeding_by_model" yaml:"exceeding_by_model"`
}

// WorstDay is the day with the most exceeding volume.
type WorstDay struct {
	Date             string  `json:"date" yaml:"date"`
	ExceededRequests float64 `json:"exceeded_requests" yaml:"exceeded_requests"`
	TotalRequests    float64 `json:"total_requests" yaml:"total_requests"`
}

// UserExceededSummary aggregates a user's exceeded days.
type UserExceededSummary struct {
	TotalExceededDays     int       `json:"total_exceeded_days" yaml:"total_exceeded_days"`
	TotalExceededRequests float64   `json:"total_exceeded_requests" yaml:"total_exceeded_requests"`
	AverageExceededPerDay float64   `json:"average_exceeded_per_day" yaml:"average_exceeded_per_day"`
	WorstDay              *WorstDay `json:"worst_day,omitempty" yaml:"worst_day,omitempty"`
}

// RequestStatusSummary is the global compliant/exceeding split.
type RequestStatusSummary struct {
	TotalRequests       float64 `json:"total_requests" yaml:"total_requests"`
	CompliantRequests   float64 `json:"compliant_requests" yaml:"compliant_requests"`
	ExceedingRequests   float64 `json:"exceeding_requests" yaml:"exceeding_requests"`
	CompliantPercentage float64 `json:"compliant_percentage" yaml:"compliant_percentage"`
	ExceedingPercentage float64 `json:"exceeding_percentage" yaml:"exceeding_percentage"`
}

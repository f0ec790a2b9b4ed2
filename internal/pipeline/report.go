package pipeline

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/theirongolddev/cusage/internal/config"
	"github.com/theirongolddev/cusage/internal/model"
)

// ReportOptions parameterize the plan-dependent views.
type ReportOptions struct {
	Plan    model.PlanTier
	Plans   config.PlanTable
	Pricing config.PricingFunc
}

// DefaultReportOptions uses the built-in plan table and pricing.
func DefaultReportOptions() ReportOptions {
	return ReportOptions{
		Plan:    model.DefaultPlanTier,
		Plans:   config.DefaultPlanTable(),
		Pricing: config.DefaultPricing(),
	}
}

// Report bundles every derived view of one record set.
type Report struct {
	GeneratedAt time.Time      `json:"generated_at" yaml:"generated_at"`
	Plan        model.PlanTier `json:"-" yaml:"-"`
	PlanName    string         `json:"plan" yaml:"plan"`
	Records     int            `json:"records" yaml:"records"`
	Users       int            `json:"users" yaml:"users"`
	Models      []string       `json:"models" yaml:"models"`
	LastDate    string         `json:"last_date,omitempty" yaml:"last_date,omitempty"`

	Status              model.RequestStatusSummary          `json:"status" yaml:"status"`
	UsersExceedingQuota int                                 `json:"users_exceeding_quota" yaml:"users_exceeding_quota"`
	Daily               []model.DailyModelCompliance        `json:"daily" yaml:"daily"`
	DailyVolume         []model.DailyModelVolume            `json:"daily_volume" yaml:"daily_volume"`
	DailyCompliance     []model.DailyCompliance             `json:"daily_compliance" yaml:"daily_compliance"`
	ModelSummaries      []model.ModelSummaryWithPercentages `json:"model_summaries" yaml:"model_summaries"`
	ExcessCost          float64                             `json:"excess_cost" yaml:"excess_cost"`
	PowerUsers          model.PowerUserSummary              `json:"power_users" yaml:"power_users"`
	PowerUserDaily      []model.DailyRequests               `json:"power_user_daily" yaml:"power_user_daily"`
	PowerUserBreakdown  []model.PowerUserDailyBreakdown     `json:"power_user_breakdown" yaml:"power_user_breakdown"`
}

// BuildReport computes the independent views concurrently. The only error is
// ctx cancellation.
func BuildReport(ctx context.Context, records []model.UsageRecord, opts ReportOptions) (*Report, error) {
	if opts.Pricing == nil {
		opts.Pricing = config.DefaultPricing()
	}

	r := &Report{
		GeneratedAt: time.Now(),
		Plan:        opts.Plan,
		PlanName:    opts.Plan.String(),
		Records:     len(records),
	}

	g, ctx := errgroup.WithContext(ctx)
	run := func(fn func()) {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			fn()
			return nil
		})
	}

	run(func() {
		r.Users = UniqueUserCount(records)
		r.Models = UniqueModels(records)
		r.LastDate, _ = LastDate(records)
	})
	run(func() {
		r.Status = SummarizeRequestStatus(records)
		r.UsersExceedingQuota = UniqueUsersExceedingQuota(records)
	})
	run(func() { r.Daily = AggregateDaily(records) })
	run(func() { r.DailyVolume = AggregateDailyModel(records) })
	run(func() { r.DailyCompliance = DailyCompliance(records) })
	run(func() {
		r.ModelSummaries = AggregateModelsWithPercentages(records, opts.Plans, opts.Pricing)
		for _, m := range r.ModelSummaries {
			r.ExcessCost += m.ExcessCost
		}
	})
	run(func() {
		r.PowerUsers = AnalyzePowerUsers(records)
		r.PowerUserDaily = PowerUserDailyData(r.PowerUsers.PowerUsers)
		r.PowerUserBreakdown = PowerUserDailyBreakdown(records, r.PowerUsers.UserNames())
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return r, nil
}

// ModelSummaryRows returns the plain summaries of the report's model views.
func (r *Report) ModelSummaryRows() []model.ModelSummary {
	out := make([]model.ModelSummary, len(r.ModelSummaries))
	for i, m := range r.ModelSummaries {
		out[i] = m.ModelSummary
	}
	return out
}

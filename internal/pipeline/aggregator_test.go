package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/cusage/internal/config"
	"github.com/theirongolddev/cusage/internal/model"
)

func TestSummarizeRequestStatus(t *testing.T) {
	s := SummarizeRequestStatus(sixRowFixture())

	assert.Equal(t, 80.0, s.TotalRequests)
	assert.Equal(t, 60.0, s.CompliantRequests)
	assert.Equal(t, 20.0, s.ExceedingRequests)
	assert.Equal(t, 75.0, s.CompliantPercentage)
	assert.Equal(t, 25.0, s.ExceedingPercentage)
	assert.Equal(t, s.TotalRequests, s.CompliantRequests+s.ExceedingRequests)
}

func TestSummarizeRequestStatus_Empty(t *testing.T) {
	s := SummarizeRequestStatus(nil)
	assert.Equal(t, model.RequestStatusSummary{}, s)
}

func TestAggregateDaily(t *testing.T) {
	got := AggregateDaily(sixRowFixture())

	require.Len(t, got, 3)
	byModel := make(map[string]model.DailyModelCompliance)
	for _, d := range got {
		assert.Equal(t, "2024-01-01", d.Date)
		byModel[d.Model] = d
	}
	assert.Equal(t, 35.0, byModel["gpt-4"].CompliantRequests)
	assert.Equal(t, 5.0, byModel["gpt-4"].ExceedingRequests)
	assert.Equal(t, 25.0, byModel["coding-agent"].CompliantRequests)
	assert.Equal(t, 15.0, byModel["gpt-3.5-turbo"].ExceedingRequests)
}

func TestAggregateDailyModel_NoZeroFill(t *testing.T) {
	got := AggregateDailyModel(multiDayFixture())

	for _, v := range got {
		assert.Positive(t, v.Requests, "%s/%s", v.Date, v.Model)
	}
	var total float64
	for _, v := range got {
		total += v.Requests
	}
	assert.Equal(t, SummarizeRequestStatus(multiDayFixture()).TotalRequests, total)
}

func TestDailyCompliance(t *testing.T) {
	got := DailyCompliance(multiDayFixture())

	require.Len(t, got, 4)
	assert.Equal(t, "2024-02-01", got[0].Date)
	assert.Equal(t, 5.0, got[0].CompliantRequests)
	assert.Equal(t, 3.0, got[0].ExceedingRequests)
	assert.Equal(t, "2024-02-04", got[3].Date)
	assert.Equal(t, 7.0, got[3].ExceedingRequests)
}

func TestDailyModelMatrix(t *testing.T) {
	m := DailyModelMatrix(AggregateDailyModel(multiDayFixture()))

	assert.Equal(t, []string{"2024-02-01", "2024-02-02", "2024-02-03", "2024-02-04"}, m.Dates)
	assert.Equal(t, []string{"claude-opus-4", "gpt-4o", "o3-mini"}, m.Models)
	assert.Equal(t, []float64{3, 6, 2, 7}, m.Column("claude-opus-4"))
	assert.Equal(t, []float64{0, 1, 0, 0}, m.Column("o3-mini"))
	assert.Nil(t, m.Column("missing"))
	assert.Equal(t, []float64{8, 9, 7, 7}, m.Totals())
}

func TestAggregateModelsWithPercentages(t *testing.T) {
	got := AggregateModelsWithPercentages(sixRowFixture(), config.DefaultPlanTable(), nil)

	require.Len(t, got, 3)
	assert.Equal(t, "gpt-4", got[0].Model)
	assert.Equal(t, "coding-agent", got[1].Model)
	assert.Equal(t, "gpt-3.5-turbo", got[2].Model)

	assert.Equal(t, 40.0, got[0].TotalRequests)
	assert.Equal(t, 50.0, got[0].PercentageOfTotal)
	assert.Equal(t, 35.0, got[0].CompliantRequests)
	assert.Equal(t, 87.5, got[0].CompliantPercentage)
	assert.Equal(t, 12.5, got[0].ExceedingPercentage)

	assert.Equal(t, 25.0, got[1].TotalRequests)
	assert.Equal(t, 31.25, got[1].PercentageOfTotal)
	assert.Equal(t, 100.0, got[1].CompliantPercentage)

	assert.Equal(t, 15.0, got[2].TotalRequests)
	assert.Equal(t, 18.75, got[2].PercentageOfTotal)
	assert.Equal(t, 100.0, got[2].ExceedingPercentage)

	var share, total float64
	for _, m := range got {
		share += m.PercentageOfTotal
		total += m.TotalRequests
	}
	assert.InDelta(t, 100.0, share, 1e-9)
	assert.Equal(t, SummarizeRequestStatus(sixRowFixture()).TotalRequests, total)
}

func TestAggregateModelsWithPercentages_TiesKeepEncounterOrder(t *testing.T) {
	records := []model.UsageRecord{
		rec("2024-01-01T10:00:00Z", "u", "b-model", 5, false),
		rec("2024-01-01T10:00:00Z", "u", "a-model", 5, false),
		rec("2024-01-01T10:00:00Z", "u", "c-model", 9, false),
	}
	got := AggregateModelsWithPercentages(records, config.DefaultPlanTable(), nil)

	require.Len(t, got, 3)
	assert.Equal(t, []string{"c-model", "b-model", "a-model"}, []string{got[0].Model, got[1].Model, got[2].Model})
}

func TestAggregateModels_PlanAndCost(t *testing.T) {
	records := []model.UsageRecord{
		rec("2024-01-01T10:00:00Z", "u", "claude-opus-4", 3, true),
		rec("2024-01-01T10:00:00Z", "u", "claude-opus-4", 2, false),
		rec("2024-01-01T10:00:00Z", "u", "gpt-4o", 100, true),
		rec("2024-01-01T10:00:00Z", "u", "brand-new", 4, true),
	}
	got := AggregateModels(records, config.DefaultPlanTable(), config.PerUnitPricing(0.04))

	require.Len(t, got, 3)
	opus := got[0]
	assert.True(t, opus.Configured)
	assert.Equal(t, 10.0, opus.Multiplier)
	assert.Equal(t, float64(config.EnterpriseLimit), opus.EnterprisePlanLimit)
	assert.InDelta(t, 1.2, opus.ExcessCost, 1e-9)
	assert.Equal(t, "300", opus.PlanLimitLabel(model.PlanBusiness))

	free := got[1]
	assert.Equal(t, 0.0, free.Multiplier)
	assert.Equal(t, 0.0, free.ExcessCost)
	assert.Equal(t, model.UnlimitedQuota, free.PlanLimitLabel(model.PlanEnterprise))

	unknown := got[2]
	assert.False(t, unknown.Configured)
	assert.Equal(t, 0.0, unknown.Multiplier)
	assert.Equal(t, float64(config.BusinessLimit), unknown.BusinessPlanLimit)
}

func TestAggregateModels_CustomPricing(t *testing.T) {
	flat := func(_ string, exceeding, _ float64) float64 { return exceeding }
	got := AggregateModels(sixRowFixture(), config.DefaultPlanTable(), flat)

	for _, m := range got {
		assert.Equal(t, m.ExceedingRequests, m.ExcessCost, m.Model)
	}
}

func TestDatasetFacts(t *testing.T) {
	records := multiDayFixture()

	last, ok := LastDate(records)
	assert.True(t, ok)
	assert.Equal(t, "2024-02-04", last)

	_, ok = LastDate(nil)
	assert.False(t, ok)

	assert.Equal(t, []string{"gpt-4o", "claude-opus-4", "o3-mini"}, UniqueModels(records))
	assert.Equal(t, 2, UniqueUserCount(records))
	assert.Len(t, FilterByUser(records, "bob"), 2)
}

func TestAggregators_Idempotent(t *testing.T) {
	records := multiDayFixture()
	plans := config.DefaultPlanTable()

	assert.Equal(t, AggregateDaily(records), AggregateDaily(records))
	assert.Equal(t, AggregateDailyModel(records), AggregateDailyModel(records))
	assert.Equal(t, AggregateModelsWithPercentages(records, plans, nil), AggregateModelsWithPercentages(records, plans, nil))
	assert.Equal(t, AnalyzePowerUsers(records), AnalyzePowerUsers(records))
	assert.Equal(t, ExceededRequestDetails(records, "", "alice"), ExceededRequestDetails(records, "", "alice"))
	assert.Equal(t, SummarizeRequestStatus(records), SummarizeRequestStatus(records))
}

func TestAggregators_DoNotMutateInput(t *testing.T) {
	records := multiDayFixture()
	before := append([]model.UsageRecord(nil), records...)

	_ = AnalyzePowerUsers(records)
	_ = AggregateModelsWithPercentages(records, config.DefaultPlanTable(), nil)
	_ = PowerUserDailyBreakdown(records, nil)

	assert.Equal(t, before, records)
}

package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/cusage/internal/model"
)

func TestBuildReport(t *testing.T) {
	records := sixRowFixture()
	r, err := BuildReport(context.Background(), records, DefaultReportOptions())
	require.NoError(t, err)

	assert.Equal(t, "business", r.PlanName)
	assert.Equal(t, 6, r.Records)
	assert.Equal(t, 3, r.Users)
	assert.Equal(t, "2024-01-01", r.LastDate)
	assert.Equal(t, 80.0, r.Status.TotalRequests)
	assert.Equal(t, 3, r.UsersExceedingQuota)
	assert.Len(t, r.ModelSummaries, 3)
	assert.Equal(t, []string{"user1"}, r.PowerUsers.UserNames())
	assert.Equal(t, []model.DailyRequests{{Date: "2024-01-01", Requests: 40}}, r.PowerUserDaily)

	// Sequential results match the concurrent fan-out.
	assert.Equal(t, SummarizeRequestStatus(records), r.Status)
	assert.Equal(t, AggregateDaily(records), r.Daily)
	assert.Equal(t, AnalyzePowerUsers(records), r.PowerUsers)
	assert.Len(t, r.ModelSummaryRows(), 3)
}

func TestBuildReport_Empty(t *testing.T) {
	r, err := BuildReport(context.Background(), nil, DefaultReportOptions())
	require.NoError(t, err)

	assert.Equal(t, 0, r.Records)
	assert.Equal(t, model.RequestStatusSummary{}, r.Status)
	assert.Empty(t, r.ModelSummaries)
	assert.Equal(t, 0.0, r.ExcessCost)
}

func TestBuildReport_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := BuildReport(ctx, sixRowFixture(), DefaultReportOptions())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAggregateExcessCosts(t *testing.T) {
	summaries := []model.ModelSummary{
		{Model: "free", Multiplier: 0, ExceedingRequests: 50},
		{Model: "cheap", Multiplier: 1, ExceedingRequests: 10, ExcessCost: 0.4},
		{Model: "pricey", Multiplier: 10, ExceedingRequests: 4, ExcessCost: 1.6},
	}
	got := AggregateExcessCosts(summaries)

	assert.InDelta(t, 2.0, got.TotalCost, 1e-9)
	assert.Equal(t, 50.0, got.FreeExceeding)
	require.Len(t, got.ByModel, 2)
	assert.Equal(t, "pricey", got.ByModel[0].Model)
	assert.Equal(t, 40.0, got.ByModel[0].Weighted)
	assert.InDelta(t, 80.0, got.ByModel[0].Share, 1e-9)
}

package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/cusage/internal/model"
)

func TestExceededRequestDetails(t *testing.T) {
	got := ExceededRequestDetails(multiDayFixture(), "", "alice")

	require.Len(t, got, 3)
	assert.Equal(t, []string{"2024-02-01", "2024-02-02", "2024-02-04"},
		[]string{got[0].Date, got[1].Date, got[2].Date})

	day := got[1]
	assert.Equal(t, "alice", day.User)
	assert.Equal(t, 7.0, day.ExceededRequests)
	assert.Equal(t, 9.0, day.TotalRequestsOnDay)
	assert.Equal(t, 2.0, day.CompliantRequestsOnDay)
	assert.Equal(t, []string{"claude-opus-4", "o3-mini", "gpt-4o"}, day.ModelsUsed)
	assert.Equal(t, map[string]float64{"claude-opus-4": 6, "o3-mini": 1}, day.ExceedingByModel)

	for _, d := range got {
		assert.Equal(t, d.TotalRequestsOnDay, d.ExceededRequests+d.CompliantRequestsOnDay, d.Date)
	}
}

func TestExceededRequestDetails_DateFilter(t *testing.T) {
	records := multiDayFixture()

	got := ExceededRequestDetails(records, "2024-02-04", "alice")
	require.Len(t, got, 1)
	assert.Equal(t, 7.0, got[0].ExceededRequests)

	assert.Empty(t, ExceededRequestDetails(records, "2024-02-03", "alice"))
	assert.Empty(t, ExceededRequestDetails(records, "", "nobody"))
}

func TestUserExceededSummary(t *testing.T) {
	s := UserExceededSummary(multiDayFixture(), "alice")

	assert.Equal(t, 3, s.TotalExceededDays)
	assert.Equal(t, 17.0, s.TotalExceededRequests)
	assert.InDelta(t, 17.0/3, s.AverageExceededPerDay, 1e-9)
	require.NotNil(t, s.WorstDay)
	// 2024-02-02 and 2024-02-04 both exceed by 7; the earlier wins.
	assert.Equal(t, model.WorstDay{Date: "2024-02-02", ExceededRequests: 7, TotalRequests: 9}, *s.WorstDay)
}

func TestUserExceededSummary_NoExceededDays(t *testing.T) {
	records := []model.UsageRecord{
		rec("2024-01-01T10:00:00Z", "carol", "gpt-4o", 3, false),
	}
	s := UserExceededSummary(records, "carol")

	assert.Equal(t, 0, s.TotalExceededDays)
	assert.Equal(t, 0.0, s.AverageExceededPerDay)
	assert.Nil(t, s.WorstDay)
}

func TestUniqueUsersExceedingQuota(t *testing.T) {
	assert.Equal(t, 3, UniqueUsersExceedingQuota(sixRowFixture()))
	assert.Equal(t, 2, UniqueUsersExceedingQuota(multiDayFixture()))
	assert.Equal(t, 0, UniqueUsersExceedingQuota(nil))

	singleUser := []model.UsageRecord{
		rec("2024-01-01T10:00:00Z", "dave", "gpt-4", 1, true),
		rec("2024-01-02T10:00:00Z", "dave", "gpt-4", 1, true),
		rec("2024-01-03T10:00:00Z", "dave", "gpt-4", 1, true),
	}
	assert.Equal(t, 1, UniqueUsersExceedingQuota(singleUser))
	assert.Equal(t, []string{"dave"}, UsersExceedingQuota(singleUser))
}

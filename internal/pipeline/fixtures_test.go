package pipeline

import (
	"time"

	"github.com/theirongolddev/cusage/internal/model"
)

func rec(ts, user, modelName string, requests float64, exceeds bool) model.UsageRecord {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		panic(err)
	}
	return model.UsageRecord{
		Timestamp:         t,
		User:              user,
		Model:             modelName,
		RequestsUsed:      requests,
		ExceedsQuota:      exceeds,
		TotalMonthlyQuota: "100",
	}
}

// sixRowFixture spans 3 models and 3 users on one day: 80 requests total,
// 60 compliant and 20 exceeding.
func sixRowFixture() []model.UsageRecord {
	return []model.UsageRecord{
		rec("2024-01-01T10:00:00Z", "user1", "gpt-4", 20, false),
		rec("2024-01-01T11:00:00Z", "user2", "gpt-3.5-turbo", 10, true),
		rec("2024-01-01T12:00:00Z", "user1", "gpt-4", 15, false),
		rec("2024-01-01T13:00:00Z", "user3", "gpt-3.5-turbo", 5, true),
		rec("2024-01-01T14:00:00Z", "user2", "coding-agent", 25, false),
		rec("2024-01-01T15:00:00Z", "user1", "gpt-4", 5, true),
	}
}

// multiDayFixture has two users over three days.
func multiDayFixture() []model.UsageRecord {
	return []model.UsageRecord{
		rec("2024-02-01T09:00:00Z", "alice", "gpt-4o", 4, false),
		rec("2024-02-01T10:00:00Z", "alice", "claude-opus-4", 3, true),
		rec("2024-02-01T11:00:00Z", "bob", "gpt-4o", 1, false),
		rec("2024-02-02T09:00:00Z", "alice", "claude-opus-4", 6, true),
		rec("2024-02-02T09:30:00Z", "alice", "o3-mini", 1, true),
		rec("2024-02-02T10:00:00Z", "alice", "gpt-4o", 2, false),
		rec("2024-02-03T12:00:00Z", "alice", "gpt-4o", 5, false),
		rec("2024-02-03T13:00:00Z", "bob", "claude-opus-4", 2, true),
		rec("2024-02-04T08:00:00Z", "alice", "claude-opus-4", 7, true),
	}
}

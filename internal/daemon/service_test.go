package daemon

import (
	"context"
	"errors"
	"io"
	"math"
	"testing"
	"time"

	log "github.com/charmbracelet/log"

	"github.com/theirongolddev/cusage/internal/model"
)

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func usage(day, user, modelName string, requests float64, exceeds bool) model.UsageRecord {
	ts, err := time.Parse(time.RFC3339, day+"T10:00:00Z")
	if err != nil {
		panic(err)
	}
	return model.UsageRecord{
		Timestamp: ts, User: user, Model: modelName,
		RequestsUsed: requests, ExceedsQuota: exceeds, TotalMonthlyQuota: "300",
	}
}

func testRecords() []model.UsageRecord {
	return []model.UsageRecord{
		usage("2025-06-01", "alice", "claude-opus-4", 4, true),
		usage("2025-06-01", "alice", "gpt-4o", 6, false),
		usage("2025-06-02", "bob", "gpt-4o", 3, false),
		usage("2025-06-02", "alice", "claude-opus-4", 2, true),
	}
}

// stubLoader returns the queued results in order, repeating the last.
func stubLoader(results ...func() ([]model.UsageRecord, error)) LoaderFunc {
	i := 0
	return func(context.Context) ([]model.UsageRecord, error) {
		fn := results[min(i, len(results)-1)]
		i++
		return fn()
	}
}

func TestDiffSnapshots(t *testing.T) {
	prev := Snapshot{
		Records:           10,
		TotalRequests:     100,
		ExceedingRequests: 20,
		UsersExceeding:    2,
		ExcessCostUSD:     10.5,
	}
	curr := Snapshot{
		Records:           12,
		TotalRequests:     112.5,
		ExceedingRequests: 24,
		UsersExceeding:    3,
		ExcessCostUSD:     13.1,
	}

	delta := diffSnapshots(prev, curr)
	if delta.Records != 2 {
		t.Fatalf("Records delta = %d, want 2", delta.Records)
	}
	if delta.TotalRequests != 12.5 {
		t.Fatalf("TotalRequests delta = %v, want 12.5", delta.TotalRequests)
	}
	if delta.ExceedingRequests != 4 {
		t.Fatalf("ExceedingRequests delta = %v, want 4", delta.ExceedingRequests)
	}
	if delta.UsersExceeding != 1 {
		t.Fatalf("UsersExceeding delta = %d, want 1", delta.UsersExceeding)
	}
	if math.Abs(delta.ExcessCostUSD-2.6) > 1e-9 {
		t.Fatalf("Cost delta = %.2f, want 2.60", delta.ExcessCostUSD)
	}
	if delta.isZero() {
		t.Fatal("delta unexpectedly reported as zero")
	}
	if !diffSnapshots(curr, curr).isZero() {
		t.Fatal("identical snapshots produced a non-zero delta")
	}
}

func TestPublishEventRingBuffer(t *testing.T) {
	s := New(Config{EventsBuffer: 2, Logger: quietLogger()})

	s.publishEvent(Event{ID: 1})
	s.publishEvent(Event{ID: 2})
	s.publishEvent(Event{ID: 3})

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.events) != 2 {
		t.Fatalf("events len = %d, want 2", len(s.events))
	}
	if s.events[0].ID != 2 || s.events[1].ID != 3 {
		t.Fatalf("events ring contains IDs [%d, %d], want [2, 3]", s.events[0].ID, s.events[1].ID)
	}
}

func TestReload_EventsAndFailureKeepsReport(t *testing.T) {
	grown := append(testRecords(), usage("2025-06-03", "carol", "o3-mini", 1, true))
	s := New(Config{
		Logger: quietLogger(),
		Loader: stubLoader(
			func() ([]model.UsageRecord, error) { return testRecords(), nil },
			func() ([]model.UsageRecord, error) { return testRecords(), nil },
			func() ([]model.UsageRecord, error) { return nil, errors.New("Invalid timestamp at line 3: \"x\"") },
			func() ([]model.UsageRecord, error) { return grown, nil },
		),
	})
	ctx := context.Background()

	if err := s.Reload(ctx); err != nil {
		t.Fatalf("first reload: %v", err)
	}
	// Unchanged data publishes nothing.
	if err := s.Reload(ctx); err != nil {
		t.Fatalf("second reload: %v", err)
	}
	if err := s.Reload(ctx); err == nil {
		t.Fatal("third reload: expected error")
	}

	st := s.snapshotStatus()
	if st.LastError == "" {
		t.Error("LastError not recorded")
	}
	if st.Summary.Records != 4 || st.Summary.TotalRequests != 15 {
		t.Errorf("previous report not kept: %+v", st.Summary)
	}
	if _, report := s.current(); report == nil || report.Records != 4 {
		t.Error("report replaced after failed reload")
	}

	if err := s.Reload(ctx); err != nil {
		t.Fatalf("fourth reload: %v", err)
	}
	if st := s.snapshotStatus(); st.LastError != "" || st.ReloadCount != 4 {
		t.Errorf("status after recovery = %+v", st)
	}

	events := s.eventsCopy()
	var types []string
	for _, ev := range events {
		types = append(types, ev.Type)
	}
	want := []string{EventSnapshot, EventReloadError, EventReload}
	if len(types) != len(want) {
		t.Fatalf("event types = %v, want %v", types, want)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Fatalf("event types = %v, want %v", types, want)
		}
	}
	last := events[2]
	if last.Delta.Records != 1 || last.Delta.UsersExceeding != 1 {
		t.Errorf("reload delta = %+v", last.Delta)
	}
}

func TestSnapshotFromReport(t *testing.T) {
	s := New(Config{Logger: quietLogger(), Loader: stubLoader(
		func() ([]model.UsageRecord, error) { return testRecords(), nil },
	)})
	if err := s.Reload(context.Background()); err != nil {
		t.Fatal(err)
	}

	snap := s.snapshotStatus().Summary
	if snap.Users != 2 || snap.Models != 2 || snap.LastDate != "2025-06-02" {
		t.Errorf("snapshot facts = %+v", snap)
	}
	if snap.ExceedingRequests != 6 || snap.UsersExceeding != 1 || snap.PowerUsers != 1 {
		t.Errorf("snapshot totals = %+v", snap)
	}
	// 6 exceeding opus requests at 10x and $0.04.
	if math.Abs(snap.ExcessCostUSD-2.4) > 1e-9 {
		t.Errorf("ExcessCostUSD = %v, want 2.4", snap.ExcessCostUSD)
	}
}

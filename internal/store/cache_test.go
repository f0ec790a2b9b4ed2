package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/theirongolddev/cusage/internal/model"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "cache", "usage.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func sampleRecords() []model.UsageRecord {
	ts := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	return []model.UsageRecord{
		{Timestamp: ts, User: "alice", Model: "gpt-4o", RequestsUsed: 1, TotalMonthlyQuota: "300"},
		{Timestamp: ts.Add(time.Minute), User: "bob", Model: "claude-opus-4", RequestsUsed: 0.5, ExceedsQuota: true, TotalMonthlyQuota: "Unlimited"},
		{Timestamp: ts.Add(2 * time.Minute), User: "alice", Model: "o3-mini", RequestsUsed: 2, TotalMonthlyQuota: "300"},
	}
}

func TestSaveAndLoadFile(t *testing.T) {
	c := openTestCache(t)
	want := sampleRecords()

	id, err := c.SaveFile("/data/a.csv", 100, 2048, want)
	if err != nil {
		t.Fatalf("SaveFile: %v", err)
	}
	if id == "" {
		t.Fatal("SaveFile returned empty import id")
	}

	got, err := c.LoadFile("/data/a.csv")
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if !got[i].Timestamp.Equal(want[i].Timestamp) {
			t.Errorf("[%d] Timestamp = %v, want %v", i, got[i].Timestamp, want[i].Timestamp)
		}
		if got[i].User != want[i].User || got[i].Model != want[i].Model {
			t.Errorf("[%d] = %s/%s, want %s/%s", i, got[i].User, got[i].Model, want[i].User, want[i].Model)
		}
		if got[i].RequestsUsed != want[i].RequestsUsed || got[i].ExceedsQuota != want[i].ExceedsQuota {
			t.Errorf("[%d] requests/exceeds = %v/%v", i, got[i].RequestsUsed, got[i].ExceedsQuota)
		}
		if got[i].TotalMonthlyQuota != want[i].TotalMonthlyQuota {
			t.Errorf("[%d] quota = %q, want %q", i, got[i].TotalMonthlyQuota, want[i].TotalMonthlyQuota)
		}
	}

	tracked, err := c.GetTrackedFiles()
	if err != nil {
		t.Fatalf("GetTrackedFiles: %v", err)
	}
	fi, ok := tracked["/data/a.csv"]
	if !ok {
		t.Fatal("file not tracked")
	}
	if !fi.Matches(100, 2048) || fi.RecordCount != 3 || fi.ImportID != id {
		t.Errorf("tracked = %+v", fi)
	}
}

func TestSaveFile_ReplacesPreviousImport(t *testing.T) {
	c := openTestCache(t)
	recs := sampleRecords()

	first, err := c.SaveFile("/data/a.csv", 1, 10, recs)
	if err != nil {
		t.Fatal(err)
	}
	second, err := c.SaveFile("/data/a.csv", 2, 20, recs[:1])
	if err != nil {
		t.Fatal(err)
	}
	if first == second {
		t.Error("expected a fresh import id")
	}

	n, err := c.RecordCount()
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("RecordCount = %d, want 1", n)
	}
}

func TestDeleteFile(t *testing.T) {
	c := openTestCache(t)
	if _, err := c.SaveFile("/data/a.csv", 1, 10, sampleRecords()); err != nil {
		t.Fatal(err)
	}
	if err := c.DeleteFile("/data/a.csv"); err != nil {
		t.Fatal(err)
	}

	if _, err := c.LoadFile("/data/a.csv"); !errors.Is(err, ErrNotCached) {
		t.Errorf("LoadFile after delete = %v, want ErrNotCached", err)
	}
	if n, _ := c.RecordCount(); n != 0 {
		t.Errorf("RecordCount = %d, want 0", n)
	}
}

package daemon

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherRelevant(t *testing.T) {
	dir := t.TempDir()
	other := t.TempDir()
	file := filepath.Join(other, "export.csv")
	if err := os.WriteFile(file, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	w, err := newWatcher([]string{dir, file}, time.Millisecond, make(chan struct{}, 1), quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = w.Close() }()

	tests := []struct {
		path string
		want bool
	}{
		{filepath.Join(dir, "june.csv"), true},
		{filepath.Join(dir, "JUNE.CSV"), true},
		{filepath.Join(dir, ".june.csv"), false},
		{filepath.Join(dir, "notes.txt"), false},
		{file, true},
		{filepath.Join(other, "sibling.csv"), false},
	}
	for _, tt := range tests {
		if got := w.relevant(tt.path); got != tt.want {
			t.Errorf("relevant(%s) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestWatcherTriggersOnWrite(t *testing.T) {
	dir := t.TempDir()
	trigger := make(chan struct{}, 1)

	w, err := newWatcher([]string{dir}, 20*time.Millisecond, trigger, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = w.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.run(ctx)

	if err := os.WriteFile(filepath.Join(dir, "usage.csv"), []byte("data"), 0o600); err != nil {
		t.Fatal(err)
	}

	select {
	case <-trigger:
	case <-time.After(5 * time.Second):
		t.Fatal("no reload trigger after writing a csv")
	}
}

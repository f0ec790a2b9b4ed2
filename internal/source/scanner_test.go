package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestScanPath(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.csv", "a.CSV", "notes.txt", ".hidden.csv"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.csv"), 0o750); err != nil {
		t.Fatal(err)
	}

	files, err := ScanPath(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("len(files) = %d, want 2: %+v", len(files), files)
	}
	if files[0].Name != "a.CSV" || files[1].Name != "b.csv" {
		t.Errorf("files = [%s %s], want [a.CSV b.csv]", files[0].Name, files[1].Name)
	}
	if files[0].SizeBytes != 1 || files[0].MtimeNs == 0 {
		t.Errorf("file info not populated: %+v", files[0])
	}

	single, err := ScanPath(filepath.Join(dir, "notes.txt"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(single) != 1 {
		t.Errorf("explicit file should always be returned, got %d", len(single))
	}

	if _, err := ScanPath(filepath.Join(dir, "missing")); err == nil {
		t.Error("expected error for missing path")
	}
}

func TestScanPaths_Dedup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "u.csv")
	if err := os.WriteFile(path, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	files, err := ScanPaths([]string{path, dir})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 1 {
		t.Errorf("len(files) = %d, want 1", len(files))
	}
}

package source

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DiscoveredFile is a CSV export found on disk.
type DiscoveredFile struct {
	Path      string
	Name      string // base name, for display
	MtimeNs   int64
	SizeBytes int64
}

// ScanPath resolves path to the exports it names: the file itself, or every
// *.csv directly inside a directory, sorted by path. Hidden files are skipped.
func ScanPath(path string) ([]DiscoveredFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.IsDir() {
		return []DiscoveredFile{newDiscovered(path, info)}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var files []DiscoveredFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, ".") || !strings.EqualFold(filepath.Ext(name), ".csv") {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, newDiscovered(filepath.Join(path, name), fi))
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Path < files[j].Path
	})
	return files, nil
}

// ScanPaths resolves several paths, keeping argument order and dropping
// duplicates.
func ScanPaths(paths []string) ([]DiscoveredFile, error) {
	seen := make(map[string]struct{})
	var out []DiscoveredFile
	for _, p := range paths {
		files, err := ScanPath(p)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			abs, err := filepath.Abs(f.Path)
			if err != nil {
				abs = f.Path
			}
			if _, dup := seen[abs]; dup {
				continue
			}
			seen[abs] = struct{}{}
			out = append(out, f)
		}
	}
	return out, nil
}

func newDiscovered(path string, info os.FileInfo) DiscoveredFile {
	return DiscoveredFile{
		Path:      path,
		Name:      filepath.Base(path),
		MtimeNs:   info.ModTime().UnixNano(),
		SizeBytes: info.Size(),
	}
}

package pipeline

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/theirongolddev/cusage/internal/model"
	"github.com/theirongolddev/cusage/internal/source"
)

// LoadResult holds the output of the loading pipeline.
type LoadResult struct {
	Records    []model.UsageRecord
	Files      []source.DiscoveredFile
	TotalFiles int
}

// FileError attributes a parse failure to the export it came from.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("parsing %s: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

// ProgressFunc is called during loading to report progress.
// current is the number of files processed so far, total is the total count.
type ProgressFunc func(current, total int)

// Load discovers and parses every export named by paths using a bounded
// worker pool. Loading is all-or-nothing: the first failing file in path
// order aborts with its ingestion error.
func Load(paths []string, progressFn ProgressFunc) (*LoadResult, error) {
	files, err := source.ScanPaths(paths)
	if err != nil {
		return nil, err
	}

	result := &LoadResult{Files: files, TotalFiles: len(files)}
	if len(files) == 0 {
		return result, nil
	}

	parsed := parseAll(files, progressFn, 0, len(files))
	for i, pr := range parsed {
		if pr.err != nil {
			return nil, &FileError{Path: files[i].Path, Err: pr.err}
		}
		result.Records = append(result.Records, pr.records...)
	}
	return result, nil
}

type parseResult struct {
	records []model.UsageRecord
	err     error
}

// parseAll parses files in parallel, preserving input order in the result.
// offset and total shift the progress reporting for partial loads.
func parseAll(files []source.DiscoveredFile, progressFn ProgressFunc, offset, total int) []parseResult {
	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers < 1 {
		numWorkers = 4
	}
	if numWorkers > len(files) {
		numWorkers = len(files)
	}

	work := make(chan int, len(files))
	results := make([]parseResult, len(files))
	var wg sync.WaitGroup
	var processed atomic.Int64

	for i := range files {
		work <- i
	}
	close(work)

	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func() {
			defer wg.Done()
			for idx := range work {
				recs, err := source.ParseFile(files[idx].Path)
				results[idx] = parseResult{records: recs, err: err}
				n := processed.Add(1)
				if progressFn != nil {
					progressFn(int(n)+offset, total)
				}
			}
		}()
	}

	wg.Wait()
	return results
}

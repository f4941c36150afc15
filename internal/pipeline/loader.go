package pipeline

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/theirongolddev/dupont/internal/callreport"
	"github.com/theirongolddev/dupont/internal/report"
)

// BankSpec names one call report file and the alias it is loaded under.
type BankSpec struct {
	Alias string
	Path  string
}

// Failure records a file that could not be loaded.
type Failure struct {
	Alias string
	Path  string
	Err   error
}

func (f Failure) Error() string {
	return f.Alias + " (" + f.Path + "): " + f.Err.Error()
}

func (f Failure) Unwrap() error { return f.Err }

// LoadResult holds the output of the full data loading pipeline.
type LoadResult struct {
	Registry    *Registry
	TotalFiles  int
	ParsedFiles int
	SkippedRows int
	FileErrors  int
	Failures    []Failure
}

// ProgressFunc is called during loading to report progress.
// current is the number of files processed so far, total is the total count.
type ProgressFunc func(current, total int)

type parseResult struct {
	rs  *callreport.RecordSet
	err error
}

// Load parses every listed file with a bounded worker pool. Banks are
// registered in input order regardless of completion order. Per-file failures
// do not stop the load; they are counted and listed in Failures.
func Load(specs []BankSpec, progressFn ProgressFunc) (*LoadResult, error) {
	result := &LoadResult{
		Registry:   NewRegistry(),
		TotalFiles: len(specs),
	}
	if len(specs) == 0 {
		return result, nil
	}
	if err := checkSpecs(specs); err != nil {
		return nil, err
	}

	results := parseAll(specs, progressFn, 0, len(specs))
	if err := collect(result, specs, results); err != nil {
		return nil, err
	}
	return result, nil
}

// parseAll runs ParseFile over specs on GOMAXPROCS workers. Progress is
// reported as offset+n out of total.
func parseAll(specs []BankSpec, progressFn ProgressFunc, offset, total int) []parseResult {
	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers < 1 {
		numWorkers = 4
	}
	if numWorkers > len(specs) {
		numWorkers = len(specs)
	}

	work := make(chan int, len(specs))
	results := make([]parseResult, len(specs))
	var wg sync.WaitGroup
	var processed atomic.Int64

	for i := range specs {
		work <- i
	}
	close(work)

	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func() {
			defer wg.Done()
			for idx := range work {
				rs, err := callreport.ParseFile(specs[idx].Path)
				results[idx] = parseResult{rs: rs, err: err}
				n := processed.Add(1)
				if progressFn != nil {
					progressFn(offset+int(n), total)
				}
			}
		}()
	}

	wg.Wait()
	return results
}

func checkSpecs(specs []BankSpec) error {
	seen := make(map[string]struct{}, len(specs))
	for _, s := range specs {
		if s.Alias == "" {
			return fmt.Errorf("bank %s has no alias", s.Path)
		}
		if _, ok := seen[s.Alias]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateAlias, s.Alias)
		}
		seen[s.Alias] = struct{}{}
	}
	return nil
}

// collect registers parsed banks in input order.
func collect(result *LoadResult, specs []BankSpec, results []parseResult) error {
	for i, pr := range results {
		spec := specs[i]
		if pr.err != nil {
			result.FileErrors++
			result.Failures = append(result.Failures, Failure{Alias: spec.Alias, Path: spec.Path, Err: pr.err})
			result.Registry.fail(spec.Alias, pr.err)
			continue
		}
		result.ParsedFiles++
		result.SkippedRows += pr.rs.Skipped()
		if err := result.Registry.Add(report.NewBank(spec.Alias, pr.rs)); err != nil {
			return err
		}
	}
	return nil
}

package tui

import (
	"errors"
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/theirongolddev/dupont/internal/callreport"
	"github.com/theirongolddev/dupont/internal/model"
	"github.com/theirongolddev/dupont/internal/pipeline"
	"github.com/theirongolddev/dupont/internal/report"
)

// ErrNoBanks is reported when nothing could be loaded.
var ErrNoBanks = errors.New("no call reports found")

// Options configures where the dashboard loads its banks from.
type Options struct {
	// Specs resolves the bank list; it is called on every refresh.
	Specs     func() ([]pipeline.BankSpec, error)
	Aliases   []string
	Strict    bool
	CachePath string // empty disables the parse cache
	NeedSetup bool
}

// Snapshot is one computed set of reports.
type Snapshot struct {
	DuPont    model.Table
	Operating model.Table
	Banks     []model.BankRatios
	Breakdown []model.OperatingBreakdown
	Failures  []pipeline.Failure
	// Ambiguous lists "path: label" for every lenient lookup that matched
	// rows with different values.
	Ambiguous []string
}

// DataLoadedMsg is sent when the initial load finishes.
type DataLoadedMsg struct {
	Snapshot *Snapshot
	Err      error
	LoadTime time.Duration
}

// ProgressMsg reports file parsing progress.
type ProgressMsg struct {
	Current int
	Total   int
}

// RefreshDataMsg is sent when a background refresh finishes.
type RefreshDataMsg struct {
	Snapshot *Snapshot
	Err      error
	LoadTime time.Duration
}

// buildSnapshot loads every bank and computes both comparison tables.
func buildSnapshot(opts Options, progressFn pipeline.ProgressFunc) (*Snapshot, error) {
	specs, err := opts.Specs()
	if err != nil {
		return nil, err
	}
	res, err := pipeline.LoadAuto(specs, opts.CachePath, progressFn)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{Failures: res.Failures}
	var mu sync.Mutex
	seen := make(map[string]bool)
	policy := callreport.Policy{Strict: opts.Strict, OnAmbiguous: func(path string, m callreport.Match) {
		key := fmt.Sprintf("%s: %s", path, m.Prefix)
		mu.Lock()
		defer mu.Unlock()
		if !seen[key] {
			seen[key] = true
			snap.Ambiguous = append(snap.Ambiguous, key)
		}
	}}

	banks, err := res.Registry.WithPolicy(policy).Banks(opts.Aliases...)
	if err != nil {
		return nil, err
	}
	if len(banks) == 0 {
		return nil, ErrNoBanks
	}

	if snap.DuPont, err = report.Compare(banks); err != nil {
		return nil, err
	}
	if snap.Operating, err = report.CompareOperating(banks); err != nil {
		return nil, err
	}
	if snap.Banks, err = report.BuildAll(banks); err != nil {
		return nil, err
	}
	for _, b := range banks {
		ob, err := report.BuildOperating(b)
		if err != nil {
			return nil, err
		}
		snap.Breakdown = append(snap.Breakdown, ob)
	}
	return snap, nil
}

// loadDataCmd runs the load in a goroutine, streaming ProgressMsg updates
// and a final DataLoadedMsg through sub.
func loadDataCmd(opts Options, sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		go func() {
			start := time.Now()

			// Non-blocking send so workers are never stalled; a dropped
			// update is superseded by the next one.
			progressFn := func(current, total int) {
				select {
				case sub <- ProgressMsg{Current: current, Total: total}:
				default:
				}
			}

			snap, err := buildSnapshot(opts, progressFn)
			sub <- DataLoadedMsg{Snapshot: snap, Err: err, LoadTime: time.Since(start)}
		}()

		return <-sub
	}
}

// waitForLoadMsg blocks until the next message arrives from the loader goroutine.
func waitForLoadMsg(sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-sub
	}
}

// refreshDataCmd reloads in the background without progress updates.
func refreshDataCmd(opts Options) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		snap, err := buildSnapshot(opts, nil)
		return RefreshDataMsg{Snapshot: snap, Err: err, LoadTime: time.Since(start)}
	}
}

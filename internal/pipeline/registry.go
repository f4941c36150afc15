package pipeline

import (
	"errors"
	"fmt"

	"github.com/theirongolddev/dupont/internal/callreport"
	"github.com/theirongolddev/dupont/internal/report"
)

var (
	// ErrUnknownBank is returned for aliases that were never loaded.
	ErrUnknownBank = errors.New("unknown bank")
	// ErrDuplicateAlias is returned when two banks share an alias.
	ErrDuplicateAlias = errors.New("duplicate bank alias")
)

// Registry maps bank aliases to loaded call reports, keeping load order.
type Registry struct {
	order  []string
	banks  map[string]report.Bank
	failed map[string]error
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		banks:  make(map[string]report.Bank),
		failed: make(map[string]error),
	}
}

// Add registers a bank under its alias.
func (r *Registry) Add(b report.Bank) error {
	if _, ok := r.banks[b.Alias]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateAlias, b.Alias)
	}
	if _, ok := r.failed[b.Alias]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateAlias, b.Alias)
	}
	r.order = append(r.order, b.Alias)
	r.banks[b.Alias] = b
	return nil
}

// fail records that alias was requested but could not be loaded, so Get
// can report the real cause instead of ErrUnknownBank.
func (r *Registry) fail(alias string, err error) {
	r.failed[alias] = err
}

// Aliases returns the loaded aliases in load order.
func (r *Registry) Aliases() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of loaded banks.
func (r *Registry) Len() int { return len(r.order) }

// Get returns the bank registered under alias.
func (r *Registry) Get(alias string) (report.Bank, error) {
	if b, ok := r.banks[alias]; ok {
		return b, nil
	}
	if err, ok := r.failed[alias]; ok {
		return report.Bank{}, fmt.Errorf("loading %s: %w", alias, err)
	}
	return report.Bank{}, fmt.Errorf("%w: %s", ErrUnknownBank, alias)
}

// Banks returns the named banks in request order, or every bank in load
// order when no alias is given.
func (r *Registry) Banks(aliases ...string) ([]report.Bank, error) {
	if len(aliases) == 0 {
		aliases = r.order
	}
	out := make([]report.Bank, 0, len(aliases))
	for _, a := range aliases {
		b, err := r.Get(a)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

// WithPolicy returns a registry whose record sets resolve ambiguous labels
// under p.
func (r *Registry) WithPolicy(p callreport.Policy) *Registry {
	out := &Registry{
		order:  r.Aliases(),
		banks:  make(map[string]report.Bank, len(r.banks)),
		failed: make(map[string]error, len(r.failed)),
	}
	for alias, b := range r.banks {
		b.Records = b.Records.WithPolicy(p)
		out.banks[alias] = b
	}
	for alias, err := range r.failed {
		out.failed[alias] = err
	}
	return out
}

package callreport

import (
	"errors"
	"fmt"
	"time"
)

// Column headers in an FFIEC SDF extract.
const (
	ColShortDefinition = "Short Definition"
	ColValue           = "Value"
	ColCallDate        = "Call Date"
)

var (
	// ErrLabelNotFound means no record label starts with the requested prefix.
	ErrLabelNotFound = errors.New("callreport: label not found")
	// ErrAmbiguous means a prefix matched records holding different values.
	ErrAmbiguous = errors.New("callreport: ambiguous label")
	// ErrFormat means a matched value is not a number.
	ErrFormat = errors.New("callreport: value is not numeric")
	// ErrMissingColumn means the header lacks a required column.
	ErrMissingColumn = errors.New("callreport: missing required column")
	// ErrNoCallDate means the file carries no usable Call Date values.
	ErrNoCallDate = errors.New("callreport: no call date")
)

// LookupError describes a failed label lookup.
type LookupError struct {
	Prefix string
	Path   string // source file, empty for in-memory record sets
	Value  string // offending value for format errors
	Err    error
}

func (e *LookupError) Error() string {
	src := e.Path
	if src == "" {
		src = "records"
	}
	if e.Value != "" {
		return fmt.Sprintf("%s: %q in %s (value %q)", e.Err, e.Prefix, src, e.Value)
	}
	return fmt.Sprintf("%s: %q in %s", e.Err, e.Prefix, src)
}

func (e *LookupError) Unwrap() error { return e.Err }

// Record is one (Short Definition, Value) row of a call report.
type Record struct {
	Label string
	Value string
}

// Match is the result of resolving a label prefix.
type Match struct {
	Prefix   string
	Value    string   // first match in file order
	Distinct []string // distinct values in order of first appearance
	Count    int      // number of matching records
}

// Ambiguous reports whether the matches disagree on the value.
func (m Match) Ambiguous() bool {
	return len(m.Distinct) > 1
}

// Policy controls how ambiguous lookups are handled.
type Policy struct {
	// Strict turns ambiguous matches into ErrAmbiguous.
	Strict bool
	// OnAmbiguous is called for ambiguous matches in lenient mode.
	OnAmbiguous func(path string, m Match)
}

// Period is a reporting quarter.
type Period struct {
	Year    int
	Quarter int
}

// PeriodOf returns the quarter containing t.
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Quarter: (int(t.Month())-1)/3 + 1}
}

func (p Period) String() string {
	if p.Year == 0 {
		return ""
	}
	return fmt.Sprintf("%d-Q%d", p.Year, p.Quarter)
}

// IsZero reports whether p is unset.
func (p Period) IsZero() bool {
	return p.Year == 0
}

// DiscoveredFile is an SDF file found during directory scanning.
type DiscoveredFile struct {
	Path      string
	Alias     string    // "cert33893", or the base name for non-FFIEC names
	Cert      string    // FDIC certificate number from the file name
	PeriodEnd time.Time // report date from the file name
}

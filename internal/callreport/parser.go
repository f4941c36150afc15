// Package callreport loads FFIEC Call Report SDF extracts and resolves line
// items by their short-definition label.
package callreport

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// RecordSet is the ordered set of records parsed from one bank's report.
// It is never mutated after construction.
type RecordSet struct {
	Path string

	records   []Record
	callDates []string
	skipped   int
	policy    Policy
}

// New builds a record set from already-parsed rows. The slices are copied.
func New(path string, records []Record, callDates []string) *RecordSet {
	rs := &RecordSet{
		Path:      path,
		records:   make([]Record, len(records)),
		callDates: make([]string, len(callDates)),
	}
	copy(rs.records, records)
	copy(rs.callDates, callDates)
	return rs
}

// Len returns the number of records.
func (rs *RecordSet) Len() int { return len(rs.records) }

// Skipped returns the number of malformed rows dropped during parsing.
func (rs *RecordSet) Skipped() int { return rs.skipped }

// WithSkipped returns a copy of rs reporting n skipped rows. It restores
// the count for record sets rebuilt from the parse cache.
func (rs *RecordSet) WithSkipped(n int) *RecordSet {
	cp := *rs
	cp.skipped = n
	return &cp
}

// Records returns a copy of the records in file order.
func (rs *RecordSet) Records() []Record {
	out := make([]Record, len(rs.records))
	copy(out, rs.records)
	return out
}

// CallDates returns a copy of the raw Call Date column values.
func (rs *RecordSet) CallDates() []string {
	out := make([]string, len(rs.callDates))
	copy(out, rs.callDates)
	return out
}

// WithPolicy returns a view of rs that resolves ambiguity under p.
// The underlying rows are shared.
func (rs *RecordSet) WithPolicy(p Policy) *RecordSet {
	view := *rs
	view.policy = p
	return &view
}

// ParseFile reads an SDF file from disk.
func ParseFile(path string) (*RecordSet, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from config or flags
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	rs, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	rs.Path = path
	return rs, nil
}

// Parse reads a semicolon-delimited SDF extract. The header must name the
// Short Definition and Value columns; Call Date is optional. Rows too short
// to hold both required columns are skipped.
func Parse(r io.Reader) (*RecordSet, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty file", ErrMissingColumn)
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	labelCol, valueCol, dateCol := -1, -1, -1
	for i, h := range header {
		switch cleanHeader(h) {
		case ColShortDefinition:
			labelCol = i
		case ColValue:
			valueCol = i
		case ColCallDate:
			dateCol = i
		}
	}
	if labelCol < 0 {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, ColShortDefinition)
	}
	if valueCol < 0 {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, ColValue)
	}
	need := max(labelCol, valueCol)

	rs := &RecordSet{}
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				rs.skipped++
				continue
			}
			return nil, err
		}
		if len(row) <= need {
			rs.skipped++
			continue
		}

		rs.records = append(rs.records, Record{
			Label: strings.TrimSpace(row[labelCol]),
			Value: strings.TrimSpace(row[valueCol]),
		})
		if dateCol >= 0 && dateCol < len(row) {
			if d := strings.TrimSpace(row[dateCol]); d != "" {
				rs.callDates = append(rs.callDates, d)
			}
		}
	}

	return rs, nil
}

func cleanHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(h), `"`))
}

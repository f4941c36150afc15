package callreport

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Resolve collects every record whose label starts with prefix. Matching is
// case-sensitive. The returned Match lists distinct values in order of first
// appearance, so Match.Value is always the first match in file order.
//
// Resolve does not apply the ambiguity policy; Text, Number and Amount do.
func (rs *RecordSet) Resolve(prefix string) (Match, error) {
	m := Match{Prefix: prefix}
	seen := make(map[string]struct{})

	for _, r := range rs.records {
		if !strings.HasPrefix(r.Label, prefix) {
			continue
		}
		if m.Count == 0 {
			m.Value = r.Value
		}
		m.Count++
		if _, ok := seen[r.Value]; !ok {
			seen[r.Value] = struct{}{}
			m.Distinct = append(m.Distinct, r.Value)
		}
	}

	if m.Count == 0 {
		return m, &LookupError{Prefix: prefix, Path: rs.Path, Err: ErrLabelNotFound}
	}
	return m, nil
}

func (rs *RecordSet) resolve(prefix string) (Match, error) {
	m, err := rs.Resolve(prefix)
	if err != nil {
		return m, err
	}
	if m.Ambiguous() {
		if rs.policy.Strict {
			return m, &LookupError{Prefix: prefix, Path: rs.Path, Err: ErrAmbiguous}
		}
		if rs.policy.OnAmbiguous != nil {
			rs.policy.OnAmbiguous(rs.Path, m)
		}
	}
	return m, nil
}

// Text returns the raw value of the first record whose label starts with prefix.
func (rs *RecordSet) Text(prefix string) (string, error) {
	m, err := rs.resolve(prefix)
	if err != nil {
		return "", err
	}
	return m.Value, nil
}

// Amount returns the first distinct value matching prefix as an exact decimal.
func (rs *RecordSet) Amount(prefix string) (decimal.Decimal, error) {
	m, err := rs.resolve(prefix)
	if err != nil {
		return decimal.Zero, err
	}
	d, err := decimal.NewFromString(m.Value)
	if err != nil {
		return decimal.Zero, &LookupError{Prefix: prefix, Path: rs.Path, Value: m.Value, Err: ErrFormat}
	}
	return d, nil
}

// Number returns the first distinct value matching prefix as a float64.
func (rs *RecordSet) Number(prefix string) (float64, error) {
	d, err := rs.Amount(prefix)
	if err != nil {
		return 0, err
	}
	f, _ := d.Float64()
	return f, nil
}

// Package report assembles per-bank ratio records and cross-bank
// comparison tables. Nothing is cached: every build re-runs all lookups.
package report

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/dupont/internal/callreport"
	"github.com/theirongolddev/dupont/internal/model"
	"github.com/theirongolddev/dupont/internal/ratio"
)

// Bank is one loaded call report under its symbolic alias.
type Bank struct {
	Alias   string
	Period  string // reporting quarter, empty when the file has no call dates
	Records *callreport.RecordSet
}

// NewBank wraps a record set, deriving its reporting period.
func NewBank(alias string, rs *callreport.RecordSet) Bank {
	b := Bank{Alias: alias, Records: rs}
	if p, err := rs.Period(); err == nil {
		b.Period = p.String()
	}
	return b
}

// DisplayName resolves the bank's legal title.
func (b Bank) DisplayName() (string, error) {
	return b.Records.Text(ratio.LabelLegalTitle)
}

// BuildRatios computes the ratio record for one bank.
func BuildRatios(b Bank) (model.BankRatios, error) {
	name, err := b.DisplayName()
	if err != nil {
		return model.BankRatios{}, fmt.Errorf("%s: %w", b.Alias, err)
	}
	r, err := ratio.Compute(b.Records)
	if err != nil {
		return model.BankRatios{}, fmt.Errorf("%s: %w", b.Alias, err)
	}
	return model.BankRatios{
		Alias:  b.Alias,
		Name:   name,
		Period: b.Period,
		Ratios: r,
	}, nil
}

// BuildAll computes ratio records for every bank in order, aborting on the
// first failure.
func BuildAll(banks []Bank) ([]model.BankRatios, error) {
	out := make([]model.BankRatios, 0, len(banks))
	for _, b := range banks {
		br, err := BuildRatios(b)
		if err != nil {
			return nil, err
		}
		out = append(out, br)
	}
	return out, nil
}

// BuildOperating computes the operating-income breakdown for one bank.
func BuildOperating(b Bank) (model.OperatingBreakdown, error) {
	name, err := b.DisplayName()
	if err != nil {
		return model.OperatingBreakdown{}, fmt.Errorf("%s: %w", b.Alias, err)
	}
	c, err := ratio.Components(b.Records)
	if err != nil {
		return model.OperatingBreakdown{}, fmt.Errorf("%s: %w", b.Alias, err)
	}
	ob := c.Breakdown()
	ob.Alias = b.Alias
	ob.Name = name
	ob.Period = b.Period
	return ob, nil
}

// Compare builds the DuPont comparison table: one row per metric, one
// column per bank in request order.
func Compare(banks []Bank) (model.Table, error) {
	all, err := BuildAll(banks)
	if err != nil {
		return model.Table{}, err
	}

	t := newTable(model.DuPontTitle, len(model.DuPontMetrics), all, func(br model.BankRatios) (string, string) {
		return br.Name, br.Alias
	})
	t.Period = CommonPeriod(banks)
	for i, m := range model.DuPontMetrics {
		t.Rows[i] = string(m)
		for j, br := range all {
			t.Values[i][j] = br.Value(m)
		}
	}
	return t, nil
}

// CompareOperating builds the operating-income breakdown table.
func CompareOperating(banks []Bank) (model.Table, error) {
	all := make([]model.OperatingBreakdown, 0, len(banks))
	for _, b := range banks {
		ob, err := BuildOperating(b)
		if err != nil {
			return model.Table{}, err
		}
		all = append(all, ob)
	}

	t := newTable(model.OperatingTitle, len(model.OperatingLines), all, func(ob model.OperatingBreakdown) (string, string) {
		return ob.Name, ob.Alias
	})
	t.Period = CommonPeriod(banks)
	for i, l := range model.OperatingLines {
		t.Rows[i] = string(l)
		for j, ob := range all {
			t.Values[i][j] = ob.Value(l)
		}
	}
	return t, nil
}

func newTable[T any](title string, rows int, cols []T, ident func(T) (name, alias string)) model.Table {
	t := model.Table{
		Title:   title,
		Rows:    make([]string, rows),
		Columns: make([]string, len(cols)),
		Aliases: make([]string, len(cols)),
		Values:  make([][]float64, rows),
	}
	for i := range t.Values {
		t.Values[i] = make([]float64, len(cols))
	}
	for j, c := range cols {
		t.Columns[j], t.Aliases[j] = ident(c)
	}
	t.Columns = uniqueHeaders(t.Columns, t.Aliases)
	return t
}

// uniqueHeaders keeps column headers distinct. Banks sharing a legal title
// get their alias appended; if that still collides, a position suffix.
func uniqueHeaders(names, aliases []string) []string {
	count := make(map[string]int, len(names))
	for _, n := range names {
		count[n]++
	}

	out := make([]string, len(names))
	used := make(map[string]int, len(names))
	for i, n := range names {
		h := n
		if count[n] > 1 {
			h = fmt.Sprintf("%s (%s)", n, aliases[i])
		}
		used[h]++
		if used[h] > 1 {
			h = fmt.Sprintf("%s #%d", h, used[h])
		}
		out[i] = h
	}
	return out
}

// CommonPeriod returns the reporting period shared by the banks, or the
// distinct periods joined with ", " when they differ.
func CommonPeriod(banks []Bank) string {
	var periods []string
	seen := make(map[string]struct{})
	for _, b := range banks {
		if b.Period == "" {
			continue
		}
		if _, ok := seen[b.Period]; ok {
			continue
		}
		seen[b.Period] = struct{}{}
		periods = append(periods, b.Period)
	}
	return strings.Join(periods, ", ")
}

// Tree arranges a bank's ratios as the DuPont tree:
// ROE splits into Equity Multiplier and ROA, ROA into Asset Turnover and
// Return on Sales.
func Tree(br model.BankRatios) model.DuPontNode {
	return model.DuPontNode{
		Metric: model.MetricReturnOnEquity,
		Value:  br.ReturnOnEquity,
		Children: []model.DuPontNode{
			{Metric: model.MetricEquityMultiplier, Value: br.EquityMultiplier},
			{
				Metric: model.MetricReturnOnAssets,
				Value:  br.ReturnOnAssets,
				Children: []model.DuPontNode{
					{Metric: model.MetricAssetTurnover, Value: br.AssetTurnover},
					{Metric: model.MetricReturnOnSales, Value: br.ReturnOnSales},
				},
			},
		},
	}
}

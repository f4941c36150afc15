package cli

import (
	"math"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/dupont/internal/model"
)

func init() {
	// Plain output so assertions can match text.
	lipgloss.SetColorProfile(termenv.Ascii)
}

func comparison() model.Table {
	return model.Table{
		Title:   "Dupont Analysis",
		Period:  "2022-Q4",
		Rows:    []string{"Return on Equity", "Equity Multiplier"},
		Columns: []string{"Raymond James Bank", "BankUnited, N.A."},
		Aliases: []string{"rj", "bu"},
		Values:  [][]float64{{0.2, 0.1}, {4, 11.5}},
	}
}

func TestFromReport(t *testing.T) {
	tbl := comparison()
	got := FromReport(tbl, MetricCells(tbl))

	assert.Equal(t, "Dupont Analysis (2022-Q4)", got.Title)
	assert.Equal(t, []string{"", "Raymond James Bank", "BankUnited, N.A."}, got.Headers)
	assert.Equal(t, [][]string{
		{"Return on Equity", "20.00%", "10.00%"},
		{"Equity Multiplier", "4.00", "11.50"},
	}, got.Rows)
}

func TestRenderTable(t *testing.T) {
	out := RenderTable(Table{
		Title:   "Banks",
		Headers: []string{"Alias", "Name"},
		Rows: [][]string{
			{"rj", "Raymond James Bank"},
			{"---"},
			{"svb", "Silicon Valley Bank"},
		},
	})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 8)
	assert.Contains(t, lines[0], "Banks")
	assert.True(t, strings.HasPrefix(lines[1], "╭"))
	assert.Contains(t, lines[2], "Alias")
	assert.Contains(t, lines[4], "Raymond James Bank")
	assert.True(t, strings.HasPrefix(lines[5], "├"))
	assert.True(t, strings.HasPrefix(lines[7], "╰"))

	// All bordered lines have the same display width.
	for _, l := range lines[1:] {
		assert.Equal(t, lipgloss.Width(lines[1]), lipgloss.Width(l), l)
	}
}

func TestRenderTable_Empty(t *testing.T) {
	assert.Empty(t, RenderTable(Table{}))
}

func TestRenderHorizontalBar(t *testing.T) {
	assert.Equal(t, "█████", RenderHorizontalBar(5, 10, 10))
	assert.Equal(t, "██████████", RenderHorizontalBar(-10, 10, 10))
	assert.Equal(t, "█", RenderHorizontalBar(0.001, 10, 10))
	assert.Equal(t, "", RenderHorizontalBar(0, 10, 10))
	assert.Equal(t, "", RenderHorizontalBar(5, 0, 10))
	assert.Equal(t, "██████████", RenderHorizontalBar(math.Inf(1), math.Inf(1), 10))
	assert.Equal(t, "█", RenderHorizontalBar(150, math.Inf(1), 10))
}

func TestRenderBarGroup(t *testing.T) {
	out := RenderBarGroup("Return on Equity", []string{"A", "Bank B"}, []float64{0.1, 0.2}, FormatRate, 10)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "Return on Equity")
	assert.Contains(t, lines[1], "█████ ")
	assert.Contains(t, lines[1], "10.00%")
	assert.Contains(t, lines[2], "██████████")
	assert.Contains(t, lines[2], "20.00%")
}

func TestRenderBars(t *testing.T) {
	tbl := comparison()
	out := RenderBars(tbl, MetricCells(tbl), 20)
	assert.Contains(t, out, "Return on Equity")
	assert.Contains(t, out, "Equity Multiplier")
	assert.Contains(t, out, "11.50")
}

func TestRenderOperating_NonFinite(t *testing.T) {
	tbl := model.Table{
		Title:   "Operating Income Analysis",
		Rows:    []string{"Total interest income", "Total interest expense"},
		Columns: []string{"Raymond James Bank"},
		Aliases: []string{"rj"},
		Values:  [][]float64{{math.Inf(1)}, {-40}},
	}

	out := RenderTable(FromReport(tbl, DollarCells))
	assert.Contains(t, out, "$Inf")
	assert.Contains(t, out, "-$40")

	bars := RenderBars(tbl, DollarCells, 10)
	assert.Contains(t, bars, "██████████ $Inf")
}

func TestRenderTree(t *testing.T) {
	out := RenderTree(model.DuPontNode{
		Metric: model.MetricReturnOnEquity,
		Value:  0.2,
		Children: []model.DuPontNode{
			{Metric: model.MetricEquityMultiplier, Value: 4},
			{Metric: model.MetricReturnOnAssets, Value: 0.05, Children: []model.DuPontNode{
				{Metric: model.MetricAssetTurnover, Value: 0.1},
				{Metric: model.MetricReturnOnSales, Value: 0.5},
			}},
		},
	})

	want := strings.Join([]string{
		"  Return on Equity  20.00%",
		"  ├── Equity Multiplier  4.00",
		"  └── Return on Assets  5.00%",
		"      ├── Asset Turnover  10.00%",
		"      └── Return on Sales  50.00%",
		"",
	}, "\n")
	assert.Equal(t, want, out)
}

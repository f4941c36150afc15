package components

import (
	"math"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/dupont/internal/tui/theme"
)

func init() {
	// Force TrueColor output so ANSI codes are generated in tests
	lipgloss.SetColorProfile(termenv.TrueColor)
}

func TestLayoutRow(t *testing.T) {
	tests := []struct {
		total, n int
		want     []int
	}{
		{100, 3, []int{34, 33, 33}},
		{10, 5, []int{2, 2, 2, 2, 2}},
		{7, 0, nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LayoutRow(tt.total, tt.n))
	}
}

func TestCardRowBackgroundFill(t *testing.T) {
	theme.SetActive("flexoki-dark")

	short := ContentCard("Short", "Content", 22)
	tall := ContentCard("Tall", "Line 1\nLine 2\nLine 3\nLine 4\nLine 5", 22)
	shortLines := lipgloss.Height(short)
	tallLines := lipgloss.Height(tall)
	require.Less(t, shortLines, tallLines)

	lines := strings.Split(CardRow([]string{tall, short}), "\n")
	require.Len(t, lines, tallLines)

	for i := shortLines; i < len(lines); i++ {
		assert.Contains(t, lines[i], "\x1b[", "padding line %d has no styling", i)
	}
}

func TestMetricCardRow_Width(t *testing.T) {
	row := MetricCardRow([]Metric{
		{Label: "Return on Equity", Value: "12.00%", Sign: 1},
		{Label: "Equity Multiplier", Value: "9.50"},
		{Label: "Return on Assets", Value: "-1.20%", Sign: -1},
	}, 90)
	for _, line := range strings.Split(row, "\n") {
		assert.Equal(t, 90, lipgloss.Width(line))
	}
}

func TestTabVisualWidthMatchesRender(t *testing.T) {
	for active := range Tabs {
		bar := RenderTabBar(active, 0)
		want := 0
		for i, tab := range Tabs {
			want += TabVisualWidth(tab, i == active)
		}
		want += len(Tabs) - 1
		assert.Equal(t, want, lipgloss.Width(bar), "active=%d", active)
	}
}

func TestTabIdxByKey(t *testing.T) {
	assert.Equal(t, 0, TabIdxByKey('d'))
	assert.Equal(t, 2, TabIdxByKey('o'))
	assert.Equal(t, -1, TabIdxByKey('z'))
}

func TestBarChart(t *testing.T) {
	out := BarChart(
		[]string{"Interest income", "Interest expense"},
		[]float64{100, -50},
		func(v float64) string { return "x" },
		40,
	)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)

	full := strings.Count(lines[0], "█")
	half := strings.Count(lines[1], "█")
	assert.Greater(t, full, 0)
	assert.InDelta(t, full/2, half, 1)
}

func TestBarChart_Mismatch(t *testing.T) {
	assert.Empty(t, BarChart([]string{"a"}, nil, nil, 40))
}

func TestBarLength(t *testing.T) {
	assert.Equal(t, 0, barLength(0, 10, 20))
	assert.Equal(t, 1, barLength(0.001, 10, 20))
	assert.Equal(t, 20, barLength(-10, 10, 20))
	assert.Equal(t, 0, barLength(5, 0, 20))
	assert.Equal(t, 20, barLength(math.Inf(1), math.Inf(1), 20))
	assert.Equal(t, 0, barLength(math.NaN(), 10, 20))
}

func TestRenderStatusBar_Width(t *testing.T) {
	bar := RenderStatusBar(100, Status{Period: "2022-Q4", Banks: 4})
	assert.Equal(t, 100, lipgloss.Width(bar))
	assert.Contains(t, bar, "2022-Q4")
}

package components

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/dupont/internal/tui/theme"
)

// BarChart renders one horizontal bar per label, scaled to the largest
// magnitude. Negative values are drawn in the negative color. format
// renders the value printed after each bar.
func BarChart(labels []string, values []float64, format func(float64) string, width int) string {
	if len(values) == 0 || len(labels) != len(values) {
		return ""
	}
	t := theme.Active

	labelW := 0
	peak := 0.0
	texts := make([]string, len(values))
	textW := 0
	for i, v := range values {
		labelW = max(labelW, lipgloss.Width(labels[i]))
		peak = math.Max(peak, math.Abs(v))
		texts[i] = format(v)
		textW = max(textW, lipgloss.Width(texts[i]))
	}
	labelW = min(labelW, width/3)

	barW := max(width-labelW-textW-3, 4)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	emptyStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	var b strings.Builder
	for i, v := range values {
		n := barLength(v, peak, barW)
		barStyle := lipgloss.NewStyle().Foreground(t.Signed(v)).Background(t.Surface)

		label := truncate(labels[i], labelW)
		b.WriteString(labelStyle.Render(label + strings.Repeat(" ", labelW-lipgloss.Width(label))))
		b.WriteString(spaceStyle.Render(" "))
		b.WriteString(barStyle.Render(strings.Repeat("█", n)))
		b.WriteString(emptyStyle.Render(strings.Repeat("·", barW-n)))
		b.WriteString(spaceStyle.Render(" "))
		b.WriteString(valueStyle.Render(strings.Repeat(" ", textW-lipgloss.Width(texts[i])) + texts[i]))
		if i < len(values)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// barLength scales |v| against peak. Any nonzero value gets at least one cell.
func barLength(v, peak float64, width int) int {
	if peak <= 0 || v == 0 || math.IsNaN(v) {
		return 0
	}
	if math.IsInf(v, 0) {
		return width
	}
	n := int(math.Round(math.Abs(v) / peak * float64(width)))
	return min(max(n, 1), width)
}

func truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/dupont/internal/cli"
	"github.com/theirongolddev/dupont/internal/model"
	"github.com/theirongolddev/dupont/internal/tui/components"
	"github.com/theirongolddev/dupont/internal/tui/theme"
)

const maxGridColumn = 24

func (a App) renderCompareTab(cw int) string {
	tbl := a.snap.DuPont
	format := cli.MetricCells(tbl)

	row := clamp(a.metricCursor, len(tbl.Rows))
	grid := renderGrid(tbl, format, row, -1, components.CardInnerWidth(cw))

	metric := model.Metric(tbl.Rows[row])
	bars := components.BarChart(tbl.Columns, tbl.Values[row], func(v float64) string {
		return cli.FormatMetric(metric, v)
	}, components.CardInnerWidth(cw))

	title := tbl.Title
	if tbl.Period != "" {
		title += " · " + tbl.Period
	}
	return components.ContentCard(title, grid, cw) + "\n" +
		components.ContentCard(string(metric), bars, cw)
}

// renderGrid draws a report table with row labels on the left. hlRow and
// hlCol highlight one row or column; pass -1 for none.
func renderGrid(tbl model.Table, format cli.CellFormatter, hlRow, hlCol, width int) string {
	t := theme.Active
	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	cellStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	hlStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceHover).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	cells := make([][]string, len(tbl.Rows))
	labelW := 0
	for i, label := range tbl.Rows {
		labelW = max(labelW, lipgloss.Width(label))
		cells[i] = make([]string, len(tbl.Columns))
		for j, v := range tbl.Values[i] {
			cells[i][j] = format(i, v)
		}
	}

	colW := make([]int, len(tbl.Columns))
	headers := make([]string, len(tbl.Columns))
	for j, h := range tbl.Columns {
		headers[j] = truncStr(h, maxGridColumn)
		colW[j] = lipgloss.Width(headers[j])
		for i := range tbl.Rows {
			colW[j] = max(colW[j], lipgloss.Width(cells[i][j]))
		}
	}

	// Drop trailing columns that do not fit.
	used := labelW
	shown := 0
	for j := range colW {
		if used+2+colW[j] > width {
			break
		}
		used += 2 + colW[j]
		shown++
	}

	var b strings.Builder
	b.WriteString(spaceStyle.Render(strings.Repeat(" ", labelW)))
	for j := 0; j < shown; j++ {
		b.WriteString(spaceStyle.Render("  "))
		b.WriteString(headerStyle.Render(padLeft(headers[j], colW[j])))
	}
	for i, label := range tbl.Rows {
		b.WriteString("\n")
		ls := labelStyle
		if i == hlRow {
			ls = hlStyle
		}
		b.WriteString(ls.Render(label + strings.Repeat(" ", labelW-lipgloss.Width(label))))
		for j := 0; j < shown; j++ {
			cs := cellStyle
			if i == hlRow || j == hlCol {
				cs = hlStyle
			}
			b.WriteString(spaceStyle.Render("  "))
			b.WriteString(cs.Render(padLeft(cells[i][j], colW[j])))
		}
	}
	if shown < len(tbl.Columns) {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).
			Render(truncStr(hiddenNote(len(tbl.Columns)-shown), width)))
	}
	return b.String()
}

func hiddenNote(n int) string {
	if n == 1 {
		return "1 more bank does not fit; widen the terminal or use dupont compare"
	}
	return cli.FormatNumber(int64(n)) + " more banks do not fit; widen the terminal or use dupont compare"
}

func padLeft(s string, w int) string {
	if gap := w - lipgloss.Width(s); gap > 0 {
		return strings.Repeat(" ", gap) + s
	}
	return s
}

package cli

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/dupont/internal/model"
)

// Theme colors (Flexoki Dark)
var (
	ColorBorder    = lipgloss.Color("#282726")
	ColorTextDim   = lipgloss.Color("#575653")
	ColorTextMuted = lipgloss.Color("#6F6E69")
	ColorText      = lipgloss.Color("#FFFCF0")
	ColorAccent    = lipgloss.Color("#3AA99F")
	ColorGreen     = lipgloss.Color("#879A39")
	ColorOrange    = lipgloss.Color("#DA702C")
	ColorRed       = lipgloss.Color("#D14D41")
	ColorBlue      = lipgloss.Color("#4385BE")
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Align(lipgloss.Center)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	valueStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	mutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	positiveStyle = lipgloss.NewStyle().
			Foreground(ColorBlue)

	negativeStyle = lipgloss.NewStyle().
			Foreground(ColorRed)

	warnStyle = lipgloss.NewStyle().
			Foreground(ColorOrange)

	dimStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim)
)

// Table represents a bordered text table for CLI output.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	Widths  []int // optional column widths, auto-calculated if nil
}

// CellFormatter formats the value at row i of a report table.
type CellFormatter func(row int, v float64) string

// MetricCells formats DuPont table rows by their metric.
func MetricCells(t model.Table) CellFormatter {
	return func(i int, v float64) string {
		return FormatMetric(model.Metric(t.Rows[i]), v)
	}
}

// DollarCells formats every cell as a dollar amount.
func DollarCells(_ int, v float64) string {
	return FormatDollars(v)
}

// FromReport converts a report table into a renderable one, with the row
// labels in the first column and one column per bank.
func FromReport(t model.Table, format CellFormatter) Table {
	title := t.Title
	if t.Period != "" {
		title = fmt.Sprintf("%s (%s)", t.Title, t.Period)
	}
	out := Table{
		Title:   title,
		Headers: append([]string{""}, t.Columns...),
	}
	for i, label := range t.Rows {
		row := make([]string, 0, len(t.Columns)+1)
		row = append(row, label)
		for _, v := range t.Values[i] {
			row = append(row, format(i, v))
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}

// RenderTitle renders a centered title bar in a bordered box.
func RenderTitle(title string) string {
	width := 55
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(width).
		Align(lipgloss.Center).
		Padding(0, 1)

	return border.Render(titleStyle.Render(title))
}

// RenderWarning renders a one-line warning.
func RenderWarning(msg string) string {
	return "  " + warnStyle.Render("! "+msg)
}

// RenderTable renders a bordered table with headers and rows.
func RenderTable(t Table) string {
	if len(t.Rows) == 0 && len(t.Headers) == 0 {
		return ""
	}

	// Calculate column widths
	numCols := len(t.Headers)
	if numCols == 0 && len(t.Rows) > 0 {
		numCols = len(t.Rows[0])
	}

	widths := make([]int, numCols)
	if t.Widths != nil {
		copy(widths, t.Widths)
	} else {
		for i, h := range t.Headers {
			widths[i] = max(widths[i], lipgloss.Width(h))
		}
		for _, row := range t.Rows {
			for i, cell := range row {
				if i < numCols {
					widths[i] = max(widths[i], lipgloss.Width(cell))
				}
			}
		}
	}

	var b strings.Builder

	// Title above table if present
	if t.Title != "" {
		b.WriteString("  ")
		b.WriteString(headerStyle.Render(t.Title))
		b.WriteString("\n")
	}

	rule := func(left, mid, right string) {
		b.WriteString(dimStyle.Render(left))
		for i, w := range widths {
			b.WriteString(dimStyle.Render(strings.Repeat("─", w+2)))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render(mid))
			}
		}
		b.WriteString(dimStyle.Render(right))
		b.WriteString("\n")
	}

	rule("╭", "┬", "╮")

	// Header row
	if len(t.Headers) > 0 {
		b.WriteString(dimStyle.Render("│"))
		for i, h := range t.Headers {
			b.WriteString(headerStyle.Render(" " + pad(h, widths[i], i > 0) + " "))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render("│"))
			}
		}
		b.WriteString(dimStyle.Render("│"))
		b.WriteString("\n")
		rule("├", "┼", "┤")
	}

	// Data rows
	for _, row := range t.Rows {
		if len(row) == 1 && row[0] == "---" {
			rule("├", "┼", "┤")
			continue
		}

		b.WriteString(dimStyle.Render("│"))
		for i := 0; i < numCols; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			// Right-align numeric columns (all except first)
			b.WriteString(valueStyle.Render(" " + pad(cell, widths[i], i > 0) + " "))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render("│"))
			}
		}
		b.WriteString(dimStyle.Render("│"))
		b.WriteString("\n")
	}

	rule("╰", "┴", "╯")
	return b.String()
}

func pad(s string, width int, right bool) string {
	gap := width - lipgloss.Width(s)
	if gap <= 0 {
		return s
	}
	if right {
		return strings.Repeat(" ", gap) + s
	}
	return s + strings.Repeat(" ", gap)
}

// RenderProgressBar renders a simple text progress bar.
func RenderProgressBar(current, total int, width int) string {
	if total <= 0 {
		return ""
	}

	pct := float64(current) / float64(total)
	if pct > 1 {
		pct = 1
	}

	filled := int(pct * float64(width))
	if filled > width {
		filled = width
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("[%s] %s/%s",
		mutedStyle.Render(bar),
		FormatNumber(int64(current)),
		FormatNumber(int64(total)),
	)
}

// RenderHorizontalBar renders the bar for one value scaled against maxValue.
// Negative values draw their magnitude in the negative color.
func RenderHorizontalBar(value, maxValue float64, maxWidth int) string {
	if maxValue <= 0 || math.IsNaN(value) {
		return ""
	}
	barLen := maxWidth
	if !math.IsInf(value, 0) {
		barLen = int(math.Abs(value) / maxValue * float64(maxWidth))
	}
	barLen = min(max(barLen, 0), maxWidth)
	if barLen == 0 && value != 0 {
		barLen = 1
	}
	bar := strings.Repeat("█", barLen)
	if value < 0 {
		return negativeStyle.Render(bar)
	}
	return positiveStyle.Render(bar)
}

// RenderBarGroup renders one titled panel of horizontal bars, one per label.
func RenderBarGroup(title string, labels []string, values []float64, format func(float64) string, barWidth int) string {
	var b strings.Builder
	b.WriteString("  ")
	b.WriteString(headerStyle.Render(title))
	b.WriteString("\n")

	labelWidth := 0
	var maxAbs float64
	for i, l := range labels {
		labelWidth = max(labelWidth, lipgloss.Width(l))
		if i < len(values) {
			maxAbs = max(maxAbs, math.Abs(values[i]))
		}
	}

	for i, l := range labels {
		if i >= len(values) {
			break
		}
		bar := RenderHorizontalBar(values[i], maxAbs, barWidth)
		fmt.Fprintf(&b, "  %s %s %s\n",
			mutedStyle.Render(pad(l, labelWidth, false)),
			bar+strings.Repeat(" ", barWidth-lipgloss.Width(bar)),
			valueStyle.Render(format(values[i])),
		)
	}
	return b.String()
}

// RenderBars renders a bar panel per table row with the banks as bars,
// the terminal version of a grid of horizontal bar subplots.
func RenderBars(t model.Table, format CellFormatter, barWidth int) string {
	var b strings.Builder
	for i, label := range t.Rows {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(RenderBarGroup(label, t.Columns, t.Values[i], func(v float64) string {
			return format(i, v)
		}, barWidth))
	}
	return b.String()
}

// RenderTree renders the DuPont tree with box-drawing connectors.
func RenderTree(root model.DuPontNode) string {
	var b strings.Builder
	fmt.Fprintf(&b, "  %s  %s\n", headerStyle.Render(string(root.Metric)), valueStyle.Render(FormatMetric(root.Metric, root.Value)))
	renderChildren(&b, root.Children, "  ")
	return b.String()
}

func renderChildren(b *strings.Builder, nodes []model.DuPontNode, prefix string) {
	for i, n := range nodes {
		branch, next := "├── ", "│   "
		if i == len(nodes)-1 {
			branch, next = "└── ", "    "
		}
		fmt.Fprintf(b, "%s%s%s  %s\n",
			prefix,
			dimStyle.Render(branch),
			string(n.Metric),
			valueStyle.Render(FormatMetric(n.Metric, n.Value)),
		)
		renderChildren(b, n.Children, prefix+next)
	}
}

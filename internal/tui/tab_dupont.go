package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/dupont/internal/cli"
	"github.com/theirongolddev/dupont/internal/model"
	"github.com/theirongolddev/dupont/internal/report"
	"github.com/theirongolddev/dupont/internal/tui/components"
	"github.com/theirongolddev/dupont/internal/tui/theme"
)

// cardMetrics is the headline row of the DuPont tab.
var cardMetrics = []model.Metric{
	model.MetricReturnOnEquity,
	model.MetricEquityMultiplier,
	model.MetricReturnOnAssets,
	model.MetricAssetTurnover,
	model.MetricReturnOnSales,
	model.MetricOperatingIncome,
}

func (a App) renderDuPontTab(cw int) string {
	br := a.snap.Banks[a.bankCursor]

	metrics := make([]components.Metric, len(cardMetrics))
	for i, m := range cardMetrics {
		v := br.Value(m)
		metrics[i] = components.Metric{Label: string(m), Value: cli.FormatMetric(m, v)}
		if m != model.MetricEquityMultiplier && v < 0 {
			metrics[i].Sign = -1
		}
	}

	var rows []string
	if a.isCompactLayout() {
		rows = append(rows,
			components.MetricCardRow(metrics[:3], cw),
			components.MetricCardRow(metrics[3:], cw))
	} else {
		rows = append(rows, components.MetricCardRow(metrics, cw))
	}

	title := br.Name
	if br.Period != "" {
		title = fmt.Sprintf("%s · %s", br.Name, br.Period)
	}
	tree := renderTree(report.Tree(br))

	if a.isCompactLayout() {
		rows = append(rows,
			components.ContentCard(title, tree, cw),
			components.ContentCard("Banks", a.renderBankList(components.CardInnerWidth(cw)), cw))
	} else {
		widths := components.LayoutRow(cw, 3)
		listW := widths[0]
		treeW := widths[1] + widths[2]
		rows = append(rows, components.CardRow([]string{
			components.ContentCard("Banks", a.renderBankList(components.CardInnerWidth(listW)), listW),
			components.ContentCard(title, tree, treeW),
		}))
	}

	if notes := a.renderNotes(components.CardInnerWidth(cw)); notes != "" {
		rows = append(rows, components.ContentCard("Warnings", notes, cw))
	}
	return strings.Join(rows, "\n")
}

func (a App) renderBankList(width int) string {
	t := theme.Active
	nameStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	aliasStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	selStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceHover).Bold(true)

	lines := make([]string, len(a.snap.Banks))
	for i, br := range a.snap.Banks {
		alias := " " + br.Alias
		name := truncStr(br.Name, max(width-lipgloss.Width(alias)-2, 8))
		if i == a.bankCursor {
			lines[i] = selStyle.Render("▸ " + name + alias)
			continue
		}
		lines[i] = nameStyle.Render("  "+name) + aliasStyle.Render(alias)
	}
	return strings.Join(lines, "\n")
}

// renderNotes lists unreadable files and ambiguous lookups.
func (a App) renderNotes(width int) string {
	t := theme.Active
	warnStyle := lipgloss.NewStyle().Foreground(t.Warning).Background(t.Surface)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	var lines []string
	for _, f := range a.snap.Failures {
		lines = append(lines, warnStyle.Render("! ")+mutedStyle.Render(truncStr(f.Error(), width-2)))
	}
	for _, amb := range a.snap.Ambiguous {
		lines = append(lines, warnStyle.Render("? ")+mutedStyle.Render(truncStr("ambiguous "+amb, width-2)))
	}
	return strings.Join(lines, "\n")
}

// renderTree draws the DuPont tree with themed labels and signed values.
func renderTree(root model.DuPontNode) string {
	var b strings.Builder
	b.WriteString(treeNode(root))
	writeTreeChildren(&b, root.Children, "")
	return b.String()
}

func writeTreeChildren(b *strings.Builder, nodes []model.DuPontNode, prefix string) {
	branchStyle := lipgloss.NewStyle().Foreground(theme.Active.TextDim).Background(theme.Active.Surface)
	for i, n := range nodes {
		branch, next := "├── ", "│   "
		if i == len(nodes)-1 {
			branch, next = "└── ", "    "
		}
		b.WriteString("\n")
		b.WriteString(branchStyle.Render(prefix + branch))
		b.WriteString(treeNode(n))
		writeTreeChildren(b, n.Children, prefix+next)
	}
}

func treeNode(n model.DuPontNode) string {
	t := theme.Active
	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.Signed(n.Value)).Background(t.Surface).Bold(true)
	return labelStyle.Render(string(n.Metric)+" ") + valueStyle.Render(cli.FormatMetric(n.Metric, n.Value))
}

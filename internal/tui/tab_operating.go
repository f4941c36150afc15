package tui

import (
	"fmt"

	"github.com/theirongolddev/dupont/internal/cli"
	"github.com/theirongolddev/dupont/internal/model"
	"github.com/theirongolddev/dupont/internal/tui/components"
)

func (a App) renderOperatingTab(cw int) string {
	tbl := a.snap.Operating
	grid := renderGrid(tbl, cli.DollarCells, -1, a.bankCursor, components.CardInnerWidth(cw))

	ob := a.snap.Breakdown[a.bankCursor]
	labels := make([]string, 0, len(model.OperatingLines)+1)
	values := make([]float64, 0, len(model.OperatingLines)+1)
	for _, l := range model.OperatingLines {
		labels = append(labels, string(l))
		values = append(values, ob.Value(l))
	}
	labels = append(labels, string(model.MetricOperatingIncome))
	values = append(values, ob.Total())

	bars := components.BarChart(labels, values, cli.FormatDollars, components.CardInnerWidth(cw))

	title := tbl.Title
	if tbl.Period != "" {
		title += " · " + tbl.Period
	}
	return components.ContentCard(title, grid, cw) + "\n" +
		components.ContentCard(fmt.Sprintf("%s (%s)", ob.Name, ob.Alias), bars, cw)
}

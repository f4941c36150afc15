package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/theirongolddev/dupont/internal/model"
)

// WriteCSV writes both tables as CSV sections separated by a blank line.
// Each section starts with a header row of the table title and bank names.
// Values are written unformatted so they stay machine-readable.
func WriteCSV(w io.Writer, r Report) error {
	cw := csv.NewWriter(w)
	writeCSVTable(cw, r.DuPont)
	_ = cw.Write(nil)
	writeCSVTable(cw, r.Operating)
	cw.Flush()
	return cw.Error()
}

func writeCSVTable(cw *csv.Writer, t model.Table) {
	title := t.Title
	if t.Period != "" {
		title += " (" + t.Period + ")"
	}
	_ = cw.Write(append([]string{title}, t.Columns...))
	for i, label := range t.Rows {
		rec := make([]string, 0, len(t.Columns)+1)
		rec = append(rec, label)
		for _, v := range t.Values[i] {
			rec = append(rec, strconv.FormatFloat(v, 'g', -1, 64))
		}
		_ = cw.Write(rec)
	}
}

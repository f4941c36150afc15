package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/theirongolddev/dupont/internal/model"
)

// Sheet names in the exported workbook.
const (
	SheetDuPont    = "DuPont"
	SheetOperating = "Operating Income"
)

var dollarFmt = `"$"#,##0;-"$"#,##0`

// WriteXLSX writes a workbook with one sheet per table. Values are stored
// as numbers with percentage, multiple or currency number formats.
func WriteXLSX(w io.Writer, r Report) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), SheetDuPont); err != nil {
		return err
	}
	if _, err := f.NewSheet(SheetOperating); err != nil {
		return err
	}

	styles, err := newStyles(f)
	if err != nil {
		return err
	}
	if err := writeSheet(f, SheetDuPont, r.DuPont, styles); err != nil {
		return err
	}
	if err := writeSheet(f, SheetOperating, r.Operating, styles); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing xlsx: %w", err)
	}
	return nil
}

type sheetStyles struct {
	header int
	values map[kind]int
}

func newStyles(f *excelize.File) (sheetStyles, error) {
	s := sheetStyles{values: make(map[kind]int)}
	var err error
	if s.header, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err != nil {
		return s, err
	}
	if s.values[kindRate], err = f.NewStyle(&excelize.Style{NumFmt: 10}); err != nil { // 0.00%
		return s, err
	}
	if s.values[kindMultiple], err = f.NewStyle(&excelize.Style{NumFmt: 2}); err != nil { // 0.00
		return s, err
	}
	if s.values[kindDollars], err = f.NewStyle(&excelize.Style{CustomNumFmt: &dollarFmt}); err != nil {
		return s, err
	}
	return s, nil
}

// writeSheet lays a table out with a title row, a header row of bank
// names and one row per metric.
func writeSheet(f *excelize.File, sheet string, t model.Table, s sheetStyles) error {
	title := t.Title
	if t.Period != "" {
		title += " (" + t.Period + ")"
	}
	if err := f.SetCellValue(sheet, "A1", title); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", "A1", s.header); err != nil {
		return err
	}

	for j, name := range t.Columns {
		cell, _ := excelize.CoordinatesToCellName(j+2, 2)
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, cell, s.header); err != nil {
			return err
		}
	}

	for i, label := range t.Rows {
		row := i + 3
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetCellValue(sheet, cell, label); err != nil {
			return err
		}
		style := s.values[rowKind(t, i)]
		for j, v := range t.Values[i] {
			cell, _ := excelize.CoordinatesToCellName(j+2, row)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
			if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
				return err
			}
		}
	}

	labelWidth := 12.0
	for _, label := range t.Rows {
		labelWidth = max(labelWidth, float64(len(label)+2))
	}
	if err := f.SetColWidth(sheet, "A", "A", labelWidth); err != nil {
		return err
	}
	for j, name := range t.Columns {
		col, _ := excelize.ColumnNumberToName(j + 2)
		if err := f.SetColWidth(sheet, col, col, max(14, float64(len(name)+2))); err != nil {
			return err
		}
	}
	return nil
}

// Package export writes report tables to spreadsheet, CSV and HTML files.
package export

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/theirongolddev/dupont/internal/model"
)

// Supported formats.
const (
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"
	FormatHTML = "html"
)

// ErrUnknownFormat is returned for formats other than xlsx, csv and html.
var ErrUnknownFormat = errors.New("export: unknown format")

// Report is the pair of tables an export carries.
type Report struct {
	DuPont    model.Table
	Operating model.Table
}

// Write dispatches to the writer for format.
func Write(w io.Writer, format string, r Report) error {
	switch strings.ToLower(format) {
	case FormatXLSX:
		return WriteXLSX(w, r)
	case FormatCSV:
		return WriteCSV(w, r)
	case FormatHTML:
		return WriteHTML(w, r)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// FormatFromPath guesses the format from a file extension.
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return FormatXLSX
	case ".csv":
		return FormatCSV
	case ".html", ".htm":
		return FormatHTML
	}
	return ""
}

// kind says how a row's values are displayed.
type kind int

const (
	kindRate kind = iota
	kindMultiple
	kindDollars
)

func rowKind(t model.Table, i int) kind {
	m := model.Metric(t.Rows[i])
	switch {
	case t.Title == model.OperatingTitle, m == model.MetricOperatingIncome:
		return kindDollars
	case m.IsRate():
		return kindRate
	}
	return kindMultiple
}

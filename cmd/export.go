package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/dupont/internal/export"
	"github.com/theirongolddev/dupont/internal/report"
)

var (
	flagExportFormat string
	flagExportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export [alias...]",
	Short: "Write the comparison and operating tables to xlsx, csv or html",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&flagExportFormat, "format", "f", "", "Output format: xlsx, csv or html (default from config or --out)")
	exportCmd.Flags().StringVarP(&flagExportOut, "out", "o", "", "Output file (default dupont.<format> in the export dir)")
	rootCmd.AddCommand(exportCmd)
}

// exportTarget resolves the format and path: an explicit --format wins,
// then the --out extension, then the configured default.
func exportTarget() (format, path string) {
	format = flagExportFormat
	if format == "" && flagExportOut != "" {
		format = export.FormatFromPath(flagExportOut)
	}
	if format == "" {
		format = appCfg.Export.Format
	}
	if format == "" {
		format = export.FormatXLSX
	}

	path = flagExportOut
	if path == "" {
		path = filepath.Join(appCfg.Export.Dir, "dupont."+format)
	}
	return format, path
}

func runExport(_ *cobra.Command, args []string) error {
	format, path := exportTarget()

	banks, err := selectedBanks(args...)
	if err != nil {
		return err
	}
	var r export.Report
	if r.DuPont, err = report.Compare(banks); err != nil {
		return err
	}
	if r.Operating, err = report.CompareOperating(banks); err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("creating export dir: %w", err)
		}
	}
	f, err := os.Create(path) //nolint:gosec // output path is chosen by the local user
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := export.Write(f, format, r); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	slog.Debug("export written", slog.String("path", path), slog.String("format", format), slog.Int("banks", len(banks)))
	if !flagQuiet {
		fmt.Printf("  Wrote %s (%d banks)\n", path, len(banks))
	}
	return nil
}

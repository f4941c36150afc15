package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/dupont/internal/cli"
	"github.com/theirongolddev/dupont/internal/report"
)

const barWidth = 30

var compareCmd = &cobra.Command{
	Use:   "compare [alias...]",
	Short: "Compare DuPont ratios across banks (default command)",
	RunE:  runCompare,
}

func init() {
	compareCmd.Flags().Bool("no-bars", false, "Print the table without bar panels")
	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	banks, err := selectedBanks(args...)
	if err != nil {
		return err
	}
	tbl, err := report.Compare(banks)
	if err != nil {
		return err
	}

	format := cli.MetricCells(tbl)
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.FromReport(tbl, format)))

	if noBars, _ := cmd.Flags().GetBool("no-bars"); !noBars {
		fmt.Println()
		fmt.Print(cli.RenderBars(tbl, format, barWidth))
	}
	return nil
}

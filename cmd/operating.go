package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/dupont/internal/cli"
	"github.com/theirongolddev/dupont/internal/report"
)

var operatingCmd = &cobra.Command{
	Use:   "operating [alias...]",
	Short: "Break operating income down into its components",
	RunE:  runOperating,
}

func init() {
	operatingCmd.Flags().Bool("no-bars", false, "Print the table without bar panels")
	rootCmd.AddCommand(operatingCmd)
}

func runOperating(cmd *cobra.Command, args []string) error {
	banks, err := selectedBanks(args...)
	if err != nil {
		return err
	}
	tbl, err := report.CompareOperating(banks)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.FromReport(tbl, cli.DollarCells)))

	if noBars, _ := cmd.Flags().GetBool("no-bars"); !noBars {
		fmt.Println()
		fmt.Print(cli.RenderBars(tbl, cli.DollarCells, barWidth))
	}
	return nil
}

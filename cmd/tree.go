package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/dupont/internal/cli"
	"github.com/theirongolddev/dupont/internal/model"
	"github.com/theirongolddev/dupont/internal/report"
)

var treeCmd = &cobra.Command{
	Use:   "tree [alias...]",
	Short: "Show the DuPont tree of each bank",
	RunE:  runTree,
}

func init() {
	rootCmd.AddCommand(treeCmd)
}

func runTree(_ *cobra.Command, args []string) error {
	banks, err := selectedBanks(args...)
	if err != nil {
		return err
	}
	all, err := report.BuildAll(banks)
	if err != nil {
		return err
	}

	for _, br := range all {
		title := fmt.Sprintf("%s (%s)", br.Name, br.Alias)
		if br.Period != "" {
			title += " · " + br.Period
		}
		fmt.Println()
		fmt.Println(cli.RenderTitle(title))
		fmt.Print(cli.RenderTree(report.Tree(br)))
		fmt.Printf("  %s  %s\n", model.MetricOperatingIncome, cli.FormatDollars(br.OperatingIncome))
	}
	return nil
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/dupont/internal/cli"
)

var banksCmd = &cobra.Command{
	Use:   "banks",
	Short: "List the banks that can be compared",
	RunE:  runBanks,
}

func init() {
	rootCmd.AddCommand(banksCmd)
}

func runBanks(_ *cobra.Command, _ []string) error {
	reg, res, err := loadData()
	if err != nil {
		return err
	}

	t := cli.Table{
		Title:   fmt.Sprintf("Banks (%d)", reg.Len()),
		Headers: []string{"Alias", "Name", "Period", "Records", "File"},
	}
	for _, alias := range reg.Aliases() {
		b, err := reg.Get(alias)
		if err != nil {
			return err
		}
		name, err := b.DisplayName()
		if err != nil {
			name = "?"
		}
		period := b.Period
		if period == "" {
			period = "-"
		}
		t.Rows = append(t.Rows, []string{
			alias,
			name,
			period,
			cli.FormatNumber(int64(b.Records.Len())),
			b.Records.Path,
		})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(t))
	if res.CachedFiles > 0 {
		fmt.Printf("  Parse cache: %s files (%d hits this run)\n",
			cli.FormatNumber(int64(res.CachedFiles)), res.CacheHits)
	}
	return nil
}

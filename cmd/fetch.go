package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/dupont/internal/cli"
	"github.com/theirongolddev/dupont/internal/fetch"
)

var (
	flagFetchDir         string
	flagFetchConcurrency int
)

var fetchCmd = &cobra.Command{
	Use:   "fetch URL...",
	Short: "Download call report SDF files into the data directory",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runFetch,
}

func init() {
	fetchCmd.Flags().StringVar(&flagFetchDir, "dir", "", "Target directory (default: the data directory)")
	fetchCmd.Flags().IntVar(&flagFetchConcurrency, "concurrency", 4, "Parallel downloads")
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(_ *cobra.Command, urls []string) error {
	dir := flagFetchDir
	if dir == "" {
		dir = appCfg.General.DataDir
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	client := fetch.NewClient(
		fetch.WithConcurrency(flagFetchConcurrency),
		fetch.WithLogger(slog.Default()),
	)
	results, err := client.DownloadAll(ctx, urls, dir)
	if err != nil {
		return err
	}

	t := cli.Table{
		Title:   fmt.Sprintf("Downloaded to %s", dir),
		Headers: []string{"File", "Records", "Size"},
	}
	for _, r := range results {
		t.Rows = append(t.Rows, []string{
			r.Path,
			cli.FormatNumber(int64(r.Records)),
			cli.FormatNumber(r.Bytes),
		})
	}
	fmt.Println()
	fmt.Print(cli.RenderTable(t))
	return nil
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/dupont/internal/callreport"
	"github.com/theirongolddev/dupont/internal/config"
	"github.com/theirongolddev/dupont/internal/tui"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	files, _ := callreport.ScanDir(appCfg.General.DataDir)

	vals := tui.SetupValuesFrom(appCfg)
	if err := tui.NewSetupForm(&vals, len(files)).Run(); err != nil {
		return fmt.Errorf("setup: %w", err)
	}

	// Start from the file, not appCfg, so one-off flags are not persisted.
	cfg, err := config.Load()
	if err != nil {
		cfg = config.DefaultConfig()
	}
	vals.Apply(&cfg)
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.Path())
	fmt.Println("  Run `dupont setup` anytime to reconfigure.")
	fmt.Println()
	return nil
}

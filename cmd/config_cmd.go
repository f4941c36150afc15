package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/dupont/internal/config"
	"github.com/theirongolddev/dupont/internal/pipeline"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg := appCfg

	fmt.Printf("  Config file: %s\n", config.Path())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Data directory: %s\n", cfg.General.DataDir)
	fmt.Printf("    Strict lookups: %v\n", cfg.General.StrictLookups)
	if cfg.General.UseCache {
		fmt.Printf("    Parse cache:    %s\n", pipeline.CachePath())
	} else {
		fmt.Println("    Parse cache:    disabled")
	}
	fmt.Println()

	fmt.Println("  [Banks]")
	if len(cfg.Banks) == 0 {
		fmt.Println("    none pinned, all files in the data directory are loaded")
	}
	for _, b := range cfg.Banks {
		fmt.Printf("    %-12s %s\n", b.Alias, b.Path)
	}
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [Export]")
	fmt.Printf("    Format: %s\n", cfg.Export.Format)
	if cfg.Export.Dir != "" {
		fmt.Printf("    Dir:    %s\n", cfg.Export.Dir)
	}
	fmt.Println()

	fmt.Println("  [Serve]")
	fmt.Printf("    Address:  %s\n", cfg.Serve.Addr)
	fmt.Printf("    Interval: %s\n", cfg.Serve.RefreshInterval())
	fmt.Println()

	fmt.Println("  Run `dupont setup` to reconfigure.")
	return nil
}

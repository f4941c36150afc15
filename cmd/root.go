// Package cmd implements the dupont CLI commands.
package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/dupont/internal/callreport"
	"github.com/theirongolddev/dupont/internal/cli"
	"github.com/theirongolddev/dupont/internal/config"
	"github.com/theirongolddev/dupont/internal/pipeline"
	"github.com/theirongolddev/dupont/internal/report"
)

var (
	flagDataDir string
	flagBanks   []string
	flagOnly    []string
	flagStrict  bool
	flagNoCache bool
	flagQuiet   bool
	flagVerbose bool
)

// appCfg is the configuration loaded before every command runs.
var appCfg = config.DefaultConfig()

var rootCmd = &cobra.Command{
	Use:   "dupont",
	Short: "DuPont analysis of bank call reports",
	Long: "Compare banks through the DuPont decomposition of return on equity,\n" +
		"computed from FFIEC Call Report SDF extracts.",
	SilenceUsage:      true,
	PersistentPreRunE: initRuntime,
	RunE:              runCompare,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flagDataDir, "data-dir", "d", "", "Directory scanned for SDF files (default from config)")
	pf.StringArrayVarP(&flagBanks, "bank", "b", nil, "Load a bank explicitly as alias=path (repeatable)")
	pf.StringSliceVar(&flagOnly, "only", nil, "Compare only these aliases, in this order")
	pf.BoolVar(&flagStrict, "strict", false, "Fail when a label matches rows with different values")
	pf.BoolVar(&flagNoCache, "no-cache", false, "Skip the SQLite parse cache, reparse everything")
	pf.BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "Log debug diagnostics")

	rootCmd.Flags().Bool("no-bars", false, "Print the table without bar panels")
}

// initRuntime sets up logging and merges the config file with the flags.
// Flags given on the command line win over the file.
func initRuntime(cmd *cobra.Command, _ []string) error {
	level := slog.LevelInfo
	switch {
	case flagVerbose:
		level = slog.LevelDebug
	case flagQuiet:
		level = slog.LevelWarn
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg, err := config.Load()
	if err != nil {
		if cmd.Name() != "setup" {
			return err
		}
		cfg = config.DefaultConfig()
	}
	appCfg = applyFlags(cmd, cfg)
	return nil
}

// applyFlags overlays explicitly set flags onto cfg.
func applyFlags(cmd *cobra.Command, cfg config.Config) config.Config {
	flags := cmd.Flags()
	if flags.Changed("data-dir") {
		cfg.General.DataDir = flagDataDir
	}
	if flags.Changed("strict") {
		cfg.General.StrictLookups = flagStrict
	}
	if flags.Changed("no-cache") {
		cfg.General.UseCache = !flagNoCache
	}
	return cfg
}

// bankSpecs resolves the bank list: configured banks, then --bank flags
// (replacing a configured bank of the same alias), then files discovered
// in the data directory.
func bankSpecs(cfg config.Config) ([]pipeline.BankSpec, error) {
	configured := make([]pipeline.BankSpec, 0, len(cfg.Banks)+len(flagBanks))
	index := make(map[string]int)
	for _, b := range cfg.Banks {
		index[b.Alias] = len(configured)
		configured = append(configured, pipeline.BankSpec{Alias: b.Alias, Path: b.Path})
	}
	for _, kv := range flagBanks {
		spec, err := parseBankFlag(kv)
		if err != nil {
			return nil, err
		}
		if i, ok := index[spec.Alias]; ok {
			configured[i] = spec
			continue
		}
		index[spec.Alias] = len(configured)
		configured = append(configured, spec)
	}
	return pipeline.Specs(cfg.General.DataDir, configured)
}

func parseBankFlag(kv string) (pipeline.BankSpec, error) {
	alias, path, ok := strings.Cut(kv, "=")
	alias, path = strings.TrimSpace(alias), strings.TrimSpace(path)
	if !ok || alias == "" || path == "" {
		return pipeline.BankSpec{}, fmt.Errorf("invalid --bank %q: want alias=path", kv)
	}
	return pipeline.BankSpec{Alias: alias, Path: path}, nil
}

// lookupPolicy applies --strict and logs each ambiguous label once.
func lookupPolicy(cfg config.Config) callreport.Policy {
	var (
		mu   sync.Mutex
		seen = make(map[string]bool)
	)
	return callreport.Policy{
		Strict: cfg.General.StrictLookups,
		OnAmbiguous: func(path string, m callreport.Match) {
			mu.Lock()
			defer mu.Unlock()
			key := path + "\x00" + m.Prefix
			if seen[key] {
				return
			}
			seen[key] = true
			slog.Warn("ambiguous label, using first match",
				slog.String("path", path),
				slog.String("label", m.Prefix),
				slog.String("value", m.Value),
				slog.Any("candidates", m.Distinct))
		},
	}
}

func cachePath(cfg config.Config) string {
	if !cfg.General.UseCache {
		return ""
	}
	return pipeline.CachePath()
}

// loadData is the shared loading path of the report commands. It returns
// the whole registry under the lookup policy, and the load statistics.
func loadData() (*pipeline.Registry, *pipeline.CachedLoadResult, error) {
	specs, err := bankSpecs(appCfg)
	if err != nil {
		return nil, nil, err
	}
	if len(specs) == 0 {
		return nil, nil, fmt.Errorf("no call reports found in %q; add SDF files or pass --bank alias=path",
			appCfg.General.DataDir)
	}

	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Loading %d call reports...\n", len(specs))
	}
	progressFn := func(current, total int) {
		if flagQuiet {
			return
		}
		fmt.Fprintf(os.Stderr, "\r  %s", cli.RenderProgressBar(current, total, 30))
	}

	res, err := pipeline.LoadAuto(specs, cachePath(appCfg), progressFn)
	if err != nil {
		return nil, nil, err
	}
	if res.CacheErr != nil {
		slog.Debug("cache unavailable, parsed all files", slog.String("error", res.CacheErr.Error()))
	}
	if res.Pruned > 0 {
		slog.Debug("pruned cache entries for removed files", slog.Int("count", res.Pruned))
	}

	if !flagQuiet {
		if res.CacheHits > 0 {
			fmt.Fprintf(os.Stderr, "\r  %d cached + %d parsed                              \n", res.CacheHits, res.Reparsed)
		} else {
			fmt.Fprintf(os.Stderr, "\r  Parsed %d call reports                              \n", res.ParsedFiles)
		}
		if res.SkippedRows > 0 {
			fmt.Fprintln(os.Stderr, cli.RenderWarning(fmt.Sprintf("%d malformed rows skipped", res.SkippedRows)))
		}
		for _, f := range res.Failures {
			fmt.Fprintln(os.Stderr, cli.RenderWarning(f.Error()))
		}
	}

	return res.Registry.WithPolicy(lookupPolicy(appCfg)), res, nil
}

// selectedBanks loads the data and returns the banks picked by aliases,
// or by --only, or all of them.
func selectedBanks(aliases ...string) ([]report.Bank, error) {
	reg, _, err := loadData()
	if err != nil {
		return nil, err
	}
	if len(aliases) == 0 {
		aliases = flagOnly
	}
	banks, err := reg.Banks(aliases...)
	if err != nil {
		return nil, err
	}
	if len(banks) == 0 {
		return nil, errors.New("no banks loaded")
	}
	return banks, nil
}

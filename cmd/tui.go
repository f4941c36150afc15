package cmd

import (
	"fmt"
	"io"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/dupont/internal/config"
	"github.com/theirongolddev/dupont/internal/pipeline"
	"github.com/theirongolddev/dupont/internal/tui"
	"github.com/theirongolddev/dupont/internal/tui/theme"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive dashboard",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	theme.SetActive(appCfg.Appearance.Theme)

	// Force TrueColor profile so all background styling produces ANSI codes
	lipgloss.SetColorProfile(termenv.TrueColor)

	// Log lines would tear the alt screen; warnings are shown in the app.
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))

	// The config is reread on every refresh so answers from the setup
	// form take effect without a restart.
	specs := func() ([]pipeline.BankSpec, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		return bankSpecs(applyFlags(cmd, cfg))
	}

	app := tui.NewApp(tui.Options{
		Specs:     specs,
		Aliases:   flagOnly,
		Strict:    appCfg.General.StrictLookups,
		CachePath: cachePath(appCfg),
		NeedSetup: !config.Exists(),
	})
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}

package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/theirongolddev/dupont/internal/config"
	"github.com/theirongolddev/dupont/internal/tui/theme"
)

// SetupValues holds the answers of the setup form.
type SetupValues struct {
	DataDir      string
	Theme        string
	Strict       bool
	UseCache     bool
	ExportFormat string
}

// SetupValuesFrom seeds the form with the current configuration.
func SetupValuesFrom(cfg config.Config) SetupValues {
	return SetupValues{
		DataDir:      cfg.General.DataDir,
		Theme:        cfg.Appearance.Theme,
		Strict:       cfg.General.StrictLookups,
		UseCache:     cfg.General.UseCache,
		ExportFormat: cfg.Export.Format,
	}
}

// Apply copies the answers into cfg.
func (v SetupValues) Apply(cfg *config.Config) {
	cfg.General.DataDir = strings.TrimSpace(v.DataDir)
	cfg.General.StrictLookups = v.Strict
	cfg.General.UseCache = v.UseCache
	cfg.Appearance.Theme = v.Theme
	cfg.Export.Format = v.ExportFormat
}

// NewSetupForm builds the first-run form. found is the number of call
// reports discovered so far, shown in the welcome note.
func NewSetupForm(vals *SetupValues, found int) *huh.Form {
	themes := make([]huh.Option[string], 0, len(theme.All))
	for _, t := range theme.All {
		themes = append(themes, huh.NewOption(t.Name, t.Name))
	}

	welcome := "Compare banks through the DuPont decomposition of their FFIEC call reports."
	if found > 0 {
		welcome = fmt.Sprintf("Found %d call reports.\n%s", found, welcome)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to dupont").
				Description(welcome),
			huh.NewInput().
				Title("Call report directory").
				Description("SDF files found here are loaded automatically.").
				Value(&vals.DataDir).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("directory is required")
					}
					return nil
				}),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Fail on ambiguous labels?").
				Description("When a label prefix matches rows with different values.").
				Affirmative("Fail").
				Negative("Use first match").
				Value(&vals.Strict),
			huh.NewConfirm().
				Title("Cache parsed reports?").
				Value(&vals.UseCache),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themes...).
				Value(&vals.Theme),
			huh.NewSelect[string]().
				Title("Default export format").
				Options(
					huh.NewOption("Excel workbook", "xlsx"),
					huh.NewOption("CSV", "csv"),
					huh.NewOption("HTML", "html"),
				).
				Value(&vals.ExportFormat),
		),
	).WithShowHelp(true)
}

// saveSetup writes the form answers to the config file and activates the
// chosen theme.
func saveSetup(vals SetupValues) error {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.DefaultConfig()
	}
	vals.Apply(&cfg)
	theme.SetActive(cfg.Appearance.Theme)
	return config.Save(cfg)
}

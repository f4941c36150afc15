// Package config loads and saves the dupont TOML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Environment overrides, applied after the config file.
const (
	EnvDataDir = "DUPONT_DATA_DIR"
	EnvStrict  = "DUPONT_STRICT"
)

// Config holds all dupont configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Banks      []BankConfig     `toml:"banks" validate:"dive"`
	Appearance AppearanceConfig `toml:"appearance"`
	Export     ExportConfig     `toml:"export"`
	Serve      ServeConfig      `toml:"serve"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	DataDir       string `toml:"data_dir,omitempty"`
	StrictLookups bool   `toml:"strict_lookups"`
	UseCache      bool   `toml:"use_cache"`
}

// BankConfig pins a call report file to an alias.
type BankConfig struct {
	Alias string `toml:"alias" validate:"required,alias"`
	Path  string `toml:"path" validate:"required"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme" validate:"omitempty,oneof=flexoki-dark catppuccin-mocha tokyo-night terminal"`
}

// ExportConfig holds defaults for `dupont export`.
type ExportConfig struct {
	Dir    string `toml:"dir,omitempty"`
	Format string `toml:"format" validate:"omitempty,oneof=xlsx csv html"`
}

// ServeConfig holds settings for `dupont serve`.
type ServeConfig struct {
	Addr     string `toml:"addr" validate:"omitempty,hostname_port"`
	Interval string `toml:"interval" validate:"omitempty,duration"`
}

// RefreshInterval parses Interval, falling back to five minutes.
func (s ServeConfig) RefreshInterval() time.Duration {
	d, err := time.ParseDuration(s.Interval)
	if err != nil || d <= 0 {
		return 5 * time.Minute
	}
	return d
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			DataDir:  "data",
			UseCache: true,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		Export: ExportConfig{
			Format: "xlsx",
		},
		Serve: ServeConfig{
			Addr:     "127.0.0.1:8417",
			Interval: "5m",
		},
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "dupont")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "dupont")
}

// Path returns the full path to the config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads .env from the working directory, then the config file
// (defaults if it doesn't exist), then applies environment overrides.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), fmt.Errorf("reading .env: %w", err)
	}
	return LoadFrom(Path())
}

// LoadFrom reads the config file at path and applies environment overrides.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path) //nolint:gosec // config path is user-controlled
	if err != nil && !os.IsNotExist(err) {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err == nil {
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	if err := Validate(cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if dir := os.Getenv(EnvDataDir); dir != "" {
		cfg.General.DataDir = dir
	}
	if v := os.Getenv(EnvStrict); v != "" {
		strict, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvStrict, err)
		}
		cfg.General.StrictLookups = strict
	}
	return nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	if err := Validate(cfg); err != nil {
		return err
	}

	dir := Dir()
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(Path(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}

var aliasPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("alias", func(fl validator.FieldLevel) bool {
		return aliasPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("duration", func(fl validator.FieldLevel) bool {
		d, err := time.ParseDuration(fl.Field().String())
		return err == nil && d > 0
	})
	return v
}

// Validate checks field constraints and that bank aliases are unique.
func Validate(cfg Config) error {
	var msgs []string
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			msgs = append(msgs, fmt.Sprintf("%s: invalid value %q (%s)", fe.Namespace(), fmt.Sprint(fe.Value()), fe.Tag()))
		}
	}

	seen := make(map[string]struct{}, len(cfg.Banks))
	for _, b := range cfg.Banks {
		if _, ok := seen[b.Alias]; ok {
			msgs = append(msgs, fmt.Sprintf("banks: duplicate alias %q", b.Alias))
		}
		seen[b.Alias] = struct{}{}
	}

	if len(msgs) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
	}
	return nil
}

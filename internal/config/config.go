// Package config loads user defaults from a TOML file with environment
// variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"

	"github.com/theirongolddev/taxcalc/internal/money"
	"github.com/theirongolddev/taxcalc/internal/tax"
)

// Config holds all taxcalc configuration.
type Config struct {
	General GeneralConfig `toml:"general"`
	Tables  TablesConfig  `toml:"tables"`
	Profile ProfileConfig `toml:"profile"`
	Logging LoggingConfig `toml:"logging"`
}

// GeneralConfig holds the defaults applied when a flag is not given.
type GeneralConfig struct {
	// TaxYear of 0 means the latest year with a table.
	TaxYear      int    `toml:"tax_year,omitempty" env:"TAXCALC_YEAR"`
	FilingStatus string `toml:"filing_status"      env:"TAXCALC_FILING_STATUS"`
	PayFrequency string `toml:"pay_frequency"      env:"TAXCALC_PAY_FREQUENCY"`
}

// TablesConfig controls where tax tables come from beyond the built-ins.
type TablesConfig struct {
	File        string `toml:"file,omitempty"         env:"TAXCALC_TABLES"`
	UseLibrary  bool   `toml:"use_library"            env:"TAXCALC_USE_LIBRARY"`
	LibraryPath string `toml:"library_path,omitempty" env:"TAXCALC_LIBRARY"`
}

// ProfileConfig is the saved W-4 election.
type ProfileConfig struct {
	MultipleJobs     bool         `toml:"multiple_jobs"`
	ClaimDependents  money.Amount `toml:"claim_dependents"`
	OtherIncome      money.Amount `toml:"other_income"`
	Deductions       money.Amount `toml:"deductions"`
	ExtraWithholding money.Amount `toml:"extra_withholding"`
	// StandardAllowance subtracts the standard deduction before withholding.
	StandardAllowance bool `toml:"standard_allowance"`
}

// LoggingConfig holds zap settings.
type LoggingConfig struct {
	Level  string `toml:"level"  env:"TAXCALC_LOG_LEVEL"`
	Format string `toml:"format" env:"TAXCALC_LOG_FORMAT"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			FilingStatus: string(tax.Single),
			PayFrequency: string(tax.Biweekly),
		},
		Tables: TablesConfig{
			UseLibrary: true,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "console",
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "taxcalc")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "taxcalc")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the config file and applies environment overrides, returning
// defaults if the file doesn't exist.
func Load() (Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom is Load for an explicit path.
func LoadFrom(path string) (Config, error) {
	cfg, err := LoadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// LoadFile reads the config file over the defaults without environment
// overrides. Use it when the result is going to be saved back.
func LoadFile(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path) //nolint:gosec // path is the user's own config
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("reading config: %w", err)
	default:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	}
	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	return SaveTo(ConfigPath(), cfg)
}

// SaveTo is Save for an explicit path.
func SaveTo(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600) //nolint:gosec // path is the user's own config
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}

	encErr := toml.NewEncoder(f).Encode(cfg)
	if err := errors.Join(encErr, f.Close()); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}

// FilingStatus parses the configured default status.
func (c Config) FilingStatus() (tax.FilingStatus, error) {
	s, err := tax.ParseFilingStatus(c.General.FilingStatus)
	if err != nil {
		return "", fmt.Errorf("config general.filing_status: %w", err)
	}
	return s, nil
}

// PayFrequency parses the configured default pay frequency.
func (c Config) PayFrequency() (tax.PayFrequency, error) {
	f, err := tax.ParsePayFrequency(c.General.PayFrequency)
	if err != nil {
		return "", fmt.Errorf("config general.pay_frequency: %w", err)
	}
	return f, nil
}

// WithholdingProfile builds the saved W-4 election for status.
func (c Config) WithholdingProfile(status tax.FilingStatus) tax.WithholdingProfile {
	return tax.WithholdingProfile{
		FilingStatus:      status,
		MultipleJobs:      c.Profile.MultipleJobs,
		ClaimDependents:   c.Profile.ClaimDependents.Decimal,
		OtherIncome:       c.Profile.OtherIncome.Decimal,
		Deductions:        c.Profile.Deductions.Decimal,
		ExtraWithholding:  c.Profile.ExtraWithholding.Decimal,
		StandardAllowance: c.Profile.StandardAllowance,
	}
}

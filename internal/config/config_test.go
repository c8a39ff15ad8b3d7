package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/taxcalc/internal/money"
	"github.com/theirongolddev/taxcalc/internal/tax"
)

func TestLoadFrom_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "config.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadFrom_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
[general]
tax_year = 2025
filing_status = "head_of_household"
pay_frequency = "semimonthly"

[tables]
file = "/etc/taxcalc/2027.toml"
use_library = false

[profile]
multiple_jobs = true
claim_dependents = "2,000"
extra_withholding = 25

[logging]
level = "debug"
format = "json"
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, 2025, cfg.General.TaxYear)
	assert.Equal(t, "/etc/taxcalc/2027.toml", cfg.Tables.File)
	assert.False(t, cfg.Tables.UseLibrary)
	assert.Equal(t, "json", cfg.Logging.Format)

	status, err := cfg.FilingStatus()
	require.NoError(t, err)
	assert.Equal(t, tax.HeadOfHousehold, status)

	freq, err := cfg.PayFrequency()
	require.NoError(t, err)
	assert.Equal(t, tax.Semimonthly, freq)

	p := cfg.WithholdingProfile(status)
	assert.True(t, p.MultipleJobs)
	assert.True(t, p.ClaimDependents.Equal(decimal.NewFromInt(2000)))
	assert.True(t, p.ExtraWithholding.Equal(decimal.NewFromInt(25)))
	assert.True(t, p.OtherIncome.IsZero())
}

func TestLoadFrom_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[general]\ntax_year = 2024\nfiling_status = \"single\"\n"), 0o600))

	t.Setenv("TAXCALC_YEAR", "2026")
	t.Setenv("TAXCALC_FILING_STATUS", "married_jointly")
	t.Setenv("TAXCALC_TABLES", "/tmp/tables.yaml")
	t.Setenv("TAXCALC_LOG_LEVEL", "info")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, 2026, cfg.General.TaxYear)
	assert.Equal(t, "married_jointly", cfg.General.FilingStatus)
	assert.Equal(t, "/tmp/tables.yaml", cfg.Tables.File)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.True(t, cfg.Tables.UseLibrary, "unset variables keep the default")
}

func TestLoadFrom_BadEnv(t *testing.T) {
	t.Setenv("TAXCALC_YEAR", "next year")
	_, err := LoadFrom(filepath.Join(t.TempDir(), "config.toml"))
	assert.Error(t, err)
}

func TestLoadFrom_BadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[general\n"), 0o600))
	_, err := LoadFrom(path)
	assert.ErrorContains(t, err, "parsing config")
}

func TestSaveTo_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	cfg := DefaultConfig()
	cfg.General.TaxYear = 2024
	cfg.General.FilingStatus = string(tax.MarriedSeparately)
	cfg.Profile.ClaimDependents = money.NewAmount(decimal.RequireFromString("500.50"))
	require.NoError(t, SaveTo(path, cfg))

	got, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, 2024, got.General.TaxYear)
	assert.Equal(t, string(tax.MarriedSeparately), got.General.FilingStatus)
	assert.True(t, got.Profile.ClaimDependents.Equal(decimal.RequireFromString("500.50")))
}

func TestConfigPath_UsesXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	assert.Equal(t, filepath.Join("/tmp/xdg", "taxcalc", "config.toml"), ConfigPath())
	assert.False(t, Exists())
}

func TestInvalidDefaults(t *testing.T) {
	cfg := DefaultConfig()
	cfg.General.FilingStatus = "widowed"
	cfg.General.PayFrequency = "daily"

	_, err := cfg.FilingStatus()
	assert.ErrorIs(t, err, tax.ErrInvalidInput)
	_, err = cfg.PayFrequency()
	assert.ErrorIs(t, err, tax.ErrInvalidInput)
}

func TestLoadFile_IgnoresEnvSoSaveKeepsFileValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[logging]\nlevel = \"warn\"\n"), 0o600))

	t.Setenv("TAXCALC_TABLES", "/tmp/one-off.toml")
	t.Setenv("TAXCALC_LOG_LEVEL", "debug")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Empty(t, cfg.Tables.File)
	assert.Equal(t, "warn", cfg.Logging.Level)

	cfg.Profile.MultipleJobs = true
	require.NoError(t, SaveTo(path, cfg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "/tmp/one-off.toml")
	assert.NotContains(t, string(data), "debug")
	assert.Contains(t, string(data), "multiple_jobs = true")

	effective, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/one-off.toml", effective.Tables.File, "env still applies when loading for use")
}

func TestSaveTo_StandardAllowance(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := DefaultConfig()
	cfg.Profile.StandardAllowance = true
	require.NoError(t, SaveTo(path, cfg))

	got, err := LoadFile(path)
	require.NoError(t, err)
	assert.True(t, got.WithholdingProfile(tax.Single).StandardAllowance)
}

func TestSaveTo_PathIsDirectory(t *testing.T) {
	err := SaveTo(t.TempDir(), DefaultConfig())
	assert.ErrorContains(t, err, "creating config file")
}

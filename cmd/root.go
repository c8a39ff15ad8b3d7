// Package cmd implements the taxcalc CLI commands.
package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/theirongolddev/taxcalc/internal/config"
	"github.com/theirongolddev/taxcalc/internal/logging"
	"github.com/theirongolddev/taxcalc/internal/store"
	"github.com/theirongolddev/taxcalc/internal/tax"
	"github.com/theirongolddev/taxcalc/internal/taxtable"
)

var (
	flagYear      int
	flagStatus    string
	flagTables    string
	flagNoLibrary bool
	flagJSON      bool
	flagQuiet     bool
	flagVerbose   bool
)

var (
	cfg config.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "taxcalc",
	Short: "Federal withholding and tax liability calculator",
	Long: `Estimate per-paycheck federal withholding and your annual tax bill.

Built-in tables cover 2023-2026. Newer or corrected tables can be loaded
from a file with --tables or imported into the local library with
'taxcalc tables import'.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadSettings,
	PersistentPostRun: func(_ *cobra.Command, _ []string) { _ = logger.Sync() },
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().IntVarP(&flagYear, "year", "y", 0, "Tax year (default: config, then latest table)")
	rootCmd.PersistentFlags().StringVarP(&flagStatus, "status", "s", "", "Filing status: single, married_jointly, married_separately, head_of_household")
	rootCmd.PersistentFlags().StringVar(&flagTables, "tables", "", "Extra tax table file (TOML, YAML or JSON)")
	rootCmd.PersistentFlags().BoolVar(&flagNoLibrary, "no-library", false, "Ignore tables imported into the local library")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Print results as JSON")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress notes on stderr")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Debug logging")
}

// loadSettings reads config and builds the logger before any command runs.
func loadSettings(_ *cobra.Command, _ []string) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return err
	}

	opts := logging.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format}
	if flagVerbose {
		opts.Level = "debug"
	}
	if logger, err = logging.New(opts); err != nil {
		return err
	}
	logger.Debug("config loaded", zap.String("path", config.ConfigPath()), zap.Bool("exists", config.Exists()))
	return nil
}

// loadEngine merges built-in, library and file tables, in that order of
// precedence from lowest to highest.
func loadEngine() (*tax.Engine, error) {
	registry := taxtable.Default()

	if cfg.Tables.UseLibrary && !flagNoLibrary {
		years, err := libraryYears()
		if err != nil {
			return nil, err
		}
		if len(years) > 0 {
			if registry, err = registry.With(years...); err != nil {
				return nil, err
			}
			logger.Debug("merged library tables", zap.Int("years", len(years)))
		}
	}

	tablesFile := flagTables
	if tablesFile == "" {
		tablesFile = cfg.Tables.File
	}
	if tablesFile != "" {
		years, err := taxtable.LoadFile(tablesFile)
		if err != nil {
			return nil, err
		}
		if registry, err = registry.With(years...); err != nil {
			return nil, err
		}
		logger.Debug("merged table file", zap.String("path", tablesFile), zap.Int("years", len(years)))
	}

	engine := tax.NewEngine(registry)
	if year := selectedYear(); year != 0 {
		engine = engine.WithDefaultYear(year)
	}
	logger.Debug("engine ready", zap.Ints("years", registry.Years()), zap.Int("default_year", engine.DefaultYear()))
	return engine, nil
}

// libraryYears reads the table library without creating it when absent.
func libraryYears() ([]taxtable.Year, error) {
	path := libraryPath()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	lib, err := store.Open(path)
	if err != nil {
		return nil, err
	}
	defer lib.Close()
	return lib.LoadYears()
}

func libraryPath() string {
	if cfg.Tables.LibraryPath != "" {
		return cfg.Tables.LibraryPath
	}
	return store.DefaultPath()
}

func selectedYear() int {
	if flagYear != 0 {
		return flagYear
	}
	return cfg.General.TaxYear
}

func selectedStatus() (tax.FilingStatus, error) {
	if flagStatus != "" {
		return tax.ParseFilingStatus(flagStatus)
	}
	return cfg.FilingStatus()
}

func printJSON(v any) error {
	enc := json.NewEncoder(rootCmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func note(format string, args ...any) {
	if flagQuiet {
		return
	}
	fmt.Fprintf(os.Stderr, "  "+format+"\n", args...)
}

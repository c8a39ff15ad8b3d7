package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/taxcalc/internal/cli"
	"github.com/theirongolddev/taxcalc/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	if flagJSON {
		return printJSON(cfg)
	}

	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	if cfg.General.TaxYear != 0 {
		fmt.Printf("    Tax year:       %d\n", cfg.General.TaxYear)
	} else {
		fmt.Println("    Tax year:       latest table")
	}
	fmt.Printf("    Filing status:  %s\n", cfg.General.FilingStatus)
	fmt.Printf("    Pay frequency:  %s\n", cfg.General.PayFrequency)
	fmt.Println()

	fmt.Println("  [Profile]")
	fmt.Printf("    Multiple jobs:     %v\n", cfg.Profile.MultipleJobs)
	fmt.Printf("    Dependents:        %s\n", cli.FormatMoney(cfg.Profile.ClaimDependents.Decimal))
	fmt.Printf("    Other income:      %s\n", cli.FormatMoney(cfg.Profile.OtherIncome.Decimal))
	fmt.Printf("    Deductions:        %s\n", cli.FormatMoney(cfg.Profile.Deductions.Decimal))
	fmt.Printf("    Extra withholding: %s\n", cli.FormatMoney(cfg.Profile.ExtraWithholding.Decimal))
	fmt.Println()

	fmt.Println("  [Tables]")
	if cfg.Tables.File != "" {
		fmt.Printf("    Table file:  %s\n", cfg.Tables.File)
	}
	fmt.Printf("    Use library: %v\n", cfg.Tables.UseLibrary)
	fmt.Printf("    Library:     %s\n", libraryPath())
	fmt.Println()

	fmt.Println("  [Logging]")
	fmt.Printf("    Level:  %s\n", cfg.Logging.Level)
	fmt.Printf("    Format: %s\n", cfg.Logging.Format)
	fmt.Println()

	fmt.Println("  TAXCALC_* environment variables override the file.")
	fmt.Println("  Run `taxcalc setup` to reconfigure.")
	return nil
}

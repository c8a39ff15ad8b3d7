package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/taxcalc/internal/cli"
	"github.com/theirongolddev/taxcalc/internal/tax"
)

var (
	withholdIncome       incomeFlags
	withholdMultipleJobs bool
	withholdAllowance    bool
	withholdProfile      tax.WithholdingProfile
)

var withholdCmd = &cobra.Command{
	Use:   "withhold",
	Short: "Per-paycheck federal, Social Security and Medicare withholding",
	Example: `  taxcalc withhold --salary 60000 --frequency monthly --status single
  taxcalc withhold --salary 120k -f biweekly --multiple-jobs --dependents 2000`,
	RunE: runWithhold,
}

func init() {
	withholdIncome.register(withholdCmd)
	fl := withholdCmd.Flags()
	fl.BoolVar(&withholdMultipleJobs, "multiple-jobs", false, "W-4 Step 2: multiple jobs or spouse works")
	fl.BoolVar(&withholdAllowance, "standard-allowance", false, "Also subtract the standard deduction before applying brackets")
	fl.Var(amount(&withholdProfile.ClaimDependents), "dependents", "W-4 Step 3: dependent credits claimed")
	fl.Var(amount(&withholdProfile.OtherIncome), "w4-other-income", "W-4 Step 4(a): other income")
	fl.Var(amount(&withholdProfile.Deductions), "w4-deductions", "W-4 Step 4(b): deductions beyond the standard deduction")
	fl.Var(amount(&withholdProfile.ExtraWithholding), "extra", "W-4 Step 4(c): extra withholding per pay period")
	rootCmd.AddCommand(withholdCmd)
}

func runWithhold(cmd *cobra.Command, _ []string) error {
	engine, err := loadEngine()
	if err != nil {
		return err
	}
	in, err := withholdIncome.inputs(cmd, engine.DefaultYear())
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("multiple-jobs") {
		in.Profile.MultipleJobs = withholdMultipleJobs
	}
	if cmd.Flags().Changed("standard-allowance") {
		in.Profile.StandardAllowance = withholdAllowance
	}
	overlay(cmd,
		boundAmount{"dependents", &withholdProfile.ClaimDependents, &in.Profile.ClaimDependents},
		boundAmount{"w4-other-income", &withholdProfile.OtherIncome, &in.Profile.OtherIncome},
		boundAmount{"w4-deductions", &withholdProfile.Deductions, &in.Profile.Deductions},
		boundAmount{"extra", &withholdProfile.ExtraWithholding, &in.Profile.ExtraWithholding},
	)

	result, err := engine.CalculateWithholdingForYear(in.TaxYear, in.Profile, in.Income)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(result)
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("WITHHOLDING  %d  %s  %s", result.TaxYear, result.FilingStatus.Label(), result.PayFrequency)))
	fmt.Println()

	fmt.Print(cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("Per pay period (%d per year)", result.PayPeriods),
		Headers: []string{"Item", "Amount"},
		Rows: [][]string{
			{"Gross pay", cli.FormatMoney(result.GrossPay)},
			cli.SeparatorRow,
			{"Federal income tax", cli.FormatMoney(result.FederalWithholding)},
			{"Social Security", cli.FormatMoney(result.SocialSecurity)},
			{"Medicare", cli.FormatMoney(result.Medicare)},
			{"Total taxes", cli.FormatMoney(result.TotalTaxes)},
			cli.SeparatorRow,
			{"Net pay", cli.FormatMoney(result.NetPay)},
		},
	}))
	fmt.Println()

	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Annualized",
		Headers: []string{"Item", "Amount"},
		Rows: [][]string{
			{"Wages", cli.FormatMoney(result.AnnualWages)},
			{"Taxable for withholding", cli.FormatMoney(result.AnnualTaxableWages)},
			{"Gross", cli.FormatMoney(result.Annual.Gross)},
			{"Taxes", cli.FormatMoney(result.Annual.Taxes)},
			{"Net", cli.FormatMoney(result.Annual.Net)},
			cli.SeparatorRow,
			{"Marginal rate", cli.FormatRate(result.MarginalRate)},
			{"Effective rate", cli.FormatRate(result.Annual.EffectiveRate)},
		},
	}))
	fmt.Println()

	if in.Profile.MultipleJobs {
		note("Multiple jobs: bracket thresholds halved.")
	}
	return nil
}

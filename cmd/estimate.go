package cmd

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/taxcalc/internal/cli"
	"github.com/theirongolddev/taxcalc/internal/tax"
)

var (
	estimateIncome     incomeFlags
	estimateItemize    bool
	estimateDeductions tax.DeductionDetails
	estimateCredits    tax.CreditDetails
	estimateWithheld   decimal.Decimal
)

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Annual tax liability and refund estimate",
	Example: `  taxcalc estimate --salary 80000 --withheld 10200
  taxcalc estimate --self-employment 50000 --status single --year 2024
  taxcalc estimate --scenario household.toml --withheld 18500`,
	RunE: runEstimate,
}

func init() {
	estimateIncome.register(estimateCmd)
	fl := estimateCmd.Flags()
	fl.BoolVar(&estimateItemize, "itemize", false, "Itemize deductions instead of taking the standard deduction")
	fl.Var(amount(&estimateDeductions.MortgageInterest), "mortgage-interest", "Mortgage interest (itemized)")
	fl.Var(amount(&estimateDeductions.PropertyTaxes), "property-taxes", "Property taxes (itemized)")
	fl.Var(amount(&estimateDeductions.CharitableDonations), "charity", "Charitable donations (itemized)")
	fl.Var(amount(&estimateDeductions.MedicalExpenses), "medical", "Medical expenses (itemized)")
	fl.Var(amount(&estimateDeductions.StudentLoanInterest), "student-loan-interest", "Student loan interest (itemized)")
	fl.Var(amount(&estimateDeductions.OtherDeductions), "other-deductions", "Other deductions (itemized)")
	fl.Var(amount(&estimateCredits.ChildTaxCredit), "child-credit", "Child tax credit")
	fl.Var(amount(&estimateCredits.ChildAndDependentCare), "dependent-care-credit", "Child and dependent care credit")
	fl.Var(amount(&estimateCredits.EducationCredits), "education-credit", "Education credits")
	fl.Var(amount(&estimateCredits.EnergyCredits), "energy-credit", "Energy credits")
	fl.Var(amount(&estimateCredits.OtherCredits), "other-credits", "Other credits")
	fl.Var(amount(&estimateWithheld), "withheld", "Federal tax withheld so far this year")
	rootCmd.AddCommand(estimateCmd)
}

func runEstimate(cmd *cobra.Command, _ []string) error {
	engine, err := loadEngine()
	if err != nil {
		return err
	}
	in, err := estimateIncome.inputs(cmd, engine.DefaultYear())
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("itemize") {
		in.Deductions.UseStandardDeduction = !estimateItemize
	}
	overlay(cmd,
		boundAmount{"mortgage-interest", &estimateDeductions.MortgageInterest, &in.Deductions.MortgageInterest},
		boundAmount{"property-taxes", &estimateDeductions.PropertyTaxes, &in.Deductions.PropertyTaxes},
		boundAmount{"charity", &estimateDeductions.CharitableDonations, &in.Deductions.CharitableDonations},
		boundAmount{"medical", &estimateDeductions.MedicalExpenses, &in.Deductions.MedicalExpenses},
		boundAmount{"student-loan-interest", &estimateDeductions.StudentLoanInterest, &in.Deductions.StudentLoanInterest},
		boundAmount{"other-deductions", &estimateDeductions.OtherDeductions, &in.Deductions.OtherDeductions},
		boundAmount{"child-credit", &estimateCredits.ChildTaxCredit, &in.Credits.ChildTaxCredit},
		boundAmount{"dependent-care-credit", &estimateCredits.ChildAndDependentCare, &in.Credits.ChildAndDependentCare},
		boundAmount{"education-credit", &estimateCredits.EducationCredits, &in.Credits.EducationCredits},
		boundAmount{"energy-credit", &estimateCredits.EnergyCredits, &in.Credits.EnergyCredits},
		boundAmount{"other-credits", &estimateCredits.OtherCredits, &in.Credits.OtherCredits},
		boundAmount{"withheld", &estimateWithheld, &in.WithholdingToDate},
	)

	if in.Deductions.UseStandardDeduction && in.Deductions.Itemized().IsPositive() {
		note("Itemized amounts are ignored with the standard deduction; pass --itemize to use them.")
	}

	est, err := engine.CalculateTaxEstimate(in.Income, in.Deductions, in.Credits, in.FilingStatus, in.TaxYear, in.WithholdingToDate)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(est)
	}

	deductionLabel := "Itemized deductions"
	if est.StandardDeduction {
		deductionLabel = "Standard deduction"
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("TAX ESTIMATE  %d  %s", est.TaxYear, est.FilingStatus.Label())))
	fmt.Println()

	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Income",
		Headers: []string{"Item", "Amount"},
		Rows: [][]string{
			{"Total income", cli.FormatMoney(est.TotalIncome)},
			{"Adjustments", cli.FormatMoney(est.Adjustments.Neg())},
			{"Adjusted gross income", cli.FormatMoney(est.AGI)},
			{deductionLabel, cli.FormatMoney(est.TotalDeductions.Neg())},
			cli.SeparatorRow,
			{"Taxable income", cli.FormatMoney(est.TaxableIncome)},
		},
	}))
	fmt.Println()

	rows := make([][]string, 0, len(est.Breakdown)+6)
	for _, item := range est.Breakdown {
		rows = append(rows, []string{item.Label, cli.FormatMoney(item.Amount)})
	}
	rows = append(rows,
		cli.SeparatorRow,
		[]string{"Total liability", cli.FormatMoney(est.TotalLiability)},
		[]string{"Withheld to date", cli.FormatMoney(est.WithholdingToDate)},
		cli.SeparatorRow,
		[]string{"Marginal rate", cli.FormatRate(est.MarginalRate)},
		[]string{"Effective rate", cli.FormatRate(est.EffectiveRate)},
	)
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Tax",
		Headers: []string{"Item", "Amount"},
		Rows:    rows,
	}))
	fmt.Println()

	fmt.Println("  " + cli.RenderOutcome(cli.FormatRefund(est.RefundOrOwed), !est.RefundOrOwed.IsNegative()))
	fmt.Println()

	if !est.StandardDeduction {
		if table, err := engine.Tables().Year(est.TaxYear); err == nil {
			if sd := table.StandardDeduction[est.FilingStatus]; sd.GreaterThan(est.TotalDeductions) {
				note("The standard deduction (%s) is larger than your itemized total.", cli.FormatMoney(sd))
			}
		}
	}
	return nil
}

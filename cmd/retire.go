package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/taxcalc/internal/cli"
	"github.com/theirongolddev/taxcalc/internal/money"
	"github.com/theirongolddev/taxcalc/internal/projection"
)

var (
	retireInput      projection.RetirementInput
	retireReturn     float64
	retireInflation  float64
	retireWithdrawal float64
)

var retireCmd = &cobra.Command{
	Use:     "retire",
	Short:   "Project a retirement nest egg and the income it supports",
	Example: `  taxcalc retire --age 35 --retire-at 65 --savings 50k --contribution 12k`,
	RunE:    runRetire,
}

func init() {
	fl := retireCmd.Flags()
	fl.IntVar(&retireInput.CurrentAge, "age", 30, "Current age")
	fl.IntVar(&retireInput.RetirementAge, "retire-at", 65, "Retirement age")
	fl.Var(amount(&retireInput.CurrentSavings), "savings", "Current retirement savings")
	fl.Var(amount(&retireInput.AnnualContribution), "contribution", "Annual contribution")
	fl.Float64Var(&retireReturn, "return", 7, "Expected annual return in percent")
	fl.Float64Var(&retireInflation, "inflation", 3, "Expected inflation in percent")
	fl.Float64Var(&retireWithdrawal, "withdrawal", 4, "Annual withdrawal rate in percent")
	rootCmd.AddCommand(retireCmd)
}

func runRetire(_ *cobra.Command, _ []string) error {
	in := retireInput
	in.ExpectedReturn = money.Percent(retireReturn)
	in.Inflation = money.Percent(retireInflation)
	in.WithdrawalRate = money.Percent(retireWithdrawal)

	result, err := projection.Retirement(in)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(result)
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("RETIREMENT  age %d in %d years", in.RetirementAge, result.YearsToRetirement)))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Item", "Nominal", "Today's dollars"},
		Rows: [][]string{
			{"Nest egg", cli.FormatMoney(result.NestEgg), cli.FormatMoney(result.RealNestEgg)},
			{"Annual income at " + cli.FormatRate(in.WithdrawalRate), cli.FormatMoney(result.AnnualIncome), cli.FormatMoney(result.RealAnnualIncome)},
			cli.SeparatorRow,
			{"Contributions", cli.FormatMoney(result.TotalContributions), ""},
			{"Years of saving", strconv.Itoa(result.YearsToRetirement), ""},
		},
	}))
	fmt.Println()
	return nil
}

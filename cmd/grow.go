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
	growInput projection.GrowthInput
	growRate  float64
)

var growCmd = &cobra.Command{
	Use:     "grow",
	Short:   "Project savings growth with monthly contributions",
	Example: `  taxcalc grow --principal 10k --monthly 500 --rate 7 --years 20`,
	RunE:    runGrow,
}

func init() {
	fl := growCmd.Flags()
	fl.Var(amount(&growInput.Principal), "principal", "Starting balance")
	fl.Var(amount(&growInput.MonthlyContribution), "monthly", "Monthly contribution")
	fl.Float64Var(&growRate, "rate", 7, "Annual return in percent")
	fl.IntVar(&growInput.Years, "years", 10, "Years to project")
	fl.IntVar(&growInput.CompoundsPerYear, "compounds", 12, "Compounding periods per year")
	rootCmd.AddCommand(growCmd)
}

func runGrow(_ *cobra.Command, _ []string) error {
	in := growInput
	in.AnnualRate = money.Percent(growRate)

	result, err := projection.Growth(in)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(result)
	}

	rows := make([][]string, 0, len(result.Schedule)+2)
	balances := make([]float64, 0, len(result.Schedule))
	for _, y := range result.Schedule {
		rows = append(rows, []string{
			strconv.Itoa(y.Year),
			cli.FormatMoney(y.Contributions),
			cli.FormatMoney(y.Interest),
			cli.FormatMoney(y.Balance),
		})
		balances = append(balances, y.Balance.InexactFloat64())
	}
	rows = append(rows, cli.SeparatorRow, []string{
		"Total",
		cli.FormatMoney(result.TotalContributions),
		cli.FormatMoney(result.TotalInterest),
		cli.FormatMoney(result.FinalBalance),
	})

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("GROWTH  %s at %s for %d years",
		cli.FormatMoney(in.Principal), cli.FormatRate(in.AnnualRate), in.Years)))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Year", "Contributed", "Interest", "Balance"},
		Rows:    rows,
	}))
	if len(balances) > 1 {
		fmt.Printf("\n  %s\n", cli.RenderSparkline(balances))
	}
	fmt.Println()

	if !result.TotalContributions.IsZero() {
		multiple := result.FinalBalance.Div(in.Principal.Add(result.TotalContributions))
		note("Every dollar put in grew to %s.", cli.FormatMoney(multiple.Round(2)))
	} else if in.Principal.IsZero() {
		note("Nothing to grow: set --principal or --monthly.")
	}
	return nil
}

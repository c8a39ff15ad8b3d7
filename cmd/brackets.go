package cmd

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/taxcalc/internal/cli"
	"github.com/theirongolddev/taxcalc/internal/tax"
	"github.com/theirongolddev/taxcalc/internal/taxtable"
)

var bracketsAll bool

var bracketsCmd = &cobra.Command{
	Use:   "brackets",
	Short: "Show the bracket table and payroll figures for a year",
	RunE:  runBrackets,
}

func init() {
	bracketsCmd.Flags().BoolVarP(&bracketsAll, "all", "a", false, "Show every filing status")
	rootCmd.AddCommand(bracketsCmd)
}

type bracketsView struct {
	Year                   int                          `json:"year"`
	Brackets               map[string]taxtable.Brackets `json:"brackets"`
	StandardDeduction      map[string]decimal.Decimal   `json:"standard_deduction"`
	SocialSecurityWageBase decimal.Decimal              `json:"social_security_wage_base"`
}

func runBrackets(_ *cobra.Command, _ []string) error {
	engine, err := loadEngine()
	if err != nil {
		return err
	}
	year, err := engine.Tables().Year(engine.DefaultYear())
	if err != nil {
		return err
	}

	statuses := taxtable.FilingStatuses
	if !bracketsAll {
		status, err := selectedStatus()
		if err != nil {
			return err
		}
		statuses = []tax.FilingStatus{status}
	}

	if flagJSON {
		view := bracketsView{
			Year:                   year.Year,
			Brackets:               make(map[string]taxtable.Brackets, len(statuses)),
			StandardDeduction:      make(map[string]decimal.Decimal, len(statuses)),
			SocialSecurityWageBase: year.SocialSecurityWageBase,
		}
		for _, s := range statuses {
			view.Brackets[string(s)] = year.Brackets[s]
			view.StandardDeduction[string(s)] = year.StandardDeduction[s]
		}
		return printJSON(view)
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("FEDERAL BRACKETS  %d", year.Year)))
	fmt.Println()

	for _, s := range statuses {
		rows := make([][]string, 0, len(year.Brackets[s])+2)
		cumulative := decimal.Zero
		for _, b := range year.Brackets[s] {
			upTo := "and up"
			if b.Max != nil {
				upTo = cli.FormatWholeMoney(*b.Max)
			}
			rows = append(rows, []string{cli.FormatRate(b.Rate), cli.FormatWholeMoney(b.Min), upTo, cli.FormatMoney(cumulative)})
			if b.Max != nil {
				cumulative = cumulative.Add(b.Max.Sub(b.Min).Mul(b.Rate))
			}
		}
		rows = append(rows, cli.SeparatorRow, []string{"Standard deduction", "", "", cli.FormatWholeMoney(year.StandardDeduction[s])})

		fmt.Print(cli.RenderTable(cli.Table{
			Title:   s.Label(),
			Headers: []string{"Rate", "Over", "Up to", "Tax below"},
			Rows:    rows,
		}))
		fmt.Println()
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Payroll",
		Headers: []string{"Item", "Value"},
		Rows: [][]string{
			{"Social Security rate", cli.FormatRate(year.SocialSecurityRate)},
			{"Social Security wage base", cli.FormatWholeMoney(year.SocialSecurityWageBase)},
			{"Medicare rate", cli.FormatRate(year.MedicareRate)},
			{"Additional Medicare", fmt.Sprintf("%s over %s", cli.FormatRate(year.AdditionalMedicareRate), cli.FormatWholeMoney(year.AdditionalMedicareThreshold))},
			{"Self-employment SS / Medicare", fmt.Sprintf("%s / %s", cli.FormatRate(year.SelfEmploymentSocialSecurityRate), cli.FormatRate(year.SelfEmploymentMedicareRate))},
		},
	}))
	fmt.Println()
	return nil
}

package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/theirongolddev/taxcalc/internal/config"
	"github.com/theirongolddev/taxcalc/internal/money"
	"github.com/theirongolddev/taxcalc/internal/tax"
	"github.com/theirongolddev/taxcalc/internal/taxtable"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Save your filing status, pay schedule and W-4 election",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

// setupAnswers holds the form's string-typed fields until they are parsed
// back into the config.
type setupAnswers struct {
	year       string
	status     string
	frequency  string
	multiple   bool
	allowance  bool
	dependents string
	other      string
	deductions string
	extra      string
}

func answersFrom(c config.Config) setupAnswers {
	a := setupAnswers{
		status:     c.General.FilingStatus,
		frequency:  c.General.PayFrequency,
		multiple:   c.Profile.MultipleJobs,
		allowance:  c.Profile.StandardAllowance,
		dependents: c.Profile.ClaimDependents.String(),
		other:      c.Profile.OtherIncome.String(),
		deductions: c.Profile.Deductions.String(),
		extra:      c.Profile.ExtraWithholding.String(),
	}
	if c.General.TaxYear != 0 {
		a.year = strconv.Itoa(c.General.TaxYear)
	}
	return a
}

// apply writes the answers onto c. Inputs were validated by the form.
func (a setupAnswers) apply(c *config.Config) error {
	year := 0
	if y := strings.TrimSpace(a.year); y != "" {
		var err error
		if year, err = strconv.Atoi(y); err != nil {
			return fmt.Errorf("tax year: %w", err)
		}
	}
	c.General.TaxYear = year
	c.General.FilingStatus = a.status
	c.General.PayFrequency = a.frequency
	c.Profile.MultipleJobs = a.multiple
	c.Profile.StandardAllowance = a.allowance

	for _, f := range []struct {
		in  string
		out *money.Amount
	}{
		{a.dependents, &c.Profile.ClaimDependents},
		{a.other, &c.Profile.OtherIncome},
		{a.deductions, &c.Profile.Deductions},
		{a.extra, &c.Profile.ExtraWithholding},
	} {
		d, err := parseOptionalAmount(f.in)
		if err != nil {
			return err
		}
		*f.out = money.NewAmount(d)
	}
	return nil
}

func runSetup(_ *cobra.Command, _ []string) error {
	// Start from the file alone so one-off TAXCALC_* overrides are not saved.
	saved, err := config.LoadFile(config.ConfigPath())
	if err != nil {
		return err
	}
	answers := answersFrom(saved)

	statuses := make([]huh.Option[string], 0, len(taxtable.FilingStatuses))
	for _, s := range taxtable.FilingStatuses {
		statuses = append(statuses, huh.NewOption(s.Label(), string(s)))
	}
	frequencies := make([]huh.Option[string], 0, len(tax.PayFrequencies))
	for _, f := range tax.PayFrequencies {
		frequencies = append(frequencies, huh.NewOption(fmt.Sprintf("%s (%d per year)", f, f.PeriodsPerYear()), string(f)))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Filing status").
				Options(statuses...).
				Value(&answers.status),
			huh.NewSelect[string]().
				Title("How often are you paid?").
				Options(frequencies...).
				Value(&answers.frequency),
			huh.NewInput().
				Title("Tax year").
				Description("Leave blank to use the latest table.").
				Value(&answers.year).
				Validate(validYear),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Multiple jobs, or spouse also works?").
				Description("W-4 step 2").
				Value(&answers.multiple),
			huh.NewConfirm().
				Title("Subtract the standard deduction before withholding?").
				Description("Matches the IRS percentage-method tables").
				Value(&answers.allowance),
			huh.NewInput().
				Title("Dependents amount").
				Description("W-4 step 3").
				Value(&answers.dependents).
				Validate(validAmount),
			huh.NewInput().
				Title("Other income").
				Description("W-4 step 4(a)").
				Value(&answers.other).
				Validate(validAmount),
			huh.NewInput().
				Title("Deductions").
				Description("W-4 step 4(b)").
				Value(&answers.deductions).
				Validate(validAmount),
			huh.NewInput().
				Title("Extra withholding per paycheck").
				Description("W-4 step 4(c)").
				Value(&answers.extra).
				Validate(validAmount),
		),
	)

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			note("Setup cancelled; nothing saved.")
			return nil
		}
		return err
	}

	if err := answers.apply(&saved); err != nil {
		return err
	}
	if err := config.Save(saved); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	logger.Debug("config saved", zap.String("path", config.ConfigPath()))

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.ConfigPath())
	fmt.Println("  Run `taxcalc setup` anytime to reconfigure.")
	fmt.Println()
	return nil
}

func validYear(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	y, err := strconv.Atoi(s)
	if err != nil || y < 1913 {
		return fmt.Errorf("not a tax year: %q", s)
	}
	return nil
}

func validAmount(s string) error {
	d, err := parseOptionalAmount(s)
	if err != nil {
		return err
	}
	if d.IsNegative() {
		return errors.New("must not be negative")
	}
	return nil
}

// parseOptionalAmount treats a blank field as zero.
func parseOptionalAmount(s string) (decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return decimal.Zero, nil
	}
	return money.Parse(s)
}

package cmd

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/taxcalc/internal/money"
	"github.com/theirongolddev/taxcalc/internal/scenario"
	"github.com/theirongolddev/taxcalc/internal/tax"
)

// amountValue is a flag value for dollar amounts such as "85k" or "$1,200".
type amountValue struct{ d *decimal.Decimal }

func amount(d *decimal.Decimal) amountValue { return amountValue{d: d} }

func (a amountValue) String() string {
	if a.d == nil {
		return "0"
	}
	return a.d.String()
}

func (a amountValue) Set(s string) error {
	d, err := money.Parse(s)
	if err != nil {
		return err
	}
	*a.d = d
	return nil
}

func (a amountValue) Type() string { return "amount" }

// boundAmount pairs a flag with the field it overrides.
type boundAmount struct {
	name string
	src  *decimal.Decimal
	dst  *decimal.Decimal
}

// overlay copies each flag the user actually set onto its field, so flags
// win over scenario files and config defaults.
func overlay(cmd *cobra.Command, bound ...boundAmount) {
	for _, b := range bound {
		if cmd.Flags().Changed(b.name) {
			*b.dst = *b.src
		}
	}
}

// incomeFlags are shared by withhold and estimate.
type incomeFlags struct {
	salary         decimal.Decimal
	frequency      string
	selfEmployment decimal.Decimal
	investment     decimal.Decimal
	otherIncome    decimal.Decimal
	preTax         decimal.Decimal
	retirement401k decimal.Decimal
	traditionalIRA decimal.Decimal
	roth401k       decimal.Decimal
	rothIRA        decimal.Decimal
	hsa            decimal.Decimal
	fsa            decimal.Decimal
	scenarioPath   string
}

func (f *incomeFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.Var(amount(&f.salary), "salary", "Annual salary, e.g. 85000 or 85k")
	fl.StringVarP(&f.frequency, "frequency", "f", "", "Pay frequency: weekly, biweekly, semimonthly, monthly, quarterly, annually")
	fl.Var(amount(&f.selfEmployment), "self-employment", "Annual self-employment income")
	fl.Var(amount(&f.investment), "investment", "Annual investment income")
	fl.Var(amount(&f.otherIncome), "other-income", "Other annual income")
	fl.Var(amount(&f.preTax), "pre-tax", "Other pre-tax payroll deductions (health premiums, etc.)")
	fl.Var(amount(&f.retirement401k), "401k", "Traditional 401(k) contributions")
	fl.Var(amount(&f.traditionalIRA), "ira", "Traditional IRA contributions")
	fl.Var(amount(&f.roth401k), "roth-401k", "Roth 401(k) contributions (after-tax)")
	fl.Var(amount(&f.rothIRA), "roth-ira", "Roth IRA contributions (after-tax)")
	fl.Var(amount(&f.hsa), "hsa", "HSA contributions")
	fl.Var(amount(&f.fsa), "fsa", "FSA contributions")
	fl.StringVar(&f.scenarioPath, "scenario", "", "Scenario file (TOML, YAML or JSON); flags override its values")
}

// inputs starts from the scenario file when given, otherwise from config
// defaults, then applies any flags the user set.
func (f *incomeFlags) inputs(cmd *cobra.Command, defaultYear int) (scenario.Inputs, error) {
	var in scenario.Inputs
	if f.scenarioPath != "" {
		s, err := scenario.Load(f.scenarioPath)
		if err != nil {
			return in, err
		}
		if in, err = s.Inputs(defaultYear); err != nil {
			return in, fmt.Errorf("%s: %w", f.scenarioPath, err)
		}
		logger.Sugar().Debugw("scenario loaded", "path", f.scenarioPath, "name", s.Name)
	} else {
		status, err := cfg.FilingStatus()
		if err != nil {
			return in, err
		}
		freq, err := cfg.PayFrequency()
		if err != nil {
			return in, err
		}
		in = scenario.Inputs{
			TaxYear:      defaultYear,
			FilingStatus: status,
			Profile:      cfg.WithholdingProfile(status),
			Income:       tax.IncomeDetails{PayFrequency: freq},
			Deductions:   tax.DeductionDetails{UseStandardDeduction: true},
		}
	}

	if flagYear != 0 {
		in.TaxYear = flagYear
	}
	if flagStatus != "" {
		status, err := tax.ParseFilingStatus(flagStatus)
		if err != nil {
			return in, err
		}
		in.FilingStatus = status
		in.Profile.FilingStatus = status
	}
	if f.frequency != "" {
		freq, err := tax.ParsePayFrequency(f.frequency)
		if err != nil {
			return in, err
		}
		in.Income.PayFrequency = freq
	}
	if cmd.Flags().Changed("salary") {
		in.Income.Salary = decimal.NewNullDecimal(f.salary)
	}

	overlay(cmd,
		boundAmount{"self-employment", &f.selfEmployment, &in.Income.SelfEmploymentIncome},
		boundAmount{"investment", &f.investment, &in.Income.InvestmentIncome},
		boundAmount{"other-income", &f.otherIncome, &in.Income.OtherIncome},
		boundAmount{"pre-tax", &f.preTax, &in.Income.PreTaxDeductions},
		boundAmount{"401k", &f.retirement401k, &in.Income.Retirement401k},
		boundAmount{"ira", &f.traditionalIRA, &in.Income.TraditionalIRA},
		boundAmount{"roth-401k", &f.roth401k, &in.Income.Roth401k},
		boundAmount{"roth-ira", &f.rothIRA, &in.Income.RothIRA},
		boundAmount{"hsa", &f.hsa, &in.Income.HSA},
		boundAmount{"fsa", &f.fsa, &in.Income.FSA},
	)
	return in, nil
}

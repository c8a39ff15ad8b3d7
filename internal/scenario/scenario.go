// Package scenario decodes a saved what-if file into engine inputs. A
// scenario bundles a filing status, a W-4 profile and a year of income,
// deductions and credits so the same numbers can be re-run across tax years.
package scenario

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/theirongolddev/taxcalc/internal/money"
	"github.com/theirongolddev/taxcalc/internal/tax"
	"github.com/theirongolddev/taxcalc/internal/taxtable"
)

// ErrUnknownField is returned when a file carries keys the decoder does not
// recognise, usually a typo that would otherwise silently zero an amount.
var ErrUnknownField = errors.New("unknown scenario field")

// Scenario is the on-disk shape. Amounts accept numbers or strings.
type Scenario struct {
	Name              string       `toml:"name,omitempty" yaml:"name,omitempty" json:"name,omitempty"`
	TaxYear           int          `toml:"tax_year,omitempty" yaml:"tax_year,omitempty" json:"tax_year,omitempty"`
	FilingStatus      string       `toml:"filing_status" yaml:"filing_status" json:"filing_status"`
	WithholdingToDate money.Amount `toml:"withholding_to_date" yaml:"withholding_to_date" json:"withholding_to_date"`

	Profile    Profile    `toml:"profile" yaml:"profile" json:"profile"`
	Income     Income     `toml:"income" yaml:"income" json:"income"`
	Deductions Deductions `toml:"deductions" yaml:"deductions" json:"deductions"`
	Credits    Credits    `toml:"credits" yaml:"credits" json:"credits"`
}

// Profile is the W-4 section. FilingStatus falls back to the scenario's.
type Profile struct {
	FilingStatus     string       `toml:"filing_status,omitempty" yaml:"filing_status,omitempty" json:"filing_status,omitempty"`
	MultipleJobs     bool         `toml:"multiple_jobs" yaml:"multiple_jobs" json:"multiple_jobs"`
	ClaimDependents  money.Amount `toml:"claim_dependents" yaml:"claim_dependents" json:"claim_dependents"`
	OtherIncome      money.Amount `toml:"other_income" yaml:"other_income" json:"other_income"`
	Deductions       money.Amount `toml:"deductions" yaml:"deductions" json:"deductions"`
	ExtraWithholding money.Amount `toml:"extra_withholding" yaml:"extra_withholding" json:"extra_withholding"`
	// StandardAllowance subtracts the standard deduction before withholding.
	StandardAllowance bool `toml:"standard_allowance" yaml:"standard_allowance" json:"standard_allowance"`
}

type Income struct {
	Salary               *money.Amount `toml:"salary,omitempty" yaml:"salary,omitempty" json:"salary,omitempty"`
	PayFrequency         string        `toml:"pay_frequency,omitempty" yaml:"pay_frequency,omitempty" json:"pay_frequency,omitempty"`
	SelfEmploymentIncome money.Amount  `toml:"self_employment_income" yaml:"self_employment_income" json:"self_employment_income"`
	InvestmentIncome     money.Amount  `toml:"investment_income" yaml:"investment_income" json:"investment_income"`
	OtherIncome          money.Amount  `toml:"other_income" yaml:"other_income" json:"other_income"`
	PreTaxDeductions     money.Amount  `toml:"pre_tax_deductions" yaml:"pre_tax_deductions" json:"pre_tax_deductions"`
	Retirement401k       money.Amount  `toml:"retirement_401k" yaml:"retirement_401k" json:"retirement_401k"`
	TraditionalIRA       money.Amount  `toml:"traditional_ira" yaml:"traditional_ira" json:"traditional_ira"`
	Roth401k             money.Amount  `toml:"roth_401k" yaml:"roth_401k" json:"roth_401k"`
	RothIRA              money.Amount  `toml:"roth_ira" yaml:"roth_ira" json:"roth_ira"`
	HSA                  money.Amount  `toml:"hsa" yaml:"hsa" json:"hsa"`
	FSA                  money.Amount  `toml:"fsa" yaml:"fsa" json:"fsa"`
}

// Deductions defaults to the standard deduction when UseStandard is omitted.
type Deductions struct {
	UseStandard         *bool        `toml:"use_standard_deduction,omitempty" yaml:"use_standard_deduction,omitempty" json:"use_standard_deduction,omitempty"`
	MortgageInterest    money.Amount `toml:"mortgage_interest" yaml:"mortgage_interest" json:"mortgage_interest"`
	PropertyTaxes       money.Amount `toml:"property_taxes" yaml:"property_taxes" json:"property_taxes"`
	CharitableDonations money.Amount `toml:"charitable_donations" yaml:"charitable_donations" json:"charitable_donations"`
	MedicalExpenses     money.Amount `toml:"medical_expenses" yaml:"medical_expenses" json:"medical_expenses"`
	StudentLoanInterest money.Amount `toml:"student_loan_interest" yaml:"student_loan_interest" json:"student_loan_interest"`
	OtherDeductions     money.Amount `toml:"other_deductions" yaml:"other_deductions" json:"other_deductions"`
}

type Credits struct {
	ChildTaxCredit        money.Amount `toml:"child_tax_credit" yaml:"child_tax_credit" json:"child_tax_credit"`
	ChildAndDependentCare money.Amount `toml:"child_and_dependent_care" yaml:"child_and_dependent_care" json:"child_and_dependent_care"`
	EducationCredits      money.Amount `toml:"education_credits" yaml:"education_credits" json:"education_credits"`
	EnergyCredits         money.Amount `toml:"energy_credits" yaml:"energy_credits" json:"energy_credits"`
	OtherCredits          money.Amount `toml:"other_credits" yaml:"other_credits" json:"other_credits"`
}

// Inputs is a scenario converted to engine types.
type Inputs struct {
	TaxYear           int
	FilingStatus      tax.FilingStatus
	Profile           tax.WithholdingProfile
	Income            tax.IncomeDetails
	Deductions        tax.DeductionDetails
	Credits           tax.CreditDetails
	WithholdingToDate decimal.Decimal
}

// Load reads a scenario, choosing the decoder from the file extension.
func Load(path string) (Scenario, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is supplied by the local user
	if err != nil {
		return Scenario{}, fmt.Errorf("reading scenario: %w", err)
	}
	s, err := Decode(bytes.NewReader(data), taxtable.FormatFromPath(path))
	if err != nil {
		return Scenario{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Decode parses a scenario document, rejecting unknown keys.
func Decode(r io.Reader, format taxtable.Format) (Scenario, error) {
	var s Scenario
	switch format {
	case taxtable.FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
			return Scenario{}, fmt.Errorf("parsing scenario: %w", err)
		}
	case taxtable.FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&s); err != nil {
			return Scenario{}, fmt.Errorf("parsing scenario: %w", err)
		}
	default:
		md, err := toml.NewDecoder(r).Decode(&s)
		if err != nil {
			return Scenario{}, fmt.Errorf("parsing scenario: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			sort.Strings(keys)
			return Scenario{}, fmt.Errorf("%w: %s", ErrUnknownField, strings.Join(keys, ", "))
		}
	}
	return s, nil
}

// Inputs converts the scenario to engine inputs. A zero TaxYear is replaced
// with defaultYear. Amount sign checks are left to the engine.
func (s Scenario) Inputs(defaultYear int) (Inputs, error) {
	status, err := tax.ParseFilingStatus(s.FilingStatus)
	if err != nil {
		return Inputs{}, fmt.Errorf("filing_status: %w", err)
	}
	w4Status := status
	if s.Profile.FilingStatus != "" {
		if w4Status, err = tax.ParseFilingStatus(s.Profile.FilingStatus); err != nil {
			return Inputs{}, fmt.Errorf("profile.filing_status: %w", err)
		}
	}

	var freq tax.PayFrequency
	if s.Income.PayFrequency != "" {
		if freq, err = tax.ParsePayFrequency(s.Income.PayFrequency); err != nil {
			return Inputs{}, fmt.Errorf("income.pay_frequency: %w", err)
		}
	}

	var salary decimal.NullDecimal
	if s.Income.Salary != nil {
		salary = decimal.NewNullDecimal(s.Income.Salary.Decimal)
	}

	year := s.TaxYear
	if year == 0 {
		year = defaultYear
	}
	standard := s.Deductions.UseStandard == nil || *s.Deductions.UseStandard

	return Inputs{
		TaxYear:      year,
		FilingStatus: status,
		Profile: tax.WithholdingProfile{
			FilingStatus:      w4Status,
			MultipleJobs:      s.Profile.MultipleJobs,
			ClaimDependents:   s.Profile.ClaimDependents.Decimal,
			OtherIncome:       s.Profile.OtherIncome.Decimal,
			Deductions:        s.Profile.Deductions.Decimal,
			ExtraWithholding:  s.Profile.ExtraWithholding.Decimal,
			StandardAllowance: s.Profile.StandardAllowance,
		},
		Income: tax.IncomeDetails{
			Salary:               salary,
			PayFrequency:         freq,
			SelfEmploymentIncome: s.Income.SelfEmploymentIncome.Decimal,
			InvestmentIncome:     s.Income.InvestmentIncome.Decimal,
			OtherIncome:          s.Income.OtherIncome.Decimal,
			PreTaxDeductions:     s.Income.PreTaxDeductions.Decimal,
			Retirement401k:       s.Income.Retirement401k.Decimal,
			TraditionalIRA:       s.Income.TraditionalIRA.Decimal,
			Roth401k:             s.Income.Roth401k.Decimal,
			RothIRA:              s.Income.RothIRA.Decimal,
			HSA:                  s.Income.HSA.Decimal,
			FSA:                  s.Income.FSA.Decimal,
		},
		Deductions: tax.DeductionDetails{
			UseStandardDeduction: standard,
			MortgageInterest:     s.Deductions.MortgageInterest.Decimal,
			PropertyTaxes:        s.Deductions.PropertyTaxes.Decimal,
			CharitableDonations:  s.Deductions.CharitableDonations.Decimal,
			MedicalExpenses:      s.Deductions.MedicalExpenses.Decimal,
			StudentLoanInterest:  s.Deductions.StudentLoanInterest.Decimal,
			OtherDeductions:      s.Deductions.OtherDeductions.Decimal,
		},
		Credits: tax.CreditDetails{
			ChildTaxCredit:        s.Credits.ChildTaxCredit.Decimal,
			ChildAndDependentCare: s.Credits.ChildAndDependentCare.Decimal,
			EducationCredits:      s.Credits.EducationCredits.Decimal,
			EnergyCredits:         s.Credits.EnergyCredits.Decimal,
			OtherCredits:          s.Credits.OtherCredits.Decimal,
		},
		WithholdingToDate: s.WithholdingToDate.Decimal,
	}, nil
}

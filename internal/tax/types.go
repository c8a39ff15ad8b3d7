// Package tax implements the federal withholding calculator and the annual
// liability estimator. Everything here is pure: no I/O, no shared mutable
// state, safe to call concurrently.
package tax

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/taxcalc/internal/taxtable"
)

var (
	// ErrInvalidInput covers negative amounts, missing required fields, and
	// unknown filing statuses or pay frequencies.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnsupportedTaxYear is returned when no table exists for the year.
	ErrUnsupportedTaxYear = taxtable.ErrUnsupportedTaxYear
)

// FilingStatus selects the bracket table and standard deduction.
type FilingStatus = taxtable.FilingStatus

const (
	Single            = taxtable.Single
	MarriedJointly    = taxtable.MarriedJointly
	MarriedSeparately = taxtable.MarriedSeparately
	HeadOfHousehold   = taxtable.HeadOfHousehold
)

// ParseFilingStatus reads a status name, case-insensitively, accepting
// dashes or spaces in place of underscores.
func ParseFilingStatus(s string) (FilingStatus, error) {
	norm := normalizeEnum(s)
	switch norm {
	case "married_filing_jointly", "mfj":
		norm = string(MarriedJointly)
	case "married_filing_separately", "mfs":
		norm = string(MarriedSeparately)
	case "hoh":
		norm = string(HeadOfHousehold)
	}
	status := FilingStatus(norm)
	if !status.Valid() {
		return "", fmt.Errorf("%w: unknown filing status %q", ErrInvalidInput, s)
	}
	return status, nil
}

// PayFrequency determines how many pay periods make up a year.
type PayFrequency string

const (
	Weekly      PayFrequency = "weekly"
	Biweekly    PayFrequency = "biweekly"
	Semimonthly PayFrequency = "semimonthly"
	Monthly     PayFrequency = "monthly"
	Quarterly   PayFrequency = "quarterly"
	Annually    PayFrequency = "annually"
)

// PayFrequencies lists every frequency from most to least frequent.
var PayFrequencies = []PayFrequency{Weekly, Biweekly, Semimonthly, Monthly, Quarterly, Annually}

// PeriodsPerYear returns the number of pay periods, or 0 if f is unknown.
func (f PayFrequency) PeriodsPerYear() int {
	switch f {
	case Weekly:
		return 52
	case Biweekly:
		return 26
	case Semimonthly:
		return 24
	case Monthly:
		return 12
	case Quarterly:
		return 4
	case Annually:
		return 1
	}
	return 0
}

// Valid reports whether f is a known frequency.
func (f PayFrequency) Valid() bool { return f.PeriodsPerYear() > 0 }

// ParsePayFrequency reads a frequency name.
func ParsePayFrequency(s string) (PayFrequency, error) {
	norm := strings.ReplaceAll(normalizeEnum(s), "_", "")
	switch norm {
	case "annual", "yearly":
		norm = string(Annually)
	case "fortnightly":
		norm = string(Biweekly)
	}
	f := PayFrequency(norm)
	if !f.Valid() {
		return "", fmt.Errorf("%w: unknown pay frequency %q", ErrInvalidInput, s)
	}
	return f, nil
}

func normalizeEnum(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("-", "_", " ", "_").Replace(s)
}

// WithholdingProfile mirrors a W-4 election.
type WithholdingProfile struct {
	FilingStatus     FilingStatus    `json:"filing_status"`
	MultipleJobs     bool            `json:"multiple_jobs"`
	ClaimDependents  decimal.Decimal `json:"claim_dependents"`
	OtherIncome      decimal.Decimal `json:"other_income"`
	Deductions       decimal.Decimal `json:"deductions"`
	ExtraWithholding decimal.Decimal `json:"extra_withholding"`
	// StandardAllowance also subtracts the standard deduction from wages
	// before the brackets apply, as the IRS percentage-method tables do.
	// Off by default.
	StandardAllowance bool `json:"standard_allowance"`
}

func (p WithholdingProfile) validate() error {
	if !p.FilingStatus.Valid() {
		return invalidStatus(p.FilingStatus)
	}
	return nonNegative(
		amount{"claim_dependents", p.ClaimDependents},
		amount{"other_income", p.OtherIncome},
		amount{"deductions", p.Deductions},
		amount{"extra_withholding", p.ExtraWithholding},
	)
}

// IncomeDetails is a full-year income picture. Salary is the annual salary;
// optional amounts are zero when absent.
type IncomeDetails struct {
	Salary               decimal.NullDecimal `json:"salary"`
	PayFrequency         PayFrequency        `json:"pay_frequency"`
	SelfEmploymentIncome decimal.Decimal     `json:"self_employment_income"`
	InvestmentIncome     decimal.Decimal     `json:"investment_income"`
	OtherIncome          decimal.Decimal     `json:"other_income"`
	PreTaxDeductions     decimal.Decimal     `json:"pre_tax_deductions"`
	Retirement401k       decimal.Decimal     `json:"retirement_401k"`
	TraditionalIRA       decimal.Decimal     `json:"traditional_ira"`
	Roth401k             decimal.Decimal     `json:"roth_401k"`
	RothIRA              decimal.Decimal     `json:"roth_ira"`
	HSA                  decimal.Decimal     `json:"hsa"`
	FSA                  decimal.Decimal     `json:"fsa"`
}

// salary returns the salary or zero when it was not supplied.
func (in IncomeDetails) salary() decimal.Decimal {
	if !in.Salary.Valid {
		return decimal.Zero
	}
	return in.Salary.Decimal
}

// preTaxContributions are the amounts that reduce taxable wages: the
// above-the-line adjustments. Roth contributions are after-tax.
func (in IncomeDetails) preTaxContributions() decimal.Decimal {
	return in.PreTaxDeductions.Add(in.Retirement401k).Add(in.TraditionalIRA).Add(in.HSA).Add(in.FSA)
}

func (in IncomeDetails) validateAmounts() error {
	return nonNegative(
		amount{"salary", in.salary()},
		amount{"self_employment_income", in.SelfEmploymentIncome},
		amount{"investment_income", in.InvestmentIncome},
		amount{"other_income", in.OtherIncome},
		amount{"pre_tax_deductions", in.PreTaxDeductions},
		amount{"retirement_401k", in.Retirement401k},
		amount{"traditional_ira", in.TraditionalIRA},
		amount{"roth_401k", in.Roth401k},
		amount{"roth_ira", in.RothIRA},
		amount{"hsa", in.HSA},
		amount{"fsa", in.FSA},
	)
}

// DeductionDetails chooses between the standard deduction and itemizing.
type DeductionDetails struct {
	UseStandardDeduction bool            `json:"use_standard_deduction"`
	MortgageInterest     decimal.Decimal `json:"mortgage_interest"`
	PropertyTaxes        decimal.Decimal `json:"property_taxes"`
	CharitableDonations  decimal.Decimal `json:"charitable_donations"`
	MedicalExpenses      decimal.Decimal `json:"medical_expenses"`
	StudentLoanInterest  decimal.Decimal `json:"student_loan_interest"`
	OtherDeductions      decimal.Decimal `json:"other_deductions"`
}

// Itemized sums the itemized fields.
func (d DeductionDetails) Itemized() decimal.Decimal {
	return d.MortgageInterest.Add(d.PropertyTaxes).Add(d.CharitableDonations).
		Add(d.MedicalExpenses).Add(d.StudentLoanInterest).Add(d.OtherDeductions)
}

func (d DeductionDetails) validate() error {
	return nonNegative(
		amount{"mortgage_interest", d.MortgageInterest},
		amount{"property_taxes", d.PropertyTaxes},
		amount{"charitable_donations", d.CharitableDonations},
		amount{"medical_expenses", d.MedicalExpenses},
		amount{"student_loan_interest", d.StudentLoanInterest},
		amount{"other_deductions", d.OtherDeductions},
	)
}

// CreditDetails are applied dollar-for-dollar against liability.
type CreditDetails struct {
	ChildTaxCredit        decimal.Decimal `json:"child_tax_credit"`
	ChildAndDependentCare decimal.Decimal `json:"child_and_dependent_care"`
	EducationCredits      decimal.Decimal `json:"education_credits"`
	EnergyCredits         decimal.Decimal `json:"energy_credits"`
	OtherCredits          decimal.Decimal `json:"other_credits"`
}

// Total sums every credit.
func (c CreditDetails) Total() decimal.Decimal {
	return c.ChildTaxCredit.Add(c.ChildAndDependentCare).Add(c.EducationCredits).
		Add(c.EnergyCredits).Add(c.OtherCredits)
}

func (c CreditDetails) validate() error {
	return nonNegative(
		amount{"child_tax_credit", c.ChildTaxCredit},
		amount{"child_and_dependent_care", c.ChildAndDependentCare},
		amount{"education_credits", c.EducationCredits},
		amount{"energy_credits", c.EnergyCredits},
		amount{"other_credits", c.OtherCredits},
	)
}

type amount struct {
	field string
	value decimal.Decimal
}

func nonNegative(amounts ...amount) error {
	for _, a := range amounts {
		if a.value.IsNegative() {
			return fmt.Errorf("%w: %s must not be negative, got %s", ErrInvalidInput, a.field, a.value)
		}
	}
	return nil
}

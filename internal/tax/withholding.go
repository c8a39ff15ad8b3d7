package tax

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/taxcalc/internal/money"
)

// WithholdingResult is the per-pay-period withholding picture.
type WithholdingResult struct {
	TaxYear      int          `json:"tax_year"`
	FilingStatus FilingStatus `json:"filing_status"`
	PayFrequency PayFrequency `json:"pay_frequency"`
	PayPeriods   int          `json:"pay_periods"`

	GrossPay           decimal.Decimal `json:"gross_pay"`
	FederalWithholding decimal.Decimal `json:"federal_withholding"`
	SocialSecurity     decimal.Decimal `json:"social_security"`
	Medicare           decimal.Decimal `json:"medicare"`
	TotalTaxes         decimal.Decimal `json:"total_taxes"`
	NetPay             decimal.Decimal `json:"net_pay"`

	AnnualWages        decimal.Decimal `json:"annual_wages"`
	AnnualTaxableWages decimal.Decimal `json:"annual_taxable_wages"`
	MarginalRate       decimal.Decimal `json:"marginal_rate"`

	Annual AnnualProjection `json:"annual"`
}

// AnnualProjection scales per-period figures to a full year.
type AnnualProjection struct {
	Gross         decimal.Decimal `json:"gross"`
	Taxes         decimal.Decimal `json:"taxes"`
	Net           decimal.Decimal `json:"net"`
	EffectiveRate decimal.Decimal `json:"effective_rate"`
}

var two = decimal.NewFromInt(2)

// CalculateWithholding computes withholding for the engine's default year.
func (e *Engine) CalculateWithholding(profile WithholdingProfile, income IncomeDetails) (WithholdingResult, error) {
	return e.CalculateWithholdingForYear(e.defaultYear, profile, income)
}

// CalculateWithholdingForYear computes per-period federal, Social Security and
// Medicare withholding using the percentage method.
//
// Annual wages subject to federal withholding are salary plus the W-4 other
// income, less pre-tax contributions and the W-4 deductions. When the profile
// sets StandardAllowance the filing status's standard deduction comes off as
// well. With the multiple-jobs box checked the bracket thresholds, and any
// allowance, are halved.
func (e *Engine) CalculateWithholdingForYear(year int, profile WithholdingProfile, income IncomeDetails) (WithholdingResult, error) {
	if !income.Salary.Valid {
		return WithholdingResult{}, fmt.Errorf("%w: salary is required", ErrInvalidInput)
	}
	if income.PayFrequency == "" {
		return WithholdingResult{}, fmt.Errorf("%w: pay frequency is required", ErrInvalidInput)
	}
	if !income.PayFrequency.Valid() {
		return WithholdingResult{}, fmt.Errorf("%w: unknown pay frequency %q", ErrInvalidInput, income.PayFrequency)
	}
	if err := income.validateAmounts(); err != nil {
		return WithholdingResult{}, err
	}
	if err := profile.validate(); err != nil {
		return WithholdingResult{}, err
	}

	table, err := e.tables.Year(year)
	if err != nil {
		return WithholdingResult{}, err
	}

	periods := income.PayFrequency.PeriodsPerYear()
	n := decimal.NewFromInt(int64(periods))
	salary := income.Salary.Decimal
	gross := money.Cents(salary.Div(n))

	allowance := decimal.Zero
	if profile.StandardAllowance {
		allowance = table.StandardDeduction[profile.FilingStatus]
	}
	brackets := table.Brackets[profile.FilingStatus]
	if profile.MultipleJobs {
		allowance = allowance.Div(two)
		brackets = brackets.Halved()
	}

	taxable := money.FloorZero(money.Sum(salary, profile.OtherIncome).
		Sub(income.preTaxContributions()).
		Sub(profile.Deductions).
		Sub(allowance))

	bracket, err := Progressive(taxable, brackets)
	if err != nil {
		return WithholdingResult{}, err
	}
	annualFederal := money.FloorZero(bracket.Tax.Sub(profile.ClaimDependents))
	federal := money.Cents(annualFederal.Div(n)).Add(profile.ExtraWithholding)

	ssCap := table.SocialSecurityWageBase.Div(n)
	socialSecurity := money.Cents(decimal.Min(gross, ssCap).Mul(table.SocialSecurityRate))

	medicare := gross.Mul(table.MedicareRate)
	if excess := salary.Sub(table.AdditionalMedicareThreshold); excess.IsPositive() {
		medicare = medicare.Add(excess.Mul(table.AdditionalMedicareRate).Div(n))
	}
	medicare = money.Cents(medicare)

	total := money.Sum(federal, socialSecurity, medicare)
	net := gross.Sub(total)

	annual := AnnualProjection{
		Gross: gross.Mul(n),
		Taxes: total.Mul(n),
		Net:   net.Mul(n),
	}
	annual.EffectiveRate = money.Ratio(annual.Taxes, annual.Gross)

	return WithholdingResult{
		TaxYear:            year,
		FilingStatus:       profile.FilingStatus,
		PayFrequency:       income.PayFrequency,
		PayPeriods:         periods,
		GrossPay:           gross,
		FederalWithholding: federal,
		SocialSecurity:     socialSecurity,
		Medicare:           medicare,
		TotalTaxes:         total,
		NetPay:             net,
		AnnualWages:        salary,
		AnnualTaxableWages: money.Cents(taxable),
		MarginalRate:       bracket.MarginalRate,
		Annual:             annual,
	}, nil
}

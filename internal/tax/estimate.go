package tax

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/taxcalc/internal/money"
)

// Breakdown item types.
const (
	BreakdownIncomeTax              = "federal_income_tax"
	BreakdownSelfEmploymentSS       = "self_employment_social_security"
	BreakdownSelfEmploymentMedicare = "self_employment_medicare"
	BreakdownCredits                = "credits"
)

// BreakdownItem is one line of the liability breakdown. Credits appear as a
// negative amount.
type BreakdownItem struct {
	Type   string          `json:"type"`
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
}

// TaxEstimate is the annual liability and refund picture.
type TaxEstimate struct {
	TaxYear      int          `json:"tax_year"`
	FilingStatus FilingStatus `json:"filing_status"`

	TotalIncome       decimal.Decimal `json:"total_income"`
	Adjustments       decimal.Decimal `json:"adjustments"`
	AGI               decimal.Decimal `json:"agi"`
	StandardDeduction bool            `json:"standard_deduction"`
	TotalDeductions   decimal.Decimal `json:"total_deductions"`
	TaxableIncome     decimal.Decimal `json:"taxable_income"`

	IncomeTax         decimal.Decimal `json:"income_tax"`
	SelfEmploymentTax decimal.Decimal `json:"self_employment_tax"`
	TotalCredits      decimal.Decimal `json:"total_credits"`
	TotalLiability    decimal.Decimal `json:"total_liability"`
	WithholdingToDate decimal.Decimal `json:"withholding_to_date"`

	// RefundOrOwed is positive for a refund, negative for an amount owed.
	RefundOrOwed  decimal.Decimal `json:"refund_or_owed"`
	MarginalRate  decimal.Decimal `json:"marginal_rate"`
	EffectiveRate decimal.Decimal `json:"effective_rate"`

	Breakdown []BreakdownItem `json:"breakdown"`
}

// Refund reports whether the estimate ends in a refund.
func (t TaxEstimate) Refund() bool { return t.RefundOrOwed.IsPositive() }

// CalculateTaxEstimate computes a full-year liability estimate. Salary may be
// omitted for filers with no wages; the pay frequency is not used.
func (e *Engine) CalculateTaxEstimate(
	income IncomeDetails,
	deductions DeductionDetails,
	credits CreditDetails,
	status FilingStatus,
	year int,
	withholdingToDate decimal.Decimal,
) (TaxEstimate, error) {
	if !status.Valid() {
		return TaxEstimate{}, invalidStatus(status)
	}
	if err := income.validateAmounts(); err != nil {
		return TaxEstimate{}, err
	}
	if err := deductions.validate(); err != nil {
		return TaxEstimate{}, err
	}
	if err := credits.validate(); err != nil {
		return TaxEstimate{}, err
	}
	if err := nonNegative(amount{"withholding_to_date", withholdingToDate}); err != nil {
		return TaxEstimate{}, err
	}

	table, err := e.tables.Year(year)
	if err != nil {
		return TaxEstimate{}, err
	}

	totalIncome := money.Sum(income.salary(), income.SelfEmploymentIncome, income.InvestmentIncome, income.OtherIncome)
	adjustments := income.preTaxContributions()
	agi := money.FloorZero(totalIncome.Sub(adjustments))

	totalDeductions := deductions.Itemized()
	if deductions.UseStandardDeduction {
		totalDeductions = table.StandardDeduction[status]
	}
	taxable := money.FloorZero(agi.Sub(totalDeductions))

	bracket, err := Progressive(taxable, table.Brackets[status])
	if err != nil {
		return TaxEstimate{}, err
	}

	seSocialSecurity := decimal.Zero
	seMedicare := decimal.Zero
	if se := income.SelfEmploymentIncome; se.IsPositive() {
		seSocialSecurity = money.Cents(decimal.Min(se, table.SocialSecurityWageBase).Mul(table.SelfEmploymentSocialSecurityRate))
		seMedicare = money.Cents(se.Mul(table.SelfEmploymentMedicareRate))
	}
	seTax := seSocialSecurity.Add(seMedicare)

	totalCredits := money.Cents(credits.Total())
	gross := bracket.Tax.Add(seTax)
	applied := decimal.Min(totalCredits, gross)
	liability := money.FloorZero(gross.Sub(totalCredits))
	withheld := money.Cents(withholdingToDate)

	return TaxEstimate{
		TaxYear:           year,
		FilingStatus:      status,
		TotalIncome:       money.Cents(totalIncome),
		Adjustments:       money.Cents(adjustments),
		AGI:               money.Cents(agi),
		StandardDeduction: deductions.UseStandardDeduction,
		TotalDeductions:   money.Cents(totalDeductions),
		TaxableIncome:     money.Cents(taxable),
		IncomeTax:         bracket.Tax,
		SelfEmploymentTax: seTax,
		TotalCredits:      totalCredits,
		TotalLiability:    liability,
		WithholdingToDate: withheld,
		RefundOrOwed:      withheld.Sub(liability),
		MarginalRate:      bracket.MarginalRate,
		EffectiveRate:     money.Ratio(liability, totalIncome),
		Breakdown: []BreakdownItem{
			{Type: BreakdownIncomeTax, Label: "Federal income tax", Amount: bracket.Tax},
			{Type: BreakdownSelfEmploymentSS, Label: "Self-employment Social Security", Amount: seSocialSecurity},
			{Type: BreakdownSelfEmploymentMedicare, Label: "Self-employment Medicare", Amount: seMedicare},
			{Type: BreakdownCredits, Label: "Credits applied", Amount: applied.Neg()},
		},
	}, nil
}

func invalidStatus(status FilingStatus) error {
	return fmt.Errorf("%w: unknown filing status %q", ErrInvalidInput, status)
}

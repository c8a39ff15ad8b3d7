package tax

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/taxcalc/internal/money"
	"github.com/theirongolddev/taxcalc/internal/taxtable"
)

// BracketResult is the outcome of applying a bracket schedule.
type BracketResult struct {
	Tax          decimal.Decimal `json:"tax"`
	MarginalRate decimal.Decimal `json:"marginal_rate"`
}

// Progressive applies marginal-bracket taxation to taxable income. Each
// bracket taxes the slice of income in [Min, min(Max, income)]. The marginal
// rate is the rate of the last bracket that received income, or the lowest
// rate when income is zero.
func Progressive(taxable decimal.Decimal, brackets taxtable.Brackets) (BracketResult, error) {
	if taxable.IsNegative() {
		return BracketResult{}, fmt.Errorf("%w: taxable income must not be negative, got %s", ErrInvalidInput, taxable)
	}
	if err := brackets.Validate(); err != nil {
		return BracketResult{}, err
	}

	tax := decimal.Zero
	marginal := brackets[0].Rate
	for _, b := range brackets {
		if !b.Min.LessThan(taxable) {
			break
		}
		upper := taxable
		if b.Max != nil && b.Max.LessThan(taxable) {
			upper = *b.Max
		}
		tax = tax.Add(upper.Sub(b.Min).Mul(b.Rate))
		marginal = b.Rate
	}

	return BracketResult{Tax: money.Cents(tax), MarginalRate: marginal}, nil
}

// Package projection holds the savings calculators that sit next to the tax
// engine: compound growth with regular contributions and a simple retirement
// nest-egg projection.
package projection

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/taxcalc/internal/money"
)

// ErrInvalidInput is returned for negative amounts and impossible horizons.
var ErrInvalidInput = errors.New("invalid projection input")

var (
	one          = decimal.NewFromInt(1)
	monthsInYear = decimal.NewFromInt(12)
)

// GrowthInput describes a savings account compounding at a fixed rate.
type GrowthInput struct {
	Principal           decimal.Decimal `json:"principal"`
	MonthlyContribution decimal.Decimal `json:"monthly_contribution"`
	AnnualRate          decimal.Decimal `json:"annual_rate"`
	Years               int             `json:"years"`
	// CompoundsPerYear defaults to 12.
	CompoundsPerYear int `json:"compounds_per_year"`
}

// GrowthYear is one row of the schedule. Contributions and Interest are for
// that year only; Balance is the closing balance.
type GrowthYear struct {
	Year          int             `json:"year"`
	Contributions decimal.Decimal `json:"contributions"`
	Interest      decimal.Decimal `json:"interest"`
	Balance       decimal.Decimal `json:"balance"`
}

// GrowthResult is the full schedule plus totals.
type GrowthResult struct {
	Schedule           []GrowthYear    `json:"schedule"`
	FinalBalance       decimal.Decimal `json:"final_balance"`
	TotalContributions decimal.Decimal `json:"total_contributions"`
	TotalInterest      decimal.Decimal `json:"total_interest"`
}

func (in GrowthInput) validate() error {
	if in.Years < 0 {
		return fmt.Errorf("%w: years must not be negative, got %d", ErrInvalidInput, in.Years)
	}
	if in.CompoundsPerYear < 0 {
		return fmt.Errorf("%w: compounds per year must not be negative, got %d", ErrInvalidInput, in.CompoundsPerYear)
	}
	if in.AnnualRate.LessThanOrEqual(one.Neg()) {
		return fmt.Errorf("%w: annual rate must be above -100%%, got %s", ErrInvalidInput, in.AnnualRate)
	}
	return nonNegative(
		field{"principal", in.Principal},
		field{"monthly_contribution", in.MonthlyContribution},
	)
}

// Growth projects the balance year by year. Contributions land at the end of
// each compounding period, after that period's interest is credited.
func Growth(in GrowthInput) (GrowthResult, error) {
	if err := in.validate(); err != nil {
		return GrowthResult{}, err
	}
	periods := in.CompoundsPerYear
	if periods == 0 {
		periods = 12
	}
	n := decimal.NewFromInt(int64(periods))
	periodRate := in.AnnualRate.Div(n)
	periodContribution := in.MonthlyContribution.Mul(monthsInYear).Div(n)

	balance := in.Principal
	var totalContrib, totalInterest decimal.Decimal
	schedule := make([]GrowthYear, 0, in.Years)

	for year := 1; year <= in.Years; year++ {
		var contrib, interest decimal.Decimal
		for p := 0; p < periods; p++ {
			earned := balance.Mul(periodRate)
			balance = balance.Add(earned).Add(periodContribution)
			interest = interest.Add(earned)
			contrib = contrib.Add(periodContribution)
		}
		totalContrib = totalContrib.Add(contrib)
		totalInterest = totalInterest.Add(interest)
		schedule = append(schedule, GrowthYear{
			Year:          year,
			Contributions: money.Cents(contrib),
			Interest:      money.Cents(interest),
			Balance:       money.Cents(balance),
		})
	}

	return GrowthResult{
		Schedule:           schedule,
		FinalBalance:       money.Cents(balance),
		TotalContributions: money.Cents(totalContrib),
		TotalInterest:      money.Cents(totalInterest),
	}, nil
}

type field struct {
	name  string
	value decimal.Decimal
}

func nonNegative(fields ...field) error {
	for _, f := range fields {
		if f.value.IsNegative() {
			return fmt.Errorf("%w: %s must not be negative, got %s", ErrInvalidInput, f.name, f.value)
		}
	}
	return nil
}

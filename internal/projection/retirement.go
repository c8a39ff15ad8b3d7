package projection

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/taxcalc/internal/money"
)

// RetirementInput describes savings growing annually until retirement.
type RetirementInput struct {
	CurrentAge         int             `json:"current_age"`
	RetirementAge      int             `json:"retirement_age"`
	CurrentSavings     decimal.Decimal `json:"current_savings"`
	AnnualContribution decimal.Decimal `json:"annual_contribution"`
	ExpectedReturn     decimal.Decimal `json:"expected_return"`
	Inflation          decimal.Decimal `json:"inflation"`
	// WithdrawalRate is the share of the nest egg drawn each year, e.g. 0.04.
	WithdrawalRate decimal.Decimal `json:"withdrawal_rate"`
}

// RetirementResult reports the nest egg in nominal dollars and in today's
// dollars, and the income it would sustain at the withdrawal rate.
type RetirementResult struct {
	YearsToRetirement  int             `json:"years_to_retirement"`
	TotalContributions decimal.Decimal `json:"total_contributions"`
	NestEgg            decimal.Decimal `json:"nest_egg"`
	RealNestEgg        decimal.Decimal `json:"real_nest_egg"`
	AnnualIncome       decimal.Decimal `json:"annual_income"`
	RealAnnualIncome   decimal.Decimal `json:"real_annual_income"`
}

func (in RetirementInput) validate() error {
	if in.CurrentAge < 0 {
		return fmt.Errorf("%w: current age must not be negative, got %d", ErrInvalidInput, in.CurrentAge)
	}
	if in.RetirementAge < in.CurrentAge {
		return fmt.Errorf("%w: retirement age %d is before current age %d", ErrInvalidInput, in.RetirementAge, in.CurrentAge)
	}
	if in.ExpectedReturn.LessThanOrEqual(one.Neg()) {
		return fmt.Errorf("%w: expected return must be above -100%%, got %s", ErrInvalidInput, in.ExpectedReturn)
	}
	if in.Inflation.LessThanOrEqual(one.Neg()) {
		return fmt.Errorf("%w: inflation must be above -100%%, got %s", ErrInvalidInput, in.Inflation)
	}
	if in.WithdrawalRate.GreaterThan(one) {
		return fmt.Errorf("%w: withdrawal rate must not exceed 100%%, got %s", ErrInvalidInput, in.WithdrawalRate)
	}
	return nonNegative(
		field{"current_savings", in.CurrentSavings},
		field{"annual_contribution", in.AnnualContribution},
		field{"withdrawal_rate", in.WithdrawalRate},
	)
}

// Retirement compounds savings once a year, adding the contribution at the
// end of each year, and deflates the result back to today's dollars.
func Retirement(in RetirementInput) (RetirementResult, error) {
	if err := in.validate(); err != nil {
		return RetirementResult{}, err
	}
	years := in.RetirementAge - in.CurrentAge
	growth := one.Add(in.ExpectedReturn)
	inflation := one.Add(in.Inflation)

	balance := in.CurrentSavings
	deflator := one
	for y := 0; y < years; y++ {
		balance = balance.Mul(growth).Add(in.AnnualContribution)
		deflator = deflator.Mul(inflation)
	}
	today := balance.Div(deflator)

	return RetirementResult{
		YearsToRetirement:  years,
		TotalContributions: money.Cents(in.AnnualContribution.Mul(decimal.NewFromInt(int64(years)))),
		NestEgg:            money.Cents(balance),
		RealNestEgg:        money.Cents(today),
		AnnualIncome:       money.Cents(balance.Mul(in.WithdrawalRate)),
		RealAnnualIncome:   money.Cents(today.Mul(in.WithdrawalRate)),
	}, nil
}

// Package money provides fixed-point helpers for dollar amounts and rates.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	half    = decimal.New(5, -1)
	hundred = decimal.NewFromInt(100)
)

// RoundHalfUp rounds d to the given number of decimal places, with ties
// going toward positive infinity.
func RoundHalfUp(d decimal.Decimal, places int32) decimal.Decimal {
	return d.Shift(places).Add(half).Floor().Shift(-places)
}

// Cents rounds a dollar amount to the nearest cent.
func Cents(d decimal.Decimal) decimal.Decimal {
	return RoundHalfUp(d, 2)
}

// Rate rounds a fractional rate to four places (0.1234 = 12.34%).
func Rate(d decimal.Decimal) decimal.Decimal {
	return RoundHalfUp(d, 4)
}

// Percent converts a whole-number percentage like 6.2 into the fraction 0.062.
func Percent(p float64) decimal.Decimal {
	return decimal.NewFromFloat(p).Div(hundred)
}

// Sum adds all amounts.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// FloorZero returns d, or zero when d is negative.
func FloorZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Ratio returns num/den rounded as a rate, or zero when den is zero.
func Ratio(num, den decimal.Decimal) decimal.Decimal {
	if den.IsZero() {
		return decimal.Zero
	}
	return Rate(num.Div(den))
}

// Parse reads an amount such as "1234.56", "$1,234.56" or "85k".
func Parse(s string) (decimal.Decimal, error) {
	raw := strings.TrimSpace(s)
	raw = strings.TrimPrefix(raw, "$")
	raw = strings.ReplaceAll(raw, ",", "")
	raw = strings.ReplaceAll(raw, "_", "")

	multiplier := decimal.NewFromInt(1)
	switch {
	case strings.HasSuffix(raw, "k"), strings.HasSuffix(raw, "K"):
		multiplier = decimal.NewFromInt(1_000)
		raw = raw[:len(raw)-1]
	case strings.HasSuffix(raw, "m"), strings.HasSuffix(raw, "M"):
		multiplier = decimal.NewFromInt(1_000_000)
		raw = raw[:len(raw)-1]
	}

	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing amount %q: %w", s, err)
	}
	return d.Mul(multiplier), nil
}

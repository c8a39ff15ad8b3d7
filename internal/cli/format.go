// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/taxcalc/internal/money"
)

var hundred = decimal.NewFromInt(100)

// FormatMoney formats a dollar amount with separators and cents.
// e.g., 1234.5 -> "$1,234.50", -700 -> "-$700.00"
func FormatMoney(d decimal.Decimal) string {
	d = money.Cents(d)
	if d.IsNegative() {
		return "-" + FormatMoney(d.Neg())
	}
	whole := d.IntPart()
	cents := d.Sub(decimal.NewFromInt(whole)).Mul(hundred).IntPart()
	return "$" + FormatNumber(whole) + "." + twoDigits(cents)
}

// FormatWholeMoney formats a dollar amount rounded to whole dollars.
// e.g., 11600 -> "$11,600"
func FormatWholeMoney(d decimal.Decimal) string {
	d = money.RoundHalfUp(d, 0)
	if d.IsNegative() {
		return "-" + FormatWholeMoney(d.Neg())
	}
	return "$" + FormatNumber(d.IntPart())
}

// FormatRate formats a fractional rate as a percentage.
// e.g., 0.22 -> "22%", 0.1634 -> "16.34%"
func FormatRate(r decimal.Decimal) string {
	pct := money.RoundHalfUp(r.Mul(hundred), 2)
	return pct.String() + "%"
}

// FormatRefund describes a refund-or-owed amount in words.
func FormatRefund(d decimal.Decimal) string {
	switch {
	case d.IsPositive():
		return FormatMoney(d) + " refund"
	case d.IsNegative():
		return FormatMoney(d.Neg()) + " owed"
	default:
		return "even"
	}
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

func twoDigits(n int64) string {
	if n < 10 {
		return "0" + strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10)
}

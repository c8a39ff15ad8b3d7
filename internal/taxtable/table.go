// Package taxtable holds versioned per-year federal tax tables and the
// resolver that selects them.
package taxtable

import (
	"errors"
	"fmt"
	"maps"

	"github.com/shopspring/decimal"
)

var (
	// ErrUnsupportedTaxYear is returned when no table exists for a year.
	ErrUnsupportedTaxYear = errors.New("unsupported tax year")
	// ErrInvalidTable is returned when a table breaks the bracket invariants.
	ErrInvalidTable = errors.New("invalid tax table")
)

// FilingStatus selects the bracket table and standard deduction.
type FilingStatus string

const (
	Single            FilingStatus = "single"
	MarriedJointly    FilingStatus = "married_jointly"
	MarriedSeparately FilingStatus = "married_separately"
	HeadOfHousehold   FilingStatus = "head_of_household"
)

// FilingStatuses lists every status in display order.
var FilingStatuses = []FilingStatus{Single, MarriedJointly, MarriedSeparately, HeadOfHousehold}

// Valid reports whether s is one of the known statuses.
func (s FilingStatus) Valid() bool {
	switch s {
	case Single, MarriedJointly, MarriedSeparately, HeadOfHousehold:
		return true
	}
	return false
}

// Label returns a human-readable name.
func (s FilingStatus) Label() string {
	switch s {
	case Single:
		return "Single"
	case MarriedJointly:
		return "Married filing jointly"
	case MarriedSeparately:
		return "Married filing separately"
	case HeadOfHousehold:
		return "Head of household"
	}
	return string(s)
}

// Bracket is one marginal-rate band. Max is nil for the top bracket.
type Bracket struct {
	Rate decimal.Decimal  `json:"rate"`
	Min  decimal.Decimal  `json:"min"`
	Max  *decimal.Decimal `json:"max,omitempty"`
}

// Contains reports whether amount falls in [Min, Max).
func (b Bracket) Contains(amount decimal.Decimal) bool {
	if amount.LessThan(b.Min) {
		return false
	}
	return b.Max == nil || amount.LessThan(*b.Max)
}

// Brackets is an ordered bracket sequence covering [0, inf).
type Brackets []Bracket

// Validate checks that the brackets start at zero, are contiguous with no
// gaps or overlaps, and end with exactly one open-ended bracket.
func (bs Brackets) Validate() error {
	if len(bs) == 0 {
		return fmt.Errorf("%w: no brackets", ErrInvalidTable)
	}
	if !bs[0].Min.IsZero() {
		return fmt.Errorf("%w: first bracket starts at %s, want 0", ErrInvalidTable, bs[0].Min)
	}

	for i, b := range bs {
		if b.Rate.IsNegative() || b.Rate.GreaterThan(decimal.NewFromInt(1)) {
			return fmt.Errorf("%w: bracket %d rate %s outside [0, 1]", ErrInvalidTable, i, b.Rate)
		}
		last := i == len(bs)-1
		if b.Max == nil {
			if !last {
				return fmt.Errorf("%w: bracket %d is open-ended but not last", ErrInvalidTable, i)
			}
			continue
		}
		if last {
			return fmt.Errorf("%w: top bracket must have no maximum", ErrInvalidTable)
		}
		if !b.Max.GreaterThan(b.Min) {
			return fmt.Errorf("%w: bracket %d max %s not above min %s", ErrInvalidTable, i, *b.Max, b.Min)
		}
		if next := bs[i+1]; !next.Min.Equal(*b.Max) {
			return fmt.Errorf("%w: bracket %d ends at %s but bracket %d starts at %s",
				ErrInvalidTable, i, *b.Max, i+1, next.Min)
		}
	}
	return nil
}

// Clone returns a deep copy.
func (bs Brackets) Clone() Brackets {
	if bs == nil {
		return nil
	}
	out := make(Brackets, len(bs))
	for i, b := range bs {
		out[i] = b
		if b.Max != nil {
			m := *b.Max
			out[i].Max = &m
		}
	}
	return out
}

// Halved returns a copy with every threshold divided by two. Used for the
// W-4 multiple-jobs withholding schedule.
func (bs Brackets) Halved() Brackets {
	two := decimal.NewFromInt(2)
	out := make(Brackets, len(bs))
	for i, b := range bs {
		out[i] = Bracket{Rate: b.Rate, Min: b.Min.Div(two)}
		if b.Max != nil {
			m := b.Max.Div(two)
			out[i].Max = &m
		}
	}
	return out
}

// Year is the complete set of federal figures for one tax year.
type Year struct {
	Year              int
	Brackets          map[FilingStatus]Brackets
	StandardDeduction map[FilingStatus]decimal.Decimal

	SocialSecurityWageBase      decimal.Decimal
	SocialSecurityRate          decimal.Decimal
	MedicareRate                decimal.Decimal
	AdditionalMedicareRate      decimal.Decimal
	AdditionalMedicareThreshold decimal.Decimal

	SelfEmploymentSocialSecurityRate decimal.Decimal
	SelfEmploymentMedicareRate       decimal.Decimal
}

// Clone returns a deep copy whose maps and brackets may be edited freely.
func (y Year) Clone() Year {
	out := y
	out.Brackets = make(map[FilingStatus]Brackets, len(y.Brackets))
	for s, bs := range y.Brackets {
		out.Brackets[s] = bs.Clone()
	}
	out.StandardDeduction = maps.Clone(y.StandardDeduction)
	return out
}

// Validate checks every filing status table and the payroll constants.
func (y Year) Validate() error {
	if y.Year <= 0 {
		return fmt.Errorf("%w: missing year", ErrInvalidTable)
	}
	for _, s := range FilingStatuses {
		bs, ok := y.Brackets[s]
		if !ok {
			return fmt.Errorf("%w: %d has no brackets for %s", ErrInvalidTable, y.Year, s)
		}
		if err := bs.Validate(); err != nil {
			return fmt.Errorf("%d %s: %w", y.Year, s, err)
		}
		sd, ok := y.StandardDeduction[s]
		if !ok || sd.IsNegative() {
			return fmt.Errorf("%w: %d has no standard deduction for %s", ErrInvalidTable, y.Year, s)
		}
	}
	for name, d := range map[string]decimal.Decimal{
		"social security wage base":     y.SocialSecurityWageBase,
		"additional medicare threshold": y.AdditionalMedicareThreshold,
	} {
		if !d.IsPositive() {
			return fmt.Errorf("%w: %d %s must be positive", ErrInvalidTable, y.Year, name)
		}
	}
	for name, r := range map[string]decimal.Decimal{
		"social security rate":                 y.SocialSecurityRate,
		"medicare rate":                        y.MedicareRate,
		"additional medicare rate":             y.AdditionalMedicareRate,
		"self-employment social security rate": y.SelfEmploymentSocialSecurityRate,
		"self-employment medicare rate":        y.SelfEmploymentMedicareRate,
	} {
		if r.IsNegative() || r.GreaterThan(decimal.NewFromInt(1)) {
			return fmt.Errorf("%w: %d %s %s outside [0, 1]", ErrInvalidTable, y.Year, name, r)
		}
	}
	return nil
}

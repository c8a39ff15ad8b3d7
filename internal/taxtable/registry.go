package taxtable

import (
	"fmt"
	"sort"
)

// Registry resolves tax tables by year. It is immutable once built and safe
// for concurrent use.
type Registry struct {
	years map[int]Year
}

// NewRegistry validates the given years and indexes them. A later entry for
// the same year replaces an earlier one.
func NewRegistry(years ...Year) (*Registry, error) {
	r := &Registry{years: make(map[int]Year, len(years))}
	for _, y := range years {
		if err := y.Validate(); err != nil {
			return nil, err
		}
		r.years[y.Year] = y.Clone()
	}
	return r, nil
}

// Default returns a registry of the built-in tables.
func Default() *Registry {
	r, err := NewRegistry(DefaultYears...)
	if err != nil {
		panic(fmt.Sprintf("built-in tax tables: %v", err))
	}
	return r
}

// With returns a new registry where the given years override r's.
func (r *Registry) With(years ...Year) (*Registry, error) {
	merged := make([]Year, 0, len(r.years)+len(years))
	for _, y := range r.years {
		merged = append(merged, y)
	}
	merged = append(merged, years...)
	return NewRegistry(merged...)
}

// Year returns a copy of the full table for year.
func (r *Registry) Year(year int) (Year, error) {
	y, ok := r.years[year]
	if !ok {
		return Year{}, fmt.Errorf("%w: %d (have %s)", ErrUnsupportedTaxYear, year, r.describeYears())
	}
	return y.Clone(), nil
}

// Brackets returns the bracket sequence for a year and filing status.
func (r *Registry) Brackets(year int, status FilingStatus) (Brackets, error) {
	y, ok := r.years[year]
	if !ok {
		return nil, fmt.Errorf("%w: %d (have %s)", ErrUnsupportedTaxYear, year, r.describeYears())
	}
	bs, ok := y.Brackets[status]
	if !ok {
		return nil, fmt.Errorf("%w: %d has no brackets for %q", ErrInvalidTable, year, status)
	}
	return bs.Clone(), nil
}

// Years lists the supported years in ascending order.
func (r *Registry) Years() []int {
	out := make([]int, 0, len(r.years))
	for y := range r.years {
		out = append(out, y)
	}
	sort.Ints(out)
	return out
}

// Latest returns the most recent supported year, or 0 if empty.
func (r *Registry) Latest() int {
	ys := r.Years()
	if len(ys) == 0 {
		return 0
	}
	return ys[len(ys)-1]
}

func (r *Registry) describeYears() string {
	ys := r.Years()
	switch len(ys) {
	case 0:
		return "none"
	case 1:
		return fmt.Sprintf("%d", ys[0])
	default:
		return fmt.Sprintf("%d-%d", ys[0], ys[len(ys)-1])
	}
}

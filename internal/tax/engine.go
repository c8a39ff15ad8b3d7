package tax

import (
	"github.com/theirongolddev/taxcalc/internal/taxtable"
)

// Engine runs calculations against a table registry. The registry is
// immutable, so an Engine can be shared across goroutines.
type Engine struct {
	tables      *taxtable.Registry
	defaultYear int
}

// NewEngine returns an engine over tables. The default year, used by
// CalculateWithholding, is the latest year the registry knows.
func NewEngine(tables *taxtable.Registry) *Engine {
	return &Engine{tables: tables, defaultYear: tables.Latest()}
}

// Default returns an engine over the built-in tables.
func Default() *Engine {
	return NewEngine(taxtable.Default())
}

// WithDefaultYear returns a copy of e that uses year when none is given.
func (e *Engine) WithDefaultYear(year int) *Engine {
	cp := *e
	cp.defaultYear = year
	return &cp
}

// DefaultYear returns the year used when none is given.
func (e *Engine) DefaultYear() int { return e.defaultYear }

// Tables exposes the registry the engine resolves against.
func (e *Engine) Tables() *taxtable.Registry { return e.tables }

// Brackets resolves the bracket table for a year and filing status.
func (e *Engine) Brackets(year int, status FilingStatus) (taxtable.Brackets, error) {
	if !status.Valid() {
		return nil, invalidStatus(status)
	}
	return e.tables.Brackets(year, status)
}

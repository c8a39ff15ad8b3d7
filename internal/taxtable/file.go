package taxtable

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/theirongolddev/taxcalc/internal/money"
)

// Format identifies a table file encoding.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFromPath picks the format from a file extension, defaulting to TOML.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".json":
		return FormatJSON
	default:
		return FormatTOML
	}
}

type tableFile struct {
	Years []yearDoc `toml:"years" yaml:"years" json:"years"`
}

type yearDoc struct {
	Year              int                     `toml:"year" yaml:"year" json:"year"`
	StandardDeduction map[string]money.Amount `toml:"standard_deduction" yaml:"standard_deduction" json:"standard_deduction"`
	Brackets          map[string][]bracketDoc `toml:"brackets" yaml:"brackets" json:"brackets"`

	SocialSecurityWageBase      money.Amount  `toml:"social_security_wage_base" yaml:"social_security_wage_base" json:"social_security_wage_base"`
	SocialSecurityRate          *money.Amount `toml:"social_security_rate,omitempty" yaml:"social_security_rate,omitempty" json:"social_security_rate,omitempty"`
	MedicareRate                *money.Amount `toml:"medicare_rate,omitempty" yaml:"medicare_rate,omitempty" json:"medicare_rate,omitempty"`
	AdditionalMedicareRate      *money.Amount `toml:"additional_medicare_rate,omitempty" yaml:"additional_medicare_rate,omitempty" json:"additional_medicare_rate,omitempty"`
	AdditionalMedicareThreshold *money.Amount `toml:"additional_medicare_threshold,omitempty" yaml:"additional_medicare_threshold,omitempty" json:"additional_medicare_threshold,omitempty"`

	SelfEmploymentSocialSecurityRate *money.Amount `toml:"self_employment_social_security_rate,omitempty" yaml:"self_employment_social_security_rate,omitempty" json:"self_employment_social_security_rate,omitempty"`
	SelfEmploymentMedicareRate       *money.Amount `toml:"self_employment_medicare_rate,omitempty" yaml:"self_employment_medicare_rate,omitempty" json:"self_employment_medicare_rate,omitempty"`
}

type bracketDoc struct {
	Rate money.Amount  `toml:"rate" yaml:"rate" json:"rate"`
	Min  *money.Amount `toml:"min,omitempty" yaml:"min,omitempty" json:"min,omitempty"`
	Max  *money.Amount `toml:"max,omitempty" yaml:"max,omitempty" json:"max,omitempty"`
}

// LoadFile reads and validates every year in a table file.
func LoadFile(path string) ([]Year, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is supplied by the local user
	if err != nil {
		return nil, fmt.Errorf("reading tables: %w", err)
	}
	years, err := Decode(bytes.NewReader(data), FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return years, nil
}

// Decode parses a table document. Payroll rates left out of a year default
// to the current statutory values.
func Decode(r io.Reader, format Format) ([]Year, error) {
	var doc tableFile
	var err error
	switch format {
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(&doc)
	case FormatJSON:
		err = json.NewDecoder(r).Decode(&doc)
	default:
		_, err = toml.NewDecoder(r).Decode(&doc)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing tables: %w", err)
	}
	if len(doc.Years) == 0 {
		return nil, fmt.Errorf("%w: no years defined", ErrInvalidTable)
	}

	years := make([]Year, 0, len(doc.Years))
	for _, yd := range doc.Years {
		y, err := yd.toYear()
		if err != nil {
			return nil, err
		}
		if err := y.Validate(); err != nil {
			return nil, err
		}
		years = append(years, y)
	}
	return years, nil
}

// Encode writes years in the given format, suitable for Decode.
func Encode(w io.Writer, format Format, years ...Year) error {
	doc := tableFile{Years: make([]yearDoc, 0, len(years))}
	for _, y := range years {
		doc.Years = append(doc.Years, fromYear(y))
	}

	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	default:
		return toml.NewEncoder(w).Encode(doc)
	}
}

func (yd yearDoc) toYear() (Year, error) {
	y := payroll(Year{Year: yd.Year}, 1)
	y.SocialSecurityWageBase = yd.SocialSecurityWageBase.Decimal
	override(&y.SocialSecurityRate, yd.SocialSecurityRate)
	override(&y.MedicareRate, yd.MedicareRate)
	override(&y.AdditionalMedicareRate, yd.AdditionalMedicareRate)
	override(&y.AdditionalMedicareThreshold, yd.AdditionalMedicareThreshold)
	override(&y.SelfEmploymentSocialSecurityRate, yd.SelfEmploymentSocialSecurityRate)
	override(&y.SelfEmploymentMedicareRate, yd.SelfEmploymentMedicareRate)

	y.StandardDeduction = make(map[FilingStatus]decimal.Decimal, len(yd.StandardDeduction))
	for key, amt := range yd.StandardDeduction {
		status := FilingStatus(key)
		if !status.Valid() {
			return Year{}, fmt.Errorf("%w: %d unknown filing status %q", ErrInvalidTable, yd.Year, key)
		}
		y.StandardDeduction[status] = amt.Decimal
	}

	y.Brackets = make(map[FilingStatus]Brackets, len(yd.Brackets))
	for key, docs := range yd.Brackets {
		status := FilingStatus(key)
		if !status.Valid() {
			return Year{}, fmt.Errorf("%w: %d unknown filing status %q", ErrInvalidTable, yd.Year, key)
		}
		bs := make(Brackets, len(docs))
		lower := decimal.Zero
		for i, bd := range docs {
			bs[i] = Bracket{Rate: bd.Rate.Decimal, Min: lower}
			if bd.Min != nil {
				bs[i].Min = bd.Min.Decimal
			}
			if bd.Max != nil {
				m := bd.Max.Decimal
				bs[i].Max = &m
				lower = m
			}
		}
		y.Brackets[status] = bs
	}
	return y, nil
}

func fromYear(y Year) yearDoc {
	yd := yearDoc{
		Year:                             y.Year,
		StandardDeduction:                make(map[string]money.Amount, len(y.StandardDeduction)),
		Brackets:                         make(map[string][]bracketDoc, len(y.Brackets)),
		SocialSecurityWageBase:           money.NewAmount(y.SocialSecurityWageBase),
		SocialSecurityRate:               amountPtr(y.SocialSecurityRate),
		MedicareRate:                     amountPtr(y.MedicareRate),
		AdditionalMedicareRate:           amountPtr(y.AdditionalMedicareRate),
		AdditionalMedicareThreshold:      amountPtr(y.AdditionalMedicareThreshold),
		SelfEmploymentSocialSecurityRate: amountPtr(y.SelfEmploymentSocialSecurityRate),
		SelfEmploymentMedicareRate:       amountPtr(y.SelfEmploymentMedicareRate),
	}
	for status, sd := range y.StandardDeduction {
		yd.StandardDeduction[string(status)] = money.NewAmount(sd)
	}
	for status, bs := range y.Brackets {
		docs := make([]bracketDoc, len(bs))
		for i, b := range bs {
			docs[i] = bracketDoc{Rate: money.NewAmount(b.Rate)}
			if b.Max != nil {
				docs[i].Max = amountPtr(*b.Max)
			}
		}
		yd.Brackets[string(status)] = docs
	}
	return yd
}

func override(dst *decimal.Decimal, src *money.Amount) {
	if src != nil {
		*dst = src.Decimal
	}
}

func amountPtr(d decimal.Decimal) *money.Amount {
	a := money.NewAmount(d)
	return &a
}

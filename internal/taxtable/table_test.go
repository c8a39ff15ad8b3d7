package taxtable

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func TestDefaultYears_SatisfyContinuity(t *testing.T) {
	for _, y := range DefaultYears {
		require.NoError(t, y.Validate(), "year %d", y.Year)
		for _, s := range FilingStatuses {
			bs := y.Brackets[s]
			open := 0
			for i, b := range bs {
				if b.Max == nil {
					open++
					continue
				}
				assert.True(t, bs[i+1].Min.Equal(*b.Max), "%d %s bracket %d not contiguous", y.Year, s, i)
			}
			assert.Equal(t, 1, open, "%d %s open-ended brackets", y.Year, s)
			assert.True(t, bs[0].Min.IsZero())
		}
	}
}

func TestBracketsValidate(t *testing.T) {
	tests := []struct {
		name string
		bs   Brackets
		ok   bool
	}{
		{
			name: "valid",
			bs: Brackets{
				{Rate: dec("0.10"), Min: dec("0"), Max: decPtr("100")},
				{Rate: dec("0.20"), Min: dec("100")},
			},
			ok: true,
		},
		{name: "empty", bs: nil},
		{
			name: "gap",
			bs: Brackets{
				{Rate: dec("0.10"), Min: dec("0"), Max: decPtr("100")},
				{Rate: dec("0.20"), Min: dec("150")},
			},
		},
		{
			name: "overlap",
			bs: Brackets{
				{Rate: dec("0.10"), Min: dec("0"), Max: decPtr("100")},
				{Rate: dec("0.20"), Min: dec("50")},
			},
		},
		{
			name: "no top bracket",
			bs: Brackets{
				{Rate: dec("0.10"), Min: dec("0"), Max: decPtr("100")},
			},
		},
		{
			name: "open bracket in the middle",
			bs: Brackets{
				{Rate: dec("0.10"), Min: dec("0")},
				{Rate: dec("0.20"), Min: dec("100")},
			},
		},
		{
			name: "does not start at zero",
			bs: Brackets{
				{Rate: dec("0.10"), Min: dec("1")},
			},
		},
		{
			name: "rate above one",
			bs: Brackets{
				{Rate: dec("1.5"), Min: dec("0")},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.bs.Validate()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidTable)
		})
	}
}

func TestHalved(t *testing.T) {
	bs := federalBrackets(11600, 47150, 100525, 191950, 243725, 609350)
	h := bs.Halved()
	require.NoError(t, h.Validate())
	assert.True(t, h[0].Max.Equal(dec("5800")))
	assert.True(t, h[1].Min.Equal(dec("5800")))
	assert.Nil(t, h[len(h)-1].Max)
	// original untouched
	assert.True(t, bs[0].Max.Equal(dec("11600")))
}

func TestRegistry_UnknownYear(t *testing.T) {
	r := Default()
	_, err := r.Brackets(1999, Single)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedTaxYear))
	assert.Contains(t, err.Error(), "2023-2026")
}

func TestRegistry_WithOverridesYear(t *testing.T) {
	base := Default()
	custom := payroll(Year{
		Year: 2024,
		Brackets: map[FilingStatus]Brackets{
			Single:            federalBrackets(1, 2, 3, 4, 5, 6),
			MarriedJointly:    federalBrackets(1, 2, 3, 4, 5, 6),
			MarriedSeparately: federalBrackets(1, 2, 3, 4, 5, 6),
			HeadOfHousehold:   federalBrackets(1, 2, 3, 4, 5, 6),
		},
		StandardDeduction: deductions(1, 2, 1, 2),
	}, 100)

	r, err := base.With(custom)
	require.NoError(t, err)

	bs, err := r.Brackets(2024, Single)
	require.NoError(t, err)
	assert.True(t, bs[0].Max.Equal(dec("1")))

	// base registry is not mutated
	bs, err = base.Brackets(2024, Single)
	require.NoError(t, err)
	assert.True(t, bs[0].Max.Equal(dec("11600")))

	assert.Equal(t, []int{2023, 2024, 2025, 2026}, r.Years())
	assert.Equal(t, 2026, r.Latest())
}

func TestRegistry_YearReturnsCopy(t *testing.T) {
	r := Default()
	y, err := r.Year(2024)
	require.NoError(t, err)

	y.StandardDeduction[Single] = dec("1")
	y.Brackets[Single][0].Rate = dec("0.99")
	*y.Brackets[Single][0].Max = dec("5")

	again, err := r.Year(2024)
	require.NoError(t, err)
	assert.True(t, again.StandardDeduction[Single].Equal(dec("14600")))
	assert.True(t, again.Brackets[Single][0].Rate.Equal(dec("0.10")))
	assert.True(t, again.Brackets[Single][0].Max.Equal(dec("11600")))
}

func TestRegistry_RejectsInvalidYear(t *testing.T) {
	bad := payroll(Year{Year: 2030}, 100)
	_, err := NewRegistry(bad)
	assert.ErrorIs(t, err, ErrInvalidTable)
}

const tomlTables = `
[[years]]
year = 2027
social_security_wage_base = 190000

[years.standard_deduction]
single = "16500"
married_jointly = 33000
married_separately = "16,500"
head_of_household = "24.75k"

[[years.brackets.single]]
rate = 0.10
max = 12800

[[years.brackets.single]]
rate = 0.25

[[years.brackets.married_jointly]]
rate = "0.10"
max = 25600

[[years.brackets.married_jointly]]
rate = "0.25"

[[years.brackets.married_separately]]
rate = 0.1
max = 12800

[[years.brackets.married_separately]]
rate = 0.25

[[years.brackets.head_of_household]]
rate = 0.1
max = 18000

[[years.brackets.head_of_household]]
rate = 0.25
`

func TestDecodeTOML(t *testing.T) {
	years, err := Decode(strings.NewReader(tomlTables), FormatTOML)
	require.NoError(t, err)
	require.Len(t, years, 1)

	y := years[0]
	assert.Equal(t, 2027, y.Year)
	assert.True(t, y.StandardDeduction[HeadOfHousehold].Equal(dec("24750")))
	assert.True(t, y.StandardDeduction[MarriedSeparately].Equal(dec("16500")))
	assert.True(t, y.SocialSecurityRate.Equal(dec("0.062")), "default payroll rate applied")

	single := y.Brackets[Single]
	require.Len(t, single, 2)
	assert.True(t, single[1].Min.Equal(dec("12800")), "min inferred from previous max")
	assert.Nil(t, single[1].Max)
}

func TestDecodeYAML(t *testing.T) {
	doc := `
years:
  - year: 2027
    social_security_wage_base: 190000
    medicare_rate: "0.015"
    standard_deduction:
      single: 16500
      married_jointly: 33000
      married_separately: 16500
      head_of_household: 24750
    brackets:
      single: [{rate: 0.1, max: 12800}, {rate: 0.25}]
      married_jointly: [{rate: 0.1, max: 25600}, {rate: 0.25}]
      married_separately: [{rate: 0.1, max: 12800}, {rate: 0.25}]
      head_of_household: [{rate: 0.1, max: 18000}, {rate: 0.25}]
`
	years, err := Decode(strings.NewReader(doc), FormatYAML)
	require.NoError(t, err)
	require.Len(t, years, 1)
	assert.True(t, years[0].MedicareRate.Equal(dec("0.015")))
}

func TestDecode_UnknownStatus(t *testing.T) {
	doc := strings.Replace(tomlTables, "[years.standard_deduction]\nsingle", "[years.standard_deduction]\nwidowed", 1)
	_, err := Decode(strings.NewReader(doc), FormatTOML)
	assert.ErrorIs(t, err, ErrInvalidTable)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for _, format := range []Format{FormatTOML, FormatYAML, FormatJSON} {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Encode(&buf, format, DefaultYears[1]))

			years, err := Decode(&buf, format)
			require.NoError(t, err)
			require.Len(t, years, 1)

			got := years[0]
			assert.Equal(t, 2024, got.Year)
			assert.True(t, got.SocialSecurityWageBase.Equal(dec("168600")))
			assert.True(t, got.StandardDeduction[MarriedJointly].Equal(dec("29200")))
			top := got.Brackets[HeadOfHousehold]
			assert.True(t, top[len(top)-1].Min.Equal(dec("609350")))
		})
	}
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, FormatYAML, FormatFromPath("tables.YML"))
	assert.Equal(t, FormatJSON, FormatFromPath("/tmp/t.json"))
	assert.Equal(t, FormatTOML, FormatFromPath("t.toml"))
	assert.Equal(t, FormatTOML, FormatFromPath("noext"))
}

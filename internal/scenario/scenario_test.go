package scenario

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/taxcalc/internal/tax"
	"github.com/theirongolddev/taxcalc/internal/taxtable"
)

const tomlScenario = `
name = "two earners"
tax_year = 2024
filing_status = "married-jointly"
withholding_to_date = "18,500"

[profile]
multiple_jobs = true
claim_dependents = 4000
extra_withholding = "50"

[income]
salary = "95k"
pay_frequency = "biweekly"
retirement_401k = 12000
hsa = 4150
investment_income = "1200.75"

[deductions]
use_standard_deduction = false
mortgage_interest = 14000
property_taxes = 6500

[credits]
child_tax_credit = 4000
`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_TOML(t *testing.T) {
	s, err := Load(writeFile(t, "household.toml", tomlScenario))
	require.NoError(t, err)

	in, err := s.Inputs(2025)
	require.NoError(t, err)

	assert.Equal(t, 2024, in.TaxYear)
	assert.Equal(t, tax.MarriedJointly, in.FilingStatus)
	assert.Equal(t, tax.MarriedJointly, in.Profile.FilingStatus)
	assert.True(t, in.Profile.MultipleJobs)
	assert.True(t, in.Profile.ClaimDependents.Equal(decimal.NewFromInt(4000)))
	assert.True(t, in.Income.Salary.Valid)
	assert.True(t, in.Income.Salary.Decimal.Equal(decimal.NewFromInt(95000)))
	assert.Equal(t, tax.Biweekly, in.Income.PayFrequency)
	assert.True(t, in.Income.InvestmentIncome.Equal(decimal.RequireFromString("1200.75")))
	assert.False(t, in.Deductions.UseStandardDeduction)
	assert.True(t, in.Deductions.Itemized().Equal(decimal.NewFromInt(20500)))
	assert.True(t, in.WithholdingToDate.Equal(decimal.NewFromInt(18500)))
}

func TestLoad_YAMLAndJSONMatchTOML(t *testing.T) {
	yamlBody := `
tax_year: 2024
filing_status: married_jointly
withholding_to_date: 18500
profile:
  multiple_jobs: true
  claim_dependents: 4000
  extra_withholding: 50
income:
  salary: 95000
  pay_frequency: biweekly
  retirement_401k: 12000
  hsa: 4150
  investment_income: 1200.75
deductions:
  use_standard_deduction: false
  mortgage_interest: 14000
  property_taxes: 6500
credits:
  child_tax_credit: 4000
`
	jsonBody := `{
  "tax_year": 2024,
  "filing_status": "married_jointly",
  "withholding_to_date": 18500,
  "profile": {"multiple_jobs": true, "claim_dependents": 4000, "extra_withholding": "50"},
  "income": {"salary": 95000, "pay_frequency": "biweekly", "retirement_401k": 12000, "hsa": 4150, "investment_income": "1200.75"},
  "deductions": {"use_standard_deduction": false, "mortgage_interest": 14000, "property_taxes": 6500},
  "credits": {"child_tax_credit": 4000}
}`

	fromTOML, err := Load(writeFile(t, "s.toml", tomlScenario))
	require.NoError(t, err)
	want, err := fromTOML.Inputs(0)
	require.NoError(t, err)

	engine := tax.Default()
	wantEstimate, err := engine.CalculateTaxEstimate(want.Income, want.Deductions, want.Credits, want.FilingStatus, want.TaxYear, want.WithholdingToDate)
	require.NoError(t, err)

	for name, body := range map[string]string{"s.yaml": yamlBody, "s.json": jsonBody} {
		t.Run(name, func(t *testing.T) {
			s, err := Load(writeFile(t, name, body))
			require.NoError(t, err)
			got, err := s.Inputs(0)
			require.NoError(t, err)

			estimate, err := engine.CalculateTaxEstimate(got.Income, got.Deductions, got.Credits, got.FilingStatus, got.TaxYear, got.WithholdingToDate)
			require.NoError(t, err)
			assert.True(t, estimate.TotalLiability.Equal(wantEstimate.TotalLiability))
			assert.True(t, estimate.RefundOrOwed.Equal(wantEstimate.RefundOrOwed))
		})
	}
}

func TestInputs_Defaults(t *testing.T) {
	s, err := Decode(strings.NewReader(`filing_status = "single"`), taxtable.FormatTOML)
	require.NoError(t, err)

	in, err := s.Inputs(2025)
	require.NoError(t, err)
	assert.Equal(t, 2025, in.TaxYear)
	assert.Equal(t, tax.Single, in.Profile.FilingStatus)
	assert.True(t, in.Deductions.UseStandardDeduction)
	assert.False(t, in.Income.Salary.Valid)
	assert.Equal(t, tax.PayFrequency(""), in.Income.PayFrequency)
	assert.True(t, in.WithholdingToDate.IsZero())
}

func TestInputs_SeparateW4Status(t *testing.T) {
	s := Scenario{FilingStatus: "married_jointly", Profile: Profile{FilingStatus: "single"}}
	in, err := s.Inputs(2024)
	require.NoError(t, err)
	assert.Equal(t, tax.MarriedJointly, in.FilingStatus)
	assert.Equal(t, tax.Single, in.Profile.FilingStatus)
}

func TestInputs_InvalidEnums(t *testing.T) {
	tests := map[string]Scenario{
		"status":    {FilingStatus: "widowed"},
		"missing":   {},
		"w4 status": {FilingStatus: "single", Profile: Profile{FilingStatus: "nope"}},
		"frequency": {FilingStatus: "single", Income: Income{PayFrequency: "daily"}},
	}
	for name, s := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := s.Inputs(2024)
			assert.ErrorIs(t, err, tax.ErrInvalidInput)
		})
	}
}

func TestDecode_RejectsUnknownKeys(t *testing.T) {
	_, err := Decode(strings.NewReader("filing_status = \"single\"\n[income]\nsalery = 1000\n"), taxtable.FormatTOML)
	require.ErrorIs(t, err, ErrUnknownField)
	assert.Contains(t, err.Error(), "income.salery")

	_, err = Decode(strings.NewReader("filing_status: single\nincome:\n  salery: 1000\n"), taxtable.FormatYAML)
	assert.Error(t, err)

	_, err = Decode(strings.NewReader(`{"filing_status": "single", "income": {"salery": 1000}}`), taxtable.FormatJSON)
	assert.Error(t, err)
}

func TestDecode_BadAmount(t *testing.T) {
	_, err := Decode(strings.NewReader("filing_status = \"single\"\nwithholding_to_date = \"lots\"\n"), taxtable.FormatTOML)
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

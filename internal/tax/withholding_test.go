package tax

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func salary(s string) decimal.NullDecimal { return decimal.NewNullDecimal(dec(s)) }

func engine2024() *Engine { return Default().WithDefaultYear(2024) }

func TestCalculateWithholding_MonthlySingle(t *testing.T) {
	got, err := engine2024().CalculateWithholding(
		WithholdingProfile{FilingStatus: Single},
		IncomeDetails{Salary: salary("60000"), PayFrequency: Monthly},
	)
	require.NoError(t, err)

	assert.Equal(t, 12, got.PayPeriods)
	assert.Equal(t, 2024, got.TaxYear)
	assertMoney(t, "60000", got.AnnualWages, "AnnualWages")
	assertMoney(t, "5000", got.GrossPay, "GrossPay")
	// 60000 taxed at 2024 single rates = 8253 / 12
	assertMoney(t, "60000", got.AnnualTaxableWages, "AnnualTaxableWages")
	assertMoney(t, "687.75", got.FederalWithholding, "FederalWithholding")
	assertMoney(t, "310", got.SocialSecurity, "SocialSecurity")
	assertMoney(t, "72.50", got.Medicare, "Medicare")
	assertMoney(t, "1070.25", got.TotalTaxes, "TotalTaxes")
	assertMoney(t, "3929.75", got.NetPay, "NetPay")

	assertMoney(t, "60000", got.Annual.Gross, "Annual.Gross")
	assertMoney(t, "12843", got.Annual.Taxes, "Annual.Taxes")
	assertMoney(t, "47157", got.Annual.Net, "Annual.Net")
	assert.True(t, got.Annual.EffectiveRate.Equal(dec("0.2141")), "EffectiveRate = %s", got.Annual.EffectiveRate)
	assert.True(t, got.MarginalRate.Equal(dec("0.22")))
}

func TestCalculateWithholding_TaxableWagesFormula(t *testing.T) {
	e := engine2024()
	bs, err := e.Brackets(2024, Single)
	require.NoError(t, err)

	tests := []struct {
		name    string
		salary  string
		income  IncomeDetails
		w4      string
		taxable string
	}{
		{"salary only", "60000", IncomeDetails{}, "0", "60000"},
		{"pre-tax contributions", "85000", IncomeDetails{Retirement401k: dec("9000"), TraditionalIRA: dec("1000"), HSA: dec("3000"), FSA: dec("500"), PreTaxDeductions: dec("1500")}, "0", "70000"},
		{"w4 deductions", "85000", IncomeDetails{Retirement401k: dec("5000")}, "12000", "68000"},
		{"floored at zero", "4000", IncomeDetails{HSA: dec("3000")}, "2000", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			income := tt.income
			income.Salary = salary(tt.salary)
			income.PayFrequency = Monthly

			got, err := e.CalculateWithholding(WithholdingProfile{FilingStatus: Single, Deductions: dec(tt.w4)}, income)
			require.NoError(t, err)
			assertMoney(t, tt.taxable, got.AnnualTaxableWages, "AnnualTaxableWages")

			annual, err := Progressive(dec(tt.taxable), bs)
			require.NoError(t, err)
			want := annual.Tax.Div(decimal.NewFromInt(12)).Round(2)
			assertMoney(t, want.String(), got.FederalWithholding, "FederalWithholding")
		})
	}
}

func TestCalculateWithholding_StandardAllowance(t *testing.T) {
	e := engine2024()
	income := IncomeDetails{Salary: salary("60000"), PayFrequency: Monthly}

	got, err := e.CalculateWithholding(WithholdingProfile{FilingStatus: Single, StandardAllowance: true}, income)
	require.NoError(t, err)
	// (60000 - 14600) taxed at 2024 single rates = 5216 / 12
	assertMoney(t, "45400", got.AnnualTaxableWages, "AnnualTaxableWages")
	assertMoney(t, "434.67", got.FederalWithholding, "FederalWithholding")

	multi, err := e.CalculateWithholding(WithholdingProfile{FilingStatus: Single, StandardAllowance: true, MultipleJobs: true}, income)
	require.NoError(t, err)
	// allowance and thresholds both halved
	assertMoney(t, "52700", multi.AnnualTaxableWages, "AnnualTaxableWages")
	assertMoney(t, "764.10", multi.FederalWithholding, "FederalWithholding")
}

func TestCalculateWithholding_MultipleJobsUsesHalvedSchedule(t *testing.T) {
	e := engine2024()
	income := IncomeDetails{Salary: salary("60000"), PayFrequency: Monthly}

	single, err := e.CalculateWithholding(WithholdingProfile{FilingStatus: Single}, income)
	require.NoError(t, err)
	multi, err := e.CalculateWithholding(WithholdingProfile{FilingStatus: Single, MultipleJobs: true}, income)
	require.NoError(t, err)

	// 580 + 2133 + 5871.25 + 2337 over thresholds 5800/23575/50262.50
	assertMoney(t, "60000", multi.AnnualTaxableWages, "AnnualTaxableWages")
	assertMoney(t, "910.10", multi.FederalWithholding, "FederalWithholding")
	assert.True(t, multi.MarginalRate.Equal(dec("0.24")))
	assert.True(t, multi.FederalWithholding.GreaterThan(single.FederalWithholding))
	assert.True(t, multi.SocialSecurity.Equal(single.SocialSecurity), "FICA does not depend on W-4")
}

func TestCalculateWithholding_SocialSecurityCapAndAdditionalMedicare(t *testing.T) {
	got, err := engine2024().CalculateWithholding(
		WithholdingProfile{FilingStatus: Single},
		IncomeDetails{Salary: salary("240000"), PayFrequency: Biweekly},
	)
	require.NoError(t, err)

	assertMoney(t, "9230.77", got.GrossPay, "GrossPay")
	// min(gross, 168600/26) * 6.2%
	assertMoney(t, "402.05", got.SocialSecurity, "SocialSecurity")
	// gross * 1.45% + (240000-200000) * 0.9% / 26
	assertMoney(t, "147.69", got.Medicare, "Medicare")
}

func TestCalculateWithholding_W4Adjustments(t *testing.T) {
	got, err := engine2024().CalculateWithholding(
		WithholdingProfile{
			FilingStatus:     Single,
			ClaimDependents:  dec("2000"),
			ExtraWithholding: dec("25"),
		},
		IncomeDetails{Salary: salary("60000"), PayFrequency: Monthly},
	)
	require.NoError(t, err)
	// (8253 - 2000) / 12 + 25
	assertMoney(t, "546.08", got.FederalWithholding, "FederalWithholding")
}

func TestCalculateWithholding_PreTaxAndOtherIncome(t *testing.T) {
	got, err := engine2024().CalculateWithholding(
		WithholdingProfile{FilingStatus: Single, OtherIncome: dec("5000"), Deductions: dec("1000")},
		IncomeDetails{
			Salary:           salary("60000"),
			PayFrequency:     Monthly,
			Retirement401k:   dec("6000"),
			HSA:              dec("1000"),
			Roth401k:         dec("3000"),
			PreTaxDeductions: dec("400"),
		},
	)
	require.NoError(t, err)
	// 60000 + 5000 - (6000 + 1000 + 400) - 1000; Roth is after-tax
	assertMoney(t, "56600", got.AnnualTaxableWages, "AnnualTaxableWages")
	assertMoney(t, "5000", got.GrossPay, "GrossPay")
}

func TestCalculateWithholding_LowIncomeWithholdsNoFederal(t *testing.T) {
	got, err := engine2024().CalculateWithholding(
		WithholdingProfile{FilingStatus: MarriedJointly, StandardAllowance: true},
		IncomeDetails{Salary: salary("20000"), PayFrequency: Weekly},
	)
	require.NoError(t, err)
	assert.True(t, got.AnnualTaxableWages.IsZero())
	assert.True(t, got.FederalWithholding.IsZero())
	assert.True(t, got.SocialSecurity.IsPositive())
}

func TestCalculateWithholding_PayFrequencies(t *testing.T) {
	want := map[PayFrequency]string{
		Weekly:      "1000",
		Biweekly:    "2000",
		Semimonthly: "2166.67",
		Monthly:     "4333.33",
		Quarterly:   "13000",
		Annually:    "52000",
	}
	for _, f := range PayFrequencies {
		got, err := engine2024().CalculateWithholding(
			WithholdingProfile{FilingStatus: Single},
			IncomeDetails{Salary: salary("52000"), PayFrequency: f},
		)
		require.NoError(t, err, f)
		assertMoney(t, want[f], got.GrossPay, string(f))
	}
}

func TestCalculateWithholding_InvalidInput(t *testing.T) {
	e := engine2024()
	profile := WithholdingProfile{FilingStatus: Single}

	tests := []struct {
		name    string
		profile WithholdingProfile
		income  IncomeDetails
	}{
		{"missing salary", profile, IncomeDetails{PayFrequency: Monthly}},
		{"missing frequency", profile, IncomeDetails{Salary: salary("60000")}},
		{"unknown frequency", profile, IncomeDetails{Salary: salary("60000"), PayFrequency: "daily"}},
		{"negative salary", profile, IncomeDetails{Salary: salary("-100"), PayFrequency: Monthly}},
		{"negative hsa", profile, IncomeDetails{Salary: salary("60000"), PayFrequency: Monthly, HSA: dec("-1")}},
		{"unknown status", WithholdingProfile{FilingStatus: "widowed"}, IncomeDetails{Salary: salary("60000"), PayFrequency: Monthly}},
		{"negative extra", WithholdingProfile{FilingStatus: Single, ExtraWithholding: dec("-5")}, IncomeDetails{Salary: salary("60000"), PayFrequency: Monthly}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.CalculateWithholding(tt.profile, tt.income)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestCalculateWithholding_UnknownYear(t *testing.T) {
	_, err := Default().CalculateWithholdingForYear(1990,
		WithholdingProfile{FilingStatus: Single},
		IncomeDetails{Salary: salary("60000"), PayFrequency: Monthly},
	)
	assert.ErrorIs(t, err, ErrUnsupportedTaxYear)
}

func TestParsePayFrequency(t *testing.T) {
	tests := map[string]PayFrequency{
		"weekly":       Weekly,
		"Bi-Weekly":    Biweekly,
		"semi-monthly": Semimonthly,
		" MONTHLY ":    Monthly,
		"quarterly":    Quarterly,
		"annual":       Annually,
		"yearly":       Annually,
	}
	for in, want := range tests {
		got, err := ParsePayFrequency(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParsePayFrequency("daily")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

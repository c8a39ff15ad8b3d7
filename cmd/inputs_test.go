package cmd

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/taxcalc/internal/config"
	"github.com/theirongolddev/taxcalc/internal/money"
	"github.com/theirongolddev/taxcalc/internal/tax"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newIncomeCommand(t *testing.T, args ...string) (*cobra.Command, *incomeFlags) {
	t.Helper()
	cfg = config.DefaultConfig()
	var f incomeFlags
	c := &cobra.Command{Use: "test"}
	f.register(c)
	require.NoError(t, c.ParseFlags(args))
	return c, &f
}

func TestAmountValue(t *testing.T) {
	var d decimal.Decimal
	v := amount(&d)
	require.NoError(t, v.Set("$85k"))
	assert.True(t, d.Equal(dec("85000")))
	assert.Equal(t, "85000", v.String())
	assert.Equal(t, "amount", v.Type())
	assert.Error(t, v.Set("lots"))
}

func TestIncomeFlags_DefaultsFromConfig(t *testing.T) {
	c, f := newIncomeCommand(t)
	in, err := f.inputs(c, 2024)
	require.NoError(t, err)

	assert.Equal(t, 2024, in.TaxYear)
	assert.Equal(t, tax.Single, in.FilingStatus)
	assert.Equal(t, tax.Biweekly, in.Income.PayFrequency)
	assert.False(t, in.Income.Salary.Valid)
	assert.True(t, in.Deductions.UseStandardDeduction)
}

func TestIncomeFlags_OnlyChangedFlagsApply(t *testing.T) {
	c, f := newIncomeCommand(t, "--salary", "90k", "--hsa", "4150", "-f", "monthly")
	in, err := f.inputs(c, 2024)
	require.NoError(t, err)

	require.True(t, in.Income.Salary.Valid)
	assert.True(t, in.Income.Salary.Decimal.Equal(dec("90000")))
	assert.True(t, in.Income.HSA.Equal(dec("4150")))
	assert.Equal(t, tax.Monthly, in.Income.PayFrequency)
	assert.True(t, in.Income.FSA.IsZero())
}

func TestIncomeFlags_BadFrequency(t *testing.T) {
	c, f := newIncomeCommand(t, "-f", "daily")
	_, err := f.inputs(c, 2024)
	assert.ErrorIs(t, err, tax.ErrInvalidInput)
}

func TestOverlay(t *testing.T) {
	c := &cobra.Command{Use: "test"}
	var a, b decimal.Decimal
	c.Flags().Var(amount(&a), "a", "")
	c.Flags().Var(amount(&b), "b", "")
	require.NoError(t, c.ParseFlags([]string{"--a", "10"}))

	dstA, dstB := dec("1"), dec("2")
	overlay(c, boundAmount{"a", &a, &dstA}, boundAmount{"b", &b, &dstB})
	assert.True(t, dstA.Equal(dec("10")))
	assert.True(t, dstB.Equal(dec("2")), "unset flag must not clobber")
}

func TestSetupAnswers_Apply(t *testing.T) {
	c := config.DefaultConfig()
	a := answersFrom(c)
	assert.Empty(t, a.year)

	a.year = "2025"
	a.status = string(tax.HeadOfHousehold)
	a.multiple = true
	a.dependents = "2,000"
	a.extra = ""
	require.NoError(t, a.apply(&c))

	assert.Equal(t, 2025, c.General.TaxYear)
	assert.Equal(t, "head_of_household", c.General.FilingStatus)
	assert.True(t, c.Profile.MultipleJobs)
	assert.True(t, c.Profile.ClaimDependents.Equal(dec("2000")))
	assert.Equal(t, money.NewAmount(decimal.Zero).String(), c.Profile.ExtraWithholding.String())
}

func TestSetupValidators(t *testing.T) {
	assert.NoError(t, validYear(""))
	assert.NoError(t, validYear("2026"))
	assert.Error(t, validYear("next"))
	assert.Error(t, validYear("1800"))

	assert.NoError(t, validAmount(""))
	assert.NoError(t, validAmount("1.5k"))
	assert.Error(t, validAmount("-5"))
	assert.Error(t, validAmount("abc"))
}

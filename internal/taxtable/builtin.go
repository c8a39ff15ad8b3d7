package taxtable

import "github.com/shopspring/decimal"

// federalRates are the marginal rates in force since 2018.
var federalRates = []string{"0.10", "0.12", "0.22", "0.24", "0.32", "0.35", "0.37"}

// DefaultYears are the IRS published figures shipped with the binary.
// Newer or corrected figures can be supplied as table files.
var DefaultYears = []Year{
	payroll(Year{
		Year: 2023,
		Brackets: map[FilingStatus]Brackets{
			Single:            federalBrackets(11000, 44725, 95375, 182100, 231250, 578125),
			MarriedJointly:    federalBrackets(22000, 89450, 190750, 364200, 462500, 693750),
			MarriedSeparately: federalBrackets(11000, 44725, 95375, 182100, 231250, 346875),
			HeadOfHousehold:   federalBrackets(15700, 59850, 95350, 182100, 231250, 578100),
		},
		StandardDeduction: deductions(13850, 27700, 13850, 20800),
	}, 160200),
	payroll(Year{
		Year: 2024,
		Brackets: map[FilingStatus]Brackets{
			Single:            federalBrackets(11600, 47150, 100525, 191950, 243725, 609350),
			MarriedJointly:    federalBrackets(23200, 94300, 201050, 383900, 487450, 731200),
			MarriedSeparately: federalBrackets(11600, 47150, 100525, 191950, 243725, 365600),
			HeadOfHousehold:   federalBrackets(16550, 63100, 100500, 191950, 243700, 609350),
		},
		StandardDeduction: deductions(14600, 29200, 14600, 21900),
	}, 168600),
	payroll(Year{
		Year: 2025,
		Brackets: map[FilingStatus]Brackets{
			Single:            federalBrackets(11925, 48475, 103350, 197300, 250525, 626350),
			MarriedJointly:    federalBrackets(23850, 96950, 206700, 394600, 501050, 751600),
			MarriedSeparately: federalBrackets(11925, 48475, 103350, 197300, 250525, 375800),
			HeadOfHousehold:   federalBrackets(17000, 64850, 103350, 197300, 250500, 626350),
		},
		StandardDeduction: deductions(15750, 31500, 15750, 23625),
	}, 176100),
	payroll(Year{
		Year: 2026,
		Brackets: map[FilingStatus]Brackets{
			Single:            federalBrackets(12400, 50400, 105700, 201775, 256225, 640600),
			MarriedJointly:    federalBrackets(24800, 100800, 211400, 403550, 512450, 768700),
			MarriedSeparately: federalBrackets(12400, 50400, 105700, 201775, 256225, 384350),
			HeadOfHousehold:   federalBrackets(17700, 67450, 105700, 201750, 256200, 640600),
		},
		StandardDeduction: deductions(16100, 32200, 16100, 24150),
	}, 184500),
}

// federalBrackets builds the seven-rate schedule from its six upper bounds.
func federalBrackets(bounds ...int64) Brackets {
	bs := make(Brackets, len(federalRates))
	lower := decimal.Zero
	for i, rate := range federalRates {
		bs[i] = Bracket{Rate: decimal.RequireFromString(rate), Min: lower}
		if i < len(bounds) {
			upper := decimal.NewFromInt(bounds[i])
			bs[i].Max = &upper
			lower = upper
		}
	}
	return bs
}

func deductions(single, joint, separate, head int64) map[FilingStatus]decimal.Decimal {
	return map[FilingStatus]decimal.Decimal{
		Single:            decimal.NewFromInt(single),
		MarriedJointly:    decimal.NewFromInt(joint),
		MarriedSeparately: decimal.NewFromInt(separate),
		HeadOfHousehold:   decimal.NewFromInt(head),
	}
}

// payroll fills in FICA figures. Only the wage base changes year to year.
func payroll(y Year, wageBase int64) Year {
	y.SocialSecurityWageBase = decimal.NewFromInt(wageBase)
	y.SocialSecurityRate = decimal.RequireFromString("0.062")
	y.MedicareRate = decimal.RequireFromString("0.0145")
	y.AdditionalMedicareRate = decimal.RequireFromString("0.009")
	y.AdditionalMedicareThreshold = decimal.NewFromInt(200000)
	y.SelfEmploymentSocialSecurityRate = decimal.RequireFromString("0.124")
	y.SelfEmploymentMedicareRate = decimal.RequireFromString("0.029")
	return y
}

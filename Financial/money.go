package Financial

import (
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Round2 rounds a monetary value to the two decimal places used for display
// and persistence. Proportional math is carried at full precision and only
// rounded here, immediately before the value leaves the calculation.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// SafeRatio returns part/whole. A document with a zero (or negative) total
// has no meaningful ratio, so the whole amount is treated as the base.
func SafeRatio(part, whole decimal.Decimal) decimal.Decimal {
	if whole.LessThanOrEqual(decimal.Zero) {
		return decimal.NewFromInt(1)
	}
	return part.Div(whole)
}

// FiscalYearStart returns April 1 of the Indian fiscal year containing date.
func FiscalYearStart(date time.Time) time.Time {
	year := date.Year()
	if date.Month() < time.April {
		year--
	}
	return time.Date(year, time.April, 1, 0, 0, 0, 0, date.Location())
}

// FiscalYearEnd returns March 31 of the fiscal year containing date.
func FiscalYearEnd(date time.Time) time.Time {
	return FiscalYearStart(date).AddDate(1, 0, -1)
}

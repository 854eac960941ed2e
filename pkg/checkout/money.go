package checkout

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/dmitrymomot/checkoutkit/pkg/plans"
)

var hundred = decimal.NewFromInt(100)

// perCycleDivisor returns cycle as a decimal. A non-positive cycle is a
// programming error: configurations are validated before pricing.
func perCycleDivisor(cycle plans.Cycle) decimal.Decimal {
	if !cycle.Valid() {
		panic(fmt.Sprintf("checkout: cannot spread an amount over cycle %d", cycle))
	}
	return decimal.NewFromInt(cycle.Months())
}

// monthly spreads amount over the months of cycle without rounding.
func monthly(amount int64, cycle plans.Cycle) decimal.Decimal {
	return decimal.NewFromInt(amount).Div(perCycleDivisor(cycle))
}

// minorUnits rounds d half away from zero to whole minor units.
func minorUnits(d decimal.Decimal) int64 {
	return d.Round(0).IntPart()
}

// percentOf returns round(100 * part / whole), or zero when whole is not positive.
func percentOf(part, whole int64) int {
	if whole <= 0 {
		return 0
	}
	return int(decimal.NewFromInt(part).Mul(hundred).DivRound(decimal.NewFromInt(whole), 0).IntPart())
}

// FormatAmount renders minor units as a fixed-point amount followed by the ISO
// code, e.g. 11988 EUR as "119.88 EUR" and 500 JPY as "500 JPY".
func FormatAmount(amount int64, currency plans.Currency) string {
	scale := int32(currency.MinorUnitScale())
	return decimal.New(amount, -scale).StringFixed(scale) + " " + string(currency)
}

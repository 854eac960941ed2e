package plans

import (
	"strings"

	"golang.org/x/text/currency"
)

// Cycle is a billing period length in months.
type Cycle int

const (
	Monthly        Cycle = 1
	ThreeMonths    Cycle = 3
	SixMonths      Cycle = 6
	Yearly         Cycle = 12
	FifteenMonths  Cycle = 15
	EighteenMonths Cycle = 18
	TwoYears       Cycle = 24
	ThirtyMonths   Cycle = 30
)

// Valid reports whether the cycle can be used as a divisor.
func (c Cycle) Valid() bool {
	return c > 0
}

// Months returns the cycle length as a plain integer.
func (c Cycle) Months() int64 {
	return int64(c)
}

// Currency is an upper-case ISO 4217 currency code.
type Currency string

// ParseCurrency validates code against the ISO 4217 table and normalizes it.
func ParseCurrency(code string) (Currency, error) {
	unit, err := currency.ParseISO(strings.TrimSpace(code))
	if err != nil {
		return "", ErrInvalidCurrency
	}
	return Currency(unit.String()), nil
}

// Valid reports whether c is a known ISO 4217 code.
func (c Currency) Valid() bool {
	_, err := currency.ParseISO(string(c))
	return err == nil
}

// MinorUnitScale returns the number of fractional digits used by the currency
// (2 for EUR, 0 for JPY). Unknown codes fall back to 2.
func (c Currency) MinorUnitScale() int {
	unit, err := currency.ParseISO(string(c))
	if err != nil {
		return 2
	}
	scale, _ := currency.Standard.Rounding(unit)
	return scale
}

// PlanType discriminates base plans from addons.
type PlanType string

const (
	TypePlan  PlanType = "plan"
	TypeAddon PlanType = "addon"
)

// Limits are the capabilities one unit of a plan or addon grants.
type Limits struct {
	MaxMembers   int   `yaml:"max_members"`
	MaxDomains   int   `yaml:"max_domains"`
	MaxAddresses int   `yaml:"max_addresses"`
	MaxIPs       int   `yaml:"max_ips"`
	MaxSpace     int64 `yaml:"max_space"` // bytes
}

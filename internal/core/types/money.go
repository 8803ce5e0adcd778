// Package types provides common value types shared across domains.
package types

import (
	"math"

	"github.com/shopspring/decimal"
)

// MinorUnits represents a monetary value in minor currency units (cents).
// Storage: int64 - sufficient for ±92 quadrillion cents.
// Example: 123.45 → 12345
type MinorUnits int64

// CurrencyScale is the number of decimal places in the display currency.
const CurrencyScale = 2

// NewMinorUnitsFromMajor creates MinorUnits from a major unit amount.
// WARNING: float input; use NewMinorUnitsFromString for exact values.
func NewMinorUnitsFromMajor(major float64) MinorUnits {
	return MinorUnits(math.Round(major * 100))
}

// NewMinorUnitsFromString parses a decimal string ("123.45") into MinorUnits.
func NewMinorUnitsFromString(s string) (MinorUnits, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, err
	}
	return MinorUnits(d.Shift(CurrencyScale).Round(0).IntPart()), nil
}

// Decimal returns the value in major units with full precision.
func (m MinorUnits) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -CurrencyScale)
}

// String formats the value in major units ("123.45").
func (m MinorUnits) String() string {
	return m.Decimal().StringFixed(CurrencyScale)
}

func (m MinorUnits) IsZero() bool     { return m == 0 }
func (m MinorUnits) IsPositive() bool { return m > 0 }
func (m MinorUnits) IsNegative() bool { return m < 0 }
func (m MinorUnits) Neg() MinorUnits  { return -m }
func (m MinorUnits) Abs() MinorUnits {
	if m < 0 {
		return -m
	}
	return m
}

// Hundred is used for percentage formatting.
var Hundred = decimal.NewFromInt(100)

// Ratio returns m/divisor as a decimal, or zero when divisor is zero.
// Used for derived figures like profit margin where a zero divisor
// must yield 0, not NaN or infinity.
func Ratio(m, divisor MinorUnits) decimal.Decimal {
	if divisor == 0 {
		return decimal.Zero
	}
	return decimal.New(int64(m), 0).DivRound(decimal.New(int64(divisor), 0), 4)
}

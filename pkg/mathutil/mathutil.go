// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/iwvelando/rental-valuation/pkg/constants"
)

// Round rounds a value to two decimals, i.e. to represent real currency.
// Used for making logical comparisons.
func Round(val float64) float64 {
	return math.Round(val*constants.DecimalPrecision) / constants.DecimalPrecision
}

// CalculatePercentage calculates what percentage value is of total. A zero
// total yields zero rather than an infinity.
func CalculatePercentage(value, total float64) float64 {
	if total == 0 {
		return 0
	}
	return (value / total) * constants.PercentageMultiplier
}

// ApplyPercentage applies a percentage to a value
func ApplyPercentage(value, percentage float64) float64 {
	return value * (percentage / constants.PercentageMultiplier)
}

// MonthlyFromAnnual spreads an annual amount evenly over twelve months.
func MonthlyFromAnnual(annual float64) float64 {
	return annual / constants.MonthsPerYear
}

// NonNegative returns val, or 0 when val is negative or not a finite number.
func NonNegative(val float64) float64 {
	if math.IsNaN(val) || math.IsInf(val, 0) || val < 0 {
		return 0
	}
	return val
}

// ClampPercent bounds a percentage to [0, 100]; NaN collapses to 0.
func ClampPercent(val float64) float64 {
	if math.IsNaN(val) || val < 0 {
		return 0
	}
	if val > constants.PercentageMultiplier {
		return constants.PercentageMultiplier
	}
	return val
}

// ClampInt bounds val to [lo, hi].
func ClampInt(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}

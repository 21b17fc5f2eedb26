// Package format renders amounts and rates for people to read.
package format

import (
	"math"
	"strconv"

	"github.com/iwvelando/rental-valuation/pkg/mathutil"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Currency returns a whole-dollar amount with separators (e.g., "-$1,235").
func Currency(amount float64) string {
	rounded := math.Round(amount)
	p := message.NewPrinter(language.English)
	if rounded < 0 {
		return p.Sprintf("-$%.0f", -rounded)
	}
	return p.Sprintf("$%.0f", math.Abs(rounded))
}

// NumericCurrency returns an amount to the cent with no symbol or separators,
// for machine-readable output (e.g., "-1234.56").
func NumericCurrency(amount float64) string {
	cents := mathutil.Round(amount)
	if cents == 0 {
		cents = 0
	}
	return strconv.FormatFloat(cents, 'f', 2, 64)
}

// Percent returns a rate with two decimals (e.g., "8.25%").
func Percent(rate float64) string {
	rounded := mathutil.Round(rate)
	if rounded == 0 {
		rounded = 0
	}
	return message.NewPrinter(language.English).Sprintf("%.2f%%", rounded)
}

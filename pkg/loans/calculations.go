// Package loans provides common loan processing utilities.
package loans

import (
	"math"

	"github.com/iwvelando/rental-valuation/pkg/constants"
)

const paymentCountEpsilon = 1e-9

// CalculateMonthlyPayment calculates the monthly payment for a loan using the standard amortization formula.
func CalculateMonthlyPayment(principal, downPayment, annualInterestRate float64, termMonths int) float64 {
	if termMonths <= 0 {
		return 0
	}
	if annualInterestRate == 0 {
		// For zero interest, simply divide the principal by term
		return (principal - downPayment) / float64(termMonths)
	}

	periodicInterestRate := annualInterestRate / (constants.PercentageMultiplier * constants.MonthsPerYear)
	power := math.Pow((1.00 + periodicInterestRate), float64(termMonths))
	discountFactor := (power - 1.00) / power
	return (principal - downPayment) * periodicInterestRate / discountFactor
}

// TermMonths converts a term in years into a payment count.
func TermMonths(termYears int) int {
	return termYears * constants.MonthsPerYear
}

// PaymentsUntilEquity estimates how many payments it takes for the balance to
// fall to price*(1 - equity/100), the point where private mortgage insurance
// can be dropped.
//
// Principal is assumed to be repaid in equal slices of loanAmount/termMonths.
// A real amortization schedule front-loads interest, so this undercounts the
// payments needed; callers treat it as an estimate.
func PaymentsUntilEquity(price, loanAmount, equityPercent float64, termMonths int) int {
	if termMonths <= 0 || loanAmount <= 0 {
		return 0
	}

	targetBalance := price * (1 - equityPercent/constants.PercentageMultiplier)
	principalNeeded := loanAmount - targetBalance
	if principalNeeded <= 0 {
		return 0
	}

	averageMonthlyPrincipal := loanAmount / float64(termMonths)
	// Shave float noise so an exact multiple does not round up a whole payment.
	return int(math.Ceil(principalNeeded/averageMonthlyPrincipal - paymentCountEpsilon))
}

package valuation

import (
	"github.com/iwvelando/rental-valuation/pkg/constants"
	"github.com/iwvelando/rental-valuation/pkg/loans"
	"github.com/iwvelando/rental-valuation/pkg/mathutil"
)

// Evaluate derives the metrics for one input under policy p. It has no side
// effects and is safe for concurrent use.
//
// A purchase price of zero or less means the input is incomplete; Evaluate
// then returns nil instead of a record of zeros.
func Evaluate(in InvestmentInput, p Policy) *Metrics {
	price := mathutil.NonNegative(in.PurchasePrice)
	if price == 0 {
		return nil
	}

	var m Metrics
	termMonths := loans.TermMonths(NormalizeTerm(in.LoanTermYears))

	// Financing terms.
	m.DownPaymentRate = downPaymentRate(in, p)
	m.DownPayment = mathutil.ApplyPercentage(price, m.DownPaymentRate)
	m.LoanAmount = price - m.DownPayment
	m.FHA = isFHA(in, p, m.DownPaymentRate)

	m.ClosingCosts = mathutil.ApplyPercentage(price, p.ClosingCostRate)
	if m.FHA {
		m.UpfrontMIP = mathutil.ApplyPercentage(m.LoanAmount, p.UpfrontMIPRate)
		m.ClosingCosts += m.UpfrontMIP
	}
	m.TotalCashNeeded = m.DownPayment + m.ClosingCosts

	// Loan payment.
	rate := p.InterestRate
	if in.InterestRate != nil {
		rate = mathutil.ClampPercent(*in.InterestRate)
	}
	m.PrincipalAndInterest = loans.CalculateMonthlyPayment(m.LoanAmount, 0, rate, termMonths)

	// Recurring housing costs.
	if in.AnnualPropertyTax != nil {
		m.PropertyTax = mathutil.MonthlyFromAnnual(mathutil.NonNegative(*in.AnnualPropertyTax))
	} else {
		m.PropertyTax = mathutil.MonthlyFromAnnual(mathutil.ApplyPercentage(price, p.PropertyTaxRate))
	}

	if p.AnnualInsurance > 0 {
		m.Insurance = mathutil.MonthlyFromAnnual(p.AnnualInsurance)
	} else {
		m.Insurance = mathutil.MonthlyFromAnnual(mathutil.ApplyPercentage(price, p.InsuranceRate))
	}

	switch {
	case m.FHA:
		if in.MonthlyMortgageInsurance != nil {
			m.MortgageInsurance = mathutil.NonNegative(*in.MonthlyMortgageInsurance)
		} else {
			m.MortgageInsurance = mathutil.MonthlyFromAnnual(mathutil.ApplyPercentage(m.LoanAmount, p.MIPRate))
		}
	case m.DownPaymentRate < p.PMIDownPaymentThreshold:
		m.PMI = mathutil.MonthlyFromAnnual(mathutil.ApplyPercentage(m.LoanAmount, p.PMIRate))
	}

	m.HousingPayment = m.PrincipalAndInterest + m.PropertyTax + m.Insurance + m.MortgageInsurance + m.PMI

	// Income after vacancy.
	for _, rent := range in.UnitRents {
		m.GrossRent += mathutil.NonNegative(rent)
	}
	m.VacancyLoss = mathutil.ApplyPercentage(m.GrossRent, mathutil.ClampPercent(in.VacancyRate))
	collected := m.GrossRent - m.VacancyLoss

	// Operating expenses.
	m.Management = mathutil.ApplyPercentage(collected, mathutil.ClampPercent(in.ManagementRate))
	if p.MaintenanceMode == MaintenanceFlat {
		m.Maintenance = mathutil.MonthlyFromAnnual(mathutil.NonNegative(in.AnnualMaintenance))
	} else {
		m.Maintenance = mathutil.ApplyPercentage(collected, mathutil.ClampPercent(in.MaintenanceRate))
	}
	m.Landscaping = mathutil.MonthlyFromAnnual(mathutil.NonNegative(in.AnnualLandscaping))
	m.Utilities = mathutil.NonNegative(in.MonthlyUtilities)

	// Net cash flow. Both netting modes subtract the same vacancy loss; they
	// differ only in which line carries it.
	m.TotalMonthlyExpenses = m.HousingPayment + m.Management + m.Maintenance + m.Landscaping + m.Utilities
	if p.VacancyNetting == NetVacancyFromCashFlow {
		m.EffectiveRent = m.GrossRent
		m.TotalMonthlyExpenses += m.VacancyLoss
	} else {
		m.EffectiveRent = collected
	}
	m.MonthlyCashFlow = m.EffectiveRent - m.TotalMonthlyExpenses
	m.YearlyCashFlow = m.MonthlyCashFlow * constants.MonthsPerYear

	// Return ratio.
	m.CashOnCashReturn = mathutil.CalculatePercentage(m.YearlyCashFlow, m.TotalCashNeeded)

	// Mortgage insurance removal.
	if m.PMI > 0 {
		m.PaymentsToRemovePMI = loans.PaymentsUntilEquity(price, m.LoanAmount, p.PMIRemovalEquity, termMonths)
	}

	return &m
}

func downPaymentRate(in InvestmentInput, p Policy) float64 {
	if in.DownPaymentPercent != nil {
		return mathutil.ClampPercent(*in.DownPaymentPercent)
	}
	if in.FHA && p.AllowsFHA(in.PropertyType) {
		return p.FHADownPayment
	}
	if in.PropertyType == MultiFamily {
		return p.MultiFamilyDownPayment
	}
	return p.SingleFamilyDownPayment
}

// isFHA is the single place the loan program is decided; closing costs and
// premiums both read the result.
func isFHA(in InvestmentInput, p Policy, rate float64) bool {
	if in.FHA && p.AllowsFHA(in.PropertyType) {
		return true
	}
	return p.FHAByDownPayment && rate == p.FHADownPayment
}

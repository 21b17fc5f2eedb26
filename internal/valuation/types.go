// Package valuation computes a steady-state financial snapshot of a rental
// property purchase: financing, housing costs, operating expenses, cash flow
// and return on the cash invested.
package valuation

import "strings"

// PropertyType distinguishes single-family homes from small multi-family
// buildings.
type PropertyType string

const (
	SingleFamily PropertyType = "single"
	MultiFamily  PropertyType = "multi"
)

// ParsePropertyType accepts the short and long spellings of each type.
// Anything unrecognised is treated as a single-family home.
func ParsePropertyType(s string) PropertyType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "multi", "multifamily", "multi-family", "multi_family":
		return MultiFamily
	default:
		return SingleFamily
	}
}

// Label returns a human-readable label for the property type.
func (p PropertyType) Label() string {
	if p == MultiFamily {
		return "Multi-Family"
	}
	return "Single Family"
}

// InvestmentInput is a fully coerced evaluation request. Nil optional fields
// fall back to the policy defaults.
type InvestmentInput struct {
	PropertyType  PropertyType `json:"propertyType"`
	Units         int          `json:"units"`
	PurchasePrice float64      `json:"purchasePrice"`
	UnitRents     []float64    `json:"unitRents"`
	LoanTermYears int          `json:"loanTermYears"`
	FHA           bool         `json:"fha"`

	DownPaymentPercent       *float64 `json:"downPaymentPercent,omitempty"`
	InterestRate             *float64 `json:"interestRate,omitempty"`
	AnnualPropertyTax        *float64 `json:"annualPropertyTax,omitempty"`
	MonthlyMortgageInsurance *float64 `json:"monthlyMortgageInsurance,omitempty"`

	VacancyRate     float64 `json:"vacancyRate"`
	ManagementRate  float64 `json:"managementRate"`
	MaintenanceRate float64 `json:"maintenanceRate"`

	MonthlyUtilities  float64 `json:"monthlyUtilities"`
	AnnualLandscaping float64 `json:"annualLandscaping"`
	AnnualMaintenance float64 `json:"annualMaintenance"`
}

// Metrics is the derived snapshot. Monetary values are monthly unless the
// name says otherwise and are never rounded.
type Metrics struct {
	DownPaymentRate float64 `json:"downPaymentRate"`
	DownPayment     float64 `json:"downPayment"`
	LoanAmount      float64 `json:"loanAmount"`
	ClosingCosts    float64 `json:"closingCosts"`
	UpfrontMIP      float64 `json:"upfrontMip"`
	TotalCashNeeded float64 `json:"totalCashNeeded"`
	FHA             bool    `json:"fha"`

	PrincipalAndInterest float64 `json:"principalAndInterest"`
	PropertyTax          float64 `json:"propertyTax"`
	Insurance            float64 `json:"insurance"`
	MortgageInsurance    float64 `json:"mortgageInsurance"`
	PMI                  float64 `json:"pmi"`
	HousingPayment       float64 `json:"housingPayment"`

	GrossRent     float64 `json:"grossRent"`
	VacancyLoss   float64 `json:"vacancyLoss"`
	EffectiveRent float64 `json:"effectiveRent"`

	Management  float64 `json:"management"`
	Maintenance float64 `json:"maintenance"`
	Landscaping float64 `json:"landscaping"`
	Utilities   float64 `json:"utilities"`

	TotalMonthlyExpenses float64 `json:"totalMonthlyExpenses"`
	MonthlyCashFlow      float64 `json:"monthlyCashFlow"`
	YearlyCashFlow       float64 `json:"yearlyCashFlow"`
	CashOnCashReturn     float64 `json:"cashOnCashReturn"`

	// PaymentsToRemovePMI is a linear estimate, zero when no PMI is charged.
	PaymentsToRemovePMI int `json:"paymentsToRemovePmi"`
}

// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/iwvelando/rental-valuation/internal/analysis"
	"github.com/iwvelando/rental-valuation/internal/valuation"
)

// FindAnalysis finds an analysis by property name in the results slice.
// Returns a pointer to the analysis if found, nil otherwise.
func FindAnalysis(results []analysis.Analysis, name string) *analysis.Analysis {
	for i := range results {
		if results[i].Name == name {
			return &results[i]
		}
	}
	return nil
}

// SingleFamilyForm is a conventional single-family purchase: $450,000 at
// 6.85% over 30 years with $2,800 rent.
func SingleFamilyForm() valuation.Form {
	return valuation.Form{
		PropertyType:   "single",
		PurchasePrice:  450000,
		UnitRents:      []interface{}{2800},
		LoanTermYears:  30,
		VacancyRate:    10,
		ManagementRate: 10,
	}
}

// FourplexForm is an FHA four-unit purchase at $600,000 with $1,500 per unit.
func FourplexForm() valuation.Form {
	return valuation.Form{
		PropertyType:  "multi",
		Units:         4,
		PurchasePrice: 600000,
		UnitRents:     []interface{}{1500, 1500, 1500, 1500},
		LoanTermYears: 30,
		FHA:           true,
	}
}

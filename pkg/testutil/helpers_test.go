package testutil

import (
	"testing"

	"github.com/iwvelando/rental-valuation/internal/analysis"
	"github.com/iwvelando/rental-valuation/internal/valuation"
)

func TestFindAnalysis(t *testing.T) {
	results := []analysis.Analysis{
		{Name: "Property A", Input: valuation.InvestmentInput{PurchasePrice: 100000}},
		{Name: "Property B", Input: valuation.InvestmentInput{PurchasePrice: 200000}},
		{Name: "Another Property", Input: valuation.InvestmentInput{PurchasePrice: 300000}},
	}

	tests := []struct {
		name          string
		searchName    string
		expectFound   bool
		expectedPrice float64
	}{
		{
			name:          "Find existing property A",
			searchName:    "Property A",
			expectFound:   true,
			expectedPrice: 100000,
		},
		{
			name:          "Find property with longer name",
			searchName:    "Another Property",
			expectFound:   true,
			expectedPrice: 300000,
		},
		{
			name:        "Search for non-existent property",
			searchName:  "Non-existent",
			expectFound: false,
		},
		{
			name:        "Empty search name",
			searchName:  "",
			expectFound: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FindAnalysis(results, tt.searchName)

			if tt.expectFound {
				if result == nil {
					t.Fatalf("FindAnalysis(%q) returned nil", tt.searchName)
				}
				if result.Input.PurchasePrice != tt.expectedPrice {
					t.Errorf("FindAnalysis(%q) price = %v, expected %v", tt.searchName, result.Input.PurchasePrice, tt.expectedPrice)
				}
			} else if result != nil {
				t.Errorf("FindAnalysis(%q) = %v, expected nil", tt.searchName, result)
			}
		})
	}
}

func TestFindAnalysisReturnsElement(t *testing.T) {
	results := []analysis.Analysis{{Name: "Mutable"}}

	found := FindAnalysis(results, "Mutable")
	found.Notes = append(found.Notes, "updated")

	if len(results[0].Notes) != 1 {
		t.Errorf("FindAnalysis should return a pointer into the slice")
	}
}

func TestFixtureForms(t *testing.T) {
	single := valuation.Evaluate(valuation.ParseForm(SingleFamilyForm()), valuation.DefaultPolicy())
	if single == nil || single.FHA {
		t.Fatalf("single family fixture should evaluate as conventional, got %+v", single)
	}

	fourplex := valuation.Evaluate(valuation.ParseForm(FourplexForm()), valuation.DefaultPolicy())
	if fourplex == nil || !fourplex.FHA {
		t.Fatalf("fourplex fixture should evaluate as FHA, got %+v", fourplex)
	}
}

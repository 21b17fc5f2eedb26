package valuation

import (
	"github.com/iwvelando/rental-valuation/pkg/coerce"
	"github.com/iwvelando/rental-valuation/pkg/constants"
	"github.com/iwvelando/rental-valuation/pkg/mathutil"
	"github.com/iwvelando/rental-valuation/pkg/validation"
)

// Form is the raw record a presentation layer hands over: every numeric field
// may be a JSON number, a numeric string, a blank string or missing.
type Form struct {
	PropertyType  string      `json:"propertyType" yaml:"propertyType" mapstructure:"propertyType"`
	Units         interface{} `json:"units" yaml:"units" mapstructure:"units"`
	PurchasePrice interface{} `json:"purchasePrice" yaml:"purchasePrice" mapstructure:"purchasePrice"`
	// UnitRents is a list of rents or a map keyed by 1-based unit index.
	UnitRents     interface{} `json:"unitRents" yaml:"unitRents" mapstructure:"unitRents"`
	LoanTermYears interface{} `json:"loanTermYears" yaml:"loanTermYears" mapstructure:"loanTermYears"`
	FHA           interface{} `json:"fha" yaml:"fha" mapstructure:"fha"`

	DownPaymentPercent       interface{} `json:"downPaymentPercent" yaml:"downPaymentPercent" mapstructure:"downPaymentPercent"`
	InterestRate             interface{} `json:"interestRate" yaml:"interestRate" mapstructure:"interestRate"`
	AnnualPropertyTax        interface{} `json:"annualPropertyTax" yaml:"annualPropertyTax" mapstructure:"annualPropertyTax"`
	MonthlyMortgageInsurance interface{} `json:"monthlyMortgageInsurance" yaml:"monthlyMortgageInsurance" mapstructure:"monthlyMortgageInsurance"`

	VacancyRate     interface{} `json:"vacancyRate" yaml:"vacancyRate" mapstructure:"vacancyRate"`
	ManagementRate  interface{} `json:"managementRate" yaml:"managementRate" mapstructure:"managementRate"`
	MaintenanceRate interface{} `json:"maintenanceRate" yaml:"maintenanceRate" mapstructure:"maintenanceRate"`

	MonthlyUtilities  interface{} `json:"monthlyUtilities" yaml:"monthlyUtilities" mapstructure:"monthlyUtilities"`
	AnnualLandscaping interface{} `json:"annualLandscaping" yaml:"annualLandscaping" mapstructure:"annualLandscaping"`
	AnnualMaintenance interface{} `json:"annualMaintenance" yaml:"annualMaintenance" mapstructure:"annualMaintenance"`
}

// ParseForm coerces a raw form into an InvestmentInput. It never fails:
// unreadable numbers become 0, rates are clamped to [0, 100] and optional
// fields left blank stay nil.
func ParseForm(f Form) InvestmentInput {
	propertyType := ParsePropertyType(f.PropertyType)
	units := NormalizeUnits(propertyType, coerce.Int(f.Units))

	return InvestmentInput{
		PropertyType:  propertyType,
		Units:         units,
		PurchasePrice: coerce.Amount(f.PurchasePrice),
		UnitRents:     coerce.Rents(f.UnitRents, units),
		LoanTermYears: NormalizeTerm(coerce.Int(f.LoanTermYears)),
		FHA:           coerce.Bool(f.FHA),

		DownPaymentPercent:       optional(f.DownPaymentPercent, mathutil.ClampPercent),
		InterestRate:             optional(f.InterestRate, mathutil.ClampPercent),
		AnnualPropertyTax:        optional(f.AnnualPropertyTax, mathutil.NonNegative),
		MonthlyMortgageInsurance: optional(f.MonthlyMortgageInsurance, mathutil.NonNegative),

		VacancyRate:     coerce.Percent(f.VacancyRate),
		ManagementRate:  coerce.Percent(f.ManagementRate),
		MaintenanceRate: coerce.Percent(f.MaintenanceRate),

		MonthlyUtilities:  coerce.Amount(f.MonthlyUtilities),
		AnnualLandscaping: coerce.Amount(f.AnnualLandscaping),
		AnnualMaintenance: coerce.Amount(f.AnnualMaintenance),
	}
}

// Validation returns the as-entered view of a form used for warnings, before
// any clamping is applied.
func (f Form) Validation(name string, active bool) validation.PropertyConfig {
	rates := map[string]float64{
		"vacancyRate":     coerce.Float(f.VacancyRate),
		"managementRate":  coerce.Float(f.ManagementRate),
		"maintenanceRate": coerce.Float(f.MaintenanceRate),
	}
	if v, ok := coerce.Optional(f.DownPaymentPercent); ok {
		rates["downPaymentPercent"] = v
	}
	if v, ok := coerce.Optional(f.InterestRate); ok {
		rates["interestRate"] = v
	}

	return validation.PropertyConfig{
		Name:          name,
		Active:        active,
		MultiFamily:   ParsePropertyType(f.PropertyType) == MultiFamily,
		Units:         coerce.Int(f.Units),
		PurchasePrice: coerce.Amount(f.PurchasePrice),
		LoanTermYears: coerce.Int(f.LoanTermYears),
		Rates:         rates,
	}
}

// Warnings lists the problems found in a single form.
func (f Form) Warnings(name string) []string {
	return validation.ValidateProperty(f.Validation(name, true))
}

// NormalizeUnits forces one unit for single-family homes and keeps
// multi-family buildings within two to four units. A missing multi-family
// count starts at two.
func NormalizeUnits(t PropertyType, units int) int {
	if t != MultiFamily {
		return 1
	}
	return mathutil.ClampInt(units, constants.MinMultiFamilyUnits, constants.MaxMultiFamilyUnits)
}

// NormalizeTerm keeps 15 year loans and maps every other term to 30 years.
func NormalizeTerm(years int) int {
	if years == constants.ShortLoanTermYears {
		return constants.ShortLoanTermYears
	}
	return constants.DefaultLoanTermYears
}

// IsSupportedTerm reports whether years is one of the offered loan terms.
func IsSupportedTerm(years int) bool {
	return years == constants.ShortLoanTermYears || years == constants.DefaultLoanTermYears
}

func optional(v interface{}, normalize func(float64) float64) *float64 {
	value, ok := coerce.Optional(v)
	if !ok {
		return nil
	}
	value = normalize(value)
	return &value
}

// Float64 returns a pointer to v, for building inputs with optional fields.
func Float64(v float64) *float64 {
	return &v
}

// Package validation provides configuration validation utilities.
package validation

import (
	"fmt"
	"sort"

	"github.com/iwvelando/rental-valuation/pkg/constants"
)

// ValidateLoanTerm warns when a requested term is not one of the offered
// terms. A zero term means "not supplied" and is not reported.
func ValidateLoanTerm(propertyName string, years int) string {
	if years == 0 || years == constants.ShortLoanTermYears || years == constants.DefaultLoanTermYears {
		return ""
	}
	return fmt.Sprintf("Property '%s' loan term of %d years is not supported - using %d years",
		propertyName, years, constants.DefaultLoanTermYears)
}

// ValidateUnitCount warns when a multi-family unit count falls outside the
// supported range, or when a single-family home lists more than one unit.
// Zero means "not supplied".
func ValidateUnitCount(propertyName string, multiFamily bool, units int) string {
	if !multiFamily {
		if units > 1 {
			return fmt.Sprintf("Property '%s' is single family - %d units reduced to 1", propertyName, units)
		}
		return ""
	}
	if units != 0 && (units < constants.MinMultiFamilyUnits || units > constants.MaxMultiFamilyUnits) {
		return fmt.Sprintf("Property '%s' unit count %d is outside %d-%d - value will be clamped",
			propertyName, units, constants.MinMultiFamilyUnits, constants.MaxMultiFamilyUnits)
	}
	return ""
}

// ValidateRate warns when a percentage lies outside [0, 100].
func ValidateRate(propertyName, field string, rate float64) string {
	if rate < 0 || rate > constants.PercentageMultiplier {
		return fmt.Sprintf("Property '%s' %s of %g%% is outside 0-100 - value will be clamped",
			propertyName, field, rate)
	}
	return ""
}

// ValidatePurchasePrice warns when no usable price was given; such a
// property produces no metrics.
func ValidatePurchasePrice(propertyName string, price float64) string {
	if price <= 0 {
		return fmt.Sprintf("Property '%s' has no purchase price - no metrics will be produced", propertyName)
	}
	return ""
}

// PropertyConfig is the raw view of one property used for validation. Values
// are as entered, before clamping.
type PropertyConfig struct {
	Name          string
	Active        bool
	MultiFamily   bool
	Units         int
	PurchasePrice float64
	LoanTermYears int
	Rates         map[string]float64
}

// ConfigValidator checks a whole set of properties.
type ConfigValidator struct {
	Properties []PropertyConfig
}

// ValidateProperty returns the warnings for a single property.
func ValidateProperty(p PropertyConfig) []string {
	var warnings []string

	add := func(warning string) {
		if warning != "" {
			warnings = append(warnings, warning)
		}
	}

	add(ValidatePurchasePrice(p.Name, p.PurchasePrice))
	add(ValidateLoanTerm(p.Name, p.LoanTermYears))
	add(ValidateUnitCount(p.Name, p.MultiFamily, p.Units))

	fields := make([]string, 0, len(p.Rates))
	for field := range p.Rates {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		add(ValidateRate(p.Name, field, p.Rates[field]))
	}

	return warnings
}

// ValidateAll validates every active property and returns warnings
func (cv *ConfigValidator) ValidateAll() []string {
	var warnings []string

	seen := make(map[string]bool)
	active := 0
	for _, property := range cv.Properties {
		if !property.Active {
			continue
		}
		active++

		if seen[property.Name] {
			warnings = append(warnings, fmt.Sprintf("Property name '%s' is used more than once", property.Name))
		}
		seen[property.Name] = true

		warnings = append(warnings, ValidateProperty(property)...)
	}

	if active == 0 {
		warnings = append(warnings, "No active properties configured")
	}

	return warnings
}

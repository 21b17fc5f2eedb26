package valuation

import (
	"errors"
	"fmt"
	"sort"

	"github.com/iwvelando/rental-valuation/pkg/constants"
)

// ErrInvalidPolicy is returned by Policy.Validate.
var ErrInvalidPolicy = errors.New("invalid valuation policy")

// VacancyNetting selects where vacancy loss is subtracted.
type VacancyNetting string

const (
	// NetVacancyFromRent reports rent after vacancy.
	NetVacancyFromRent VacancyNetting = "rent"
	// NetVacancyFromCashFlow reports gross rent and books vacancy as an expense.
	NetVacancyFromCashFlow VacancyNetting = "cashflow"
)

// MaintenanceMode selects how the maintenance expense is entered.
type MaintenanceMode string

const (
	// MaintenanceRate charges a percentage of effective rent.
	MaintenanceRate MaintenanceMode = "rate"
	// MaintenanceFlat charges a fixed annual amount spread over twelve months.
	MaintenanceFlat MaintenanceMode = "flat"
)

// Preset names.
const (
	PresetMultiFamilyFHA       = "multi-family-fha"
	PresetSingleFamilyFHA      = "single-family-fha"
	PresetDownPaymentHeuristic = "down-payment-heuristic"

	DefaultPreset = PresetMultiFamilyFHA
)

// Policy holds the product decisions that differ between calculator variants
// together with the rate table. All rates are percentages.
type Policy struct {
	// FHAEligible lists the property types allowed to use FHA treatment.
	FHAEligible []PropertyType `json:"fhaEligible" yaml:"fhaEligible"`
	// FHAByDownPayment treats a down payment of exactly FHADownPayment as FHA
	// even when the FHA flag is off.
	FHAByDownPayment bool            `json:"fhaByDownPayment" yaml:"fhaByDownPayment"`
	VacancyNetting   VacancyNetting  `json:"vacancyNetting" yaml:"vacancyNetting"`
	MaintenanceMode  MaintenanceMode `json:"maintenanceMode" yaml:"maintenanceMode"`

	InterestRate            float64 `json:"interestRate" yaml:"interestRate"`
	ClosingCostRate         float64 `json:"closingCostRate" yaml:"closingCostRate"`
	UpfrontMIPRate          float64 `json:"upfrontMipRate" yaml:"upfrontMipRate"`
	MIPRate                 float64 `json:"mipRate" yaml:"mipRate"`
	PMIRate                 float64 `json:"pmiRate" yaml:"pmiRate"`
	PMIDownPaymentThreshold float64 `json:"pmiDownPaymentThreshold" yaml:"pmiDownPaymentThreshold"`
	PMIRemovalEquity        float64 `json:"pmiRemovalEquity" yaml:"pmiRemovalEquity"`
	PropertyTaxRate         float64 `json:"propertyTaxRate" yaml:"propertyTaxRate"`
	InsuranceRate           float64 `json:"insuranceRate" yaml:"insuranceRate"`
	// AnnualInsurance replaces InsuranceRate when positive.
	AnnualInsurance float64 `json:"annualInsurance" yaml:"annualInsurance"`

	SingleFamilyDownPayment float64 `json:"singleFamilyDownPayment" yaml:"singleFamilyDownPayment"`
	MultiFamilyDownPayment  float64 `json:"multiFamilyDownPayment" yaml:"multiFamilyDownPayment"`
	FHADownPayment          float64 `json:"fhaDownPayment" yaml:"fhaDownPayment"`
}

func baseRates() Policy {
	return Policy{
		InterestRate:            constants.DefaultInterestRate,
		ClosingCostRate:         constants.DefaultClosingCostRate,
		UpfrontMIPRate:          constants.DefaultUpfrontMIPRate,
		MIPRate:                 constants.DefaultMIPRate,
		PMIRate:                 constants.DefaultPMIRate,
		PMIDownPaymentThreshold: constants.DefaultPMIDownPaymentThreshold,
		PMIRemovalEquity:        constants.DefaultPMIRemovalEquity,
		PropertyTaxRate:         constants.DefaultPropertyTaxRate,
		InsuranceRate:           constants.DefaultInsuranceRate,
		SingleFamilyDownPayment: constants.DefaultSingleFamilyDownPayment,
		MultiFamilyDownPayment:  constants.DefaultMultiFamilyDownPayment,
		FHADownPayment:          constants.DefaultFHADownPayment,
	}
}

var presets = map[string]func() Policy{
	PresetMultiFamilyFHA: func() Policy {
		p := baseRates()
		p.FHAEligible = []PropertyType{MultiFamily}
		p.VacancyNetting = NetVacancyFromRent
		p.MaintenanceMode = MaintenanceRate
		return p
	},
	PresetSingleFamilyFHA: func() Policy {
		p := baseRates()
		p.FHAEligible = []PropertyType{SingleFamily}
		p.VacancyNetting = NetVacancyFromCashFlow
		p.MaintenanceMode = MaintenanceFlat
		return p
	},
	PresetDownPaymentHeuristic: func() Policy {
		p := baseRates()
		p.FHAEligible = []PropertyType{SingleFamily, MultiFamily}
		p.FHAByDownPayment = true
		p.VacancyNetting = NetVacancyFromRent
		p.MaintenanceMode = MaintenanceRate
		return p
	},
}

// DefaultPolicy returns the policy of the default preset.
func DefaultPolicy() Policy {
	return presets[DefaultPreset]()
}

// PresetPolicy returns a fresh copy of the named preset.
func PresetPolicy(name string) (Policy, bool) {
	build, ok := presets[name]
	if !ok {
		return Policy{}, false
	}
	return build(), true
}

// PresetNames lists the known presets in a stable order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AllowsFHA reports whether the property type may use FHA treatment.
func (p Policy) AllowsFHA(t PropertyType) bool {
	for _, eligible := range p.FHAEligible {
		if eligible == t {
			return true
		}
	}
	return false
}

// Validate checks the modes and that no rate is negative.
func (p Policy) Validate() error {
	switch p.VacancyNetting {
	case NetVacancyFromRent, NetVacancyFromCashFlow:
	default:
		return fmt.Errorf("%w: unknown vacancy netting %q", ErrInvalidPolicy, p.VacancyNetting)
	}

	switch p.MaintenanceMode {
	case MaintenanceRate, MaintenanceFlat:
	default:
		return fmt.Errorf("%w: unknown maintenance mode %q", ErrInvalidPolicy, p.MaintenanceMode)
	}

	for _, t := range p.FHAEligible {
		if t != SingleFamily && t != MultiFamily {
			return fmt.Errorf("%w: unknown FHA-eligible property type %q", ErrInvalidPolicy, t)
		}
	}

	rates := map[string]float64{
		"interestRate":            p.InterestRate,
		"closingCostRate":         p.ClosingCostRate,
		"upfrontMipRate":          p.UpfrontMIPRate,
		"mipRate":                 p.MIPRate,
		"pmiRate":                 p.PMIRate,
		"pmiDownPaymentThreshold": p.PMIDownPaymentThreshold,
		"pmiRemovalEquity":        p.PMIRemovalEquity,
		"propertyTaxRate":         p.PropertyTaxRate,
		"insuranceRate":           p.InsuranceRate,
		"annualInsurance":         p.AnnualInsurance,
		"singleFamilyDownPayment": p.SingleFamilyDownPayment,
		"multiFamilyDownPayment":  p.MultiFamilyDownPayment,
		"fhaDownPayment":          p.FHADownPayment,
	}
	names := make([]string, 0, len(rates))
	for name := range rates {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if rates[name] < 0 {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalidPolicy, name)
		}
	}

	return nil
}

// PolicyOverrides replaces individual fields of a preset. Nil pointers, empty
// modes and an empty eligibility list leave the preset value alone.
type PolicyOverrides struct {
	FHAEligible      []PropertyType  `json:"fhaEligible,omitempty" yaml:"fhaEligible,omitempty" mapstructure:"fhaEligible"`
	FHAByDownPayment *bool           `json:"fhaByDownPayment,omitempty" yaml:"fhaByDownPayment,omitempty" mapstructure:"fhaByDownPayment"`
	VacancyNetting   VacancyNetting  `json:"vacancyNetting,omitempty" yaml:"vacancyNetting,omitempty" mapstructure:"vacancyNetting"`
	MaintenanceMode  MaintenanceMode `json:"maintenanceMode,omitempty" yaml:"maintenanceMode,omitempty" mapstructure:"maintenanceMode"`

	InterestRate            *float64 `json:"interestRate,omitempty" yaml:"interestRate,omitempty" mapstructure:"interestRate"`
	ClosingCostRate         *float64 `json:"closingCostRate,omitempty" yaml:"closingCostRate,omitempty" mapstructure:"closingCostRate"`
	UpfrontMIPRate          *float64 `json:"upfrontMipRate,omitempty" yaml:"upfrontMipRate,omitempty" mapstructure:"upfrontMipRate"`
	MIPRate                 *float64 `json:"mipRate,omitempty" yaml:"mipRate,omitempty" mapstructure:"mipRate"`
	PMIRate                 *float64 `json:"pmiRate,omitempty" yaml:"pmiRate,omitempty" mapstructure:"pmiRate"`
	PMIDownPaymentThreshold *float64 `json:"pmiDownPaymentThreshold,omitempty" yaml:"pmiDownPaymentThreshold,omitempty" mapstructure:"pmiDownPaymentThreshold"`
	PMIRemovalEquity        *float64 `json:"pmiRemovalEquity,omitempty" yaml:"pmiRemovalEquity,omitempty" mapstructure:"pmiRemovalEquity"`
	PropertyTaxRate         *float64 `json:"propertyTaxRate,omitempty" yaml:"propertyTaxRate,omitempty" mapstructure:"propertyTaxRate"`
	InsuranceRate           *float64 `json:"insuranceRate,omitempty" yaml:"insuranceRate,omitempty" mapstructure:"insuranceRate"`
	AnnualInsurance         *float64 `json:"annualInsurance,omitempty" yaml:"annualInsurance,omitempty" mapstructure:"annualInsurance"`
	SingleFamilyDownPayment *float64 `json:"singleFamilyDownPayment,omitempty" yaml:"singleFamilyDownPayment,omitempty" mapstructure:"singleFamilyDownPayment"`
	MultiFamilyDownPayment  *float64 `json:"multiFamilyDownPayment,omitempty" yaml:"multiFamilyDownPayment,omitempty" mapstructure:"multiFamilyDownPayment"`
	FHADownPayment          *float64 `json:"fhaDownPayment,omitempty" yaml:"fhaDownPayment,omitempty" mapstructure:"fhaDownPayment"`
}

// Apply returns p with the overrides laid on top.
func (o PolicyOverrides) Apply(p Policy) Policy {
	if len(o.FHAEligible) > 0 {
		p.FHAEligible = append([]PropertyType(nil), o.FHAEligible...)
	}
	if o.FHAByDownPayment != nil {
		p.FHAByDownPayment = *o.FHAByDownPayment
	}
	if o.VacancyNetting != "" {
		p.VacancyNetting = o.VacancyNetting
	}
	if o.MaintenanceMode != "" {
		p.MaintenanceMode = o.MaintenanceMode
	}

	set := func(dst *float64, v *float64) {
		if v != nil {
			*dst = *v
		}
	}
	set(&p.InterestRate, o.InterestRate)
	set(&p.ClosingCostRate, o.ClosingCostRate)
	set(&p.UpfrontMIPRate, o.UpfrontMIPRate)
	set(&p.MIPRate, o.MIPRate)
	set(&p.PMIRate, o.PMIRate)
	set(&p.PMIDownPaymentThreshold, o.PMIDownPaymentThreshold)
	set(&p.PMIRemovalEquity, o.PMIRemovalEquity)
	set(&p.PropertyTaxRate, o.PropertyTaxRate)
	set(&p.InsuranceRate, o.InsuranceRate)
	set(&p.AnnualInsurance, o.AnnualInsurance)
	set(&p.SingleFamilyDownPayment, o.SingleFamilyDownPayment)
	set(&p.MultiFamilyDownPayment, o.MultiFamilyDownPayment)
	set(&p.FHADownPayment, o.FHADownPayment)

	return p
}

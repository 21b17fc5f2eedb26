package config

import (
	"errors"
	"strings"
	"testing"

	"github.com/iwvelando/rental-valuation/internal/valuation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfiguration(t *testing.T) {
	tests := []struct {
		name       string
		configPath string
		wantError  bool
	}{
		{
			name:       "Non-existent config file",
			configPath: "nonexistent.yaml",
			wantError:  true,
		},
		{
			name:       "Test config",
			configPath: "../../test/test_config.yaml",
			wantError:  false,
		},
		{
			name:       "Example config",
			configPath: "../../config.yaml.example",
			wantError:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := LoadConfiguration(tt.configPath)
			if tt.wantError {
				if err == nil {
					t.Errorf("LoadConfiguration() expected error but got none")
				}
				return
			}
			if err != nil {
				t.Errorf("LoadConfiguration() error = %v", err)
				return
			}
			if config == nil {
				t.Errorf("LoadConfiguration() returned nil config")
			}
		})
	}
}

func TestLoadConfigurationStructure(t *testing.T) {
	config, err := LoadConfiguration("../../test/test_config.yaml")
	require.NoError(t, err)

	assert.Equal(t, "warn", config.Logging.Level)
	assert.Equal(t, "console", config.Logging.Format)
	assert.Equal(t, "pretty", config.Output.Format)
	assert.Equal(t, valuation.PresetMultiFamilyFHA, config.PolicySettings.Preset)

	expected := []string{"maple street single family", "oak avenue fourplex", "pine court duplex", "unpriced lead"}
	require.Len(t, config.Properties, len(expected))
	for i, name := range expected {
		assert.Equal(t, name, config.Properties[i].Name)
	}

	active := config.ActiveProperties()
	assert.Len(t, active, 3)

	fourplex := valuation.ParseForm(config.Properties[1].Form)
	assert.Equal(t, valuation.MultiFamily, fourplex.PropertyType)
	assert.Equal(t, 4, fourplex.Units)
	assert.Equal(t, 600000.0, fourplex.PurchasePrice)
	assert.Equal(t, []float64{1500, 1500, 1500, 1500}, fourplex.UnitRents)
	assert.True(t, fourplex.FHA)
	assert.Equal(t, 250.0, fourplex.MonthlyUtilities)

	single := valuation.ParseForm(config.Properties[0].Form)
	assert.Equal(t, []float64{2800}, single.UnitRents)
	assert.Equal(t, 450000.0, single.PurchasePrice)
}

func TestLoadConfigurationFromReader(t *testing.T) {
	yaml := `
policy:
  preset: single-family-fha
  overrides:
    interestRate: 5.5
    fhaByDownPayment: true
    fhaEligible: [single, multi]
properties:
  - name: reader house
    active: true
    purchasePrice: "325,000"
    unitRents: ["2,150"]
`
	config, err := LoadConfigurationFromReader(strings.NewReader(yaml))
	require.NoError(t, err)

	policy, err := config.Policy()
	require.NoError(t, err)
	assert.Equal(t, 5.5, policy.InterestRate)
	assert.True(t, policy.FHAByDownPayment)
	assert.True(t, policy.AllowsFHA(valuation.MultiFamily))
	assert.Equal(t, valuation.MaintenanceFlat, policy.MaintenanceMode)

	require.Len(t, config.Properties, 1)
	in := valuation.ParseForm(config.Properties[0].Form)
	assert.Equal(t, 325000.0, in.PurchasePrice)
	assert.Equal(t, []float64{2150}, in.UnitRents)
}

func TestLoadConfigurationFromReaderInvalid(t *testing.T) {
	_, err := LoadConfigurationFromReader(strings.NewReader("properties: [unclosed"))
	assert.Error(t, err)
}

func TestResolvePolicy(t *testing.T) {
	policy, err := ResolvePolicy(PolicyConfig{})
	require.NoError(t, err)
	assert.Equal(t, valuation.DefaultPolicy(), policy)

	_, err = ResolvePolicy(PolicyConfig{Preset: "commercial"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownPreset))
	assert.Contains(t, err.Error(), "commercial")

	negative := -1.0
	_, err = ResolvePolicy(PolicyConfig{Overrides: valuation.PolicyOverrides{PMIRate: &negative}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, valuation.ErrInvalidPolicy))

	_, err = ResolvePolicy(PolicyConfig{Overrides: valuation.PolicyOverrides{VacancyNetting: "income"}})
	assert.ErrorIs(t, err, valuation.ErrInvalidPolicy)
}

func TestValidateConfiguration(t *testing.T) {
	config, err := LoadConfiguration("../../test/test_config.yaml")
	require.NoError(t, err)

	warnings := config.ValidateConfiguration()
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "unpriced lead")

	example, err := LoadConfiguration("../../config.yaml.example")
	require.NoError(t, err)
	assert.Empty(t, example.ValidateConfiguration())
}

func TestValidateConfigurationFindsProblems(t *testing.T) {
	config := &Configuration{
		Properties: []Property{
			{Name: "dup", Active: true, Form: valuation.Form{PurchasePrice: 200000}},
			{Name: "dup", Active: true, Form: valuation.Form{PurchasePrice: 210000, LoanTermYears: 40}},
			{Name: "big", Active: true, Form: valuation.Form{PropertyType: "multi", Units: 12, PurchasePrice: 900000, VacancyRate: 120}},
			{Name: "off", Active: false, Form: valuation.Form{LoanTermYears: 7}},
		},
	}

	warnings := config.ValidateConfiguration()
	assert.Len(t, warnings, 4)

	empty := &Configuration{}
	assert.Equal(t, []string{"No active properties configured"}, empty.ValidateConfiguration())
}

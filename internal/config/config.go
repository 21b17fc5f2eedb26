// Package config defines the data structures related to configuration and
// includes functions for loading and parsing the config.
package config

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/rental-valuation/internal/valuation"
	"github.com/iwvelando/rental-valuation/pkg/validation"
	"github.com/spf13/viper"
)

// ErrUnknownPreset is returned when a policy names a preset that does not exist.
var ErrUnknownPreset = errors.New("unknown policy preset")

// Configuration holds all configuration for rental-valuation.
type Configuration struct {
	Logging        LoggingConfig `yaml:"logging,omitempty"`
	Output         OutputConfig  `yaml:"output,omitempty"`
	PolicySettings PolicyConfig  `yaml:"policy,omitempty" mapstructure:"policy"`
	Properties     []Property    `yaml:"properties"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv, json
}

// PolicyConfig selects a preset and optionally overrides parts of it.
type PolicyConfig struct {
	Preset    string                    `json:"preset,omitempty" yaml:"preset,omitempty"`
	Overrides valuation.PolicyOverrides `json:"overrides,omitempty" yaml:"overrides,omitempty"`
}

// Property is one purchase to evaluate. The form fields sit next to the name
// in the YAML.
type Property struct {
	Name           string `yaml:"name"`
	Active         bool   `yaml:"active"`
	valuation.Form `yaml:",inline" mapstructure:",squash"`
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	return decode(v)
}

// LoadConfigurationFromReader loads YAML configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config: %w", err)
	}

	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yml")
	v.SetEnvPrefix("RV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	return &configuration, nil
}

// ResolvePolicy builds the policy for a preset name plus overrides. An empty
// preset selects the default one.
func ResolvePolicy(pc PolicyConfig) (valuation.Policy, error) {
	name := pc.Preset
	if name == "" {
		name = valuation.DefaultPreset
	}

	base, ok := valuation.PresetPolicy(name)
	if !ok {
		return valuation.Policy{}, fmt.Errorf("%w %q (known: %s)", ErrUnknownPreset, name,
			strings.Join(valuation.PresetNames(), ", "))
	}

	policy := pc.Overrides.Apply(base)
	if err := policy.Validate(); err != nil {
		return valuation.Policy{}, err
	}
	return policy, nil
}

// Policy returns the valuation policy the configuration selects.
func (c *Configuration) Policy() (valuation.Policy, error) {
	return ResolvePolicy(c.PolicySettings)
}

// ActiveProperties returns the properties marked active, in file order.
func (c *Configuration) ActiveProperties() []Property {
	var active []Property
	for _, property := range c.Properties {
		if property.Active {
			active = append(active, property)
		}
	}
	return active
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	validator := validation.ConfigValidator{}
	for _, property := range c.Properties {
		validator.Properties = append(validator.Properties, property.Form.Validation(property.Name, property.Active))
	}

	return validator.ValidateAll()
}

// Package constants provides shared constants for the rental-valuation application.
package constants

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// DefaultMortgageInsuranceCutoff is the LTV (percent) at which PMI may be removed
	DefaultMortgageInsuranceCutoff = 78.0
)

// Loan terms
const (
	// ShortLoanTermYears is the 15 year fixed option
	ShortLoanTermYears = 15

	// DefaultLoanTermYears is the 30 year fixed option and the fallback for
	// unsupported terms
	DefaultLoanTermYears = 30
)

// Unit counts
const (
	// MinMultiFamilyUnits is the smallest multi-family building supported
	MinMultiFamilyUnits = 2

	// MaxMultiFamilyUnits is the largest building that still finances as residential
	MaxMultiFamilyUnits = 4
)

// Policy defaults, all rates in percent
const (
	DefaultInterestRate            = 6.85
	DefaultClosingCostRate         = 5.0
	DefaultUpfrontMIPRate          = 1.75
	DefaultMIPRate                 = 0.55
	DefaultPMIRate                 = 0.5
	DefaultPMIDownPaymentThreshold = 20.0
	DefaultPropertyTaxRate         = 1.5
	DefaultInsuranceRate           = 0.82
	DefaultSingleFamilyDownPayment = 20.0
	DefaultMultiFamilyDownPayment  = 25.0
	DefaultFHADownPayment          = 3.5

	// DefaultPMIRemovalEquity is 100 - DefaultMortgageInsuranceCutoff
	DefaultPMIRemovalEquity = PercentageMultiplier - DefaultMortgageInsuranceCutoff
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultDatabasePath is where saved analyses live unless overridden
	DefaultDatabasePath = "rental-valuation.db"

	// DefaultMaxBodySizeBytes is the default maximum request body size (256 KB)
	DefaultMaxBodySizeBytes int64 = 256 * 1024

	// DefaultCacheTTLSeconds bounds how long evaluate responses stay cached
	DefaultCacheTTLSeconds = 300
)

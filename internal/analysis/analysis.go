// Package analysis runs the valuation engine over every active property in a
// configuration.
package analysis

import (
	"fmt"

	"github.com/iwvelando/rental-valuation/internal/config"
	"github.com/iwvelando/rental-valuation/internal/valuation"
	"go.uber.org/zap"
)

// Analysis holds the evaluated result for one property.
type Analysis struct {
	Name    string                    `json:"name"`
	Input   valuation.InvestmentInput `json:"input"`
	Metrics *valuation.Metrics        `json:"metrics"`
	Notes   []string                  `json:"notes,omitempty"`
}

// Run evaluates every active property under the configured policy. Properties
// that cannot be evaluated are kept with nil Metrics and a note.
func Run(logger *zap.Logger, conf config.Configuration) ([]Analysis, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	policy, err := conf.Policy()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve valuation policy: %w", err)
	}

	var results []Analysis
	for _, property := range conf.Properties {
		if !property.Active {
			logger.Debug(fmt.Sprintf("skipping property %s because it is inactive", property.Name),
				zap.String("op", "analysis.Run"),
			)
			continue
		}

		results = append(results, Evaluate(logger, property.Name, property.Form, policy))
	}

	return results, nil
}

// Evaluate coerces one form and runs the engine on it.
func Evaluate(logger *zap.Logger, name string, form valuation.Form, policy valuation.Policy) Analysis {
	return EvaluateInput(logger, name, valuation.ParseForm(form), policy)
}

// EvaluateInput runs the engine on an already coerced input and attaches
// notes about the result.
func EvaluateInput(logger *zap.Logger, name string, in valuation.InvestmentInput, policy valuation.Policy) Analysis {
	if logger == nil {
		logger = zap.NewNop()
	}

	result := Analysis{
		Name:    name,
		Input:   in,
		Metrics: valuation.Evaluate(in, policy),
	}

	if result.Metrics == nil {
		result.Notes = append(result.Notes, "no purchase price given; metrics unavailable")
		logger.Warn(fmt.Sprintf("property %s has no purchase price", name),
			zap.String("op", "analysis.EvaluateInput"),
		)
		return result
	}

	if result.Metrics.PaymentsToRemovePMI > 0 {
		result.Notes = append(result.Notes, fmt.Sprintf("PMI expected to drop off after about %d payments",
			result.Metrics.PaymentsToRemovePMI))
	}
	if result.Metrics.MonthlyCashFlow < 0 {
		result.Notes = append(result.Notes, "negative monthly cash flow")
	}

	logger.Debug(fmt.Sprintf("evaluated property %s", name),
		zap.String("op", "analysis.EvaluateInput"),
		zap.Float64("monthlyCashFlow", result.Metrics.MonthlyCashFlow),
		zap.Float64("cashOnCashReturn", result.Metrics.CashOnCashReturn),
	)

	return result
}

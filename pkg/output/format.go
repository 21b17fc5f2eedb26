// Package output provides utilities for formatting and displaying valuation results.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/iwvelando/rental-valuation/internal/analysis"
	"github.com/iwvelando/rental-valuation/internal/valuation"
	"github.com/iwvelando/rental-valuation/pkg/constants"
	"github.com/iwvelando/rental-valuation/pkg/format"
)

type kind int

const (
	money kind = iota
	rate
	count
)

type line struct {
	label  string
	column string
	kind   kind
	value  func(m *valuation.Metrics) float64
}

var lines = []line{
	{"Down Payment Rate", "downPaymentRate", rate, func(m *valuation.Metrics) float64 { return m.DownPaymentRate }},
	{"Down Payment", "downPayment", money, func(m *valuation.Metrics) float64 { return m.DownPayment }},
	{"Loan Amount", "loanAmount", money, func(m *valuation.Metrics) float64 { return m.LoanAmount }},
	{"Closing Costs", "closingCosts", money, func(m *valuation.Metrics) float64 { return m.ClosingCosts }},
	{"Upfront MIP", "upfrontMip", money, func(m *valuation.Metrics) float64 { return m.UpfrontMIP }},
	{"Total Cash Needed", "totalCashNeeded", money, func(m *valuation.Metrics) float64 { return m.TotalCashNeeded }},
	{"Principal & Interest", "principalAndInterest", money, func(m *valuation.Metrics) float64 { return m.PrincipalAndInterest }},
	{"Property Tax", "propertyTax", money, func(m *valuation.Metrics) float64 { return m.PropertyTax }},
	{"Insurance", "insurance", money, func(m *valuation.Metrics) float64 { return m.Insurance }},
	{"Mortgage Insurance", "mortgageInsurance", money, func(m *valuation.Metrics) float64 { return m.MortgageInsurance }},
	{"PMI", "pmi", money, func(m *valuation.Metrics) float64 { return m.PMI }},
	{"Housing Payment", "housingPayment", money, func(m *valuation.Metrics) float64 { return m.HousingPayment }},
	{"Gross Rent", "grossRent", money, func(m *valuation.Metrics) float64 { return m.GrossRent }},
	{"Vacancy Loss", "vacancyLoss", money, func(m *valuation.Metrics) float64 { return m.VacancyLoss }},
	{"Effective Rent", "effectiveRent", money, func(m *valuation.Metrics) float64 { return m.EffectiveRent }},
	{"Management", "management", money, func(m *valuation.Metrics) float64 { return m.Management }},
	{"Maintenance", "maintenance", money, func(m *valuation.Metrics) float64 { return m.Maintenance }},
	{"Landscaping", "landscaping", money, func(m *valuation.Metrics) float64 { return m.Landscaping }},
	{"Utilities", "utilities", money, func(m *valuation.Metrics) float64 { return m.Utilities }},
	{"Total Monthly Expenses", "totalMonthlyExpenses", money, func(m *valuation.Metrics) float64 { return m.TotalMonthlyExpenses }},
	{"Monthly Cash Flow", "monthlyCashFlow", money, func(m *valuation.Metrics) float64 { return m.MonthlyCashFlow }},
	{"Yearly Cash Flow", "yearlyCashFlow", money, func(m *valuation.Metrics) float64 { return m.YearlyCashFlow }},
	{"Cash on Cash Return", "cashOnCashReturn", rate, func(m *valuation.Metrics) float64 { return m.CashOnCashReturn }},
	{"Payments to Remove PMI", "paymentsToRemovePmi", count, func(m *valuation.Metrics) float64 { return float64(m.PaymentsToRemovePMI) }},
}

func (l line) pretty(m *valuation.Metrics) string {
	v := l.value(m)
	switch l.kind {
	case rate:
		return format.Percent(v)
	case count:
		return strconv.Itoa(int(v))
	default:
		return format.Currency(v)
	}
}

func (l line) raw(m *valuation.Metrics) string {
	v := l.value(m)
	switch l.kind {
	case count:
		return strconv.Itoa(int(v))
	default:
		return format.NumericCurrency(v)
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// PrettyFormat outputs a human-readable rather than machine-readable table.
func PrettyFormat(w io.Writer, results []analysis.Analysis) error {
	width := 0
	for _, l := range lines {
		if len(l.label) > width {
			width = len(l.label)
		}
	}

	var b strings.Builder
	for i, result := range results {
		in := result.Input
		fmt.Fprintf(&b, "--- Results for property %s ---\n", result.Name)
		fmt.Fprintf(&b, "%s, %d unit(s), %s, %d year loan\n",
			in.PropertyType.Label(), in.Units, format.Currency(in.PurchasePrice), in.LoanTermYears)

		if result.Metrics == nil {
			b.WriteString("No metrics available\n")
		} else {
			fmt.Fprintf(&b, "%-*s | %s\n", width, "FHA", yesNo(result.Metrics.FHA))
			for _, l := range lines {
				fmt.Fprintf(&b, "%-*s | %s\n", width, l.label, l.pretty(result.Metrics))
			}
		}

		for _, note := range result.Notes {
			fmt.Fprintf(&b, "Note: %s\n", note)
		}
		if i < len(results)-1 {
			b.WriteString("\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// CsvFormat outputs in comma-separated value format, one row per property.
func CsvFormat(w io.Writer, results []analysis.Analysis) error {
	cw := csv.NewWriter(w)

	header := []string{"name", "propertyType", "units", "purchasePrice", "loanTermYears", "fha"}
	for _, l := range lines {
		header = append(header, l.column)
	}
	header = append(header, "notes")
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, result := range results {
		in := result.Input
		record := []string{
			result.Name,
			string(in.PropertyType),
			strconv.Itoa(in.Units),
			format.NumericCurrency(in.PurchasePrice),
			strconv.Itoa(in.LoanTermYears),
		}
		if result.Metrics == nil {
			record = append(record, "")
			for range lines {
				record = append(record, "")
			}
		} else {
			record = append(record, strconv.FormatBool(result.Metrics.FHA))
			for _, l := range lines {
				record = append(record, l.raw(result.Metrics))
			}
		}
		record = append(record, strings.Join(result.Notes, "; "))

		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// JSONFormat outputs the full results, unrounded, as an indented JSON array.
func JSONFormat(w io.Writer, results []analysis.Analysis) error {
	if results == nil {
		results = []analysis.Analysis{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

// Write dispatches to the writer for the named format.
func Write(w io.Writer, outputFormat string, results []analysis.Analysis) error {
	switch outputFormat {
	case constants.OutputFormatCSV:
		return CsvFormat(w, results)
	case constants.OutputFormatJSON:
		return JSONFormat(w, results)
	case constants.OutputFormatPretty, "":
		return PrettyFormat(w, results)
	}
	return fmt.Errorf("unsupported output format %q", outputFormat)
}

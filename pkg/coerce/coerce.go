// Package coerce converts loosely typed form values (JSON numbers, numeric
// strings, blanks) into the numbers the valuation engine works with.
//
// Coercion is permissive: anything that cannot be read as a finite number
// becomes 0 instead of an error.
package coerce

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/iwvelando/rental-valuation/pkg/mathutil"
	"github.com/spf13/cast"
)

var numberNoise = strings.NewReplacer(",", "", "$", "", "%", "", "_", "", " ", "")

// Float reads v as a float64, returning 0 for blank, non-numeric or
// non-finite values.
func Float(v interface{}) float64 {
	f, ok := parse(v)
	if !ok {
		return 0
	}
	return f
}

// Amount reads a currency amount; negatives collapse to 0.
func Amount(v interface{}) float64 {
	return mathutil.NonNegative(Float(v))
}

// Percent reads a rate and bounds it to [0, 100].
func Percent(v interface{}) float64 {
	return mathutil.ClampPercent(Float(v))
}

// Optional reports whether v carries a usable number. Nil, blank and
// unparseable values mean "not supplied" so the caller can fall back to a
// default.
func Optional(v interface{}) (float64, bool) {
	return parse(v)
}

// Int reads v as an integer, truncating fractional input.
func Int(v interface{}) int {
	if i, err := cast.ToIntE(v); err == nil {
		return i
	}
	return int(Float(v))
}

// Bool reads checkbox-style values. Unrecognised strings are false.
func Bool(v interface{}) bool {
	if s, ok := v.(string); ok {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "on", "yes", "y":
			return true
		}
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return false
	}
	return b
}

// Rents normalises per-unit rents into exactly units entries. v may be a list
// (position i is unit i+1) or a map keyed by the 1-based unit index. Missing
// units are 0 and indexes beyond units are dropped.
func Rents(v interface{}, units int) []float64 {
	if units < 0 {
		units = 0
	}
	rents := make([]float64, units)

	switch typed := v.(type) {
	case []interface{}:
		for i := 0; i < len(typed) && i < units; i++ {
			rents[i] = Amount(typed[i])
		}
	case []float64:
		for i := 0; i < len(typed) && i < units; i++ {
			rents[i] = mathutil.NonNegative(typed[i])
		}
	case []string:
		for i := 0; i < len(typed) && i < units; i++ {
			rents[i] = Amount(typed[i])
		}
	default:
		indexed, err := cast.ToStringMapE(v)
		if err != nil {
			return rents
		}
		keys := make([]string, 0, len(indexed))
		for key := range indexed {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			unit, err := strconv.Atoi(strings.TrimSpace(key))
			if err != nil || unit < 1 || unit > units {
				continue
			}
			rents[unit-1] = Amount(indexed[key])
		}
	}

	return rents
}

func parse(v interface{}) (float64, bool) {
	switch typed := v.(type) {
	case nil:
		return 0, false
	case bool:
		return 0, false
	case string:
		cleaned := numberNoise.Replace(strings.TrimSpace(typed))
		if cleaned == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0, false
		}
		return finite(f)
	case json.Number:
		f, err := typed.Float64()
		if err != nil {
			return 0, false
		}
		return finite(f)
	}

	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, false
	}
	return finite(f)
}

func finite(f float64) (float64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

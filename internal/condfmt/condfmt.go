// Package condfmt evaluates conditional-format rules against cell values.
// Rules attach to columns in declaration order and the first matching rule
// decides the styling for a cell; rules never affect computed values.
package condfmt

import (
	"strconv"
	"strings"

	"github.com/dsdsmelo/gridnote/pkg/sheet"
)

// IntentFor runs a column's rule list against one cell and returns the
// styling of the first matching rule. The boolean reports whether any
// rule matched. The value is the string the cell presents (the computed
// value for formula cells, the raw value otherwise); raw is always the
// raw value, which the emptiness kinds test regardless of cell type.
func IntentFor(rules []sheet.ConditionalFormat, value, raw string) (sheet.DisplayIntent, bool) {
	for i := range rules {
		if Matches(&rules[i], value, raw) {
			return rules[i].Intent, true
		}
	}
	return sheet.DisplayIntent{}, false
}

// Matches reports whether one rule matches a cell. Ordering rules compare
// the presented value numerically when both sides parse as numbers and
// fall back to lexicographic comparison otherwise; between is numeric
// only and never matches non-numeric values; isEmpty and notEmpty look at
// the raw value, so a formula computing "" still counts as non-empty.
func Matches(rule *sheet.ConditionalFormat, value, raw string) bool {
	switch rule.Kind {
	case sheet.ConditionGreaterThan:
		return compare(value, rule.Operand1) > 0
	case sheet.ConditionLessThan:
		return compare(value, rule.Operand1) < 0
	case sheet.ConditionEquals:
		return compare(value, rule.Operand1) == 0
	case sheet.ConditionBetween:
		v, okV := parseNum(value)
		lo, okLo := parseNum(rule.Operand1)
		hi, okHi := parseNum(rule.Operand2)
		if !okV || !okLo || !okHi {
			return false
		}
		if lo > hi {
			lo, hi = hi, lo
		}
		return v >= lo && v <= hi
	case sheet.ConditionContains:
		return strings.Contains(strings.ToLower(value), strings.ToLower(rule.Operand1))
	case sheet.ConditionIsEmpty:
		return strings.TrimSpace(raw) == ""
	case sheet.ConditionNotEmpty:
		return strings.TrimSpace(raw) != ""
	default:
		return false
	}
}

// compare orders two cell-value strings: numerically when both parse,
// lexicographically otherwise.
func compare(a, b string) int {
	na, okA := parseNum(a)
	nb, okB := parseNum(b)
	if okA && okB {
		switch {
		case na < nb:
			return -1
		case na > nb:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(a, b)
}

func parseNum(s string) (float64, bool) {
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return n, err == nil
}

package condfmt

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dsdsmelo/gridnote/pkg/sheet"
)

func rule(kind sheet.ConditionKind, op1, op2 string) sheet.ConditionalFormat {
	return sheet.ConditionalFormat{
		ID:       "rule-" + op1,
		Kind:     kind,
		Operand1: op1,
		Operand2: op2,
	}
}

func TestMatchesOrdering(t *testing.T) {
	tests := []struct {
		name  string
		rule  sheet.ConditionalFormat
		value string
		want  bool
	}{
		{"greater than numeric", rule(sheet.ConditionGreaterThan, "100", ""), "150", true},
		{"greater than equal is not greater", rule(sheet.ConditionGreaterThan, "100", ""), "100", false},
		{"less than numeric", rule(sheet.ConditionLessThan, "100", ""), "99.5", true},
		{"numeric comparison beats lexicographic", rule(sheet.ConditionGreaterThan, "9", ""), "10", true},
		{"lexicographic fallback", rule(sheet.ConditionGreaterThan, "apple", ""), "banana", true},
		{"equals numeric", rule(sheet.ConditionEquals, "5", ""), "5.0", true},
		{"equals text", rule(sheet.ConditionEquals, "done", ""), "done", true},
		{"equals text mismatch", rule(sheet.ConditionEquals, "done", ""), "Done", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Matches(&tt.rule, tt.value, tt.value))
		})
	}
}

func TestMatchesBetween(t *testing.T) {
	r := rule(sheet.ConditionBetween, "10", "20")

	assert.True(t, Matches(&r, "10", "10"))
	assert.True(t, Matches(&r, "15", "15"))
	assert.True(t, Matches(&r, "20", "20"))
	assert.False(t, Matches(&r, "9.99", "9.99"))
	assert.False(t, Matches(&r, "20.01", "20.01"))

	t.Run("operands in either order", func(t *testing.T) {
		swapped := rule(sheet.ConditionBetween, "20", "10")
		assert.True(t, Matches(&swapped, "15", "15"))
	})

	t.Run("non-numeric values never match", func(t *testing.T) {
		assert.False(t, Matches(&r, "fifteen", "fifteen"))
		assert.False(t, Matches(&r, "", ""))
	})
}

func TestMatchesContains(t *testing.T) {
	r := rule(sheet.ConditionContains, "urgent", "")

	assert.True(t, Matches(&r, "URGENT: fix login", "URGENT: fix login"))
	assert.True(t, Matches(&r, "not that urgent", "not that urgent"))
	assert.False(t, Matches(&r, "routine", "routine"))
}

func TestMatchesEmptiness(t *testing.T) {
	empty := rule(sheet.ConditionIsEmpty, "", "")
	notEmpty := rule(sheet.ConditionNotEmpty, "", "")

	assert.True(t, Matches(&empty, "", ""))
	assert.True(t, Matches(&empty, "   ", "   "))
	assert.False(t, Matches(&empty, "x", "x"))

	assert.False(t, Matches(&notEmpty, "", ""))
	assert.True(t, Matches(&notEmpty, "x", "x"))

	t.Run("formula cells are judged by their raw text", func(t *testing.T) {
		// a formula computing "" still counts as a non-empty cell
		assert.False(t, Matches(&empty, "", `=IF(A1>0,"x","")`))
		assert.True(t, Matches(&notEmpty, "", `=IF(A1>0,"x","")`))
	})
}

func TestIntentForFirstMatchWins(t *testing.T) {
	red := sheet.DisplayIntent{BackgroundColor: "#ff0000"}
	green := sheet.DisplayIntent{BackgroundColor: "#00ff00"}

	rules := []sheet.ConditionalFormat{
		{ID: "r1", Kind: sheet.ConditionGreaterThan, Operand1: "100", Intent: red},
		{ID: "r2", Kind: sheet.ConditionGreaterThan, Operand1: "50", Intent: green},
	}

	intent, ok := IntentFor(rules, "150", "150")
	assert.True(t, ok)
	assert.Equal(t, red, intent)

	intent, ok = IntentFor(rules, "75", "75")
	assert.True(t, ok)
	assert.Equal(t, green, intent)

	_, ok = IntentFor(rules, "10", "10")
	assert.False(t, ok)
}

func TestIntentForNoRules(t *testing.T) {
	intent, ok := IntentFor(nil, "anything", "anything")
	assert.False(t, ok)
	assert.True(t, intent.Zero())
}

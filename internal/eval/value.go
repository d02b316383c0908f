// Package eval walks a parsed expression tree and produces a typed result.
// Values form a fixed tagged variant (number, text, boolean, or one of the
// error kinds) and all failure is representable as data: value errors are
// stored and propagated, never raised.
package eval

import (
	"strconv"
	"strings"
	"time"

	"github.com/dsdsmelo/gridnote/pkg/sheet"
)

// ValueKind discriminates the evaluated value variants.
type ValueKind int

const (
	KindEmpty ValueKind = iota
	KindNumber
	KindText
	KindBool
	KindError
)

// ErrorKind identifies a value error.
type ErrorKind int

const (
	// ErrDivByZero is division by zero
	ErrDivByZero ErrorKind = iota

	// ErrRef is a reference to a deleted or out-of-range cell
	ErrRef

	// ErrCircular is a reference into a detected dependency cycle
	ErrCircular

	// ErrTypeMismatch is a raw value incompatible with its column type
	ErrTypeMismatch

	// ErrEval is any other evaluation failure, e.g. arithmetic on text
	ErrEval
)

// Display strings follow the familiar spreadsheet error codes.
func (k ErrorKind) String() string {
	switch k {
	case ErrDivByZero:
		return "#DIV/0!"
	case ErrRef:
		return "#REF!"
	case ErrCircular:
		return "#CIRC!"
	case ErrTypeMismatch:
		return "#TYPE!"
	case ErrEval:
		return "#VALUE!"
	}
	return "#ERROR!"
}

// Value is an evaluated cell result. Only the field for the active Kind is
// meaningful.
type Value struct {
	Kind ValueKind
	Num  float64
	Text string
	Bool bool
	Err  ErrorKind
}

// Empty returns the empty value.
func Empty() Value { return Value{Kind: KindEmpty} }

// Number wraps a float.
func Number(n float64) Value { return Value{Kind: KindNumber, Num: n} }

// Text wraps a string.
func Text(s string) Value { return Value{Kind: KindText, Text: s} }

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// Error wraps a value error.
func Error(kind ErrorKind) Value { return Value{Kind: KindError, Err: kind} }

// IsError reports whether the value is an error.
func (v Value) IsError() bool { return v.Kind == KindError }

// IsEmpty reports whether the value is empty.
func (v Value) IsEmpty() bool { return v.Kind == KindEmpty }

// AsNumber attempts numeric interpretation: numbers directly, booleans as
// 0/1, text that parses with standard decimal rules, and empty as zero.
// Aggregates exclude empties before calling this.
func (v Value) AsNumber() (float64, bool) {
	switch v.Kind {
	case KindNumber:
		return v.Num, true
	case KindEmpty:
		return 0, true
	case KindBool:
		if v.Bool {
			return 1, true
		}
		return 0, true
	case KindText:
		n, err := strconv.ParseFloat(strings.TrimSpace(v.Text), 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// Truthy implements boolean coercion: booleans directly, numbers by
// comparison with zero, text by numeric parse if possible, otherwise by
// non-emptiness. Empty and error values are false.
func (v Value) Truthy() bool {
	switch v.Kind {
	case KindBool:
		return v.Bool
	case KindNumber:
		return v.Num != 0
	case KindText:
		if n, ok := v.AsNumber(); ok {
			return n != 0
		}
		return strings.TrimSpace(v.Text) != ""
	default:
		return false
	}
}

// Display renders the value as the cell's computed string.
func (v Value) Display() string {
	switch v.Kind {
	case KindEmpty:
		return ""
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	case KindText:
		return v.Text
	case KindBool:
		if v.Bool {
			return "TRUE"
		}
		return "FALSE"
	case KindError:
		return v.Err.String()
	}
	return ""
}

// Compare orders two values: -1, 0, or 1. Numeric comparison when both
// sides are numeric, lexicographic string comparison otherwise. Empty
// sorts before everything.
func Compare(a, b Value) int {
	if a.IsEmpty() && b.IsEmpty() {
		return 0
	}
	if a.IsEmpty() {
		return -1
	}
	if b.IsEmpty() {
		return 1
	}

	an, aok := a.AsNumber()
	bn, bok := b.AsNumber()
	if aok && bok {
		switch {
		case an < bn:
			return -1
		case an > bn:
			return 1
		default:
			return 0
		}
	}

	return strings.Compare(a.Display(), b.Display())
}

// CoerceRaw interprets a non-formula raw value per its column type.
// Number-family types parse with standard decimal rules (currency strips a
// leading currency sign and thousands separators, percentage strips the
// trailing percent sign); dates parse ISO-8601. Failures yield
// Error(ErrTypeMismatch); the raw text itself is retained by the caller.
func CoerceRaw(raw string, colType sheet.ColumnType) Value {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Empty()
	}

	switch colType {
	case sheet.ColumnTypeNumber:
		return parseNumber(trimmed)

	case sheet.ColumnTypeCurrency:
		s := strings.TrimPrefix(trimmed, "$")
		s = strings.ReplaceAll(s, ",", "")
		return parseNumber(strings.TrimSpace(s))

	case sheet.ColumnTypePercentage:
		s := strings.TrimSuffix(trimmed, "%")
		return parseNumber(strings.TrimSpace(s))

	case sheet.ColumnTypeDate:
		t, err := time.Parse("2006-01-02", trimmed)
		if err != nil {
			return Error(ErrTypeMismatch)
		}
		return Text(t.Format("2006-01-02"))

	default:
		// text and formula columns store raw input verbatim
		return Text(raw)
	}
}

func parseNumber(s string) Value {
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Error(ErrTypeMismatch)
	}
	return Number(n)
}

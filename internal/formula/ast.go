// Package formula turns formula text into a fixed tagged-variant expression
// tree. A formula begins with "="; the body is a literal, an A1-style cell
// or range reference, a call to one of the built-in functions, or a binary
// arithmetic/comparison expression with standard precedence.
//
// The tree is a single Expr struct discriminated by Kind rather than a node
// class hierarchy, so the evaluator can be one exhaustive switch and
// dependency extraction is a plain tree walk.
package formula

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dsdsmelo/gridnote/internal/refs"
)

// Kind discriminates the expression variants.
type Kind int

const (
	KindNumber Kind = iota
	KindString
	KindRef
	KindRange
	KindCall
	KindBinary
	KindUnary
	KindRefError
)

// RefErrorText is the literal a broken reference leaves behind in formula
// text after the row or column it pointed at was deleted.
const RefErrorText = "#REF!"

// Func is a built-in function name.
type Func string

const (
	FuncSum   Func = "SUM"
	FuncCount Func = "COUNT"
	FuncAvg   Func = "AVG"
	FuncMin   Func = "MIN"
	FuncMax   Func = "MAX"
	FuncIf    Func = "IF"
)

// knownFunc reports whether name is a built-in, and its fixed arity
// (-1 means variadic with at least one argument).
func knownFunc(name string) (Func, int, bool) {
	switch Func(name) {
	case FuncIf:
		return FuncIf, 3, true
	case FuncSum, FuncCount, FuncAvg, FuncMin, FuncMax:
		return Func(name), -1, true
	default:
		return "", 0, false
	}
}

// BinOp is a binary operator.
type BinOp int

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
)

func (op BinOp) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpEq:
		return "="
	case OpNe:
		return "<>"
	case OpLt:
		return "<"
	case OpLe:
		return "<="
	case OpGt:
		return ">"
	case OpGe:
		return ">="
	}
	return "?"
}

// Expr is one node of the expression tree. Only the fields for the active
// Kind are meaningful.
type Expr struct {
	Kind Kind
	Pos  int // byte offset in the formula text

	Num float64    // KindNumber
	Str string     // KindString
	Ref refs.Coord // KindRef
	Rng refs.Range // KindRange

	Fn   Func    // KindCall
	Args []*Expr // KindCall

	Op    BinOp // KindBinary
	Left  *Expr // KindBinary
	Right *Expr // KindBinary

	Operand *Expr // KindUnary (negation)
}

// Refs walks the tree and collects every cell coordinate the expression
// reads, with ranges expanded to their member coords. Used for dependency
// registration.
func (e *Expr) Refs() []refs.Coord {
	var out []refs.Coord
	e.walk(func(n *Expr) {
		switch n.Kind {
		case KindRef:
			out = append(out, n.Ref)
		case KindRange:
			out = append(out, n.Rng.Coords()...)
		}
	})
	return out
}

func (e *Expr) walk(fn func(*Expr)) {
	if e == nil {
		return
	}
	fn(e)
	e.Left.walk(fn)
	e.Right.walk(fn)
	e.Operand.walk(fn)
	for _, a := range e.Args {
		a.walk(fn)
	}
}

// String reconstructs formula body text from the tree (without the leading
// "="). Mainly for diagnostics and tests.
func (e *Expr) String() string {
	switch e.Kind {
	case KindNumber:
		return strconv.FormatFloat(e.Num, 'g', -1, 64)
	case KindString:
		return `"` + strings.ReplaceAll(e.Str, `"`, `""`) + `"`
	case KindRef:
		return refs.FormatLabel(e.Ref)
	case KindRange:
		return refs.FormatRange(e.Rng)
	case KindCall:
		parts := make([]string, len(e.Args))
		for i, a := range e.Args {
			parts[i] = a.String()
		}
		return fmt.Sprintf("%s(%s)", e.Fn, strings.Join(parts, ","))
	case KindBinary:
		return fmt.Sprintf("(%s%s%s)", e.Left.String(), e.Op, e.Right.String())
	case KindUnary:
		return "-" + e.Operand.String()
	case KindRefError:
		return RefErrorText
	}
	return "?"
}

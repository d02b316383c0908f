package formula

import (
	"fmt"
	"strconv"

	"github.com/dsdsmelo/gridnote/internal/refs"
)

// ParseError reports malformed formula syntax with the byte position of
// the offending token. A ParseError means the formula was rejected whole;
// the parser never partially succeeds.
type ParseError struct {
	Pos    int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at position %d: %s", e.Pos, e.Reason)
}

// IsParseError checks if an error is a *ParseError.
func IsParseError(err error) bool {
	_, ok := err.(*ParseError)
	return ok
}

// parser consumes a token stream with single-token lookahead.
type parser struct {
	tokens []Token
	pos    int
}

// Parse parses formula text (including the leading "=") into an expression
// tree. All failures are *ParseError.
func Parse(text string) (*Expr, error) {
	tokens, err := newLexer(text).tokenize()
	if err != nil {
		return nil, err
	}

	p := &parser{tokens: tokens}
	if p.peek().Type != TokenEquals {
		return nil, &ParseError{Pos: 0, Reason: `formula must start with "="`}
	}
	p.pos++

	node, err := p.parseComparison()
	if err != nil {
		return nil, err
	}

	if tok := p.peek(); tok.Type != TokenEOF {
		return nil, &ParseError{Pos: tok.Pos, Reason: fmt.Sprintf("unexpected token after expression: %q", tok.Value)}
	}
	return node, nil
}

func (p *parser) peek() Token {
	return p.tokens[p.pos]
}

func (p *parser) next() Token {
	tok := p.tokens[p.pos]
	if tok.Type != TokenEOF {
		p.pos++
	}
	return tok
}

// parseComparison handles comparison operators (lowest precedence).
func (p *parser) parseComparison() (*Expr, error) {
	left, err := p.parseAddition()
	if err != nil {
		return nil, err
	}

	for p.peek().Type == TokenOp {
		var op BinOp
		switch p.peek().Value {
		case "=":
			op = OpEq
		case "<>", "!=":
			op = OpNe
		case "<":
			op = OpLt
		case "<=":
			op = OpLe
		case ">":
			op = OpGt
		case ">=":
			op = OpGe
		default:
			return left, nil
		}
		p.next()

		right, err := p.parseAddition()
		if err != nil {
			return nil, err
		}
		left = &Expr{Kind: KindBinary, Op: op, Left: left, Right: right, Pos: left.Pos}
	}
	return left, nil
}

// parseAddition handles addition and subtraction.
func (p *parser) parseAddition() (*Expr, error) {
	left, err := p.parseMultiplication()
	if err != nil {
		return nil, err
	}

	for p.peek().Type == TokenOp {
		var op BinOp
		switch p.peek().Value {
		case "+":
			op = OpAdd
		case "-":
			op = OpSub
		default:
			return left, nil
		}
		p.next()

		right, err := p.parseMultiplication()
		if err != nil {
			return nil, err
		}
		left = &Expr{Kind: KindBinary, Op: op, Left: left, Right: right, Pos: left.Pos}
	}
	return left, nil
}

// parseMultiplication handles multiplication and division.
func (p *parser) parseMultiplication() (*Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for p.peek().Type == TokenOp {
		var op BinOp
		switch p.peek().Value {
		case "*":
			op = OpMul
		case "/":
			op = OpDiv
		default:
			return left, nil
		}
		p.next()

		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &Expr{Kind: KindBinary, Op: op, Left: left, Right: right, Pos: left.Pos}
	}
	return left, nil
}

// parseUnary handles prefix plus and minus.
func (p *parser) parseUnary() (*Expr, error) {
	tok := p.peek()
	if tok.Type == TokenOp && (tok.Value == "-" || tok.Value == "+") {
		p.next()
		operand, err := p.parseUnary() // chained unary operators
		if err != nil {
			return nil, err
		}
		if tok.Value == "+" {
			return operand, nil
		}
		return &Expr{Kind: KindUnary, Operand: operand, Pos: tok.Pos}, nil
	}
	return p.parsePrimary()
}

// parsePrimary handles literals, references, function calls, and
// parenthesized sub-expressions.
func (p *parser) parsePrimary() (*Expr, error) {
	tok := p.next()

	switch tok.Type {
	case TokenNumber:
		val, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			return nil, &ParseError{Pos: tok.Pos, Reason: fmt.Sprintf("invalid number: %q", tok.Value)}
		}
		return &Expr{Kind: KindNumber, Num: val, Pos: tok.Pos}, nil

	case TokenString:
		return &Expr{Kind: KindString, Str: tok.Value, Pos: tok.Pos}, nil

	case TokenCell:
		coord, err := refs.ParseLabel(tok.Value)
		if err != nil {
			return nil, &ParseError{Pos: tok.Pos, Reason: err.Error()}
		}
		return &Expr{Kind: KindRef, Ref: coord, Pos: tok.Pos}, nil

	case TokenRange:
		rng, err := refs.ParseRange(tok.Value)
		if err != nil {
			return nil, &ParseError{Pos: tok.Pos, Reason: err.Error()}
		}
		return &Expr{Kind: KindRange, Rng: rng, Pos: tok.Pos}, nil

	case TokenRefError:
		return &Expr{Kind: KindRefError, Pos: tok.Pos}, nil

	case TokenFunction:
		return p.parseCall(tok)

	case TokenLeftParen:
		node, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		if close := p.next(); close.Type != TokenRightParen {
			return nil, &ParseError{Pos: close.Pos, Reason: "expected closing parenthesis"}
		}
		return node, nil

	case TokenEOF:
		return nil, &ParseError{Pos: tok.Pos, Reason: "unexpected end of formula"}

	default:
		return nil, &ParseError{Pos: tok.Pos, Reason: fmt.Sprintf("unexpected token: %q", tok.Value)}
	}
}

// parseCall parses NAME(arg, arg, ...) with arity enforced at parse time.
func (p *parser) parseCall(nameTok Token) (*Expr, error) {
	fn, arity, ok := knownFunc(nameTok.Value)
	if !ok {
		return nil, &ParseError{Pos: nameTok.Pos, Reason: fmt.Sprintf("unknown function: %s", nameTok.Value)}
	}

	if open := p.next(); open.Type != TokenLeftParen {
		return nil, &ParseError{Pos: open.Pos, Reason: fmt.Sprintf("expected %q after function name", "(")}
	}

	var args []*Expr
	if p.peek().Type != TokenRightParen {
		for {
			arg, err := p.parseComparison()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)

			sep := p.next()
			if sep.Type == TokenRightParen {
				p.pos-- // reprocessed below
				break
			}
			if sep.Type != TokenComma {
				return nil, &ParseError{Pos: sep.Pos, Reason: `expected "," or ")" in function arguments`}
			}
		}
	}
	if close := p.next(); close.Type != TokenRightParen {
		return nil, &ParseError{Pos: close.Pos, Reason: "expected closing parenthesis"}
	}

	if arity >= 0 && len(args) != arity {
		return nil, &ParseError{
			Pos:    nameTok.Pos,
			Reason: fmt.Sprintf("%s takes exactly %d arguments, got %d", fn, arity, len(args)),
		}
	}
	if arity < 0 && len(args) == 0 {
		return nil, &ParseError{
			Pos:    nameTok.Pos,
			Reason: fmt.Sprintf("%s requires at least one argument", fn),
		}
	}

	return &Expr{Kind: KindCall, Fn: fn, Args: args, Pos: nameTok.Pos}, nil
}

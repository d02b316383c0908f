package formula

import (
	"fmt"
	"strings"
)

// TokenType identifies a lexical token class.
type TokenType int

const (
	TokenEquals TokenType = iota
	TokenNumber
	TokenString
	TokenCell
	TokenRange
	TokenRefError
	TokenFunction
	TokenOp
	TokenLeftParen
	TokenRightParen
	TokenComma
	TokenEOF
)

// Token is one lexical unit of a formula with its byte position in the
// original text, used for ParseError reporting.
type Token struct {
	Type  TokenType
	Value string
	Pos   int
}

// lexer tokenizes a formula string. Whitespace is insignificant.
type lexer struct {
	input string
	pos   int
}

func newLexer(input string) *lexer {
	return &lexer{input: input}
}

// tokenize scans the whole input. It returns a ParseError on malformed
// input (unterminated string, stray character); it never partially
// succeeds.
func (l *lexer) tokenize() ([]Token, error) {
	var tokens []Token

	for l.pos < len(l.input) {
		ch := l.input[l.pos]

		switch {
		case ch == ' ' || ch == '\t':
			l.pos++

		case ch == '=' && len(tokens) == 0:
			tokens = append(tokens, Token{Type: TokenEquals, Value: "=", Pos: l.pos})
			l.pos++

		case ch >= '0' && ch <= '9' || ch == '.':
			tok, err := l.scanNumber()
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)

		case ch == '"':
			tok, err := l.scanString()
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)

		case isLetter(ch):
			tokens = append(tokens, l.scanWord())

		case ch == '#':
			tok, err := l.scanRefError()
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)

		case ch == '(':
			tokens = append(tokens, Token{Type: TokenLeftParen, Value: "(", Pos: l.pos})
			l.pos++

		case ch == ')':
			tokens = append(tokens, Token{Type: TokenRightParen, Value: ")", Pos: l.pos})
			l.pos++

		case ch == ',':
			tokens = append(tokens, Token{Type: TokenComma, Value: ",", Pos: l.pos})
			l.pos++

		case ch == '+' || ch == '-' || ch == '*' || ch == '/':
			tokens = append(tokens, Token{Type: TokenOp, Value: string(ch), Pos: l.pos})
			l.pos++

		case ch == '<' || ch == '>' || ch == '=' || ch == '!':
			tok, err := l.scanComparison()
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)

		default:
			return nil, &ParseError{Pos: l.pos, Reason: fmt.Sprintf("unexpected character %q", ch)}
		}
	}

	tokens = append(tokens, Token{Type: TokenEOF, Pos: len(l.input)})
	return tokens, nil
}

// scanNumber scans a decimal literal. A second dot ends the literal and
// will surface as a parse error downstream.
func (l *lexer) scanNumber() (Token, error) {
	start := l.pos
	sawDot := false
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if ch >= '0' && ch <= '9' {
			l.pos++
			continue
		}
		if ch == '.' && !sawDot {
			sawDot = true
			l.pos++
			continue
		}
		break
	}
	val := l.input[start:l.pos]
	if val == "." {
		return Token{}, &ParseError{Pos: start, Reason: "invalid number"}
	}
	return Token{Type: TokenNumber, Value: val, Pos: start}, nil
}

// scanString scans a double-quoted literal. Doubled quotes escape a quote.
func (l *lexer) scanString() (Token, error) {
	start := l.pos
	l.pos++ // opening quote
	var sb strings.Builder
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if ch == '"' {
			if l.pos+1 < len(l.input) && l.input[l.pos+1] == '"' {
				sb.WriteByte('"')
				l.pos += 2
				continue
			}
			l.pos++
			return Token{Type: TokenString, Value: sb.String(), Pos: start}, nil
		}
		sb.WriteByte(ch)
		l.pos++
	}
	return Token{}, &ParseError{Pos: start, Reason: "unterminated string literal"}
}

// scanWord scans letters (and trailing digits) into a cell, range, or
// function token. A letters-only word followed by "(" is a function name;
// letters+digits is a cell reference, optionally extended with ":cell"
// into a range.
func (l *lexer) scanWord() Token {
	start := l.pos
	for l.pos < len(l.input) && isLetter(l.input[l.pos]) {
		l.pos++
	}
	lettersEnd := l.pos
	for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
		l.pos++
	}

	if l.pos == lettersEnd {
		// letters only: function name (arg list or not is the parser's problem)
		return Token{Type: TokenFunction, Value: strings.ToUpper(l.input[start:l.pos]), Pos: start}
	}

	// cell reference; check for a range tail
	if l.pos < len(l.input) && l.input[l.pos] == ':' {
		save := l.pos
		l.pos++ // colon
		tailStart := l.pos
		for l.pos < len(l.input) && isLetter(l.input[l.pos]) {
			l.pos++
		}
		tailLetters := l.pos
		for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
			l.pos++
		}
		if tailLetters > tailStart && l.pos > tailLetters {
			return Token{Type: TokenRange, Value: strings.ToUpper(l.input[start:l.pos]), Pos: start}
		}
		// not a valid range tail; rewind to the colon
		l.pos = save
	}

	return Token{Type: TokenCell, Value: strings.ToUpper(l.input[start:l.pos]), Pos: start}
}

// scanRefError scans the "#REF!" literal. Structural deletion writes it
// into formulas whose references pointed at the removed row or column.
func (l *lexer) scanRefError() (Token, error) {
	if strings.HasPrefix(l.input[l.pos:], RefErrorText) {
		tok := Token{Type: TokenRefError, Value: RefErrorText, Pos: l.pos}
		l.pos += len(RefErrorText)
		return tok, nil
	}
	return Token{}, &ParseError{Pos: l.pos, Reason: fmt.Sprintf("unexpected character %q", l.input[l.pos])}
}

func (l *lexer) scanComparison() (Token, error) {
	start := l.pos
	ch := l.input[l.pos]
	two := ""
	if l.pos+1 < len(l.input) {
		two = l.input[l.pos : l.pos+2]
	}
	switch two {
	case "<=", ">=", "<>", "!=":
		l.pos += 2
		return Token{Type: TokenOp, Value: two, Pos: start}, nil
	}
	switch ch {
	case '<', '>', '=':
		l.pos++
		return Token{Type: TokenOp, Value: string(ch), Pos: start}, nil
	}
	return Token{}, &ParseError{Pos: start, Reason: fmt.Sprintf("unexpected character %q", ch)}
}

func isLetter(ch byte) bool {
	return (ch >= 'A' && ch <= 'Z') || (ch >= 'a' && ch <= 'z')
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

package rules

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-schemaform/pkg/datastore"
	"github.com/goliatone/go-schemaform/pkg/fieldpath"
)

// Expression is a compiled boolean condition over data paths.
//
// Supported forms:
//   - truthiness: `hasPet`, `owner.pets[0]`
//   - comparisons: `species == "cat"`, `count != 3`, `address == null`
//   - composition: `a && !b`, `(a || b) && c == true`
//
// Comparisons are forgiving: the stored value is converted to the literal's
// kind first, so the string "true" equals true and "3" equals 3.
type Expression struct {
	source string
	root   exprNode
}

// Compile parses an expression. Identifiers are dotted paths and may use
// index brackets.
func Compile(source string) (*Expression, error) {
	trimmed := strings.TrimSpace(source)
	if trimmed == "" {
		return nil, errors.New("rules/expr: empty expression")
	}
	tokens, err := tokenize(trimmed)
	if err != nil {
		return nil, err
	}
	stream := &tokenStream{tokens: tokens}
	root, err := parseOr(stream)
	if err != nil {
		return nil, err
	}
	if stream.pos < len(stream.tokens) {
		return nil, fmt.Errorf("rules/expr: unexpected token %q", stream.tokens[stream.pos].raw)
	}
	return &Expression{source: trimmed, root: root}, nil
}

// String returns the source text.
func (e *Expression) String() string {
	return e.source
}

// Eval evaluates the expression against data.
func (e *Expression) Eval(data Getter) bool {
	return e.root.eval(data)
}

type tokenKind int

const (
	tokenIdentifier tokenKind = iota
	tokenString
	tokenNumber
	tokenBool
	tokenNull
	tokenEq
	tokenNeq
	tokenAnd
	tokenOr
	tokenNot
	tokenLParen
	tokenRParen
)

type token struct {
	kind tokenKind
	raw  string
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

func isOperator(ch byte) bool {
	return ch == '(' || ch == ')' || ch == '!' || ch == '=' || ch == '&' || ch == '|'
}

func tokenize(input string) ([]token, error) {
	var tokens []token
	for i := 0; i < len(input); {
		ch := input[i]
		if isSpace(ch) {
			i++
			continue
		}
		two := ""
		if i+1 < len(input) {
			two = input[i : i+2]
		}
		switch {
		case ch == '(':
			tokens = append(tokens, token{kind: tokenLParen, raw: "("})
			i++
		case ch == ')':
			tokens = append(tokens, token{kind: tokenRParen, raw: ")"})
			i++
		case two == "!=":
			tokens = append(tokens, token{kind: tokenNeq, raw: "!="})
			i += 2
		case ch == '!':
			tokens = append(tokens, token{kind: tokenNot, raw: "!"})
			i++
		case two == "==":
			tokens = append(tokens, token{kind: tokenEq, raw: "=="})
			i += 2
		case two == "&&":
			tokens = append(tokens, token{kind: tokenAnd, raw: "&&"})
			i += 2
		case two == "||":
			tokens = append(tokens, token{kind: tokenOr, raw: "||"})
			i += 2
		case ch == '=' || ch == '&' || ch == '|':
			return nil, fmt.Errorf("rules/expr: unexpected %q at offset %d", ch, i)
		case ch == '"' || ch == '\'':
			end := i + 1
			for end < len(input) && input[end] != ch {
				if input[end] == '\\' {
					end++
				}
				end++
			}
			if end >= len(input) {
				return nil, errors.New("rules/expr: unterminated string literal")
			}
			raw := input[i : end+1]
			if ch == '\'' {
				raw = `"` + strings.ReplaceAll(input[i+1:end], `"`, `\"`) + `"`
			}
			value, err := strconv.Unquote(raw)
			if err != nil {
				return nil, fmt.Errorf("rules/expr: invalid string literal: %w", err)
			}
			tokens = append(tokens, token{kind: tokenString, raw: value})
			i = end + 1
		default:
			start := i
			for i < len(input) && !isSpace(input[i]) && !isOperator(input[i]) {
				i++
			}
			raw := input[start:i]
			switch strings.ToLower(raw) {
			case "true", "false":
				tokens = append(tokens, token{kind: tokenBool, raw: strings.ToLower(raw)})
			case "null", "nil":
				tokens = append(tokens, token{kind: tokenNull, raw: "null"})
			default:
				if looksLikeNumber(raw) {
					tokens = append(tokens, token{kind: tokenNumber, raw: raw})
				} else {
					tokens = append(tokens, token{kind: tokenIdentifier, raw: raw})
				}
			}
		}
	}
	return tokens, nil
}

func looksLikeNumber(raw string) bool {
	if raw == "" {
		return false
	}
	ch := raw[0]
	return (ch >= '0' && ch <= '9') || ch == '-' || ch == '+'
}

type exprNode interface {
	eval(data Getter) bool
}

type exprOr struct{ left, right exprNode }

func (n exprOr) eval(data Getter) bool { return n.left.eval(data) || n.right.eval(data) }

type exprAnd struct{ left, right exprNode }

func (n exprAnd) eval(data Getter) bool { return n.left.eval(data) && n.right.eval(data) }

type exprNot struct{ inner exprNode }

func (n exprNot) eval(data Getter) bool { return !n.inner.eval(data) }

type exprTruthy struct{ path fieldpath.Path }

func (n exprTruthy) eval(data Getter) bool {
	value, _ := data.Get(n.path)
	return datastore.Truthy(value)
}

type exprCompare struct {
	path    fieldpath.Path
	negate  bool
	literal any
}

func (n exprCompare) eval(data Getter) bool {
	value, _ := data.Get(n.path)
	var equal bool
	switch want := n.literal.(type) {
	case nil:
		equal = value == nil
	case bool:
		equal = value != nil && coerceBool(value) == want
	case float64:
		got, ok := coerceNumber(value)
		equal = ok && got == want
	case string:
		equal = coerceString(value) == want
	}
	return equal != n.negate
}

type tokenStream struct {
	tokens []token
	pos    int
}

func parseOr(stream *tokenStream) (exprNode, error) {
	left, err := parseAnd(stream)
	if err != nil {
		return nil, err
	}
	for stream.match(tokenOr) {
		right, err := parseAnd(stream)
		if err != nil {
			return nil, err
		}
		left = exprOr{left: left, right: right}
	}
	return left, nil
}

func parseAnd(stream *tokenStream) (exprNode, error) {
	left, err := parseUnary(stream)
	if err != nil {
		return nil, err
	}
	for stream.match(tokenAnd) {
		right, err := parseUnary(stream)
		if err != nil {
			return nil, err
		}
		left = exprAnd{left: left, right: right}
	}
	return left, nil
}

func parseUnary(stream *tokenStream) (exprNode, error) {
	if stream.match(tokenNot) {
		inner, err := parseUnary(stream)
		if err != nil {
			return nil, err
		}
		return exprNot{inner: inner}, nil
	}
	return parsePrimary(stream)
}

func parsePrimary(stream *tokenStream) (exprNode, error) {
	if stream.match(tokenLParen) {
		inner, err := parseOr(stream)
		if err != nil {
			return nil, err
		}
		if !stream.match(tokenRParen) {
			return nil, errors.New("rules/expr: missing closing ')'")
		}
		return inner, nil
	}

	ident, ok := stream.consume(tokenIdentifier)
	if !ok {
		if stream.pos >= len(stream.tokens) {
			return nil, errors.New("rules/expr: incomplete expression")
		}
		return nil, fmt.Errorf("rules/expr: expected identifier, got %q", stream.tokens[stream.pos].raw)
	}
	p, err := fieldpath.Parse(ident.raw)
	if err != nil {
		return nil, fmt.Errorf("rules/expr: %w", err)
	}

	for _, op := range []tokenKind{tokenEq, tokenNeq} {
		if !stream.match(op) {
			continue
		}
		lit, err := stream.consumeLiteral()
		if err != nil {
			return nil, err
		}
		return exprCompare{path: p, negate: op == tokenNeq, literal: lit}, nil
	}
	return exprTruthy{path: p}, nil
}

func (s *tokenStream) match(kind tokenKind) bool {
	if s.pos >= len(s.tokens) || s.tokens[s.pos].kind != kind {
		return false
	}
	s.pos++
	return true
}

func (s *tokenStream) consume(kind tokenKind) (token, bool) {
	if s.pos >= len(s.tokens) || s.tokens[s.pos].kind != kind {
		return token{}, false
	}
	out := s.tokens[s.pos]
	s.pos++
	return out, true
}

func (s *tokenStream) consumeLiteral() (any, error) {
	if s.pos >= len(s.tokens) {
		return nil, errors.New("rules/expr: missing literal")
	}
	tok := s.tokens[s.pos]
	s.pos++
	switch tok.kind {
	case tokenString, tokenIdentifier:
		// Bare identifiers on the right-hand side are read as strings.
		return tok.raw, nil
	case tokenNumber:
		value, err := strconv.ParseFloat(tok.raw, 64)
		if err != nil {
			return nil, fmt.Errorf("rules/expr: invalid number literal %q", tok.raw)
		}
		return value, nil
	case tokenBool:
		return tok.raw == "true", nil
	case tokenNull:
		return nil, nil
	}
	return nil, fmt.Errorf("rules/expr: expected literal, got %q", tok.raw)
}

func coerceBool(value any) bool {
	if text, ok := value.(string); ok {
		if parsed, err := strconv.ParseBool(strings.TrimSpace(text)); err == nil {
			return parsed
		}
	}
	return datastore.Truthy(value)
}

func coerceNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	}
	return 0, false
}

func coerceString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	}
	return fmt.Sprint(value)
}

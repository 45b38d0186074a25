package timeseries

import (
	"fmt"
	"math"
	"sort"
	"strconv"
)

// Expression is a parsed arithmetic formula over named vectors, e.g. "A - B"
// or "(FOPT - FWPT) / 2". Supported: + - * /, unary minus, parentheses and
// numeric literals. Identifiers may contain letters, digits, '_' and ':' to
// cover summary-vector names such as WOPR:OP_1.
//
// An Expression is parsed once per request and evaluated once per aligned
// grid point per realization.
type Expression struct {
	source string
	root   exprNode
	vars   []string
}

// ParseExpression parses src into an Expression.
// Returns ErrExpressionSyntax on malformed input.
func ParseExpression(src string) (*Expression, error) {
	tokens, err := lexExpression(src)
	if err != nil {
		return nil, err
	}
	p := &exprParser{src: src, tokens: tokens}
	root, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.tokens) {
		return nil, fmt.Errorf("%w: unexpected %q in %q", ErrExpressionSyntax, p.tokens[p.pos].text, src)
	}

	seen := make(map[string]bool)
	collectVars(root, seen)
	vars := make([]string, 0, len(seen))
	for name := range seen {
		vars = append(vars, name)
	}
	sort.Strings(vars)

	return &Expression{source: src, root: root, vars: vars}, nil
}

// Source returns the original expression text.
func (e *Expression) Source() string { return e.source }

// Variables returns the sorted set of identifiers referenced by the expression.
func (e *Expression) Variables() []string { return e.vars }

// Evaluate computes the expression given per-variable input values.
// ok is false when the result is absent: a referenced variable is missing
// from env, a division by zero occurred, or the result is not finite.
// Absence is a data state, not an error.
func (e *Expression) Evaluate(env map[string]float64) (value float64, ok bool) {
	v, ok := e.root.eval(env)
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

type exprNode interface {
	eval(env map[string]float64) (float64, bool)
}

type numberNode float64

func (n numberNode) eval(map[string]float64) (float64, bool) { return float64(n), true }

type varNode string

func (n varNode) eval(env map[string]float64) (float64, bool) {
	v, ok := env[string(n)]
	return v, ok
}

type negNode struct{ operand exprNode }

func (n negNode) eval(env map[string]float64) (float64, bool) {
	v, ok := n.operand.eval(env)
	return -v, ok
}

type binaryNode struct {
	op          byte
	left, right exprNode
}

func (n binaryNode) eval(env map[string]float64) (float64, bool) {
	l, ok := n.left.eval(env)
	if !ok {
		return 0, false
	}
	r, ok := n.right.eval(env)
	if !ok {
		return 0, false
	}
	switch n.op {
	case '+':
		return l + r, true
	case '-':
		return l - r, true
	case '*':
		return l * r, true
	default:
		if r == 0 {
			// Division by zero yields absent, never an error or infinity.
			return 0, false
		}
		return l / r, true
	}
}

func collectVars(n exprNode, seen map[string]bool) {
	switch node := n.(type) {
	case varNode:
		seen[string(node)] = true
	case negNode:
		collectVars(node.operand, seen)
	case binaryNode:
		collectVars(node.left, seen)
		collectVars(node.right, seen)
	}
}

type tokenKind int

const (
	tokenNumber tokenKind = iota
	tokenIdent
	tokenOp
	tokenLParen
	tokenRParen
)

type exprToken struct {
	kind tokenKind
	text string
}

func lexExpression(src string) ([]exprToken, error) {
	var tokens []exprToken
	for i := 0; i < len(src); {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n':
			i++
		case c == '(':
			tokens = append(tokens, exprToken{tokenLParen, "("})
			i++
		case c == ')':
			tokens = append(tokens, exprToken{tokenRParen, ")"})
			i++
		case c == '+' || c == '-' || c == '*' || c == '/':
			tokens = append(tokens, exprToken{tokenOp, string(c)})
			i++
		case c >= '0' && c <= '9' || c == '.':
			j := i
			for j < len(src) && (src[j] >= '0' && src[j] <= '9' || src[j] == '.' ||
				src[j] == 'e' || src[j] == 'E' ||
				(j > i && (src[j] == '+' || src[j] == '-') && (src[j-1] == 'e' || src[j-1] == 'E'))) {
				j++
			}
			text := src[i:j]
			if _, err := strconv.ParseFloat(text, 64); err != nil {
				return nil, fmt.Errorf("%w: bad number %q in %q", ErrExpressionSyntax, text, src)
			}
			tokens = append(tokens, exprToken{tokenNumber, text})
			i = j
		case isIdentStart(c):
			j := i
			for j < len(src) && isIdentPart(src[j]) {
				j++
			}
			tokens = append(tokens, exprToken{tokenIdent, src[i:j]})
			i = j
		default:
			return nil, fmt.Errorf("%w: unexpected character %q in %q", ErrExpressionSyntax, string(c), src)
		}
	}
	if len(tokens) == 0 {
		return nil, fmt.Errorf("%w: empty expression", ErrExpressionSyntax)
	}
	return tokens, nil
}

func isIdentStart(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || c >= '0' && c <= '9' || c == ':'
}

// exprParser is a small precedence-climbing parser.
type exprParser struct {
	src    string
	tokens []exprToken
	pos    int
}

func precedence(op string) int {
	switch op {
	case "+", "-":
		return 1
	case "*", "/":
		return 2
	default:
		return 0
	}
}

func (p *exprParser) parseExpr(minPrec int) (exprNode, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.pos < len(p.tokens) && p.tokens[p.pos].kind == tokenOp {
		op := p.tokens[p.pos].text
		prec := precedence(op)
		if prec < minPrec {
			break
		}
		p.pos++
		right, err := p.parseExpr(prec + 1)
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: op[0], left: left, right: right}
	}
	return left, nil
}

func (p *exprParser) parsePrimary() (exprNode, error) {
	if p.pos >= len(p.tokens) {
		return nil, fmt.Errorf("%w: unexpected end of %q", ErrExpressionSyntax, p.src)
	}
	tok := p.tokens[p.pos]
	switch tok.kind {
	case tokenNumber:
		p.pos++
		v, _ := strconv.ParseFloat(tok.text, 64)
		return numberNode(v), nil
	case tokenIdent:
		p.pos++
		return varNode(tok.text), nil
	case tokenLParen:
		p.pos++
		inner, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		if p.pos >= len(p.tokens) || p.tokens[p.pos].kind != tokenRParen {
			return nil, fmt.Errorf("%w: missing ')' in %q", ErrExpressionSyntax, p.src)
		}
		p.pos++
		return inner, nil
	case tokenOp:
		if tok.text == "-" {
			p.pos++
			operand, err := p.parsePrimary()
			if err != nil {
				return nil, err
			}
			return negNode{operand: operand}, nil
		}
		if tok.text == "+" {
			p.pos++
			return p.parsePrimary()
		}
	}
	return nil, fmt.Errorf("%w: unexpected %q in %q", ErrExpressionSyntax, tok.text, p.src)
}

package expression

import (
	"fmt"
	"strings"
)

// Namespace is the fixed set of identifiers a rule may reference.
type Namespace map[string]struct{}

func NewNamespace(names ...string) Namespace {
	out := Namespace{}
	for _, n := range names {
		out[n] = struct{}{}
	}
	return out
}

func (ns Namespace) Has(name string) bool {
	_, ok := ns[name]
	return ok
}

var keywordOperators = map[string]string{
	"and": "and",
	"or":  "or",
	"not": "not",
}

var booleanLiterals = map[string]bool{
	"True":  true,
	"true":  true,
	"False": false,
	"false": false,
}

var comparisonOperators = map[string]bool{
	"<":  true,
	"<=": true,
	">":  true,
	">=": true,
	"==": true,
	"!=": true,
}

const (
	// MaxNestingDepth bounds parentheses, not and unary sign nesting.
	MaxNestingDepth = 256
	// MaxExpressionLength bounds the source of a single expression in bytes.
	MaxExpressionLength = 4096
)

type parser struct {
	tokens []token
	pos    int
	ns     Namespace
	depth  int
}

func (p *parser) enter(tok token) error {
	p.depth++
	if p.depth > MaxNestingDepth {
		return &SyntaxError{Pos: tok.pos, Msg: fmt.Sprintf("expression is nested too deeply (limit %d)", MaxNestingDepth)}
	}
	return nil
}

func (p *parser) leave() {
	p.depth--
}

// Parse turns src into an expression tree. Identifiers outside ns are
// rejected here, so evaluation can never reach anything but ns.
func Parse(src string, ns Namespace) (Node, error) {
	if strings.TrimSpace(src) == "" {
		return nil, &SyntaxError{Pos: 0, Msg: "empty expression"}
	}
	if len(src) > MaxExpressionLength {
		return nil, &SyntaxError{Pos: MaxExpressionLength, Msg: fmt.Sprintf("expression is longer than %d bytes", MaxExpressionLength)}
	}
	tokens, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens, ns: ns}
	node, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokenEOF {
		return nil, p.unexpected(tok)
	}
	return node, nil
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	tok := p.tokens[p.pos]
	if tok.kind != tokenEOF {
		p.pos++
	}
	return tok
}

func (p *parser) unexpected(tok token) error {
	return &SyntaxError{Pos: tok.pos, Msg: fmt.Sprintf("unexpected %s", tok.String())}
}

// logicalOp reports whether tok is the logical operator op in either its
// keyword or symbolic spelling.
func (p *parser) logicalOp(op string) bool {
	tok := p.peek()
	switch tok.kind {
	case tokenIdent:
		return keywordOperators[tok.text] == op
	case tokenOperator:
		switch op {
		case "and":
			return tok.text == "&&"
		case "or":
			return tok.text == "||"
		case "not":
			return tok.text == "!"
		}
	}
	return false
}

func (p *parser) parseOr() (Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.logicalOp("or") {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = Logical{Op: "or", Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (Node, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.logicalOp("and") {
		p.next()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = Logical{Op: "and", Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseNot() (Node, error) {
	if p.logicalOp("not") {
		if err := p.enter(p.next()); err != nil {
			return nil, err
		}
		defer p.leave()
		x, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return Not{X: x}, nil
	}
	return p.parseComparison()
}

func (p *parser) parseComparison() (Node, error) {
	first, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	operands := []Node{first}
	operators := []string{}
	for {
		tok := p.peek()
		if tok.kind != tokenOperator || !comparisonOperators[tok.text] {
			break
		}
		p.next()
		operand, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		operators = append(operators, tok.text)
		operands = append(operands, operand)
	}
	if len(operators) == 0 {
		return first, nil
	}
	return Comparison{Operands: operands, Operators: operators}, nil
}

func (p *parser) parseAdditive() (Node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		if tok.kind != tokenOperator || (tok.text != "+" && tok.text != "-") {
			return left, nil
		}
		p.next()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = Binary{Op: tok.text, Left: left, Right: right}
	}
}

func (p *parser) parseTerm() (Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		if tok.kind != tokenOperator || (tok.text != "*" && tok.text != "/" && tok.text != "%") {
			return left, nil
		}
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = Binary{Op: tok.text, Left: left, Right: right}
	}
}

func (p *parser) parseUnary() (Node, error) {
	tok := p.peek()
	if tok.kind == tokenOperator && (tok.text == "-" || tok.text == "+") {
		if err := p.enter(p.next()); err != nil {
			return nil, err
		}
		defer p.leave()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return Unary{Op: tok.text, X: x}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (Node, error) {
	tok := p.next()
	switch tok.kind {
	case tokenNumber:
		return Literal{Value: Number(tok.num)}, nil

	case tokenIdent:
		if b, ok := booleanLiterals[tok.text]; ok {
			return Literal{Value: Bool(b)}, nil
		}
		if _, ok := keywordOperators[tok.text]; ok {
			return nil, p.unexpected(tok)
		}
		if next := p.peek(); next.kind == tokenLParen {
			return nil, &SyntaxError{Pos: tok.pos, Msg: fmt.Sprintf("function calls are not supported: %s(...)", tok.text)}
		}
		if !p.ns.Has(tok.text) {
			return nil, &SyntaxError{Pos: tok.pos, Msg: fmt.Sprintf("unknown field %q", tok.text)}
		}
		return FieldRef{Name: tok.text}, nil

	case tokenLParen:
		if err := p.enter(tok); err != nil {
			return nil, err
		}
		defer p.leave()
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.kind != tokenRParen {
			return nil, &SyntaxError{Pos: closing.pos, Msg: fmt.Sprintf("expected \")\", got %s", closing.String())}
		}
		return inner, nil
	}
	return nil, p.unexpected(tok)
}

package expression

import (
	"fmt"
	"math"
	"strings"
)

// Node is one element of a parsed rule. The concrete node types are the only
// things an expression can contain.
type Node interface {
	Eval(env Env) (Value, error)
	String() string
}

type Literal struct {
	Value Value
}

func (n Literal) Eval(Env) (Value, error) {
	return n.Value, nil
}

func (n Literal) String() string {
	return n.Value.String()
}

type FieldRef struct {
	Name string
}

func (n FieldRef) Eval(env Env) (Value, error) {
	v, ok := env[n.Name]
	if !ok {
		return Value{}, fmt.Errorf("%w: %s", ErrUnknownField, n.Name)
	}
	if v == nil {
		return Value{}, missingValueError(n.Name)
	}
	return checkFinite(*v)
}

func (n FieldRef) String() string {
	return n.Name
}

// Unary is numeric negation or identity.
type Unary struct {
	Op string
	X  Node
}

func (n Unary) Eval(env Env) (Value, error) {
	x, err := n.X.Eval(env)
	if err != nil {
		return Value{}, err
	}
	if n.Op == "-" {
		return Number(-x.Float()), nil
	}
	return Number(x.Float()), nil
}

func (n Unary) String() string {
	return fmt.Sprintf("(%s%s)", n.Op, n.X.String())
}

type Not struct {
	X Node
}

func (n Not) Eval(env Env) (Value, error) {
	x, err := n.X.Eval(env)
	if err != nil {
		return Value{}, err
	}
	return Bool(!x.Truthy()), nil
}

func (n Not) String() string {
	return fmt.Sprintf("(not %s)", n.X.String())
}

// Binary is an arithmetic operation.
type Binary struct {
	Op    string
	Left  Node
	Right Node
}

func (n Binary) Eval(env Env) (Value, error) {
	l, err := n.Left.Eval(env)
	if err != nil {
		return Value{}, err
	}
	r, err := n.Right.Eval(env)
	if err != nil {
		return Value{}, err
	}
	a, b := l.Float(), r.Float()

	switch n.Op {
	case "+":
		return checkFinite(a + b)
	case "-":
		return checkFinite(a - b)
	case "*":
		return checkFinite(a * b)
	case "/":
		if b == 0 {
			return Value{}, ErrDivisionByZero
		}
		return checkFinite(a / b)
	case "%":
		if b == 0 {
			return Value{}, ErrDivisionByZero
		}
		// sign follows the divisor
		m := math.Mod(a, b)
		if m != 0 && (m < 0) != (b < 0) {
			m += b
		}
		return checkFinite(m)
	}
	return Value{}, fmt.Errorf("unsupported operator %q", n.Op)
}

func (n Binary) String() string {
	return fmt.Sprintf("(%s %s %s)", n.Left.String(), n.Op, n.Right.String())
}

// Comparison holds a chain such as `a < b <= c`, which means
// `a < b and b <= c` with b evaluated once.
type Comparison struct {
	Operands  []Node
	Operators []string
}

func compare(op string, a, b float64) (bool, error) {
	switch op {
	case "<":
		return a < b, nil
	case "<=":
		return a <= b, nil
	case ">":
		return a > b, nil
	case ">=":
		return a >= b, nil
	case "==":
		return a == b, nil
	case "!=":
		return a != b, nil
	}
	return false, fmt.Errorf("unsupported comparison %q", op)
}

func (n Comparison) Eval(env Env) (Value, error) {
	left, err := n.Operands[0].Eval(env)
	if err != nil {
		return Value{}, err
	}
	for i, op := range n.Operators {
		right, err := n.Operands[i+1].Eval(env)
		if err != nil {
			return Value{}, err
		}
		ok, err := compare(op, left.Float(), right.Float())
		if err != nil {
			return Value{}, err
		}
		if !ok {
			return Bool(false), nil
		}
		left = right
	}
	return Bool(true), nil
}

func (n Comparison) String() string {
	parts := []string{n.Operands[0].String()}
	for i, op := range n.Operators {
		parts = append(parts, op, n.Operands[i+1].String())
	}
	return "(" + strings.Join(parts, " ") + ")"
}

// Logical is a short-circuiting "and" / "or".
type Logical struct {
	Op    string
	Left  Node
	Right Node
}

func (n Logical) Eval(env Env) (Value, error) {
	l, err := n.Left.Eval(env)
	if err != nil {
		return Value{}, err
	}
	if n.Op == "and" && !l.Truthy() {
		return Bool(false), nil
	}
	if n.Op == "or" && l.Truthy() {
		return Bool(true), nil
	}
	r, err := n.Right.Eval(env)
	if err != nil {
		return Value{}, err
	}
	return Bool(r.Truthy()), nil
}

func (n Logical) String() string {
	return fmt.Sprintf("(%s %s %s)", n.Left.String(), n.Op, n.Right.String())
}

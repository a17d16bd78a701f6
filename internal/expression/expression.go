// Package expression implements the rule language used to score tickers: a
// small arithmetic and boolean grammar over a declared set of numeric fields.
// It has no function calls, attribute access or I/O of any kind.
package expression

type Expression struct {
	Source string
	root   Node
}

// Compile strips a trailing comment from src and parses the rest.
func Compile(src string, ns Namespace) (*Expression, error) {
	root, err := Parse(StripComment(src), ns)
	if err != nil {
		return nil, err
	}
	return &Expression{
		Source: src,
		root:   root,
	}, nil
}

func (e *Expression) Eval(env Env) (Value, error) {
	return e.root.Eval(env)
}

// EvalBool evaluates the expression and applies truthiness to the result.
func (e *Expression) EvalBool(env Env) (bool, error) {
	v, err := e.root.Eval(env)
	if err != nil {
		return false, err
	}
	return v.Truthy(), nil
}

func (e *Expression) String() string {
	return e.root.String()
}

package expression

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

var (
	ErrUnknownField   = errors.New("unknown field")
	ErrMissingValue   = errors.New("missing value")
	ErrDivisionByZero = errors.New("division by zero")
	ErrNotFinite      = errors.New("result is not a finite number")
)

// Env is the variable namespace of one evaluation. A nil value marks a field
// that exists but could not be computed.
type Env map[string]*float64

type valueKind int

const (
	numberValue valueKind = iota
	boolValue
)

// Value is either a number or a boolean. Booleans take part in arithmetic
// as 1 and 0.
type Value struct {
	kind valueKind
	num  float64
	b    bool
}

func Number(f float64) Value {
	return Value{kind: numberValue, num: f}
}

func Bool(b bool) Value {
	return Value{kind: boolValue, b: b}
}

func (v Value) Float() float64 {
	if v.kind == boolValue {
		if v.b {
			return 1
		}
		return 0
	}
	return v.num
}

func (v Value) Truthy() bool {
	if v.kind == boolValue {
		return v.b
	}
	return v.num != 0
}

func (v Value) String() string {
	if v.kind == boolValue {
		if v.b {
			return "True"
		}
		return "False"
	}
	return strconv.FormatFloat(v.num, 'g', -1, 64)
}

func checkFinite(f float64) (Value, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}, ErrNotFinite
	}
	return Number(f), nil
}

func missingValueError(name string) error {
	return fmt.Errorf("%w: %s has no value", ErrMissingValue, name)
}

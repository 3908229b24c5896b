package vm

import (
	"math"
	"stack/internal/object"
	"strconv"
)

type ValKind int

const (
	ValInteger ValKind = iota
	ValFloat
)

// Val is the machine-level numeric value carried inside the instruction
// stream: a narrower union than Expr, integers and floats only. Integer
// arithmetic saturates at the 64-bit bounds; floats follow IEEE. Mixing
// the two variants is a failure carrying both operands, never a coercion.
type Val struct {
	Kind  ValKind
	Int   int64
	Float float64
}

func IntegerVal(v int64) Val   { return Val{Kind: ValInteger, Int: v} }
func FloatVal(v float64) Val   { return Val{Kind: ValFloat, Float: v} }

func (v Val) String() string {
	if v.Kind == ValInteger {
		return strconv.FormatInt(v.Int, 10)
	}
	return strconv.FormatFloat(v.Float, 'g', -1, 64)
}

// Expr lifts a machine value back into the expression model.
func (v Val) Expr() object.Expr {
	if v.Kind == ValInteger {
		return &object.Integer{Value: v.Int}
	}
	return &object.Float{Value: v.Float}
}

// ValFromExpr narrows an expression to a machine value, if it is numeric.
func ValFromExpr(e object.Expr) (Val, bool) {
	switch e := e.(type) {
	case *object.Integer:
		return IntegerVal(e.Value), true
	case *object.Float:
		return FloatVal(e.Value), true
	}
	return Val{}, false
}

func (v Val) Add(rhs Val) (Val, error) {
	switch {
	case v.Kind == ValInteger && rhs.Kind == ValInteger:
		return IntegerVal(saturatingAdd(v.Int, rhs.Int)), nil
	case v.Kind == ValFloat && rhs.Kind == ValFloat:
		return FloatVal(v.Float + rhs.Float), nil
	}
	return Val{}, operandMismatch(v, rhs)
}

func (v Val) Sub(rhs Val) (Val, error) {
	switch {
	case v.Kind == ValInteger && rhs.Kind == ValInteger:
		return IntegerVal(saturatingSub(v.Int, rhs.Int)), nil
	case v.Kind == ValFloat && rhs.Kind == ValFloat:
		return FloatVal(v.Float - rhs.Float), nil
	}
	return Val{}, operandMismatch(v, rhs)
}

func (v Val) Mul(rhs Val) (Val, error) {
	switch {
	case v.Kind == ValInteger && rhs.Kind == ValInteger:
		return IntegerVal(saturatingMul(v.Int, rhs.Int)), nil
	case v.Kind == ValFloat && rhs.Kind == ValFloat:
		return FloatVal(v.Float * rhs.Float), nil
	}
	return Val{}, operandMismatch(v, rhs)
}

func (v Val) Div(rhs Val) (Val, error) {
	switch {
	case v.Kind == ValInteger && rhs.Kind == ValInteger:
		if rhs.Int == 0 {
			return Val{}, divideByZero(v, rhs)
		}
		return IntegerVal(saturatingDiv(v.Int, rhs.Int)), nil
	case v.Kind == ValFloat && rhs.Kind == ValFloat:
		return FloatVal(v.Float / rhs.Float), nil
	}
	return Val{}, operandMismatch(v, rhs)
}

func (v Val) Rem(rhs Val) (Val, error) {
	switch {
	case v.Kind == ValInteger && rhs.Kind == ValInteger:
		if rhs.Int == 0 {
			return Val{}, divideByZero(v, rhs)
		}
		if v.Int == math.MinInt64 && rhs.Int == -1 {
			return IntegerVal(0), nil
		}
		return IntegerVal(v.Int % rhs.Int), nil
	case v.Kind == ValFloat && rhs.Kind == ValFloat:
		return FloatVal(math.Mod(v.Float, rhs.Float)), nil
	}
	return Val{}, operandMismatch(v, rhs)
}

func saturatingAdd(a, b int64) int64 {
	sum := a + b
	if (a > 0 && b > 0 && sum < 0) || (a < 0 && b < 0 && sum >= 0) {
		if a > 0 {
			return math.MaxInt64
		}
		return math.MinInt64
	}
	return sum
}

func saturatingSub(a, b int64) int64 {
	diff := a - b
	if (a >= 0 && b < 0 && diff < 0) || (a < 0 && b > 0 && diff >= 0) {
		if a >= 0 {
			return math.MaxInt64
		}
		return math.MinInt64
	}
	return diff
}

func saturatingMul(a, b int64) int64 {
	if a == 0 || b == 0 {
		return 0
	}
	prod := a * b
	if prod/b != a || (a == math.MinInt64 && b == -1) {
		if (a > 0) == (b > 0) {
			return math.MaxInt64
		}
		return math.MinInt64
	}
	return prod
}

func saturatingDiv(a, b int64) int64 {
	// The only overflowing division clamps at the top bound.
	if a == math.MinInt64 && b == -1 {
		return math.MaxInt64
	}
	return a / b
}

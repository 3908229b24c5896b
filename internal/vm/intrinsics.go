package vm

import (
	"errors"
	"stack/internal/object"
)

type intrinsicFn func(vm *VM) error

// intrinsics is the dispatch table of built-in operations. Operands are
// popped top-down, so the second pop is the left operand. Populated in
// init to break the initialization cycle through opImport -> Compile.
var intrinsics map[string]intrinsicFn

func init() {
	intrinsics = map[string]intrinsicFn{
		// arithmetic
		"+": opAdd,
		"-": opSub,
		"*": opMul,
		"/": opDiv,
		"%": opRem,

		// comparison
		"=":  opEq,
		"!=": opNe,
		"<":  opLt,
		"<=": opLe,
		">":  opGt,
		">=": opGe,

		// boolean
		"or":  opOr,
		"and": opAnd,
		"not": opNot,

		// stack shuffling
		"drop": opDrop,
		"dupe": opDupe,
		"swap": opSwap,
		"rot":  opRot,

		// collections
		"len":    opLen,
		"nth":    opNth,
		"split":  opSplit,
		"concat": opConcat,
		"push":   opPushItem,
		"pop":    opPopItem,
		"insert": opInsert,
		"prop":   opProp,
		"has":    opHas,
		"remove": opRemove,
		"keys":   opKeys,
		"values": opValues,

		// type ops
		"cast":    opCast,
		"type-of": opTypeOf,

		// control
		"lazy":    opLazy,
		"if":      opIf,
		"call":    opCall,
		"halt":    opHalt,
		"recur":   opRecur,
		"or-else": opOrElse,

		// scope
		"let": opLet,
		"def": opDef,
		"set": opSet,
		"get": opGet,

		// io / introspection
		"debug":  opDebug,
		"print":  opPrint,
		"pretty": opPretty,
		"import": opImport,
	}
}

// IsIntrinsicName reports whether name is in the dispatch table without
// needing a machine instance.
func IsIntrinsicName(name string) bool {
	_, ok := intrinsics[name]
	return ok
}

// popTwo pops rhs then lhs, tagging underflow with the op name.
func (vm *VM) popTwo(name string) (object.Expr, object.Expr, error) {
	rhs, err := vm.StackPop()
	if err != nil {
		return nil, nil, underflowIn(err, name)
	}
	lhs, err := vm.StackPop()
	if err != nil {
		return nil, nil, underflowIn(err, name)
	}
	return lhs, rhs, nil
}

func (vm *VM) popOne(name string) (object.Expr, error) {
	val, err := vm.StackPop()
	if err != nil {
		return nil, underflowIn(err, name)
	}
	return val, nil
}

func underflowIn(err error, name string) error {
	var re *RunError
	if errors.As(err, &re) && re.Kind == ErrStackUnderflow {
		re.Name = name
	}
	return err
}

func arith(vm *VM, name string, apply func(Val, Val) (Val, error)) error {
	lhs, rhs, err := vm.popTwo(name)
	if err != nil {
		return err
	}
	lv, lok := ValFromExpr(lhs)
	rv, rok := ValFromExpr(rhs)
	if !lok || !rok {
		return &RunError{Kind: ErrOperandMismatch, Name: name, Lhs: lhs, Rhs: rhs}
	}
	result, err := apply(lv, rv)
	if err != nil {
		var re *RunError
		if errors.As(err, &re) && re.Name == "" {
			re.Name = name
		}
		return err
	}
	vm.StackPush(result.Expr())
	return nil
}

func opAdd(vm *VM) error { return arith(vm, "+", Val.Add) }
func opSub(vm *VM) error { return arith(vm, "-", Val.Sub) }
func opMul(vm *VM) error { return arith(vm, "*", Val.Mul) }
func opDiv(vm *VM) error { return arith(vm, "/", Val.Div) }
func opRem(vm *VM) error { return arith(vm, "%", Val.Rem) }

func opEq(vm *VM) error {
	lhs, rhs, err := vm.popTwo("=")
	if err != nil {
		return err
	}
	vm.StackPush(object.BooleanFor(object.Equals(lhs, rhs)))
	return nil
}

func opNe(vm *VM) error {
	lhs, rhs, err := vm.popTwo("!=")
	if err != nil {
		return err
	}
	vm.StackPush(object.BooleanFor(!object.Equals(lhs, rhs)))
	return nil
}

// numericCompare coerces integers and floats to real numbers; any other
// operand is a mismatch failure.
func numericCompare(vm *VM, name string, apply func(float64, float64) bool) error {
	lhs, rhs, err := vm.popTwo(name)
	if err != nil {
		return err
	}
	lv, lok := ValFromExpr(lhs)
	rv, rok := ValFromExpr(rhs)
	if !lok || !rok {
		return &RunError{Kind: ErrOperandMismatch, Name: name, Lhs: lhs, Rhs: rhs}
	}
	vm.StackPush(object.BooleanFor(apply(valAsFloat(lv), valAsFloat(rv))))
	return nil
}

func valAsFloat(v Val) float64 {
	if v.Kind == ValInteger {
		return float64(v.Int)
	}
	return v.Float
}

func opLt(vm *VM) error {
	return numericCompare(vm, "<", func(a, b float64) bool { return a < b })
}

func opLe(vm *VM) error {
	return numericCompare(vm, "<=", func(a, b float64) bool { return a <= b })
}

func opGt(vm *VM) error {
	return numericCompare(vm, ">", func(a, b float64) bool { return a > b })
}

func opGe(vm *VM) error {
	return numericCompare(vm, ">=", func(a, b float64) bool { return a >= b })
}

func opOr(vm *VM) error {
	lhs, rhs, err := vm.popTwo("or")
	if err != nil {
		return err
	}
	vm.StackPush(object.BooleanFor(object.IsTruthy(lhs) || object.IsTruthy(rhs)))
	return nil
}

func opAnd(vm *VM) error {
	lhs, rhs, err := vm.popTwo("and")
	if err != nil {
		return err
	}
	vm.StackPush(object.BooleanFor(object.IsTruthy(lhs) && object.IsTruthy(rhs)))
	return nil
}

func opNot(vm *VM) error {
	val, err := vm.popOne("not")
	if err != nil {
		return err
	}
	vm.StackPush(object.BooleanFor(!object.IsTruthy(val)))
	return nil
}

func opDrop(vm *VM) error {
	_, err := vm.popOne("drop")
	return err
}

func opDupe(vm *VM) error {
	val, err := vm.popOne("dupe")
	if err != nil {
		return err
	}
	vm.StackPush(val)
	vm.StackPush(val)
	return nil
}

func opSwap(vm *VM) error {
	a, b, err := vm.popTwo("swap")
	if err != nil {
		return err
	}
	vm.StackPush(b)
	vm.StackPush(a)
	return nil
}

// rot brings the third element to the top: a b c -- b c a
func opRot(vm *VM) error {
	c, err := vm.popOne("rot")
	if err != nil {
		return err
	}
	b, err := vm.popOne("rot")
	if err != nil {
		return err
	}
	a, err := vm.popOne("rot")
	if err != nil {
		return err
	}
	vm.StackPush(b)
	vm.StackPush(c)
	vm.StackPush(a)
	return nil
}

func opTypeOf(vm *VM) error {
	val, err := vm.popOne("type-of")
	if err != nil {
		return err
	}
	vm.StackPush(&object.String{Value: object.TypeName(val)})
	return nil
}

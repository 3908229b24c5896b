package vm

import (
	"fmt"
	"stack/internal/object"
)

type OpKind int

const (
	// OpPush pushes a machine-level numeric value.
	OpPush OpKind = iota
	// OpPushExpr pushes (or, for eager composites, reduces then pushes) a
	// non-numeric expression value.
	OpPushExpr
	// OpIntrinsic dispatches a built-in operation by name.
	OpIntrinsic
	// OpCall resolves a bare name through the context and module registry.
	OpCall
	// OpEnd halts the machine.
	OpEnd
)

// Op is one compiled instruction. The stream is flat: there are no jump
// instructions, control flow is expressed through intrinsics invoking
// block values already on the stack.
type Op struct {
	Kind OpKind
	Val  Val
	Expr object.Expr
	Name string
}

func PushOp(v Val) Op              { return Op{Kind: OpPush, Val: v} }
func PushExprOp(e object.Expr) Op  { return Op{Kind: OpPushExpr, Expr: e} }
func IntrinsicOp(name string) Op   { return Op{Kind: OpIntrinsic, Name: name} }
func CallOp(name string) Op        { return Op{Kind: OpCall, Name: name} }
func EndOp() Op                    { return Op{Kind: OpEnd} }

func (op Op) String() string {
	switch op.Kind {
	case OpPush:
		return fmt.Sprintf("Push(%s)", op.Val)
	case OpPushExpr:
		return fmt.Sprintf("PushExpr(%s)", op.Expr.Inspect())
	case OpIntrinsic:
		return fmt.Sprintf("Intrinsic(%s)", op.Name)
	case OpCall:
		return fmt.Sprintf("Call(%s)", op.Name)
	case OpEnd:
		return "End"
	}
	return "Unknown"
}

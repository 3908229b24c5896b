package vm

import (
	"errors"
	"fmt"
	"stack/internal/object"
)

// ErrHalt signals normal termination: the machine executed End, either by
// reaching the end of the stream or through the halt intrinsic. It is not
// a failure; callers distinguish it with errors.Is.
var ErrHalt = errors.New("halt")

// errRecur unwinds the current block body so the owning frame can restart
// it. It never escapes an invocation.
var errRecur = errors.New("recur")

type ErrKind int

const (
	ErrUnknown ErrKind = iota
	ErrStackUnderflow
	ErrIPBounds
	ErrOperandMismatch
	ErrDivideByZero
	ErrUnknownName
	ErrWrongType
)

// RunError is a genuine machine failure. It carries the offending operands
// or the unresolved name so the message is precise; the machine never
// continues past one within the same run.
type RunError struct {
	Kind   ErrKind
	Name   string
	Lhs    object.Expr
	Rhs    object.Expr
	Detail string
}

func (e *RunError) Error() string {
	switch e.Kind {
	case ErrStackUnderflow:
		if e.Name != "" {
			return fmt.Sprintf("stack underflow in '%s'", e.Name)
		}
		return "stack underflow"
	case ErrIPBounds:
		return "instruction pointer out of bounds"
	case ErrOperandMismatch:
		return fmt.Sprintf("unsupported operand types for '%s': %s and %s",
			e.Name, e.Lhs.Inspect(), e.Rhs.Inspect())
	case ErrDivideByZero:
		return fmt.Sprintf("division by zero: %s / %s", e.Lhs.Inspect(), e.Rhs.Inspect())
	case ErrUnknownName:
		return fmt.Sprintf("unknown name '%s'", e.Name)
	case ErrWrongType:
		return e.Detail
	}
	if e.Detail != "" {
		return e.Detail
	}
	return "unknown machine failure"
}

func operandMismatch(lhs, rhs Val) error {
	return &RunError{Kind: ErrOperandMismatch, Lhs: lhs.Expr(), Rhs: rhs.Expr()}
}

func divideByZero(lhs, rhs Val) error {
	return &RunError{Kind: ErrDivideByZero, Lhs: lhs.Expr(), Rhs: rhs.Expr()}
}

func wrongTypef(format string, a ...interface{}) error {
	return &RunError{Kind: ErrWrongType, Detail: fmt.Sprintf(format, a...)}
}

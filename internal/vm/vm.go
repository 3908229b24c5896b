package vm

import (
	"errors"
	"log/slog"
	"stack/internal/engine"
	"stack/internal/object"
)

// frame tracks one live block or function invocation, so recur can restart
// the innermost body.
type frame struct {
	body    *object.Block
	restart bool
}

// VM is the stack machine: an instruction pointer into a flat op stream, a
// value stack, and a register file reserved for call-frame linkage. It
// consults the Context for bindings and the Engine for module lookups.
type VM struct {
	ops []Op
	ip  int

	registers []Val // reserved for call-frame linkage
	stack     []object.Expr

	ctx    *object.Context
	eng    *engine.Engine
	frames []*frame
	halted bool
}

func New(ctx *object.Context, eng *engine.Engine) *VM {
	return &VM{
		ctx: ctx,
		eng: eng,
	}
}

func (vm *VM) Ops() []Op               { return vm.ops }
func (vm *VM) Stack() []object.Expr    { return vm.stack }
func (vm *VM) Context() *object.Context { return vm.ctx }
func (vm *VM) Engine() *engine.Engine  { return vm.eng }

func (vm *VM) StackPush(val object.Expr) {
	vm.stack = append(vm.stack, val)
}

func (vm *VM) StackPop() (object.Expr, error) {
	if len(vm.stack) == 0 {
		return nil, &RunError{Kind: ErrStackUnderflow}
	}
	val := vm.stack[len(vm.stack)-1]
	vm.stack = vm.stack[:len(vm.stack)-1]
	return val, nil
}

func (vm *VM) IsIntrinsic(name string) bool {
	_, ok := intrinsics[name]
	return ok
}

// Compile lowers an expression sequence onto the op stream, one op per
// expression, and terminates the stream with End.
func (vm *VM) Compile(exprs []object.Expr) {
	for _, expr := range exprs {
		vm.ops = append(vm.ops, vm.compileExpr(expr))
	}
	vm.ops = append(vm.ops, EndOp())
}

func (vm *VM) compileExpr(expr object.Expr) Op {
	switch expr := expr.(type) {
	case *object.Integer:
		return PushOp(IntegerVal(expr.Value))
	case *object.Float:
		return PushOp(FloatVal(expr.Value))
	case *object.Call:
		if _, ok := intrinsics[expr.Value]; ok {
			return IntrinsicOp(expr.Value)
		}
		return CallOp(expr.Value)
	}
	// Everything else defers its work to execution: blocks stay lazy,
	// lists and records reduce their elements, the rest push as literals.
	return PushExprOp(expr)
}

// Step reads one op, advances the instruction pointer (saturating at the
// stream length, never wrapping), and executes the op read. Executing End
// reports ErrHalt, which is a normal halt and not a failure.
func (vm *VM) Step() error {
	if vm.ip >= len(vm.ops) {
		return &RunError{Kind: ErrIPBounds}
	}
	op := vm.ops[vm.ip]
	if vm.ip+1 <= len(vm.ops) {
		vm.ip++
	}
	return vm.exec(op)
}

// Run steps the machine until it halts or fails. On a halt the final
// stack is returned; on a failure the stack is left in its last-good
// state so the caller can render it.
func (vm *VM) Run() ([]object.Expr, error) {
	for {
		err := vm.Step()
		if err == nil {
			vm.ctx.RecordSnapshot(vm.stack)
			continue
		}
		if errors.Is(err, ErrHalt) {
			return vm.stack, nil
		}
		return vm.stack, err
	}
}

func (vm *VM) exec(op Op) error {
	switch op.Kind {
	case OpPush:
		vm.StackPush(op.Val.Expr())
		return nil
	case OpPushExpr:
		return vm.execExpr(op.Expr)
	case OpIntrinsic:
		fn, ok := intrinsics[op.Name]
		if !ok {
			return &RunError{Kind: ErrUnknownName, Name: op.Name}
		}
		return fn(vm)
	case OpCall:
		return vm.resolveCall(op.Name)
	case OpEnd:
		return ErrHalt
	}
	return &RunError{Kind: ErrUnknown}
}

// execExpr handles the expression kinds that need work at execution time.
// Lazy blocks and plain literals push as-is; eager composites reduce their
// contents first; s-expressions run their body and then their call.
func (vm *VM) execExpr(expr object.Expr) error {
	switch expr := expr.(type) {
	case *object.List:
		return vm.execList(expr)
	case *object.Record:
		return vm.execRecord(expr)
	case *object.SExpr:
		if err := vm.runExprs(expr.Body.Exprs); err != nil {
			return err
		}
		return vm.resolveCall(expr.Call.Value)
	}
	vm.StackPush(expr)
	return nil
}

// execList reduces each element to a value in order; the values pushed
// during reduction become the list's contents.
func (vm *VM) execList(list *object.List) error {
	mark := len(vm.stack)
	if err := vm.runExprs(list.Exprs); err != nil {
		return err
	}
	if mark > len(vm.stack) {
		mark = len(vm.stack)
	}
	elems := make([]object.Expr, len(vm.stack)-mark)
	copy(elems, vm.stack[mark:])
	vm.stack = vm.stack[:mark]
	vm.StackPush(&object.List{Exprs: elems})
	return nil
}

func (vm *VM) execRecord(rec *object.Record) error {
	out := object.NewRecord()
	for _, key := range rec.Keys() {
		if err := vm.runExprs([]object.Expr{rec.Pairs[key]}); err != nil {
			return err
		}
		val, err := vm.StackPop()
		if err != nil {
			return err
		}
		out.Pairs[key] = val
	}
	vm.StackPush(out)
	return nil
}

// resolveCall resolves a bare name by priority: intrinsic, then a
// namespace-qualified module function, then a let binding, then a
// persistent scope item. Unresolved names are a failure.
func (vm *VM) resolveCall(name string) error {
	if fn, ok := intrinsics[name]; ok {
		return fn(vm)
	}
	if fn, ok := vm.eng.ResolveQualified(name); ok {
		return fn(vm)
	}
	if val, ok := vm.ctx.LetGet(name); ok {
		return vm.applyNamed(name, val)
	}
	if item, ok := vm.ctx.ScopeItem(name); ok {
		return vm.applyNamed(name, item.Val())
	}
	return &RunError{Kind: ErrUnknownName, Name: name}
}

// applyNamed invokes callable values and pushes everything else.
func (vm *VM) applyNamed(name string, val object.Expr) error {
	switch val.(type) {
	case *object.Block, *object.Function:
		slog.Debug("invoking binding", slog.String("name", name))
		return vm.Invoke(val)
	}
	vm.StackPush(val)
	return nil
}

// Invoke calls a block or function value now. Blocks run in a fresh let
// layer of the current scope; functions swap in their captured scope.
func (vm *VM) Invoke(val object.Expr) error {
	switch val := val.(type) {
	case *object.Block:
		vm.ctx.PushScope()
		err := vm.runFrame(val)
		vm.ctx.PopScope()
		return err
	case *object.Function:
		prev := vm.ctx.SwapScope(object.NewScope(val.Scope))
		err := vm.runFrame(val.Body)
		vm.ctx.SwapScope(prev)
		return err
	}
	return wrongTypef("cannot call a %s value: %s", object.TypeName(val), val.Inspect())
}

// invokeBranch runs a conditional branch without opening a frame, so
// recur inside a branch restarts the enclosing loop body rather than
// the branch itself.
func (vm *VM) invokeBranch(val object.Expr) error {
	if block, ok := val.(*object.Block); ok {
		vm.ctx.PushScope()
		err := vm.runExprs(block.Exprs)
		vm.ctx.PopScope()
		return err
	}
	return vm.Invoke(val)
}

// runFrame executes a body, restarting it whenever recur fires for this
// frame. The loop keeps self tail-calls from growing the Go stack.
func (vm *VM) runFrame(body *object.Block) error {
	f := &frame{body: body}
	vm.frames = append(vm.frames, f)
	defer func() { vm.frames = vm.frames[:len(vm.frames)-1] }()

	for {
		err := vm.runExprs(body.Exprs)
		if errors.Is(err, errRecur) && f.restart {
			f.restart = false
			continue
		}
		return err
	}
}

// runExprs executes a nested expression sequence on the same stack and
// context, then restores the outer instruction stream. Reaching the inner
// End is ordinary completion; an explicit halt still stops everything.
func (vm *VM) runExprs(exprs []object.Expr) error {
	savedOps, savedIP := vm.ops, vm.ip
	vm.ops, vm.ip = nil, 0
	vm.Compile(exprs)

	var err error
	for {
		if err = vm.Step(); err != nil {
			break
		}
	}

	vm.ops, vm.ip = savedOps, savedIP

	if errors.Is(err, ErrHalt) && !vm.halted {
		return nil
	}
	return err
}

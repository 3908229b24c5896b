package vm

import (
	"fmt"
	"os"
	"stack/internal/object"
	"stack/internal/render"
)

// lazy materializes a deferred block without invoking it. Blocks pass
// through; anything else is wrapped.
func opLazy(vm *VM) error {
	val, err := vm.popOne("lazy")
	if err != nil {
		return err
	}
	if _, ok := val.(*object.Block); ok {
		vm.StackPush(val)
		return nil
	}
	vm.StackPush(&object.Block{Exprs: []object.Expr{val}})
	return nil
}

// if pops either (cond then) or (cond then else) and invokes exactly one
// branch. The three-operand form is detected by the second pop also being
// a block; a falsy one-branch if pushes nothing.
func opIf(vm *VM) error {
	top, err := vm.popOne("if")
	if err != nil {
		return err
	}
	next, err := vm.popOne("if")
	if err != nil {
		return err
	}

	var cond object.Expr
	var thenBranch, elseBranch object.Expr

	if isCallable(next) {
		cond, err = vm.popOne("if")
		if err != nil {
			return err
		}
		thenBranch, elseBranch = next, top
	} else {
		cond, thenBranch = next, top
	}

	if !isCallable(thenBranch) {
		return wrongTypef("if expects a block branch, got %s", object.TypeName(thenBranch))
	}

	if object.IsTruthy(cond) {
		return vm.invokeBranch(thenBranch)
	}
	if elseBranch != nil {
		return vm.invokeBranch(elseBranch)
	}
	return nil
}

func isCallable(e object.Expr) bool {
	switch e.(type) {
	case *object.Block, *object.Function:
		return true
	}
	return false
}

func opCall(vm *VM) error {
	val, err := vm.popOne("call")
	if err != nil {
		return err
	}
	return vm.Invoke(val)
}

// halt forces End-style termination of the whole run.
func opHalt(vm *VM) error {
	vm.halted = true
	return ErrHalt
}

// recur restarts the innermost block or function body.
func opRecur(vm *VM) error {
	if len(vm.frames) == 0 {
		return wrongTypef("recur outside of a block or function")
	}
	vm.frames[len(vm.frames)-1].restart = true
	return errRecur
}

// or-else: pop fallback then value; the fallback replaces a nil value.
func opOrElse(vm *VM) error {
	val, fallback, err := vm.popTwo("or-else")
	if err != nil {
		return err
	}
	if object.IsNil(val) {
		vm.StackPush(fallback)
		return nil
	}
	vm.StackPush(val)
	return nil
}

func (vm *VM) popBindingName(op string) (string, object.Expr, error) {
	nameVal, err := vm.popOne(op)
	if err != nil {
		return "", nil, err
	}
	sym, ok := nameVal.(*object.Symbol)
	if !ok {
		return "", nil, wrongTypef("%s expects a symbol name, got %s", op, object.TypeName(nameVal))
	}
	val, err := vm.popOne(op)
	if err != nil {
		return "", nil, err
	}
	return sym.Value, val, nil
}

// let binds a local name for the remainder of the enclosing block.
func opLet(vm *VM) error {
	name, val, err := vm.popBindingName("let")
	if err != nil {
		return err
	}
	vm.ctx.LetBind(name, val)
	return nil
}

// def binds persistently in the scope item table. Blocks defined this way
// become functions closing over the current scope.
func opDef(vm *VM) error {
	name, val, err := vm.popBindingName("def")
	if err != nil {
		return err
	}
	if block, ok := val.(*object.Block); ok {
		val = &object.Function{Name: name, Scope: vm.ctx.CurrentScope(), Body: block}
	}
	vm.ctx.Def(name, val)
	return nil
}

func opSet(vm *VM) error {
	name, val, err := vm.popBindingName("set")
	if err != nil {
		return err
	}
	if err := vm.ctx.Set(name, val); err != nil {
		return &RunError{Kind: ErrUnknownName, Name: name}
	}
	return nil
}

// get reads a binding by the let-before-scope priority; unbound names
// push nil rather than failing.
func opGet(vm *VM) error {
	nameVal, err := vm.popOne("get")
	if err != nil {
		return err
	}
	sym, ok := nameVal.(*object.Symbol)
	if !ok {
		return wrongTypef("get expects a symbol name, got %s", object.TypeName(nameVal))
	}
	if val, ok := vm.ctx.Get(sym.Value); ok {
		vm.StackPush(val)
		return nil
	}
	vm.StackPush(object.NIL)
	return nil
}

// debug renders the whole stack to stderr without mutating it.
func opDebug(vm *VM) error {
	fmt.Fprintf(os.Stderr, "debug: %s\n", render.FormatStack(vm.stack))
	return nil
}

func opPrint(vm *VM) error {
	val, err := vm.popOne("print")
	if err != nil {
		return err
	}
	fmt.Println(val.Inspect())
	return nil
}

func opPretty(vm *VM) error {
	val, err := vm.popOne("pretty")
	if err != nil {
		return err
	}
	fmt.Println(render.Pretty(val))
	return nil
}

// import loads a module into the registry and makes its exports
// resolvable. Registered loaders (the standard modules) win; anything
// else is treated as a file path.
func opImport(vm *VM) error {
	nameVal, err := vm.popOne("import")
	if err != nil {
		return err
	}
	name, ok := keyName(nameVal)
	if !ok {
		return wrongTypef("import expects a symbol or string module name, got %s", object.TypeName(nameVal))
	}

	if _, ok := vm.eng.Module(name); ok {
		return nil
	}
	if err := vm.eng.Load(name); err == nil {
		return nil
	}
	return vm.importFile(name)
}

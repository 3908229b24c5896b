package vm

import (
	"stack/internal/object"
	"strconv"
	"strings"
)

// keyName extracts a record key from a symbol or string operand.
func keyName(key object.Expr) (string, bool) {
	switch key := key.(type) {
	case *object.Symbol:
		return key.Value, true
	case *object.String:
		return key.Value, true
	}
	return "", false
}

func opLen(vm *VM) error {
	val, err := vm.popOne("len")
	if err != nil {
		return err
	}
	switch val := val.(type) {
	case *object.List:
		vm.StackPush(&object.Integer{Value: int64(len(val.Exprs))})
	case *object.Block:
		vm.StackPush(&object.Integer{Value: int64(len(val.Exprs))})
	case *object.Record:
		vm.StackPush(&object.Integer{Value: int64(len(val.Pairs))})
	case *object.String:
		vm.StackPush(&object.Integer{Value: int64(len([]rune(val.Value)))})
	default:
		return wrongTypef("len expects a list, block, record or string, got %s", object.TypeName(val))
	}
	return nil
}

// nth pushes the element at an index; out-of-range indexes push nil.
func opNth(vm *VM) error {
	idxVal, err := vm.popOne("nth")
	if err != nil {
		return err
	}
	coll, err := vm.popOne("nth")
	if err != nil {
		return err
	}
	idx, ok := idxVal.(*object.Integer)
	if !ok {
		return wrongTypef("nth expects an integer index, got %s", object.TypeName(idxVal))
	}

	switch coll := coll.(type) {
	case *object.List:
		vm.StackPush(indexExprs(coll.Exprs, idx.Value))
	case *object.Block:
		vm.StackPush(indexExprs(coll.Exprs, idx.Value))
	case *object.String:
		runes := []rune(coll.Value)
		if idx.Value < 0 || idx.Value >= int64(len(runes)) {
			vm.StackPush(object.NIL)
		} else {
			vm.StackPush(&object.String{Value: string(runes[idx.Value])})
		}
	default:
		return wrongTypef("nth expects a list, block or string, got %s", object.TypeName(coll))
	}
	return nil
}

func indexExprs(exprs []object.Expr, idx int64) object.Expr {
	if idx < 0 || idx >= int64(len(exprs)) {
		return object.NIL
	}
	return exprs[idx]
}

// split divides a list or string at an index, pushing both halves. The
// index clamps to the collection's bounds.
func opSplit(vm *VM) error {
	idxVal, err := vm.popOne("split")
	if err != nil {
		return err
	}
	coll, err := vm.popOne("split")
	if err != nil {
		return err
	}
	idx, ok := idxVal.(*object.Integer)
	if !ok {
		return wrongTypef("split expects an integer index, got %s", object.TypeName(idxVal))
	}

	switch coll := coll.(type) {
	case *object.List:
		at := clampIndex(idx.Value, len(coll.Exprs))
		left := make([]object.Expr, at)
		right := make([]object.Expr, len(coll.Exprs)-at)
		copy(left, coll.Exprs[:at])
		copy(right, coll.Exprs[at:])
		vm.StackPush(&object.List{Exprs: left})
		vm.StackPush(&object.List{Exprs: right})
	case *object.String:
		runes := []rune(coll.Value)
		at := clampIndex(idx.Value, len(runes))
		vm.StackPush(&object.String{Value: string(runes[:at])})
		vm.StackPush(&object.String{Value: string(runes[at:])})
	default:
		return wrongTypef("split expects a list or string, got %s", object.TypeName(coll))
	}
	return nil
}

func clampIndex(idx int64, length int) int {
	if idx < 0 {
		return 0
	}
	if idx > int64(length) {
		return length
	}
	return int(idx)
}

func opConcat(vm *VM) error {
	lhs, rhs, err := vm.popTwo("concat")
	if err != nil {
		return err
	}
	switch lhs := lhs.(type) {
	case *object.List:
		rl, ok := rhs.(*object.List)
		if !ok {
			return wrongTypef("concat expects two lists, got %s and %s",
				object.TypeName(lhs), object.TypeName(rhs))
		}
		out := make([]object.Expr, 0, len(lhs.Exprs)+len(rl.Exprs))
		out = append(out, lhs.Exprs...)
		out = append(out, rl.Exprs...)
		vm.StackPush(&object.List{Exprs: out})
	case *object.Block:
		rb, ok := rhs.(*object.Block)
		if !ok {
			return wrongTypef("concat expects two blocks, got %s and %s",
				object.TypeName(lhs), object.TypeName(rhs))
		}
		out := make([]object.Expr, 0, len(lhs.Exprs)+len(rb.Exprs))
		out = append(out, lhs.Exprs...)
		out = append(out, rb.Exprs...)
		vm.StackPush(&object.Block{Exprs: out})
	case *object.String:
		rs, ok := rhs.(*object.String)
		if !ok {
			return wrongTypef("concat expects two strings, got %s and %s",
				object.TypeName(lhs), object.TypeName(rhs))
		}
		vm.StackPush(&object.String{Value: lhs.Value + rs.Value})
	default:
		return wrongTypef("concat expects lists, blocks or strings, got %s", object.TypeName(lhs))
	}
	return nil
}

// push appends an item, leaving the original collection untouched.
func opPushItem(vm *VM) error {
	coll, item, err := vm.popTwo("push")
	if err != nil {
		return err
	}
	switch coll := coll.(type) {
	case *object.List:
		out := make([]object.Expr, 0, len(coll.Exprs)+1)
		out = append(out, coll.Exprs...)
		out = append(out, item)
		vm.StackPush(&object.List{Exprs: out})
	case *object.Block:
		out := make([]object.Expr, 0, len(coll.Exprs)+1)
		out = append(out, coll.Exprs...)
		out = append(out, item)
		vm.StackPush(&object.Block{Exprs: out})
	default:
		return wrongTypef("push expects a list or block, got %s", object.TypeName(coll))
	}
	return nil
}

// pop pushes the shortened collection and then the removed last element;
// an empty collection yields itself and nil.
func opPopItem(vm *VM) error {
	coll, err := vm.popOne("pop")
	if err != nil {
		return err
	}
	switch coll := coll.(type) {
	case *object.List:
		rest, last := popLast(coll.Exprs)
		vm.StackPush(&object.List{Exprs: rest})
		vm.StackPush(last)
	case *object.Block:
		rest, last := popLast(coll.Exprs)
		vm.StackPush(&object.Block{Exprs: rest})
		vm.StackPush(last)
	case *object.String:
		runes := []rune(coll.Value)
		if len(runes) == 0 {
			vm.StackPush(coll)
			vm.StackPush(object.NIL)
			return nil
		}
		vm.StackPush(&object.String{Value: string(runes[:len(runes)-1])})
		vm.StackPush(&object.String{Value: string(runes[len(runes)-1:])})
	default:
		return wrongTypef("pop expects a list, block or string, got %s", object.TypeName(coll))
	}
	return nil
}

func popLast(exprs []object.Expr) ([]object.Expr, object.Expr) {
	if len(exprs) == 0 {
		return nil, object.NIL
	}
	rest := make([]object.Expr, len(exprs)-1)
	copy(rest, exprs[:len(exprs)-1])
	return rest, exprs[len(exprs)-1]
}

// insert sets key to value in a record, or replaces an index in a list.
func opInsert(vm *VM) error {
	val, err := vm.popOne("insert")
	if err != nil {
		return err
	}
	key, err := vm.popOne("insert")
	if err != nil {
		return err
	}
	coll, err := vm.popOne("insert")
	if err != nil {
		return err
	}

	switch coll := coll.(type) {
	case *object.Record:
		name, ok := keyName(key)
		if !ok {
			return wrongTypef("insert expects a symbol or string key, got %s", object.TypeName(key))
		}
		out := object.NewRecord()
		for k, v := range coll.Pairs {
			out.Pairs[k] = v
		}
		out.Pairs[name] = val
		vm.StackPush(out)
	case *object.List:
		idx, ok := key.(*object.Integer)
		if !ok {
			return wrongTypef("insert expects an integer index for lists, got %s", object.TypeName(key))
		}
		if idx.Value < 0 || idx.Value > int64(len(coll.Exprs)) {
			return wrongTypef("insert index %d out of range for list of %d", idx.Value, len(coll.Exprs))
		}
		out := make([]object.Expr, len(coll.Exprs))
		copy(out, coll.Exprs)
		if idx.Value == int64(len(out)) {
			out = append(out, val)
		} else {
			out[idx.Value] = val
		}
		vm.StackPush(&object.List{Exprs: out})
	default:
		return wrongTypef("insert expects a record or list, got %s", object.TypeName(coll))
	}
	return nil
}

// prop reads a property; missing keys push nil.
func opProp(vm *VM) error {
	key, err := vm.popOne("prop")
	if err != nil {
		return err
	}
	coll, err := vm.popOne("prop")
	if err != nil {
		return err
	}
	switch coll := coll.(type) {
	case *object.Record:
		name, ok := keyName(key)
		if !ok {
			return wrongTypef("prop expects a symbol or string key, got %s", object.TypeName(key))
		}
		if val, ok := coll.Pairs[name]; ok {
			vm.StackPush(val)
		} else {
			vm.StackPush(object.NIL)
		}
	case *object.List:
		idx, ok := key.(*object.Integer)
		if !ok {
			return wrongTypef("prop expects an integer index for lists, got %s", object.TypeName(key))
		}
		vm.StackPush(indexExprs(coll.Exprs, idx.Value))
	default:
		return wrongTypef("prop expects a record or list, got %s", object.TypeName(coll))
	}
	return nil
}

// has tests key presence on records and element membership on lists.
func opHas(vm *VM) error {
	key, err := vm.popOne("has")
	if err != nil {
		return err
	}
	coll, err := vm.popOne("has")
	if err != nil {
		return err
	}
	switch coll := coll.(type) {
	case *object.Record:
		name, ok := keyName(key)
		if !ok {
			return wrongTypef("has expects a symbol or string key, got %s", object.TypeName(key))
		}
		_, present := coll.Pairs[name]
		vm.StackPush(object.BooleanFor(present))
	case *object.List:
		for _, e := range coll.Exprs {
			if object.Equals(e, key) {
				vm.StackPush(object.TRUE)
				return nil
			}
		}
		vm.StackPush(object.FALSE)
	default:
		return wrongTypef("has expects a record or list, got %s", object.TypeName(coll))
	}
	return nil
}

func opRemove(vm *VM) error {
	key, err := vm.popOne("remove")
	if err != nil {
		return err
	}
	coll, err := vm.popOne("remove")
	if err != nil {
		return err
	}
	switch coll := coll.(type) {
	case *object.Record:
		name, ok := keyName(key)
		if !ok {
			return wrongTypef("remove expects a symbol or string key, got %s", object.TypeName(key))
		}
		out := object.NewRecord()
		for k, v := range coll.Pairs {
			if k != name {
				out.Pairs[k] = v
			}
		}
		vm.StackPush(out)
	case *object.List:
		idx, ok := key.(*object.Integer)
		if !ok {
			return wrongTypef("remove expects an integer index for lists, got %s", object.TypeName(key))
		}
		if idx.Value < 0 || idx.Value >= int64(len(coll.Exprs)) {
			vm.StackPush(coll)
			return nil
		}
		out := make([]object.Expr, 0, len(coll.Exprs)-1)
		out = append(out, coll.Exprs[:idx.Value]...)
		out = append(out, coll.Exprs[idx.Value+1:]...)
		vm.StackPush(&object.List{Exprs: out})
	default:
		return wrongTypef("remove expects a record or list, got %s", object.TypeName(coll))
	}
	return nil
}

func opKeys(vm *VM) error {
	coll, err := vm.popOne("keys")
	if err != nil {
		return err
	}
	rec, ok := coll.(*object.Record)
	if !ok {
		return wrongTypef("keys expects a record, got %s", object.TypeName(coll))
	}
	keys := rec.Keys()
	out := make([]object.Expr, len(keys))
	for i, k := range keys {
		out[i] = &object.Symbol{Value: k}
	}
	vm.StackPush(&object.List{Exprs: out})
	return nil
}

func opValues(vm *VM) error {
	coll, err := vm.popOne("values")
	if err != nil {
		return err
	}
	rec, ok := coll.(*object.Record)
	if !ok {
		return wrongTypef("values expects a record, got %s", object.TypeName(coll))
	}
	keys := rec.Keys()
	out := make([]object.Expr, len(keys))
	for i, k := range keys {
		out[i] = rec.Pairs[k]
	}
	vm.StackPush(&object.List{Exprs: out})
	return nil
}

// cast converts a value to the variant named by a string or symbol.
// Records round-trip through lists of [key value] pairs.
func opCast(vm *VM) error {
	target, err := vm.popOne("cast")
	if err != nil {
		return err
	}
	val, err := vm.popOne("cast")
	if err != nil {
		return err
	}
	name, ok := keyName(target)
	if !ok {
		return wrongTypef("cast expects a symbol or string type name, got %s", object.TypeName(target))
	}

	out, castErr := castTo(val, name)
	if castErr != nil {
		return castErr
	}
	vm.StackPush(out)
	return nil
}

func castTo(val object.Expr, target string) (object.Expr, error) {
	switch target {
	case "integer":
		switch val := val.(type) {
		case *object.Integer:
			return val, nil
		case *object.Float:
			return &object.Integer{Value: int64(val.Value)}, nil
		case *object.Boolean:
			if val.Value {
				return &object.Integer{Value: 1}, nil
			}
			return &object.Integer{Value: 0}, nil
		case *object.String:
			n, err := strconv.ParseInt(strings.TrimSpace(val.Value), 10, 64)
			if err != nil {
				return nil, wrongTypef("cannot cast %q to integer", val.Value)
			}
			return &object.Integer{Value: n}, nil
		}
	case "float":
		switch val := val.(type) {
		case *object.Float:
			return val, nil
		case *object.Integer:
			return &object.Float{Value: float64(val.Value)}, nil
		case *object.String:
			f, err := strconv.ParseFloat(strings.TrimSpace(val.Value), 64)
			if err != nil {
				return nil, wrongTypef("cannot cast %q to float", val.Value)
			}
			return &object.Float{Value: f}, nil
		}
	case "string":
		return &object.String{Value: val.Inspect()}, nil
	case "boolean":
		return object.BooleanFor(object.IsTruthy(val)), nil
	case "symbol":
		switch val := val.(type) {
		case *object.Symbol:
			return val, nil
		case *object.String:
			return &object.Symbol{Value: val.Value}, nil
		case *object.Call:
			return &object.Symbol{Value: val.Value}, nil
		}
	case "call":
		switch val := val.(type) {
		case *object.Call:
			return val, nil
		case *object.Symbol:
			return &object.Call{Value: val.Value}, nil
		case *object.String:
			return &object.Call{Value: val.Value}, nil
		}
	case "list":
		switch val := val.(type) {
		case *object.List:
			return val, nil
		case *object.Block:
			return &object.List{Exprs: val.Exprs}, nil
		case *object.Record:
			keys := val.Keys()
			out := make([]object.Expr, len(keys))
			for i, k := range keys {
				out[i] = &object.List{Exprs: []object.Expr{
					&object.Symbol{Value: k},
					val.Pairs[k],
				}}
			}
			return &object.List{Exprs: out}, nil
		}
	case "block":
		switch val := val.(type) {
		case *object.Block:
			return val, nil
		case *object.List:
			return &object.Block{Exprs: val.Exprs}, nil
		}
	case "record":
		if list, ok := val.(*object.List); ok {
			out := object.NewRecord()
			for _, pair := range list.Exprs {
				kv, ok := pair.(*object.List)
				if !ok || len(kv.Exprs) != 2 {
					return nil, wrongTypef("cast to record expects [key value] pairs, got %s", pair.Inspect())
				}
				name, ok := keyName(kv.Exprs[0])
				if !ok {
					return nil, wrongTypef("cast to record expects symbol or string keys, got %s", kv.Exprs[0].Inspect())
				}
				out.Pairs[name] = kv.Exprs[1]
			}
			return out, nil
		}
	default:
		return nil, wrongTypef("unknown cast target %q", target)
	}
	return nil, wrongTypef("cannot cast %s to %s", object.TypeName(val), target)
}

package modules

import (
	"stack/internal/engine"
	"stack/internal/object"
	"strings"
)

// Scope exports introspection over the context's bindings.
func Scope() *engine.Module {
	return engine.NewModule("scope").
		// where classifies a symbol by the name-resolution priority:
		// intrinsic, module, let binding, scope item, or nil.
		AddFunc("where", func(rt engine.Runtime) error {
			val, err := rt.StackPop()
			if err != nil {
				return err
			}
			sym, ok := val.(*object.Symbol)
			if !ok {
				rt.StackPush(object.NIL)
				return nil
			}
			name := sym.Value

			switch {
			case rt.IsIntrinsic(name):
				rt.StackPush(&object.String{Value: "intrinsic"})
			case hasModule(rt, name):
				rt.StackPush(&object.String{Value: "module"})
			case letBound(rt, name):
				rt.StackPush(&object.String{Value: "let"})
			case scopeBound(rt, name):
				rt.StackPush(&object.String{Value: "scope"})
			default:
				rt.StackPush(object.NIL)
			}
			return nil
		}).
		// dump pushes a list of [symbol value] pairs for every scope item.
		AddFunc("dump", func(rt engine.Runtime) error {
			entries := rt.Context().ScopeItems()
			items := make([]object.Expr, 0, len(entries))
			for _, entry := range entries {
				items = append(items, &object.List{Exprs: []object.Expr{
					&object.Symbol{Value: entry.Name},
					entry.Item.Val(),
				}})
			}
			rt.StackPush(&object.List{Exprs: items})
			return nil
		})
}

func hasModule(rt engine.Runtime, name string) bool {
	modName := name
	if idx := strings.Index(name, ":"); idx >= 0 {
		modName = name[:idx]
	}
	_, ok := rt.Engine().Module(modName)
	return ok
}

func letBound(rt engine.Runtime, name string) bool {
	_, ok := rt.Context().LetGet(name)
	return ok
}

func scopeBound(rt engine.Runtime, name string) bool {
	_, ok := rt.Context().ScopeItem(name)
	return ok
}

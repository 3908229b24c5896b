package vm

import (
	"path/filepath"
	"stack/internal/engine"
	"stack/internal/lexer"
	"stack/internal/object"
	"stack/internal/parser"
	"strings"
)

// importFile evaluates a source file in its own context and exposes its
// persistent bindings as a module named after the file. Function exports
// are invoked by the importer; plain values are pushed.
func (vm *VM) importFile(path string) error {
	src, err := lexer.SourceFromPath(path)
	if err != nil {
		return wrongTypef("import failed: %v", err)
	}

	exprs, err := parser.Parse(src)
	if err != nil {
		return wrongTypef("import of %s failed: %v", path, err)
	}

	modCtx := object.NewContext()
	modCtx.AddSource(src.Name, src.Content)
	modVM := New(modCtx, vm.eng)
	modVM.Compile(exprs)
	if _, err := modVM.Run(); err != nil {
		return wrongTypef("import of %s failed: %v", path, err)
	}

	name := moduleName(path)
	mod := engine.NewModule(name)
	for _, entry := range modCtx.ScopeItems() {
		item := entry.Item
		mod.AddFunc(entry.Name, func(rt engine.Runtime) error {
			val := item.Val()
			if isCallable(val) {
				return rt.Invoke(val)
			}
			rt.StackPush(val)
			return nil
		})
	}

	vm.eng.AddModule(mod)
	vm.ctx.AddSource(src.Name, src.Content)
	return nil
}

func moduleName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

package engine

import (
	"fmt"
	"log/slog"
	"stack/internal/object"
	"strings"
)

// Runtime is the bridge handed to module functions. It is implemented by
// the virtual machine and keeps module code decoupled from it.
type Runtime interface {
	StackPush(val object.Expr)
	StackPop() (object.Expr, error)
	Context() *object.Context
	Engine() *Engine
	// Invoke calls a block or function value immediately.
	Invoke(val object.Expr) error
	// IsIntrinsic reports whether name is a built-in operation.
	IsIntrinsic(name string) bool
}

// Func is a named function exported by a module.
type Func func(rt Runtime) error

type Module struct {
	name  string
	funcs map[string]Func
}

func NewModule(name string) *Module {
	return &Module{
		name:  name,
		funcs: make(map[string]Func),
	}
}

func (m *Module) Name() string { return m.name }

// AddFunc registers an exported function and returns the module for
// chaining.
func (m *Module) AddFunc(name string, fn Func) *Module {
	m.funcs[name] = fn
	return m
}

func (m *Module) Func(name string) (Func, bool) {
	fn, ok := m.funcs[name]
	return fn, ok
}

// FuncNames returns the exported names, unsorted.
func (m *Module) FuncNames() []string {
	names := make([]string, 0, len(m.funcs))
	for name := range m.funcs {
		names = append(names, name)
	}
	return names
}

// Loader produces a module on demand; the standard modules register one
// so import can enable them by name.
type Loader func(name string) (*Module, error)

// Engine is the module registry: a namespace mapping module names to the
// functions they export.
type Engine struct {
	modules map[string]*Module
	loader  Loader
}

func New() *Engine {
	return &Engine{modules: make(map[string]*Module)}
}

func (e *Engine) SetLoader(l Loader) { e.loader = l }

// Load resolves name through the loader and registers the result. Already
// registered modules load as a no-op.
func (e *Engine) Load(name string) error {
	if _, ok := e.modules[name]; ok {
		return nil
	}
	if e.loader == nil {
		return fmt.Errorf("no module loader configured")
	}
	m, err := e.loader(name)
	if err != nil {
		return err
	}
	e.AddModule(m)
	return nil
}

func (e *Engine) AddModule(m *Module) {
	slog.Debug("registering module",
		slog.String("name", m.name),
		slog.Int("funcs", len(m.funcs)))
	e.modules[m.name] = m
}

func (e *Engine) Module(name string) (*Module, bool) {
	m, ok := e.modules[name]
	return m, ok
}

// SplitQualified splits a namespaced name at the first colon. The second
// return is false when the name carries no namespace.
func SplitQualified(name string) (string, string, bool) {
	idx := strings.Index(name, ":")
	if idx < 0 {
		return "", name, false
	}
	return name[:idx], name[idx+1:], true
}

// ResolveQualified resolves module:rest against the registry.
func (e *Engine) ResolveQualified(name string) (Func, bool) {
	modName, rest, ok := SplitQualified(name)
	if !ok {
		return nil, false
	}
	m, ok := e.modules[modName]
	if !ok {
		return nil, false
	}
	return m.Func(rest)
}

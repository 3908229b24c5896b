package object

import (
	"fmt"
	"log/slog"
	"sync"
)

// Scope is one layer of let-bound locals. Scopes chain innermost-first
// through Outer; blocks push a layer on invocation, functions start from
// the layer they captured.
type Scope struct {
	Bindings map[string]Expr
	Outer    *Scope
}

func NewScope(outer *Scope) *Scope {
	return &Scope{
		Bindings: make(map[string]Expr),
		Outer:    outer,
	}
}

func (s *Scope) Get(name string) (Expr, bool) {
	for cur := s; cur != nil; cur = cur.Outer {
		if val, ok := cur.Bindings[name]; ok {
			return val, true
		}
	}
	return nil, false
}

func (s *Scope) Define(name string, val Expr) {
	s.Bindings[name] = val
}

// Assign overwrites the nearest binding of name and reports whether one
// was found.
func (s *Scope) Assign(name string, val Expr) bool {
	for cur := s; cur != nil; cur = cur.Outer {
		if _, ok := cur.Bindings[name]; ok {
			cur.Bindings[name] = val
			return true
		}
	}
	return false
}

// ScopeItem is a persistent (def) binding. Items are handed out by pointer
// so introspection readers like scope:dump can enumerate values without
// moving them out of the context.
type ScopeItem struct {
	mu  sync.RWMutex
	val Expr
}

func (si *ScopeItem) Val() Expr {
	si.mu.RLock()
	defer si.mu.RUnlock()
	return si.val
}

func (si *ScopeItem) SetVal(val Expr) {
	si.mu.Lock()
	defer si.mu.Unlock()
	si.val = val
}

// ScopeEntry pairs an item name with its cell for enumeration.
type ScopeEntry struct {
	Name string
	Item *ScopeItem
}

// Context is the binding environment of one evaluation unit: the let scope
// chain, the persistent scope item table, and the optional journal of
// stack snapshots. It is created once per evaluation unit, mutated in
// place by the binding intrinsics, and discarded wholesale on reset.
type Context struct {
	lets *Scope

	mu    sync.RWMutex
	items map[string]*ScopeItem

	journal *Journal
	sources map[string]string
}

func NewContext() *Context {
	return &Context{
		lets:    NewScope(nil),
		items:   make(map[string]*ScopeItem),
		sources: make(map[string]string),
	}
}

// WithJournal enables bounded stack-history journaling.
func (c *Context) WithJournal(maxLen int) *Context {
	c.journal = NewJournal(maxLen)
	return c
}

func (c *Context) Journal() *Journal { return c.journal }

// RecordSnapshot appends a copy of the stack to the journal, if enabled.
func (c *Context) RecordSnapshot(stack []Expr) {
	if c.journal == nil {
		return
	}
	c.journal.Record(stack)
}

// PushScope opens a new let layer; blocks call this on invocation.
func (c *Context) PushScope() {
	c.lets = NewScope(c.lets)
}

func (c *Context) PopScope() {
	if c.lets.Outer != nil {
		c.lets = c.lets.Outer
	}
}

// CurrentScope exposes the innermost let layer so closures can capture it.
func (c *Context) CurrentScope() *Scope { return c.lets }

// SwapScope replaces the let chain and returns the previous one. Function
// invocation swaps in the captured scope for the duration of the call.
func (c *Context) SwapScope(scope *Scope) *Scope {
	prev := c.lets
	c.lets = scope
	return prev
}

func (c *Context) LetBind(name string, val Expr) {
	slog.Debug("let binding",
		slog.String("name", name),
		slog.String("type", string(val.Type())))
	c.lets.Define(name, val)
}

func (c *Context) LetGet(name string) (Expr, bool) {
	return c.lets.Get(name)
}

// Def creates or overwrites a persistent scope item.
func (c *Context) Def(name string, val Expr) {
	c.mu.Lock()
	defer c.mu.Unlock()

	slog.Debug("def binding",
		slog.String("name", name),
		slog.String("type", string(val.Type())))

	if item, ok := c.items[name]; ok {
		item.SetVal(val)
		return
	}
	c.items[name] = &ScopeItem{val: val}
}

func (c *Context) ScopeItem(name string) (*ScopeItem, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	item, ok := c.items[name]
	return item, ok
}

// ScopeItems returns the persistent bindings, sorted by name.
func (c *Context) ScopeItems() []ScopeEntry {
	c.mu.RLock()
	entries := make([]ScopeEntry, 0, len(c.items))
	for name, item := range c.items {
		entries = append(entries, ScopeEntry{Name: name, Item: item})
	}
	c.mu.RUnlock()

	for i := 1; i < len(entries); i++ {
		for j := i; j > 0 && entries[j].Name < entries[j-1].Name; j-- {
			entries[j], entries[j-1] = entries[j-1], entries[j]
		}
	}
	return entries
}

// Get reads a binding by the let-before-scope priority.
func (c *Context) Get(name string) (Expr, bool) {
	if val, ok := c.lets.Get(name); ok {
		return val, true
	}
	if item, ok := c.ScopeItem(name); ok {
		return item.Val(), true
	}
	return nil, false
}

// Set mutates an existing binding, lets shadowing scope items. Unknown
// names are an error rather than an implicit definition.
func (c *Context) Set(name string, val Expr) error {
	if c.lets.Assign(name, val) {
		return nil
	}
	if item, ok := c.ScopeItem(name); ok {
		item.SetVal(val)
		return nil
	}
	return fmt.Errorf("failed to set '%s': not bound in any accessible scope", name)
}

// AddSource registers an origin so callers (the watch loop) can enumerate
// everything that fed this context.
func (c *Context) AddSource(name, content string) {
	c.sources[name] = content
}

func (c *Context) Sources() map[string]string {
	out := make(map[string]string, len(c.sources))
	for k, v := range c.sources {
		out[k] = v
	}
	return out
}

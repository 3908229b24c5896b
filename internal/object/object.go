package object

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const (
	NIL_EXPR     = "NIL"
	BOOLEAN_EXPR = "BOOLEAN"
	INTEGER_EXPR = "INTEGER"
	FLOAT_EXPR   = "FLOAT"
	STRING_EXPR  = "STRING"

	SYMBOL_EXPR = "SYMBOL"
	CALL_EXPR   = "CALL"

	BLOCK_EXPR  = "BLOCK"
	LIST_EXPR   = "LIST"
	RECORD_EXPR = "RECORD"

	FUNCTION_EXPR   = "FUNCTION"
	SEXPR_EXPR      = "SEXPR"
	UNDERSCORE_EXPR = "UNDERSCORE"
)

var (
	NIL        = &Nil{}
	TRUE       = &Boolean{Value: true}
	FALSE      = &Boolean{Value: false}
	UNDERSCORE = &Underscore{}
)

type ExprType string

// Expr is both the AST node and the runtime value: the same representation
// flows from parse to execution.
type Expr interface {
	Type() ExprType
	Inspect() string
}

type Nil struct{}

func (n *Nil) Type() ExprType  { return NIL_EXPR }
func (n *Nil) Inspect() string { return "nil" }

type Boolean struct {
	Value bool
}

func (b *Boolean) Type() ExprType  { return BOOLEAN_EXPR }
func (b *Boolean) Inspect() string { return strconv.FormatBool(b.Value) }

type Integer struct {
	Value int64
}

func (i *Integer) Type() ExprType  { return INTEGER_EXPR }
func (i *Integer) Inspect() string { return strconv.FormatInt(i.Value, 10) }

type Float struct {
	Value float64
}

func (f *Float) Type() ExprType  { return FLOAT_EXPR }
func (f *Float) Inspect() string { return strconv.FormatFloat(f.Value, 'g', -1, 64) }

type String struct {
	Value string
}

func (s *String) Type() ExprType  { return STRING_EXPR }
func (s *String) Inspect() string { return s.Value }

// Symbol is an unevaluated name. It is pushed as data and never looked up.
type Symbol struct {
	Value string
}

func (s *Symbol) Type() ExprType  { return SYMBOL_EXPR }
func (s *Symbol) Inspect() string { return "'" + s.Value }

// Call is a bare name, resolved and invoked when reached during execution.
type Call struct {
	Value string
}

func (c *Call) Type() ExprType  { return CALL_EXPR }
func (c *Call) Inspect() string { return c.Value }

// Block is lazy. It only gets evaluated when it is called, which is how
// conditionals and deferred code are represented. `(1 2 3)` is a block.
type Block struct {
	Exprs []Expr
}

func (b *Block) Type() ExprType { return BLOCK_EXPR }
func (b *Block) Inspect() string {
	return "(" + joinExprs(b.Exprs) + ")"
}

// List is eager. Its elements are evaluated before the list is pushed to
// the stack. `[1 2 3]` is a list.
type List struct {
	Exprs []Expr
}

func (l *List) Type() ExprType { return LIST_EXPR }
func (l *List) Inspect() string {
	return "[" + joinExprs(l.Exprs) + "]"
}

// Record maps unique keys to values; ordering is irrelevant.
type Record struct {
	Pairs map[string]Expr
}

func NewRecord() *Record {
	return &Record{Pairs: make(map[string]Expr)}
}

func (r *Record) Type() ExprType { return RECORD_EXPR }
func (r *Record) Inspect() string {
	keys := make([]string, 0, len(r.Pairs))
	for k := range r.Pairs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString("{")
	for i, k := range keys {
		if i > 0 {
			sb.WriteString(" ")
		}
		fmt.Fprintf(&sb, "%s: %s", k, r.Pairs[k].Inspect())
	}
	sb.WriteString("}")
	return sb.String()
}

// Keys returns the record's keys in sorted order.
func (r *Record) Keys() []string {
	keys := make([]string, 0, len(r.Pairs))
	for k := range r.Pairs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Function is a closure: a body block together with the lexical scope it
// captured when it was created.
type Function struct {
	Name  string
	Scope *Scope
	Body  *Block
}

func (f *Function) Type() ExprType { return FUNCTION_EXPR }
func (f *Function) Inspect() string {
	if f.Name != "" {
		return "fn<" + f.Name + ">"
	}
	return "fn" + f.Body.Inspect()
}

// SExpr is an invocation form: a call paired with an argument body.
type SExpr struct {
	Call *Call
	Body *Block
}

func (s *SExpr) Type() ExprType { return SEXPR_EXPR }
func (s *SExpr) Inspect() string {
	return "(" + s.Call.Value + " " + joinExprs(s.Body.Exprs) + ")"
}

// Underscore is the wildcard/placeholder marker.
type Underscore struct{}

func (u *Underscore) Type() ExprType  { return UNDERSCORE_EXPR }
func (u *Underscore) Inspect() string { return "_" }

func joinExprs(exprs []Expr) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.Inspect()
	}
	return strings.Join(parts, " ")
}

// BooleanFor returns the shared singleton for a native bool.
func BooleanFor(value bool) *Boolean {
	if value {
		return TRUE
	}
	return FALSE
}

// TypeName returns the lowercase variant name used by type-of and cast.
func TypeName(e Expr) string {
	switch e.Type() {
	case NIL_EXPR:
		return "nil"
	case BOOLEAN_EXPR:
		return "boolean"
	case INTEGER_EXPR:
		return "integer"
	case FLOAT_EXPR:
		return "float"
	case STRING_EXPR:
		return "string"
	case SYMBOL_EXPR:
		return "symbol"
	case CALL_EXPR:
		return "call"
	case BLOCK_EXPR:
		return "block"
	case LIST_EXPR:
		return "list"
	case RECORD_EXPR:
		return "record"
	case FUNCTION_EXPR:
		return "function"
	case SEXPR_EXPR:
		return "sexpr"
	case UNDERSCORE_EXPR:
		return "underscore"
	}
	return "unknown"
}

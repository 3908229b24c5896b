package render

import (
	"stack/internal/object"
	"strings"

	"github.com/fatih/color"
)

var (
	numberColor  = color.New(color.FgCyan)
	stringColor  = color.New(color.FgGreen)
	symbolColor  = color.New(color.FgMagenta)
	nilColor     = color.New(color.Faint)
	booleanColor = color.New(color.FgYellow)
)

// FormatStack renders a stack bottom-up on one line.
func FormatStack(stack []object.Expr) string {
	var sb strings.Builder
	sb.WriteString("stack:")
	for _, e := range stack {
		sb.WriteString(" ")
		sb.WriteString(e.Inspect())
	}
	return sb.String()
}

// Pretty renders a value with per-variant coloring. Color output respects
// NO_COLOR and non-terminal writers via the color package's own checks.
func Pretty(e object.Expr) string {
	switch e := e.(type) {
	case *object.Integer, *object.Float:
		return numberColor.Sprint(e.Inspect())
	case *object.String:
		return stringColor.Sprintf("%q", e.Value)
	case *object.Symbol:
		return symbolColor.Sprint(e.Inspect())
	case *object.Nil:
		return nilColor.Sprint("nil")
	case *object.Boolean:
		return booleanColor.Sprint(e.Inspect())
	case *object.Block:
		return "(" + prettyJoin(e.Exprs) + ")"
	case *object.List:
		return "[" + prettyJoin(e.Exprs) + "]"
	case *object.Record:
		var sb strings.Builder
		sb.WriteString("{")
		for i, k := range e.Keys() {
			if i > 0 {
				sb.WriteString(" ")
			}
			sb.WriteString(symbolColor.Sprint(k))
			sb.WriteString(": ")
			sb.WriteString(Pretty(e.Pairs[k]))
		}
		sb.WriteString("}")
		return sb.String()
	}
	return e.Inspect()
}

func prettyJoin(exprs []object.Expr) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = Pretty(e)
	}
	return strings.Join(parts, " ")
}

package object

// Equals implements the language's coercing equality. Integers and floats
// compare as real numbers, integers and booleans compare by zero/nonzero;
// every other cross-variant pair is unequal.
func Equals(a, b Expr) bool {
	switch a := a.(type) {
	case *Nil:
		_, ok := b.(*Nil)
		return ok
	case *Boolean:
		switch b := b.(type) {
		case *Boolean:
			return a.Value == b.Value
		case *Integer:
			return a.Value == (b.Value != 0)
		}
		return false
	case *Integer:
		switch b := b.(type) {
		case *Integer:
			return a.Value == b.Value
		case *Float:
			return float64(a.Value) == b.Value
		case *Boolean:
			return (a.Value != 0) == b.Value
		}
		return false
	case *Float:
		switch b := b.(type) {
		case *Float:
			return a.Value == b.Value
		case *Integer:
			return a.Value == float64(b.Value)
		}
		return false
	case *String:
		if b, ok := b.(*String); ok {
			return a.Value == b.Value
		}
		return false
	case *Symbol:
		if b, ok := b.(*Symbol); ok {
			return a.Value == b.Value
		}
		return false
	case *Call:
		if b, ok := b.(*Call); ok {
			return a.Value == b.Value
		}
		return false
	case *Block:
		if b, ok := b.(*Block); ok {
			return exprsEqual(a.Exprs, b.Exprs)
		}
		return false
	case *List:
		if b, ok := b.(*List); ok {
			return exprsEqual(a.Exprs, b.Exprs)
		}
		return false
	case *Record:
		b, ok := b.(*Record)
		if !ok || len(a.Pairs) != len(b.Pairs) {
			return false
		}
		for k, av := range a.Pairs {
			bv, ok := b.Pairs[k]
			if !ok || !Equals(av, bv) {
				return false
			}
		}
		return true
	case *Function:
		return a == b
	case *SExpr:
		if b, ok := b.(*SExpr); ok {
			return a.Call.Value == b.Call.Value && exprsEqual(a.Body.Exprs, b.Body.Exprs)
		}
		return false
	case *Underscore:
		_, ok := b.(*Underscore)
		return ok
	}
	return false
}

func exprsEqual(a, b []Expr) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equals(a[i], b[i]) {
			return false
		}
	}
	return true
}

// IsTruthy: nil and false are falsy, zero numbers are falsy, everything
// else (strings included, even empty ones) is truthy.
func IsTruthy(e Expr) bool {
	switch e := e.(type) {
	case *Nil:
		return false
	case *Boolean:
		return e.Value
	case *Integer:
		return e.Value != 0
	case *Float:
		return e.Value != 0.0
	}
	return true
}

func IsNil(e Expr) bool {
	_, ok := e.(*Nil)
	return ok
}

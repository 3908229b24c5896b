package object

import "testing"

func TestEqualsCoercion(t *testing.T) {
	tests := []struct {
		name string
		a, b Expr
		want bool
	}{
		{"same integers", &Integer{Value: 3}, &Integer{Value: 3}, true},
		{"different integers", &Integer{Value: 3}, &Integer{Value: 4}, false},
		{"integer and equal float", &Integer{Value: 3}, &Float{Value: 3.0}, true},
		{"float and equal integer", &Float{Value: 3.0}, &Integer{Value: 3}, true},
		{"integer and unequal float", &Integer{Value: 3}, &Float{Value: 3.5}, false},
		{"nonzero integer and true", &Integer{Value: 7}, TRUE, true},
		{"zero integer and true", &Integer{Value: 0}, TRUE, false},
		{"zero integer and false", &Integer{Value: 0}, FALSE, true},
		{"true and nonzero integer", TRUE, &Integer{Value: 1}, true},
		{"false and zero integer", FALSE, &Integer{Value: 0}, true},
		{"float and boolean never equal", &Float{Value: 1.0}, TRUE, false},
		{"same strings", &String{Value: "a"}, &String{Value: "a"}, true},
		{"string and integer", &String{Value: "3"}, &Integer{Value: 3}, false},
		{"string and symbol", &String{Value: "a"}, &Symbol{Value: "a"}, false},
		{"same symbols", &Symbol{Value: "a"}, &Symbol{Value: "a"}, true},
		{"nil and nil", NIL, &Nil{}, true},
		{"nil and false", NIL, FALSE, false},
		{"nil and zero", NIL, &Integer{Value: 0}, false},
		{
			"equal lists",
			&List{Exprs: []Expr{&Integer{Value: 1}, &String{Value: "x"}}},
			&List{Exprs: []Expr{&Integer{Value: 1}, &String{Value: "x"}}},
			true,
		},
		{
			"lists of different length",
			&List{Exprs: []Expr{&Integer{Value: 1}}},
			&List{Exprs: []Expr{&Integer{Value: 1}, &Integer{Value: 2}}},
			false,
		},
		{
			"list elements coerce",
			&List{Exprs: []Expr{&Integer{Value: 1}}},
			&List{Exprs: []Expr{&Float{Value: 1.0}}},
			true,
		},
		{
			"list and block never equal",
			&List{Exprs: []Expr{&Integer{Value: 1}}},
			&Block{Exprs: []Expr{&Integer{Value: 1}}},
			false,
		},
		{
			"equal blocks",
			&Block{Exprs: []Expr{&Call{Value: "+"}}},
			&Block{Exprs: []Expr{&Call{Value: "+"}}},
			true,
		},
	}

	for _, tt := range tests {
		if got := Equals(tt.a, tt.b); got != tt.want {
			t.Errorf("%s: Equals(%s, %s) = %v, want %v",
				tt.name, tt.a.Inspect(), tt.b.Inspect(), got, tt.want)
		}
	}
}

func TestEqualsRecords(t *testing.T) {
	a := NewRecord()
	a.Pairs["x"] = &Integer{Value: 1}
	a.Pairs["y"] = &String{Value: "hi"}

	b := NewRecord()
	b.Pairs["y"] = &String{Value: "hi"}
	b.Pairs["x"] = &Float{Value: 1.0}

	if !Equals(a, b) {
		t.Errorf("records with coercibly equal values should be equal")
	}

	b.Pairs["z"] = NIL
	if Equals(a, b) {
		t.Errorf("records with different key sets should not be equal")
	}
}

func TestEqualsFunctionIdentity(t *testing.T) {
	body := &Block{Exprs: []Expr{&Integer{Value: 1}}}
	f := &Function{Name: "f", Body: body}
	g := &Function{Name: "f", Body: body}
	if !Equals(f, f) {
		t.Errorf("a function should equal itself")
	}
	if Equals(f, g) {
		t.Errorf("distinct functions should not be equal")
	}
}

func TestIsTruthy(t *testing.T) {
	tests := []struct {
		e    Expr
		want bool
	}{
		{NIL, false},
		{FALSE, false},
		{TRUE, true},
		{&Integer{Value: 0}, false},
		{&Integer{Value: -1}, true},
		{&Float{Value: 0.0}, false},
		{&Float{Value: 0.1}, true},
		{&String{Value: ""}, true},
		{&String{Value: "no"}, true},
		{&List{}, true},
		{&Block{}, true},
	}
	for _, tt := range tests {
		if got := IsTruthy(tt.e); got != tt.want {
			t.Errorf("IsTruthy(%s) = %v, want %v", tt.e.Inspect(), got, tt.want)
		}
	}
}

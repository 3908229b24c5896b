package vm

import (
	"errors"
	"math"
	"testing"
)

func TestSaturatingAdd(t *testing.T) {
	tests := []struct {
		a, b, want int64
	}{
		{1, 2, 3},
		{math.MaxInt64, 1, math.MaxInt64},
		{math.MaxInt64, math.MaxInt64, math.MaxInt64},
		{math.MinInt64, -1, math.MinInt64},
		{math.MinInt64, math.MaxInt64, -1},
	}
	for _, tt := range tests {
		v, err := IntegerVal(tt.a).Add(IntegerVal(tt.b))
		if err != nil {
			t.Fatalf("%d + %d failed: %v", tt.a, tt.b, err)
		}
		if v.Int != tt.want {
			t.Errorf("%d + %d = %d, want %d", tt.a, tt.b, v.Int, tt.want)
		}
	}
}

func TestSaturatingSub(t *testing.T) {
	tests := []struct {
		a, b, want int64
	}{
		{5, 3, 2},
		{math.MinInt64, 1, math.MinInt64},
		{math.MaxInt64, -1, math.MaxInt64},
		{0, math.MinInt64, math.MaxInt64},
	}
	for _, tt := range tests {
		v, err := IntegerVal(tt.a).Sub(IntegerVal(tt.b))
		if err != nil {
			t.Fatalf("%d - %d failed: %v", tt.a, tt.b, err)
		}
		if v.Int != tt.want {
			t.Errorf("%d - %d = %d, want %d", tt.a, tt.b, v.Int, tt.want)
		}
	}
}

func TestSaturatingMul(t *testing.T) {
	tests := []struct {
		a, b, want int64
	}{
		{6, 7, 42},
		{0, math.MaxInt64, 0},
		{math.MaxInt64, 2, math.MaxInt64},
		{math.MaxInt64, -2, math.MinInt64},
		{math.MinInt64, -1, math.MaxInt64},
		{math.MinInt64, 2, math.MinInt64},
	}
	for _, tt := range tests {
		v, err := IntegerVal(tt.a).Mul(IntegerVal(tt.b))
		if err != nil {
			t.Fatalf("%d * %d failed: %v", tt.a, tt.b, err)
		}
		if v.Int != tt.want {
			t.Errorf("%d * %d = %d, want %d", tt.a, tt.b, v.Int, tt.want)
		}
	}
}

func TestSaturatingDivEdge(t *testing.T) {
	v, err := IntegerVal(math.MinInt64).Div(IntegerVal(-1))
	if err != nil {
		t.Fatalf("division failed: %v", err)
	}
	if v.Int != math.MaxInt64 {
		t.Errorf("MinInt64 / -1 should clamp to MaxInt64, got %d", v.Int)
	}
}

func TestMixedValArithmeticFails(t *testing.T) {
	_, err := IntegerVal(1).Add(FloatVal(2.0))
	var re *RunError
	if !errors.As(err, &re) || re.Kind != ErrOperandMismatch {
		t.Fatalf("expected an operand mismatch, got %v", err)
	}
	if re.Lhs.Inspect() != "1" || re.Rhs.Inspect() != "2" {
		t.Errorf("mismatch should carry both operands, got %s and %s",
			re.Lhs.Inspect(), re.Rhs.Inspect())
	}
}

func TestValExprRoundTrip(t *testing.T) {
	if IntegerVal(7).Expr().Inspect() != "7" {
		t.Errorf("integer val did not lift correctly")
	}
	if FloatVal(2.5).Expr().Inspect() != "2.5" {
		t.Errorf("float val did not lift correctly")
	}
	if _, ok := ValFromExpr(IntegerVal(7).Expr()); !ok {
		t.Errorf("lifted integer should narrow back")
	}
}

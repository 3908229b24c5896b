package parser

import (
	"stack/internal/lexer"
	"stack/internal/object"
	"testing"
)

func parse(t *testing.T, input string) []object.Expr {
	t.Helper()
	program, err := Parse(lexer.NewSource("test", input))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	return program
}

func parseError(t *testing.T, input string) error {
	t.Helper()
	program, err := Parse(lexer.NewSource("test", input))
	if err == nil {
		t.Fatalf("expected a parse error, got program %v", program)
	}
	if program != nil {
		t.Fatalf("failed parse must not return a partial program, got %v", program)
	}
	return err
}

func TestParensProduceBlock(t *testing.T) {
	program := parse(t, "(1 2 3)")
	if len(program) != 1 {
		t.Fatalf("expected 1 expression, got %d", len(program))
	}
	block, ok := program[0].(*object.Block)
	if !ok {
		t.Fatalf("expected a block, got %T", program[0])
	}
	if len(block.Exprs) != 3 {
		t.Errorf("expected 3 inner expressions, got %d", len(block.Exprs))
	}
}

func TestBracketsProduceList(t *testing.T) {
	program := parse(t, "[1 2 3]")
	if len(program) != 1 {
		t.Fatalf("expected 1 expression, got %d", len(program))
	}
	list, ok := program[0].(*object.List)
	if !ok {
		t.Fatalf("expected a list, got %T", program[0])
	}
	if len(list.Exprs) != 3 {
		t.Errorf("expected 3 elements, got %d", len(list.Exprs))
	}
}

func TestNestedStructures(t *testing.T) {
	program := parse(t, "(1 [2 (3)] 4)")
	block, ok := program[0].(*object.Block)
	if !ok {
		t.Fatalf("expected a block, got %T", program[0])
	}
	list, ok := block.Exprs[1].(*object.List)
	if !ok {
		t.Fatalf("expected a nested list, got %T", block.Exprs[1])
	}
	if _, ok := list.Exprs[1].(*object.Block); !ok {
		t.Fatalf("expected a nested block, got %T", list.Exprs[1])
	}
}

func TestLiterals(t *testing.T) {
	program := parse(t, `1 2.5 "hi" 'sym nil true false _ word`)
	wantTypes := []object.ExprType{
		object.INTEGER_EXPR,
		object.FLOAT_EXPR,
		object.STRING_EXPR,
		object.SYMBOL_EXPR,
		object.NIL_EXPR,
		object.BOOLEAN_EXPR,
		object.BOOLEAN_EXPR,
		object.UNDERSCORE_EXPR,
		object.CALL_EXPR,
	}
	if len(program) != len(wantTypes) {
		t.Fatalf("expected %d expressions, got %d", len(wantTypes), len(program))
	}
	for i, want := range wantTypes {
		if program[i].Type() != want {
			t.Errorf("program[%d] wrong type. expected=%s, got=%s", i, want, program[i].Type())
		}
	}
	if program[5] != object.TRUE || program[6] != object.FALSE {
		t.Errorf("booleans are not the shared singletons")
	}
}

func TestMismatchedCloserFails(t *testing.T) {
	parseError(t, "(1 2 3]")
	parseError(t, "[1 2 3)")
}

func TestUnbalancedFails(t *testing.T) {
	parseError(t, "(1 2")
	parseError(t, "[1 2")
	parseError(t, "1 2)")
	parseError(t, "((1)")
}

func TestLexDiagnosticFails(t *testing.T) {
	parseError(t, `"unterminated`)
	parseError(t, "99999999999999999999")
}

func TestEmptyInput(t *testing.T) {
	program := parse(t, "")
	if len(program) != 0 {
		t.Errorf("expected empty program, got %v", program)
	}
	program = parse(t, "# nothing but a comment")
	if len(program) != 0 {
		t.Errorf("expected empty program, got %v", program)
	}
}

func TestEmptyBlockAndList(t *testing.T) {
	program := parse(t, "() []")
	if len(program) != 2 {
		t.Fatalf("expected 2 expressions, got %d", len(program))
	}
	if block := program[0].(*object.Block); len(block.Exprs) != 0 {
		t.Errorf("expected empty block, got %v", block.Exprs)
	}
	if list := program[1].(*object.List); len(list.Exprs) != 0 {
		t.Errorf("expected empty list, got %v", list.Exprs)
	}
}

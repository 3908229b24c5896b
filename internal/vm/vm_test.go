package vm

import (
	"errors"
	"math"
	"stack/internal/engine"
	"stack/internal/lexer"
	"stack/internal/object"
	"stack/internal/parser"
	"testing"
)

func compileSource(t *testing.T, input string) *VM {
	t.Helper()
	exprs, err := parser.Parse(lexer.NewSource("test", input))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	machine := New(object.NewContext(), engine.New())
	machine.Compile(exprs)
	return machine
}

func run(t *testing.T, input string) []object.Expr {
	t.Helper()
	stack, err := compileSource(t, input).Run()
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	return stack
}

func runFail(t *testing.T, input string) *RunError {
	t.Helper()
	_, err := compileSource(t, input).Run()
	if err == nil {
		t.Fatalf("expected a failure for %q", input)
	}
	var re *RunError
	if !errors.As(err, &re) {
		t.Fatalf("expected a RunError, got %T: %v", err, err)
	}
	return re
}

func wantInts(t *testing.T, stack []object.Expr, want ...int64) {
	t.Helper()
	if len(stack) != len(want) {
		t.Fatalf("wrong stack size. expected=%d, got=%d (%v)", len(want), len(stack), stack)
	}
	for i, w := range want {
		n, ok := stack[i].(*object.Integer)
		if !ok {
			t.Fatalf("stack[%d] is %T, want integer", i, stack[i])
		}
		if n.Value != w {
			t.Errorf("stack[%d] = %d, want %d", i, n.Value, w)
		}
	}
}

func wantBool(t *testing.T, stack []object.Expr, want bool) {
	t.Helper()
	if len(stack) != 1 {
		t.Fatalf("wrong stack size. expected=1, got=%d (%v)", len(stack), stack)
	}
	b, ok := stack[0].(*object.Boolean)
	if !ok {
		t.Fatalf("stack[0] is %T, want boolean", stack[0])
	}
	if b.Value != want {
		t.Errorf("got %v, want %v", b.Value, want)
	}
}

func TestCompileArithmetic(t *testing.T) {
	machine := compileSource(t, "2 2 +")
	ops := machine.Ops()
	wantKinds := []OpKind{OpPush, OpPush, OpIntrinsic, OpEnd}
	if len(ops) != len(wantKinds) {
		t.Fatalf("expected %d ops, got %d: %v", len(wantKinds), len(ops), ops)
	}
	for i, kind := range wantKinds {
		if ops[i].Kind != kind {
			t.Errorf("ops[%d] = %s, wrong kind", i, ops[i])
		}
	}
	if ops[2].Name != "+" {
		t.Errorf("ops[2] should dispatch '+', got %q", ops[2].Name)
	}
}

func TestStepThrough(t *testing.T) {
	machine := compileSource(t, "2 2 +")

	for i := 0; i < 3; i++ {
		if err := machine.Step(); err != nil {
			t.Fatalf("step %d failed: %v", i+1, err)
		}
	}
	wantInts(t, machine.Stack(), 4)

	// the fourth step executes End: a normal halt, not a failure
	if err := machine.Step(); !errors.Is(err, ErrHalt) {
		t.Fatalf("expected ErrHalt on the End step, got %v", err)
	}

	// stepping past the stream is a genuine failure
	var re *RunError
	if err := machine.Step(); !errors.As(err, &re) || re.Kind != ErrIPBounds {
		t.Fatalf("expected an instruction pointer failure, got %v", err)
	}
}

func TestArithmetic(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"2 3 +", 5},
		{"10 4 -", 6},
		{"6 7 *", 42},
		{"9 2 /", 4},
		{"9 2 %", 1},
		{"-3 5 +", 2},
	}
	for _, tt := range tests {
		wantInts(t, run(t, tt.input), tt.want)
	}
}

func TestFloatArithmetic(t *testing.T) {
	stack := run(t, "1.5 2.25 +")
	f, ok := stack[0].(*object.Float)
	if !ok || f.Value != 3.75 {
		t.Errorf("expected 3.75, got %v", stack[0])
	}

	stack = run(t, "1.0 0.0 /")
	f, ok = stack[0].(*object.Float)
	if !ok || !math.IsInf(f.Value, 1) {
		t.Errorf("float division by zero should follow IEEE, got %v", stack[0])
	}
}

func TestIntegerSaturation(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"9223372036854775807 1 +", math.MaxInt64},
		{"-9223372036854775808 1 -", math.MinInt64},
		{"9223372036854775807 2 *", math.MaxInt64},
		{"-9223372036854775808 2 *", math.MinInt64},
		{"-9223372036854775808 -1 /", math.MaxInt64},
		{"-9223372036854775808 -1 %", 0},
	}
	for _, tt := range tests {
		wantInts(t, run(t, tt.input), tt.want)
	}
}

func TestMixedArithmeticFails(t *testing.T) {
	re := runFail(t, "1 2.0 +")
	if re.Kind != ErrOperandMismatch {
		t.Fatalf("expected an operand mismatch, got %v", re)
	}
	if re.Name != "+" {
		t.Errorf("failure should name the operation, got %q", re.Name)
	}
	if re.Lhs.Inspect() != "1" || re.Rhs.Inspect() != "2" {
		t.Errorf("failure should carry both operands, got %s and %s",
			re.Lhs.Inspect(), re.Rhs.Inspect())
	}
}

func TestNonNumericArithmeticFails(t *testing.T) {
	re := runFail(t, `"a" 1 +`)
	if re.Kind != ErrOperandMismatch {
		t.Errorf("expected an operand mismatch, got %v", re)
	}
}

func TestDivideByZero(t *testing.T) {
	if re := runFail(t, "1 0 /"); re.Kind != ErrDivideByZero {
		t.Errorf("expected a divide-by-zero failure, got %v", re)
	}
	if re := runFail(t, "1 0 %"); re.Kind != ErrDivideByZero {
		t.Errorf("expected a divide-by-zero failure, got %v", re)
	}
}

func TestStackUnderflow(t *testing.T) {
	re := runFail(t, "+")
	if re.Kind != ErrStackUnderflow {
		t.Fatalf("expected a stack underflow, got %v", re)
	}
	if re.Name != "+" {
		t.Errorf("underflow should name the operation, got %q", re.Name)
	}
}

func TestComparisons(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"1 2 <", true},
		{"2 1 <", false},
		{"2 2 <=", true},
		{"3 2.5 >", true},
		{"2 2 >=", true},
		{"1 1 =", true},
		{"1 1.0 =", true},
		{"1 true =", true},
		{"0 false =", true},
		{"1 2 !=", true},
		{`"a" "a" =`, true},
		{`"a" 'a =`, false},
		{"nil nil =", true},
		{"nil false =", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			wantBool(t, run(t, tt.input), tt.want)
		})
	}
}

func TestComparisonNeedsNumbers(t *testing.T) {
	re := runFail(t, `"a" 1 <`)
	if re.Kind != ErrOperandMismatch {
		t.Errorf("expected an operand mismatch, got %v", re)
	}
}

func TestBooleanOps(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"true false or", true},
		{"false false or", false},
		{"1 0 and", false},
		{"1 2 and", true},
		{"0 not", true},
		{`"" not`, false},
		{"nil not", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			wantBool(t, run(t, tt.input), tt.want)
		})
	}
}

func TestStackShuffles(t *testing.T) {
	wantInts(t, run(t, "1 2 drop"), 1)
	wantInts(t, run(t, "1 dupe"), 1, 1)
	wantInts(t, run(t, "1 2 swap"), 2, 1)
	wantInts(t, run(t, "1 2 3 rot"), 2, 3, 1)
}

func TestBlocksAreLazy(t *testing.T) {
	stack := run(t, "(1 2 +)")
	if len(stack) != 1 {
		t.Fatalf("expected one value, got %d", len(stack))
	}
	if _, ok := stack[0].(*object.Block); !ok {
		t.Fatalf("a block should push unevaluated, got %T", stack[0])
	}

	wantInts(t, run(t, "(1 2 +) call"), 3)
}

func TestListsAreEager(t *testing.T) {
	stack := run(t, "[1 2 + 3]")
	list, ok := stack[0].(*object.List)
	if !ok {
		t.Fatalf("expected a list, got %T", stack[0])
	}
	if list.Inspect() != "[3 3]" {
		t.Errorf("list elements should reduce, got %s", list.Inspect())
	}
}

func TestIf(t *testing.T) {
	wantInts(t, run(t, "1 2 < (10) if"), 10)
	wantInts(t, run(t, "1 2 > (10) (20) if"), 20)
	wantInts(t, run(t, "1 2 < (10) (20) if"), 10)

	if stack := run(t, "1 2 > (10) if"); len(stack) != 0 {
		t.Errorf("a falsy one-branch if should push nothing, got %v", stack)
	}
}

func TestIfNeedsBlock(t *testing.T) {
	re := runFail(t, "true 10 if")
	if re.Kind != ErrWrongType {
		t.Errorf("expected a wrong-type failure, got %v", re)
	}
}

func TestLazyWrapsValues(t *testing.T) {
	stack := run(t, "42 lazy")
	block, ok := stack[0].(*object.Block)
	if !ok {
		t.Fatalf("lazy should produce a block, got %T", stack[0])
	}
	if len(block.Exprs) != 1 {
		t.Fatalf("expected a single wrapped value, got %v", block.Exprs)
	}
	wantInts(t, run(t, "42 lazy call"), 42)
	wantInts(t, run(t, "(1) lazy call"), 1)
}

func TestRecurLoops(t *testing.T) {
	wantInts(t, run(t, "0 (1 + dupe 5 < (recur) if) call"), 5)
}

func TestRecurOutsideBlockFails(t *testing.T) {
	re := runFail(t, "recur")
	if re.Kind != ErrWrongType {
		t.Errorf("expected a failure for recur outside a block, got %v", re)
	}
}

func TestHalt(t *testing.T) {
	wantInts(t, run(t, "1 halt 2"), 1)
	// halt inside a nested invocation still stops the whole machine
	wantInts(t, run(t, "1 (2 halt 3) call 4"), 1, 2)
}

func TestInnerEndIsNotHalt(t *testing.T) {
	// completing a block body resumes the outer stream
	wantInts(t, run(t, "(1) call 2"), 1, 2)
}

func TestOrElse(t *testing.T) {
	wantInts(t, run(t, "nil 5 or-else"), 5)
	wantInts(t, run(t, "1 5 or-else"), 1)
}

func TestLetBindings(t *testing.T) {
	wantInts(t, run(t, "1 'x let x"), 1)
	wantInts(t, run(t, "1 'x let 'x get"), 1)
	wantInts(t, run(t, "1 'x let 2 'x set x"), 2)
}

func TestLetIsScopedToBlock(t *testing.T) {
	wantInts(t, run(t, "1 'x let (2 'x let) call x"), 1)
}

func TestGetUnboundPushesNil(t *testing.T) {
	stack := run(t, "'missing get")
	if len(stack) != 1 || !object.IsNil(stack[0]) {
		t.Errorf("get of an unbound name should push nil, got %v", stack)
	}
}

func TestUnknownCallFails(t *testing.T) {
	re := runFail(t, "bogus")
	if re.Kind != ErrUnknownName || re.Name != "bogus" {
		t.Errorf("expected an unknown-name failure for 'bogus', got %v", re)
	}
}

func TestSetUnboundFails(t *testing.T) {
	re := runFail(t, "2 'x set")
	if re.Kind != ErrUnknownName {
		t.Errorf("expected an unknown-name failure, got %v", re)
	}
}

func TestDefValue(t *testing.T) {
	wantInts(t, run(t, "42 'answer def answer"), 42)
}

func TestDefBlockBecomesFunction(t *testing.T) {
	wantInts(t, run(t, "(dupe *) 'square def 3 square"), 9)

	stack := run(t, "(dupe *) 'square def 'square get")
	if _, ok := stack[0].(*object.Function); !ok {
		t.Errorf("get should push the function without calling it, got %T", stack[0])
	}
}

func TestFunctionCapturesScope(t *testing.T) {
	// the function closes over the let binding visible at definition time
	wantInts(t, run(t, "10 'base let (base +) 'add-base def 5 add-base"), 15)
}

func TestIntrinsicWinsOverBinding(t *testing.T) {
	// a let binding cannot shadow an intrinsic
	stack := run(t, "1 2 'drop let drop")
	if len(stack) != 0 {
		t.Errorf("the drop intrinsic should win over the binding, got %v", stack)
	}
}

func TestTypeOf(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1 type-of", "integer"},
		{"1.5 type-of", "float"},
		{`"x" type-of`, "string"},
		{"'x type-of", "symbol"},
		{"nil type-of", "nil"},
		{"true type-of", "boolean"},
		{"(1) type-of", "block"},
		{"[1] type-of", "list"},
	}
	for _, tt := range tests {
		stack := run(t, tt.input)
		s, ok := stack[0].(*object.String)
		if !ok || s.Value != tt.want {
			t.Errorf("%q: got %v, want %q", tt.input, stack[0], tt.want)
		}
	}
}

func TestCast(t *testing.T) {
	wantInts(t, run(t, "3.9 'integer cast"), 3)
	wantInts(t, run(t, `"12" 'integer cast`), 12)

	stack := run(t, "3 'float cast")
	if f, ok := stack[0].(*object.Float); !ok || f.Value != 3.0 {
		t.Errorf("expected 3.0, got %v", stack[0])
	}

	wantBool(t, run(t, "1 'boolean cast"), true)

	stack = run(t, "(1 2) 'list cast")
	if _, ok := stack[0].(*object.List); !ok {
		t.Errorf("expected a list, got %T", stack[0])
	}
	stack = run(t, "[1 2] 'block cast")
	if _, ok := stack[0].(*object.Block); !ok {
		t.Errorf("expected a block, got %T", stack[0])
	}
}

func TestCastFailures(t *testing.T) {
	if re := runFail(t, `"abc" 'integer cast`); re.Kind != ErrWrongType {
		t.Errorf("expected a wrong-type failure, got %v", re)
	}
	if re := runFail(t, "1 'gibberish cast"); re.Kind != ErrWrongType {
		t.Errorf("expected a failure for an unknown target, got %v", re)
	}
}

func TestRecordRoundTrip(t *testing.T) {
	stack := run(t, "[['a 1] ['b 2]] 'record cast")
	rec, ok := stack[0].(*object.Record)
	if !ok {
		t.Fatalf("expected a record, got %T", stack[0])
	}
	if len(rec.Pairs) != 2 {
		t.Fatalf("expected 2 pairs, got %d", len(rec.Pairs))
	}

	wantInts(t, run(t, "[['a 1] ['b 2]] 'record cast 'b prop"), 2)

	stack = run(t, "[['a 1]] 'record cast 'list cast")
	if stack[0].Inspect() != "[['a 1]]" {
		t.Errorf("record should round-trip through a pair list, got %s", stack[0].Inspect())
	}
}

func TestCollections(t *testing.T) {
	wantInts(t, run(t, "[1 2 3] len"), 3)
	wantInts(t, run(t, `"hello" len`), 5)
	wantInts(t, run(t, "[1 2 3] 1 nth"), 2)

	stack := run(t, "[1 2] 5 nth")
	if !object.IsNil(stack[0]) {
		t.Errorf("out-of-range nth should push nil, got %v", stack[0])
	}

	stack = run(t, "[1 2 3] 1 split")
	if len(stack) != 2 || stack[0].Inspect() != "[1]" || stack[1].Inspect() != "[2 3]" {
		t.Errorf("split produced %v", stack)
	}

	stack = run(t, "[1] [2 3] concat")
	if stack[0].Inspect() != "[1 2 3]" {
		t.Errorf("concat produced %s", stack[0].Inspect())
	}
	stack = run(t, `"ab" "cd" concat`)
	if s := stack[0].(*object.String); s.Value != "abcd" {
		t.Errorf("string concat produced %q", s.Value)
	}

	stack = run(t, "[1 2] 3 push")
	if stack[0].Inspect() != "[1 2 3]" {
		t.Errorf("push produced %s", stack[0].Inspect())
	}

	stack = run(t, "[1 2 3] pop")
	if len(stack) != 2 || stack[0].Inspect() != "[1 2]" {
		t.Fatalf("pop produced %v", stack)
	}
	wantInts(t, stack[1:], 3)

	stack = run(t, "[] pop")
	if len(stack) != 2 || !object.IsNil(stack[1]) {
		t.Errorf("popping an empty list should yield the list and nil, got %v", stack)
	}

	stack = run(t, "[1 2 3] 0 remove")
	if stack[0].Inspect() != "[2 3]" {
		t.Errorf("remove produced %s", stack[0].Inspect())
	}

	wantBool(t, run(t, "[1 2] 2 has"), true)
	wantBool(t, run(t, "[1 2] 5 has"), false)

	stack = run(t, "[1 2] 0 9 insert")
	if stack[0].Inspect() != "[9 2]" {
		t.Errorf("insert produced %s", stack[0].Inspect())
	}
}

func TestRecordOps(t *testing.T) {
	const rec = "[['a 1] ['b 2]] 'record cast"

	wantBool(t, run(t, rec+" 'a has"), true)
	wantBool(t, run(t, rec+" 'z has"), false)

	stack := run(t, rec+" 'z prop")
	if !object.IsNil(stack[0]) {
		t.Errorf("missing key should push nil, got %v", stack[0])
	}

	stack = run(t, rec+" keys")
	if stack[0].Inspect() != "['a 'b]" {
		t.Errorf("keys produced %s", stack[0].Inspect())
	}
	stack = run(t, rec+" values")
	if stack[0].Inspect() != "[1 2]" {
		t.Errorf("values produced %s", stack[0].Inspect())
	}

	wantInts(t, run(t, rec+" 'c 3 insert 'c prop"), 3)
	wantBool(t, run(t, rec+" 'a remove 'a has"), false)
}

func TestJournalDuringRun(t *testing.T) {
	exprs, err := parser.Parse(lexer.NewSource("test", "1 2 +"))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	ctx := object.NewContext().WithJournal(10)
	machine := New(ctx, engine.New())
	machine.Compile(exprs)
	if _, err := machine.Run(); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	entries := ctx.Journal().Entries()
	if len(entries) != 3 {
		t.Fatalf("expected a snapshot per executed step, got %d", len(entries))
	}
	if len(entries[0]) != 1 || len(entries[1]) != 2 || len(entries[2]) != 1 {
		t.Errorf("snapshot shapes are wrong: %v", entries)
	}
	if entries[2][0].(*object.Integer).Value != 4 {
		t.Errorf("final snapshot should hold the sum, got %v", entries[2])
	}
}

func TestJournalBoundHolds(t *testing.T) {
	exprs, err := parser.Parse(lexer.NewSource("test", "1 2 3 4 5 6 7 8"))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	ctx := object.NewContext().WithJournal(3)
	machine := New(ctx, engine.New())
	machine.Compile(exprs)
	if _, err := machine.Run(); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	j := ctx.Journal()
	if j.Len() != 3 {
		t.Fatalf("journal exceeded its bound: %d", j.Len())
	}
	// the retained snapshots are the three most recent
	entries := j.Entries()
	if len(entries[2]) != 8 || len(entries[0]) != 6 {
		t.Errorf("oldest entries were not evicted: %v", entries)
	}
}

func TestFailureLeavesLastGoodStack(t *testing.T) {
	machine := compileSource(t, "1 2 bogus")
	stack, err := machine.Run()
	if err == nil {
		t.Fatalf("expected a failure")
	}
	wantInts(t, stack, 1, 2)
}

func TestModuleQualifiedCall(t *testing.T) {
	eng := engine.New()
	eng.AddModule(engine.NewModule("m").
		AddFunc("twice", func(rt engine.Runtime) error {
			val, err := rt.StackPop()
			if err != nil {
				return err
			}
			n := val.(*object.Integer)
			rt.StackPush(&object.Integer{Value: n.Value * 2})
			return nil
		}))

	exprs, err := parser.Parse(lexer.NewSource("test", "21 m:twice"))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	machine := New(object.NewContext(), eng)
	machine.Compile(exprs)
	stack, err := machine.Run()
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	wantInts(t, stack, 42)
}

func TestUnknownModuleCallFails(t *testing.T) {
	re := runFail(t, "1 nope:fn")
	if re.Kind != ErrUnknownName {
		t.Errorf("expected an unknown-name failure, got %v", re)
	}
}

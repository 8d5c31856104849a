package evaluator

import (
	"context"
	"testing"

	"github.com/cwbudde/go-cel/internal/checker"
	"github.com/cwbudde/go-cel/internal/config"
	"github.com/cwbudde/go-cel/internal/parser"
	"github.com/cwbudde/go-cel/internal/registry"
	"github.com/cwbudde/go-cel/internal/types"
	"github.com/cwbudde/go-cel/internal/values"
)

func stubHandler(args []values.Value) (values.Value, error) {
	return values.Null(), nil
}

func registerArithmetic(t *testing.T, r *registry.Registry) {
	t.Helper()
	add := func(args []values.Value) (values.Value, error) { return values.Int(args[0].Int + args[1].Int), nil }
	gt := func(args []values.Value) (values.Value, error) { return values.Bool(args[0].Int > args[1].Int), nil }
	mul := func(args []values.Value) (values.Value, error) { return values.Int(args[0].Int * args[1].Int), nil }
	if err := r.RegisterOperatorOverload(registry.OperatorSignature{Op: "+", Left: types.Int(), Right: types.Int()}, add, types.Int()); err != nil {
		t.Fatal(err)
	}
	if err := r.RegisterOperatorOverload(registry.OperatorSignature{Op: "*", Left: types.Int(), Right: types.Int()}, mul, types.Int()); err != nil {
		t.Fatal(err)
	}
	if err := r.RegisterOperatorOverload(registry.OperatorSignature{Op: ">", Left: types.Int(), Right: types.Int()}, gt, types.Bool()); err != nil {
		t.Fatal(err)
	}
}

func evalSource(t *testing.T, source string, vars map[string]values.Value, setup func(r *registry.Registry)) (values.Value, error) {
	t.Helper()
	reg := registry.New()
	registerArithmetic(t, reg)
	if setup != nil {
		setup(reg)
	}
	opts := config.DefaultEnvironmentOptions()
	node, err := parser.Parse(source, reg, opts)
	if err != nil {
		t.Fatalf("parse(%q): %v", source, err)
	}
	if _, err := checker.Check(node, source, reg, opts); err != nil {
		t.Fatalf("check(%q): %v", source, err)
	}
	return Evaluate(context.Background(), node, source, reg, vars)
}

func TestEvalArithmetic(t *testing.T) {
	v, err := evalSource(t, "1 + 2 * 3", nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Kind != values.KindInt || v.Int != 7 {
		t.Errorf("got %v, want 7", v)
	}
}

func TestEvalVariableLookup(t *testing.T) {
	v, err := evalSource(t, "x + 1", map[string]values.Value{"x": values.Int(41)}, func(r *registry.Registry) {
		if err := r.RegisterVariable("x", types.Int()); err != nil {
			t.Fatal(err)
		}
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Int != 42 {
		t.Errorf("got %d, want 42", v.Int)
	}
}

func TestEvalUnknownVariable(t *testing.T) {
	_, err := evalSource(t, "x", nil, func(r *registry.Registry) {
		if err := r.RegisterVariable("x", types.Dyn()); err != nil {
			t.Fatal(err)
		}
	})
	if err == nil {
		t.Fatalf("expected unknown variable error")
	}
}

func TestEvalTernary(t *testing.T) {
	v, err := evalSource(t, "1 > 0 ? 10 : 20", nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Int != 10 {
		t.Errorf("got %d, want 10", v.Int)
	}
}

func TestEvalShortCircuitOr(t *testing.T) {
	v, err := evalSource(t, "true || (1 > 0)", nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Kind != values.KindBool || !v.Bool {
		t.Errorf("got %v, want true", v)
	}
}

func TestEvalListIndex(t *testing.T) {
	v, err := evalSource(t, "[1,2,3][1]", nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Int != 2 {
		t.Errorf("got %d, want 2", v.Int)
	}
}

func TestEvalIndexOutOfRange(t *testing.T) {
	_, err := evalSource(t, "[1,2,3][5]", nil, nil)
	if err == nil {
		t.Fatalf("expected index out of range error")
	}
}

func TestEvalMapFieldAccess(t *testing.T) {
	v, err := evalSource(t, `{"a": 1, "b": 2}["a"]`, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Int != 1 {
		t.Errorf("got %d, want 1", v.Int)
	}
}

func TestEvalExistsMacro(t *testing.T) {
	v, err := evalSource(t, "[1,2,3].exists(v, v > 2)", nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Kind != values.KindBool || !v.Bool {
		t.Errorf("got %v, want true", v)
	}
}

func TestEvalAllMacroEmptyList(t *testing.T) {
	v, err := evalSource(t, "[].all(v, v > 0)", nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.Bool {
		t.Errorf("all() over empty list must be true")
	}
}

func TestEvalAllMacroMixedPredicate(t *testing.T) {
	// Only the last element satisfies v > 2; all() must AND-combine every
	// iteration's predicate result rather than let the final one win.
	v, err := evalSource(t, "[1,2,3].all(v, v > 2)", nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Kind != values.KindBool || v.Bool {
		t.Errorf("got %v, want false", v)
	}
}

func TestEvalExistsAllDuality(t *testing.T) {
	// spec.md §8's exists(xs,p) == !all(xs,!p) invariant.
	exists, err := evalSource(t, "[true, false].exists(v, v)", nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	negatedAll, err := evalSource(t, "[true, false].all(v, !v)", nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exists.Bool != !negatedAll.Bool {
		t.Errorf("exists=%v, !all(!p)=%v: duality invariant violated", exists.Bool, !negatedAll.Bool)
	}
}

func TestEvalMapMacro(t *testing.T) {
	v, err := evalSource(t, "[1,2,3].map(v, v * 2)", nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(v.List) != 3 || v.List[0].Int != 2 || v.List[2].Int != 6 {
		t.Errorf("got %v, want [2,4,6]", v)
	}
}

func TestEvalFilterMacro(t *testing.T) {
	v, err := evalSource(t, "[1,2,3,4].filter(v, v > 2)", nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(v.List) != 2 || v.List[0].Int != 3 || v.List[1].Int != 4 {
		t.Errorf("got %v, want [3,4]", v)
	}
}

func TestEvalExistsOneMacro(t *testing.T) {
	v, err := evalSource(t, "[1,2,3].exists_one(v, v == 2)", nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.Bool {
		t.Errorf("expected exactly one match")
	}
}

func TestEvalHasTrueAndFalse(t *testing.T) {
	vars := map[string]values.Value{"a": mapValue(map[string]values.Value{"b": values.Int(1)})}
	v, err := evalSource(t, "has(a.b)", vars, func(r *registry.Registry) {
		if err := r.RegisterVariable("a", types.Dyn()); err != nil {
			t.Fatal(err)
		}
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.Bool {
		t.Errorf("has(a.b) should be true")
	}

	v2, err := evalSource(t, "has(a.c)", vars, func(r *registry.Registry) {
		if err := r.RegisterVariable("a", types.Dyn()); err != nil {
			t.Fatal(err)
		}
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v2.Bool {
		t.Errorf("has(a.c) should be false")
	}
}

func TestEvalEqualityCrossNumeric(t *testing.T) {
	vars := map[string]values.Value{"x": values.Double(1.0)}
	v, err := evalSource(t, "x == 1", vars, func(r *registry.Registry) {
		if err := r.RegisterVariable("x", types.Dyn()); err != nil {
			t.Fatal(err)
		}
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.Bool {
		t.Errorf("expected dyn double 1.0 == int 1 to be true")
	}
}

func TestEvalDuplicateMapKeyLastWriteWins(t *testing.T) {
	v, err := evalSource(t, `{"a": 1, "a": 2}["a"]`, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Int != 2 {
		t.Errorf("got %d, want 2 (last write wins)", v.Int)
	}
}

func mapValue(fields map[string]values.Value) values.Value {
	m := values.NewMap()
	for k, v := range fields {
		m.Set(values.String(k), v)
	}
	return values.Value{Kind: values.KindMap, Map: m}
}

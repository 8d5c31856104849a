package checker

import (
	"testing"

	"github.com/cwbudde/go-cel/internal/ast"
	"github.com/cwbudde/go-cel/internal/config"
	"github.com/cwbudde/go-cel/internal/parser"
	"github.com/cwbudde/go-cel/internal/registry"
	"github.com/cwbudde/go-cel/internal/types"
	"github.com/cwbudde/go-cel/internal/values"
)

// stubHandler is a placeholder ast.StaticHandler for operator/function
// overloads the checker only needs to resolve statically in these tests —
// it is never invoked, since the checker does not evaluate.
func stubHandler(args []values.Value) (values.Value, error) {
	return values.Null(), nil
}

// registerArithmetic wires just enough of spec.md §4.5's numeric/
// comparison catalog for int operands to exercise the checker's operator
// resolution without depending on internal/stdlib's full builtins
// registration.
func registerArithmetic(t *testing.T, r *registry.Registry) {
	t.Helper()
	for _, op := range []string{"+", "-", "*"} {
		if err := r.RegisterOperatorOverload(registry.OperatorSignature{Op: op, Left: types.Int(), Right: types.Int()}, stubHandler, types.Int()); err != nil {
			t.Fatal(err)
		}
	}
	if err := r.RegisterOperatorOverload(registry.OperatorSignature{Op: ">", Left: types.Int(), Right: types.Int()}, stubHandler, types.Bool()); err != nil {
		t.Fatal(err)
	}
	if err := r.RegisterOperatorOverload(registry.OperatorSignature{Op: "==", Left: types.Int(), Right: types.Int()}, stubHandler, types.Bool()); err != nil {
		t.Fatal(err)
	}
}

func checkSource(t *testing.T, source string, setup func(r *registry.Registry)) (*ast.Node, *types.TypeDecl, error) {
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
	typ, err := Check(node, source, reg, opts)
	return node, typ, err
}

func TestCheckLiteralTypes(t *testing.T) {
	_, typ, err := checkSource(t, "1 + 2", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !typ.Matches(types.Int()) {
		t.Errorf("got %s, want int", typ)
	}
}

func TestCheckUnknownVariableErrors(t *testing.T) {
	_, _, err := checkSource(t, "x + 1", nil)
	if err == nil {
		t.Fatalf("expected unknown variable error")
	}
}

func TestCheckDeclaredVariable(t *testing.T) {
	_, typ, err := checkSource(t, "x + 1", func(r *registry.Registry) {
		if err := r.RegisterVariable("x", types.Int()); err != nil {
			t.Fatal(err)
		}
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !typ.Matches(types.Int()) {
		t.Errorf("got %s, want int", typ)
	}
}

func TestCheckTernaryUnifiesBranches(t *testing.T) {
	_, typ, err := checkSource(t, "true ? 1 : 2", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !typ.Matches(types.Int()) {
		t.Errorf("got %s, want int", typ)
	}
}

func TestCheckTernaryConditionMustBeBool(t *testing.T) {
	_, _, err := checkSource(t, "1 ? 2 : 3", nil)
	if err == nil {
		t.Fatalf("expected error: ternary condition must be bool")
	}
}

func TestCheckHeterogeneousListRejected(t *testing.T) {
	_, _, err := checkSource(t, `[1, "a"]`, nil)
	if err == nil {
		t.Fatalf("expected error: heterogeneous list literal")
	}
}

func TestCheckListElementType(t *testing.T) {
	_, typ, err := checkSource(t, "[1, 2, 3]", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if typ.Kind != types.KindList || !typ.Elem.Matches(types.Int()) {
		t.Errorf("got %s, want list<int>", typ)
	}
}

func TestCheckExistsMacroReturnsBool(t *testing.T) {
	_, typ, err := checkSource(t, "[1,2,3].exists(v, v > 1)", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !typ.Matches(types.Bool()) {
		t.Errorf("got %s, want bool", typ)
	}
}

func TestCheckMapMacroReturnsListOfResultType(t *testing.T) {
	_, typ, err := checkSource(t, "[1,2,3].map(v, v * 2)", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if typ.Kind != types.KindList {
		t.Errorf("got %s, want list<...>", typ)
	}
}

func TestCheckPredicateMustReturnBool(t *testing.T) {
	_, _, err := checkSource(t, `[1,2,3].exists(v, v + 1)`, nil)
	if err == nil {
		t.Fatalf("expected error: predicate must return bool")
	}
}

func TestCheckHasOnFieldChain(t *testing.T) {
	_, typ, err := checkSource(t, "has(a.b)", func(r *registry.Registry) {
		if err := r.RegisterVariable("a", types.Dyn()); err != nil {
			t.Fatal(err)
		}
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !typ.Matches(types.Bool()) {
		t.Errorf("got %s, want bool", typ)
	}
}

func TestCheckNoSuchOverload(t *testing.T) {
	_, _, err := checkSource(t, `"a" - 1`, nil)
	if err == nil {
		t.Fatalf("expected error: no such overload")
	}
}

func TestCheckDynOperandDefersOverload(t *testing.T) {
	_, typ, err := checkSource(t, "x + 1", func(r *registry.Registry) {
		if err := r.RegisterVariable("x", types.Dyn()); err != nil {
			t.Fatal(err)
		}
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !types.IsDyn(typ) {
		t.Errorf("got %s, want dyn", typ)
	}
}

func TestCheckCachesStaticHandlerForConcreteOperands(t *testing.T) {
	node, _, err := checkSource(t, "1 + 2", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if node.StaticHandlerFn == nil {
		t.Errorf("expected a cached static handler for concrete int+int operands")
	}
}

func TestCheckDoesNotCacheStaticHandlerForDynOperand(t *testing.T) {
	node, _, err := checkSource(t, "x + 1", func(r *registry.Registry) {
		if err := r.RegisterVariable("x", types.Dyn()); err != nil {
			t.Fatal(err)
		}
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if node.StaticHandlerFn != nil {
		t.Errorf("expected no cached static handler when an operand is dyn")
	}
}

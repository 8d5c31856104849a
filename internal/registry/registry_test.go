package registry

import (
	"testing"

	"github.com/cwbudde/go-cel/internal/ast"
	"github.com/cwbudde/go-cel/internal/types"
	"github.com/cwbudde/go-cel/internal/values"
)

func TestRegisterVariableDuplicate(t *testing.T) {
	r := New()
	if err := r.RegisterVariable("x", types.Int()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.RegisterVariable("x", types.Int()); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
}

func TestCloneLocksParent(t *testing.T) {
	r := New()
	_ = r.RegisterVariable("x", types.Int())
	child := r.Clone()
	if err := r.RegisterVariable("y", types.Int()); err == nil {
		t.Fatalf("expected locked parent to reject mutation")
	}
	if err := child.RegisterVariable("y", types.Int()); err != nil {
		t.Fatalf("child should accept new registrations: %v", err)
	}
	if _, ok := child.LookupVariable("x"); !ok {
		t.Fatalf("child should see parent's variable x")
	}
}

func TestFunctionOverloadResolutionExactReceiver(t *testing.T) {
	r := New()
	handler := func(args []values.Value) (values.Value, error) {
		return values.Int(int64(len(args[0].Str))), nil
	}
	err := r.RegisterFunctionOverload(FunctionSignature{
		Name: "size", Receiver: types.String(), Params: nil, Return: types.Int(),
	}, handler)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	set, ok := r.LookupFunctionCandidates("size", 0, true)
	if !ok {
		t.Fatalf("expected candidates for size()")
	}
	ret, h, ok := set.FindMatch(types.String(), nil)
	if !ok {
		t.Fatalf("expected a match")
	}
	if ret != types.Int() {
		t.Errorf("got return type %s, want int", ret)
	}
	v, err := h([]values.Value{values.String("abc")})
	if err != nil || v.Int != 3 {
		t.Errorf("got %v, %v, want 3, nil", v, err)
	}
}

func TestFunctionOverloadPlaceholderBinding(t *testing.T) {
	r := New()
	handler := func(args []values.Value) (values.Value, error) { return args[0], nil }
	err := r.RegisterFunctionOverload(FunctionSignature{
		Name: "dyn", Params: []*types.TypeDecl{types.Param("A")}, Return: types.Dyn(types.Param("A")),
	}, handler)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	set, _ := r.LookupFunctionCandidates("dyn", 1, false)
	ret, _, ok := set.FindMatch(nil, []*types.TypeDecl{types.String()})
	if !ok {
		t.Fatalf("expected a match")
	}
	if ret.CanonicalName() != "dyn<string>" {
		t.Errorf("got %s, want dyn<string>", ret)
	}
}

func TestOperatorOverloadSynthesizesNotEqualAndSwap(t *testing.T) {
	r := New()
	handler := func(args []values.Value) (values.Value, error) {
		return values.Bool(args[0].Int == int64(args[1].Uint)), nil
	}
	err := r.RegisterOperatorOverload(OperatorSignature{Op: "==", Left: types.Int(), Right: types.Uint()}, handler, types.Bool())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := r.LookupOperator("!=", types.Int(), types.Uint()); !ok {
		t.Errorf("expected synthesized != overload")
	}
	if _, ok := r.LookupOperator("==", types.Uint(), types.Int()); !ok {
		t.Errorf("expected synthesized swapped == overload")
	}
	if _, ok := r.LookupOperator("!=", types.Uint(), types.Int()); !ok {
		t.Errorf("expected synthesized swapped != overload")
	}
}

func TestOverlapDetectionRejectsAmbiguousOverload(t *testing.T) {
	r := New()
	noop := func(args []values.Value) (values.Value, error) { return values.Null(), nil }
	err := r.RegisterFunctionOverload(FunctionSignature{
		Name: "f", Params: []*types.TypeDecl{types.Int()}, Return: types.Int(),
	}, noop)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err = r.RegisterFunctionOverload(FunctionSignature{
		Name: "f", Params: []*types.TypeDecl{types.Int()}, Return: types.Int(),
	}, noop)
	if err == nil {
		t.Fatalf("expected overlap rejection")
	}
}

func TestRegisterTypeImplicitTypeFunction(t *testing.T) {
	r := New()
	msgType, err := r.RegisterType("Point", map[string]*types.TypeDecl{"x": types.Int(), "y": types.Int()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	set, ok := r.LookupFunctionCandidates("type", 1, false)
	if !ok {
		t.Fatalf("expected implicit type() overload")
	}
	ret, h, ok := set.FindMatch(nil, []*types.TypeDecl{msgType})
	if !ok || ret != types.Type() {
		t.Fatalf("expected a match returning Type, got %v %v", ret, ok)
	}
	v, err := h(nil)
	if err != nil || v.TypeVal != msgType {
		t.Errorf("got %v, %v", v, err)
	}
}

func TestLookupMacro(t *testing.T) {
	r := New()
	if _, ok := r.LookupMacro("has", false, 1); !ok {
		t.Errorf("expected has/1 to be a macro")
	}
	if _, ok := r.LookupMacro("exists", true, 2); !ok {
		t.Errorf("expected exists(v,p) to be a macro")
	}
	if _, ok := r.LookupMacro("nope", false, 1); ok {
		t.Errorf("did not expect 'nope' to be a macro")
	}
}

var _ ast.FunctionCandidates = (*FunctionCandidateSet)(nil)

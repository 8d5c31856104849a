package cel

import (
	"context"
	"testing"

	"github.com/cwbudde/go-cel/internal/types"
	"github.com/cwbudde/go-cel/internal/values"
)

func TestEvalBasic(t *testing.T) {
	env, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	v, err := env.Eval(context.Background(), "1 + 2 * 3", nil)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if v.Kind != values.KindInt || v.Int != 7 {
		t.Errorf("got %v, want int 7", v)
	}
}

func TestWithVariable(t *testing.T) {
	env, err := New(WithVariable("x", types.Int()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	v, err := env.Eval(context.Background(), "x + 1", map[string]values.Value{"x": values.Int(41)})
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if v.Int != 42 {
		t.Errorf("got %d, want 42", v.Int)
	}
}

func TestParseCheckEvalSeparately(t *testing.T) {
	env, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	p, err := env.Parse("1 + 1")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	typ, err := p.Check()
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if typ.CanonicalName() != "int" {
		t.Errorf("got type %s, want int", typ.CanonicalName())
	}
	v, err := p.Eval(context.Background(), nil)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if v.Int != 2 {
		t.Errorf("got %d, want 2", v.Int)
	}
}

func TestCheckRejectsTypeError(t *testing.T) {
	env, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := env.Check(`1 + "x"`); err == nil {
		t.Errorf("expected type-check error for int + string")
	}
}

func TestClone(t *testing.T) {
	base, err := New(WithVariable("x", types.Int()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	child := base.Clone()
	if err := child.reg.RegisterVariable("y", types.Int()); err != nil {
		t.Fatalf("child RegisterVariable: %v", err)
	}
	v, err := child.Eval(context.Background(), "x + y", map[string]values.Value{
		"x": values.Int(1), "y": values.Int(2),
	})
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if v.Int != 3 {
		t.Errorf("got %d, want 3", v.Int)
	}
	if _, err := base.reg.LookupVariable("y"); err {
		t.Errorf("base environment must not see child's registration")
	}
}

func TestWithCollator(t *testing.T) {
	env, err := New(WithCollator("en", false))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	v, err := env.Eval(context.Background(), "'a' < 'b'", nil)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if v.Kind != values.KindBool || !v.Bool {
		t.Errorf("got %v, want true", v)
	}
}

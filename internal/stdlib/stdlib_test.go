package stdlib

import (
	"context"
	"testing"

	"github.com/cwbudde/go-cel/internal/checker"
	"github.com/cwbudde/go-cel/internal/config"
	"github.com/cwbudde/go-cel/internal/evaluator"
	"github.com/cwbudde/go-cel/internal/parser"
	"github.com/cwbudde/go-cel/internal/registry"
	"github.com/cwbudde/go-cel/internal/values"
)

func newCatalog(t *testing.T) *registry.Registry {
	t.Helper()
	reg := registry.New()
	if err := Register(reg); err != nil {
		t.Fatalf("Register: %v", err)
	}
	return reg
}

func eval(t *testing.T, source string) (values.Value, error) {
	t.Helper()
	return evalOpts(t, source, config.DefaultEnvironmentOptions())
}

func evalOpts(t *testing.T, source string, opts config.EnvironmentOptions) (values.Value, error) {
	t.Helper()
	reg := newCatalog(t)
	node, err := parser.Parse(source, reg, opts)
	if err != nil {
		t.Fatalf("parse(%q): %v", source, err)
	}
	if _, err := checker.Check(node, source, reg, opts); err != nil {
		t.Fatalf("check(%q): %v", source, err)
	}
	return evaluator.Evaluate(context.Background(), node, source, reg, nil)
}

func wantInt(t *testing.T, source string, want int64) {
	t.Helper()
	v, err := eval(t, source)
	if err != nil {
		t.Fatalf("eval(%q): %v", source, err)
	}
	if v.Kind != values.KindInt || v.Int != want {
		t.Errorf("eval(%q) = %v, want int %d", source, v, want)
	}
}

func wantBool(t *testing.T, source string, want bool) {
	t.Helper()
	v, err := eval(t, source)
	if err != nil {
		t.Fatalf("eval(%q): %v", source, err)
	}
	if v.Kind != values.KindBool || v.Bool != want {
		t.Errorf("eval(%q) = %v, want bool %v", source, v, want)
	}
}

func wantString(t *testing.T, source string, want string) {
	t.Helper()
	v, err := eval(t, source)
	if err != nil {
		t.Fatalf("eval(%q): %v", source, err)
	}
	if v.Kind != values.KindString || v.Str != want {
		t.Errorf("eval(%q) = %v, want string %q", source, v, want)
	}
}

func wantError(t *testing.T, source string) {
	t.Helper()
	_, err := eval(t, source)
	if err == nil {
		t.Errorf("eval(%q): expected error, got none", source)
	}
}

func TestArithmeticOverloads(t *testing.T) {
	wantInt(t, "1 + 2 * 3", 7)
	wantInt(t, "7 / 2", 3)
	wantInt(t, "7 % 2", 1)
	wantInt(t, "10u - 3u", 7)
	wantError(t, "1 / 0")
	wantError(t, "9223372036854775807 + 1")
}

func TestComparisonOverloads(t *testing.T) {
	wantBool(t, "1 < 2", true)
	wantBool(t, "1.5 < 2", true)
	wantBool(t, "2u >= 2u", true)
	wantBool(t, "'abc' < 'abd'", true)
}

func TestConcatOverloads(t *testing.T) {
	wantString(t, "'foo' + 'bar'", "foobar")
	v, err := eval(t, "[1, 2] + [3]")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if len(v.List) != 3 {
		t.Errorf("got %v, want 3-element list", v)
	}
}

func TestInOperator(t *testing.T) {
	wantBool(t, "2 in [1, 2, 3]", true)
	wantBool(t, "4 in [1, 2, 3]", false)
	wantBool(t, "'k' in {'k': 1}", true)
}

func TestConversions(t *testing.T) {
	wantInt(t, "int(3.9)", 3)
	wantInt(t, "int('42')", 42)
	wantString(t, "string(42)", "42")
	wantBool(t, "bool('true')", true)
	wantError(t, "bool('yes')")
	wantError(t, "int('0x1A')")
}

func TestDynAndType(t *testing.T) {
	v, err := eval(t, "type(42)")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if v.Kind != values.KindType || v.TypeVal.CanonicalName() != "int" {
		t.Errorf("type(42) = %v, want type int", v)
	}
}

func TestSize(t *testing.T) {
	wantInt(t, "size('hello')", 5)
	wantInt(t, "size([1,2,3])", 3)
	wantInt(t, "size({'a':1,'b':2})", 2)
	wantInt(t, "'hello'.size()", 5)
	wantInt(t, "size('😀')", 1)
}

func TestStringMethods(t *testing.T) {
	wantBool(t, "'hello'.startsWith('he')", true)
	wantBool(t, "'hello'.endsWith('lo')", true)
	wantBool(t, "'hello'.contains('ell')", true)
	wantInt(t, "'hello'.indexOf('l')", 2)
	wantInt(t, "'hello'.lastIndexOf('l')", 3)
	wantString(t, "'hello'.substring(1, 3)", "el")
	wantBool(t, "'hello'.matches('^h.*o$')", true)
	wantString(t, "'a,b'.replace(',', ';')", "a;b")
	wantString(t, "'  hi  '.trim()", "hi")
}

func TestListMethods(t *testing.T) {
	wantString(t, "['a','b','c'].join(',')", "a,b,c")
	v, err := eval(t, "[1,2,3,4].slice(1, 3)")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if len(v.List) != 2 || v.List[0].Int != 2 || v.List[1].Int != 3 {
		t.Errorf("slice got %v", v)
	}
	sorted, err := eval(t, "[3,1,2].sort()")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if sorted.List[0].Int != 1 || sorted.List[1].Int != 2 || sorted.List[2].Int != 3 {
		t.Errorf("sort got %v", sorted)
	}
}

func TestMapMethods(t *testing.T) {
	v, err := eval(t, "{'a':1,'b':2}.keys()")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if len(v.List) != 2 {
		t.Errorf("keys got %v", v)
	}
}

func TestBytesMethods(t *testing.T) {
	wantString(t, "b'hi'.string()", "hi")
	wantString(t, "b'hi'.hex()", "6869")
	wantInt(t, "b'hi'.at(0)", 104)
}

func TestTimestampMethods(t *testing.T) {
	wantInt(t, `timestamp("2024-03-10T07:30:00Z").getHours()`, 7)
	wantInt(t, `timestamp("2024-03-10T07:30:00Z").getHours("America/Los_Angeles")`, 23)
}

func TestDurationMethods(t *testing.T) {
	wantInt(t, `duration("90s").getMinutes()`, 1)
	wantInt(t, `duration("90s").getSeconds()`, 90)
}

func TestOptionalMethods(t *testing.T) {
	opts := config.DefaultEnvironmentOptions()
	opts.EnableOptionalTypes = true
	v, err := evalOpts(t, `{1: "a"}[?2].orValue("none")`, opts)
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if v.Kind != values.KindString || v.Str != "none" {
		t.Errorf("got %v, want string none", v)
	}
	v, err = evalOpts(t, `{1: "a"}[?1].orValue("none")`, opts)
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if v.Kind != values.KindString || v.Str != "a" {
		t.Errorf("got %v, want string a", v)
	}
}

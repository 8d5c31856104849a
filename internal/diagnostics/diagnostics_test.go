package diagnostics

import (
	"strings"
	"testing"

	"github.com/cwbudde/go-cel/internal/token"
)

func TestErrorBareMessage(t *testing.T) {
	e := Parse("unexpected token %q", "}")
	if got := e.Error(); got != `unexpected token "}"` {
		t.Errorf("got %q", got)
	}
}

func TestErrorCaretFormat(t *testing.T) {
	e := TypeCheck("unknown variable: foo")
	e.WithAst("1 + foo", "<input>", token.Position{Line: 1, Column: 4})
	got := e.Error()
	want := "unknown variable: foo\n\n> " + "   1|   1 + foo\n" + strings.Repeat(" ", 13) + "^"
	if got != want {
		t.Errorf("got:\n%q\nwant:\n%q", got, want)
	}
}

func TestWithAstOnceOnly(t *testing.T) {
	e := Evaluation(SubkindArithmetic, "integer overflow")
	e.WithAst("a + b", "<input>", token.Position{Line: 1, Column: 0})
	e.WithAst("ignored", "ignored", token.Position{Line: 99, Column: 99})
	if e.Pos.Line != 1 || e.Pos.Column != 0 {
		t.Errorf("position was overwritten: %+v", e.Pos)
	}
	if e.Source != "a + b" {
		t.Errorf("source was overwritten: %q", e.Source)
	}
}

func TestUnwrap(t *testing.T) {
	cause := Parse("inner")
	e := TypeCheck("outer").WithCause(cause)
	if e.Unwrap() != cause {
		t.Errorf("Unwrap did not return cause")
	}
}

func TestMultilineSource(t *testing.T) {
	e := Parse("bad token")
	e.WithAst("line one\nline two\nline three", "<input>", token.Position{Line: 2, Column: 5})
	got := e.Error()
	if !strings.Contains(got, "line two") {
		t.Errorf("expected error to reference the second line, got:\n%s", got)
	}
}

package ast

import (
	"testing"

	"github.com/cwbudde/go-cel/internal/token"
)

func TestCountNodesLeaf(t *testing.T) {
	n := NewValue(token.Position{Line: 1, Column: 1}, int64(1))
	if got := CountNodes(n); got != 1 {
		t.Errorf("got %d, want 1", got)
	}
}

func TestCountNodesBinary(t *testing.T) {
	pos := token.Position{Line: 1, Column: 1}
	left := NewValue(pos, int64(1))
	right := NewValue(pos, int64(2))
	n := NewBinary(pos, Add, left, right)
	if got := CountNodes(n); got != 3 {
		t.Errorf("got %d, want 3", got)
	}
}

func TestCountNodesCallAndList(t *testing.T) {
	pos := token.Position{Line: 1, Column: 1}
	args := []*Node{NewValue(pos, int64(1)), NewValue(pos, int64(2))}
	call := NewCall(pos, "size", args)
	if got := CountNodes(call); got != 3 {
		t.Errorf("got %d, want 3", got)
	}

	list := NewList(pos, args)
	if got := CountNodes(list); got != 3 {
		t.Errorf("got %d, want 3", got)
	}
}

func TestOpString(t *testing.T) {
	cases := map[Op]string{
		Value: "value", Id: "id", Field: ".", FieldOpt: ".?",
		Call: "call", RCall: "rcall", Ternary: "?:", Has: "has",
		Comprehension: "comprehension",
	}
	for op, want := range cases {
		if got := op.String(); got != want {
			t.Errorf("Op(%d).String() = %q, want %q", op, got, want)
		}
	}
}

// Package evaluator walks a checked AST against a Context chain,
// implementing spec.md §4.7's per-op evaluation rules: variable lookup,
// field/index access (plain and optional), short-circuit logical
// operators with recoverable-left semantics, operator/call dispatch, the
// uniform comprehension engine, and the equality algorithm.
package evaluator

import "github.com/cwbudde/go-cel/internal/values"

// Context is one layer of the runtime variable-lookup chain: the root
// layer holds the host-supplied variable bindings for one evaluation;
// each comprehension fork overlays a single iteration-variable/
// accumulator binding on top of its parent, mirroring the teacher's
// Environment{store, outer} scope chain (internal/interp/runtime) with
// the mutex dropped, since a Context is read-only after construction.
type Context struct {
	store map[string]values.Value
	outer *Context
}

// NewContext builds a root context from a host-supplied variable binding
// set.
func NewContext(vars map[string]values.Value) *Context {
	store := make(map[string]values.Value, len(vars))
	for k, v := range vars {
		store[k] = v
	}
	return &Context{store: store}
}

// child returns a single-binding overlay used by comprehension forks.
func (c *Context) child(name string, val values.Value) *Context {
	return &Context{store: map[string]values.Value{name: val}, outer: c}
}

// Get looks up name through the context chain, innermost first.
func (c *Context) Get(name string) (values.Value, bool) {
	for ctx := c; ctx != nil; ctx = ctx.outer {
		if v, ok := ctx.store[name]; ok {
			return v, true
		}
	}
	return values.Value{}, false
}

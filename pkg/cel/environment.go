// Package cel is the host-facing facade: build an Environment, parse a
// source expression into a Program, check it, evaluate it against a
// runtime context. Mirrors CWBudde-go-dws's pkg/dwscript engine shape —
// functional-option constructor returning (*Environment, error),
// Compile/Run-style entry points — narrowed to spec.md §6's core surface
// (parse/check/evaluate) instead of a general scripting engine.
package cel

import (
	"context"
	"fmt"

	"github.com/cwbudde/go-cel/internal/ast"
	"github.com/cwbudde/go-cel/internal/checker"
	"github.com/cwbudde/go-cel/internal/config"
	"github.com/cwbudde/go-cel/internal/evaluator"
	"github.com/cwbudde/go-cel/internal/hostlib"
	"github.com/cwbudde/go-cel/internal/parser"
	"github.com/cwbudde/go-cel/internal/registry"
	"github.com/cwbudde/go-cel/internal/stdlib"
	"github.com/cwbudde/go-cel/internal/types"
	"github.com/cwbudde/go-cel/internal/values"
)

// Environment holds a frozen declaration registry (types, variables,
// constants, operators, functions, macros) and the structural-limit
// options every Parse/Check/Eval against it honors.
type Environment struct {
	reg  *registry.Registry
	opts config.EnvironmentOptions
}

// Option configures an Environment at construction time.
type Option func(*Environment) error

// New builds an Environment seeded with the full standard catalog
// (internal/stdlib.Register) plus any declarations opts add. An error
// from any option aborts construction.
func New(opts ...Option) (*Environment, error) {
	env := &Environment{
		reg:  registry.New(),
		opts: config.DefaultEnvironmentOptions(),
	}
	if err := stdlib.Register(env.reg); err != nil {
		return nil, fmt.Errorf("cel: registering standard library: %w", err)
	}
	for _, opt := range opts {
		if err := opt(env); err != nil {
			return nil, err
		}
	}
	return env, nil
}

// WithUnlistedVariablesAreDyn controls whether an identifier with no
// matching registerVariable/registerConstant is a type-check error
// (default) or treated as dyn.
func WithUnlistedVariablesAreDyn(v bool) Option {
	return func(e *Environment) error { e.opts.UnlistedVariablesAreDyn = v; return nil }
}

// WithHomogeneousAggregateLiterals controls whether list/map literal
// elements must unify to a single static type (default true).
func WithHomogeneousAggregateLiterals(v bool) Option {
	return func(e *Environment) error { e.opts.HomogeneousAggregateLiterals = v; return nil }
}

// WithEnableOptionalTypes toggles `.?`/`[?]` optional-chaining syntax.
func WithEnableOptionalTypes(v bool) Option {
	return func(e *Environment) error { e.opts.EnableOptionalTypes = v; return nil }
}

// WithLimits overrides the parser's structural limits wholesale.
func WithLimits(l config.Limits) Option {
	return func(e *Environment) error { e.opts.Limits = l; return nil }
}

// WithVariable declares a lexical variable of static type t, resolved by
// Eval's context map at the same name.
func WithVariable(name string, t *types.TypeDecl) Option {
	return func(e *Environment) error { return e.reg.RegisterVariable(name, t) }
}

// WithConstant declares a variable with a frozen runtime value, visible
// to both the checker (as its static type) and the evaluator (as its
// value, with no context entry required).
func WithConstant(name string, t *types.TypeDecl, v values.Value) Option {
	return func(e *Environment) error { return e.reg.RegisterConstant(name, t, v) }
}

// WithType registers a user message type: its constructor tag, declared
// field types (nil means untyped/dyn fields), and an implicit
// `type(<name>): type` conversion.
func WithType(name string, fields map[string]*types.TypeDecl) Option {
	return func(e *Environment) error {
		_, err := e.reg.RegisterType(name, fields)
		return err
	}
}

// WithFunction registers a free-function or receiver-method overload not
// covered by the standard catalog.
func WithFunction(sig registry.FunctionSignature, handler func([]values.Value) (values.Value, error)) Option {
	return func(e *Environment) error { return e.reg.RegisterFunctionOverload(sig, handler) }
}

// WithOperator registers an operator overload not covered by the
// standard catalog.
func WithOperator(sig registry.OperatorSignature, handler func([]values.Value) (values.Value, error), ret *types.TypeDecl) Option {
	return func(e *Environment) error { return e.reg.RegisterOperatorOverload(sig, handler, ret) }
}

// WithCollator replaces the default byte-wise string `<,<=,>,>=`
// overloads with locale-aware ones for the given BCP-47 tag, so
// `'a' < 'b'` orders by the named locale's collation instead of Go's
// plain byte ordering.
func WithCollator(tag string, ignoreCase bool) Option {
	return func(e *Environment) error {
		c, err := hostlib.NewCollator(tag, ignoreCase)
		if err != nil {
			return fmt.Errorf("cel: building collator for %q: %w", tag, err)
		}
		return stdlib.RegisterCollatedStringComparisons(e.reg, c)
	}
}

// Clone returns a child Environment layered on e: e is locked (no further
// registration) and the child may extend, never shadow, its declarations
// — spec.md §6's `clone()`.
func (e *Environment) Clone() *Environment {
	return &Environment{reg: e.reg.Clone(), opts: e.opts}
}

// Program is a parsed expression: its AST plus the source text and
// environment it was parsed against, ready for Check and/or Eval.
type Program struct {
	env    *Environment
	source string
	ast    *ast.Node
	typ    *types.TypeDecl
}

// Parse builds a Program from source without type-checking it — spec.md
// §6's `parse(expression)` returning `{ast, check(), (context?) -> value}`.
func (e *Environment) Parse(source string) (*Program, error) {
	node, err := parser.Parse(source, e.reg, e.opts)
	if err != nil {
		return nil, err
	}
	return &Program{env: e, source: source, ast: node}, nil
}

// Check type-checks p against its environment, caching the result so a
// subsequent Eval doesn't re-check. Returns the static result type.
func (p *Program) Check() (*types.TypeDecl, error) {
	t, err := checker.Check(p.ast, p.source, p.env.reg, p.env.opts)
	if err != nil {
		return nil, err
	}
	p.typ = t
	return t, nil
}

// Type returns the static type from the last successful Check, or nil if
// Check has not yet run.
func (p *Program) Type() *types.TypeDecl { return p.typ }

// Eval evaluates p against vars (nil for no variables). p need not have
// been Checked first — an unchecked AST runs exactly as parsed, with
// runtime overload resolution falling back to dyn handling throughout —
// but checking first lets the evaluator reuse the checker's cached
// overload decisions (see internal/evaluator's `StaticHandlerFn` design
// note) instead of re-resolving every call at runtime.
func (p *Program) Eval(ctx context.Context, vars map[string]values.Value) (values.Value, error) {
	return evaluator.Evaluate(ctx, p.ast, p.source, p.env.reg, vars)
}

// Check parses and type-checks source in one step — spec.md §6's
// `check(expression)` returning `{valid, type?, error?}`.
func (e *Environment) Check(source string) (*types.TypeDecl, error) {
	p, err := e.Parse(source)
	if err != nil {
		return nil, err
	}
	return p.Check()
}

// Eval parses, checks, and evaluates source in one step — spec.md §6's
// `evaluate(expression, context?)`.
func (e *Environment) Eval(ctx context.Context, source string, vars map[string]values.Value) (values.Value, error) {
	p, err := e.Parse(source)
	if err != nil {
		return values.Value{}, err
	}
	if _, err := p.Check(); err != nil {
		return values.Value{}, err
	}
	return p.Eval(ctx, vars)
}

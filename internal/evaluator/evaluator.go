package evaluator

import (
	"context"

	"github.com/cwbudde/go-cel/internal/ast"
	"github.com/cwbudde/go-cel/internal/diagnostics"
	"github.com/cwbudde/go-cel/internal/registry"
	"github.com/cwbudde/go-cel/internal/types"
	"github.com/cwbudde/go-cel/internal/values"
)

// Evaluator walks a checked AST against the registry's operator/function
// catalog. It carries no mutable state of its own beyond the registry
// and source text used to attach error positions — all per-evaluation
// state lives in the Context chain passed through eval.
type Evaluator struct {
	reg    *registry.Registry
	source string
}

// New constructs an Evaluator for one or more Eval calls against reg.
func New(source string, reg *registry.Registry) *Evaluator {
	return &Evaluator{reg: reg, source: source}
}

// Evaluate type-checks nothing itself — node must already have been
// Checked — and evaluates it against vars, honoring cancellation on ctx
// between comprehension iterations and short-circuit sides (spec.md §5).
func Evaluate(ctx context.Context, node *ast.Node, source string, reg *registry.Registry, vars map[string]values.Value) (values.Value, error) {
	e := New(source, reg)
	return e.eval(ctx, node, NewContext(vars))
}

func (e *Evaluator) evalErr(sub diagnostics.Subkind, n *ast.Node, format string, args ...interface{}) error {
	err := diagnostics.Evaluation(sub, format, args...)
	err.WithAst(e.source, "<input>", n.Pos)
	return err
}

func isSubkind(err error, sub diagnostics.Subkind) bool {
	de, ok := err.(*diagnostics.Error)
	return ok && de.Subkind == sub
}

func isAlwaysFatal(err error) bool {
	return isSubkind(err, diagnostics.SubkindUnknownVariable) || isSubkind(err, diagnostics.SubkindPredicateNotBool)
}

func isNoSuchKey(err error) bool {
	return isSubkind(err, diagnostics.SubkindNoSuchKey) || isSubkind(err, diagnostics.SubkindIndexOutOfRange)
}

func (e *Evaluator) eval(ctx context.Context, n *ast.Node, rc *Context) (values.Value, error) {
	select {
	case <-ctx.Done():
		return values.Value{}, e.evalErr(diagnostics.SubkindCancelled, n, "evaluation cancelled")
	default:
	}
	switch n.Op {
	case ast.Value:
		return literalValue(n.Args.(ast.LiteralArgs).Literal), nil
	case ast.Id:
		return e.evalID(n, rc)
	case ast.Field, ast.FieldOpt:
		return e.evalField(ctx, n, rc)
	case ast.Index, ast.IndexOpt:
		return e.evalIndex(ctx, n, rc)
	case ast.Call:
		return e.evalCall(ctx, n, rc)
	case ast.RCall:
		return e.evalRCall(ctx, n, rc)
	case ast.ListLit:
		return e.evalList(ctx, n, rc)
	case ast.MapLit:
		return e.evalMap(ctx, n, rc)
	case ast.Ternary:
		return e.evalTernary(ctx, n, rc)
	case ast.Or:
		return e.evalOr(ctx, n, rc)
	case ast.And:
		return e.evalAnd(ctx, n, rc)
	case ast.Not:
		return e.evalNot(ctx, n, rc)
	case ast.Neg:
		return e.evalNeg(ctx, n, rc)
	case ast.Eq, ast.Ne:
		return e.evalEquality(ctx, n, rc)
	case ast.Lt, ast.Le, ast.Gt, ast.Ge, ast.In, ast.Add, ast.Sub, ast.Mul, ast.Div, ast.Mod:
		return e.evalOperator(ctx, n, rc)
	case ast.Comprehension:
		return e.evalComprehension(ctx, n, rc)
	case ast.AccuValue:
		v, ok := rc.Get("@accu")
		if !ok {
			return values.Value{}, e.evalErr(diagnostics.SubkindNone, n, "@accu referenced outside a comprehension")
		}
		return v, nil
	case ast.AccuInc:
		v, ok := rc.Get("@accu")
		if !ok {
			return values.Value{}, e.evalErr(diagnostics.SubkindNone, n, "@accu referenced outside a comprehension")
		}
		return values.Int(v.Int + 1), nil
	case ast.AccuPush:
		return e.evalAccuPush(ctx, n, rc)
	case ast.PredicateGuard:
		return e.evalPredicateGuard(ctx, n, rc)
	case ast.Has:
		return e.evalHas(ctx, n, rc)
	}
	return values.Value{}, e.evalErr(diagnostics.SubkindNone, n, "unsupported expression")
}

func literalValue(lit interface{}) values.Value {
	switch v := lit.(type) {
	case nil:
		return values.Null()
	case bool:
		return values.Bool(v)
	case int64:
		return values.Int(v)
	case uint64:
		return values.Uint(v)
	case float64:
		return values.Double(v)
	case string:
		return values.String(v)
	case []byte:
		return values.Bytes(v)
	}
	return values.Null()
}

func (e *Evaluator) evalID(n *ast.Node, rc *Context) (values.Value, error) {
	name := n.Args.(ast.IdArgs).Name
	if v, ok := rc.Get(name); ok {
		return v, nil
	}
	if c, ok := e.reg.LookupConstant(name); ok {
		return c.Value, nil
	}
	return values.Value{}, e.evalErr(diagnostics.SubkindUnknownVariable, n, "Unknown variable: %s", name)
}

func (e *Evaluator) lookupField(recv values.Value, name string, n *ast.Node) (values.Value, error) {
	switch recv.Kind {
	case values.KindMap:
		v, ok := recv.Map.Get(values.String(name))
		if !ok {
			return values.Value{}, e.evalErr(diagnostics.SubkindNoSuchKey, n, "No such key: %s", name)
		}
		return v, nil
	case values.KindMessage:
		v, ok := recv.Msg.Fields[name]
		if !ok {
			return values.Value{}, e.evalErr(diagnostics.SubkindNoSuchKey, n, "No such key: %s", name)
		}
		return v, nil
	}
	return values.Value{}, e.evalErr(diagnostics.SubkindNoSuchKey, n, "No such key: %s", name)
}

func (e *Evaluator) evalField(ctx context.Context, n *ast.Node, rc *Context) (values.Value, error) {
	a := n.Args.(ast.FieldArgs)
	recv, err := e.eval(ctx, a.Receiver, rc)
	if err != nil {
		return values.Value{}, err
	}
	if recv.Kind == values.KindOptional {
		if !recv.Opt.HasValue {
			if n.Op == ast.FieldOpt {
				return values.None(), nil
			}
			return values.Value{}, e.evalErr(diagnostics.SubkindNoSuchKey, n, "No such key: %s", a.FieldName)
		}
		recv = recv.Opt.Val
	}
	val, ferr := e.lookupField(recv, a.FieldName, n)
	if ferr != nil {
		if n.Op == ast.FieldOpt && isNoSuchKey(ferr) {
			return values.None(), nil
		}
		return values.Value{}, ferr
	}
	if n.Op == ast.FieldOpt {
		return values.Some(val), nil
	}
	return val, nil
}

func (e *Evaluator) lookupIndex(recv, key values.Value, n *ast.Node) (values.Value, error) {
	switch recv.Kind {
	case values.KindList:
		if key.Kind != values.KindInt {
			return values.Value{}, e.evalErr(diagnostics.SubkindIndexOutOfRange, n, "index must be int")
		}
		idx := key.Int
		if idx < 0 {
			return values.Value{}, e.evalErr(diagnostics.SubkindIndexOutOfRange, n, "index out of bounds, index %d < 0", idx)
		}
		if idx >= int64(len(recv.List)) {
			return values.Value{}, e.evalErr(diagnostics.SubkindIndexOutOfRange, n, "index out of bounds, index %d >= size %d", idx, len(recv.List))
		}
		return recv.List[idx], nil
	case values.KindMap:
		v, ok := recv.Map.Get(key)
		if !ok {
			return values.Value{}, e.evalErr(diagnostics.SubkindNoSuchKey, n, "No such key: %s", key.String())
		}
		return v, nil
	}
	return values.Value{}, e.evalErr(diagnostics.SubkindNoSuchKey, n, "No such key: %s", key.String())
}

func (e *Evaluator) evalIndex(ctx context.Context, n *ast.Node, rc *Context) (values.Value, error) {
	a := n.Args.(ast.BinaryArgs)
	recv, err := e.eval(ctx, a.Left, rc)
	if err != nil {
		return values.Value{}, err
	}
	if recv.Kind == values.KindOptional {
		if !recv.Opt.HasValue {
			if n.Op == ast.IndexOpt {
				return values.None(), nil
			}
			return values.Value{}, e.evalErr(diagnostics.SubkindNoSuchKey, n, "No such key on none optional")
		}
		recv = recv.Opt.Val
	}
	key, err := e.eval(ctx, a.Right, rc)
	if err != nil {
		return values.Value{}, err
	}
	val, ierr := e.lookupIndex(recv, key, n)
	if ierr != nil {
		if n.Op == ast.IndexOpt && (isNoSuchKey(ierr)) {
			return values.None(), nil
		}
		return values.Value{}, ierr
	}
	if n.Op == ast.IndexOpt {
		return values.Some(val), nil
	}
	return val, nil
}

func (e *Evaluator) evalList(ctx context.Context, n *ast.Node, rc *Context) (values.Value, error) {
	a := n.Args.(ast.ListArgs)
	elems := make([]values.Value, len(a.Elements))
	for i, el := range a.Elements {
		v, err := e.eval(ctx, el, rc)
		if err != nil {
			return values.Value{}, err
		}
		elems[i] = v
	}
	return values.List(elems), nil
}

func (e *Evaluator) evalMap(ctx context.Context, n *ast.Node, rc *Context) (values.Value, error) {
	a := n.Args.(ast.MapArgs)
	m := values.NewMap()
	for _, entry := range a.Entries {
		k, err := e.eval(ctx, entry.Key, rc)
		if err != nil {
			return values.Value{}, err
		}
		v, err := e.eval(ctx, entry.Value, rc)
		if err != nil {
			return values.Value{}, err
		}
		m.Set(k, v)
	}
	return values.Value{Kind: values.KindMap, Map: m}, nil
}

func (e *Evaluator) evalTernary(ctx context.Context, n *ast.Node, rc *Context) (values.Value, error) {
	a := n.Args.(ast.TernaryArgs)
	cond, err := e.eval(ctx, a.Cond, rc)
	if err != nil {
		return values.Value{}, err
	}
	if cond.Kind != values.KindBool {
		return values.Value{}, e.evalErr(diagnostics.SubkindNone, n, "ternary condition must be bool")
	}
	if cond.Bool {
		return e.eval(ctx, a.Then, rc)
	}
	return e.eval(ctx, a.Else, rc)
}

// tryEval evaluates n and captures any error instead of propagating it,
// implementing the "recoverable-left" half of spec.md §4.7's
// short-circuit rule.
func (e *Evaluator) tryEval(ctx context.Context, n *ast.Node, rc *Context) (values.Value, error) {
	return e.eval(ctx, n, rc)
}

func (e *Evaluator) evalOr(ctx context.Context, n *ast.Node, rc *Context) (values.Value, error) {
	a := n.Args.(ast.BinaryArgs)
	leftVal, leftErr := e.tryEval(ctx, a.Left, rc)
	if leftErr == nil && leftVal.Kind == values.KindBool && leftVal.Bool {
		return values.Bool(true), nil
	}
	select {
	case <-ctx.Done():
		return values.Value{}, e.evalErr(diagnostics.SubkindCancelled, n, "evaluation cancelled")
	default:
	}
	rightVal, rightErr := e.tryEval(ctx, a.Right, rc)
	if rightErr == nil && rightVal.Kind == values.KindBool && rightVal.Bool {
		return values.Bool(true), nil
	}
	if leftErr != nil {
		return values.Value{}, leftErr
	}
	if rightErr != nil {
		return values.Value{}, rightErr
	}
	if leftVal.Kind != values.KindBool || rightVal.Kind != values.KindBool {
		return values.Value{}, e.evalErr(diagnostics.SubkindNone, n, "Logical operator requires bool operands")
	}
	return values.Bool(false), nil
}

func (e *Evaluator) evalAnd(ctx context.Context, n *ast.Node, rc *Context) (values.Value, error) {
	a := n.Args.(ast.BinaryArgs)
	leftVal, leftErr := e.tryEval(ctx, a.Left, rc)
	if leftErr == nil && leftVal.Kind == values.KindBool && !leftVal.Bool {
		return values.Bool(false), nil
	}
	select {
	case <-ctx.Done():
		return values.Value{}, e.evalErr(diagnostics.SubkindCancelled, n, "evaluation cancelled")
	default:
	}
	rightVal, rightErr := e.tryEval(ctx, a.Right, rc)
	if rightErr == nil && rightVal.Kind == values.KindBool && !rightVal.Bool {
		return values.Bool(false), nil
	}
	if leftErr != nil {
		return values.Value{}, leftErr
	}
	if rightErr != nil {
		return values.Value{}, rightErr
	}
	if leftVal.Kind != values.KindBool || rightVal.Kind != values.KindBool {
		return values.Value{}, e.evalErr(diagnostics.SubkindNone, n, "Logical operator requires bool operands")
	}
	return values.Bool(true), nil
}

func (e *Evaluator) evalNot(ctx context.Context, n *ast.Node, rc *Context) (values.Value, error) {
	a := n.Args.(ast.UnaryArgs)
	v, err := e.eval(ctx, a.Operand, rc)
	if err != nil {
		return values.Value{}, err
	}
	if v.Kind != values.KindBool {
		return values.Value{}, e.evalErr(diagnostics.SubkindNone, n, "unary '!' requires a bool operand")
	}
	return values.Bool(!v.Bool), nil
}

func (e *Evaluator) evalNeg(ctx context.Context, n *ast.Node, rc *Context) (values.Value, error) {
	a := n.Args.(ast.UnaryArgs)
	v, err := e.eval(ctx, a.Operand, rc)
	if err != nil {
		return values.Value{}, err
	}
	switch v.Kind {
	case values.KindInt:
		return values.Int(-v.Int), nil
	case values.KindDouble:
		return values.Double(-v.Double), nil
	case values.KindDuration:
		return values.Duration(-v.Dur), nil
	}
	return values.Value{}, e.evalErr(diagnostics.SubkindNone, n, "unary '-' requires int, double, or duration")
}

var opSymbols = map[ast.Op]string{
	ast.Lt: "<", ast.Le: "<=", ast.Gt: ">", ast.Ge: ">=", ast.In: "in",
	ast.Add: "+", ast.Sub: "-", ast.Mul: "*", ast.Div: "/", ast.Mod: "%",
}

func (e *Evaluator) evalOperator(ctx context.Context, n *ast.Node, rc *Context) (values.Value, error) {
	a := n.Args.(ast.BinaryArgs)
	left, err := e.eval(ctx, a.Left, rc)
	if err != nil {
		return values.Value{}, err
	}
	right, err := e.eval(ctx, a.Right, rc)
	if err != nil {
		return values.Value{}, err
	}
	if n.Op == ast.In {
		return e.evalIn(left, right, n)
	}
	if n.StaticHandlerFn != nil {
		return n.StaticHandlerFn([]values.Value{left, right})
	}
	sym := opSymbols[n.Op]
	overload, ok := e.reg.LookupOperator(sym, left.Type(), right.Type())
	if ok {
		return overload.Handler([]values.Value{left, right})
	}
	if n.Op == ast.Add && left.Kind == values.KindList && right.Kind == values.KindList {
		concat := make([]values.Value, 0, len(left.List)+len(right.List))
		concat = append(concat, left.List...)
		concat = append(concat, right.List...)
		return values.List(concat), nil
	}
	return values.Value{}, e.evalErr(diagnostics.SubkindNoMatchingOverload, n, "no such overload: %s %s %s", left.Type(), sym, right.Type())
}

// evalIn implements membership (spec.md §4.5 "in"): per-element equality
// against a list, key existence against a map.
func (e *Evaluator) evalIn(left, right values.Value, n *ast.Node) (values.Value, error) {
	switch right.Kind {
	case values.KindList:
		for _, elem := range right.List {
			if eq, err := values.Equal(left, elem, true); err == nil && eq {
				return values.Bool(true), nil
			}
		}
		return values.Bool(false), nil
	case values.KindMap:
		_, ok := right.Map.Get(left)
		return values.Bool(ok), nil
	}
	return values.Value{}, e.evalErr(diagnostics.SubkindNoMatchingOverload, n, "no such overload: %s in %s", left.Type(), right.Type())
}

func (e *Evaluator) evalEquality(ctx context.Context, n *ast.Node, rc *Context) (values.Value, error) {
	a := n.Args.(ast.BinaryArgs)
	left, err := e.eval(ctx, a.Left, rc)
	if err != nil {
		return values.Value{}, err
	}
	right, err := e.eval(ctx, a.Right, rc)
	if err != nil {
		return values.Value{}, err
	}
	eitherDyn := types.IsDyn(a.Left.CheckedType) || types.IsDyn(a.Right.CheckedType)
	eq, eqErr := values.Equal(left, right, eitherDyn)
	if eqErr != nil {
		return values.Value{}, e.evalErr(diagnostics.SubkindNoMatchingOverload, n, "%v", eqErr)
	}
	if n.Op == ast.Ne {
		eq = !eq
	}
	return values.Bool(eq), nil
}

func (e *Evaluator) runtimeArgTypes(args []values.Value) []*types.TypeDecl {
	out := make([]*types.TypeDecl, len(args))
	for i, a := range args {
		out[i] = a.Type()
	}
	return out
}

func (e *Evaluator) evalCall(ctx context.Context, n *ast.Node, rc *Context) (values.Value, error) {
	a := n.Args.(ast.CallArgs)
	argVals := make([]values.Value, len(a.Args))
	for i, arg := range a.Args {
		v, err := e.eval(ctx, arg, rc)
		if err != nil {
			return values.Value{}, err
		}
		argVals[i] = v
	}
	if n.StaticHandlerFn != nil {
		return n.StaticHandlerFn(argVals)
	}
	if n.Candidates == nil {
		return values.Value{}, e.evalErr(diagnostics.SubkindNoMatchingOverload, n, "found no matching overload for '%s'", a.Name)
	}
	argTypes := e.runtimeArgTypes(argVals)
	_, handler, ok := n.Candidates.FindMatch(nil, argTypes)
	if !ok {
		return values.Value{}, e.evalErr(diagnostics.SubkindNoMatchingOverload, n, "found no matching overload for '%s'", a.Name)
	}
	return handler(argVals)
}

func (e *Evaluator) evalRCall(ctx context.Context, n *ast.Node, rc *Context) (values.Value, error) {
	a := n.Args.(ast.RCallArgs)
	recv, err := e.eval(ctx, a.Receiver, rc)
	if err != nil {
		return values.Value{}, err
	}
	argVals := make([]values.Value, len(a.Args))
	for i, arg := range a.Args {
		v, err := e.eval(ctx, arg, rc)
		if err != nil {
			return values.Value{}, err
		}
		argVals[i] = v
	}
	if n.StaticHandlerFn != nil {
		return n.StaticHandlerFn(append([]values.Value{recv}, argVals...))
	}
	if n.Candidates == nil {
		return values.Value{}, e.evalErr(diagnostics.SubkindNoMatchingOverload, n, "found no matching overload for '%s'", a.Name)
	}
	argTypes := e.runtimeArgTypes(argVals)
	_, handler, ok := n.Candidates.FindMatch(recv.Type(), argTypes)
	if !ok {
		return values.Value{}, e.evalErr(diagnostics.SubkindNoMatchingOverload, n, "found no matching overload for '%s'", a.Name)
	}
	return handler(append([]values.Value{recv}, argVals...))
}

func (e *Evaluator) evalPredicateGuard(ctx context.Context, n *ast.Node, rc *Context) (values.Value, error) {
	a := n.Args.(ast.PredicateGuardArgs)
	v, err := e.eval(ctx, a.Predicate, rc)
	if err != nil {
		return values.Value{}, err
	}
	if v.Kind != values.KindBool {
		return values.Value{}, e.evalErr(diagnostics.SubkindPredicateNotBool, n, "%s: predicate must return bool, got %s", a.MacroName, v.Type())
	}
	return v, nil
}

func (e *Evaluator) evalAccuPush(ctx context.Context, n *ast.Node, rc *Context) (values.Value, error) {
	a := n.Args.(ast.AccuPushArgs)
	accu, ok := rc.Get("@accu")
	if !ok {
		return values.Value{}, e.evalErr(diagnostics.SubkindNone, n, "accuPush referenced outside a comprehension")
	}
	elem, err := e.eval(ctx, a.Element, rc)
	if err != nil {
		return values.Value{}, err
	}
	next := make([]values.Value, len(accu.List)+1)
	copy(next, accu.List)
	next[len(accu.List)] = elem
	return values.List(next), nil
}

func (e *Evaluator) evalHas(ctx context.Context, n *ast.Node, rc *Context) (values.Value, error) {
	a := n.Args.(ast.HasArgs)
	fa := a.Chain.Args.(ast.FieldArgs)
	recv, err := e.eval(ctx, fa.Receiver, rc)
	if err != nil {
		return values.Value{}, err
	}
	if recv.Kind == values.KindOptional {
		if !recv.Opt.HasValue {
			return values.Bool(false), nil
		}
		recv = recv.Opt.Val
	}
	_, ferr := e.lookupField(recv, fa.FieldName, n)
	if ferr != nil {
		if isNoSuchKey(ferr) {
			return values.Bool(false), nil
		}
		return values.Value{}, ferr
	}
	return values.Bool(true), nil
}

// Package checker implements the bottom-up type checker of spec.md
// §4.4/§4.7: a single pass over the AST against a lexical Context chain
// (registry declarations plus comprehension-bound iteration/accumulator
// variables), annotating each node's CheckedType and — where the
// operand types carried no dyn/placeholder ambiguity — its resolved
// StaticHandlerFn/Candidates. Generalized from the teacher's
// internal/semantic one-file-per-node-family layout, collapsed to CEL's
// single-pass, single-expression model.
package checker

import (
	"github.com/cwbudde/go-cel/internal/ast"
	"github.com/cwbudde/go-cel/internal/config"
	"github.com/cwbudde/go-cel/internal/diagnostics"
	"github.com/cwbudde/go-cel/internal/registry"
	"github.com/cwbudde/go-cel/internal/types"
)

// Checker holds the registry and environment options a check pass runs
// against.
type Checker struct {
	reg    *registry.Registry
	opts   config.EnvironmentOptions
	source string
}

// New constructs a Checker for one Check call.
func New(source string, reg *registry.Registry, opts config.EnvironmentOptions) *Checker {
	return &Checker{reg: reg, opts: opts, source: source}
}

// scope is a lexical overlay introduced by a comprehension: the bound
// iteration variable's name/type, and — for the scope that directly
// owns a comprehension — the accumulator's type, referenced by
// AccuValue/AccuInc/AccuPush nodes in its step/condition/result.
type scope struct {
	outer       *scope
	iterVarName string
	iterVarType *types.TypeDecl
	hasAccu     bool
	accuType    *types.TypeDecl
}

func (s *scope) lookup(name string) (*types.TypeDecl, bool) {
	for sc := s; sc != nil; sc = sc.outer {
		if sc.iterVarName == name {
			return sc.iterVarType, true
		}
	}
	return nil, false
}

func (s *scope) nearestAccu() (*types.TypeDecl, bool) {
	for sc := s; sc != nil; sc = sc.outer {
		if sc.hasAccu {
			return sc.accuType, true
		}
	}
	return nil, false
}

// Check type-checks node against reg/opts, annotating it in place, and
// returns the resulting type or a *diagnostics.Error.
func Check(node *ast.Node, source string, reg *registry.Registry, opts config.EnvironmentOptions) (*types.TypeDecl, error) {
	c := New(source, reg, opts)
	return c.check(node, nil)
}

func (c *Checker) errorf(n *ast.Node, format string, args ...interface{}) error {
	e := diagnostics.TypeCheck(format, args...)
	e.WithAst(c.source, "<input>", n.Pos)
	return e
}

func (c *Checker) check(n *ast.Node, sc *scope) (*types.TypeDecl, error) {
	t, err := c.checkDispatch(n, sc)
	if err != nil {
		return nil, err
	}
	n.CheckedType = t
	return t, nil
}

func (c *Checker) checkDispatch(n *ast.Node, sc *scope) (*types.TypeDecl, error) {
	switch n.Op {
	case ast.Value:
		return literalType(n.Args.(ast.LiteralArgs).Literal), nil
	case ast.Id:
		return c.checkId(n, sc)
	case ast.Field, ast.FieldOpt:
		return c.checkField(n, sc)
	case ast.Index, ast.IndexOpt:
		return c.checkIndex(n, sc)
	case ast.Call:
		return c.checkCall(n, sc)
	case ast.RCall:
		return c.checkRCall(n, sc)
	case ast.ListLit:
		return c.checkList(n, sc)
	case ast.MapLit:
		return c.checkMap(n, sc)
	case ast.Ternary:
		return c.checkTernary(n, sc)
	case ast.Or, ast.And:
		return c.checkLogical(n, sc)
	case ast.Not:
		return c.checkNot(n, sc)
	case ast.Neg:
		return c.checkNeg(n, sc)
	case ast.Eq, ast.Ne, ast.Lt, ast.Le, ast.Gt, ast.Ge, ast.In, ast.Add, ast.Sub, ast.Mul, ast.Div, ast.Mod:
		return c.checkBinaryOperator(n, sc)
	case ast.Comprehension:
		return c.checkComprehension(n, sc)
	case ast.AccuValue:
		t, ok := sc.nearestAccu()
		if !ok {
			return nil, c.errorf(n, "@accu referenced outside a comprehension")
		}
		return t, nil
	case ast.AccuInc:
		t, ok := sc.nearestAccu()
		if !ok || !t.Matches(types.Int()) {
			return nil, c.errorf(n, "accumulator increment requires an int accumulator")
		}
		return types.Int(), nil
	case ast.AccuPush:
		return c.checkAccuPush(n, sc)
	case ast.PredicateGuard:
		return c.checkPredicateGuard(n, sc)
	case ast.Has:
		return c.checkHas(n, sc)
	}
	return nil, c.errorf(n, "unsupported expression")
}

func literalType(lit interface{}) *types.TypeDecl {
	switch lit.(type) {
	case nil:
		return types.Null()
	case bool:
		return types.Bool()
	case int64:
		return types.Int()
	case uint64:
		return types.Uint()
	case float64:
		return types.Double()
	case string:
		return types.String()
	case []byte:
		return types.Bytes()
	}
	return types.Dyn()
}

func (c *Checker) checkId(n *ast.Node, sc *scope) (*types.TypeDecl, error) {
	name := n.Args.(ast.IdArgs).Name
	if t, ok := sc.lookup(name); ok {
		return t, nil
	}
	if v, ok := c.reg.LookupVariable(name); ok {
		return v.Type, nil
	}
	if ut, ok := c.reg.LookupType(name); ok {
		return ut.Type, nil
	}
	if c.opts.UnlistedVariablesAreDyn {
		return types.Dyn(), nil
	}
	return nil, c.errorf(n, "unknown variable: %s", name)
}

func (c *Checker) checkField(n *ast.Node, sc *scope) (*types.TypeDecl, error) {
	a := n.Args.(ast.FieldArgs)
	recvType, err := c.check(a.Receiver, sc)
	if err != nil {
		return nil, err
	}
	var result *types.TypeDecl
	if recvType != nil && recvType.Kind == types.KindMessage && recvType.Fields != nil {
		if ft, ok := recvType.Fields[a.FieldName]; ok {
			result = ft
		}
	}
	if result == nil {
		result = types.Dyn()
	}
	if n.Op == ast.FieldOpt {
		return types.Optional(result), nil
	}
	return result, nil
}

func (c *Checker) checkIndex(n *ast.Node, sc *scope) (*types.TypeDecl, error) {
	a := n.Args.(ast.BinaryArgs)
	leftType, err := c.check(a.Left, sc)
	if err != nil {
		return nil, err
	}
	if _, err := c.check(a.Right, sc); err != nil {
		return nil, err
	}
	var result *types.TypeDecl
	switch {
	case leftType.Kind == types.KindList:
		result = leftType.Elem
	case leftType.Kind == types.KindMap:
		result = leftType.Elem
	default:
		result = types.Dyn()
	}
	if n.Op == ast.IndexOpt {
		return types.Optional(result), nil
	}
	return result, nil
}

func (c *Checker) checkArgs(args []*ast.Node, sc *scope) ([]*types.TypeDecl, error) {
	out := make([]*types.TypeDecl, len(args))
	for i, a := range args {
		t, err := c.check(a, sc)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}

func (c *Checker) resolveCall(n *ast.Node, name string, receiverType *types.TypeDecl, argTypes []*types.TypeDecl, hasReceiver bool) (*types.TypeDecl, error) {
	set, ok := c.reg.LookupFunctionCandidates(name, len(argTypes), hasReceiver)
	if !ok {
		return nil, c.errorf(n, "found no matching overload for '%s'", name)
	}
	ret, handler, ok := set.FindMatch(receiverType, argTypes)
	if !ok {
		return nil, c.errorf(n, "found no matching overload for '%s'", name)
	}
	n.Candidates = set
	n.ArgTypes = argTypes
	if !anyDyn(receiverType, argTypes) {
		n.StaticHandlerFn = handler
	}
	return ret, nil
}

func anyDyn(receiver *types.TypeDecl, args []*types.TypeDecl) bool {
	if types.IsDyn(receiver) {
		return true
	}
	for _, a := range args {
		if types.IsDyn(a) {
			return true
		}
	}
	return false
}

func (c *Checker) checkCall(n *ast.Node, sc *scope) (*types.TypeDecl, error) {
	a := n.Args.(ast.CallArgs)
	argTypes, err := c.checkArgs(a.Args, sc)
	if err != nil {
		return nil, err
	}
	return c.resolveCall(n, a.Name, nil, argTypes, false)
}

func (c *Checker) checkRCall(n *ast.Node, sc *scope) (*types.TypeDecl, error) {
	a := n.Args.(ast.RCallArgs)
	recvType, err := c.check(a.Receiver, sc)
	if err != nil {
		return nil, err
	}
	argTypes, err := c.checkArgs(a.Args, sc)
	if err != nil {
		return nil, err
	}
	return c.resolveCall(n, a.Name, recvType, argTypes, true)
}

func (c *Checker) checkList(n *ast.Node, sc *scope) (*types.TypeDecl, error) {
	a := n.Args.(ast.ListArgs)
	if len(a.Elements) == 0 {
		return types.List(types.Dyn()), nil
	}
	elemType, err := c.check(a.Elements[0], sc)
	if err != nil {
		return nil, err
	}
	for _, e := range a.Elements[1:] {
		t, err := c.check(e, sc)
		if err != nil {
			return nil, err
		}
		if c.opts.HomogeneousAggregateLiterals {
			u := types.Unify(elemType, t)
			if u == nil {
				return nil, c.errorf(e, "list elements are not homogeneous: %s vs %s", elemType, t)
			}
			elemType = u
		} else {
			elemType = types.Dyn()
		}
	}
	return types.List(elemType), nil
}

func (c *Checker) checkMap(n *ast.Node, sc *scope) (*types.TypeDecl, error) {
	a := n.Args.(ast.MapArgs)
	if len(a.Entries) == 0 {
		return types.Map(types.Dyn(), types.Dyn()), nil
	}
	keyType, err := c.check(a.Entries[0].Key, sc)
	if err != nil {
		return nil, err
	}
	valType, err := c.check(a.Entries[0].Value, sc)
	if err != nil {
		return nil, err
	}
	for _, e := range a.Entries[1:] {
		kt, err := c.check(e.Key, sc)
		if err != nil {
			return nil, err
		}
		vt, err := c.check(e.Value, sc)
		if err != nil {
			return nil, err
		}
		if c.opts.HomogeneousAggregateLiterals {
			uk := types.Unify(keyType, kt)
			uv := types.Unify(valType, vt)
			if uk == nil || uv == nil {
				return nil, c.errorf(e.Key, "map entries are not homogeneous")
			}
			keyType, valType = uk, uv
		} else {
			keyType, valType = types.Dyn(), types.Dyn()
		}
	}
	return types.Map(keyType, valType), nil
}

func (c *Checker) checkTernary(n *ast.Node, sc *scope) (*types.TypeDecl, error) {
	a := n.Args.(ast.TernaryArgs)
	condType, err := c.check(a.Cond, sc)
	if err != nil {
		return nil, err
	}
	if !condType.Matches(types.Bool()) {
		return nil, c.errorf(a.Cond, "ternary condition must be bool, got %s", condType)
	}
	thenType, err := c.check(a.Then, sc)
	if err != nil {
		return nil, err
	}
	elseType, err := c.check(a.Else, sc)
	if err != nil {
		return nil, err
	}
	u := types.Unify(thenType, elseType)
	if u == nil {
		return nil, c.errorf(n, "ternary branches do not unify: %s vs %s", thenType, elseType)
	}
	return u, nil
}

func (c *Checker) checkLogical(n *ast.Node, sc *scope) (*types.TypeDecl, error) {
	a := n.Args.(ast.BinaryArgs)
	lt, err := c.check(a.Left, sc)
	if err != nil {
		return nil, err
	}
	rt, err := c.check(a.Right, sc)
	if err != nil {
		return nil, err
	}
	if !lt.Matches(types.Bool()) {
		return nil, c.errorf(a.Left, "logical operator requires bool operands, got %s", lt)
	}
	if !rt.Matches(types.Bool()) {
		return nil, c.errorf(a.Right, "logical operator requires bool operands, got %s", rt)
	}
	return types.Bool(), nil
}

func (c *Checker) checkNot(n *ast.Node, sc *scope) (*types.TypeDecl, error) {
	a := n.Args.(ast.UnaryArgs)
	t, err := c.check(a.Operand, sc)
	if err != nil {
		return nil, err
	}
	if !t.Matches(types.Bool()) {
		return nil, c.errorf(n, "unary '!' requires a bool operand, got %s", t)
	}
	return types.Bool(), nil
}

func (c *Checker) checkNeg(n *ast.Node, sc *scope) (*types.TypeDecl, error) {
	a := n.Args.(ast.UnaryArgs)
	t, err := c.check(a.Operand, sc)
	if err != nil {
		return nil, err
	}
	if t.Matches(types.Int()) || t.Matches(types.Double()) || types.IsDyn(t) {
		return t, nil
	}
	if t.Kind == types.KindMessage && t.Name == "google.protobuf.Duration" {
		return t, nil
	}
	return nil, c.errorf(n, "unary '-' requires int, double, or duration, got %s", t)
}

var opSymbols = map[ast.Op]string{
	ast.Eq: "==", ast.Ne: "!=", ast.Lt: "<", ast.Le: "<=", ast.Gt: ">", ast.Ge: ">=",
	ast.In: "in", ast.Add: "+", ast.Sub: "-", ast.Mul: "*", ast.Div: "/", ast.Mod: "%",
}

func (c *Checker) checkBinaryOperator(n *ast.Node, sc *scope) (*types.TypeDecl, error) {
	a := n.Args.(ast.BinaryArgs)
	lt, err := c.check(a.Left, sc)
	if err != nil {
		return nil, err
	}
	rt, err := c.check(a.Right, sc)
	if err != nil {
		return nil, err
	}
	sym := opSymbols[n.Op]

	if n.Op == ast.Eq || n.Op == ast.Ne {
		if !lt.MatchesBoth(rt) && !types.IsDyn(lt) && !types.IsDyn(rt) && !isNumericType(lt) && !isNumericType(rt) {
			return nil, c.errorf(n, "no such overload: %s %s %s", lt, sym, rt)
		}
		return types.Bool(), nil
	}

	// "in" is membership, not a per-type-pair overload — the registry's
	// operator bucket keys on exact canonical type names, so a generic
	// "T in list<T>"/"T in map<T,V>" rule can't be pre-registered for
	// every T. Resolved here directly instead, mirroring Eq/Ne's own
	// special case just above.
	if n.Op == ast.In {
		switch {
		case rt.Kind == types.KindList:
			if !rt.Elem.Matches(lt) && !types.IsDyn(lt) {
				return nil, c.errorf(n, "no such overload: %s in %s", lt, rt)
			}
		case rt.Kind == types.KindMap:
			if !rt.Key.Matches(lt) && !types.IsDyn(lt) {
				return nil, c.errorf(n, "no such overload: %s in %s", lt, rt)
			}
		case !types.IsDyn(rt):
			return nil, c.errorf(n, "no such overload: %s in %s", lt, rt)
		}
		return types.Bool(), nil
	}

	overload, ok := c.reg.LookupOperator(sym, lt, rt)
	if ok {
		if !anyDyn(lt, []*types.TypeDecl{rt}) {
			n.StaticHandlerFn = overload.Handler
		}
		return overload.ReturnType, nil
	}
	// list<T>+list<T> concat is likewise generic over T; fall back to it
	// before giving up, same reasoning as "in" above.
	if n.Op == ast.Add && lt.Kind == types.KindList && rt.Kind == types.KindList {
		u := types.Unify(lt.Elem, rt.Elem)
		if u == nil {
			return nil, c.errorf(n, "no such overload: %s + %s", lt, rt)
		}
		return types.List(u), nil
	}
	if types.IsDyn(lt) || types.IsDyn(rt) {
		if n.Op == ast.Lt || n.Op == ast.Le || n.Op == ast.Gt || n.Op == ast.Ge || n.Op == ast.Eq || n.Op == ast.Ne || n.Op == ast.In {
			return types.Bool(), nil
		}
		return types.Dyn(), nil
	}
	return nil, c.errorf(n, "no such overload: %s %s %s", lt, sym, rt)
}

func isNumericType(t *types.TypeDecl) bool {
	return t.Matches(types.Int()) || t.Matches(types.Uint()) || t.Matches(types.Double())
}

func (c *Checker) checkComprehension(n *ast.Node, sc *scope) (*types.TypeDecl, error) {
	a := n.Args.(ast.ComprehensionArgs)
	iterableType, err := c.check(a.Iterable, sc)
	if err != nil {
		return nil, err
	}
	var elemType *types.TypeDecl
	switch {
	case iterableType.Kind == types.KindList:
		elemType = iterableType.Elem
	case iterableType.Kind == types.KindMap:
		elemType = iterableType.Key
	case types.IsDyn(iterableType):
		elemType = types.Dyn()
	default:
		return nil, c.errorf(a.Iterable, "comprehension source must be a list or map, got %s", iterableType)
	}

	initType, err := c.check(a.Init, sc)
	if err != nil {
		return nil, err
	}

	inner := &scope{outer: sc, iterVarName: a.IterVarName, iterVarType: elemType, hasAccu: true, accuType: initType}

	if a.Condition != nil {
		condType, err := c.check(a.Condition, inner)
		if err != nil {
			return nil, err
		}
		if !condType.Matches(types.Bool()) {
			return nil, c.errorf(a.Condition, "comprehension condition must be bool, got %s", condType)
		}
	}
	if _, err := c.check(a.Step, inner); err != nil {
		return nil, err
	}
	resultType, err := c.check(a.Result, inner)
	if err != nil {
		return nil, err
	}
	return resultType, nil
}

func (c *Checker) checkAccuPush(n *ast.Node, sc *scope) (*types.TypeDecl, error) {
	a := n.Args.(ast.AccuPushArgs)
	accuType, ok := sc.nearestAccu()
	if !ok || accuType.Kind != types.KindList {
		return nil, c.errorf(n, "accuPush requires a list accumulator")
	}
	elemType, err := c.check(a.Element, sc)
	if err != nil {
		return nil, err
	}
	if !accuType.Elem.Matches(elemType) && !types.IsDyn(accuType.Elem) {
		return types.List(types.Dyn()), nil
	}
	return accuType, nil
}

func (c *Checker) checkPredicateGuard(n *ast.Node, sc *scope) (*types.TypeDecl, error) {
	a := n.Args.(ast.PredicateGuardArgs)
	t, err := c.check(a.Predicate, sc)
	if err != nil {
		return nil, err
	}
	if !t.Matches(types.Bool()) && !types.IsDyn(t) {
		return nil, c.errorf(n, "%s: predicate must return bool, got %s", a.MacroName, t)
	}
	return types.Bool(), nil
}

func (c *Checker) checkHas(n *ast.Node, sc *scope) (*types.TypeDecl, error) {
	a := n.Args.(ast.HasArgs)
	if _, err := c.check(a.Chain, sc); err != nil {
		return nil, err
	}
	return types.Bool(), nil
}

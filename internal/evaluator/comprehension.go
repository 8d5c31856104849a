package evaluator

import (
	"context"

	"github.com/cwbudde/go-cel/internal/ast"
	"github.com/cwbudde/go-cel/internal/diagnostics"
	"github.com/cwbudde/go-cel/internal/values"
)

// toIterable implements spec.md §4.6's toIterable policy: lists/sets
// yield elements, maps yield keys in insertion order, message instances
// yield their field names as string keys.
func toIterable(recv values.Value, n *ast.Node, e *Evaluator) ([]values.Value, error) {
	switch recv.Kind {
	case values.KindList:
		return recv.List, nil
	case values.KindMap:
		return recv.Map.Keys(), nil
	case values.KindMessage:
		keys := make([]values.Value, 0, len(recv.Msg.Fields))
		for k := range recv.Msg.Fields {
			keys = append(keys, values.String(k))
		}
		return keys, nil
	}
	return nil, e.evalErr(diagnostics.SubkindNone, n, "comprehension source must be a list or map, got %s", recv.Type())
}

// evalComprehension implements the uniform primitive every collection
// macro desugars into (spec.md §4.6):
//
//	items ← toIterable(iterable)
//	accu  ← eval(init)
//	for each item in items:
//	    if condition and not condition(accu): break
//	    accu ← eval(step) under ctx' with @accu=accu, iterVarName=item
//	return result(accu)
//
// plus the quantifier error-capture policy: step errors are captured,
// not fatal, except UnknownVariable/PredicateNotBoolean; a captured
// error is rethrown only if, after the loop, the condition (re-evaluated
// against the final accumulator with no bound item) still holds — or,
// for macros with no condition clause, whenever any error was captured.
func (e *Evaluator) evalComprehension(ctx context.Context, n *ast.Node, rc *Context) (values.Value, error) {
	a := n.Args.(ast.ComprehensionArgs)

	iterableVal, err := e.eval(ctx, a.Iterable, rc)
	if err != nil {
		return values.Value{}, err
	}
	items, err := toIterable(iterableVal, n, e)
	if err != nil {
		return values.Value{}, err
	}

	accu, err := e.eval(ctx, a.Init, rc)
	if err != nil {
		return values.Value{}, err
	}

	var captured error

	for _, item := range items {
		select {
		case <-ctx.Done():
			return values.Value{}, e.evalErr(diagnostics.SubkindCancelled, n, "evaluation cancelled")
		default:
		}

		iterScope := rc.child("@accu", accu).child(a.IterVarName, item)

		if a.Condition != nil {
			condVal, condErr := e.eval(ctx, a.Condition, iterScope)
			if condErr != nil {
				return values.Value{}, condErr
			}
			if condVal.Kind == values.KindBool && !condVal.Bool {
				break
			}
		}

		stepVal, stepErr := e.eval(ctx, a.Step, iterScope)
		if stepErr != nil {
			if a.ErrorsAreFatal || isAlwaysFatal(stepErr) {
				return values.Value{}, stepErr
			}
			if captured == nil {
				captured = stepErr
			}
			continue
		}
		accu = stepVal
	}

	if captured != nil {
		throw := true
		if a.Condition != nil {
			finalScope := rc.child("@accu", accu)
			condVal, condErr := e.eval(ctx, a.Condition, finalScope)
			if condErr == nil && condVal.Kind == values.KindBool && !condVal.Bool {
				throw = false
			}
		}
		if throw {
			return values.Value{}, captured
		}
	}

	resultScope := rc.child("@accu", accu)
	return e.eval(ctx, a.Result, resultScope)
}

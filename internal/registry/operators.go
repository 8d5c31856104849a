package registry

import (
	"fmt"

	"github.com/cwbudde/go-cel/internal/ast"
	"github.com/cwbudde/go-cel/internal/types"
	"github.com/cwbudde/go-cel/internal/values"
)

// opKey identifies a bucket of operator overloads sharing a symbol and
// operand types. Right is the zero value (nil TypeDecl pointer encoded
// as "") for unary operators.
type opKey struct {
	op    string
	left  string
	right string
}

// OperatorSignature is the declared shape of one operator overload:
// `left op right [: ret]` (binary) or `op operand [: ret]` (unary, Right
// nil). spec.md §4.5's catalog registers only concrete (non-placeholder)
// operand types, so unlike functions, operator resolution needs no
// placeholder-binding pass.
type OperatorSignature struct {
	Op    string
	Left  *types.TypeDecl
	Right *types.TypeDecl // nil for unary operators
}

// OperatorOverload is one registered implementation of an operator
// signature.
type OperatorOverload struct {
	Signature  OperatorSignature
	Handler    ast.StaticHandler
	ReturnType *types.TypeDecl
}

var comparisonOps = map[string]bool{
	"==": true, "!=": true, "<": true, "<=": true, ">": true, ">=": true,
}

func operatorKey(sig OperatorSignature) opKey {
	right := ""
	if sig.Right != nil {
		right = sig.Right.CanonicalName()
	}
	return opKey{op: sig.Op, left: sig.Left.CanonicalName(), right: right}
}

// RegisterOperatorOverload registers handler for sig. Comparison
// operators must return bool. Registering `a == b` also synthesizes the
// `a != b` overload (negating the handler's bool result), and — if
// leftType differs from rightType — the swapped `b == a` / `b != a`
// overloads too (spec.md §4.4).
func (r *Registry) RegisterOperatorOverload(sig OperatorSignature, handler ast.StaticHandler, returnType *types.TypeDecl) error {
	if err := r.checkUnlocked(); err != nil {
		return err
	}
	if comparisonOps[sig.Op] && returnType == nil {
		returnType = types.Bool()
	}
	if comparisonOps[sig.Op] && returnType != types.Bool() {
		return fmt.Errorf("comparison operator %q must return bool, got %s", sig.Op, returnType)
	}
	r.addOperator(sig, handler, returnType)

	if sig.Op == "==" && sig.Right != nil {
		r.addOperator(OperatorSignature{Op: "!=", Left: sig.Left, Right: sig.Right}, negateBool(handler), types.Bool())
		if sig.Left.CanonicalName() != sig.Right.CanonicalName() {
			r.addOperator(OperatorSignature{Op: "==", Left: sig.Right, Right: sig.Left}, swapArgs(handler), types.Bool())
			r.addOperator(OperatorSignature{Op: "!=", Left: sig.Right, Right: sig.Left}, negateBool(swapArgs(handler)), types.Bool())
		}
	}
	r.invalidateCaches()
	return nil
}

func negateBool(h ast.StaticHandler) ast.StaticHandler {
	return func(args []values.Value) (values.Value, error) {
		v, err := h(args)
		if err != nil {
			return values.Value{}, err
		}
		return values.Bool(!v.Bool), nil
	}
}

func swapArgs(h ast.StaticHandler) ast.StaticHandler {
	return func(args []values.Value) (values.Value, error) {
		return h([]values.Value{args[1], args[0]})
	}
}

func (r *Registry) addOperator(sig OperatorSignature, handler ast.StaticHandler, returnType *types.TypeDecl) {
	k := operatorKey(sig)
	r.operators[k] = append(r.operators[k], &OperatorOverload{Signature: sig, Handler: handler, ReturnType: returnType})
}

// LookupOperator walks the registry chain for an exact (op, left, right)
// match, parent entries first.
func (r *Registry) LookupOperator(op string, left, right *types.TypeDecl) (*OperatorOverload, bool) {
	rightName := ""
	if right != nil {
		rightName = right.CanonicalName()
	}
	leftName := ""
	if left != nil {
		leftName = left.CanonicalName()
	}
	k := opKey{op: op, left: leftName, right: rightName}
	var found *OperatorOverload
	var walk func(reg *Registry)
	walk = func(reg *Registry) {
		if reg == nil {
			return
		}
		walk(reg.outer)
		if list, ok := reg.operators[k]; ok && len(list) > 0 {
			found = list[len(list)-1]
		}
	}
	walk(r)
	if found == nil {
		return nil, false
	}
	return found, true
}

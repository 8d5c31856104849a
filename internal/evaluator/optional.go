package evaluator

import (
	"fmt"

	"github.com/cwbudde/go-cel/internal/registry"
	"github.com/cwbudde/go-cel/internal/types"
	"github.com/cwbudde/go-cel/internal/values"
)

// RegisterOptionalMethods wires the optional<T> method surface SPEC_FULL.md
// calls out as a DOMAIN addition. Kept in its own file, separate from
// internal/stdlib's core catalog, so a host that wants the bare minimum
// can skip this call. optMap/optFlatMap (taking a transform expression,
// not a plain value) aren't registered here: they need the same
// macro-expansion machinery as map()/filter() over a genuinely iterable
// receiver, and optional<T> wraps at most one value rather than a
// collection — the four methods below cover the total, non-macro subset.
func RegisterOptionalMethods(reg *registry.Registry) error {
	a := types.Param("A")
	optA := types.Optional(a)

	orValue := func(args []values.Value) (values.Value, error) {
		recv := args[0]
		if recv.Opt != nil && recv.Opt.HasValue {
			return recv.Opt.Val, nil
		}
		return args[1], nil
	}
	hasValue := func(args []values.Value) (values.Value, error) {
		recv := args[0]
		return values.Bool(recv.Opt != nil && recv.Opt.HasValue), nil
	}
	value := func(args []values.Value) (values.Value, error) {
		recv := args[0]
		if recv.Opt == nil || !recv.Opt.HasValue {
			return values.Value{}, fmt.Errorf("value() called on empty optional")
		}
		return recv.Opt.Val, nil
	}
	or := func(args []values.Value) (values.Value, error) {
		recv := args[0]
		if recv.Opt != nil && recv.Opt.HasValue {
			return recv, nil
		}
		return args[1], nil
	}

	entries := []struct {
		sig     registry.FunctionSignature
		handler func([]values.Value) (values.Value, error)
	}{
		{registry.FunctionSignature{Name: "orValue", Receiver: optA, Params: []*types.TypeDecl{a}, Return: a}, orValue},
		{registry.FunctionSignature{Name: "hasValue", Receiver: optA, Return: types.Bool()}, hasValue},
		{registry.FunctionSignature{Name: "value", Receiver: optA, Return: a}, value},
		{registry.FunctionSignature{Name: "or", Receiver: optA, Params: []*types.TypeDecl{optA}, Return: optA}, or},
	}
	for _, e := range entries {
		if err := reg.RegisterFunctionOverload(e.sig, e.handler); err != nil {
			return err
		}
	}
	return nil
}

package stdlib

import (
	"fmt"
	"sort"

	"github.com/cwbudde/go-cel/internal/registry"
	"github.com/cwbudde/go-cel/internal/types"
	"github.com/cwbudde/go-cel/internal/values"
)

// registerListMethods wires join() from spec.md §4.5's "Lists" family plus
// SPEC_FULL.md's DOMAIN additions: slice, flatten, sort. sortBy is not
// registered.
func registerListMethods(reg *registry.Registry) error {
	a := types.Param("A")
	listA := types.List(a)

	join0 := func(args []values.Value) (values.Value, error) {
		return joinStrings(args[0].List, "")
	}
	join1 := func(args []values.Value) (values.Value, error) {
		return joinStrings(args[0].List, args[1].Str)
	}
	slice := func(args []values.Value) (values.Value, error) {
		elems := args[0].List
		start, end := int(args[1].Int), int(args[2].Int)
		if start < 0 || end > len(elems) || start > end {
			return values.Value{}, fmt.Errorf("slice: range [%d, %d) out of bounds for length %d", start, end, len(elems))
		}
		out := make([]values.Value, end-start)
		copy(out, elems[start:end])
		return values.List(out), nil
	}
	flatten := func(args []values.Value) (values.Value, error) {
		var out []values.Value
		for _, e := range args[0].List {
			if e.Kind == values.KindList {
				out = append(out, e.List...)
			} else {
				out = append(out, e)
			}
		}
		return values.List(out), nil
	}
	listSort := func(args []values.Value) (values.Value, error) {
		elems := append([]values.Value{}, args[0].List...)
		var sortErr error
		sort.SliceStable(elems, func(i, j int) bool {
			if sortErr != nil {
				return false
			}
			less, err := values.Less(elems[i], elems[j])
			if err != nil {
				sortErr = err
			}
			return less
		})
		if sortErr != nil {
			return values.Value{}, sortErr
		}
		return values.List(elems), nil
	}

	if err := reg.RegisterFunctionOverload(registry.FunctionSignature{Name: "join", Receiver: types.List(types.String()), Return: types.String()}, join0); err != nil {
		return err
	}
	if err := reg.RegisterFunctionOverload(registry.FunctionSignature{Name: "join", Receiver: types.List(types.String()), Params: []*types.TypeDecl{types.String()}, Return: types.String()}, join1); err != nil {
		return err
	}
	if err := reg.RegisterFunctionOverload(registry.FunctionSignature{Name: "slice", Receiver: listA, Params: []*types.TypeDecl{types.Int(), types.Int()}, Return: listA}, slice); err != nil {
		return err
	}
	if err := reg.RegisterFunctionOverload(registry.FunctionSignature{Name: "flatten", Receiver: types.List(listA), Return: types.List(types.Dyn())}, flatten); err != nil {
		return err
	}
	return reg.RegisterFunctionOverload(registry.FunctionSignature{Name: "sort", Receiver: listA, Return: listA}, listSort)
}

func joinStrings(elems []values.Value, sep string) (values.Value, error) {
	var b []byte
	for i, e := range elems {
		if e.Kind != values.KindString {
			return values.Value{}, fmt.Errorf("join: element %d is %s, not string", i, e.Type())
		}
		if i > 0 {
			b = append(b, sep...)
		}
		b = append(b, e.Str...)
	}
	return values.String(string(b)), nil
}

package stdlib

import (
	"github.com/cwbudde/go-cel/internal/registry"
	"github.com/cwbudde/go-cel/internal/types"
	"github.com/cwbudde/go-cel/internal/values"
)

// registerMapMethods wires SPEC_FULL.md's DOMAIN addition: map.keys() and
// map.values(), natural complements to the comprehension engine's
// key-only iteration over maps.
func registerMapMethods(reg *registry.Registry) error {
	k := types.Param("A")
	v := types.Param("B")
	mapKV := types.Map(k, v)

	keys := func(args []values.Value) (values.Value, error) {
		m := args[0].Map
		out := make([]values.Value, m.Len())
		copy(out, m.Keys())
		return values.List(out), nil
	}
	vals := func(args []values.Value) (values.Value, error) {
		m := args[0].Map
		keys := m.Keys()
		out := make([]values.Value, len(keys))
		for i, key := range keys {
			out[i], _ = m.Get(key)
		}
		return values.List(out), nil
	}

	if err := reg.RegisterFunctionOverload(registry.FunctionSignature{Name: "keys", Receiver: mapKV, Return: types.List(k)}, keys); err != nil {
		return err
	}
	return reg.RegisterFunctionOverload(registry.FunctionSignature{Name: "values", Receiver: mapKV, Return: types.List(v)}, vals)
}

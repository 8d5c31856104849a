package stdlib

import (
	"github.com/cwbudde/go-cel/internal/hostlib"
	"github.com/cwbudde/go-cel/internal/registry"
	"github.com/cwbudde/go-cel/internal/types"
	"github.com/cwbudde/go-cel/internal/values"
)

// registerSize wires size() both as a free function and as a receiver
// method, for string/bytes/list/map (spec.md §4.5). list/map use a param
// placeholder since the element/key/value types are irrelevant to the
// count; string/bytes are concrete since they have no element type to
// abstract over.
func registerSize(reg *registry.Registry) error {
	strSize := func(args []values.Value) (values.Value, error) {
		return values.Int(int64(hostlib.RuneLen(args[0].Str))), nil
	}
	bytesSize := func(args []values.Value) (values.Value, error) {
		return values.Int(int64(len(args[0].Bytes))), nil
	}
	listSize := func(args []values.Value) (values.Value, error) {
		return values.Int(int64(len(args[0].List))), nil
	}
	mapSize := func(args []values.Value) (values.Value, error) {
		return values.Int(int64(args[0].Map.Len())), nil
	}

	a := types.Param("A")
	b := types.Param("B")
	listA := types.List(a)
	mapAB := types.Map(a, b)

	entries := []struct {
		param   *types.TypeDecl
		handler func([]values.Value) (values.Value, error)
	}{
		{types.String(), strSize},
		{types.Bytes(), bytesSize},
		{listA, listSize},
		{mapAB, mapSize},
	}

	for _, e := range entries {
		// Free function form: size(x).
		sig := registry.FunctionSignature{Name: "size", Params: []*types.TypeDecl{e.param}, Return: types.Int()}
		if err := reg.RegisterFunctionOverload(sig, e.handler); err != nil {
			return err
		}
		// Receiver-method form: x.size().
		methodSig := registry.FunctionSignature{Name: "size", Receiver: e.param, Return: types.Int()}
		methodHandler := e.handler // receiver is args[0] in both forms by evaluator convention
		if err := reg.RegisterFunctionOverload(methodSig, methodHandler); err != nil {
			return err
		}
	}
	return nil
}

package stdlib

import (
	"fmt"

	"github.com/cwbudde/go-cel/internal/hostlib"
	"github.com/cwbudde/go-cel/internal/registry"
	"github.com/cwbudde/go-cel/internal/types"
	"github.com/cwbudde/go-cel/internal/values"
)

// registerBytesMethods wires the "Bytes" family of spec.md §4.5: json,
// hex, base64, string, at.
func registerBytesMethods(reg *registry.Registry) error {
	bytes := types.Bytes()

	jsonMethod := func(args []values.Value) (values.Value, error) {
		s, err := hostlib.DecodeText(args[0].Bytes)
		if err != nil {
			return values.Value{}, err
		}
		return hostlib.ParseJSON(s)
	}
	hexMethod := func(args []values.Value) (values.Value, error) {
		return values.String(hostlib.EncodeHex(args[0].Bytes)), nil
	}
	base64Method := func(args []values.Value) (values.Value, error) {
		return values.String(hostlib.EncodeBase64(args[0].Bytes)), nil
	}
	stringMethod := func(args []values.Value) (values.Value, error) {
		s, err := hostlib.DecodeText(args[0].Bytes)
		if err != nil {
			return values.Value{}, err
		}
		return values.String(s), nil
	}
	atMethod := func(args []values.Value) (values.Value, error) {
		b := args[0].Bytes
		i := int(args[1].Int)
		if i < 0 || i >= len(b) {
			return values.Value{}, fmt.Errorf("at: index %d out of range [0, %d)", i, len(b))
		}
		return values.Int(int64(b[i])), nil
	}

	entries := []struct {
		name    string
		params  []*types.TypeDecl
		ret     *types.TypeDecl
		handler func([]values.Value) (values.Value, error)
	}{
		{"json", nil, types.Map(types.Dyn(), types.Dyn()), jsonMethod},
		{"hex", nil, types.String(), hexMethod},
		{"base64", nil, types.String(), base64Method},
		{"string", nil, types.String(), stringMethod},
		{"at", []*types.TypeDecl{types.Int()}, types.Int(), atMethod},
	}
	for _, e := range entries {
		sig := registry.FunctionSignature{Name: e.name, Receiver: bytes, Params: e.params, Return: e.ret}
		if err := reg.RegisterFunctionOverload(sig, e.handler); err != nil {
			return err
		}
	}
	return nil
}

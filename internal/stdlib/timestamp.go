package stdlib

import (
	"github.com/cwbudde/go-cel/internal/hostlib"
	"github.com/cwbudde/go-cel/internal/registry"
	"github.com/cwbudde/go-cel/internal/types"
	"github.com/cwbudde/go-cel/internal/values"
)

// registerTimestampMethods wires the "Timestamps" family of spec.md §4.5:
// getDate/getDayOfMonth/getDayOfWeek/getDayOfYear/getFullYear/getHours/
// getMilliseconds/getMinutes/getMonth/getSeconds, each with a bare (UTC)
// form and an IANA-timezone-string overload.
func registerTimestampMethods(reg *registry.Registry) error {
	fields := []string{
		"getDate", "getDayOfMonth", "getDayOfWeek", "getDayOfYear", "getFullYear",
		"getHours", "getMilliseconds", "getMinutes", "getMonth", "getSeconds",
	}
	for _, field := range fields {
		field := field
		utc := func(args []values.Value) (values.Value, error) {
			v, err := hostlib.TimestampGetter(args[0].Time, nil, field)
			return values.Int(v), err
		}
		withZone := func(args []values.Value) (values.Value, error) {
			zone, err := hostlib.LoadZone(args[1].Str)
			if err != nil {
				return values.Value{}, err
			}
			v, err := hostlib.TimestampGetter(args[0].Time, zone, field)
			return values.Int(v), err
		}
		sig := registry.FunctionSignature{Name: field, Receiver: timestampT, Return: types.Int()}
		if err := reg.RegisterFunctionOverload(sig, utc); err != nil {
			return err
		}
		sigZone := registry.FunctionSignature{Name: field, Receiver: timestampT, Params: []*types.TypeDecl{types.String()}, Return: types.Int()}
		if err := reg.RegisterFunctionOverload(sigZone, withZone); err != nil {
			return err
		}
	}
	return nil
}

package stdlib

import (
	"github.com/cwbudde/go-cel/internal/hostlib"
	"github.com/cwbudde/go-cel/internal/registry"
	"github.com/cwbudde/go-cel/internal/types"
	"github.com/cwbudde/go-cel/internal/values"
)

// registerDurationMethods wires the "Durations" family of spec.md §4.5:
// getHours, getMinutes, getSeconds, getMilliseconds (total-count-per-unit
// semantics, no timezone).
func registerDurationMethods(reg *registry.Registry) error {
	fields := []string{"getHours", "getMinutes", "getSeconds", "getMilliseconds"}
	for _, field := range fields {
		field := field
		getter := func(args []values.Value) (values.Value, error) {
			v, err := hostlib.DurationGetter(args[0].Dur, field)
			return values.Int(v), err
		}
		sig := registry.FunctionSignature{Name: field, Receiver: durationT, Return: types.Int()}
		if err := reg.RegisterFunctionOverload(sig, getter); err != nil {
			return err
		}
	}
	return nil
}

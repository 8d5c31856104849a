package stdlib

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cwbudde/go-cel/internal/hostlib"
	"github.com/cwbudde/go-cel/internal/registry"
	"github.com/cwbudde/go-cel/internal/types"
	"github.com/cwbudde/go-cel/internal/values"
)

// registerConversions wires dyn(T), type(T), and the scalar conversion
// functions of spec.md §4.5. dyn/type are registered once each via a
// param placeholder (types.Param("A")) rather than once per concrete T,
// since FunctionCandidateSet.FindMatch's placeholder-binding pass (unlike
// operator resolution) supports this directly.
func registerConversions(reg *registry.Registry) error {
	a := types.Param("A")
	identity := func(args []values.Value) (values.Value, error) { return args[0], nil }
	if err := reg.RegisterFunctionOverload(registry.FunctionSignature{Name: "dyn", Params: []*types.TypeDecl{a}, Return: types.Dyn(a)}, identity); err != nil {
		return err
	}
	typeOf := func(args []values.Value) (values.Value, error) { return values.TypeHandle(args[0].Type()), nil }
	if err := reg.RegisterFunctionOverload(registry.FunctionSignature{Name: "type", Params: []*types.TypeDecl{a}, Return: types.Type()}, typeOf); err != nil {
		return err
	}

	for _, f := range []func(*registry.Registry) error{
		registerBoolConversion,
		registerIntConversion,
		registerUintConversion,
		registerDoubleConversion,
		registerStringConversion,
		registerBytesConversion,
		registerTimestampConversion,
		registerDurationConversion,
	} {
		if err := f(reg); err != nil {
			return err
		}
	}
	return nil
}

func reg1(reg *registry.Registry, name string, param *types.TypeDecl, ret *types.TypeDecl, handler func([]values.Value) (values.Value, error)) error {
	return reg.RegisterFunctionOverload(registry.FunctionSignature{Name: name, Params: []*types.TypeDecl{param}, Return: ret}, handler)
}

func registerBoolConversion(reg *registry.Registry) error {
	identity := func(args []values.Value) (values.Value, error) { return args[0], nil }
	fromString := func(args []values.Value) (values.Value, error) {
		switch args[0].Str {
		case "1", "t", "true", "TRUE", "True":
			return values.Bool(true), nil
		case "0", "f", "false", "FALSE", "False":
			return values.Bool(false), nil
		}
		return values.Value{}, fmt.Errorf("invalid bool literal: %q", args[0].Str)
	}
	if err := reg1(reg, "bool", types.Bool(), types.Bool(), identity); err != nil {
		return err
	}
	return reg1(reg, "bool", types.String(), types.Bool(), fromString)
}

func registerIntConversion(reg *registry.Registry) error {
	identity := func(args []values.Value) (values.Value, error) { return args[0], nil }
	fromUint := func(args []values.Value) (values.Value, error) {
		if args[0].Uint > math.MaxInt64 {
			return values.Value{}, fmt.Errorf("integer overflow converting uint %d to int", args[0].Uint)
		}
		return values.Int(int64(args[0].Uint)), nil
	}
	fromDouble := func(args []values.Value) (values.Value, error) {
		d := args[0].Double
		if math.IsNaN(d) || math.IsInf(d, 0) {
			return values.Value{}, fmt.Errorf("cannot convert non-finite double %v to int", d)
		}
		truncated := math.Trunc(d)
		if truncated < math.MinInt64 || truncated > math.MaxInt64 {
			return values.Value{}, fmt.Errorf("integer overflow converting double %v to int", d)
		}
		return values.Int(int64(truncated)), nil
	}
	fromString := func(args []values.Value) (values.Value, error) {
		s := args[0].Str
		if len(s) > 20 || s == "" || strings.TrimSpace(s) != s || strings.ContainsAny(s, "xX") {
			return values.Value{}, fmt.Errorf("invalid int literal: %q", s)
		}
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return values.Value{}, fmt.Errorf("invalid int literal: %q", s)
		}
		return values.Int(i), nil
	}
	entries := []struct {
		param   *types.TypeDecl
		handler func([]values.Value) (values.Value, error)
	}{
		{types.Int(), identity},
		{types.Uint(), fromUint},
		{types.Double(), fromDouble},
		{types.String(), fromString},
	}
	for _, e := range entries {
		if err := reg1(reg, "int", e.param, types.Int(), e.handler); err != nil {
			return err
		}
	}
	return nil
}

func registerUintConversion(reg *registry.Registry) error {
	identity := func(args []values.Value) (values.Value, error) { return args[0], nil }
	fromInt := func(args []values.Value) (values.Value, error) {
		if args[0].Int < 0 {
			return values.Value{}, fmt.Errorf("cannot convert negative int %d to uint", args[0].Int)
		}
		return values.Uint(uint64(args[0].Int)), nil
	}
	fromDouble := func(args []values.Value) (values.Value, error) {
		d := args[0].Double
		if math.IsNaN(d) || math.IsInf(d, 0) {
			return values.Value{}, fmt.Errorf("cannot convert non-finite double %v to uint", d)
		}
		truncated := math.Trunc(d)
		if truncated < 0 || truncated > math.MaxUint64 {
			return values.Value{}, fmt.Errorf("integer overflow converting double %v to uint", d)
		}
		return values.Uint(uint64(truncated)), nil
	}
	fromString := func(args []values.Value) (values.Value, error) {
		s := args[0].Str
		if len(s) > 20 || s == "" || strings.TrimSpace(s) != s || strings.ContainsAny(s, "xX-") {
			return values.Value{}, fmt.Errorf("invalid uint literal: %q", s)
		}
		u, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return values.Value{}, fmt.Errorf("invalid uint literal: %q", s)
		}
		return values.Uint(u), nil
	}
	entries := []struct {
		param   *types.TypeDecl
		handler func([]values.Value) (values.Value, error)
	}{
		{types.Uint(), identity},
		{types.Int(), fromInt},
		{types.Double(), fromDouble},
		{types.String(), fromString},
	}
	for _, e := range entries {
		if err := reg1(reg, "uint", e.param, types.Uint(), e.handler); err != nil {
			return err
		}
	}
	return nil
}

var namedDoubleTokens = map[string]float64{
	"inf": math.Inf(1), "+inf": math.Inf(1), "infinity": math.Inf(1), "+infinity": math.Inf(1),
	"-inf": math.Inf(-1), "-infinity": math.Inf(-1),
	"nan": math.NaN(),
}

func registerDoubleConversion(reg *registry.Registry) error {
	identity := func(args []values.Value) (values.Value, error) { return args[0], nil }
	fromInt := func(args []values.Value) (values.Value, error) { return values.Double(float64(args[0].Int)), nil }
	fromString := func(args []values.Value) (values.Value, error) {
		if f, ok := namedDoubleTokens[strings.ToLower(args[0].Str)]; ok {
			return values.Double(f), nil
		}
		f, err := strconv.ParseFloat(args[0].Str, 64)
		if err != nil {
			return values.Value{}, fmt.Errorf("invalid double literal: %q", args[0].Str)
		}
		return values.Double(f), nil
	}
	entries := []struct {
		param   *types.TypeDecl
		handler func([]values.Value) (values.Value, error)
	}{
		{types.Double(), identity},
		{types.Int(), fromInt},
		{types.String(), fromString},
	}
	for _, e := range entries {
		if err := reg1(reg, "double", e.param, types.Double(), e.handler); err != nil {
			return err
		}
	}
	return nil
}

func registerStringConversion(reg *registry.Registry) error {
	identity := func(args []values.Value) (values.Value, error) { return args[0], nil }
	fromBool := func(args []values.Value) (values.Value, error) { return values.String(strconv.FormatBool(args[0].Bool)), nil }
	fromInt := func(args []values.Value) (values.Value, error) { return values.String(strconv.FormatInt(args[0].Int, 10)), nil }
	fromUint := func(args []values.Value) (values.Value, error) { return values.String(strconv.FormatUint(args[0].Uint, 10)), nil }
	fromBytes := func(args []values.Value) (values.Value, error) { return values.String(string(args[0].Bytes)), nil }
	fromDouble := func(args []values.Value) (values.Value, error) {
		d := args[0].Double
		switch {
		case math.IsInf(d, 1):
			return values.String("+Inf"), nil
		case math.IsInf(d, -1):
			return values.String("-Inf"), nil
		default:
			return values.String(strconv.FormatFloat(d, 'g', -1, 64)), nil
		}
	}
	entries := []struct {
		param   *types.TypeDecl
		handler func([]values.Value) (values.Value, error)
	}{
		{types.String(), identity},
		{types.Bool(), fromBool},
		{types.Int(), fromInt},
		{types.Uint(), fromUint},
		{types.Bytes(), fromBytes},
		{types.Double(), fromDouble},
	}
	for _, e := range entries {
		if err := reg1(reg, "string", e.param, types.String(), e.handler); err != nil {
			return err
		}
	}
	return nil
}

func registerBytesConversion(reg *registry.Registry) error {
	identity := func(args []values.Value) (values.Value, error) { return args[0], nil }
	fromString := func(args []values.Value) (values.Value, error) { return values.Bytes([]byte(args[0].Str)), nil }
	if err := reg1(reg, "bytes", types.Bytes(), types.Bytes(), identity); err != nil {
		return err
	}
	return reg1(reg, "bytes", types.String(), types.Bytes(), fromString)
}

func registerTimestampConversion(reg *registry.Registry) error {
	fromString := func(args []values.Value) (values.Value, error) {
		s := args[0].Str
		if len(s) < 20 || len(s) > 30 {
			return values.Value{}, fmt.Errorf("invalid timestamp literal: %q", s)
		}
		t, err := hostlib.ParseTimestamp(s)
		if err != nil {
			return values.Value{}, err
		}
		return values.Timestamp(t), nil
	}
	return reg1(reg, "timestamp", types.String(), timestampT, fromString)
}

func registerDurationConversion(reg *registry.Registry) error {
	fromString := func(args []values.Value) (values.Value, error) {
		d, err := hostlib.ParseDuration(args[0].Str)
		if err != nil {
			return values.Value{}, err
		}
		return values.Duration(d), nil
	}
	return reg1(reg, "duration", types.String(), durationT, fromString)
}

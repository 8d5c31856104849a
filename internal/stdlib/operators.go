package stdlib

import (
	"fmt"

	"github.com/cwbudde/go-cel/internal/hostlib"
	"github.com/cwbudde/go-cel/internal/registry"
	"github.com/cwbudde/go-cel/internal/types"
	"github.com/cwbudde/go-cel/internal/values"
)

var timestampT = types.Message("google.protobuf.Timestamp", nil)
var durationT = types.Message("google.protobuf.Duration", nil)

func registerOperators(reg *registry.Registry) error {
	regs := []func(*registry.Registry) error{
		registerArithmetic,
		registerComparisons,
		registerConcat,
		registerTimeArithmetic,
	}
	for _, f := range regs {
		if err := f(reg); err != nil {
			return err
		}
	}
	return nil
}

// registerArithmetic wires the overflow-checked int/uint/double +,-,*,/,%
// overloads (spec.md §4.5's operator table), delegating the
// overflow-detection itself to internal/hostlib.
func registerArithmetic(reg *registry.Registry) error {
	add := func(args []values.Value) (values.Value, error) {
		r, err := hostlib.AddInt64(args[0].Int, args[1].Int)
		return values.Int(r), err
	}
	sub := func(args []values.Value) (values.Value, error) {
		r, err := hostlib.SubInt64(args[0].Int, args[1].Int)
		return values.Int(r), err
	}
	mul := func(args []values.Value) (values.Value, error) {
		r, err := hostlib.MulInt64(args[0].Int, args[1].Int)
		return values.Int(r), err
	}
	div := func(args []values.Value) (values.Value, error) {
		if args[1].Int == 0 {
			return values.Value{}, fmt.Errorf("divide by zero")
		}
		return values.Int(args[0].Int / args[1].Int), nil
	}
	mod := func(args []values.Value) (values.Value, error) {
		if args[1].Int == 0 {
			return values.Value{}, fmt.Errorf("modulus by zero")
		}
		return values.Int(args[0].Int % args[1].Int), nil
	}

	uadd := func(args []values.Value) (values.Value, error) {
		r, err := hostlib.AddUint64(args[0].Uint, args[1].Uint)
		return values.Uint(r), err
	}
	usub := func(args []values.Value) (values.Value, error) {
		r, err := hostlib.SubUint64(args[0].Uint, args[1].Uint)
		return values.Uint(r), err
	}
	umul := func(args []values.Value) (values.Value, error) {
		r, err := hostlib.MulUint64(args[0].Uint, args[1].Uint)
		return values.Uint(r), err
	}
	udiv := func(args []values.Value) (values.Value, error) {
		if args[1].Uint == 0 {
			return values.Value{}, fmt.Errorf("divide by zero")
		}
		return values.Uint(args[0].Uint / args[1].Uint), nil
	}
	umod := func(args []values.Value) (values.Value, error) {
		if args[1].Uint == 0 {
			return values.Value{}, fmt.Errorf("modulus by zero")
		}
		return values.Uint(args[0].Uint % args[1].Uint), nil
	}

	dadd := func(args []values.Value) (values.Value, error) { return values.Double(args[0].Double + args[1].Double), nil }
	dsub := func(args []values.Value) (values.Value, error) { return values.Double(args[0].Double - args[1].Double), nil }
	dmul := func(args []values.Value) (values.Value, error) { return values.Double(args[0].Double * args[1].Double), nil }
	ddiv := func(args []values.Value) (values.Value, error) {
		if args[1].Double == 0 {
			return values.Value{}, fmt.Errorf("divide by zero")
		}
		return values.Double(args[0].Double / args[1].Double), nil
	}

	entries := []struct {
		op      string
		operand *types.TypeDecl
		handler func([]values.Value) (values.Value, error)
		ret     *types.TypeDecl
	}{
		{"+", types.Int(), add, types.Int()},
		{"-", types.Int(), sub, types.Int()},
		{"*", types.Int(), mul, types.Int()},
		{"/", types.Int(), div, types.Int()},
		{"%", types.Int(), mod, types.Int()},

		{"+", types.Uint(), uadd, types.Uint()},
		{"-", types.Uint(), usub, types.Uint()},
		{"*", types.Uint(), umul, types.Uint()},
		{"/", types.Uint(), udiv, types.Uint()},
		{"%", types.Uint(), umod, types.Uint()},

		{"+", types.Double(), dadd, types.Double()},
		{"-", types.Double(), dsub, types.Double()},
		{"*", types.Double(), dmul, types.Double()},
		{"/", types.Double(), ddiv, types.Double()},
	}
	for _, e := range entries {
		sig := registry.OperatorSignature{Op: e.op, Left: e.operand, Right: e.operand}
		if err := reg.RegisterOperatorOverload(sig, e.handler, e.ret); err != nil {
			return err
		}
	}
	return nil
}

// registerConcat wires string/bytes `+` concatenation. list<T>+list<T> is
// handled directly by the checker/evaluator (see internal/checker,
// internal/evaluator DESIGN notes) since it is generic over T.
func registerConcat(reg *registry.Registry) error {
	strAdd := func(args []values.Value) (values.Value, error) { return values.String(args[0].Str + args[1].Str), nil }
	bytesAdd := func(args []values.Value) (values.Value, error) {
		out := make([]byte, 0, len(args[0].Bytes)+len(args[1].Bytes))
		out = append(out, args[0].Bytes...)
		out = append(out, args[1].Bytes...)
		return values.Bytes(out), nil
	}
	if err := reg.RegisterOperatorOverload(registry.OperatorSignature{Op: "+", Left: types.String(), Right: types.String()}, strAdd, types.String()); err != nil {
		return err
	}
	return reg.RegisterOperatorOverload(registry.OperatorSignature{Op: "+", Left: types.Bytes(), Right: types.Bytes()}, bytesAdd, types.Bytes())
}

// registerTimeArithmetic wires duration+duration, timestamp+duration,
// duration+timestamp, timestamp-duration, duration-duration, and
// timestamp-timestamp→duration.
func registerTimeArithmetic(reg *registry.Registry) error {
	durAdd := func(args []values.Value) (values.Value, error) { return values.Duration(args[0].Dur + args[1].Dur), nil }
	durSub := func(args []values.Value) (values.Value, error) { return values.Duration(args[0].Dur - args[1].Dur), nil }
	tsAddDur := func(args []values.Value) (values.Value, error) { return values.Timestamp(args[0].Time.Add(args[1].Dur)), nil }
	durAddTs := func(args []values.Value) (values.Value, error) { return values.Timestamp(args[1].Time.Add(args[0].Dur)), nil }
	tsSubDur := func(args []values.Value) (values.Value, error) { return values.Timestamp(args[0].Time.Add(-args[1].Dur)), nil }
	tsSubTs := func(args []values.Value) (values.Value, error) { return values.Duration(args[0].Time.Sub(args[1].Time)), nil }

	entries := []struct {
		op          string
		left, right *types.TypeDecl
		handler     func([]values.Value) (values.Value, error)
		ret         *types.TypeDecl
	}{
		{"+", durationT, durationT, durAdd, durationT},
		{"-", durationT, durationT, durSub, durationT},
		{"+", timestampT, durationT, tsAddDur, timestampT},
		{"+", durationT, timestampT, durAddTs, timestampT},
		{"-", timestampT, durationT, tsSubDur, timestampT},
		{"-", timestampT, timestampT, tsSubTs, durationT},
	}
	for _, e := range entries {
		sig := registry.OperatorSignature{Op: e.op, Left: e.left, Right: e.right}
		if err := reg.RegisterOperatorOverload(sig, e.handler, e.ret); err != nil {
			return err
		}
	}
	return nil
}

// registerComparisons wires <,<=,>,>= within int/uint/double/string/
// timestamp/duration and across int/uint/double, all built on
// values.Less's single generic algorithm (spec.md §4.5).
func registerComparisons(reg *registry.Registry) error {
	lt := func(args []values.Value) (values.Value, error) {
		r, err := values.Less(args[0], args[1])
		return values.Bool(r), err
	}
	le := func(args []values.Value) (values.Value, error) {
		r, err := values.Less(args[1], args[0])
		return values.Bool(!r), err
	}
	gt := func(args []values.Value) (values.Value, error) {
		r, err := values.Less(args[1], args[0])
		return values.Bool(r), err
	}
	ge := func(args []values.Value) (values.Value, error) {
		r, err := values.Less(args[0], args[1])
		return values.Bool(!r), err
	}

	numeric := []*types.TypeDecl{types.Int(), types.Uint(), types.Double()}
	sameType := []*types.TypeDecl{types.String(), timestampT, durationT}

	register := func(left, right *types.TypeDecl) error {
		for _, e := range []struct {
			op      string
			handler func([]values.Value) (values.Value, error)
		}{{"<", lt}, {"<=", le}, {">", gt}, {">=", ge}} {
			sig := registry.OperatorSignature{Op: e.op, Left: left, Right: right}
			if err := reg.RegisterOperatorOverload(sig, e.handler, types.Bool()); err != nil {
				return err
			}
		}
		return nil
	}

	for _, l := range numeric {
		for _, r := range numeric {
			if err := register(l, r); err != nil {
				return err
			}
		}
	}
	for _, t := range sameType {
		if err := register(t, t); err != nil {
			return err
		}
	}
	return nil
}

// RegisterCollatedStringComparisons replaces the default byte-wise
// string `<,<=,>,>=` overloads with locale-aware ones backed by c. A
// host calls this (via pkg/cel.WithCollator) after stdlib.Register has
// seeded the default comparisons — re-registering the same signature
// appends a later overload to the same bucket, and Registry.LookupOperator
// always prefers the most recently registered entry at a given level, so
// this cleanly overrides rather than conflicts with the default.
func RegisterCollatedStringComparisons(reg *registry.Registry, c *hostlib.Collator) error {
	lt := func(args []values.Value) (values.Value, error) { return values.Bool(c.Compare(args[0].Str, args[1].Str) < 0), nil }
	le := func(args []values.Value) (values.Value, error) { return values.Bool(c.Compare(args[0].Str, args[1].Str) <= 0), nil }
	gt := func(args []values.Value) (values.Value, error) { return values.Bool(c.Compare(args[0].Str, args[1].Str) > 0), nil }
	ge := func(args []values.Value) (values.Value, error) { return values.Bool(c.Compare(args[0].Str, args[1].Str) >= 0), nil }

	for _, e := range []struct {
		op      string
		handler func([]values.Value) (values.Value, error)
	}{{"<", lt}, {"<=", le}, {">", gt}, {">=", ge}} {
		sig := registry.OperatorSignature{Op: e.op, Left: types.String(), Right: types.String()}
		if err := reg.RegisterOperatorOverload(sig, e.handler, types.Bool()); err != nil {
			return err
		}
	}
	return nil
}

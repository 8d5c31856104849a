// Package values implements the runtime value domain: the tagged-union
// Value type every evaluated expression produces, plus the equality
// algorithm of spec.md §4.7.
package values

import (
	"fmt"
	"time"

	"github.com/cwbudde/go-cel/internal/types"
)

// Kind identifies which field of a Value is populated.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindUint
	KindDouble
	KindString
	KindBytes
	KindList
	KindMap
	KindTimestamp
	KindDuration
	KindType
	KindOptional
	KindMessage
)

// Value is a closed tagged union over the runtime value domain, mirroring
// ast.Node's own tagged-union shape rather than an interface hierarchy:
// exactly one of the typed fields is meaningful, selected by Kind.
type Value struct {
	Kind Kind

	Bool    bool
	Int     int64
	Uint    uint64
	Double  float64
	Str     string
	Bytes   []byte
	List    []Value
	IsSet   bool // true if this list was constructed as a set (multiset equality, see Equal)
	Map     *Map
	Time    time.Time
	Dur     time.Duration
	TypeVal *types.TypeDecl
	Opt     *Optional
	Msg     *Message
}

// Message is a user-registered type instance: a named bag of field
// values, checked against the registry's declared field types on
// construction and access.
type Message struct {
	TypeName string
	Fields   map[string]Value
}

// Optional holds either a present value (Some) or nothing (None).
type Optional struct {
	HasValue bool
	Val      Value
}

func None() Value      { return Value{Kind: KindOptional, Opt: &Optional{}} }
func Some(v Value) Value {
	return Value{Kind: KindOptional, Opt: &Optional{HasValue: true, Val: v}}
}

func Null() Value           { return Value{Kind: KindNull} }
func Bool(b bool) Value     { return Value{Kind: KindBool, Bool: b} }
func Int(i int64) Value     { return Value{Kind: KindInt, Int: i} }
func Uint(u uint64) Value   { return Value{Kind: KindUint, Uint: u} }
func Double(d float64) Value { return Value{Kind: KindDouble, Double: d} }
func String(s string) Value { return Value{Kind: KindString, Str: s} }
func Bytes(b []byte) Value  { return Value{Kind: KindBytes, Bytes: b} }
func List(elems []Value) Value {
	return Value{Kind: KindList, List: elems}
}
func Set(elems []Value) Value {
	return Value{Kind: KindList, List: elems, IsSet: true}
}
func Timestamp(t time.Time) Value   { return Value{Kind: KindTimestamp, Time: t} }
func Duration(d time.Duration) Value { return Value{Kind: KindDuration, Dur: d} }
func TypeHandle(t *types.TypeDecl) Value { return Value{Kind: KindType, TypeVal: t} }

// Map is an insertion-ordered association from a hashable Value key to a
// Value. Keys are looked up by their KeyString rendering, not Go's
// native map equality, since a Value carries slice/pointer fields that
// are not itself a comparable Go type.
type Map struct {
	order []Value
	vals  map[string]Value
	keys  map[string]Value
}

func NewMap() *Map {
	return &Map{vals: map[string]Value{}, keys: map[string]Value{}}
}

// KeyString renders the canonical lookup key for v, used both for Map
// storage and as the dedupe key for set construction.
func KeyString(v Value) string {
	switch v.Kind {
	case KindNull:
		return "null:"
	case KindBool:
		return fmt.Sprintf("bool:%v", v.Bool)
	case KindInt:
		return fmt.Sprintf("int:%d", v.Int)
	case KindUint:
		return fmt.Sprintf("uint:%d", v.Uint)
	case KindDouble:
		return fmt.Sprintf("double:%v", v.Double)
	case KindString:
		return "string:" + v.Str
	case KindBytes:
		return fmt.Sprintf("bytes:%x", v.Bytes)
	default:
		return fmt.Sprintf("ptr:%p", &v)
	}
}

// prototype-pollution key names silently dropped when materializing a
// host map (spec.md §4.7, "Container construction").
var droppedMapKeys = map[string]bool{
	"__proto__":   true,
	"constructor": true,
	"prototype":   true,
}

// Set stores key→value, overwriting any existing entry for an equal key
// ("last write wins" per spec.md §4.7) while preserving the original
// insertion position. Prototype-pollution key names are silently
// dropped.
func (m *Map) Set(key, val Value) {
	if key.Kind == KindString && droppedMapKeys[key.Str] {
		return
	}
	k := KeyString(key)
	if _, exists := m.vals[k]; !exists {
		m.order = append(m.order, key)
	}
	m.vals[k] = val
	m.keys[k] = key
}

// Get looks up key, reporting whether it was present.
func (m *Map) Get(key Value) (Value, bool) {
	v, ok := m.vals[KeyString(key)]
	return v, ok
}

// Keys returns the map's keys in insertion order.
func (m *Map) Keys() []Value { return m.order }

// Len returns the number of entries.
func (m *Map) Len() int { return len(m.order) }

// Type returns the static TypeDecl this runtime value is an instance of.
// Aggregate kinds infer their element type from the first element (empty
// aggregates report dyn element types, resolved statically by the
// checker instead).
func (v Value) Type() *types.TypeDecl {
	switch v.Kind {
	case KindNull:
		return types.Null()
	case KindBool:
		return types.Bool()
	case KindInt:
		return types.Int()
	case KindUint:
		return types.Uint()
	case KindDouble:
		return types.Double()
	case KindString:
		return types.String()
	case KindBytes:
		return types.Bytes()
	case KindList:
		if len(v.List) == 0 {
			return types.List(types.Dyn())
		}
		return types.List(v.List[0].Type())
	case KindMap:
		if v.Map == nil || v.Map.Len() == 0 {
			return types.Map(types.Dyn(), types.Dyn())
		}
		k := v.Map.Keys()[0]
		val, _ := v.Map.Get(k)
		return types.Map(k.Type(), val.Type())
	case KindTimestamp:
		return types.Message("google.protobuf.Timestamp", nil)
	case KindDuration:
		return types.Message("google.protobuf.Duration", nil)
	case KindType:
		return types.Type()
	case KindOptional:
		if v.Opt != nil && v.Opt.HasValue {
			return types.Optional(v.Opt.Val.Type())
		}
		return types.Optional(types.Dyn())
	case KindMessage:
		return types.Message(v.Msg.TypeName, nil)
	}
	return types.Dyn()
}

// Equal implements the equality algorithm of spec.md §4.7. eitherDyn
// reports whether this comparison is occurring in a context where one
// side carries a dyn tag, unlocking cross-numeric and dyn-vs-anything
// comparisons; when false, an unresolvable cross-type comparison is
// reported as an error rather than silently returning false.
func Equal(a, b Value, eitherDyn bool) (bool, error) {
	if a.Kind == b.Kind {
		return equalSameKind(a, b)
	}
	if isNumeric(a.Kind) && isNumeric(b.Kind) && eitherDyn {
		return equalNumeric(a, b), nil
	}
	if a.Kind == KindList && b.Kind == KindList && (a.IsSet || b.IsSet) {
		return equalMultiset(a.List, b.List), nil
	}
	if eitherDyn {
		return false, nil
	}
	return false, fmt.Errorf("no such overload: %s == %s", a.Type(), b.Type())
}

func isNumeric(k Kind) bool { return k == KindInt || k == KindUint || k == KindDouble }

func equalNumeric(a, b Value) bool {
	af := asFloat(a)
	bf := asFloat(b)
	return af == bf
}

func asFloat(v Value) float64 {
	switch v.Kind {
	case KindInt:
		return float64(v.Int)
	case KindUint:
		return float64(v.Uint)
	case KindDouble:
		return v.Double
	}
	return 0
}

func equalSameKind(a, b Value) (bool, error) {
	switch a.Kind {
	case KindNull:
		return true, nil
	case KindBool:
		return a.Bool == b.Bool, nil
	case KindInt:
		return a.Int == b.Int, nil
	case KindUint:
		return a.Uint == b.Uint, nil
	case KindDouble:
		return a.Double == b.Double, nil
	case KindString:
		return a.Str == b.Str, nil
	case KindBytes:
		return equalBytes(a.Bytes, b.Bytes), nil
	case KindTimestamp:
		return a.Time.Equal(b.Time), nil
	case KindDuration:
		return a.Dur == b.Dur, nil
	case KindType:
		return a.TypeVal.CanonicalName() == b.TypeVal.CanonicalName(), nil
	case KindList:
		if a.IsSet && b.IsSet {
			return equalSubset(a.List, b.List) && equalSubset(b.List, a.List), nil
		}
		if a.IsSet || b.IsSet {
			return equalMultiset(a.List, b.List), nil
		}
		return equalOrderedList(a.List, b.List)
	case KindMap:
		return equalMap(a.Map, b.Map)
	case KindOptional:
		if a.Opt.HasValue != b.Opt.HasValue {
			return false, nil
		}
		if !a.Opt.HasValue {
			return true, nil
		}
		return Equal(a.Opt.Val, b.Opt.Val, false)
	case KindMessage:
		return equalMessage(a.Msg, b.Msg)
	}
	return false, fmt.Errorf("equality not defined for %s", a.Type())
}

func equalBytes(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalOrderedList(a, b []Value) (bool, error) {
	if len(a) != len(b) {
		return false, nil
	}
	for i := range a {
		eq, err := Equal(a[i], b[i], false)
		if err != nil {
			return false, err
		}
		if !eq {
			return false, nil
		}
	}
	return true, nil
}

// equalMultiset reports whether a and b contain the same elements with
// the same multiplicities, ignoring order (spec.md §4.7 "set ↔ list").
func equalMultiset(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	return equalSubset(a, b) && equalSubset(b, a)
}

// equalSubset reports whether every element of a has a matching,
// not-yet-claimed counterpart in b.
func equalSubset(a, b []Value) bool {
	claimed := make([]bool, len(b))
	for _, av := range a {
		found := false
		for i, bv := range b {
			if claimed[i] {
				continue
			}
			if eq, err := Equal(av, bv, false); err == nil && eq {
				claimed[i] = true
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func equalMap(a, b *Map) (bool, error) {
	if a.Len() != b.Len() {
		return false, nil
	}
	for _, k := range a.Keys() {
		av, _ := a.Get(k)
		bv, ok := b.Get(k)
		if !ok {
			return false, nil
		}
		eq, err := Equal(av, bv, false)
		if err != nil {
			return false, err
		}
		if !eq {
			return false, nil
		}
	}
	return true, nil
}

func equalMessage(a, b *Message) (bool, error) {
	if a.TypeName != b.TypeName {
		return false, nil
	}
	if len(a.Fields) != len(b.Fields) {
		return false, nil
	}
	for name, av := range a.Fields {
		bv, ok := b.Fields[name]
		if !ok {
			return false, nil
		}
		eq, err := Equal(av, bv, false)
		if err != nil {
			return false, err
		}
		if !eq {
			return false, nil
		}
	}
	return true, nil
}

// Less implements the ordering used by <,<=,>,>= : defined within each of
// int/uint/double/string/timestamp/duration, and across int/uint/double
// mathematically.
func Less(a, b Value) (bool, error) {
	switch {
	case isNumeric(a.Kind) && isNumeric(b.Kind):
		return asFloat(a) < asFloat(b), nil
	case a.Kind == KindString && b.Kind == KindString:
		return a.Str < b.Str, nil
	case a.Kind == KindTimestamp && b.Kind == KindTimestamp:
		return a.Time.Before(b.Time), nil
	case a.Kind == KindDuration && b.Kind == KindDuration:
		return a.Dur < b.Dur, nil
	}
	return false, fmt.Errorf("no such overload: %s < %s", a.Type(), b.Type())
}

func (v Value) String() string {
	switch v.Kind {
	case KindNull:
		return "null"
	case KindBool:
		return fmt.Sprintf("%v", v.Bool)
	case KindInt:
		return fmt.Sprintf("%d", v.Int)
	case KindUint:
		return fmt.Sprintf("%d", v.Uint)
	case KindDouble:
		return fmt.Sprintf("%v", v.Double)
	case KindString:
		return v.Str
	case KindBytes:
		return fmt.Sprintf("%x", v.Bytes)
	default:
		return v.Type().CanonicalName()
	}
}

// Package types implements the static type system: TypeDecl value objects,
// assignability (matches/matchesBoth), unification, and signature
// templating used by the registry's overload resolution.
package types

import (
	"fmt"
	"strings"
	"sync"
)

// Kind identifies the structural shape of a TypeDecl.
type Kind int

const (
	KindPrimitive Kind = iota
	KindMessage
	KindList
	KindMap
	KindOptional
	KindDyn
	KindParam
)

// TypeDecl is an immutable, interned type value. Primitives are
// interned by name; list/map/optional/dyn wrap an Elem (and Key, for
// maps); param is a single uppercase letter placeholder bound during
// overload resolution.
type TypeDecl struct {
	Kind   Kind
	Name   string // primitive/message name, or the synthesized canonical name
	Elem   *TypeDecl
	Key    *TypeDecl
	Fields map[string]*TypeDecl // message field declarations, if any
}

var (
	internMu sync.Mutex
	interned = map[string]*TypeDecl{}
)

func intern(t *TypeDecl) *TypeDecl {
	internMu.Lock()
	defer internMu.Unlock()
	name := t.CanonicalName()
	if existing, ok := interned[name]; ok {
		return existing
	}
	interned[name] = t
	return t
}

func primitive(name string) *TypeDecl {
	return intern(&TypeDecl{Kind: KindPrimitive, Name: name})
}

var (
	stringT  = primitive("string")
	boolT    = primitive("bool")
	intT     = primitive("int")
	uintT    = primitive("uint")
	doubleT  = primitive("double")
	bytesT   = primitive("bytes")
	nullT    = primitive("null")
	typeT    = primitive("type")
	astT     = primitive("ast")
	bareDyn  = intern(&TypeDecl{Kind: KindDyn})
)

// String, Bool, Int, Uint, Double, Bytes, Null, Type, and Ast return the
// interned primitive TypeDecls named in spec.md §3.
func String() *TypeDecl { return stringT }
func Bool() *TypeDecl   { return boolT }
func Int() *TypeDecl    { return intT }
func Uint() *TypeDecl   { return uintT }
func Double() *TypeDecl { return doubleT }
func Bytes() *TypeDecl  { return bytesT }
func Null() *TypeDecl   { return nullT }
func Type() *TypeDecl   { return typeT }
func Ast() *TypeDecl    { return astT }

// Dyn returns the bare, untagged dyn type when called with no argument, or
// the dyn<T> tag (spec.md §3: "T, but the checker treated it as dyn") when
// called with a concrete type.
func Dyn(elem ...*TypeDecl) *TypeDecl {
	if len(elem) == 0 || elem[0] == nil {
		return bareDyn
	}
	return intern(&TypeDecl{Kind: KindDyn, Elem: elem[0]})
}

// IsDyn reports whether t is the bare dyn type or any dyn<U> tag.
func IsDyn(t *TypeDecl) bool { return t != nil && t.Kind == KindDyn }

// List returns the interned list<elem> type.
func List(elem *TypeDecl) *TypeDecl {
	return intern(&TypeDecl{Kind: KindList, Elem: elem})
}

// Map returns the interned map<key,val> type.
func Map(key, val *TypeDecl) *TypeDecl {
	return intern(&TypeDecl{Kind: KindMap, Key: key, Elem: val})
}

// Optional returns the interned optional<elem> type.
func Optional(elem *TypeDecl) *TypeDecl {
	return intern(&TypeDecl{Kind: KindOptional, Elem: elem})
}

// Param returns the interned param placeholder named by a single
// uppercase letter ("A".."Z").
func Param(letter string) *TypeDecl {
	return intern(&TypeDecl{Kind: KindParam, Name: letter})
}

// Message returns the interned message type for name, registering fields
// the first time it is interned (registerType in internal/registry calls
// this with the declared field map).
func Message(name string, fields map[string]*TypeDecl) *TypeDecl {
	return intern(&TypeDecl{Kind: KindMessage, Name: name, Fields: fields})
}

// IsParam reports whether t is a single-letter placeholder.
func (t *TypeDecl) IsParam() bool { return t != nil && t.Kind == KindParam }

// CanonicalName renders the type's interning key and display name, e.g.
// "list<string>", "map<string,int>", "optional<dyn>", "dyn<int>", "A".
func (t *TypeDecl) CanonicalName() string {
	if t == nil {
		return "<nil>"
	}
	switch t.Kind {
	case KindPrimitive:
		return t.Name
	case KindMessage:
		return t.Name
	case KindParam:
		return t.Name
	case KindDyn:
		if t.Elem == nil {
			return "dyn"
		}
		return fmt.Sprintf("dyn<%s>", t.Elem.CanonicalName())
	case KindList:
		return fmt.Sprintf("list<%s>", t.Elem.CanonicalName())
	case KindMap:
		return fmt.Sprintf("map<%s,%s>", t.Key.CanonicalName(), t.Elem.CanonicalName())
	case KindOptional:
		return fmt.Sprintf("optional<%s>", t.Elem.CanonicalName())
	}
	return "<invalid>"
}

func (t *TypeDecl) String() string { return t.CanonicalName() }

// Matches reports whether a value statically typed as t may be used where
// other is expected, per spec.md §3's assignability rule:
// identical, or self is dyn/param, or other is dyn, or same kind with
// component-wise matches.
func (t *TypeDecl) Matches(other *TypeDecl) bool {
	if t == nil || other == nil {
		return false
	}
	if t == other {
		return true
	}
	if t.Kind == KindDyn || t.Kind == KindParam {
		return true
	}
	if other.Kind == KindDyn {
		return true
	}
	if t.Kind != other.Kind {
		return false
	}
	switch t.Kind {
	case KindPrimitive, KindMessage:
		return t.Name == other.Name
	case KindList:
		return t.Elem.Matches(other.Elem)
	case KindMap:
		return t.Key.Matches(other.Key) && t.Elem.Matches(other.Elem)
	case KindOptional:
		return t.Elem.Matches(other.Elem)
	}
	return false
}

// MatchesBoth reports mutual assignability: t.Matches(other) &&
// other.Matches(t).
func (t *TypeDecl) MatchesBoth(other *TypeDecl) bool {
	return t.Matches(other) && other.Matches(t)
}

// Unify returns the narrowest common type of a and b (used to
// homogenize ternary branches and list/map literal elements), or nil if
// no common type exists.
func Unify(a, b *TypeDecl) *TypeDecl {
	if a == nil || b == nil {
		return nil
	}
	if a.CanonicalName() == b.CanonicalName() {
		return a
	}
	if a.Kind == KindDyn {
		return Dyn(b)
	}
	if b.Kind == KindDyn {
		return Dyn(a)
	}
	if a.Kind != b.Kind {
		return nil
	}
	switch a.Kind {
	case KindList:
		elem := Unify(a.Elem, b.Elem)
		if elem == nil {
			return nil
		}
		return List(elem)
	case KindMap:
		key := Unify(a.Key, b.Key)
		val := Unify(a.Elem, b.Elem)
		if key == nil || val == nil {
			return nil
		}
		return Map(key, val)
	case KindOptional:
		elem := Unify(a.Elem, b.Elem)
		if elem == nil {
			return nil
		}
		return Optional(elem)
	}
	return nil
}

// Bindings maps a param placeholder letter to the concrete type it was
// bound to during overload resolution.
type Bindings map[string]*TypeDecl

// MatchWithPlaceholders attempts to unify an actual type against a
// (possibly placeholder-bearing) declared type, extending bindings in
// place. It implements the per-argument half of
// FunctionCandidates.findMatch (spec.md §4.4): a placeholder binds to the
// actual type (or to dyn, when the actual is dyn-tagged); a name bound
// twice must receive two mutually-matching types, one of which may be
// dyn; aggregate actuals named "dyn" are shape-compatible with any
// aggregate declared shape.
func MatchWithPlaceholders(declared, actual *TypeDecl, bindings Bindings) bool {
	if declared == nil || actual == nil {
		return false
	}
	if declared.Kind == KindParam {
		bound, ok := bindings[declared.Name]
		if !ok {
			if actual.Kind == KindDyn {
				bindings[declared.Name] = Dyn()
			} else {
				bindings[declared.Name] = actual
			}
			return true
		}
		if bound.Kind == KindDyn || actual.Kind == KindDyn {
			return true
		}
		return bound.MatchesBoth(actual)
	}
	if actual.Kind == KindDyn {
		return true
	}
	if declared.Kind != actual.Kind {
		return false
	}
	switch declared.Kind {
	case KindPrimitive, KindMessage:
		return declared.Name == actual.Name
	case KindList:
		return MatchWithPlaceholders(declared.Elem, actual.Elem, bindings)
	case KindMap:
		return MatchWithPlaceholders(declared.Key, actual.Key, bindings) &&
			MatchWithPlaceholders(declared.Elem, actual.Elem, bindings)
	case KindOptional:
		return MatchWithPlaceholders(declared.Elem, actual.Elem, bindings)
	}
	return false
}

// Template substitutes bindings into a signature's declared type,
// producing the concrete return type after overload resolution has bound
// every placeholder it references.
func Template(declared *TypeDecl, bindings Bindings) *TypeDecl {
	if declared == nil {
		return nil
	}
	switch declared.Kind {
	case KindParam:
		if bound, ok := bindings[declared.Name]; ok {
			return bound
		}
		return declared
	case KindList:
		return List(Template(declared.Elem, bindings))
	case KindMap:
		return Map(Template(declared.Key, bindings), Template(declared.Elem, bindings))
	case KindOptional:
		return Optional(Template(declared.Elem, bindings))
	case KindDyn:
		if declared.Elem == nil {
			return declared
		}
		return Dyn(Template(declared.Elem, bindings))
	default:
		return declared
	}
}

// IsAggregate reports whether t is a list, map, or optional — the kinds
// that fall back to a base-aggregate overload bucket in findMatch when no
// exact-receiver bucket exists (spec.md §4.4 step 2).
func (t *TypeDecl) IsAggregate() bool {
	return t != nil && (t.Kind == KindList || t.Kind == KindMap || t.Kind == KindOptional)
}

// ParseParamLetter reports whether name is a valid single uppercase-letter
// placeholder name ("A" through "Z").
func ParseParamLetter(name string) bool {
	return len(name) == 1 && strings.ContainsAny(name, "ABCDEFGHIJKLMNOPQRSTUVWXYZ")
}

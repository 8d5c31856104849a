package registry

import (
	"fmt"

	"github.com/cwbudde/go-cel/internal/ast"
	"github.com/cwbudde/go-cel/internal/types"
)

// funcKey identifies a bucket of overloads sharing a name, arity, and
// receiver-presence — the granularity at which spec.md §4.4's findMatch
// algorithm operates.
type funcKey struct {
	name        string
	arity       int
	hasReceiver bool
}

// FunctionSignature is the declared shape of one overload: an optional
// receiver type (nil for a free function), positional parameter types,
// and a declared return type. Any of these may reference param
// placeholders ("A".."Z"), bound during resolution.
type FunctionSignature struct {
	Name     string
	Receiver *types.TypeDecl
	Params   []*types.TypeDecl
	Return   *types.TypeDecl
}

// TypeCheckFunc computes a return type from the statically-checked
// receiver/argument types, for overloads registered via
// RegisterUncheckedFunction whose return type cannot be derived purely by
// templating the declared signature.
type TypeCheckFunc func(receiver *types.TypeDecl, args []*types.TypeDecl) (*types.TypeDecl, error)

// FunctionOverload is one registered implementation of a function or
// receiver-call name.
type FunctionOverload struct {
	Signature FunctionSignature
	Handler   ast.StaticHandler
	TypeCheck TypeCheckFunc // optional; nil means "template the declared Return"
}

func hasPlaceholder(t *types.TypeDecl) bool {
	if t == nil {
		return false
	}
	switch t.Kind {
	case types.KindParam:
		return true
	case types.KindList, types.KindOptional, types.KindDyn:
		return hasPlaceholder(t.Elem)
	case types.KindMap:
		return hasPlaceholder(t.Key) || hasPlaceholder(t.Elem)
	}
	return false
}

func (o *FunctionOverload) hasAnyPlaceholder() bool {
	if hasPlaceholder(o.Signature.Receiver) {
		return true
	}
	for _, p := range o.Signature.Params {
		if hasPlaceholder(p) {
			return true
		}
	}
	return false
}

// FunctionCandidateSet is the append-only bucket of overloads sharing a
// (name, arity, hasReceiver) key. It implements ast.FunctionCandidates so
// the checker can cache it directly on a Call/RCall node.
type FunctionCandidateSet struct {
	key       funcKey
	overloads []*FunctionOverload
}

// FindMatch implements spec.md §4.4's overload selection algorithm:
// exact-receiver bucket, then base-aggregate bucket, then
// placeholder-bearing receivers, first success wins.
func (s *FunctionCandidateSet) FindMatch(receiver *types.TypeDecl, argTypes []*types.TypeDecl) (*types.TypeDecl, ast.StaticHandler, bool) {
	if len(argTypes) != s.key.arity {
		return nil, nil, false
	}

	tryGroup := func(group []*FunctionOverload) (*types.TypeDecl, ast.StaticHandler, bool) {
		for _, o := range group {
			bindings := types.Bindings{}
			ok := true
			if o.Signature.Receiver != nil {
				if o.hasAnyPlaceholder() {
					ok = types.MatchWithPlaceholders(o.Signature.Receiver, receiver, bindings)
				} else {
					ok = o.Signature.Receiver.Matches(receiver)
				}
			}
			if ok {
				for i, declared := range o.Signature.Params {
					if o.hasAnyPlaceholder() {
						if !types.MatchWithPlaceholders(declared, argTypes[i], bindings) {
							ok = false
							break
						}
					} else if !declared.Matches(argTypes[i]) {
						ok = false
						break
					}
				}
			}
			if !ok {
				continue
			}
			if o.TypeCheck != nil {
				ret, err := o.TypeCheck(receiver, argTypes)
				if err != nil {
					continue
				}
				return ret, o.Handler, true
			}
			return types.Template(o.Signature.Return, bindings), o.Handler, true
		}
		return nil, nil, false
	}

	var exact, aggregate, placeholder []*FunctionOverload
	for _, o := range s.overloads {
		switch {
		case o.hasAnyPlaceholder():
			placeholder = append(placeholder, o)
		case receiver != nil && o.Signature.Receiver != nil && o.Signature.Receiver.CanonicalName() == receiver.CanonicalName():
			exact = append(exact, o)
		case receiver != nil && o.Signature.Receiver != nil && receiver.IsAggregate() && o.Signature.Receiver.Kind == receiver.Kind:
			aggregate = append(aggregate, o)
		case receiver == nil && o.Signature.Receiver == nil:
			exact = append(exact, o)
		}
	}

	if ret, h, ok := tryGroup(exact); ok {
		return ret, h, ok
	}
	if receiver != nil && receiver.IsAggregate() {
		if ret, h, ok := tryGroup(aggregate); ok {
			return ret, h, ok
		}
	}
	return tryGroup(placeholder)
}

// overlaps reports whether a and b could both match the same call site —
// same arity/receiver-presence (guaranteed by bucket key) and, for every
// parameter position, types that are identical or where one side is
// dyn/ast (spec.md §4.4 "Overlap detection").
func overlaps(a, b *FunctionOverload) bool {
	sameOrAmbiguous := func(x, y *types.TypeDecl) bool {
		if x == nil || y == nil {
			return x == y
		}
		if x.CanonicalName() == y.CanonicalName() {
			return true
		}
		return x == types.Dyn() || y == types.Dyn() || x == types.Ast() || y == types.Ast()
	}
	if !sameOrAmbiguous(a.Signature.Receiver, b.Signature.Receiver) {
		return false
	}
	for i := range a.Signature.Params {
		if !sameOrAmbiguous(a.Signature.Params[i], b.Signature.Params[i]) {
			return false
		}
	}
	return true
}

func key(sig FunctionSignature) funcKey {
	return funcKey{name: sig.Name, arity: len(sig.Params), hasReceiver: sig.Receiver != nil}
}

// RegisterFunctionOverload registers handler under sig. Overload
// resolution caches are invalidated. An overload that overlaps an
// existing one for the same (name, arity, receiver-presence) bucket is
// rejected (spec.md §4.4 "Overlap detection").
func (r *Registry) RegisterFunctionOverload(sig FunctionSignature, handler ast.StaticHandler) error {
	return r.registerOverload(sig, handler, nil)
}

// RegisterUncheckedFunction registers an overload whose return type
// cannot be derived by templating the declared signature — typeCheck
// computes it from the statically-checked receiver/argument types
// instead (spec.md §4.4 "registerUncheckedFunction").
func (r *Registry) RegisterUncheckedFunction(sig FunctionSignature, handler ast.StaticHandler, typeCheck TypeCheckFunc) error {
	if typeCheck == nil {
		return fmt.Errorf("RegisterUncheckedFunction requires a non-nil typeCheck")
	}
	return r.registerOverload(sig, handler, typeCheck)
}

func (r *Registry) registerOverload(sig FunctionSignature, handler ast.StaticHandler, typeCheck TypeCheckFunc) error {
	if err := r.checkUnlocked(); err != nil {
		return err
	}
	k := key(sig)
	set := r.functions[k]
	if set == nil {
		set = &FunctionCandidateSet{key: k}
		r.functions[k] = set
	}
	candidate := &FunctionOverload{Signature: sig, Handler: handler, TypeCheck: typeCheck}
	for _, existing := range set.overloads {
		if overlaps(existing, candidate) {
			return fmt.Errorf("function overload %q overlaps an existing registration for the same arguments", sig.Name)
		}
	}
	set.overloads = append(set.overloads, candidate)
	r.invalidateCaches()
	return nil
}

// LookupFunctionCandidates walks the registry chain for the
// (name, arity, hasReceiver) bucket, merging every layer's overloads
// (parent first, so a child's overloads are tried after the parent's —
// consistent with append-only-before-lock: the parent's entries are
// fixed by the time a child can add its own).
func (r *Registry) LookupFunctionCandidates(name string, arity int, hasReceiver bool) (*FunctionCandidateSet, bool) {
	k := funcKey{name: name, arity: arity, hasReceiver: hasReceiver}
	merged := &FunctionCandidateSet{key: k}
	found := false
	var collect func(reg *Registry)
	collect = func(reg *Registry) {
		if reg == nil {
			return
		}
		collect(reg.outer)
		if set, ok := reg.functions[k]; ok {
			merged.overloads = append(merged.overloads, set.overloads...)
			found = true
		}
	}
	collect(r)
	if !found {
		return nil, false
	}
	return merged, true
}

// Package registry implements the layered, clonable declaration store:
// types, variables, constants, operator overloads, function overloads,
// and macro declarations, plus the cached overload-resolution machinery
// of spec.md §4.4. It generalizes the teacher's nested, case-sensitive
// SymbolTable{symbols, outer} (internal/semantic/symbol_table.go) to
// CEL's append-only-before-lock/frozen-after-lock clone model.
package registry

import (
	"fmt"
	"sync"

	"github.com/cwbudde/go-cel/internal/types"
	"github.com/cwbudde/go-cel/internal/values"
)

// VarDecl is a lexical variable declaration: name bound to a static type.
type VarDecl struct {
	Name string
	Type *types.TypeDecl
}

// ConstDecl is a variable declaration with a frozen runtime value.
type ConstDecl struct {
	VarDecl
	Value values.Value
}

// UserType is a host-registered named type: its runtime constructor tag
// and, optionally, declared field types enforced on field access.
type UserType struct {
	Name   string
	Type   *types.TypeDecl
	Fields map[string]*types.TypeDecl
}

// Registry is one layer of the declaration chain. A Registry created by
// Clone shares its parent's entries by reference and may add its own;
// the parent is locked at clone time and accepts no further writes.
type Registry struct {
	outer  *Registry
	locked bool

	types     map[string]*UserType
	variables map[string]*VarDecl
	constants map[string]*ConstDecl
	operators map[opKey][]*OperatorOverload
	functions map[funcKey]*FunctionCandidateSet
	macros    map[macroKey]*MacroDecl

	cacheMu      sync.Mutex
	resolveCache map[opKey]*OperatorOverload
	checkCache   map[opKey]*types.TypeDecl
}

// New creates a root registry with no parent layer.
func New() *Registry {
	r := &Registry{
		types:     map[string]*UserType{},
		variables: map[string]*VarDecl{},
		constants: map[string]*ConstDecl{},
		operators: map[opKey][]*OperatorOverload{},
		functions: map[funcKey]*FunctionCandidateSet{},
		macros:    map[macroKey]*MacroDecl{},
	}
	RegisterBuiltinMacros(r)
	return r
}

// Clone returns a child registry overlaying r. r is locked: subsequent
// mutation on r returns an error. The child may freely register new
// entries that extend (never shadow) r's.
func (r *Registry) Clone() *Registry {
	r.locked = true
	return &Registry{
		outer:     r,
		types:     map[string]*UserType{},
		variables: map[string]*VarDecl{},
		constants: map[string]*ConstDecl{},
		operators: map[opKey][]*OperatorOverload{},
		functions: map[funcKey]*FunctionCandidateSet{},
		macros:    map[macroKey]*MacroDecl{},
	}
}

func (r *Registry) checkUnlocked() error {
	if r.locked {
		return fmt.Errorf("registry is locked: it was cloned and can no longer be mutated")
	}
	return nil
}

func (r *Registry) invalidateCaches() {
	r.cacheMu.Lock()
	defer r.cacheMu.Unlock()
	r.resolveCache = nil
	r.checkCache = nil
}

// RegisterType registers a user message type, binding its runtime
// constructor tag and, if fields is non-nil, the declared field types
// enforced on subsequent field access. It also implicitly registers a
// `type(<name>): type` conversion function, per spec.md §4.4.
func (r *Registry) RegisterType(name string, fields map[string]*types.TypeDecl) (*types.TypeDecl, error) {
	if err := r.checkUnlocked(); err != nil {
		return nil, err
	}
	if _, exists := r.LookupType(name); exists {
		return nil, fmt.Errorf("type %q is already registered", name)
	}
	t := types.Message(name, fields)
	r.types[name] = &UserType{Name: name, Type: t, Fields: fields}
	handlerType := t
	_ = r.RegisterFunctionOverload(
		FunctionSignature{Name: "type", Params: []*types.TypeDecl{t}, Return: types.Type()},
		func(args []values.Value) (values.Value, error) {
			return values.TypeHandle(handlerType), nil
		},
	)
	r.invalidateCaches()
	return t, nil
}

// LookupType walks the registry chain looking up a user type by name.
func (r *Registry) LookupType(name string) (*UserType, bool) {
	if ut, ok := r.types[name]; ok {
		return ut, true
	}
	if r.outer != nil {
		return r.outer.LookupType(name)
	}
	return nil, false
}

// RegisterVariable declares a lexical variable name with a static type.
// Duplicate registration (in this layer or an ancestor) is an error.
func (r *Registry) RegisterVariable(name string, t *types.TypeDecl) error {
	if err := r.checkUnlocked(); err != nil {
		return err
	}
	if _, exists := r.LookupVariable(name); exists {
		return fmt.Errorf("variable %q is already registered", name)
	}
	r.variables[name] = &VarDecl{Name: name, Type: t}
	return nil
}

// LookupVariable walks the registry chain looking up a variable by name.
func (r *Registry) LookupVariable(name string) (*VarDecl, bool) {
	if v, ok := r.variables[name]; ok {
		return v, true
	}
	if c, ok := r.constants[name]; ok {
		return &c.VarDecl, true
	}
	if r.outer != nil {
		return r.outer.LookupVariable(name)
	}
	return nil, false
}

// RegisterConstant declares a variable with a frozen runtime value.
func (r *Registry) RegisterConstant(name string, t *types.TypeDecl, value values.Value) error {
	if err := r.checkUnlocked(); err != nil {
		return err
	}
	if _, exists := r.LookupVariable(name); exists {
		return fmt.Errorf("variable %q is already registered", name)
	}
	r.constants[name] = &ConstDecl{VarDecl: VarDecl{Name: name, Type: t}, Value: value}
	return nil
}

// LookupConstant walks the registry chain looking up a constant's frozen
// value by name.
func (r *Registry) LookupConstant(name string) (*ConstDecl, bool) {
	if c, ok := r.constants[name]; ok {
		return c, true
	}
	if r.outer != nil {
		return r.outer.LookupConstant(name)
	}
	return nil, false
}

// AllTypeNames returns every user type name visible through the chain.
func (r *Registry) AllTypeNames() []string {
	seen := map[string]bool{}
	var names []string
	for layer := r; layer != nil; layer = layer.outer {
		for name := range layer.types {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	return names
}

package registry

// macroKey identifies a macro declaration by name, receiver-presence, and
// argument count — the same granularity the parser uses to decide
// whether a call/rcall site should be expanded instead of resolved as an
// ordinary function (spec.md §4.3).
type macroKey struct {
	name        string
	hasReceiver bool
	argCount    int
}

// MacroDecl records that (name, hasReceiver, argCount) names a macro.
// The expansion logic itself lives in internal/parser (macros.go): ast
// stays a closed tagged union (see DESIGN.md's internal/ast entry), so
// registry only tracks which call shapes are macros, not how to expand
// them — a host cannot register a novel macro shape this way; the
// catalog is the fixed one spec.md §4.5 names.
type MacroDecl struct {
	Name        string
	HasReceiver bool
	ArgCount    int
}

// RegisterBuiltinMacros seeds a fresh root registry with the fixed macro
// catalog of spec.md §4.5/§4.6: has, all, exists, exists_one, map (both
// arities), and filter.
func RegisterBuiltinMacros(r *Registry) {
	decls := []MacroDecl{
		{Name: "has", HasReceiver: false, ArgCount: 1},
		{Name: "all", HasReceiver: true, ArgCount: 2},
		{Name: "exists", HasReceiver: true, ArgCount: 2},
		{Name: "exists_one", HasReceiver: true, ArgCount: 2},
		{Name: "map", HasReceiver: true, ArgCount: 2},
		{Name: "map", HasReceiver: true, ArgCount: 3},
		{Name: "filter", HasReceiver: true, ArgCount: 2},
	}
	for _, d := range decls {
		r.macros[macroKey{name: d.Name, hasReceiver: d.HasReceiver, argCount: d.ArgCount}] = &d
	}
}

// LookupMacro walks the registry chain for a macro matching
// (name, hasReceiver, argCount), used by the parser at every call/rcall
// site before falling back to ordinary function resolution.
func (r *Registry) LookupMacro(name string, hasReceiver bool, argCount int) (*MacroDecl, bool) {
	k := macroKey{name: name, hasReceiver: hasReceiver, argCount: argCount}
	if m, ok := r.macros[k]; ok {
		return m, true
	}
	if r.outer != nil {
		return r.outer.LookupMacro(name, hasReceiver, argCount)
	}
	return nil, false
}

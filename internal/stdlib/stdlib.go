// Package stdlib populates a fresh registry.Registry with the standard
// function/operator catalog spec.md §4.5 requires plus SPEC_FULL.md's
// DOMAIN additions (replace/trim, slice/flatten/sort, optional<T>
// methods, map keys()/values()). Host adapters live in internal/hostlib;
// this package is the glue that turns them into registered overloads, the
// way CWBudde-go-dws's internal/interp/builtins_*.go files register their
// own built-in function tables against the interpreter.
package stdlib

import "github.com/cwbudde/go-cel/internal/registry"

// Register installs the full standard library into reg. Call once per
// fresh registry — typically from pkg/cel's Environment constructor —
// before any user registerVariable/registerFunction calls, so a host's
// own overloads can still be rejected by overlap detection if they
// collide with a core one.
func Register(reg *registry.Registry) error {
	for _, step := range []func(*registry.Registry) error{
		registerOperators,
		registerConversions,
		registerSize,
		registerStringMethods,
		registerListMethods,
		registerMapMethods,
		registerBytesMethods,
		registerTimestampMethods,
		registerDurationMethods,
		registerOptionalMethods,
	} {
		if err := step(reg); err != nil {
			return err
		}
	}
	return nil
}

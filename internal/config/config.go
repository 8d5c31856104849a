// Package config carries the structural limit defaults of spec.md §6 as
// plain constants, mirroring funvibe-funxy's internal/config (plain
// exported constants, no flags/env framework) rather than a
// configuration library — there is no server process here to configure.
package config

// Default structural limits, enforced by the parser during parsing
// (spec.md §4.3). A host may override any of these when constructing an
// Environment (see pkg/cel).
const (
	DefaultMaxAstNodes      = 10_000
	DefaultMaxDepth         = 250
	DefaultMaxListElements  = 1_000
	DefaultMaxMapEntries    = 1_000
	DefaultMaxCallArguments = 32
)

// Limits is the parser's structural-limit configuration. The zero value
// is invalid; use Defaults().
type Limits struct {
	MaxAstNodes      int
	MaxDepth         int
	MaxListElements  int
	MaxMapEntries    int
	MaxCallArguments int
}

// Defaults returns the structural limits from the CEL spec minimum.
func Defaults() Limits {
	return Limits{
		MaxAstNodes:      DefaultMaxAstNodes,
		MaxDepth:         DefaultMaxDepth,
		MaxListElements:  DefaultMaxListElements,
		MaxMapEntries:    DefaultMaxMapEntries,
		MaxCallArguments: DefaultMaxCallArguments,
	}
}

// EnvironmentOptions mirrors the constructor options spec.md §6 names for
// Environment: unlistedVariablesAreDyn, homogeneousAggregateLiterals,
// enableOptionalTypes, plus structural limits.
type EnvironmentOptions struct {
	UnlistedVariablesAreDyn      bool
	HomogeneousAggregateLiterals bool
	EnableOptionalTypes          bool
	Limits                       Limits
}

// DefaultEnvironmentOptions returns the conservative defaults: unlisted
// variables are a type-check error (not dyn), aggregate literals must be
// homogeneous, and optional types (`.?`, `[?]`) are disabled.
func DefaultEnvironmentOptions() EnvironmentOptions {
	return EnvironmentOptions{
		UnlistedVariablesAreDyn:      false,
		HomogeneousAggregateLiterals: true,
		EnableOptionalTypes:          false,
		Limits:                       Defaults(),
	}
}

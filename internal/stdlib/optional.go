package stdlib

import (
	"github.com/cwbudde/go-cel/internal/evaluator"
	"github.com/cwbudde/go-cel/internal/registry"
)

// registerOptionalMethods delegates to internal/evaluator's own
// RegisterOptionalMethods, which lives there (not here) since a host
// that wants the bare minimum catalog can call stdlib.Register minus
// this one step.
func registerOptionalMethods(reg *registry.Registry) error {
	return evaluator.RegisterOptionalMethods(reg)
}

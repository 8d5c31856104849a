package parser

import (
	"github.com/cwbudde/go-cel/internal/ast"
	"github.com/cwbudde/go-cel/internal/token"
)

// buildCall builds a Call node for a non-receiver name(args) site, first
// asking the registry whether (name, hasReceiver=false, len(args)) is a
// macro — only `has(e)` lives in that bucket (spec.md §4.3's "macro
// expansion at parse time").
func (p *Parser) buildCall(pos token.Position, name string, args []*ast.Node) (*ast.Node, error) {
	if _, ok := p.reg.LookupMacro(name, false, len(args)); ok && name == "has" {
		return p.expandHas(pos, args[0])
	}
	return p.track(ast.NewCall(pos, name, args), nil)
}

// buildRCall builds an RCall node for a receiver.name(args) site, first
// asking the registry whether (name, hasReceiver=true, len(args)) is a
// macro — all/exists/exists_one/map/filter (spec.md §4.6).
func (p *Parser) buildRCall(pos token.Position, name string, receiver *ast.Node, args []*ast.Node) (*ast.Node, error) {
	if _, ok := p.reg.LookupMacro(name, true, len(args)); ok {
		switch name {
		case "all", "exists", "exists_one", "filter":
			return p.expandQuantifier(pos, name, receiver, args)
		case "map":
			return p.expandMap(pos, receiver, args)
		}
	}
	return p.track(ast.NewRCall(pos, name, receiver, args), nil)
}

// iterVarName validates that node is a bare identifier, the required
// shape of a comprehension macro's first argument.
func (p *Parser) iterVarName(macro string, node *ast.Node) (string, error) {
	idArgs, ok := node.Args.(ast.IdArgs)
	if node.Op != ast.Id || !ok {
		return "", p.errorf(node.Pos, "macro %q requires a simple identifier as its iteration variable", macro)
	}
	return idArgs.Name, nil
}

// expandQuantifier desugars all/exists/exists_one/filter into the
// uniform comprehension primitive, per the table in spec.md §4.6.
func (p *Parser) expandQuantifier(pos token.Position, macro string, receiver *ast.Node, args []*ast.Node) (*ast.Node, error) {
	iterVar, err := p.iterVarName(macro, args[0])
	if err != nil {
		return nil, err
	}
	predicate := wrapPredicateGuard(args[1], macro)

	var init, condition, step, result *ast.Node
	errorsAreFatal := false
	switch macro {
	case "all":
		init = ast.NewValue(pos, true)
		condition = ast.NewAccuValue(pos)
		step = ast.NewTernary(pos, predicate, ast.NewAccuValue(pos), ast.NewValue(pos, false))
		result = ast.NewAccuValue(pos)
	case "exists":
		init = ast.NewValue(pos, false)
		condition = ast.NewUnary(pos, ast.Not, ast.NewAccuValue(pos))
		step = ast.NewTernary(pos, predicate, ast.NewValue(pos, true), ast.NewValue(pos, false))
		result = ast.NewAccuValue(pos)
	case "exists_one":
		init = ast.NewValue(pos, int64(0))
		step = ast.NewTernary(pos, predicate, ast.NewAccuInc(pos), ast.NewAccuValue(pos))
		result = ast.NewBinary(pos, ast.Eq, ast.NewAccuValue(pos), ast.NewValue(pos, int64(1)))
	case "filter":
		init = ast.NewList(pos, nil)
		step = ast.NewTernary(pos, predicate, ast.NewAccuPush(pos, ast.NewId(pos, iterVar)), ast.NewAccuValue(pos))
		result = ast.NewAccuValue(pos)
		errorsAreFatal = true
	}

	return p.track(ast.NewComprehension(pos, ast.ComprehensionArgs{
		Iterable:       receiver,
		IterVarName:    iterVar,
		Init:           init,
		Condition:      condition,
		Step:           step,
		Result:         result,
		ErrorsAreFatal: errorsAreFatal,
		MacroName:      macro,
	}), nil)
}

// expandMap desugars both arities of map: map(v,t) and map(v,f,t).
func (p *Parser) expandMap(pos token.Position, receiver *ast.Node, args []*ast.Node) (*ast.Node, error) {
	iterVar, err := p.iterVarName("map", args[0])
	if err != nil {
		return nil, err
	}

	init := ast.NewList(pos, nil)
	var step *ast.Node
	if len(args) == 2 {
		transform := args[1]
		step = ast.NewAccuPush(pos, transform)
	} else {
		filter := wrapPredicateGuard(args[1], "map")
		transform := args[2]
		step = ast.NewTernary(pos, filter, ast.NewAccuPush(pos, transform), ast.NewAccuValue(pos))
	}
	result := ast.NewAccuValue(pos)

	return p.track(ast.NewComprehension(pos, ast.ComprehensionArgs{
		Iterable:       receiver,
		IterVarName:    iterVar,
		Init:           init,
		Step:           step,
		Result:         result,
		ErrorsAreFatal: true,
		MacroName:      "map",
	}), nil)
}

func wrapPredicateGuard(predicate *ast.Node, macro string) *ast.Node {
	return ast.NewPredicateGuard(predicate.Pos, predicate, macro)
}

// expandHas builds a Has node from has(e)'s argument, which must be a
// field-selection chain terminated by an identifier (spec.md §4.6).
func (p *Parser) expandHas(pos token.Position, chain *ast.Node) (*ast.Node, error) {
	if chain.Op != ast.Field && chain.Op != ast.FieldOpt {
		return nil, p.errorf(chain.Pos, "has() requires a field-selection expression, e.g. has(a.b.c)")
	}
	return p.track(ast.NewHas(pos, chain), nil)
}

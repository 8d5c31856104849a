// Package parser implements the Pratt/recursive-descent parser of
// spec.md §4.3: precedence-climbing over the operator table, postfix
// field/index/call chains, list/map literals, and structural-limit
// enforcement. It is generalized from the teacher's internal/parser
// cursor.go lookahead-token-buffer idiom, narrowed to CEL's much smaller
// grammar.
package parser

import (
	"github.com/cwbudde/go-cel/internal/ast"
	"github.com/cwbudde/go-cel/internal/config"
	"github.com/cwbudde/go-cel/internal/diagnostics"
	"github.com/cwbudde/go-cel/internal/lexer"
	"github.com/cwbudde/go-cel/internal/registry"
	"github.com/cwbudde/go-cel/internal/token"
)

// Parser holds the lexer, a two-token lookahead buffer, and the parse
// state (node/depth counters) needed to enforce spec.md §4.3's
// structural limits.
type Parser struct {
	lex    *lexer.Lexer
	reg    *registry.Registry
	limits config.Limits
	source string

	optionalEnabled bool

	cur, peek token.Token

	nodeCount int
	depth     int
}

// New constructs a Parser over source, ready to call Parse.
func New(source string, reg *registry.Registry, opts config.EnvironmentOptions) (*Parser, error) {
	p := &Parser{
		lex:             lexer.New(source),
		reg:             reg,
		limits:          opts.Limits,
		source:          source,
		optionalEnabled: opts.EnableOptionalTypes,
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p, nil
}

// Parse parses source into a single expression AST, per spec.md §4.3.
func Parse(source string, reg *registry.Registry, opts config.EnvironmentOptions) (*ast.Node, error) {
	p, err := New(source, reg, opts)
	if err != nil {
		return nil, err
	}
	n, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.cur.Type != token.EOF {
		return nil, p.errorf(p.cur.Pos, "unexpected token %q", p.cur.Lexeme)
	}
	return n, nil
}

func (p *Parser) advance() error {
	p.cur = p.peek
	tok, err := p.lex.NextToken()
	if err != nil {
		return p.errorf(tok.Pos, "%v", err)
	}
	p.peek = tok
	return nil
}

func (p *Parser) errorf(pos token.Position, format string, args ...interface{}) error {
	e := diagnostics.Parse(format, args...)
	e.WithAst(p.source, "<input>", pos)
	return e
}

func (p *Parser) expect(tt token.Type, what string) error {
	if p.cur.Type != tt {
		return p.errorf(p.cur.Pos, "expected %s, got %q", what, p.cur.Lexeme)
	}
	return p.advance()
}

// track enforces maxAstNodes on every constructed node.
func (p *Parser) track(n *ast.Node, err error) (*ast.Node, error) {
	if err != nil {
		return nil, err
	}
	p.nodeCount++
	if p.nodeCount > p.limits.MaxAstNodes {
		return nil, p.errorf(n.Pos, "expression exceeds the maximum AST node count (%d)", p.limits.MaxAstNodes)
	}
	return n, nil
}

func (p *Parser) enterDepth(pos token.Position) error {
	p.depth++
	if p.depth > p.limits.MaxDepth {
		return p.errorf(pos, "expression exceeds the maximum nesting depth (%d)", p.limits.MaxDepth)
	}
	return nil
}

func (p *Parser) leaveDepth() { p.depth-- }

func (p *Parser) parseExpr() (*ast.Node, error) {
	return p.parseTernary()
}

// parseTernary implements the right-associative `?:` production: the
// then-branch and else-branch are each parsed by recursing into
// parseTernary itself, so `a ? b : c ? d : e` parses as
// `a ? b : (c ? d : e)`.
func (p *Parser) parseTernary() (*ast.Node, error) {
	pos := p.cur.Pos
	if err := p.enterDepth(pos); err != nil {
		return nil, err
	}
	defer p.leaveDepth()

	cond, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.cur.Type != token.QUESTION {
		return cond, nil
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	thenExpr, err := p.parseTernary()
	if err != nil {
		return nil, err
	}
	if err := p.expect(token.COLON, "':'"); err != nil {
		return nil, err
	}
	elseExpr, err := p.parseTernary()
	if err != nil {
		return nil, err
	}
	return p.track(ast.NewTernary(pos, cond, thenExpr, elseExpr), nil)
}

func (p *Parser) parseOr() (*ast.Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.cur.Type == token.OR {
		pos := p.cur.Pos
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left, err = p.track(ast.NewBinary(pos, ast.Or, left, right), nil)
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

func (p *Parser) parseAnd() (*ast.Node, error) {
	left, err := p.parseEquality()
	if err != nil {
		return nil, err
	}
	for p.cur.Type == token.AND {
		pos := p.cur.Pos
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseEquality()
		if err != nil {
			return nil, err
		}
		left, err = p.track(ast.NewBinary(pos, ast.And, left, right), nil)
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

var equalityOps = map[token.Type]ast.Op{token.EQ: ast.Eq, token.NE: ast.Ne}

func (p *Parser) parseEquality() (*ast.Node, error) {
	left, err := p.parseRelational()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := equalityOps[p.cur.Type]
		if !ok {
			return left, nil
		}
		pos := p.cur.Pos
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseRelational()
		if err != nil {
			return nil, err
		}
		left, err = p.track(ast.NewBinary(pos, op, left, right), nil)
		if err != nil {
			return nil, err
		}
	}
}

var relationalOps = map[token.Type]ast.Op{
	token.LT: ast.Lt, token.LE: ast.Le, token.GT: ast.Gt, token.GE: ast.Ge, token.IN: ast.In,
}

func (p *Parser) parseRelational() (*ast.Node, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := relationalOps[p.cur.Type]
		if !ok {
			return left, nil
		}
		pos := p.cur.Pos
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left, err = p.track(ast.NewBinary(pos, op, left, right), nil)
		if err != nil {
			return nil, err
		}
	}
}

var additiveOps = map[token.Type]ast.Op{token.PLUS: ast.Add, token.MINUS: ast.Sub}

func (p *Parser) parseAdditive() (*ast.Node, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := additiveOps[p.cur.Type]
		if !ok {
			return left, nil
		}
		pos := p.cur.Pos
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left, err = p.track(ast.NewBinary(pos, op, left, right), nil)
		if err != nil {
			return nil, err
		}
	}
}

var multiplicativeOps = map[token.Type]ast.Op{token.STAR: ast.Mul, token.SLASH: ast.Div, token.PERCENT: ast.Mod}

func (p *Parser) parseMultiplicative() (*ast.Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := multiplicativeOps[p.cur.Type]
		if !ok {
			return left, nil
		}
		pos := p.cur.Pos
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left, err = p.track(ast.NewBinary(pos, op, left, right), nil)
		if err != nil {
			return nil, err
		}
	}
}

func (p *Parser) parseUnary() (*ast.Node, error) {
	switch p.cur.Type {
	case token.BANG:
		pos := p.cur.Pos
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return p.track(ast.NewUnary(pos, ast.Not, operand), nil)
	case token.MINUS:
		pos := p.cur.Pos
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return p.track(ast.NewUnary(pos, ast.Neg, operand), nil)
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() (*ast.Node, error) {
	pos := p.cur.Pos
	if err := p.enterDepth(pos); err != nil {
		return nil, err
	}
	defer p.leaveDepth()

	node, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.cur.Type {
		case token.DOT, token.QUESTION_DOT:
			optional := p.cur.Type == token.QUESTION_DOT
			if optional && !p.optionalEnabled {
				return nil, p.errorf(p.cur.Pos, "optional field access '.?' requires optional types to be enabled")
			}
			fpos := p.cur.Pos
			if err := p.advance(); err != nil {
				return nil, err
			}
			if p.cur.Type != token.IDENTIFIER {
				return nil, p.errorf(p.cur.Pos, "expected identifier after '.', got %q", p.cur.Lexeme)
			}
			name := p.cur.Lexeme
			if err := p.advance(); err != nil {
				return nil, err
			}
			if p.cur.Type == token.LPAREN {
				args, err := p.parseArgList()
				if err != nil {
					return nil, err
				}
				node, err = p.buildRCall(fpos, name, node, args)
				if err != nil {
					return nil, err
				}
			} else {
				node, err = p.track(ast.NewField(fpos, optional, node, name), nil)
				if err != nil {
					return nil, err
				}
			}
		case token.LBRACKET:
			bpos := p.cur.Pos
			if err := p.advance(); err != nil {
				return nil, err
			}
			optional := false
			if p.cur.Type == token.QUESTION {
				optional = true
				if !p.optionalEnabled {
					return nil, p.errorf(p.cur.Pos, "optional index '[?]' requires optional types to be enabled")
				}
				if err := p.advance(); err != nil {
					return nil, err
				}
			}
			idx, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if err := p.expect(token.RBRACKET, "']'"); err != nil {
				return nil, err
			}
			op := ast.Index
			if optional {
				op = ast.IndexOpt
			}
			node, err = p.track(ast.NewBinary(bpos, op, node, idx), nil)
			if err != nil {
				return nil, err
			}
		default:
			return node, nil
		}
	}
}

func (p *Parser) parsePrimary() (*ast.Node, error) {
	pos := p.cur.Pos
	switch p.cur.Type {
	case token.INT, token.UINT, token.DOUBLE, token.STRING, token.BYTES, token.BOOLEAN:
		lit := p.cur.Literal
		if err := p.advance(); err != nil {
			return nil, err
		}
		return p.track(ast.NewValue(pos, lit), nil)
	case token.NULL_LIT:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return p.track(ast.NewValue(pos, nil), nil)
	case token.IDENTIFIER:
		name := p.cur.Lexeme
		if lexer.IsReserved(name) {
			return nil, p.errorf(pos, "%q is a reserved word and cannot be used as an identifier", name)
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.cur.Type == token.LPAREN {
			args, err := p.parseArgList()
			if err != nil {
				return nil, err
			}
			return p.buildCall(pos, name, args)
		}
		return p.track(ast.NewId(pos, name), nil)
	case token.LPAREN:
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(token.RPAREN, "')'"); err != nil {
			return nil, err
		}
		return inner, nil
	case token.LBRACKET:
		return p.parseListLiteral()
	case token.LBRACE:
		return p.parseMapLiteral()
	}
	return nil, p.errorf(pos, "unexpected token %q", p.cur.Lexeme)
}

// parseArgList parses a parenthesized, comma-separated argument list.
// p.cur must be LPAREN on entry; trailing commas and empty parens are
// permitted (spec.md §4.3).
func (p *Parser) parseArgList() ([]*ast.Node, error) {
	if err := p.advance(); err != nil { // consume '('
		return nil, err
	}
	var args []*ast.Node
	for p.cur.Type != token.RPAREN {
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if len(args) > p.limits.MaxCallArguments {
			return nil, p.errorf(arg.Pos, "call exceeds the maximum argument count (%d)", p.limits.MaxCallArguments)
		}
		if p.cur.Type == token.COMMA {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if err := p.expect(token.RPAREN, "')'"); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *Parser) parseListLiteral() (*ast.Node, error) {
	pos := p.cur.Pos
	if err := p.enterDepth(pos); err != nil {
		return nil, err
	}
	defer p.leaveDepth()
	if err := p.advance(); err != nil { // consume '['
		return nil, err
	}
	var elems []*ast.Node
	for p.cur.Type != token.RBRACKET {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
		if len(elems) > p.limits.MaxListElements {
			return nil, p.errorf(e.Pos, "list literal exceeds the maximum element count (%d)", p.limits.MaxListElements)
		}
		if p.cur.Type == token.COMMA {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if err := p.expect(token.RBRACKET, "']'"); err != nil {
		return nil, err
	}
	return p.track(ast.NewList(pos, elems), nil)
}

func (p *Parser) parseMapLiteral() (*ast.Node, error) {
	pos := p.cur.Pos
	if err := p.enterDepth(pos); err != nil {
		return nil, err
	}
	defer p.leaveDepth()
	if err := p.advance(); err != nil { // consume '{'
		return nil, err
	}
	var entries []ast.MapEntry
	for p.cur.Type != token.RBRACE {
		key, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(token.COLON, "':'"); err != nil {
			return nil, err
		}
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		entries = append(entries, ast.MapEntry{Key: key, Value: val})
		if len(entries) > p.limits.MaxMapEntries {
			return nil, p.errorf(key.Pos, "map literal exceeds the maximum entry count (%d)", p.limits.MaxMapEntries)
		}
		if p.cur.Type == token.COMMA {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if err := p.expect(token.RBRACE, "'}'"); err != nil {
		return nil, err
	}
	return p.track(ast.NewMap(pos, entries), nil)
}

// Package ast defines the expression AST as a single closed tagged union
// (spec.md §9 Design Note: "tagged unions over class hierarchies") rather
// than a Visitor-style open node hierarchy. A single Node type carries an
// Op tag, an op-specific Args payload, and mutable annotation slots filled
// in by the checker and read by the evaluator.
package ast

import (
	"github.com/cwbudde/go-cel/internal/token"
	"github.com/cwbudde/go-cel/internal/types"
	"github.com/cwbudde/go-cel/internal/values"
)

// Op is the tag discriminating a Node's Args payload and evaluation rule.
type Op int

const (
	Value Op = iota
	Id
	Field    // .
	FieldOpt // .?
	Index    // []
	IndexOpt // [?]
	Call
	RCall
	ListLit
	MapLit
	Ternary // ?:
	Or      // ||
	And     // &&
	Not     // !_
	Neg     // -_
	Eq
	Ne
	Lt
	Le
	Gt
	Ge
	In
	Add
	Sub
	Mul
	Div
	Mod
	Comprehension
	AccuValue      // @accu reference inside a comprehension step/result
	AccuInc        // accu + 1 (exists_one step)
	AccuPush       // accuPush(expr): append expr to the accumulator list
	PredicateGuard // wraps a quantifier predicate, converts non-bool to an error
	Has            // has(e): lazy field-chain reachability test
)

func (op Op) String() string {
	switch op {
	case Value:
		return "value"
	case Id:
		return "id"
	case Field:
		return "."
	case FieldOpt:
		return ".?"
	case Index:
		return "[]"
	case IndexOpt:
		return "[?]"
	case Call:
		return "call"
	case RCall:
		return "rcall"
	case ListLit:
		return "list"
	case MapLit:
		return "map"
	case Ternary:
		return "?:"
	case Or:
		return "||"
	case And:
		return "&&"
	case Not:
		return "!_"
	case Neg:
		return "-_"
	case Eq:
		return "=="
	case Ne:
		return "!="
	case Lt:
		return "<"
	case Le:
		return "<="
	case Gt:
		return ">"
	case Ge:
		return ">="
	case In:
		return "in"
	case Add:
		return "+"
	case Sub:
		return "-"
	case Mul:
		return "*"
	case Div:
		return "/"
	case Mod:
		return "%"
	case Comprehension:
		return "comprehension"
	case AccuValue:
		return "accuValue"
	case AccuInc:
		return "accuInc"
	case AccuPush:
		return "accuPush"
	case PredicateGuard:
		return "predicateGuard"
	case Has:
		return "has"
	}
	return "unknown"
}

// FunctionCandidates is the checker-cached overload bucket for a call or
// receiver-call node (registry.FunctionCandidates implements this).
// Defined here, not imported from internal/registry, to keep ast free of
// a dependency on the registry (which itself needs to refer to ast.Node
// when registering macros and typed function signatures).
type FunctionCandidates interface {
	FindMatch(receiver *types.TypeDecl, argTypes []*types.TypeDecl) (ret *types.TypeDecl, handler StaticHandler, ok bool)
}

// StaticHandler is a resolved operator or function implementation, cached
// on a Node once the checker has determined it statically (no dyn/
// placeholder ambiguity remained).
type StaticHandler func(args []values.Value) (values.Value, error)

// Node is the single AST node type. Exactly one of the Args-typed
// accessor sets below is meaningful for a given Op; Pos is always set.
// CheckedType, StaticHandlerFn, Candidates, ArgTypes, and MacroName are
// mutable annotation slots the checker fills and the evaluator reads —
// the AST is otherwise immutable after parsing.
type Node struct {
	Op   Op
	Pos  token.Position
	Args interface{}

	CheckedType     *types.TypeDecl
	StaticHandlerFn StaticHandler
	Candidates      FunctionCandidates
	ArgTypes        []*types.TypeDecl
	MacroName       string // non-empty if this node originated from macro expansion
}

// --- Args payload shapes, one per Op family ---

// LiteralArgs is the payload of a Value node: literal is one of nil,
// bool, string, int64, uint64, float64, or []byte.
type LiteralArgs struct {
	Literal interface{}
}

// IdArgs is the payload of an Id node.
type IdArgs struct {
	Name string
}

// FieldArgs is the payload of Field/FieldOpt nodes.
type FieldArgs struct {
	Receiver  *Node
	FieldName string
}

// BinaryArgs is the payload of Index/IndexOpt and all binary operator
// nodes (Or, And, Eq, Ne, Lt, Le, Gt, Ge, In, Add, Sub, Mul, Div, Mod).
type BinaryArgs struct {
	Left  *Node
	Right *Node
}

// UnaryArgs is the payload of Not/Neg nodes.
type UnaryArgs struct {
	Operand *Node
}

// CallArgs is the payload of a Call node.
type CallArgs struct {
	Name string
	Args []*Node
}

// RCallArgs is the payload of an RCall node.
type RCallArgs struct {
	Name     string
	Receiver *Node
	Args     []*Node
}

// ListArgs is the payload of a ListLit node.
type ListArgs struct {
	Elements []*Node
}

// MapEntry is one key/value pair of a MapLit node.
type MapEntry struct {
	Key   *Node
	Value *Node
}

// MapArgs is the payload of a MapLit node.
type MapArgs struct {
	Entries []MapEntry
}

// TernaryArgs is the payload of a Ternary node.
type TernaryArgs struct {
	Cond *Node
	Then *Node
	Else *Node
}

// ComprehensionArgs is the payload of a Comprehension node, the uniform
// desugaring target of all/exists/exists_one/map/filter (spec.md §4.6).
type ComprehensionArgs struct {
	Iterable        *Node
	IterVarName     string
	Init            *Node
	Condition       *Node // may be nil
	Step            *Node
	Result          *Node
	ErrorsAreFatal  bool
	MacroName       string // "all", "exists", "exists_one", "map", "filter"
}

// AccuPushArgs is the payload of an AccuPush node: the element expression
// to append to the running accumulator list.
type AccuPushArgs struct {
	Element *Node
}

// PredicateGuardArgs is the payload of a PredicateGuard node.
type PredicateGuardArgs struct {
	Predicate *Node
	MacroName string
}

// HasArgs is the payload of a Has node: the field-selection chain
// terminated by an identifier (e.g. has(a.b.c) chains a -> b -> c).
type HasArgs struct {
	Chain *Node // the whole final field-selection node; its Receiver is evaluated and its FieldName tested
}

// --- constructors ---

func NewValue(pos token.Position, literal interface{}) *Node {
	return &Node{Op: Value, Pos: pos, Args: LiteralArgs{Literal: literal}}
}

func NewId(pos token.Position, name string) *Node {
	return &Node{Op: Id, Pos: pos, Args: IdArgs{Name: name}}
}

func NewField(pos token.Position, optional bool, receiver *Node, name string) *Node {
	op := Field
	if optional {
		op = FieldOpt
	}
	return &Node{Op: op, Pos: pos, Args: FieldArgs{Receiver: receiver, FieldName: name}}
}

func NewBinary(pos token.Position, op Op, left, right *Node) *Node {
	return &Node{Op: op, Pos: pos, Args: BinaryArgs{Left: left, Right: right}}
}

func NewUnary(pos token.Position, op Op, operand *Node) *Node {
	return &Node{Op: op, Pos: pos, Args: UnaryArgs{Operand: operand}}
}

func NewCall(pos token.Position, name string, args []*Node) *Node {
	return &Node{Op: Call, Pos: pos, Args: CallArgs{Name: name, Args: args}}
}

func NewRCall(pos token.Position, name string, receiver *Node, args []*Node) *Node {
	return &Node{Op: RCall, Pos: pos, Args: RCallArgs{Name: name, Receiver: receiver, Args: args}}
}

func NewList(pos token.Position, elements []*Node) *Node {
	return &Node{Op: ListLit, Pos: pos, Args: ListArgs{Elements: elements}}
}

func NewMap(pos token.Position, entries []MapEntry) *Node {
	return &Node{Op: MapLit, Pos: pos, Args: MapArgs{Entries: entries}}
}

func NewTernary(pos token.Position, cond, then, els *Node) *Node {
	return &Node{Op: Ternary, Pos: pos, Args: TernaryArgs{Cond: cond, Then: then, Else: els}}
}

func NewComprehension(pos token.Position, a ComprehensionArgs) *Node {
	return &Node{Op: Comprehension, Pos: pos, Args: a, MacroName: a.MacroName}
}

func NewAccuValue(pos token.Position) *Node {
	return &Node{Op: AccuValue, Pos: pos}
}

func NewAccuInc(pos token.Position) *Node {
	return &Node{Op: AccuInc, Pos: pos}
}

func NewAccuPush(pos token.Position, element *Node) *Node {
	return &Node{Op: AccuPush, Pos: pos, Args: AccuPushArgs{Element: element}}
}

func NewPredicateGuard(pos token.Position, predicate *Node, macroName string) *Node {
	return &Node{Op: PredicateGuard, Pos: pos, Args: PredicateGuardArgs{Predicate: predicate, MacroName: macroName}, MacroName: macroName}
}

func NewHas(pos token.Position, chain *Node) *Node {
	return &Node{Op: Has, Pos: pos, Args: HasArgs{Chain: chain}, MacroName: "has"}
}

// CountNodes returns the number of nodes in the subtree rooted at n,
// used by the parser to enforce maxAstNodes (spec.md §4.3).
func CountNodes(n *Node) int {
	if n == nil {
		return 0
	}
	count := 1
	switch a := n.Args.(type) {
	case FieldArgs:
		count += CountNodes(a.Receiver)
	case BinaryArgs:
		count += CountNodes(a.Left) + CountNodes(a.Right)
	case UnaryArgs:
		count += CountNodes(a.Operand)
	case CallArgs:
		for _, arg := range a.Args {
			count += CountNodes(arg)
		}
	case RCallArgs:
		count += CountNodes(a.Receiver)
		for _, arg := range a.Args {
			count += CountNodes(arg)
		}
	case ListArgs:
		for _, e := range a.Elements {
			count += CountNodes(e)
		}
	case MapArgs:
		for _, e := range a.Entries {
			count += CountNodes(e.Key) + CountNodes(e.Value)
		}
	case TernaryArgs:
		count += CountNodes(a.Cond) + CountNodes(a.Then) + CountNodes(a.Else)
	case ComprehensionArgs:
		count += CountNodes(a.Iterable) + CountNodes(a.Init) + CountNodes(a.Condition) + CountNodes(a.Step) + CountNodes(a.Result)
	case AccuPushArgs:
		count += CountNodes(a.Element)
	case PredicateGuardArgs:
		count += CountNodes(a.Predicate)
	case HasArgs:
		count += CountNodes(a.Chain)
	}
	return count
}

// Package diagnostics implements the three error kinds (ParseError,
// TypeCheckError, EvaluationError) and the bit-exact caret-highlighted
// rendering format of spec.md §4.1, generalized from the teacher's
// CompilerError value-based error model.
package diagnostics

import (
	"fmt"
	"strings"

	"github.com/cwbudde/go-cel/internal/token"
)

// Kind is the error taxonomy of spec.md §7 — a classification, not a Go
// type — carried on every Error.
type Kind string

const (
	KindParse      Kind = "Parse"
	KindTypeCheck  Kind = "TypeCheck"
	KindEvaluation Kind = "Evaluation"
)

// Subkind further classifies Evaluation-kind errors, per spec.md §7.
type Subkind string

const (
	SubkindNone               Subkind = ""
	SubkindUnknownVariable    Subkind = "UnknownVariable"
	SubkindNoSuchKey          Subkind = "NoSuchKey"
	SubkindNoMatchingOverload Subkind = "NoMatchingOverload"
	SubkindConversion         Subkind = "Conversion"
	SubkindArithmetic         Subkind = "Arithmetic"
	SubkindIndexOutOfRange    Subkind = "IndexOutOfRange"
	SubkindPredicateNotBool   Subkind = "PredicateNotBoolean"
	SubkindBadPattern         Subkind = "BadPattern"
	SubkindCancelled          Subkind = "Cancelled"
)

// Error is the single error value produced by every stage of the
// pipeline. Source/Pos form the attach-point; WithAst is a
// once-only setter mirroring the teacher's immutable CompilerError
// construction (built once via NewCompilerError, never mutated after).
type Error struct {
	Kind    Kind
	Subkind Subkind
	Code    string
	Message string
	Cause   error

	Source    string
	File      string
	Pos       token.Position
	hasPos    bool
}

// New constructs an unattached error of the given kind and message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf is New with fmt.Sprintf-style formatting.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return New(kind, fmt.Sprintf(format, args...))
}

// Parse, TypeCheck, and Evaluation are convenience constructors for the
// three error kinds named in spec.md §4.1.
func Parse(format string, args ...interface{}) *Error {
	return Newf(KindParse, format, args...)
}

func TypeCheck(format string, args ...interface{}) *Error {
	return Newf(KindTypeCheck, format, args...)
}

func Evaluation(sub Subkind, format string, args ...interface{}) *Error {
	e := Newf(KindEvaluation, format, args...)
	e.Subkind = sub
	return e
}

// WithCause attaches an underlying cause.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithCode attaches a short alphanumeric diagnostic code (e.g.
// "E-PARSE-001"), in the teacher's style.
func (e *Error) WithCode(code string) *Error {
	e.Code = code
	return e
}

// WithAst attaches source and position information. It is a once-only
// setter: once a position has been attached, subsequent calls are no-ops,
// so that an error rethrown through several stack frames keeps the
// innermost location (spec.md §4.1, §7 point 4).
func (e *Error) WithAst(source, file string, pos token.Position) *Error {
	if e.hasPos {
		return e
	}
	e.Source = source
	e.File = file
	e.Pos = pos
	e.hasPos = true
	return e
}

// HasPosition reports whether a position has been attached.
func (e *Error) HasPosition() bool { return e.hasPos }

// Error renders the bit-exact format from spec.md §4.1/§7:
//
//	<message>
//
//	> <line>|   <source-line>
//	<9+columnNum spaces>^
//
// When no position has been attached, only the bare message is
// returned.
func (e *Error) Error() string {
	if !e.hasPos {
		return e.Message
	}
	line := sourceLine(e.Source, e.Pos.Line)
	var b strings.Builder
	b.WriteString(e.Message)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "> %4d|   %s\n", e.Pos.Line, line)
	b.WriteString(strings.Repeat(" ", 9+e.Pos.Column))
	b.WriteString("^")
	return b.String()
}

// Unwrap exposes Cause to errors.Is/errors.As.
func (e *Error) Unwrap() error { return e.Cause }

// sourceLine returns the bytes between the two nearest line breaks around
// the 1-based line number wanted.
func sourceLine(source string, wantLine int) string {
	lines := strings.Split(source, "\n")
	idx := wantLine - 1
	if idx < 0 || idx >= len(lines) {
		return ""
	}
	return lines[idx]
}

// FormatColor is an [AMBIENT] convenience for the CLI: the same
// single-line caret rendering, with the message and caret colorized,
// generalized from the teacher's CompilerError.Format(color bool) — never
// called by Error() itself, which always stays plain so consumers that
// parse the message stay bit-exact.
func (e *Error) FormatColor() string {
	if !e.hasPos {
		return "\x1b[31m" + e.Message + "\x1b[0m"
	}
	line := sourceLine(e.Source, e.Pos.Line)
	var b strings.Builder
	fmt.Fprintf(&b, "\x1b[31m%s\x1b[0m\n\n", e.Message)
	fmt.Fprintf(&b, "> %4d|   %s\n", e.Pos.Line, line)
	b.WriteString(strings.Repeat(" ", 9+e.Pos.Column))
	b.WriteString("\x1b[33m^\x1b[0m")
	return b.String()
}

// FormatContext is an [AMBIENT] convenience for the CLI: a wider
// rendering that also shows one line of context before and after the
// error line, generalized from the teacher's FormatWithContext.
func (e *Error) FormatContext() string {
	if !e.hasPos {
		return e.Message
	}
	lines := strings.Split(e.Source, "\n")
	idx := e.Pos.Line - 1
	var b strings.Builder
	b.WriteString(e.Message)
	b.WriteString("\n\n")
	if idx-1 >= 0 {
		fmt.Fprintf(&b, "  %4d|   %s\n", e.Pos.Line-1, lines[idx-1])
	}
	fmt.Fprintf(&b, "> %4d|   %s\n", e.Pos.Line, lines[idx])
	b.WriteString(strings.Repeat(" ", 9+e.Pos.Column))
	b.WriteString("^\n")
	if idx+1 < len(lines) {
		fmt.Fprintf(&b, "  %4d|   %s\n", e.Pos.Line+1, lines[idx+1])
	}
	return b.String()
}

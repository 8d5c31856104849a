package diagnostics

import (
	"testing"

	"github.com/cwbudde/go-cel/internal/token"
	"github.com/gkampitakis/go-snaps/snaps"
)

// TestCaretRenderingSnapshots locks down the exact byte shape of the three
// caret-highlighted renderings (plain, colorized, with-context) across the
// three error kinds, the way the teacher's fixture harness snapshots full
// VM output instead of asserting on substrings.
func TestCaretRenderingSnapshots(t *testing.T) {
	cases := []struct {
		name string
		err  *Error
	}{
		{
			name: "parse_unexpected_token",
			err: Parse("unexpected token %q", "}").
				WithAst("x + }", "<input>", token.Position{Line: 1, Column: 4}),
		},
		{
			name: "type_check_unknown_variable",
			err: TypeCheck("unknown variable: foo").
				WithAst("1 + foo", "<input>", token.Position{Line: 1, Column: 4}),
		},
		{
			name: "evaluation_division_by_zero",
			err: Evaluation(SubkindArithmetic, "division by zero").
				WithAst("a / b", "<input>", token.Position{Line: 1, Column: 2}),
		},
		{
			name: "multiline_context",
			err: Parse("bad token").
				WithAst("line one\nline two\nline three", "<input>", token.Position{Line: 2, Column: 5}),
		},
	}

	for _, tc := range cases {
		snaps.MatchSnapshot(t, tc.name+"/plain", tc.err.Error())
		snaps.MatchSnapshot(t, tc.name+"/color", tc.err.FormatColor())
		snaps.MatchSnapshot(t, tc.name+"/context", tc.err.FormatContext())
	}
}

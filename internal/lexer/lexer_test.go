package lexer

import (
	"testing"

	"github.com/cwbudde/go-cel/internal/token"
)

func scanAll(t *testing.T, input string) []token.Token {
	t.Helper()
	l := New(input)
	var toks []token.Token
	for {
		tok, err := l.NextToken()
		if err != nil {
			t.Fatalf("NextToken() error for %q: %v", input, err)
		}
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	return toks
}

func TestNextTokenOperators(t *testing.T) {
	input := `== != <= >= && || .? < > + - * / % ! . , : ( ) { } [ ] ?`
	want := []token.Type{
		token.EQ, token.NE, token.LE, token.GE, token.AND, token.OR, token.QUESTION_DOT,
		token.LT, token.GT, token.PLUS, token.MINUS, token.STAR, token.SLASH, token.PERCENT,
		token.BANG, token.DOT, token.COMMA, token.COLON, token.LPAREN, token.RPAREN,
		token.LBRACE, token.RBRACE, token.LBRACKET, token.RBRACKET, token.QUESTION,
		token.EOF,
	}
	toks := scanAll(t, input)
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(toks), len(want), toks)
	}
	for i, tt := range want {
		if toks[i].Type != tt {
			t.Errorf("token %d: got %s, want %s", i, toks[i].Type, tt)
		}
	}
}

func TestNextTokenNumbers(t *testing.T) {
	cases := []struct {
		input   string
		wantTy  token.Type
		literal interface{}
	}{
		{"42", token.INT, int64(42)},
		{"42u", token.UINT, uint64(42)},
		{"42U", token.UINT, uint64(42)},
		{"0x2A", token.INT, int64(42)},
		{"0x2Au", token.UINT, uint64(42)},
		{"3.14", token.DOUBLE, 3.14},
		{"1e10", token.DOUBLE, 1e10},
		{"1.5e-3", token.DOUBLE, 1.5e-3},
	}
	for _, c := range cases {
		toks := scanAll(t, c.input)
		if len(toks) != 2 {
			t.Fatalf("%q: got %d tokens, want 2", c.input, len(toks))
		}
		if toks[0].Type != c.wantTy {
			t.Errorf("%q: got type %s, want %s", c.input, toks[0].Type, c.wantTy)
		}
		if toks[0].Literal != c.literal {
			t.Errorf("%q: got literal %v, want %v", c.input, toks[0].Literal, c.literal)
		}
	}
}

func TestNextTokenIntegerOverflow(t *testing.T) {
	l := New("9223372036854775808") // math.MaxInt64 + 1
	_, err := l.NextToken()
	if err == nil {
		t.Fatalf("expected overflow error, got nil")
	}
}

func TestNextTokenStrings(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{`"hello"`, "hello"},
		{`'hello'`, "hello"},
		{`"a\nb"`, "a\nb"},
		{`"\x41"`, "A"},
		{`"\101"`, "A"},
		{`"A"`, "A"},
		{`"""multi
line"""`, "multi\nline"},
	}
	for _, c := range cases {
		toks := scanAll(t, c.input)
		if toks[0].Type != token.STRING {
			t.Fatalf("%q: got type %s, want STRING", c.input, toks[0].Type)
		}
		if toks[0].Literal != c.want {
			t.Errorf("%q: got %q, want %q", c.input, toks[0].Literal, c.want)
		}
	}
}

func TestNextTokenRawAndBytes(t *testing.T) {
	toks := scanAll(t, `r"a\nb"`)
	if toks[0].Type != token.STRING || toks[0].Literal != `a\nb` {
		t.Errorf("raw string: got %#v", toks[0])
	}

	toks = scanAll(t, `b"ab"`)
	if toks[0].Type != token.BYTES {
		t.Fatalf("got type %s, want BYTES", toks[0].Type)
	}
	got, ok := toks[0].Literal.([]byte)
	if !ok || string(got) != "ab" {
		t.Errorf("bytes literal: got %#v", toks[0].Literal)
	}
}

func TestNextTokenBytesHighByteEscape(t *testing.T) {
	for _, input := range []string{`b"\xff"`, `b"\377"`} {
		toks := scanAll(t, input)
		if toks[0].Type != token.BYTES {
			t.Fatalf("%s: got type %s, want BYTES", input, toks[0].Type)
		}
		got, ok := toks[0].Literal.([]byte)
		if !ok || len(got) != 1 || got[0] != 0xFF {
			t.Errorf("%s: got %#v, want single byte 0xFF", input, toks[0].Literal)
		}
	}
}

func TestNextTokenBytesRejectsUnicodeEscape(t *testing.T) {
	l := New(`b"\` + `u0041"`)
	_, err := l.NextToken()
	if err == nil {
		t.Fatalf("expected error for \\u escape in bytes literal")
	}
}

func TestNextTokenIdentifiersAndKeywords(t *testing.T) {
	toks := scanAll(t, "foo true false null in bar")
	want := []token.Type{
		token.IDENTIFIER, token.BOOLEAN, token.BOOLEAN, token.NULL_LIT, token.IN,
		token.IDENTIFIER, token.EOF,
	}
	for i, tt := range want {
		if toks[i].Type != tt {
			t.Errorf("token %d: got %s, want %s", i, toks[i].Type, tt)
		}
	}
}

func TestIsReserved(t *testing.T) {
	if !IsReserved("let") {
		t.Errorf("expected 'let' to be reserved")
	}
	if IsReserved("foo") {
		t.Errorf("did not expect 'foo' to be reserved")
	}
}

func TestNextTokenLineAndColumn(t *testing.T) {
	l := New("a\nbb")
	first, _ := l.NextToken()
	if first.Pos.Line != 1 || first.Pos.Column != 0 {
		t.Errorf("got %+v, want line 1 col 0", first.Pos)
	}
	second, _ := l.NextToken()
	if second.Pos.Line != 2 || second.Pos.Column != 0 {
		t.Errorf("got %+v, want line 2 col 0", second.Pos)
	}
}

package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, src string) []Token {
	t.Helper()
	l := New(src, "test.busy")
	var out []Token
	for {
		tok := l.Next()
		out = append(out, tok)
		if tok.Type == EOF {
			break
		}
	}
	return out
}

func TestIdentifierAndKeyword(t *testing.T) {
	toks := collect(t, "define foo")
	require.Len(t, toks, 3)
	assert.Equal(t, DEFINE, toks[0].Type)
	assert.Equal(t, IDENT, toks[1].Type)
	assert.Equal(t, "foo", toks[1].Literal)
}

func TestIntegerAndHex(t *testing.T) {
	toks := collect(t, "123 0x1F")
	assert.Equal(t, INT, toks[0].Type)
	assert.Equal(t, "123", toks[0].Literal)
	assert.Equal(t, INT, toks[1].Type)
	assert.Equal(t, "0x1F", toks[1].Literal)
}

func TestRealNumber(t *testing.T) {
	toks := collect(t, "3.14 2e10 1.5e-3")
	assert.Equal(t, REAL, toks[0].Type)
	assert.Equal(t, REAL, toks[1].Type)
	assert.Equal(t, REAL, toks[2].Type)
}

func TestStringEscapes(t *testing.T) {
	toks := collect(t, `"a\"b\\c"`)
	assert.Equal(t, STRING, toks[0].Type)
	assert.Equal(t, `a"b\c`, toks[0].Literal)
}

func TestSymbolLiteral(t *testing.T) {
	toks := collect(t, "`foo $bar")
	assert.Equal(t, SYMBOL, toks[0].Type)
	assert.Equal(t, "`foo", toks[0].Literal)
	assert.Equal(t, SYMBOL, toks[1].Type)
	assert.Equal(t, "$bar", toks[1].Literal)
}

func TestAbsolutePath(t *testing.T) {
	toks := collect(t, "//src/foo.c")
	assert.Equal(t, PATH, toks[0].Type)
	assert.Equal(t, "//src/foo.c", toks[0].Literal)
}

func TestRelativePath(t *testing.T) {
	toks := collect(t, "./foo.c ../bar/baz.c")
	assert.Equal(t, PATH, toks[0].Type)
	assert.Equal(t, "./foo.c", toks[0].Literal)
	assert.Equal(t, PATH, toks[1].Type)
	assert.Equal(t, "../bar/baz.c", toks[1].Literal)
}

func TestQuotedPathWithSpaces(t *testing.T) {
	toks := collect(t, `'my file.c'`)
	assert.Equal(t, PATH, toks[0].Type)
	assert.Equal(t, "my file.c", toks[0].Literal)
}

func TestLineComment(t *testing.T) {
	toks := collect(t, "var x = 1 # trailing comment\nvar y = 2")
	var kinds []TokenType
	for _, tk := range toks {
		kinds = append(kinds, tk.Type)
	}
	assert.Contains(t, kinds, VAR)
	assert.NotContains(t, kinds, COMMENT)
}

func TestNestedBlockComment(t *testing.T) {
	toks := collect(t, "var /* outer /* inner */ still-outer */ x = 1")
	assert.Equal(t, VAR, toks[0].Type)
	assert.Equal(t, IDENT, toks[1].Type)
	assert.Equal(t, "x", toks[1].Literal)
}

func TestOperatorsLongestMatch(t *testing.T) {
	toks := collect(t, ":= == != <= >= && || += -= *=")
	want := []TokenType{DEFINEQ, EQ, NEQ, LTE, GTE, AND, OR, PLUSEQ, MINUSEQ, STAREQ, EOF}
	var got []TokenType
	for _, tk := range toks {
		got = append(got, tk.Type)
	}
	assert.Equal(t, want, got)
}

func TestPeekDoesNotConsume(t *testing.T) {
	l := New("a b c", "test.busy")
	second := l.Peek(2)
	assert.Equal(t, "b", second.Literal)
	first := l.Next()
	assert.Equal(t, "a", first.Literal)
	assert.Equal(t, "b", l.Next().Literal)
	assert.Equal(t, "c", l.Next().Literal)
}

func TestLoneAmpersandLexesAsAmp(t *testing.T) {
	toks := collect(t, "& &&")
	assert.Equal(t, AMP, toks[0].Type)
	assert.Equal(t, AND, toks[1].Type)
}

package hilex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/busy-build/busy/internal/lexer"
)

func TestNextPassesThroughRootTokens(t *testing.T) {
	h := Open("var x = 1", "root.busy")
	var kinds []lexer.TokenType
	for {
		tok, diag := h.Next()
		require.Nil(t, diag)
		kinds = append(kinds, tok.Type)
		if tok.Type == lexer.EOF {
			break
		}
	}
	assert.Equal(t, []lexer.TokenType{lexer.VAR, lexer.IDENT, lexer.ASSIGN, lexer.INT, lexer.EOF}, kinds)
}

func TestArgumentSubstitution(t *testing.T) {
	h := Open("a + b", "root.busy")
	chain := Chain{lexer.NewToken(lexer.INT, "42", 1, 1, "call.busy")}
	h.AddArg("a", chain)

	tok, diag := h.Next()
	require.Nil(t, diag)
	assert.Equal(t, lexer.INT, tok.Type)
	assert.Equal(t, "42", tok.Literal)
	assert.Equal(t, "call.busy", tok.File)

	tok, diag = h.Next()
	require.Nil(t, diag)
	assert.Equal(t, lexer.PLUS, tok.Type)

	tok, diag = h.Next()
	require.Nil(t, diag)
	assert.Equal(t, lexer.IDENT, tok.Type)
	assert.Equal(t, "b", tok.Literal)
}

func TestPeekFIFOReplay(t *testing.T) {
	h := Open("a b c", "root.busy")
	second, diag := h.Peek(2)
	require.Nil(t, diag)
	assert.Equal(t, "b", second.Literal)

	first, diag := h.Next()
	require.Nil(t, diag)
	assert.Equal(t, "a", first.Literal)

	tok, _ := h.Next()
	assert.Equal(t, "b", tok.Literal)
	tok, _ = h.Next()
	assert.Equal(t, "c", tok.Literal)
}

func TestIdentConcatFusion(t *testing.T) {
	h := Open("foo & bar rest", "root.busy")
	tok, diag := h.Next()
	require.Nil(t, diag)
	assert.Equal(t, lexer.IDENT, tok.Type)
	assert.Equal(t, "foobar", tok.Literal)

	tok, diag = h.Next()
	require.Nil(t, diag)
	assert.Equal(t, "rest", tok.Literal)
}

func TestDanglingAmpersandIsError(t *testing.T) {
	h := Open("foo & 1", "root.busy")
	_, diag := h.Peek(3)
	require.NotNil(t, diag)
	assert.Equal(t, "LEX006", diag.Code)
}

func TestDepthLimitExceeded(t *testing.T) {
	h := Open("a", "root.busy")
	// The root frame counts toward MaxDepth.
	for i := 0; i < MaxDepth-1; i++ {
		_, ok := h.openFrame("a", "f.busy", 1, 1)
		require.True(t, ok)
	}
	_, ok := h.openFrame("a", "f.busy", 1, 1)
	assert.False(t, ok)
}

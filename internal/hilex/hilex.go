// Package hilex implements BUSY's hierarchical lexer: a stack of scanners
// over internal/lexer, used to splice macro-argument token chains into
// the token stream without losing original source positions.
package hilex

import (
	"strings"

	"github.com/busy-build/busy/internal/errors"
	"github.com/busy-build/busy/internal/lexer"
)

// MaxDepth is the deepest the scanner stack may grow.
const MaxDepth = 20

// Chain is a captured run of tokens bound to a macro parameter name.
type Chain []lexer.Token

// joinChain renders a Chain back into source text, tokens space-joined, so
// it can be re-lexed as the body of an inner scanner frame.
func joinChain(c Chain) string {
	parts := make([]string, len(c))
	for i, tok := range c {
		parts[i] = tok.Literal
	}
	return strings.Join(parts, " ")
}

type frame struct {
	lex        *lexer.Lexer
	sourceName string
	isRoot     bool
	originLine int
	originCol  int
	args       map[string]Chain
}

// translate maps a position inside this frame's scanner back to the
// position it logically occupies in the enclosing expansion: only the
// first logical row absorbs the column offset, later rows only shift by
// row.
func (f *frame) translate(line, col int) (int, int) {
	if f.isRoot {
		return line, col
	}
	if line == 1 {
		return f.originLine, f.originCol + col - 1
	}
	return f.originLine + line - 1, col
}

// HiLexer is the hierarchical lexer: a stack of frames plus a FIFO of
// already-scanned tokens for Peek.
type HiLexer struct {
	stack   []*frame
	arena   *Arena
	peekBuf []lexer.Token
}

// Open creates a HiLexer over buf with one root frame named sourceName.
// buf should already have passed through lexer.Normalize.
func Open(buf, sourceName string) *HiLexer {
	h := &HiLexer{arena: NewArena()}
	h.stack = []*frame{{
		lex:        lexer.New(buf, sourceName),
		sourceName: sourceName,
		isRoot:     true,
		args:       map[string]Chain{},
	}}
	return h
}

// Arena exposes the hilex's string arena for diagnostics and tests.
func (h *HiLexer) Arena() *Arena { return h.arena }

// Depth reports how many scanner frames are currently active.
func (h *HiLexer) Depth() int { return len(h.stack) }

// openFrame pushes a new inner scanner over text, logically positioned at
// (originLine, originCol) in sourceName.
func (h *HiLexer) openFrame(text, sourceName string, originLine, originCol int) (*errors.Diagnostic, bool) {
	if len(h.stack) >= MaxDepth {
		pos := errors.Pos{File: sourceName, Line: originLine, Column: originCol}
		return errors.New(errors.LEX007, pos, "macro expansion nesting exceeds %d levels", MaxDepth), false
	}
	h.stack = append(h.stack, &frame{
		lex:        lexer.New(text, sourceName),
		sourceName: sourceName,
		originLine: originLine,
		originCol:  originCol,
		args:       map[string]Chain{},
	})
	return nil, true
}

// AddArg installs a substitution for name in the current (innermost)
// frame, so the next unqualified occurrence of name expands to chain.
func (h *HiLexer) AddArg(name string, chain Chain) {
	top := h.stack[len(h.stack)-1]
	top.args[name] = chain
}

// Expand pushes a new frame over text (a macro's captured body) at the
// given logical origin, with args pre-bound as parameter substitutions,
// and returns whether the push succeeded.
func (h *HiLexer) Expand(text, sourceName string, originLine, originCol int, args map[string]Chain) (*errors.Diagnostic, bool) {
	diag, ok := h.openFrame(text, sourceName, originLine, originCol)
	if !ok {
		return diag, false
	}
	top := h.stack[len(h.stack)-1]
	for name, chain := range args {
		top.args[name] = chain
	}
	return nil, true
}

// Next returns the next logical token, descending into argument
// expansions and out of frame bookkeeping as frames pop. It drains the
// Peek FIFO first and applies the same identifier-concatenation fusion.
func (h *HiLexer) Next() (lexer.Token, *errors.Diagnostic) {
	tok, diag := h.Peek(1)
	if len(h.peekBuf) > 0 {
		tok = h.peekBuf[0]
		h.peekBuf = h.peekBuf[1:]
	}
	return tok, diag
}

func (h *HiLexer) rawNext() (lexer.Token, *errors.Diagnostic) {
	for {
		if len(h.stack) == 0 {
			return lexer.Token{Type: lexer.EOF}, nil
		}
		top := h.stack[len(h.stack)-1]
		tok := top.lex.Next()

		if tok.Type == lexer.EOF {
			if len(h.stack) > 1 {
				h.stack = h.stack[:len(h.stack)-1]
				continue
			}
			return tok, nil
		}

		if tok.Type == lexer.IDENT {
			if chain, ok := top.args[tok.Literal]; ok && len(chain) > 0 {
				text := h.arena.Alloc(joinChain(chain))
				first := chain[0]
				if diag, ok := h.openFrame(text, first.File, first.Line, first.Column); !ok {
					return lexer.Token{Type: lexer.ILLEGAL}, diag
				}
				continue
			}
		}

		line, col := top.translate(tok.Line, tok.Column)
		tok.Line, tok.Column = line, col
		tok.File = top.sourceName
		return tok, nil
	}
}

// Peek returns the token offset positions ahead (offset >= 1) without
// consuming it. It also performs identifier-concatenation fusion: a run of
// IDENT '&' IDENT collapses into one synthetic IDENT whose text is the
// concatenation and whose position is the left identifier's. A lone '&'
// not flanked by identifiers on both sides is a lexical error.
func (h *HiLexer) Peek(offset int) (lexer.Token, *errors.Diagnostic) {
	for {
		n := len(h.peekBuf)
		if n >= offset {
			last := h.peekBuf[n-1].Type
			if last != lexer.AMP && !(n == offset && last == lexer.IDENT) {
				break
			}
		}
		tok, diag := h.rawNext()
		if diag != nil {
			return tok, diag
		}
		h.peekBuf = append(h.peekBuf, tok)
		if diag := h.fuseTail(); diag != nil {
			return lexer.Token{Type: lexer.ILLEGAL}, diag
		}
	}
	return h.peekBuf[offset-1], nil
}

func (h *HiLexer) fuseTail() *errors.Diagnostic {
	n := len(h.peekBuf)
	if n >= 1 && h.peekBuf[n-1].Type == lexer.AMP {
		if n < 2 || h.peekBuf[n-2].Type != lexer.IDENT {
			amp := h.peekBuf[n-1]
			pos := errors.Pos{File: amp.File, Line: amp.Line, Column: amp.Column}
			return errors.New(errors.LEX006, pos, "'&' must be flanked by identifiers")
		}
		return nil
	}
	if n >= 3 {
		a, amp, b := h.peekBuf[n-3], h.peekBuf[n-2], h.peekBuf[n-1]
		if amp.Type == lexer.AMP {
			if a.Type != lexer.IDENT || b.Type != lexer.IDENT {
				pos := errors.Pos{File: amp.File, Line: amp.Line, Column: amp.Column}
				return errors.New(errors.LEX006, pos, "'&' must be flanked by identifiers")
			}
			fused := lexer.NewToken(lexer.IDENT, a.Literal+b.Literal, a.Line, a.Column, a.File)
			h.peekBuf = append(h.peekBuf[:n-3], fused)
		}
	}
	return nil
}

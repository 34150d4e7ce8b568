package parser

import (
	"github.com/busy-build/busy/internal/errors"
	"github.com/busy-build/busy/internal/hilex"
	"github.com/busy-build/busy/internal/lexer"
	"github.com/busy-build/busy/internal/symbol"
)

// parseMacroCallArgs captures the actual-argument chains of a macro call
// already positioned at '(': each argument is a run of tokens terminated
// by the next unmatched ',' or the matching ')', honoring nested
// parens/brackets/braces.
func (p *Parser) parseMacroCallArgs() [][]lexer.Token {
	p.expect(lexer.LPAREN)
	var args [][]lexer.Token
	var cur []lexer.Token
	depth := 0
	for {
		t := p.cur()
		if t.Type == lexer.EOF {
			p.fail(errors.LEX008, p.tokPos(t), "unterminated macro argument list")
			break
		}
		if depth == 0 && t.Type == lexer.RPAREN {
			break
		}
		if depth == 0 && t.Type == lexer.COMMA {
			args = append(args, cur)
			cur = nil
			p.advance()
			continue
		}
		switch t.Type {
		case lexer.LPAREN, lexer.LBRACKET, lexer.LBRACE:
			depth++
		case lexer.RPAREN, lexer.RBRACKET, lexer.RBRACE:
			depth--
		}
		cur = append(cur, t)
		p.advance()
	}
	if len(cur) > 0 || len(args) > 0 {
		args = append(args, cur)
	}
	p.expect(lexer.RPAREN)
	return args
}

// callMacro parses a call's argument list as raw chains and expands decl's
// body over them, in place of the evaluated-argument dispatch path used
// for built-ins.
func (p *Parser) callMacro(decl *symbol.Decl) {
	chains := p.parseMacroCallArgs()
	bound := map[string]hilex.Chain{}
	for i, paramName := range decl.Symbols {
		if i < len(chains) {
			bound[paramName] = hilex.Chain(chains[i])
		}
	}
	p.runMacroBody(decl, bound)
}

// runMacroBody pushes a hilex frame over decl's captured body text with
// args bound, then re-enters the statement grammar one construct at a
// time until the pushed frame (and any it opened for argument
// substitution) has fully unwound back to the caller's depth. hilex pops
// frames transparently on EOF, so depth is the only visible signal that
// the expansion is exhausted.
func (p *Parser) runMacroBody(decl *symbol.Decl, args map[string]hilex.Chain) {
	diag, ok := p.hl.Expand(decl.Code, decl.BodySource, decl.BodyRow, decl.BodyCol, args)
	if !ok {
		p.errs = append(p.errs, diag)
		return
	}
	depthBefore := p.hl.Depth() - 1
	for p.hl.Depth() > depthBefore && !p.at(lexer.EOF) {
		switch p.cur().Type {
		case lexer.VAR, lexer.LET, lexer.PARAM:
			p.parseVarDecl()
		case lexer.TYPE:
			p.parseTypeDecl()
		case lexer.SUBDIR, lexer.SUBMOD, lexer.SUBMODULE:
			p.parseSubmodule()
		case lexer.DEFINE:
			p.parseMacroDef()
		case lexer.SEMICOLON:
			p.advance()
		case lexer.IF:
			p.parseCond()
		default:
			p.parseStatement()
		}
	}
}

// Package parser implements BUSY's combined parser/evaluator: there is
// no separate execution pass, declarations are inserted and expressions
// evaluated as the token stream is consumed.
package parser

import (
	"fmt"

	"github.com/busy-build/busy/internal/busymod"
	"github.com/busy-build/busy/internal/errors"
	"github.com/busy-build/busy/internal/hilex"
	"github.com/busy-build/busy/internal/lexer"
	"github.com/busy-build/busy/internal/paramtable"
	"github.com/busy-build/busy/internal/symbol"
)

// Parser walks a hierarchical token stream, building a Decl/Instance tree
// and evaluating expressions inline, in a single-pass, error-accumulating
// recursive-descent style.
type Parser struct {
	hl      *hilex.HiLexer
	params  *paramtable.Table
	modules *busymod.Loader
	errs    []*errors.Diagnostic

	scopes    []*symbol.Decl // innermost scope last
	insts     []*symbol.Instance
	ancestors []string // absolute filesystem dirs of modules on the current include chain

	skipDepth int // >0 while parsing an untaken cond branch

	// RootBuildDir is the logical directory build_dir()/trycompile-adjacent
	// builtins join against; "." when unset.
	RootBuildDir string
}

// New creates a Parser reading src under sourceName, with parameter table
// params and module loader modules for resolving subdir/submod/submodule
// declarations. src passes through lexer.Normalize first, so a BOM or
// non-NFC source file lexes identically to its normalized equivalent
// regardless of how it arrived (root file or submodule include).
func New(src, sourceName string, params *paramtable.Table, modules *busymod.Loader) *Parser {
	normalized := string(lexer.Normalize([]byte(src)))
	return &Parser{
		hl:      hilex.Open(normalized, sourceName),
		params:  params,
		modules: modules,
	}
}

// Errors returns every fatal diagnostic accumulated while parsing.
func (p *Parser) Errors() []*errors.Diagnostic { return p.errs }

func (p *Parser) fail(code string, pos errors.Pos, format string, args ...interface{}) {
	p.errs = append(p.errs, errors.New(code, pos, format, args...))
}

func (p *Parser) tokPos(t lexer.Token) errors.Pos {
	return errors.Pos{File: t.File, Line: t.Line, Column: t.Column}
}

// cur returns the token not yet consumed (hilex.Peek's offset 1).
func (p *Parser) cur() lexer.Token {
	t, diag := p.hl.Peek(1)
	if diag != nil {
		p.errs = append(p.errs, diag)
	}
	return t
}

// peekAt returns the token `ahead` positions beyond cur (peekAt(1) is the
// token right after cur).
func (p *Parser) peekAt(ahead int) lexer.Token {
	t, diag := p.hl.Peek(1 + ahead)
	if diag != nil {
		p.errs = append(p.errs, diag)
	}
	return t
}

func (p *Parser) advance() lexer.Token {
	t, diag := p.hl.Next()
	if diag != nil {
		p.errs = append(p.errs, diag)
	}
	return t
}

// expect consumes the current token if it has type tt, else records a
// fatal diagnostic and returns the zero token.
func (p *Parser) expect(tt lexer.TokenType) lexer.Token {
	t := p.cur()
	if t.Type != tt {
		p.fail(errors.SEM002, p.tokPos(t), "expected %s, got %s %q", tt, t.Type, t.Literal)
		return lexer.Token{}
	}
	return p.advance()
}

func (p *Parser) at(tt lexer.TokenType) bool { return p.cur().Type == tt }

// skip reports whether the parser is currently inside an untaken cond
// branch; side-effecting evaluation must be suppressed but parsing and
// type-checking must still proceed.
func (p *Parser) skip() bool { return p.skipDepth > 0 }

func (p *Parser) pushScope(d *symbol.Decl, inst *symbol.Instance) {
	p.scopes = append(p.scopes, d)
	p.insts = append(p.insts, inst)
}

func (p *Parser) popScope() {
	p.scopes = p.scopes[:len(p.scopes)-1]
	p.insts = p.insts[:len(p.insts)-1]
}

func (p *Parser) currentScope() *symbol.Decl { return p.scopes[len(p.scopes)-1] }
func (p *Parser) currentInst() *symbol.Instance { return p.insts[len(p.insts)-1] }

// Parse parses one module: the BUSY file's top-level body. dir names
// the module being parsed (used for the qualified-name chain and for
// submodule resolution) and parent is its owning Decl, or nil at the root.
func Parse(src, sourceName string, params *paramtable.Table, modules *busymod.Loader, dir busymod.Dir, parent *symbol.Decl) (*symbol.Decl, []*errors.Diagnostic) {
	p := New(src, sourceName, params, modules)
	p.ancestors = append(p.ancestors, dir.FSPath)

	mod := symbol.NewDecl(symbol.ModuleDef, dir.DirName, symbol.Pos{File: sourceName})
	mod.Owner = parent
	mod.Dir = dir.Logical
	mod.RDir = dir.RDir
	mod.FSRDir = dir.FSPath
	mod.DirName = dir.DirName
	mod.Dummy = dir.Dummy

	inst := symbol.NewInstance(mod)
	mod.Inst = inst
	p.pushScope(mod, inst)
	defer p.popScope()

	installBuiltinClasses(mod)
	p.parseModuleBody()
	return mod, p.errs
}

func (p *Parser) parseModuleBody() {
	for !p.at(lexer.EOF) {
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
		case lexer.DOT, lexer.CARET, lexer.IDENT:
			p.parseStatement()
		default:
			t := p.cur()
			p.fail(errors.SEM002, p.tokPos(t), "unexpected token %s %q at module level", t.Type, t.Literal)
			p.advance()
		}
	}
}

// parseBody parses declarations/statements until it sees one of the
// stop token types (END or RBRACE depending on which bracketing style the
// enclosing construct used), without consuming the stop token.
func (p *Parser) parseBody(stop ...lexer.TokenType) {
	isStop := func(tt lexer.TokenType) bool {
		for _, s := range stop {
			if tt == s {
				return true
			}
		}
		return false
	}
	for !p.at(lexer.EOF) && !isStop(p.cur().Type) {
		switch p.cur().Type {
		case lexer.VAR, lexer.LET, lexer.PARAM:
			p.parseVarDecl()
		case lexer.TYPE:
			p.parseTypeDecl()
		case lexer.SEMICOLON:
			p.advance()
		case lexer.IF:
			p.parseCond()
		default:
			p.parseStatement()
		}
	}
}

// fatalSummary renders every accumulated diagnostic, one line per error,
// each followed by its macro-expansion trace.
func (p *Parser) fatalSummary() string {
	var out string
	for i, d := range p.errs {
		if i > 0 {
			out += "\n"
		}
		out += fmt.Sprintf("[%s] %s", d.Code, d.Report())
	}
	return out
}

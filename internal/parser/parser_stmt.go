package parser

import (
	"github.com/busy-build/busy/internal/errors"
	"github.com/busy-build/busy/internal/lexer"
	"github.com/busy-build/busy/internal/symbol"
	"github.com/busy-build/busy/internal/value"
)

// parseStatement implements `statement := assignment | proc_call` (cond is
// dispatched by the caller before reaching here, since it needs to see the
// leading 'if' without first committing to a designator).
func (p *Parser) parseStatement() {
	startTok := p.cur()
	decl, cur, inst, ok := p.parseDesignatorChain()

	switch p.cur().Type {
	case lexer.ASSIGN, lexer.DEFINEQ, lexer.PLUSEQ, lexer.MINUSEQ, lexer.STAREQ:
		op := p.advance()
		rhs := p.parseExpression()
		p.applyAssignment(startTok, decl, cur, inst, ok, op, rhs)
	case lexer.LPAREN:
		if decl != nil && decl.Kind == symbol.MacroDef {
			p.callMacro(decl)
			return
		}
		args := p.parseArgs()
		p.dispatchCall(decl, args)
	default:
		if p.at(lexer.SEMICOLON) {
			return
		}
		p.fail(errors.SEM002, p.tokPos(p.cur()), "expected assignment or call after designator")
	}
}

// applyAssignment implements `assignment := designator
// ('='|':='|'+='|'-='|'*=') expression`: it recomputes the value and
// stores it back through the same Instance/name pair the designator
// resolved through. Side effects are suppressed in skip_mode, but the
// expression is still evaluated above for type-checking.
func (p *Parser) applyAssignment(startTok lexer.Token, decl *symbol.Decl, cur value.Value, inst *symbol.Instance, ok bool, op lexer.Token, rhs value.Value) {
	if !ok || decl == nil {
		return
	}
	if decl.RW.ReadOnly() && decl.Visi != symbol.Private {
		p.fail(errors.SEM010, p.tokPos(startTok), "cannot assign to read-only declaration %q", decl.Name)
		return
	}

	next := rhs
	var err error
	switch op.Type {
	case lexer.PLUSEQ:
		next, err = value.Add(cur, rhs)
	case lexer.MINUSEQ:
		next, err = value.Sub(cur, rhs)
	case lexer.STAREQ:
		next, err = value.Mul(cur, rhs)
	}
	if err != nil {
		p.fail(errors.SEM003, p.tokPos(op), "%s", err.Error())
		return
	}

	if p.skip() {
		return
	}
	p.storeDeclValue(decl, next, inst)
}

// storeDeclValue writes val into the Instance owning decl. When inst is
// non-nil (a class-instance field or module member reached through a
// designator chain's derefMember hop), it writes there directly, since
// decl.Owner for such a hop is the shared ClassDecl/ModuleDef template
// rather than any particular instance. Otherwise it walks the scope stack
// for the Instance whose Decl matches decl.Owner.
func (p *Parser) storeDeclValue(decl *symbol.Decl, val value.Value, inst *symbol.Instance) {
	if inst != nil {
		inst.Set(decl.Name, val)
		return
	}
	for i := len(p.scopes) - 1; i >= 0; i-- {
		if p.scopes[i] == decl.Owner || p.scopes[i] == decl {
			p.insts[i].Set(decl.Name, val)
			return
		}
	}
	if decl.Owner != nil && decl.Owner.Inst != nil {
		decl.Owner.Inst.Set(decl.Name, val)
	}
}

// parseCond implements the `cond` production in both its block-delimited
// forms: `if expr then body {elsif expr then body}
// [else body] end` and `if expr {body} [else (cond|{body})]`.
func (p *Parser) parseCond() {
	p.expect(lexer.IF)
	cond := p.parseExpression()
	taken := cond.Kind == value.Bool && cond.B

	if p.at(lexer.THEN) {
		p.advance()
		p.parseBranch(!taken, lexer.ELSIF, lexer.ELSE, lexer.END)
		resolved := taken
		for p.at(lexer.ELSIF) {
			p.advance()
			elifCond := p.parseExpression()
			branchTaken := !resolved && elifCond.Kind == value.Bool && elifCond.B
			p.expect(lexer.THEN)
			p.parseBranch(!branchTaken, lexer.ELSIF, lexer.ELSE, lexer.END)
			resolved = resolved || branchTaken
		}
		if p.at(lexer.ELSE) {
			p.advance()
			p.parseBranch(resolved, lexer.END)
		}
		p.expect(lexer.END)
		return
	}

	p.expect(lexer.LBRACE)
	p.parseBranch(!taken, lexer.RBRACE)
	p.expect(lexer.RBRACE)
	if p.at(lexer.ELSE) {
		p.advance()
		if p.at(lexer.IF) {
			p.parseBranchCond(taken)
		} else {
			p.expect(lexer.LBRACE)
			p.parseBranch(taken, lexer.RBRACE)
			p.expect(lexer.RBRACE)
		}
	}
}

// parseBranch parses one body, entering skip_mode if suppressed is true.
func (p *Parser) parseBranch(suppressed bool, stop ...lexer.TokenType) {
	if suppressed {
		p.skipDepth++
		defer func() { p.skipDepth-- }()
	}
	p.parseBody(stop...)
}

// parseBranchCond parses a nested `else if ...` clause under skip_mode
// when suppressed is true, without consuming a block delimiter first.
func (p *Parser) parseBranchCond(suppressed bool) {
	if suppressed {
		p.skipDepth++
		defer func() { p.skipDepth-- }()
	}
	p.parseCond()
}

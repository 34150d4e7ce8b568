package parser

import (
	"strconv"
	"strings"

	"github.com/busy-build/busy/internal/errors"
	"github.com/busy-build/busy/internal/lexer"
	"github.com/busy-build/busy/internal/symbol"
	"github.com/busy-build/busy/internal/value"
)

// lookup walks the scope chain innermost-first, then the builtin table,
// returning the named declaration (if any) and its current value.
func (p *Parser) lookup(name string) (*symbol.Decl, value.Value, bool) {
	for i := len(p.scopes) - 1; i >= 0; i-- {
		scope := p.scopes[i]
		if decl, ok := scope.Lookup(name); ok {
			v, _ := p.insts[i].Get(name)
			if vv, ok := v.(value.Value); ok {
				return decl, vv, true
			}
			return decl, value.Value{}, true
		}
	}
	if _, ok := builtinNames[name]; ok {
		return symbol.NewDecl(symbol.ProcDef, name, symbol.Pos{}), value.Value{}, true
	}
	return nil, value.Value{}, false
}

// parseExpression implements `expression := simple [ relop simple ]`
// : relational operators bind once, without chaining.
func (p *Parser) parseExpression() value.Value {
	left := p.parseSimple()
	if p.cur().RelPrecedence() == 0 {
		return left
	}
	op := p.advance()
	right := p.parseSimple()
	return p.applyRel(op, left, right)
}

func (p *Parser) applyRel(op lexer.Token, a, b value.Value) value.Value {
	switch op.Type {
	case lexer.EQ:
		return value.BoolV(value.Equal(a, b))
	case lexer.NEQ:
		return value.BoolV(!value.Equal(a, b))
	case lexer.LT:
		ok, err := value.Less(a, b)
		p.reportValueErr(op, err)
		return value.BoolV(ok)
	case lexer.GT:
		ok, err := value.Less(b, a)
		p.reportValueErr(op, err)
		return value.BoolV(ok)
	case lexer.LTE:
		gt, err := value.Less(b, a)
		p.reportValueErr(op, err)
		return value.BoolV(!gt)
	case lexer.GTE:
		lt, err := value.Less(a, b)
		p.reportValueErr(op, err)
		return value.BoolV(!lt)
	case lexer.IN:
		ok, err := value.In(a, b)
		p.reportValueErr(op, err)
		return value.BoolV(ok)
	default:
		return value.Value{}
	}
}

func (p *Parser) reportValueErr(op lexer.Token, err error) {
	if err != nil {
		p.fail(errors.SEM003, p.tokPos(op), "%s", err.Error())
	}
}

// parseSimple implements `simple := term { ('+'|'-'|'||') term }`.
func (p *Parser) parseSimple() value.Value {
	left := p.parseTerm()
	for p.cur().Type == lexer.PLUS || p.cur().Type == lexer.MINUS || p.cur().Type == lexer.OR {
		op := p.advance()
		right := p.parseTerm()
		switch op.Type {
		case lexer.PLUS:
			v, err := value.Add(left, right)
			p.reportValueErr(op, err)
			left = v
		case lexer.MINUS:
			v, err := value.Sub(left, right)
			p.reportValueErr(op, err)
			left = v
		case lexer.OR:
			if left.Kind != value.Bool || right.Kind != value.Bool {
				p.fail(errors.SEM003, p.tokPos(op), "operator || requires bool operands")
			}
			left = value.BoolV(left.B || right.B)
		}
	}
	return left
}

// parseTerm implements `term := factor { ('*'|'/'|'&&'|'%') factor }`.
func (p *Parser) parseTerm() value.Value {
	left := p.parseFactor()
	for p.cur().Type == lexer.STAR || p.cur().Type == lexer.SLASH ||
		p.cur().Type == lexer.AND || p.cur().Type == lexer.PERCENT {
		op := p.advance()
		right := p.parseFactor()
		switch op.Type {
		case lexer.STAR:
			v, err := value.Mul(left, right)
			p.reportValueErr(op, err)
			left = v
		case lexer.SLASH:
			v, err := value.Div(left, right)
			p.reportValueErr(op, err)
			left = v
		case lexer.PERCENT:
			v, err := value.Mod(left, right)
			p.reportValueErr(op, err)
			left = v
		case lexer.AND:
			if left.Kind != value.Bool || right.Kind != value.Bool {
				p.fail(errors.SEM003, p.tokPos(op), "operator && requires bool operands")
			}
			left = value.BoolV(left.B && right.B)
		}
	}
	return left
}

// parseFactor implements the factor production, including the
// parenthesized ternary `( expr ? a : b )`.
func (p *Parser) parseFactor() value.Value {
	t := p.cur()
	switch t.Type {
	case lexer.INT:
		p.advance()
		return value.IntV(parseIntLiteral(t.Literal))
	case lexer.REAL:
		p.advance()
		return value.RealV(parseRealLiteral(t.Literal))
	case lexer.STRING:
		p.advance()
		return value.StringV(t.Literal)
	case lexer.SYMBOL:
		p.advance()
		return value.SymbolV(t.Literal)
	case lexer.PATH:
		p.advance()
		return value.PathV(t.Literal)
	case lexer.TRUE:
		p.advance()
		return value.BoolV(true)
	case lexer.FALSE:
		p.advance()
		return value.BoolV(false)
	case lexer.PLUS:
		p.advance()
		return p.parseFactor()
	case lexer.MINUS:
		p.advance()
		v, err := value.Negate(p.parseFactor())
		p.reportValueErr(t, err)
		return v
	case lexer.NOT:
		p.advance()
		v, err := value.Not(p.parseFactor())
		p.reportValueErr(t, err)
		return v
	case lexer.LPAREN:
		p.advance()
		cond := p.parseExpression()
		if p.at(lexer.QUESTION) {
			p.advance()
			// Both arms are always parsed and type-checked. Outside
			// skip_mode the inactive arm's kind must be assignable to the
			// active arm's; under skip_mode, where values are not stored,
			// the two arms are not compared. Only the taken arm's value is
			// kept.
			a := p.parseExpression()
			p.expect(lexer.COLON)
			b := p.parseExpression()
			p.expect(lexer.RPAREN)
			if cond.Kind != value.Bool {
				p.fail(errors.SEM003, p.tokPos(t), "ternary condition must be bool")
				return a
			}
			if !p.skip() {
				active, inactive := a, b
				if !cond.B {
					active, inactive = b, a
				}
				if !value.AssignableTo(inactive.Kind, active.Kind) {
					p.fail(errors.SEM003, p.tokPos(t), "ternary arms differ in type: %s and %s", a.Kind, b.Kind)
				}
			}
			if cond.B {
				return a
			}
			return b
		}
		p.expect(lexer.RPAREN)
		return cond
	case lexer.LBRACKET:
		p.advance()
		var elems []value.Value
		for !p.at(lexer.RBRACKET) && !p.at(lexer.EOF) {
			elems = append(elems, p.parseExpression())
			if p.at(lexer.COMMA) {
				p.advance()
			}
		}
		p.expect(lexer.RBRACKET)
		return value.ListV(elems)
	case lexer.DOT, lexer.CARET, lexer.IDENT:
		return p.parseDesignatorExpr()
	default:
		p.fail(errors.SEM002, p.tokPos(t), "unexpected token %s %q in expression", t.Type, t.Literal)
		p.advance()
		return value.Value{}
	}
}

// parseDesignatorExpr resolves a designator as a value, optionally
// followed by a call's argument list (builtin or macro invocation).
func (p *Parser) parseDesignatorExpr() value.Value {
	decl, val, _, ok := p.parseDesignatorChain()
	if p.at(lexer.LPAREN) {
		if decl != nil && decl.Kind == symbol.MacroDef {
			p.callMacro(decl)
			return value.Value{}
		}
		args := p.parseArgs()
		return p.dispatchCall(decl, args)
	}
	if !ok {
		return val
	}
	return val
}

// parseDesignatorChain parses `('.'|'^'|ident) { '.' ident }` and returns
// the final hop's declaration (if it names one directly), its current
// value, and the live Instance that declaration's value actually lives
// in (for a class-instance field or module member reached through a
// dotted chain; nil for a bare scope-stack identifier, which an
// assignment instead locates by walking p.scopes/p.insts).
func (p *Parser) parseDesignatorChain() (*symbol.Decl, value.Value, *symbol.Instance, bool) {
	t := p.cur()
	var decl *symbol.Decl
	var val value.Value
	var inst *symbol.Instance
	var ok bool

	switch t.Type {
	case lexer.DOT:
		p.advance()
		decl = p.currentScope()
		val = value.Value{Kind: value.ClassInst, Inst: p.currentInst()}
		ok = true
		// `.field` is one dot total, not `..field`: the leading dot names
		// the current instance, and an identifier immediately following
		// it (no separating dot) is that instance's first field hop.
		if p.at(lexer.IDENT) {
			name := p.advance()
			decl, val, inst, ok = p.derefMember(decl, val, name, !p.at(lexer.DOT))
		}
	case lexer.CARET:
		p.advance()
		if len(p.scopes) >= 2 {
			decl = p.scopes[len(p.scopes)-2]
			val = value.Value{Kind: value.ModuleRef, Mod: decl}
		}
		ok = decl != nil
	case lexer.IDENT:
		p.advance()
		decl, val, ok = p.lookup(t.Literal)
		if !ok {
			p.fail(errors.SEM002, p.tokPos(t), "undefined identifier %q", t.Literal)
		}
	default:
		p.fail(errors.SEM002, p.tokPos(t), "expected designator, got %s", t.Type)
		p.advance()
		return nil, value.Value{}, nil, false
	}

	for p.at(lexer.DOT) {
		p.advance()
		name := p.expect(lexer.IDENT)
		decl, val, inst, ok = p.derefMember(decl, val, name, !p.at(lexer.DOT))
	}
	return decl, val, inst, ok
}

// derefMember implements one `.name` hop: a submodule member (ModuleDef
// child) or a class-instance field. Alongside the hop's declaration and
// value it returns the live Instance the hop was read from, so a
// subsequent assignment writes back into that same Instance instead of
// the shared ClassDecl/ModuleDef template the declaration is owned by.
// isFinal reports whether this is the last hop in the chain: visibility
// monotonicity requires every intermediate hop be strictly Public,
// reserving PublicDefault for the terminal hop only.
func (p *Parser) derefMember(base *symbol.Decl, baseVal value.Value, name lexer.Token, isFinal bool) (*symbol.Decl, value.Value, *symbol.Instance, bool) {
	if baseVal.Kind == value.ClassInst && baseVal.Inst != nil {
		v, ok := baseVal.Inst.Get(name.Literal)
		if !ok {
			p.fail(errors.SEM002, p.tokPos(name), "no field %q on instance", name.Literal)
			return nil, value.Value{}, nil, false
		}
		vv, _ := v.(value.Value)
		var fieldDecl *symbol.Decl
		if baseVal.Inst.Class != nil {
			fieldDecl, _ = baseVal.Inst.Class.Lookup(name.Literal)
		}
		return fieldDecl, vv, baseVal.Inst, true
	}
	if base != nil && base.Kind == symbol.ModuleDef {
		child, ok := base.Lookup(name.Literal)
		if !ok {
			p.fail(errors.SEM002, p.tokPos(name), "no member %q in module %q", name.Literal, base.Name)
			return nil, value.Value{}, nil, false
		}
		if child.Visi == symbol.Private {
			p.fail(errors.SEM004, p.tokPos(name), "%q is private to module %q", name.Literal, base.Name)
		} else if !isFinal && child.Visi != symbol.Public {
			p.fail(errors.SEM004, p.tokPos(name), "%q is not public to module %q", name.Literal, base.Name)
		}
		var v value.Value
		if base.Inst != nil {
			if raw, found := base.Inst.Get(name.Literal); found {
				v, _ = raw.(value.Value)
			}
		}
		return child, v, base.Inst, true
	}
	p.fail(errors.SEM002, p.tokPos(name), "cannot dereference %q: not a module or instance", name.Literal)
	return nil, value.Value{}, nil, false
}

// parseArgs parses a parenthesized, comma-separated argument list already
// positioned at '('.
func (p *Parser) parseArgs() []value.Value {
	p.expect(lexer.LPAREN)
	var args []value.Value
	for !p.at(lexer.RPAREN) && !p.at(lexer.EOF) {
		args = append(args, p.parseExpression())
		if p.at(lexer.COMMA) {
			p.advance()
		}
	}
	p.expect(lexer.RPAREN)
	return args
}

func parseIntLiteral(lit string) int64 {
	base := 10
	s := lit
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		base = 16
		s = s[2:]
	}
	n, _ := strconv.ParseInt(s, base, 64)
	return n
}

func parseRealLiteral(lit string) float64 {
	f, _ := strconv.ParseFloat(lit, 64)
	return f
}

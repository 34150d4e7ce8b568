package parser

import (
	"strconv"
	"strings"

	"github.com/busy-build/busy/internal/busymod"
	"github.com/busy-build/busy/internal/errors"
	"github.com/busy-build/busy/internal/lexer"
	"github.com/busy-build/busy/internal/symbol"
	"github.com/busy-build/busy/internal/value"
)

// parseIdentDef implements `identdef := ident [ '!' | '*' | '-' ]`,
// returning the bare name and its visibility. The lexer has no dedicated
// token types for these suffixes in declaration position; it always
// emits NOT/STAR/MINUS regardless of where they appear, so the parser is
// what disambiguates them into a visibility marker here, immediately
// after an identdef's name, rather than treating them as operators.
func (p *Parser) parseIdentDef() (string, symbol.Visibility) {
	name := p.expect(lexer.IDENT)
	suffix := ""
	switch p.cur().Type {
	case lexer.NOT:
		p.advance()
		suffix = "!"
	case lexer.STAR:
		p.advance()
		suffix = "*"
	case lexer.MINUS:
		p.advance()
		suffix = "-"
	}
	return name.Literal, symbol.VisibilityFromSuffix(suffix)
}

// parseVarDecl implements `var_decl := ('var'|'let'|'param') identdef
// [ ':' typeref ] ( '{' body '}' | 'begin' body 'end' | ('='|':=') expr )`.
func (p *Parser) parseVarDecl() {
	kwTok := p.cur()
	var rw symbol.ReadWrite
	switch kwTok.Type {
	case lexer.VAR:
		rw = symbol.RWVar
	case lexer.LET:
		rw = symbol.RWLet
	case lexer.PARAM:
		rw = symbol.RWParam
	}
	p.advance()

	name, visi := p.parseIdentDef()
	decl := symbol.NewDecl(symbol.VarDecl, name, p.tokPosAsSymbolPos(kwTok))
	decl.RW = rw
	decl.Visi = visi

	if p.at(lexer.COLON) {
		p.advance()
		decl.Type = p.parseTyperef()
	}

	scope := p.currentScope()
	if err := scope.AddChild(decl); err != nil {
		p.fail(errors.SEM001, p.tokPos(kwTok), "%s", err.Error())
	}

	if (p.at(lexer.ASSIGN) || p.at(lexer.DEFINEQ)) && p.peekAt(1).Type == lexer.LBRACE {
		p.advance()
	}

	var initVal value.Value
	switch p.cur().Type {
	case lexer.LBRACE, lexer.BEGIN:
		brace := p.cur().Type == lexer.LBRACE
		p.advance()
		block := symbol.NewDecl(symbol.BlockDef, "", p.tokPosAsSymbolPos(kwTok))
		block.Owner = decl
		inst := symbol.NewInstance(decl)
		decl.Inst = inst
		if decl.Type != nil && decl.Type.Kind == symbol.ClassDecl {
			inst.Class = decl.Type
			zeroInitFields(inst, decl.Type)
		}
		p.pushScope(block, inst)
		if brace {
			p.parseBody(lexer.RBRACE)
			p.expect(lexer.RBRACE)
		} else {
			p.parseBody(lexer.END)
			p.expect(lexer.END)
		}
		p.popScope()
		initVal = value.Value{Kind: value.ClassInst, Inst: inst}
	case lexer.ASSIGN, lexer.DEFINEQ:
		p.advance()
		initVal = p.parseExpression()
	default:
		// declaration with no initializer (e.g. a field declared only by type)
	}

	if rw == symbol.RWParam {
		initVal = p.applyParamOverride(decl, initVal)
	}

	if !p.skip() {
		p.currentInst().Set(name, initVal)
	}
}

// applyParamOverride implements a param declaration's external-override
// behavior: it consults the shared parameter table by its dotted
// qualified name; a
// present override is re-lexed against the declared type, type-checked,
// and replaces the initializer. The entry is marked used either way.
func (p *Parser) applyParamOverride(decl *symbol.Decl, fallback value.Value) value.Value {
	if p.params == nil {
		return fallback
	}
	key := decl.QualifiedName()
	raw, ok := p.params.Lookup(key)
	if !ok {
		return fallback
	}
	kind := fallback.Kind
	if decl.Type != nil && (decl.Type.Kind == symbol.BaseType || decl.Type.Kind == symbol.EnumDecl) {
		kind = zeroValue(decl.Type).Kind
	}
	v, err := coerceParamValue(raw, kind)
	if err != nil {
		pos := decl.Position()
		p.fail(errors.SEM008, errors.Pos{File: pos.File, Line: pos.Line, Column: pos.Column}, "parameter %q: %s", key, err.Error())
		return fallback
	}
	return v
}

// coerceParamValue re-lexes a stringified parameter-table override
// against kind: the declared type's kind for a base or enum type, else
// the kind the initializer already produced.
func coerceParamValue(raw string, kind value.Kind) (value.Value, error) {
	switch kind {
	case value.Bool:
		switch raw {
		case "true":
			return value.BoolV(true), nil
		case "false":
			return value.BoolV(false), nil
		}
		return value.Value{}, strconvErr(raw, "bool")
	case value.Int:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return value.Value{}, err
		}
		return value.IntV(n), nil
	case value.Real:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return value.Value{}, err
		}
		return value.RealV(f), nil
	case value.Path:
		return value.PathV(raw), nil
	case value.Symbol:
		return value.SymbolV(raw), nil
	default:
		return value.StringV(raw), nil
	}
}

func strconvErr(raw, want string) error {
	return &strconvError{raw: raw, want: want}
}

type strconvError struct {
	raw, want string
}

func (e *strconvError) Error() string {
	return "cannot parse " + strconv.Quote(e.raw) + " as " + e.want
}

// parseTypeDecl implements `type_decl := 'type' identdef '='
// ( enum_decl | class_decl )`.
func (p *Parser) parseTypeDecl() {
	kw := p.expect(lexer.TYPE)
	name, visi := p.parseIdentDef()
	p.expect(lexer.ASSIGN)

	var decl *symbol.Decl
	switch p.cur().Type {
	case lexer.LPAREN:
		decl = p.parseEnumDecl(name, kw)
	case lexer.CLASS:
		decl = p.parseClassDecl(name, kw)
	default:
		p.fail(errors.SEM002, p.tokPos(p.cur()), "expected '(' or 'class' after 'type %s ='", name)
		return
	}
	decl.Visi = visi
	if err := p.currentScope().AddChild(decl); err != nil {
		p.fail(errors.SEM001, p.tokPos(kw), "%s", err.Error())
	}
}

// parseEnumDecl implements `enum_decl := '(' symbol { [','] symbol } ')'`.
func (p *Parser) parseEnumDecl(name string, kw lexer.Token) *symbol.Decl {
	decl := symbol.NewDecl(symbol.EnumDecl, name, p.tokPosAsSymbolPos(kw))
	p.expect(lexer.LPAREN)
	for !p.at(lexer.RPAREN) && !p.at(lexer.EOF) {
		sym := p.expect(lexer.SYMBOL)
		decl.Symbols = append(decl.Symbols, sym.Literal)
		if decl.Default == "" {
			decl.Default = sym.Literal
		}
		if p.at(lexer.COMMA) {
			p.advance()
		}
	}
	p.expect(lexer.RPAREN)
	return decl
}

// parseClassDecl implements `class_decl := 'class' [ '(' typeref ')' ]
// ( '{' fields '}' | fields 'end' )`.
func (p *Parser) parseClassDecl(name string, kw lexer.Token) *symbol.Decl {
	p.expect(lexer.CLASS)
	decl := symbol.NewDecl(symbol.ClassDecl, name, p.tokPosAsSymbolPos(kw))

	if p.at(lexer.LPAREN) {
		p.advance()
		decl.Super = p.parseTyperef()
		p.expect(lexer.RPAREN)
	}

	brace := p.at(lexer.LBRACE)
	if brace {
		p.advance()
	}

	p.pushScope(decl, symbol.NewInstance(decl))
	for !p.at(lexer.END) && !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
		p.parseFieldDecl()
	}
	p.popScope()

	if brace {
		p.expect(lexer.RBRACE)
	} else {
		p.expect(lexer.END)
	}
	return decl
}

// zeroInitFields seeds inst with one entry per field class declares, so
// a constructor body's first `.field += ...` has something to read;
// without this, a fresh class instance's Fields map is empty and a
// compound assignment to an as-yet-unset field would report "no field"
// rather than act as the list/numeric identity it should start from.
func zeroInitFields(inst *symbol.Instance, class *symbol.Decl) {
	for _, child := range class.Children {
		if child.Kind != symbol.FieldDecl {
			continue
		}
		inst.Set(child.Name, zeroValue(child.Type))
	}
}

func zeroValue(typ *symbol.Decl) value.Value {
	if typ == nil {
		return value.Value{}
	}
	switch typ.Kind {
	case symbol.ListType:
		return value.ListV(nil)
	case symbol.EnumDecl:
		return value.SymbolV(typ.Default)
	case symbol.BaseType:
		switch typ.Name {
		case "bool":
			return value.BoolV(false)
		case "int":
			return value.IntV(0)
		case "real":
			return value.RealV(0)
		case "string":
			return value.StringV("")
		case "path":
			return value.PathV("")
		case "symbol":
			return value.SymbolV("")
		}
	}
	return value.Value{}
}

// parseFieldDecl parses one class field, reusing var_decl's identdef/typeref
// grammar but rejecting class-typed fields.
func (p *Parser) parseFieldDecl() {
	name, visi := p.parseIdentDef()
	field := symbol.NewDecl(symbol.FieldDecl, name, p.tokPosAsSymbolPos(p.cur()))
	field.Visi = visi
	if p.at(lexer.COLON) {
		p.advance()
		field.Type = p.parseTyperef()
		if field.Type != nil && field.Type.Kind == symbol.ClassDecl {
			p.fail(errors.SEM006, p.tokPos(p.cur()), "class field %q cannot itself be class-typed", name)
		}
	}
	if p.at(lexer.ASSIGN) || p.at(lexer.DEFINEQ) {
		p.advance()
		p.parseExpression()
	}
	if p.at(lexer.SEMICOLON) {
		p.advance()
	}
	if err := p.currentScope().AddChild(field); err != nil {
		p.fail(errors.SEM001, p.tokPos(p.cur()), "%s", err.Error())
	}
}

// parseTyperef implements `typeref := designator [ '[]' ]`, resolving the
// designator to the Decl it names (a BaseType, EnumDecl, or ClassDecl) and
// wrapping it in a synthetic ListType node when followed by "[]". List-of-
// list is rejected outright.
func (p *Parser) parseTyperef() *symbol.Decl {
	base := p.resolveTypeName()
	if p.at(lexer.LBRACKETRBRACKET) {
		p.advance()
		if base != nil && base.Kind == symbol.ListType {
			p.fail(errors.SEM005, p.tokPos(p.cur()), "list of list is not allowed")
		}
		list := symbol.NewDecl(symbol.ListType, "", symbol.Pos{})
		list.ElemType = base
		return list
	}
	return base
}

var baseTypeNames = map[string]bool{
	"bool": true, "int": true, "real": true,
	"string": true, "path": true, "symbol": true,
}

func (p *Parser) resolveTypeName() *symbol.Decl {
	t := p.expect(lexer.IDENT)
	if t.Literal == "" {
		return nil
	}
	if baseTypeNames[t.Literal] {
		bt := symbol.NewDecl(symbol.BaseType, t.Literal, p.tokPosAsSymbolPos(t))
		return bt
	}
	decl, _, ok := p.lookup(t.Literal)
	if !ok {
		p.fail(errors.SEM002, p.tokPos(t), "undefined type %q", t.Literal)
		return nil
	}
	return decl
}

// parseSubmodule implements `submodule := ('subdir'|'submod'|'submodule')
// identdef [ '=' (path|ident) ] [ 'else' path ]
// [ '(' param_bind { ',' param_bind } ')' ]` and recursively parses the
// resolved BUSY file.
func (p *Parser) parseSubmodule() {
	kw := p.advance()
	name, visi := p.parseIdentDef()

	var override, elsePath string
	var hasOverride, hasElse bool
	if p.at(lexer.ASSIGN) {
		p.advance()
		t := p.cur()
		if t.Type == lexer.PATH || t.Type == lexer.IDENT {
			p.advance()
			override = t.Literal
			hasOverride = true
		}
	}
	if p.at(lexer.ELSE) {
		p.advance()
		t := p.expect(lexer.PATH)
		elsePath = t.Literal
		hasElse = true
	}

	var binds []paramBind
	if p.at(lexer.LPAREN) {
		p.advance()
		for !p.at(lexer.RPAREN) && !p.at(lexer.EOF) {
			binds = append(binds, p.parseParamBind())
			if p.at(lexer.COMMA) {
				p.advance()
			}
		}
		p.expect(lexer.RPAREN)
	}

	modDecl := symbol.NewDecl(symbol.ModuleDef, name, p.tokPosAsSymbolPos(kw))
	modDecl.Visi = visi

	if p.modules == nil {
		if err := p.currentScope().AddChild(modDecl); err != nil {
			p.fail(errors.SEM001, p.tokPos(kw), "%s", err.Error())
		}
		return
	}

	parentDir := p.currentModuleDir()
	dir, diag := p.modules.Resolve(parentDir, name, override, hasOverride, elsePath, hasElse, p.ancestors, p.tokPos(kw))
	if diag != nil {
		p.errs = append(p.errs, diag)
		return
	}

	modDecl.Dir = dir.Logical
	modDecl.RDir = dir.RDir
	modDecl.FSRDir = dir.FSPath
	modDecl.DirName = dir.DirName
	modDecl.Dummy = dir.Dummy

	if err := p.currentScope().AddChild(modDecl); err != nil {
		p.fail(errors.SEM001, p.tokPos(kw), "%s", err.Error())
	}

	for _, b := range binds {
		if b.hasVal {
			p.params.Set(modDecl.QualifiedName()+"."+b.name, renderParamValue(b.val))
		}
	}

	if dir.Dummy {
		return
	}

	data, diag := p.modules.ReadBUSY(dir)
	if diag != nil {
		p.errs = append(p.errs, diag)
		return
	}

	sub, subErrs := Parse(string(data), dir.BUSYPath, p.params, p.modules, dir, p.currentScope())
	p.errs = append(p.errs, subErrs...)
	owner := modDecl.Owner
	*modDecl = *sub
	modDecl.Owner = owner
}

func renderParamValue(v value.Value) string {
	return v.String()
}

type paramBind struct {
	name   string
	val    value.Value
	hasVal bool
}

// parseParamBind implements `param_bind := ident [ ('='|':=') expression ]`.
func (p *Parser) parseParamBind() paramBind {
	name := p.expect(lexer.IDENT)
	b := paramBind{name: name.Literal}
	if p.at(lexer.ASSIGN) || p.at(lexer.DEFINEQ) {
		p.advance()
		b.val = p.parseExpression()
		b.hasVal = true
	}
	return b
}

// currentModuleDir finds the nearest enclosing ModuleDef scope's directory
// bookkeeping, for resolving a submodule's path relative to it.
func (p *Parser) currentModuleDir() busymod.Dir {
	for i := len(p.scopes) - 1; i >= 0; i-- {
		if p.scopes[i].Kind == symbol.ModuleDef {
			d := p.scopes[i]
			return busymod.Dir{Logical: d.Dir, RDir: d.RDir, FSPath: d.FSRDir, DirName: d.DirName}
		}
	}
	return busymod.Dir{Logical: "//", RDir: "."}
}

// parseMacroDef implements `macrodef := 'define' identdef
// [ '(' ident { ',' ident } ')' ] block_text`: the body is captured
// verbatim as a brace-balanced string, not parsed yet.
func (p *Parser) parseMacroDef() {
	kw := p.advance()
	name, visi := p.parseIdentDef()
	decl := symbol.NewDecl(symbol.MacroDef, name, p.tokPosAsSymbolPos(kw))
	decl.Visi = visi

	if p.at(lexer.LPAREN) {
		p.advance()
		for !p.at(lexer.RPAREN) && !p.at(lexer.EOF) {
			param := p.expect(lexer.IDENT)
			decl.Symbols = append(decl.Symbols, param.Literal)
			if p.at(lexer.COMMA) {
				p.advance()
			}
		}
		p.expect(lexer.RPAREN)
	}

	open := p.expect(lexer.LBRACE)
	decl.BodyRow, decl.BodyCol = open.Line, open.Column
	decl.BodySource = open.File
	decl.Code = p.captureBraceBalancedBody()

	if err := p.currentScope().AddChild(decl); err != nil {
		p.fail(errors.SEM001, p.tokPos(kw), "%s", err.Error())
	}
}

// captureBraceBalancedBody consumes tokens up to and including the
// matching '}', returning everything in between joined by spaces, since
// the hilex layer re-lexes a macro body from this string when a call
// expands it.
func (p *Parser) captureBraceBalancedBody() string {
	depth := 1
	var parts []string
	for depth > 0 && !p.at(lexer.EOF) {
		t := p.advance()
		switch t.Type {
		case lexer.LBRACE:
			depth++
		case lexer.RBRACE:
			depth--
			if depth == 0 {
				return strings.Join(parts, " ")
			}
		}
		parts = append(parts, t.Literal)
	}
	return strings.Join(parts, " ")
}

func (p *Parser) tokPosAsSymbolPos(t lexer.Token) symbol.Pos {
	return symbol.Pos{File: t.File, Line: t.Line, Column: t.Column}
}

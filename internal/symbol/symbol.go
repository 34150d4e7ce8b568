// Package symbol implements BUSY's declaration and instance node model
// : the keyed records the parser builds for every
// module, class, variable, macro and conditional it parses, plus the
// companion instance nodes that hold the values those declarations
// describe.
package symbol

import (
	"fmt"
	"strings"
)

// Pos is a source position attached to a declaration.
type Pos struct {
	File   string
	Line   int
	Column int
}

func (p Pos) String() string {
	if p.File == "" {
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// Kind is the `#kind` tag of a Declaration node.
type Kind int

const (
	BaseType Kind = iota
	ListType
	ModuleDef
	ClassDecl
	EnumDecl
	VarDecl
	FieldDecl
	BlockDef
	ProcDef
	MacroDef
	CondStat
)

var kindNames = [...]string{
	"BaseType", "ListType", "ModuleDef", "ClassDecl", "EnumDecl",
	"VarDecl", "FieldDecl", "BlockDef", "ProcDef", "MacroDef", "CondStat",
}

func (k Kind) String() string {
	if int(k) < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", k)
	}
	return kindNames[k]
}

// Visibility is the `#visi` tag.
type Visibility int

const (
	Private Visibility = iota
	Protected
	Public
	PublicDefault
)

var visiNames = [...]string{"Private", "Protected", "Public", "PublicDefault"}

func (v Visibility) String() string {
	if int(v) < 0 || int(v) >= len(visiNames) {
		return fmt.Sprintf("Visibility(%d)", v)
	}
	return visiNames[v]
}

// VisibilityFromSuffix maps an identdef's visibility suffix to a
// Visibility: none -> Private, "-" -> Protected,
// "*" -> Public, "!" -> PublicDefault.
func VisibilityFromSuffix(suffix string) Visibility {
	switch suffix {
	case "-":
		return Protected
	case "*":
		return Public
	case "!":
		return PublicDefault
	default:
		return Private
	}
}

// ReadWrite is the `#rw` tag: which keyword declared a VarDecl.
type ReadWrite int

const (
	RWVar ReadWrite = iota
	RWLet
	RWParam
)

func (rw ReadWrite) String() string {
	switch rw {
	case RWLet:
		return "let"
	case RWParam:
		return "param"
	default:
		return "var"
	}
}

// ReadOnly reports whether a declaration using this keyword is read-only
// once externally visible.
func (rw ReadWrite) ReadOnly() bool { return rw == RWLet || rw == RWParam }

// XRefEntry is one file/position pair recorded under a Declaration's
// `#xref` table, for IDE go-to-definition style back-links.
type XRefEntry struct {
	File   string
	Line   int
	Column int
}

// Decl is a Declaration node : a keyed record identified by
// its Kind, plus positional child slots enumerating fields in declaration
// order.
type Decl struct {
	Kind Kind
	Name string
	Owner *Decl // #owner: enclosing declaration, back-reference only
	Visi  Visibility
	RW    ReadWrite
	Type  *Decl // #type: reference to a type node
	Super *Decl // #super: superclass, ClassDecl only

	Inst *Instance // #inst: companion instance node

	// ModuleDef-only directory bookkeeping.
	Dir     string // #dir: absolute logical directory
	RDir    string // #rdir: logical-relative directory
	FSRDir  string // #fsrdir: filesystem-relative directory
	DirName string // #dirname: leaf identifier of the module's logical dir segment
	Dummy   bool   // #dummy: module had no BUSY file, only altpath resolved

	// Source location.
	File string
	Row  int
	Col  int

	// MacroDef-only body snapshot.
	Code     string // #code
	BodyRow  int    // #brow
	BodyCol  int    // #bcol
	BodySource string // #source

	Default string // #default: EnumDecl's initial/default symbol

	XRef map[string][]XRefEntry // #xref

	Children []*Decl          // positional child slots, 1..n
	ByName   map[string]*Decl // name lookup within this declaration's own scope

	// EnumDecl's closed set of symbol values.
	Symbols []string

	// ElemType is the element type of a ListType.
	ElemType *Decl
}

// NewDecl creates a Decl of the given kind and name, ready to accept
// children via AddChild.
func NewDecl(kind Kind, name string, pos Pos) *Decl {
	return &Decl{
		Kind:   kind,
		Name:   name,
		File:   pos.File,
		Row:    pos.Line,
		Col:    pos.Column,
		ByName: map[string]*Decl{},
	}
}

// Position reconstructs this declaration's source position.
func (d *Decl) Position() Pos { return Pos{File: d.File, Line: d.Row, Column: d.Col} }

// AddChild appends child to d's positional slots and, unless its name is
// empty, registers it in d's name map.
func (d *Decl) AddChild(child *Decl) error {
	if child.Name != "" {
		if _, exists := d.ByName[child.Name]; exists {
			return fmt.Errorf("%s: %q already defined in %s", child.Position(), child.Name, d.Name)
		}
		d.ByName[child.Name] = child
	}
	child.Owner = d
	d.Children = append(d.Children, child)
	return nil
}

// Lookup finds name among d's direct children.
func (d *Decl) Lookup(name string) (*Decl, bool) {
	decl, ok := d.ByName[name]
	return decl, ok
}

// QualifiedName builds the dotted path the parameter table keys on,
// walking the #owner chain.
func (d *Decl) QualifiedName() string {
	var parts []string
	for cur := d; cur != nil; cur = cur.Owner {
		if cur.Name != "" {
			parts = append([]string{cur.Name}, parts...)
		}
	}
	return strings.Join(parts, ".")
}

// IsClassInstantiable reports whether d is a ClassDecl (the only Kind a
// VarDecl's #type may reference that also requires an #inst companion).
func (d *Decl) IsClassInstantiable() bool { return d.Kind == ClassDecl }

func (d *Decl) String() string {
	return fmt.Sprintf("%s %s", d.Kind, d.Name)
}

// Instance mirrors a Declaration: its field set is the field names of the
// declaration's type, and for a class instance its meta-link (Class)
// points back to the ClassDecl.
type Instance struct {
	Decl   *Decl // the declaration this instance holds values for
	Class  *Decl // meta-link to ClassDecl, for class instances only
	Fields map[string]interface{}
	Order  []string
}

// NewInstance creates an empty Instance owned by decl.
func NewInstance(decl *Decl) *Instance {
	return &Instance{Decl: decl, Fields: map[string]interface{}{}}
}

// Set stores value under name, recording first-time insertion order.
func (in *Instance) Set(name string, value interface{}) {
	if _, exists := in.Fields[name]; !exists {
		in.Order = append(in.Order, name)
	}
	in.Fields[name] = value
}

// Get retrieves the value stored under name.
func (in *Instance) Get(name string) (interface{}, bool) {
	v, ok := in.Fields[name]
	return v, ok
}

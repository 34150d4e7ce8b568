package parser

import (
	"github.com/busy-build/busy/internal/symbol"
)

// installBuiltinClasses preloads the predefined product classes into
// mod's own scope. Every BUSY file
// parses its own module from scratch (Parse is called once per file),
// so each gets its own copy of these declarations rather than sharing
// one process-wide instance, cheap since they carry no state of
// their own, and it sidesteps needing a second, parent scope frame
// purely for builtins.
//
// Fields are flattened rather than inherited through `#super`, since
// the symbol model's field lookup (Decl.Lookup) only checks a class's
// own children; there is no superclass chain walk to reuse. `Super`
// is still set to the Product base class for dispatch code that wants
// it, but every concrete field a product class needs lives directly on
// that class.
func installBuiltinClasses(mod *symbol.Decl) {
	field := func(owner *symbol.Decl, name string, typ *symbol.Decl) {
		f := symbol.NewDecl(symbol.FieldDecl, name, symbol.Pos{})
		f.Type = typ
		owner.AddChild(f)
	}
	listOf := func(elem *symbol.Decl) *symbol.Decl {
		l := symbol.NewDecl(symbol.ListType, "", symbol.Pos{})
		l.ElemType = elem
		return l
	}
	base := func(name string) *symbol.Decl { return symbol.NewDecl(symbol.BaseType, name, symbol.Pos{}) }

	product := symbol.NewDecl(symbol.ClassDecl, "Product", symbol.Pos{})
	field(product, "name", base("string"))
	mod.AddChild(product)
	field(product, "deps", listOf(product))

	newClass := func(name string) *symbol.Decl {
		c := symbol.NewDecl(symbol.ClassDecl, name, symbol.Pos{})
		c.Super = product
		field(c, "name", base("string"))
		field(c, "deps", listOf(product))
		mod.AddChild(c)
		return c
	}

	// Config is built ahead of the classes that aggregate through it,
	// a bag of flags/defines/includes/libs that other products aggregate
	// through their configs field, so its own `configs` field below can
	// name the real Config class.
	config := newClass("Config")

	compileFields := func(c *symbol.Decl) {
		field(c, "sources", listOf(base("path")))
		field(c, "cflags", listOf(base("string")))
		field(c, "cflags_c", listOf(base("string")))
		field(c, "cflags_cc", listOf(base("string")))
		field(c, "cflags_objc", listOf(base("string")))
		field(c, "cflags_objcc", listOf(base("string")))
		field(c, "defines", listOf(base("string")))
		field(c, "include_dirs", listOf(base("path")))
		field(c, "configs", listOf(config))
	}
	linkFields := func(c *symbol.Decl) {
		field(c, "ldflags", listOf(base("string")))
		field(c, "lib_dir", listOf(base("path")))
		field(c, "lib_name", listOf(base("string")))
		field(c, "lib_file", listOf(base("path")))
		field(c, "framework", listOf(base("string")))
		field(c, "def_file", base("path"))
	}
	compileFields(config)
	linkFields(config)

	library := newClass("Library")
	compileFields(library)
	linkFields(library)
	libType := symbol.NewDecl(symbol.EnumDecl, "", symbol.Pos{})
	libType.Symbols = []string{"static", "dynamic"}
	libType.Default = "static"
	field(library, "lib_type", libType)

	executable := newClass("Executable")
	compileFields(executable)
	linkFields(executable)

	sourceSet := newClass("SourceSet")
	compileFields(sourceSet)

	newClass("Group")

	moc := newClass("Moc")
	field(moc, "sources", listOf(base("path")))
	field(moc, "defines", listOf(base("string")))

	rcc := newClass("Rcc")
	field(rcc, "sources", listOf(base("path")))

	uic := newClass("Uic")
	field(uic, "sources", listOf(base("path")))

	luaScript := newClass("LuaScript")
	field(luaScript, "args", listOf(base("string")))

	luaScriptForeach := newClass("LuaScriptForeach")
	field(luaScriptForeach, "sources", listOf(base("path")))
	field(luaScriptForeach, "args", listOf(base("string")))

	copy := newClass("Copy")
	field(copy, "sources", listOf(base("path")))
	field(copy, "outputs", listOf(base("string")))
	field(copy, "use_deps", listOf(base("symbol")))

	message := newClass("Message")
	msgType := symbol.NewDecl(symbol.EnumDecl, "", symbol.Pos{})
	msgType.Symbols = []string{"info", "warning", "error"}
	msgType.Default = "info"
	field(message, "type", msgType)
	field(message, "text", base("string"))
}

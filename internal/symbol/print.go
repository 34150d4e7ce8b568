package symbol

import (
	"fmt"
	"sort"
	"strings"
)

// Dump renders d and its children as an indented tree for a human
// reader. (The `busy dump-ast` subcommand uses its own walk.) Map-valued
// instance fields are rendered with sorted keys so output is
// deterministic across runs.
func Dump(d *Decl) string {
	var b strings.Builder
	dump(&b, d, 0)
	return b.String()
}

func dump(b *strings.Builder, d *Decl, depth int) {
	if d == nil {
		return
	}
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(b, "%s%s %s [%s]", indent, d.Kind, d.Name, d.Visi)
	if d.RW != RWVar || d.Kind == VarDecl {
		fmt.Fprintf(b, " (%s)", d.RW)
	}
	if d.Dummy {
		b.WriteString(" #dummy")
	}
	b.WriteString("\n")

	if d.Inst != nil {
		dumpInstance(b, d.Inst, depth+1)
	}
	for _, child := range d.Children {
		dump(b, child, depth+1)
	}
}

func dumpInstance(b *strings.Builder, in *Instance, depth int) {
	indent := strings.Repeat("  ", depth)
	keys := make([]string, 0, len(in.Fields))
	for k := range in.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(b, "%s.%s = %v\n", indent, k, in.Fields[k])
	}
}

// Package selector implements BUSY's product selector: given a parsed
// module tree, it enumerates the product instances to build, either
// every reachable product or a caller-supplied set of dotted qualified
// designators, and orders the result so every product appears after its
// `deps`.
package selector

import (
	"fmt"
	"sort"

	"github.com/busy-build/busy/internal/symbol"
	"github.com/busy-build/busy/internal/value"
)

// Product pairs a VarDecl known to hold a product class instance (its
// `#type` is a ClassDecl reachable from the builtins' `Product` class)
// with the companion Instance holding its field values.
type Product struct {
	Decl  *symbol.Decl
	Inst  *symbol.Instance
	Class *symbol.Decl
}

// Name is the product's qualified dotted name, used for designator
// matching and diagnostics.
func (p Product) Name() string { return p.Decl.QualifiedName() }

// WrapInstance builds a Product around an already-resolved Instance
// (e.g. one reached through another product's `deps` list), recovering
// its class from the Instance's own meta-link, or its declaration's
// `#type` when the meta-link was never set.
func WrapInstance(inst *symbol.Instance) Product {
	class := inst.Class
	if class == nil && inst.Decl != nil {
		class = inst.Decl.Type
	}
	return Product{Decl: inst.Decl, Inst: inst, Class: class}
}

// IsProductInstance reports whether decl is a var/let declaration whose
// type names a class (directly or through `Inst`), i.e. a candidate
// product rather than a plain scalar/list variable.
func IsProductInstance(decl *symbol.Decl) bool {
	return decl.Kind == symbol.VarDecl && decl.Inst != nil && decl.Type != nil && decl.Type.Kind == symbol.ClassDecl
}

// Collect walks root's declaration tree (including resolved submodules)
// and returns every product instance found, in tree-walk order.
func Collect(root *symbol.Decl) []Product {
	var out []Product
	var walk func(d *symbol.Decl)
	walk = func(d *symbol.Decl) {
		for _, child := range d.Children {
			if IsProductInstance(child) {
				out = append(out, Product{Decl: child, Inst: child.Inst, Class: child.Type})
			}
			if child.Kind == symbol.ModuleDef {
				walk(child)
			}
		}
	}
	walk(root)
	return out
}

// Select enumerates the product instances to build. With no designators,
// the default selection is every product declared `!` (PublicDefault):
// "mark used exclusively on product declarations to make them selected
// when the user names no explicit targets". Named designators (dotted
// qualified names) override that default and select those products
// instead, together with the transitive closure of their deps. Unknown designators are a reported error.
func Select(root *symbol.Decl, designators []string) ([]Product, error) {
	all := Collect(root)
	byName := make(map[string]Product, len(all))
	for _, p := range all {
		byName[p.Name()] = p
	}

	if len(designators) == 0 {
		var defaults []Product
		for _, p := range all {
			if p.Decl.Visi == symbol.PublicDefault {
				defaults = append(defaults, p)
			}
		}
		return TopoSort(closure(defaults, byName))
	}

	var picked []Product
	for _, name := range designators {
		p, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("no such product %q", name)
		}
		picked = append(picked, p)
	}
	return TopoSort(closure(picked, byName))
}

// closure expands picked to include every transitive dependency (via
// `.deps`), so a designator-restricted build still gets a complete,
// well-ordered subgraph to visit.
func closure(picked []Product, byName map[string]Product) []Product {
	seen := make(map[string]bool, len(byName))
	var out []Product
	var visit func(p Product)
	visit = func(p Product) {
		name := p.Name()
		if seen[name] {
			return
		}
		seen[name] = true
		out = append(out, p)
		for _, dep := range deps(p, byName) {
			visit(dep)
		}
	}
	for _, p := range picked {
		visit(p)
	}
	return out
}

// deps resolves a product's `.deps` field to the Products in byName they
// name.
func deps(p Product, byName map[string]Product) []Product {
	raw, ok := p.Inst.Get("deps")
	if !ok {
		return nil
	}
	v, ok := raw.(value.Value)
	if !ok || v.Kind != value.List {
		return nil
	}
	var out []Product
	for _, elem := range v.Elems {
		if elem.Kind != value.ClassInst || elem.Inst == nil || elem.Inst.Decl == nil {
			continue
		}
		if dep, ok := byName[elem.Inst.Decl.QualifiedName()]; ok {
			out = append(out, dep)
		}
	}
	return out
}

// TopoSort orders products so every product appears after all of its
// `deps`, via Kahn's algorithm over the reverse dependency graph: if A
// depends on B, B must come before A.
func TopoSort(products []Product) ([]Product, error) {
	byName := make(map[string]Product, len(products))
	for _, p := range products {
		byName[p.Name()] = p
	}

	inDegree := make(map[string]int, len(products))
	reverse := make(map[string][]string, len(products))
	for _, p := range products {
		name := p.Name()
		if _, ok := inDegree[name]; !ok {
			inDegree[name] = 0
		}
		for _, dep := range deps(p, byName) {
			inDegree[name]++
			reverse[dep.Name()] = append(reverse[dep.Name()], name)
		}
	}

	var queue []string
	for name, degree := range inDegree {
		if degree == 0 {
			queue = append(queue, name)
		}
	}
	sort.Strings(queue)

	var order []string
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		order = append(order, name)

		next := append([]string{}, reverse[name]...)
		sort.Strings(next)
		for _, dependent := range next {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				queue = append(queue, dependent)
				sort.Strings(queue)
			}
		}
	}

	if len(order) != len(products) {
		return nil, fmt.Errorf("circular product dependency detected")
	}

	out := make([]Product, len(order))
	for i, name := range order {
		out[i] = byName[name]
	}
	return out, nil
}

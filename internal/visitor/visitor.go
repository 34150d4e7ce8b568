// Package visitor implements BUSY's build-graph visitor: given the
// selector's ordered product list, it walks each product exactly once in
// dependency order, emitting the backend's begin/end-op stream and
// memoizing a `#out` value for every product it visits.
package visitor

import (
	"strings"

	"github.com/busy-build/busy/internal/backend"
	"github.com/busy-build/busy/internal/path"
	"github.com/busy-build/busy/internal/selector"
	"github.com/busy-build/busy/internal/symbol"
	"github.com/busy-build/busy/internal/value"
)

// Visit walks products (already topologically ordered by the selector)
// against be, using host for artifact naming and rootBuildDir as the
// root of the generated output tree. ct supplies the toolchain's
// baseline compile/link flags (may be nil, meaning none); it is layered
// ahead of each product's own flags on every Compile and link op; the
// flags, defines and include dirs of a product's `configs` are not
// collected. It returns the #out of every visited product, keyed by
// qualified name, or the first error a backend reports (including a
// cancellation).
func Visit(products []selector.Product, be backend.Backend, host backend.HostInfo, rootBuildDir string, ct backend.CTDefaults) (map[string]Out, error) {
	v := &walker{
		be:           be,
		host:         host,
		rootBuildDir: rootBuildDir,
		ct:           ct.For(host.Toolchain()),
		outs:         map[*symbol.Instance]Out{},
		byName:       map[string]Out{},
	}
	for _, p := range products {
		out, err := v.visit(p)
		if err != nil {
			return v.byName, err
		}
		v.byName[p.Name()] = out
	}
	return v.byName, nil
}

type walker struct {
	be           backend.Backend
	host         backend.HostInfo
	rootBuildDir string
	ct           backend.ToolchainDefaults
	outs         map[*symbol.Instance]Out
	byName       map[string]Out
}

// visit computes p's #out, entering it into the walk exactly once per
// distinct Instance identity.
func (v *walker) visit(p selector.Product) (Out, error) {
	if out, ok := v.outs[p.Inst]; ok {
		return out, nil
	}

	preds, err := v.visitDeps(p)
	if err != nil {
		return Out{}, err
	}

	if !v.beginOp(backend.EnteringProduct, backend.Params{Name: []string{p.Name()}}) {
		return Out{}, cancelErr(p, backend.EnteringProduct)
	}

	out, err := v.visitByClass(p, preds)
	if err != nil {
		return Out{}, err
	}
	v.outs[p.Inst] = out
	return out, nil
}

// visitDeps visits every product named in p's `.deps` field, in list
// order, and returns their flattened (non-Mixed) #out values.
func (v *walker) visitDeps(p selector.Product) ([]Out, error) {
	raw, ok := p.Inst.Get("deps")
	if !ok {
		return nil, nil
	}
	depsVal, ok := raw.(value.Value)
	if !ok || depsVal.Kind != value.List {
		return nil, nil
	}

	var outs []Out
	for _, elem := range depsVal.Elems {
		if elem.Kind != value.ClassInst || elem.Inst == nil {
			continue
		}
		dep := selector.WrapInstance(elem.Inst)
		out, err := v.visit(dep)
		if err != nil {
			return nil, err
		}
		outs = append(outs, out)
	}
	return flatten(outs), nil
}

func (v *walker) visitByClass(p selector.Product, preds []Out) (Out, error) {
	class := className(p)
	switch class {
	case "Library":
		return v.visitLibrary(p, preds)
	case "Executable":
		return v.visitExecutable(p, preds)
	case "SourceSet":
		return v.visitSourceSet(p, preds)
	case "Group":
		return Out{Kind: Mixed, Items: preds}, nil
	case "Config":
		return Out{Kind: Nothing}, nil
	case "Moc":
		return v.visitGenerator(p, backend.RunMoc)
	case "Rcc":
		return v.visitGenerator(p, backend.RunRcc)
	case "Uic":
		return v.visitGenerator(p, backend.RunUic)
	case "LuaScript":
		return v.visitLuaScript(p)
	case "LuaScriptForeach":
		return v.visitLuaScriptForeach(p)
	case "Copy":
		return v.visitCopy(p)
	case "Message":
		return v.visitMessage(p)
	default:
		return Out{Kind: Mixed, Items: preds}, nil
	}
}

func className(p selector.Product) string {
	if p.Class == nil {
		return ""
	}
	return p.Class.Name
}

// beginOp wraps a non-EnteringProduct op with its matching EndOp.
func (v *walker) beginOp(op backend.BeginOp, params backend.Params) bool {
	if !v.be.BeginOp(op, params) {
		return false
	}
	if op != backend.EnteringProduct {
		v.be.EndOp(op)
	}
	return true
}

func stringList(inst *symbol.Instance, field string) []string {
	raw, ok := inst.Get(field)
	if !ok {
		return nil
	}
	v, ok := raw.(value.Value)
	if !ok || v.Kind != value.List {
		return nil
	}
	out := make([]string, 0, len(v.Elems))
	for _, e := range v.Elems {
		out = append(out, e.S)
	}
	return out
}

func stringField(inst *symbol.Instance, field string) string {
	raw, ok := inst.Get(field)
	if !ok {
		return ""
	}
	v, ok := raw.(value.Value)
	if !ok {
		return ""
	}
	return v.S
}

// moduleOf returns the nearest enclosing ModuleDef of decl, for
// resolving a product's `rdir_of_M` build-path segment.
func moduleOf(decl *symbol.Decl) *symbol.Decl {
	for d := decl; d != nil; d = d.Owner {
		if d.Kind == symbol.ModuleDef {
			return d
		}
	}
	return nil
}

func joinPath(parts ...string) string {
	var kept []string
	for _, p := range parts {
		p = strings.Trim(p, "/")
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "/")
}

// productDir is the `<root_build_dir>/<rdir_of_M>` segment shared by
// every path convention below.
func (v *walker) productDir(p selector.Product) string {
	m := moduleOf(p.Decl)
	rdir := ""
	if m != nil {
		rdir = m.RDir
	}
	return joinPath(v.rootBuildDir, rdir)
}

// objectPath implements `<root_build_dir>/<rdir_of_M>/<Prod>/_<basename_of(P)>.<obj_ext>`.
func (v *walker) objectPath(p selector.Product, src string) string {
	base := path.PathPart(src, path.CompleteBasename)
	return joinPath(v.productDir(p), p.Decl.Name, "_"+base+"."+v.host.ObjExt())
}

// generatedPath names a Moc/Rcc/Uic output file alongside where the
// equivalent object file would land, swapping in suffix for the
// extension: generated sources share their owning product's
// per-product build directory.
func (v *walker) generatedPath(p selector.Product, src, suffix string) string {
	base := path.PathPart(src, path.CompleteBasename)
	return joinPath(v.productDir(p), p.Decl.Name, "_"+base+"."+suffix)
}

// artifactPath implements
// `<root_build_dir>/<rdir_of_M>/[lib]<Prod|product.name><ext>`: the
// product's own `name` field overrides its declared identifier when set.
func (v *walker) artifactPath(p selector.Product, prefix bool, ext string) string {
	name := stringField(p.Inst, "name")
	if name == "" {
		name = p.Decl.Name
	}
	filename := name + ext
	if prefix && !v.host.IsWindows() {
		filename = v.host.LibPrefix() + filename
	}
	return joinPath(v.productDir(p), filename)
}

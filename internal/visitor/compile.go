package visitor

import (
	"github.com/busy-build/busy/internal/backend"
	"github.com/busy-build/busy/internal/path"
	"github.com/busy-build/busy/internal/selector"
)

// langFlags picks the per-language cflags field matching src's
// extension (cflags_c/cflags_cc/cflags_objc/cflags_objcc), layered on
// top of the toolchain's own baseline flags and then the product's own
// `cflags`.
func langFlags(ct backend.ToolchainDefaults, p selector.Product, src string) []string {
	base := append(append([]string{}, ct.CFlags...), stringList(p.Inst, "cflags")...)
	switch path.PathPart(src, path.Extension) {
	case "c":
		return append(base, stringList(p.Inst, "cflags_c")...)
	case "cc", "cpp", "cxx":
		return append(base, stringList(p.Inst, "cflags_cc")...)
	case "m":
		return append(base, stringList(p.Inst, "cflags_objc")...)
	case "mm":
		return append(base, stringList(p.Inst, "cflags_objcc")...)
	default:
		return base
	}
}

// compileSources emits one Compile op per source in p's own `sources`
// field plus any generated sources contributed by its dependencies
// (Moc/Rcc/Uic output), and returns every resulting object file path.
// The whole batch is bracketed in a Fork group since the compiles are
// mutually independent.
func (v *walker) compileSources(p selector.Product, preds []Out) ([]string, error) {
	sources := stringList(p.Inst, "sources")
	sources = append(sources, sourceFilesOf(preds)...)
	if len(sources) == 0 {
		return nil, nil
	}

	defines := stringList(p.Inst, "defines")
	includeDirs := stringList(p.Inst, "include_dirs")

	v.be.Fork(len(sources))
	var objects []string
	for _, src := range sources {
		obj := v.objectPath(p, src)
		params := backend.Params{
			InFile:     []string{src},
			OutFile:    []string{obj},
			CFlag:      langFlags(v.ct, p, src),
			Define:     defines,
			IncludeDir: includeDirs,
		}
		if !v.beginOp(backend.Compile, params) {
			v.be.Fork(-1)
			return nil, cancelErr(p, backend.Compile)
		}
		objects = append(objects, obj)
	}
	v.be.Fork(-1)
	return objects, nil
}

func cancelErr(p selector.Product, op backend.BeginOp) error {
	return &cancelError{product: p.Name(), op: op}
}

type cancelError struct {
	product string
	op      backend.BeginOp
}

func (e *cancelError) Error() string {
	return "product " + e.product + ": backend cancelled walk at " + e.op.String()
}

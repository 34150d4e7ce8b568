package visitor

import (
	"github.com/busy-build/busy/internal/backend"
	"github.com/busy-build/busy/internal/selector"
)

func (v *walker) visitLibrary(p selector.Product, preds []Out) (Out, error) {
	objects, err := v.compileSources(p, preds)
	if err != nil {
		return Out{}, err
	}
	objects = append(objects, objectFilesOf(preds)...)

	dynamic := stringField(p.Inst, "lib_type") == "dynamic"
	op := backend.LinkLib
	if dynamic {
		op = backend.LinkDll
	}
	out := v.artifactPath(p, true, v.host.LibExt())
	params := backend.Params{
		InFile:    objects,
		OutFile:   []string{out},
		LdFlag:    append(append([]string{}, v.ct.LdFlags...), stringList(p.Inst, "ldflags")...),
		LibDir:    stringList(p.Inst, "lib_dir"),
		LibName:   stringList(p.Inst, "lib_name"),
		LibFile:   append(stringList(p.Inst, "lib_file"), libsOf(preds)...),
		Framework: stringList(p.Inst, "framework"),
	}
	if defFile := stringField(p.Inst, "def_file"); defFile != "" {
		params.DefFile = []string{defFile}
	}
	if !v.beginOp(op, params) {
		return Out{}, cancelErr(p, op)
	}
	kind := StaticLib
	if dynamic {
		kind = DynamicLib
	}
	return Out{Kind: kind, Path: out}, nil
}

func (v *walker) visitExecutable(p selector.Product, preds []Out) (Out, error) {
	objects, err := v.compileSources(p, preds)
	if err != nil {
		return Out{}, err
	}
	objects = append(objects, objectFilesOf(preds)...)

	out := v.artifactPath(p, false, v.host.ExeExt())
	params := backend.Params{
		InFile:    objects,
		OutFile:   []string{out},
		LdFlag:    append(append([]string{}, v.ct.LdFlags...), stringList(p.Inst, "ldflags")...),
		LibDir:    stringList(p.Inst, "lib_dir"),
		LibName:   stringList(p.Inst, "lib_name"),
		LibFile:   append(stringList(p.Inst, "lib_file"), libsOf(preds)...),
		Framework: stringList(p.Inst, "framework"),
	}
	if defFile := stringField(p.Inst, "def_file"); defFile != "" {
		params.DefFile = []string{defFile}
	}
	if !v.beginOp(backend.LinkExe, params) {
		return Out{}, cancelErr(p, backend.LinkExe)
	}
	return Out{Kind: Executable, Path: out}, nil
}

func (v *walker) visitSourceSet(p selector.Product, preds []Out) (Out, error) {
	objects, err := v.compileSources(p, preds)
	if err != nil {
		return Out{}, err
	}

	if v.be.Kind() != backend.KindQMake {
		return Out{Kind: ObjectFiles, Paths: objects}, nil
	}

	// A qmake-style backend wants a prebuilt library archive in hand
	// instead of loose object files.
	out := v.artifactPath(p, true, v.host.LibExt())
	params := backend.Params{InFile: objects, OutFile: []string{out}}
	if !v.beginOp(backend.LinkLib, params) {
		return Out{}, cancelErr(p, backend.LinkLib)
	}
	return Out{Kind: SourceSetLib, Path: out}, nil
}

func (v *walker) visitGenerator(p selector.Product, op backend.BeginOp) (Out, error) {
	sources := stringList(p.Inst, "sources")
	if len(sources) == 0 {
		return Out{Kind: Nothing}, nil
	}

	var ext string
	switch op {
	case backend.RunMoc:
		ext = "moc.cpp"
	case backend.RunRcc:
		ext = "rcc.cpp"
	case backend.RunUic:
		ext = "h"
	}

	v.be.Fork(len(sources))
	var generated []string
	for _, src := range sources {
		out := v.generatedPath(p, src, ext)
		params := backend.Params{
			InFile:  []string{src},
			OutFile: []string{out},
			Define:  stringList(p.Inst, "defines"),
		}
		if !v.beginOp(op, params) {
			v.be.Fork(-1)
			return Out{}, cancelErr(p, op)
		}
		generated = append(generated, out)
	}
	v.be.Fork(-1)
	return Out{Kind: SourceFiles, Paths: generated}, nil
}

func (v *walker) visitLuaScript(p selector.Product) (Out, error) {
	params := backend.Params{Arg: stringList(p.Inst, "args")}
	if !v.beginOp(backend.RunLua, params) {
		return Out{}, cancelErr(p, backend.RunLua)
	}
	return Out{Kind: Nothing}, nil
}

func (v *walker) visitLuaScriptForeach(p selector.Product) (Out, error) {
	sources := stringList(p.Inst, "sources")
	args := stringList(p.Inst, "args")
	v.be.Fork(len(sources))
	for _, src := range sources {
		params := backend.Params{InFile: []string{src}, Arg: args}
		if !v.beginOp(backend.RunLua, params) {
			v.be.Fork(-1)
			return Out{}, cancelErr(p, backend.RunLua)
		}
	}
	v.be.Fork(-1)
	return Out{Kind: Nothing}, nil
}

func (v *walker) visitCopy(p selector.Product) (Out, error) {
	sources := stringList(p.Inst, "sources")
	outputs := stringList(p.Inst, "outputs")
	v.be.Fork(len(sources))
	for i, src := range sources {
		var out []string
		if i < len(outputs) {
			out = []string{outputs[i]}
		}
		params := backend.Params{InFile: []string{src}, OutFile: out}
		if !v.beginOp(backend.Copy, params) {
			v.be.Fork(-1)
			return Out{}, cancelErr(p, backend.Copy)
		}
	}
	v.be.Fork(-1)
	return Out{Kind: Nothing}, nil
}

func (v *walker) visitMessage(p selector.Product) (Out, error) {
	level := backend.Info
	switch stringField(p.Inst, "type") {
	case "warning":
		level = backend.Warning
	case "error":
		level = backend.Error
	}
	v.be.Log(level, "", 0, 0, "%s", stringField(p.Inst, "text"))
	return Out{Kind: Nothing}, nil
}

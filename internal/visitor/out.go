package visitor

// OutKind is the tag of a product's `#out` value : what a
// visited product contributes to the products that depend on it.
type OutKind int

const (
	Nothing OutKind = iota
	Mixed
	ObjectFiles
	StaticLib
	DynamicLib
	Executable
	SourceFiles
	SourceSetLib // qmake backend only
)

func (k OutKind) String() string {
	switch k {
	case Nothing:
		return "Nothing"
	case Mixed:
		return "Mixed"
	case ObjectFiles:
		return "ObjectFiles"
	case StaticLib:
		return "StaticLib"
	case DynamicLib:
		return "DynamicLib"
	case Executable:
		return "Executable"
	case SourceFiles:
		return "SourceFiles"
	case SourceSetLib:
		return "SourceSetLib"
	default:
		return "Out(?)"
	}
}

// Out is a product's memoized visit result. Path holds a single-file
// kind's artifact (StaticLib/DynamicLib/Executable/SourceSetLib); Paths
// holds a multi-file kind's list (ObjectFiles/SourceFiles); Items holds
// Mixed's predecessor list, each element itself non-Mixed.
type Out struct {
	Kind  OutKind
	Path  string
	Paths []string
	Items []Out
}

// flatten collapses a list of dependency Out values into a single Mixed
// predecessor list where each element is a non-Mixed item.
func flatten(outs []Out) []Out {
	var flat []Out
	for _, o := range outs {
		switch o.Kind {
		case Nothing:
			// contributes nothing, e.g. a Config or Message dependency.
		case Mixed:
			flat = append(flat, flatten(o.Items)...)
		default:
			flat = append(flat, o)
		}
	}
	return flat
}

// objectFilesOf collects every ObjectFiles path across predecessors, in
// order, for compiling a SourceSet's contribution into a dependent's link.
func objectFilesOf(preds []Out) []string {
	var out []string
	for _, o := range preds {
		if o.Kind == ObjectFiles {
			out = append(out, o.Paths...)
		}
	}
	return out
}

// sourceFilesOf collects every SourceFiles path across predecessors (the
// generated .cpp/.h files a Moc/Rcc/Uic dependency contributes).
func sourceFilesOf(preds []Out) []string {
	var out []string
	for _, o := range preds {
		if o.Kind == SourceFiles {
			out = append(out, o.Paths...)
		}
	}
	return out
}

// libsOf collects every StaticLib/DynamicLib artifact across
// predecessors, for linking a dependent Library/Executable against them.
func libsOf(preds []Out) []string {
	var out []string
	for _, o := range preds {
		if o.Kind == StaticLib || o.Kind == DynamicLib {
			out = append(out, o.Path)
		}
	}
	return out
}

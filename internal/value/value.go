// Package value implements BUSY's runtime value representation and the
// operator/assignment-compatibility rules of 
package value

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/busy-build/busy/internal/symbol"
)

// Kind identifies which base type (or compound shape) a Value holds.
type Kind int

const (
	Bool Kind = iota
	Int
	Real
	String
	Path
	Symbol
	List
	ClassInst
	ModuleRef
	EnumRef // a symbol value belonging to a specific EnumDecl
)

func (k Kind) String() string {
	switch k {
	case Bool:
		return "bool"
	case Int:
		return "int"
	case Real:
		return "real"
	case String:
		return "string"
	case Path:
		return "path"
	case Symbol:
		return "symbol"
	case List:
		return "list"
	case ClassInst:
		return "class"
	case ModuleRef:
		return "module"
	case EnumRef:
		return "enum"
	default:
		return "unknown"
	}
}

// Value is a runtime value produced by expression evaluation. Exactly one
// of the typed fields is meaningful, selected by Kind.
type Value struct {
	Kind  Kind
	B     bool
	I     int64
	R     float64
	S     string          // String, Path, or Symbol text
	Elems []Value         // List
	Inst  *symbol.Instance // ClassInst
	Mod   *symbol.Decl     // ModuleRef
	Enum  *symbol.Decl     // EnumRef: the owning EnumDecl
}

func BoolV(b bool) Value    { return Value{Kind: Bool, B: b} }
func IntV(i int64) Value    { return Value{Kind: Int, I: i} }
func RealV(r float64) Value { return Value{Kind: Real, R: r} }
func StringV(s string) Value { return Value{Kind: String, S: s} }
func PathV(s string) Value  { return Value{Kind: Path, S: s} }
func SymbolV(s string) Value { return Value{Kind: Symbol, S: s} }
func ListV(elems []Value) Value { return Value{Kind: List, Elems: elems} }

func (v Value) String() string {
	switch v.Kind {
	case Bool:
		return strconv.FormatBool(v.B)
	case Int:
		return strconv.FormatInt(v.I, 10)
	case Real:
		return strconv.FormatFloat(v.R, 'g', -1, 64)
	case String:
		return v.S
	case Path:
		return v.S
	case Symbol:
		return v.S
	case List:
		parts := make([]string, len(v.Elems))
		for i, e := range v.Elems {
			parts[i] = e.String()
		}
		return "[" + strings.Join(parts, " ") + "]"
	case ClassInst:
		if v.Inst != nil && v.Inst.Class != nil {
			return fmt.Sprintf("<%s instance>", v.Inst.Class.Name)
		}
		return "<instance>"
	case ModuleRef:
		if v.Mod != nil {
			return fmt.Sprintf("<module %s>", v.Mod.Name)
		}
		return "<module>"
	case EnumRef:
		return v.S
	default:
		return "<?>"
	}
}

// AssignableTo reports whether a value of kind src can be assigned to a
// slot declared as dst, per 
// rule: identical types; subclass-to-class; symbol-to-enum; scalar-to-
// list of that scalar's type (append semantics).
func AssignableTo(srcKind, dstKind Kind) bool {
	if srcKind == dstKind {
		return true
	}
	if srcKind == Symbol && dstKind == EnumRef {
		return true
	}
	if dstKind == List {
		return true // element-wise append compatibility is checked by the caller with element types
	}
	return false
}

// Add implements `+` across BUSY's overloaded numeric/string/path/list
// semantics.
func Add(a, b Value) (Value, error) {
	switch {
	case a.Kind == Int && b.Kind == Int:
		return IntV(a.I + b.I), nil
	case isNumeric(a) && isNumeric(b):
		return RealV(asReal(a) + asReal(b)), nil
	case a.Kind == String && b.Kind == String:
		return StringV(a.S + b.S), nil
	case a.Kind == List:
		return listUnion(a, b), nil
	case b.Kind == List:
		return listUnion(b, a), nil
	default:
		return Value{}, fmt.Errorf("operator + not defined for %s and %s", a.Kind, b.Kind)
	}
}

// Sub implements `-`: numeric subtraction or list difference.
func Sub(a, b Value) (Value, error) {
	switch {
	case a.Kind == Int && b.Kind == Int:
		return IntV(a.I - b.I), nil
	case isNumeric(a) && isNumeric(b):
		return RealV(asReal(a) - asReal(b)), nil
	case a.Kind == List:
		return listDifference(a, b), nil
	default:
		return Value{}, fmt.Errorf("operator - not defined for %s and %s", a.Kind, b.Kind)
	}
}

// Mul implements `*`: numeric product or list intersection.
func Mul(a, b Value) (Value, error) {
	switch {
	case a.Kind == Int && b.Kind == Int:
		return IntV(a.I * b.I), nil
	case isNumeric(a) && isNumeric(b):
		return RealV(asReal(a) * asReal(b)), nil
	case a.Kind == List:
		return listIntersection(a, b), nil
	default:
		return Value{}, fmt.Errorf("operator * not defined for %s and %s", a.Kind, b.Kind)
	}
}

// Div implements `/` on numeric operands.
func Div(a, b Value) (Value, error) {
	if !isNumeric(a) || !isNumeric(b) {
		return Value{}, fmt.Errorf("operator / not defined for %s and %s", a.Kind, b.Kind)
	}
	if a.Kind == Int && b.Kind == Int {
		if b.I == 0 {
			return Value{}, fmt.Errorf("division by zero")
		}
		return IntV(a.I / b.I), nil
	}
	denom := asReal(b)
	if denom == 0 {
		return Value{}, fmt.Errorf("division by zero")
	}
	return RealV(asReal(a) / denom), nil
}

// Mod implements `%` on integer operands.
func Mod(a, b Value) (Value, error) {
	if a.Kind != Int || b.Kind != Int {
		return Value{}, fmt.Errorf("operator %% requires int operands, got %s and %s", a.Kind, b.Kind)
	}
	if b.I == 0 {
		return Value{}, fmt.Errorf("division by zero")
	}
	return IntV(a.I % b.I), nil
}

// Equal implements `==` (by-reference for lists, by-identity for modules
// and class instances, structural for base types and enum symbols).
func Equal(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case Bool:
		return a.B == b.B
	case Int:
		return a.I == b.I
	case Real:
		return a.R == b.R
	case String, Path, Symbol, EnumRef:
		return a.S == b.S
	case List:
		return sameSliceIdentity(a.Elems, b.Elems)
	case ClassInst:
		return a.Inst == b.Inst
	case ModuleRef:
		return a.Mod == b.Mod
	default:
		return false
	}
}

func sameSliceIdentity(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return true
	}
	return &a[0] == &b[0]
}

// Less implements `<` for numeric and ASCII-string operands.
func Less(a, b Value) (bool, error) {
	switch {
	case isNumeric(a) && isNumeric(b):
		return asReal(a) < asReal(b), nil
	case a.Kind == String && b.Kind == String:
		return a.S < b.S, nil
	default:
		return false, fmt.Errorf("operator < not defined for %s and %s", a.Kind, b.Kind)
	}
}

// In implements the `in` membership operator.
func In(elem, list Value) (bool, error) {
	if list.Kind != List {
		return false, fmt.Errorf("right-hand side of 'in' must be a list, got %s", list.Kind)
	}
	for _, e := range list.Elems {
		if Equal(elem, e) {
			return true, nil
		}
	}
	return false, nil
}

// Not implements the logical negation operator `!`.
func Not(a Value) (Value, error) {
	if a.Kind != Bool {
		return Value{}, fmt.Errorf("operator ! requires bool, got %s", a.Kind)
	}
	return BoolV(!a.B), nil
}

// Negate implements unary `-`.
func Negate(a Value) (Value, error) {
	switch a.Kind {
	case Int:
		return IntV(-a.I), nil
	case Real:
		return RealV(-a.R), nil
	default:
		return Value{}, fmt.Errorf("unary - requires numeric operand, got %s", a.Kind)
	}
}

func isNumeric(v Value) bool { return v.Kind == Int || v.Kind == Real }
func asReal(v Value) float64 {
	if v.Kind == Int {
		return float64(v.I)
	}
	return v.R
}

// listUnion implements list `+`: order-preserving union, with right-side
// duplicate suppression when the right operand is a scalar.
func listUnion(list, rhs Value) Value {
	out := append([]Value{}, list.Elems...)
	if rhs.Kind == List {
		for _, e := range rhs.Elems {
			if !containsEqual(out, e) {
				out = append(out, e)
			}
		}
		return ListV(out)
	}
	if !containsEqual(out, rhs) {
		out = append(out, rhs)
	}
	return ListV(out)
}

func listDifference(list, rhs Value) Value {
	var remove []Value
	if rhs.Kind == List {
		remove = rhs.Elems
	} else {
		remove = []Value{rhs}
	}
	var out []Value
	for _, e := range list.Elems {
		if !containsEqual(remove, e) {
			out = append(out, e)
		}
	}
	return ListV(out)
}

func listIntersection(list, rhs Value) Value {
	var keep []Value
	if rhs.Kind == List {
		keep = rhs.Elems
	} else {
		keep = []Value{rhs}
	}
	var out []Value
	for _, e := range list.Elems {
		if containsEqual(keep, e) {
			out = append(out, e)
		}
	}
	return ListV(out)
}

func containsEqual(haystack []Value, needle Value) bool {
	for _, e := range haystack {
		if Equal(e, needle) {
			return true
		}
	}
	return false
}

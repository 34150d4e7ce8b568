// Package path implements BUSY's canonical path model.
//
// A canonical path is a string beginning with "//" (absolute), "./"
// (current-relative) or a run of "../" segments optionally followed by more
// segments. It never contains a backslash, any of the characters in
// charclass.ForbiddenPathChars, an empty segment, or a "." / ".." segment
// anywhere except the leading "../" prefix.
//
// Every function here except Copy, which performs file I/O, is pure and
// total: failure is reported through a
// Status value (OK/NotSupported/InvalidFormat/OutOfSpace/NOP) rather than
// through panics or sentinel strings.
package path

import (
	"io"
	"os"
	"strings"

	"github.com/busy-build/busy/internal/charclass"
)

// Status is the outcome of a path operation.
type Status int

const (
	OK Status = iota
	NotSupported
	InvalidFormat
	OutOfSpace
	NOP
)

func (s Status) String() string {
	switch s {
	case OK:
		return "OK"
	case NotSupported:
		return "NotSupported"
	case InvalidFormat:
		return "InvalidFormat"
	case OutOfSpace:
		return "OutOfSpace"
	case NOP:
		return "NOP"
	default:
		return "Unknown"
	}
}

// driveRoot reports the drive-letter prefix of a Windows-style absolute path,
// e.g. "C:" out of "C:/foo", and whether one was found.
func driveRoot(segs []string) (string, bool) {
	if len(segs) == 0 {
		return "", false
	}
	first := segs[0]
	if len(first) == 2 && first[1] == ':' && isASCIILetter(rune(first[0])) {
		return first, true
	}
	return "", false
}

func isASCIILetter(ch rune) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

// Normalize converts an OS-native or already-canonical path into canonical
// form.
func Normalize(input string) (string, Status) {
	// Leading whitespace is skipped.
	s := strings.TrimLeft(input, " \t")
	// Trailing whitespace on input is ignored per the canonical-form invariant.
	s = strings.TrimRight(s, " \t\r\n")

	if s == "" {
		return "", InvalidFormat
	}
	if strings.HasPrefix(s, "~") {
		return "", NotSupported
	}
	if strings.HasPrefix(s, "\\\\") {
		return "", NotSupported
	}

	s = strings.ReplaceAll(s, "\\", "/")

	// Windows drive root: "C:..." or "C:/..." -> "//C:/..."
	if len(s) >= 2 && isASCIILetter(rune(s[0])) && s[1] == ':' {
		rest := s[2:]
		rest = strings.TrimPrefix(rest, "/")
		canon := "//" + s[0:2]
		if rest != "" {
			canon += "/" + rest
		} else {
			canon += "/"
		}
		return finishNormalize(canon)
	}

	// Unix root "/" -> "//"
	if strings.HasPrefix(s, "/") {
		return finishNormalize("//" + strings.TrimPrefix(s, "/"))
	}

	if strings.HasPrefix(s, "./") || s == "." {
		return finishNormalize(s)
	}
	if strings.HasPrefix(s, "../") || s == ".." {
		return finishNormalize(s)
	}

	// Bare relative name: prefix with "./"
	return finishNormalize("./" + s)
}

// finishNormalize validates and trims a string already rewritten with a
// recognized prefix, rejecting forbidden characters and malformed
// segments.
func finishNormalize(s string) (string, Status) {
	for _, ch := range s {
		if charclass.IsForbiddenFSChar(ch) {
			return "", InvalidFormat
		}
	}

	var prefix string
	rest := s
	switch {
	case strings.HasPrefix(s, "//"):
		prefix = "//"
		rest = s[2:]
	case strings.HasPrefix(s, "./"):
		prefix = "./"
		rest = s[2:]
	case s == ".":
		return ".", OK
	case s == "..":
		return "..", OK
	default:
		// leading run of "../"
		i := 0
		for strings.HasPrefix(rest[i:], "../") {
			i += 3
		}
		if i == 0 {
			return "", InvalidFormat
		}
		prefix = s[:i]
		rest = s[i:]
	}

	if rest == "" {
		if prefix == "//" {
			return "//", OK
		}
		return strings.TrimSuffix(prefix, "/"), OK
	}
	if strings.HasSuffix(rest, "/") {
		return "", InvalidFormat
	}

	segs := strings.Split(rest, "/")
	for _, seg := range segs {
		if seg == "" {
			return "", InvalidFormat
		}
		if seg == "." || seg == ".." {
			return "", InvalidFormat
		}
	}
	return prefix + rest, OK
}

// Denormalize strips the canonical prefix and produces the OS-native form:
// Windows drive form "X:/..." or Unix form "/...".
func Denormalize(p string) string {
	if strings.HasPrefix(p, "//") {
		rest := p[2:]
		if len(rest) >= 2 && isASCIILetter(rune(rest[0])) && rest[1] == ':' {
			return rest // already "X:/..."
		}
		return "/" + rest
	}
	return p
}

func isAbs(p string) bool  { return strings.HasPrefix(p, "//") }
func segments(p string) []string {
	trimmed := p
	switch {
	case strings.HasPrefix(p, "//"):
		trimmed = p[2:]
	case strings.HasPrefix(p, "./"):
		trimmed = p[2:]
	}
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

// Join appends rel onto base . "." on the left yields rel in its
// normalized form. A leading run of "../" on the right pops segments from the
// left. An absolute right-hand side is rejected.
func Join(base, rel string) (string, Status) {
	if isAbs(rel) {
		return "", InvalidFormat
	}
	if base == "." {
		return Normalize(rel)
	}

	baseSegs := segments(base)
	relSegs := segments(rel)

	for len(relSegs) > 0 && relSegs[0] == ".." {
		if isAbs(base) && len(baseSegs) < 1 {
			return "", NotSupported
		}
		if len(baseSegs) == 0 {
			return "", NotSupported
		}
		baseSegs = baseSegs[:len(baseSegs)-1]
		relSegs = relSegs[1:]
	}

	var prefix string
	if isAbs(base) {
		prefix = "//"
	} else {
		prefix = "./"
	}

	all := append(append([]string{}, baseSegs...), relSegs...)
	if len(all) == 0 {
		if prefix == "//" {
			return "//", OK
		}
		return ".", OK
	}
	return prefix + strings.Join(all, "/"), OK
}

// MakeRelative expresses target relative to refDir, requiring identical
// drive kind.
func MakeRelative(refDir, target string) (string, Status) {
	if isAbs(refDir) != isAbs(target) {
		return "", NotSupported
	}
	refSegs := segments(refDir)
	tgtSegs := segments(target)

	if isAbs(refDir) {
		rd, rok := driveRoot(refSegs)
		td, tok := driveRoot(tgtSegs)
		if rok != tok || (rok && rd != td) {
			return "", NotSupported
		}
	}

	common := 0
	for common < len(refSegs) && common < len(tgtSegs) && refSegs[common] == tgtSegs[common] {
		common++
	}

	ups := len(refSegs) - common
	downSegs := tgtSegs[common:]

	if ups == 0 {
		if len(downSegs) == 0 {
			return ".", OK
		}
		return "./" + strings.Join(downSegs, "/"), OK
	}

	parts := make([]string, 0, ups+len(downSegs))
	for i := 0; i < ups; i++ {
		parts = append(parts, "..")
	}
	parts = append(parts, downSegs...)
	return strings.Join(parts, "/"), OK
}

// Part selects a substring of a path part. It never allocates beyond the
// returned string: the caller gets a view into path.
type Part int

const (
	All Part = iota
	Filename
	Filepath
	Basename
	CompleteBasename
	Extension
)

// PathPart extracts the requested Part from path.
func PathPart(p string, which Part) string {
	switch which {
	case All:
		return p
	case Filename:
		i := strings.LastIndexByte(p, '/')
		return p[i+1:]
	case Filepath:
		i := strings.LastIndexByte(p, '/')
		if i < 0 {
			return ""
		}
		return p[:i]
	case Basename:
		fn := PathPart(p, Filename)
		i := strings.IndexByte(fn, '.')
		if i < 0 {
			return fn
		}
		return fn[:i]
	case CompleteBasename:
		fn := PathPart(p, Filename)
		i := strings.LastIndexByte(fn, '.')
		if i < 0 {
			return fn
		}
		return fn[:i]
	case Extension:
		fn := PathPart(p, Filename)
		i := strings.LastIndexByte(fn, '.')
		if i < 0 {
			return ""
		}
		return fn[i+1:]
	default:
		return ""
	}
}

// Expansion supplies the named parts ApplyExpansion substitutes for
// "{{...}}" placeholders.
type Expansion struct {
	Source         string
	RootBuildDir   string
	CurrentBuildDir string
}

// ApplyExpansion replaces "{{source}}", "{{source_file_part}}",
// "{{source_name_part}}", "{{source_dir}}", "{{source_ext}}",
// "{{root_build_dir}}" and "{{current_build_dir}}" in template with the
// corresponding parts of exp. When filePartsOnly is true, "{{source}}"
// and "{{source_dir}}" are rejected (InvalidFormat).
func ApplyExpansion(template string, exp Expansion, filePartsOnly bool) (string, Status) {
	var out strings.Builder
	rest := template
	for {
		i := strings.Index(rest, "{{")
		if i < 0 {
			out.WriteString(rest)
			break
		}
		out.WriteString(rest[:i])
		rest = rest[i+2:]
		j := strings.Index(rest, "}}")
		if j < 0 {
			return "", InvalidFormat
		}
		key := rest[:j]
		rest = rest[j+2:]

		switch key {
		case "source":
			if filePartsOnly {
				return "", InvalidFormat
			}
			out.WriteString(exp.Source)
		case "source_file_part":
			out.WriteString(PathPart(exp.Source, Filename))
		case "source_name_part":
			out.WriteString(PathPart(exp.Source, Basename))
		case "source_dir":
			if filePartsOnly {
				return "", InvalidFormat
			}
			out.WriteString(PathPart(exp.Source, Filepath))
		case "source_ext":
			out.WriteString(PathPart(exp.Source, Extension))
		case "root_build_dir":
			out.WriteString(exp.RootBuildDir)
		case "current_build_dir":
			out.WriteString(exp.CurrentBuildDir)
		default:
			return "", InvalidFormat
		}
	}
	return out.String(), OK
}

// Copy ensures to's parent directory tree exists, then byte-copies from
// to to. Both paths are OS-native (already denormalized).
func Copy(to, from string) Status {
	dir := PathPart(NormalizeSlashes(to), Filepath)
	if dir != "" {
		if err := os.MkdirAll(Denormalize(dir), 0o755); err != nil {
			return OutOfSpace
		}
	}
	src, err := os.Open(from)
	if err != nil {
		return NotSupported
	}
	defer src.Close()

	dst, err := os.Create(to)
	if err != nil {
		return NotSupported
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return OutOfSpace
	}
	return OK
}

// NormalizeSlashes is a small helper for Copy: it normalizes an OS-native
// path to canonical form purely to reuse PathPart's segment splitting,
// discarding the status (Copy callers are expected to pass well-formed
// paths already validated by Normalize upstream).
func NormalizeSlashes(p string) string {
	canon, status := Normalize(p)
	if status != OK {
		return p
	}
	return canon
}

// Package busymod resolves BUSY submodule directories: turning a
// `subdir`/`submod`/`submodule` declaration into a filesystem location,
// detecting ancestor-chain recursion, and applying the `else` fallback
// that lets a missing directory become a `#dummy` module instead of a
// fatal error.
package busymod

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/busy-build/busy/internal/errors"
	buspath "github.com/busy-build/busy/internal/path"
)

// BUSYFileName is the literal filename every participating directory must
// contain.
const BUSYFileName = "BUSY"

// FS abstracts the filesystem operations resolution needs, so tests can
// substitute an in-memory fake without touching disk.
type FS interface {
	Exists(path string) bool
	ReadFile(path string) ([]byte, error)
}

// OSFS is the default FS, backed by the real filesystem.
type OSFS struct{}

func (OSFS) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Dir describes a resolved module directory: its canonical logical path,
// its logical-relative path from the build root, and the filesystem
// location backing it.
type Dir struct {
	Logical  string // canonical //-rooted logical path
	RDir     string // logical path relative to the root module
	FSPath   string // absolute OS-native filesystem directory
	DirName  string // leaf identifier segment
	BUSYPath string // absolute path to the BUSY file, "" if Dummy
	Dummy    bool
}

// Root creates the Dir for a build's top-level module, rooted at fsRoot.
func Root(fsRoot string) (Dir, error) {
	abs, err := filepath.Abs(fsRoot)
	if err != nil {
		return Dir{}, err
	}
	return Dir{Logical: "//", RDir: ".", FSPath: filepath.Clean(abs), DirName: ""}, nil
}

// Loader resolves submodule directories and caches results by absolute
// filesystem path, mirroring the identity-keyed cache discipline of a
// module loader that must never re-stat a directory it has already
// resolved in the same run.
type Loader struct {
	fs    FS
	mu    sync.RWMutex
	cache map[string]*Dir
}

// NewLoader creates a Loader backed by fs. Pass OSFS{} in production.
func NewLoader(fs FS) *Loader {
	return &Loader{fs: fs, cache: map[string]*Dir{}}
}

// Resolve computes the Dir for a subdir/submod/submodule declaration named
// name under parent, honoring an optional `= override` (a path or a bare
// relative identifier) and an optional `else elsePath` fallback. ancestors
// is the list of absolute filesystem directories already open on the
// current parse stack, used for cycle detection. pos is the declaration's
// source position, attached to any raised Diagnostic.
func (l *Loader) Resolve(parent Dir, name string, override string, hasOverride bool, elsePath string, hasElse bool, ancestors []string, pos errors.Pos) (Dir, *errors.Diagnostic) {
	target := override
	if !hasOverride {
		target = "./" + name
	}

	dir, diag := l.resolveOne(parent, target, ancestors, pos)
	if diag != nil {
		return Dir{}, diag
	}
	dir.DirName = name

	if l.fs.Exists(dir.BUSYPath) {
		return dir, nil
	}

	if hasElse {
		altDir, altDiag := l.resolveOne(parent, elsePath, ancestors, pos)
		if altDiag == nil {
			altDir.DirName = name
			if l.fs.Exists(altDir.BUSYPath) {
				return altDir, nil
			}
		}
		dir.Dummy = true
		dir.BUSYPath = ""
		return dir, nil
	}

	return Dir{}, errors.New(errors.RES001, pos, "missing BUSY file in %s and no else fallback resolved", dir.FSPath)
}

// resolveOne normalizes relPathOrRaw against parent and produces the
// corresponding Dir, without checking for a BUSY file.
func (l *Loader) resolveOne(parent Dir, relPathOrRaw string, ancestors []string, pos errors.Pos) (Dir, *errors.Diagnostic) {
	rel := relPathOrRaw
	if !strings.HasPrefix(rel, "./") && !strings.HasPrefix(rel, "../") && !strings.HasPrefix(rel, "//") {
		rel = "./" + rel
	}

	logical, status := buspath.Join(parent.Logical, rel)
	if status != buspath.OK {
		return Dir{}, errors.New(errors.PTH002, pos, "cannot resolve submodule path %q from %q: %s", relPathOrRaw, parent.Logical, status)
	}

	relFromParent, status := buspath.MakeRelative(parent.Logical, logical)
	if status != buspath.OK {
		relFromParent = rel
	}
	fsPath := filepath.Clean(filepath.Join(parent.FSPath, filepath.FromSlash(strings.TrimPrefix(relFromParent, "./"))))

	for _, anc := range ancestors {
		if anc == fsPath {
			return Dir{}, errors.New(errors.SEM007, pos, "submodule path points to the same directory as current or outer module: %s", fsPath)
		}
	}

	rdir, status := buspath.MakeRelative("//", logical)
	if status != buspath.OK {
		rdir = logical
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if cached, ok := l.cache[fsPath]; ok {
		return *cached, nil
	}

	d := Dir{
		Logical:  logical,
		RDir:     rdir,
		FSPath:   fsPath,
		BUSYPath: filepath.Join(fsPath, BUSYFileName),
	}
	l.cache[fsPath] = &d
	return d, nil
}

// ReadBUSY reads the BUSY file at dir.BUSYPath.
func (l *Loader) ReadBUSY(dir Dir) ([]byte, *errors.Diagnostic) {
	if dir.Dummy || dir.BUSYPath == "" {
		return nil, errors.New(errors.RES002, errors.Pos{}, "module %s has no BUSY file (#dummy)", dir.Logical)
	}
	data, err := l.fs.ReadFile(dir.BUSYPath)
	if err != nil {
		return nil, errors.New(errors.RES002, errors.Pos{}, "cannot read %s: %v", dir.BUSYPath, err)
	}
	return data, nil
}

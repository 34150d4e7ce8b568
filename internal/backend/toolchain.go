package backend

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ToolchainDefaults is one entry of `builtins.#ctdefaults[toolchain]`:
// the baseline compile/link flags a toolchain contributes before any
// product- or config-level flag is added.
type ToolchainDefaults struct {
	CFlags  []string `yaml:"cflags"`
	LdFlags []string `yaml:"ldflags"`
}

// CTDefaults is the full `#ctdefaults` table, keyed by toolchain name
// ("gcc", "clang", "msvc"). Loaded from toolchain.yaml, the external
// host-detection table.
type CTDefaults map[string]ToolchainDefaults

// LoadCTDefaults parses a toolchain.yaml file into a CTDefaults table.
func LoadCTDefaults(path string) (CTDefaults, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read toolchain defaults: %w", err)
	}
	var table CTDefaults
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parse toolchain defaults: %w", err)
	}
	return table, nil
}

// For looks up toolchain's defaults, returning a zero value (no
// default flags) when the toolchain is unknown to the table.
func (t CTDefaults) For(toolchain string) ToolchainDefaults {
	return t[toolchain]
}

// simpleHostInfo is the default HostInfo: a fixed (toolchain, OS) pair
// supplied by the CLI rather than probed, since real OS/compiler
// detection is out of scope here.
type simpleHostInfo struct {
	toolchain string
	windows   bool
}

// NewHostInfo builds a HostInfo for the given toolchain name, deriving
// file-extension conventions from whether the host is Windows.
func NewHostInfo(toolchain string, windows bool) HostInfo {
	return simpleHostInfo{toolchain: toolchain, windows: windows}
}

func (h simpleHostInfo) Toolchain() string { return h.toolchain }
func (h simpleHostInfo) IsWindows() bool   { return h.windows }

func (h simpleHostInfo) ObjExt() string {
	if h.windows {
		return "obj"
	}
	return "o"
}

func (h simpleHostInfo) LibExt() string {
	if h.windows {
		return ".lib"
	}
	return ".a"
}

func (h simpleHostInfo) ExeExt() string {
	if h.windows {
		return ".exe"
	}
	return ""
}

func (h simpleHostInfo) LibPrefix() string {
	if h.windows {
		return ""
	}
	return "lib"
}

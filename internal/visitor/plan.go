package visitor

import (
	"encoding/json"
	"sort"
)

// planVersion tags the JSON shape Plan emits, so a consumer can detect a
// future incompatible change without guessing from field presence.
const planVersion = "busy.plan/v1"

// planEntry is one product's #out, reshaped for stable JSON encoding.
type planEntry struct {
	Product string   `json:"product"`
	Kind    string   `json:"kind"`
	Path    string   `json:"path,omitempty"`
	Paths   []string `json:"paths,omitempty"`
	Items   int      `json:"items,omitempty"`
}

// Plan renders outs as deterministic JSON: entries are sorted by
// qualified product name rather than left in map iteration order, so
// two runs over the same input produce byte-identical output.
func Plan(outs map[string]Out) ([]byte, error) {
	names := make([]string, 0, len(outs))
	for name := range outs {
		names = append(names, name)
	}
	sort.Strings(names)

	entries := make([]planEntry, 0, len(names))
	for _, name := range names {
		out := outs[name]
		entries = append(entries, planEntry{
			Product: name,
			Kind:    out.Kind.String(),
			Path:    out.Path,
			Paths:   out.Paths,
			Items:   len(out.Items),
		})
	}

	return json.MarshalIndent(struct {
		Version string      `json:"version"`
		Entries []planEntry `json:"products"`
	}{Version: planVersion, Entries: entries}, "", "  ")
}

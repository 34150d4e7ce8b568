// Package paramtable implements the global parameter table: a
// process-wide map from dotted qualified module path to a stringly-typed
// override value, consulted once per `param` declaration during the
// top-level parse. A consulted entry is marked used, not removed, so Len
// still counts it; an entry still unused when that parse finishes is an
// error (see Validate).
package paramtable

import (
	"fmt"
	"sort"
	"sync"
)

// Table is a parameter table. The zero value is ready to use.
type Table struct {
	mu      sync.Mutex
	entries map[string]string
	used    map[string]bool
}

// New creates an empty Table.
func New() *Table {
	return &Table{entries: map[string]string{}, used: map[string]bool{}}
}

// Set installs an override for the dotted qualified name key, as supplied
// on the command line or by a driving tool.
func (t *Table) Set(key, value string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.entries == nil {
		t.entries = map[string]string{}
	}
	t.entries[key] = value
}

// Lookup consults the table for key, as a `param` declaration does during
// parse. A successful lookup marks the entry used so it is excluded from
// UnusedKeys.
func (t *Table) Lookup(key string) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, ok := t.entries[key]
	if ok {
		if t.used == nil {
			t.used = map[string]bool{}
		}
		t.used[key] = true
	}
	return v, ok
}

// UnusedKeys returns, in sorted order, every entry never consulted by a
// `param` declaration. A non-empty result after the top-level parse is a
// fatal error.
func (t *Table) UnusedKeys() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	var unused []string
	for k := range t.entries {
		if !t.used[k] {
			unused = append(unused, k)
		}
	}
	sort.Strings(unused)
	return unused
}

// Len reports how many entries remain installed (used or not).
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// ErrUnusedParameters is returned by Validate when UnusedKeys is non-empty.
type ErrUnusedParameters struct {
	Keys []string
}

func (e *ErrUnusedParameters) Error() string {
	return fmt.Sprintf("unused parameter table entries: %v", e.Keys)
}

// Validate returns ErrUnusedParameters if any entry was never consulted.
func (t *Table) Validate() error {
	if unused := t.UnusedKeys(); len(unused) > 0 {
		return &ErrUnusedParameters{Keys: unused}
	}
	return nil
}

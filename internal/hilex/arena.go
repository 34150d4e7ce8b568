package hilex

// Arena collects the synthetic strings a HiLexer materializes while
// expanding macro arguments, so they can all be released together when the
// hilex itself is discarded. Go's garbage collector makes the release a
// no-op, but keeping the allocations under one owner gives callers a
// single place to inspect how much expansion text was generated.
type Arena struct {
	slots []string
}

// NewArena returns an empty Arena.
func NewArena() *Arena {
	return &Arena{}
}

// Alloc records s as belonging to the arena and returns it unchanged.
func (a *Arena) Alloc(s string) string {
	a.slots = append(a.slots, s)
	return s
}

// Len reports how many strings have been allocated from the arena.
func (a *Arena) Len() int {
	return len(a.slots)
}

// Reset releases every slot in the arena.
func (a *Arena) Reset() {
	a.slots = a.slots[:0]
}

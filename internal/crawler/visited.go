package crawler

import "sync"

// VisitedSet records every address accepted for fetching during a run.
// Addresses are compared as exact strings.
type VisitedSet struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewVisitedSet creates an empty set.
func NewVisitedSet() *VisitedSet {
	return &VisitedSet{seen: make(map[string]struct{})}
}

// Contains reports whether addr has been marked.
func (v *VisitedSet) Contains(addr string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	_, ok := v.seen[addr]
	return ok
}

// MarkIfAbsent marks addr and reports whether this call did so.
// Of several concurrent callers with the same address exactly one gets true.
func (v *VisitedSet) MarkIfAbsent(addr string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.seen[addr]; ok {
		return false
	}
	v.seen[addr] = struct{}{}
	return true
}

// Len returns the number of marked addresses.
func (v *VisitedSet) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.seen)
}

package ident

import (
	"maps"
	"sync"
)

// Allocator hands out identifiers per kind.
// Sequence numbers start at 1, only grow and are never reused for the lifetime of a game.
//
// Thread-safe.
type Allocator struct {
	mu   sync.Mutex
	last map[string]int64
}

// NewAllocator creates an allocator with no issued identifiers.
func NewAllocator() *Allocator {
	return &Allocator{last: make(map[string]int64, 16)}
}

// Next returns a fresh identifier of the given kind.
func (a *Allocator) Next(kind string) ID {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.last[kind]++
	return ID{Kind: kind, Seq: a.last[kind]}
}

// Observe records an identifier created elsewhere (restored from a save game,
// received from the server) so Next never issues it again.
func (a *Allocator) Observe(id ID) {
	if id.IsZero() {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	if id.Seq > a.last[id.Kind] {
		a.last[id.Kind] = id.Seq
	}
}

// Last returns the highest sequence issued or observed for kind (0 if none).
func (a *Allocator) Last(kind string) int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.last[kind]
}

// Snapshot returns a copy of the per-kind counters.
func (a *Allocator) Snapshot() map[string]int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return maps.Clone(a.last)
}

// Restore raises counters to at least the values in snap.
// Counters never move backwards.
func (a *Allocator) Restore(snap map[string]int64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for kind, seq := range snap {
		if seq > a.last[kind] {
			a.last[kind] = seq
		}
	}
}

package world

import (
	"iter"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"weak"

	"github.com/oss-qm/freecol-sub000/internal/ident"
	"github.com/oss-qm/freecol-sub000/internal/model"
)

// Registry defaults.
const (
	DefaultSweepThreshold = 64
	DefaultSweepBatch     = 256
)

// RemovalListener is notified after an id is removed from the registry.
type RemovalListener func(id ident.ID, reason string)

// RegistryOptions configure a Registry. Zero values select the defaults.
type RegistryOptions struct {
	// SweepThreshold is the number of removals between sweeps of dead entries.
	SweepThreshold int
	// SweepBatch is the number of keys a sweep checks per lock acquisition.
	SweepBatch int
	// OnRemove, if set, is called after every Remove.
	OnRemove RemovalListener
}

// RegistryStats is a point-in-time view of the registry.
type RegistryStats struct {
	Live     int
	Dead     int
	Removals int64
	Sweeps   int64
	Evicted  int64
}

// Registry maps identifiers to live objects without keeping them alive.
//
// Entries are weak pointers: an object only reachable through the registry
// is collected and its entry reads as absent. Dead entries are evicted
// when met, and by an incremental sweep every SweepThreshold removals.
type Registry struct {
	mu      sync.RWMutex
	entries map[ident.ID]weak.Pointer[model.Object]

	alloc     *ident.Allocator
	threshold int
	batch     int
	onRemove  RemovalListener

	removals   atomic.Int64
	sinceSweep atomic.Int64
	sweeps     atomic.Int64
	evicted    atomic.Int64
	sweeping   atomic.Bool
}

// NewRegistry creates a registry. alloc, if not nil, observes every
// interned id so it never issues one again.
func NewRegistry(alloc *ident.Allocator, opts RegistryOptions) *Registry {
	if opts.SweepThreshold <= 0 {
		opts.SweepThreshold = DefaultSweepThreshold
	}
	if opts.SweepBatch <= 0 {
		opts.SweepBatch = DefaultSweepBatch
	}
	return &Registry{
		entries:   make(map[ident.ID]weak.Pointer[model.Object]),
		alloc:     alloc,
		threshold: opts.SweepThreshold,
		batch:     opts.SweepBatch,
		onRemove:  opts.OnRemove,
	}
}

// Intern registers obj under id.
//
// Panics with ErrNullIdentifier for a zero id, ErrNullObject for a nil
// object and *DuplicateIdentifierError if id is bound to a different live
// object. A dead entry is replaced; interning the same object again is a
// no-op.
func (r *Registry) Intern(id ident.ID, obj model.GameObject) {
	if id.IsZero() {
		panic(ErrNullIdentifier)
	}
	if obj == nil || obj.Base() == nil {
		panic(ErrNullObject)
	}
	base := obj.Base()

	r.mu.Lock()
	defer r.mu.Unlock()
	if wp, ok := r.entries[id]; ok {
		if cur := wp.Value(); cur != nil {
			if cur == base {
				return
			}
			panic(&DuplicateIdentifierError{ID: id})
		}
	}
	r.entries[id] = weak.Make(base)
	if r.alloc != nil {
		r.alloc.Observe(id)
	}
}

// Lookup returns the live object registered under id.
func (r *Registry) Lookup(id ident.ID) (model.GameObject, bool) {
	r.mu.RLock()
	wp, ok := r.entries[id]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if obj := wp.Value(); obj != nil {
		return obj.Self(), true
	}
	r.evict(id)
	return nil, false
}

// evict drops id if its entry is still dead.
func (r *Registry) evict(id ident.ID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	wp, ok := r.entries[id]
	if !ok || wp.Value() != nil {
		return false
	}
	delete(r.entries, id)
	r.evicted.Add(1)
	return true
}

// Remove drops id unconditionally and notifies the removal listener.
// Removing an absent id is not an error.
func (r *Registry) Remove(id ident.ID, reason string) {
	r.mu.Lock()
	delete(r.entries, id)
	r.mu.Unlock()

	r.removals.Add(1)
	if r.onRemove != nil {
		r.onRemove(id, reason)
	}
	if r.sinceSweep.Add(1) >= int64(r.threshold) {
		r.Sweep()
	}
}

// Sweep evicts dead entries in batches, releasing the lock between
// batches so readers are never blocked for the whole scan. Concurrent
// calls while a sweep runs return immediately. Returns the number evicted.
func (r *Registry) Sweep() int {
	if !r.sweeping.CompareAndSwap(false, true) {
		return 0
	}
	defer r.sweeping.Store(false)
	r.sinceSweep.Store(0)

	r.mu.RLock()
	keys := make([]ident.ID, 0, len(r.entries))
	for id := range r.entries {
		keys = append(keys, id)
	}
	r.mu.RUnlock()

	n := 0
	for chunk := range slices.Chunk(keys, r.batch) {
		r.mu.Lock()
		for _, id := range chunk {
			if wp, ok := r.entries[id]; ok && wp.Value() == nil {
				delete(r.entries, id)
				n++
			}
		}
		r.mu.Unlock()
	}

	r.sweeps.Add(1)
	r.evicted.Add(int64(n))
	slog.Debug("registry sweep", "checked", len(keys), "evicted", n)
	return n
}

// entry is a strong snapshot of one registry slot.
type entry struct {
	id  ident.ID
	obj model.GameObject
}

// snapshot returns live entries ordered by id and evicts dead ones.
func (r *Registry) snapshot() []entry {
	var live []entry
	var dead []ident.ID

	r.mu.RLock()
	for id, wp := range r.entries {
		if obj := wp.Value(); obj != nil {
			live = append(live, entry{id: id, obj: obj.Self()})
		} else {
			dead = append(dead, id)
		}
	}
	r.mu.RUnlock()

	for _, id := range dead {
		r.evict(id)
	}
	slices.SortFunc(live, func(a, b entry) int { return ident.Compare(a.id, b.id) })
	return live
}

// All iterates live objects in identifier order. The iteration works on a
// snapshot: objects interned or removed meanwhile may or may not be seen.
func (r *Registry) All() iter.Seq2[ident.ID, model.GameObject] {
	return func(yield func(ident.ID, model.GameObject) bool) {
		for _, e := range r.snapshot() {
			if !yield(e.id, e.obj) {
				return
			}
		}
	}
}

// Len returns the number of entries, dead ones not yet evicted included.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Stats counts live and dead entries.
func (r *Registry) Stats() RegistryStats {
	s := RegistryStats{
		Removals: r.removals.Load(),
		Sweeps:   r.sweeps.Load(),
		Evicted:  r.evicted.Load(),
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, wp := range r.entries {
		if wp.Value() != nil {
			s.Live++
		} else {
			s.Dead++
		}
	}
	return s
}

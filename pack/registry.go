package pack

import (
	"sort"
	"sync"
	"sync/atomic"
)

// Registry owns every pack and allocates fresh pack ids.
// Thread-safe: uses RWMutex for the pack map and atomic for ID generation.
type Registry struct {
	mu    sync.RWMutex
	packs map[int]*Pack
	last  atomic.Int64 // highest id allocated or observed
}

// NewRegistry creates a registry whose first allocated id is start+1.
func NewRegistry(start int) *Registry {
	r := &Registry{packs: make(map[int]*Pack)}
	r.last.Store(int64(start))
	return r
}

// Allocate returns a fresh pack id. Concurrent callers never receive the
// same id, and ids increase in allocation order.
func (r *Registry) Allocate() int {
	for {
		cur := r.last.Load()
		if r.last.CompareAndSwap(cur, cur+1) {
			return int(cur + 1)
		}
	}
}

// Observe raises the counter to id so pre-assigned ids are never allocated again.
func (r *Registry) Observe(id int) {
	for {
		cur := r.last.Load()
		if int64(id) <= cur || r.last.CompareAndSwap(cur, int64(id)) {
			return
		}
	}
}

// Lookup returns the pack with the given id, or nil.
func (r *Registry) Lookup(id int) *Pack {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.packs[id]
}

// GetOrCreate returns the pack with the given id, creating it if needed.
func (r *Registry) GetOrCreate(id int) *Pack {
	if p := r.Lookup(id); p != nil {
		return p
	}
	r.Observe(id)

	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.packs[id]; ok {
		return p
	}
	p := New(id)
	r.packs[id] = p
	return p
}

// Found creates a pack under a fresh id with founder as its first member.
func (r *Registry) Found(founder Member) *Pack {
	p := New(r.Allocate())
	p.Join(founder)

	r.mu.Lock()
	r.packs[p.id] = p
	r.mu.Unlock()
	return p
}

// Packs returns all packs ordered by id.
func (r *Registry) Packs() []*Pack {
	r.mu.RLock()
	result := make([]*Pack, 0, len(r.packs))
	for _, p := range r.packs {
		result = append(result, p)
	}
	r.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool { return result[i].id < result[j].id })
	return result
}

// Count returns the number of packs ever created. Packs are never removed;
// a pack whose last member left stays registered and empty.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.packs)
}

// Active returns the number of packs with at least one member.
func (r *Registry) Active() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, p := range r.packs {
		if p.Size() > 0 {
			n++
		}
	}
	return n
}

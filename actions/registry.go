package actions

import (
	"sync"
)

// Registry is the set of currently cancelled action instance identifiers.
//
// An identifier stays cancelled until the root invocation that owns it completes and clears it.
// A cancelled root that never completes keeps its entry forever, Len exposes that for inspection.
// All methods are safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	cancelled map[ActionID]struct{}
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		cancelled: make(map[ActionID]struct{}),
	}
}

// Cancel marks id as cancelled. Calling it again, or for an unknown id, has no further effect.
func (r *Registry) Cancel(id ActionID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cancelled[id] = struct{}{}
}

// IsCancelled reports whether id is currently marked as cancelled.
func (r *Registry) IsCancelled(id ActionID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.cancelled[id]

	return ok
}

// Clear removes id from the cancelled set. It is a no-op if id is absent.
func (r *Registry) Clear(id ActionID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.cancelled, id)
}

// Len returns the number of identifiers currently marked as cancelled.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.cancelled)
}

package subsystem

import "sync"

// entry tracks one subsystem.
//
// op serializes state machine operations on this subsystem for their whole
// duration, including the recovery delay. mu guards state so readers never
// wait on an operation in flight.
type entry struct {
	op    sync.Mutex
	mu    sync.RWMutex
	state Subsystem
}

func (e *entry) snapshot() Subsystem {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// Registry is the fixed, ordered set of subsystems. Identifiers are 1-based
// and stable for the lifetime of the registry.
type Registry struct {
	entries []*entry
}

// NewRegistry creates a registry with one HEALTHY subsystem per name.
func NewRegistry(names []string) *Registry {
	r := &Registry{entries: make([]*entry, 0, len(names))}
	for i, name := range names {
		r.entries = append(r.entries, &entry{
			state: Subsystem{
				ID:     i + 1,
				Name:   name,
				Status: Healthy,
				Health: FullHealth,
			},
		})
	}
	return r
}

func (r *Registry) Len() int {
	return len(r.entries)
}

func (r *Registry) lookup(id int) (*entry, bool) {
	if id < 1 || id > len(r.entries) {
		return nil, false
	}
	return r.entries[id-1], true
}

// Get returns a copy of subsystem id.
func (r *Registry) Get(id int) (Subsystem, bool) {
	e, ok := r.lookup(id)
	if !ok {
		return Subsystem{}, false
	}
	return e.snapshot(), true
}

// Snapshot returns copies of every subsystem in registry order.
func (r *Registry) Snapshot() []Subsystem {
	out := make([]Subsystem, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.snapshot())
	}
	return out
}

// CountStatus returns how many subsystems are currently in status s.
func (r *Registry) CountStatus(s Status) int {
	n := 0
	for _, e := range r.entries {
		if e.snapshot().Status == s {
			n++
		}
	}
	return n
}

// Acquire grants exclusive operation access to subsystem id until the
// returned Handle is released. It reports false for an unknown id.
func (r *Registry) Acquire(id int) (*Handle, bool) {
	e, ok := r.lookup(id)
	if !ok {
		return nil, false
	}
	e.op.Lock()
	return &Handle{e: e}, true
}

// Handle mutates one subsystem while its operation lock is held. Every
// transition sets status and health together.
type Handle struct {
	e *entry
}

func (h *Handle) State() Subsystem {
	return h.e.snapshot()
}

func (h *Handle) set(fn func(s *Subsystem)) Subsystem {
	h.e.mu.Lock()
	defer h.e.mu.Unlock()
	fn(&h.e.state)
	return h.e.state
}

func (h *Handle) MarkFailed() Subsystem {
	return h.set(func(s *Subsystem) {
		s.Status = Failed
		s.Health = NoHealth
	})
}

func (h *Handle) MarkRecovering() Subsystem {
	return h.set(func(s *Subsystem) {
		s.Status = Recovering
		s.Health = NoHealth
	})
}

func (h *Handle) MarkHealthy() Subsystem {
	return h.set(func(s *Subsystem) {
		s.Status = Healthy
		s.Health = FullHealth
	})
}

func (h *Handle) IncRestarts() Subsystem {
	return h.set(func(s *Subsystem) {
		s.RestartCount++
	})
}

// Release gives up operation access. The handle must not be used afterwards.
func (h *Handle) Release() {
	h.e.op.Unlock()
}

package metrics

import "sync/atomic"

// Snapshot copies every key touched so far. Counters and the failed-subsystem
// gauge are read one by one, so the copy is per-key consistent only.
func (r *Registry) Snapshot() map[string]int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snap := make(map[string]int64, len(r.counters))
	for key, v := range r.counters {
		snap[string(key)] = atomic.LoadInt64(v)
	}
	return snap
}

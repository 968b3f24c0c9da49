package metrics

import (
	"sync"
	"sync/atomic"
)

// MetricKey is a strongly typed metric identifier.
type MetricKey string

// Metric keys (centralized)
const (
	// State machine
	SubsystemCrashesTotal  MetricKey = "subsystem_crashes_total"
	SubsystemHealsTotal    MetricKey = "subsystem_heals_total"
	SubsystemRestartsTotal MetricKey = "subsystem_restarts_total"
	OperationsIgnoredTotal MetricKey = "operations_ignored_total"
	OperationsNoopTotal    MetricKey = "operations_noop_total"
	SubsystemsFailed       MetricKey = "subsystems_failed"

	// Automatic mode
	AutoTicksTotal      MetricKey = "auto_ticks_total"
	AutoInjectionsTotal MetricKey = "auto_injections_total"

	// Audit log
	AuditWritesTotal        MetricKey = "audit_writes_total"
	AuditWritesDroppedTotal MetricKey = "audit_writes_dropped_total"
	AuditRotationsTotal     MetricKey = "audit_rotations_total"
)

// gauges go up and down; every other key is a monotonically increasing counter.
var gauges = map[MetricKey]bool{
	SubsystemsFailed: true,
}

// Registry stores all metrics.
type Registry struct {
	mu       sync.RWMutex
	counters map[MetricKey]*int64
}

// NewRegistry creates a metrics registry.
func NewRegistry() *Registry {
	return &Registry{
		counters: make(map[MetricKey]*int64),
	}
}

// Inc increments a metric by 1.
func (r *Registry) Inc(key MetricKey) {
	r.Add(key, 1)
}

// Dec decrements a metric by 1.
func (r *Registry) Dec(key MetricKey) {
	r.Add(key, -1)
}

// Add increments a metric by delta.
func (r *Registry) Add(key MetricKey, delta int64) {
	r.mu.RLock()
	ptr, ok := r.counters[key]
	r.mu.RUnlock()

	if ok {
		atomic.AddInt64(ptr, delta)
		return
	}

	// Slow path: metric not yet initialized
	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check after acquiring write lock
	if ptr, ok = r.counters[key]; ok {
		atomic.AddInt64(ptr, delta)
		return
	}

	var val int64
	r.counters[key] = &val
	atomic.AddInt64(&val, delta)
}

// Get returns the current value of a single metric, 0 if never touched.
func (r *Registry) Get(key MetricKey) int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if ptr, ok := r.counters[key]; ok {
		return atomic.LoadInt64(ptr)
	}
	return 0
}

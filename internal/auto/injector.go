package auto

import (
	"math/rand/v2"

	"self-healing-kernel/internal/health"
	"self-healing-kernel/internal/metrics"
	"self-healing-kernel/internal/subsystem"
)

// FailureChancePercent is the per-tick probability of a crash attempt.
const FailureChancePercent = 20

// Source is the random source the injector draws from.
type Source interface {
	// IntN returns a value in [0, n).
	IntN(n int) int
}

// NewSource returns a seeded PCG-backed source.
func NewSource(seed uint64) Source {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// FailureInjector crashes at most one randomly chosen subsystem per call.
type FailureInjector struct {
	machine *health.Machine
	rng     Source
	metrics *metrics.Registry
}

func NewFailureInjector(machine *health.Machine, rng Source, reg *metrics.Registry) *FailureInjector {
	if reg == nil {
		reg = metrics.NewRegistry()
	}
	return &FailureInjector{machine: machine, rng: rng, metrics: reg}
}

// Inject rolls the failure chance and, on a hit, picks one subsystem
// uniformly. Only a HEALTHY pick is crashed; any other pick wastes the tick.
// It returns the crashed id, or 0 when nothing was crashed.
func (fi *FailureInjector) Inject() int {
	reg := fi.machine.Registry()
	if reg.Len() == 0 || fi.rng.IntN(100) >= FailureChancePercent {
		return 0
	}

	id := fi.rng.IntN(reg.Len()) + 1
	s, ok := reg.Get(id)
	if !ok || s.Status != subsystem.Healthy {
		return 0
	}

	if fi.machine.Crash(id).Outcome != health.Applied {
		return 0
	}
	fi.metrics.Inc(metrics.AutoInjectionsTotal)
	return id
}

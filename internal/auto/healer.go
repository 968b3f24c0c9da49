package auto

import (
	"self-healing-kernel/internal/health"
	"self-healing-kernel/internal/subsystem"
)

// AutoHealer heals every FAILED subsystem, one after another.
type AutoHealer struct {
	machine *health.Machine
}

func NewAutoHealer(machine *health.Machine) *AutoHealer {
	return &AutoHealer{machine: machine}
}

// Sweep walks the registry in order and heals each FAILED subsystem. Heals
// block, so the sweep takes one recovery latency per failed subsystem.
// It returns the ids that were healed.
func (ah *AutoHealer) Sweep() []int {
	var healed []int
	for _, s := range ah.machine.Registry().Snapshot() {
		if s.Status != subsystem.Failed {
			continue
		}
		if ah.machine.Heal(s.ID).Outcome == health.Applied {
			healed = append(healed, s.ID)
		}
	}
	return healed
}

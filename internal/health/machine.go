// Package health implements the crash/heal/restart state machine that drives
// subsystems between HEALTHY, FAILED and RECOVERING.
//
// crash and heal are guarded and become no-ops when the subsystem is not in
// the state they expect. restart always runs, even on a HEALTHY subsystem,
// and is the only operation that counts restarts. Unknown identifiers are
// ignored without an audit record.
package health

import (
	"fmt"
	"time"

	"self-healing-kernel/internal/clock"
	"self-healing-kernel/internal/logs"
	"self-healing-kernel/internal/metrics"
	"self-healing-kernel/internal/subsystem"
)

// RecoveryLatency is the simulated time a heal or restart takes.
const RecoveryLatency = 400 * time.Millisecond

// Operation names a state machine entry point.
type Operation string

const (
	OpCrash   Operation = "crash"
	OpHeal    Operation = "heal"
	OpRestart Operation = "restart"
)

// Outcome is the result class of an operation.
type Outcome int

const (
	// Applied means the transition ran and was audited.
	Applied Outcome = iota
	// NoOp means the subsystem was not in a state the operation acts on.
	NoOp
	// Ignored means the identifier does not name a subsystem.
	Ignored
)

func (o Outcome) String() string {
	switch o {
	case Applied:
		return "applied"
	case NoOp:
		return "noop"
	case Ignored:
		return "ignored"
	default:
		return "unknown"
	}
}

func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Result carries the outcome and the subsystem state after the operation.
// Subsystem is the zero value when the outcome is Ignored.
type Result struct {
	Outcome   Outcome             `json:"outcome"`
	Subsystem subsystem.Subsystem `json:"subsystem"`
}

// Notifier is told about every applied operation once it has completed.
type Notifier interface {
	Applied(op Operation, s subsystem.Subsystem)
}

// Machine runs operations against a registry and audits them to one sink.
// Two machines may share a registry; operations on the same subsystem are
// serialized by the registry.
type Machine struct {
	registry *subsystem.Registry
	sink     logs.Sink
	clock    clock.Clock
	metrics  *metrics.Registry
	notifier Notifier
}

// NewMachine creates a state machine auditing to sink.
func NewMachine(
	registry *subsystem.Registry,
	sink logs.Sink,
	clk clock.Clock,
	reg *metrics.Registry,
) *Machine {
	if reg == nil {
		reg = metrics.NewRegistry()
	}
	return &Machine{
		registry: registry,
		sink:     sink,
		clock:    clk,
		metrics:  reg,
	}
}

// WithNotifier returns a copy of m that reports applied operations to n.
func (m *Machine) WithNotifier(n Notifier) *Machine {
	cp := *m
	cp.notifier = n
	return &cp
}

func (m *Machine) Registry() *subsystem.Registry {
	return m.registry
}

// Do dispatches op by name. An unknown operation is Ignored.
func (m *Machine) Do(op Operation, id int) Result {
	switch op {
	case OpCrash:
		return m.Crash(id)
	case OpHeal:
		return m.Heal(id)
	case OpRestart:
		return m.Restart(id)
	default:
		m.metrics.Inc(metrics.OperationsIgnoredTotal)
		return Result{Outcome: Ignored}
	}
}

// Crash fails a subsystem that is not already FAILED.
func (m *Machine) Crash(id int) Result {
	h, ok := m.acquire(id)
	if !ok {
		return Result{Outcome: Ignored}
	}
	defer h.Release()

	cur := h.State()
	if cur.Status == subsystem.Failed {
		return m.noop(cur)
	}

	s := h.MarkFailed()
	m.metrics.Inc(metrics.SubsystemCrashesTotal)
	m.metrics.Inc(metrics.SubsystemsFailed)
	m.sink.Append(logs.WARNING, fmt.Sprintf("Subsystem %s crashed.", s.Name))

	return m.applied(OpCrash, s)
}

// Heal recovers a FAILED subsystem, blocking for RecoveryLatency.
func (m *Machine) Heal(id int) Result {
	h, ok := m.acquire(id)
	if !ok {
		return Result{Outcome: Ignored}
	}
	defer h.Release()

	cur := h.State()
	if cur.Status != subsystem.Failed {
		return m.noop(cur)
	}

	s := h.MarkRecovering()
	m.metrics.Dec(metrics.SubsystemsFailed)
	m.sink.Append(logs.INFO, fmt.Sprintf("Healing subsystem %s...", s.Name))

	m.clock.Sleep(RecoveryLatency)

	s = h.MarkHealthy()
	m.metrics.Inc(metrics.SubsystemHealsTotal)
	m.sink.Append(logs.SUCCESS, fmt.Sprintf("Subsystem %s healed successfully.", s.Name))

	return m.applied(OpHeal, s)
}

// Restart forces a subsystem through RECOVERING back to HEALTHY whatever its
// current status, and counts the restart.
func (m *Machine) Restart(id int) Result {
	h, ok := m.acquire(id)
	if !ok {
		return Result{Outcome: Ignored}
	}
	defer h.Release()

	wasFailed := h.State().Status == subsystem.Failed

	s := h.MarkRecovering()
	if wasFailed {
		m.metrics.Dec(metrics.SubsystemsFailed)
	}
	m.sink.Append(logs.INFO, fmt.Sprintf("Restarting subsystem %s...", s.Name))

	m.clock.Sleep(RecoveryLatency)

	h.MarkHealthy()
	s = h.IncRestarts()
	m.metrics.Inc(metrics.SubsystemRestartsTotal)
	m.sink.Append(logs.SUCCESS, fmt.Sprintf("Subsystem %s restarted successfully.", s.Name))

	return m.applied(OpRestart, s)
}

func (m *Machine) acquire(id int) (*subsystem.Handle, bool) {
	h, ok := m.registry.Acquire(id)
	if !ok {
		m.metrics.Inc(metrics.OperationsIgnoredTotal)
	}
	return h, ok
}

func (m *Machine) noop(s subsystem.Subsystem) Result {
	m.metrics.Inc(metrics.OperationsNoopTotal)
	return Result{Outcome: NoOp, Subsystem: s}
}

func (m *Machine) applied(op Operation, s subsystem.Subsystem) Result {
	if m.notifier != nil {
		m.notifier.Applied(op, s)
	}
	return Result{Outcome: Applied, Subsystem: s}
}

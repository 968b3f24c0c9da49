package auto

import (
	"context"
	"time"

	"go.uber.org/zap"

	"self-healing-kernel/internal/health"
	"self-healing-kernel/internal/metrics"
)

// TickPeriod is the pause between automatic mode ticks.
const TickPeriod = time.Second

// TickReport summarizes one tick.
type TickReport struct {
	Crashed int   // 0 when nothing was injected
	Healed  []int // ids healed by the sweep, in registry order
}

// Runner drives the failure injector and the auto-healer on a fixed cadence.
type Runner struct {
	injector *FailureInjector
	healer   *AutoHealer
	period   time.Duration
	metrics  *metrics.Registry
	logger   *zap.Logger
}

// NewRunner creates an automatic mode runner. logger may be nil.
func NewRunner(
	machine *health.Machine,
	rng Source,
	period time.Duration,
	reg *metrics.Registry,
	logger *zap.Logger,
) *Runner {
	if reg == nil {
		reg = metrics.NewRegistry()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		injector: NewFailureInjector(machine, rng, reg),
		healer:   NewAutoHealer(machine),
		period:   period,
		metrics:  reg,
		logger:   logger,
	}
}

// Start runs ticks until ctx is cancelled. Each iteration performs one tick
// and then pauses for the period. Cancellation is observed during the pause,
// so an exit request takes effect no later than the end of the current tick.
// It blocks and should typically be run in a separate goroutine.
func (r *Runner) Start(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			r.logger.Debug("automatic mode stopped")
			return
		}

		r.Tick()

		select {
		case <-time.After(r.period):
		case <-ctx.Done():
			r.logger.Debug("automatic mode stopped")
			return
		}
	}
}

// Tick runs the injector and then the heal sweep, so a subsystem crashed in
// this tick is healed before the tick ends.
func (r *Runner) Tick() TickReport {
	report := TickReport{Crashed: r.injector.Inject()}
	report.Healed = r.healer.Sweep()

	r.metrics.Inc(metrics.AutoTicksTotal)
	r.logger.Debug("automatic tick",
		zap.Int("crashed", report.Crashed),
		zap.Ints("healed", report.Healed),
	)
	return report
}

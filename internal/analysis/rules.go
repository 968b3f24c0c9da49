package analysis

import (
	"fmt"

	"self-healing-kernel/internal/metrics"
	"self-healing-kernel/internal/subsystem"
)

// RestartChurnThreshold is the restart count at which a subsystem is
// reported as unstable.
const RestartChurnThreshold = 3

// Input is what every rule gets to look at.
type Input struct {
	Subsystems []subsystem.Subsystem
	Metrics    map[string]int64
}

// RuleResult represents the outcome of a single rule.
type RuleResult struct {
	Triggered      bool
	Signal         string
	Recommendation string
	Severity       HealthStatus
}

// Rule evaluates one aspect of the input.
type Rule func(in Input) RuleResult

// ---------- RULES ----------

func countFailed(in Input) int {
	n := 0
	for _, s := range in.Subsystems {
		if s.Status == subsystem.Failed {
			n++
		}
	}
	return n
}

// Any failed subsystem degrades the system.
func FailedSubsystemRule(in Input) RuleResult {
	if countFailed(in) > 0 {
		return RuleResult{
			Triggered:      true,
			Signal:         "One or more subsystems are failed",
			Recommendation: "Heal the failed subsystems or switch to automatic mode",
			Severity:       StatusDegraded,
		}
	}
	return RuleResult{}
}

// More than half of the subsystems down is critical.
func MajorityFailedRule(in Input) RuleResult {
	if len(in.Subsystems) > 0 && countFailed(in)*2 > len(in.Subsystems) {
		return RuleResult{
			Triggered:      true,
			Signal:         "Majority of subsystems are failed",
			Recommendation: "Restart the failed subsystems",
			Severity:       StatusCritical,
		}
	}
	return RuleResult{}
}

// Dropped audit records mean the trail is incomplete.
func DroppedAuditRule(in Input) RuleResult {
	if in.Metrics[string(metrics.AuditWritesDroppedTotal)] > 0 {
		return RuleResult{
			Triggered:      true,
			Signal:         "Audit records were dropped",
			Recommendation: "Check permissions and free space of the audit log directory",
			Severity:       StatusDegraded,
		}
	}
	return RuleResult{}
}

// Repeated restarts of one subsystem point to an unstable component.
func RestartChurnRule(in Input) RuleResult {
	for _, s := range in.Subsystems {
		if s.RestartCount >= RestartChurnThreshold {
			return RuleResult{
				Triggered:      true,
				Signal:         fmt.Sprintf("Subsystem %s restarted %d times", s.Name, s.RestartCount),
				Recommendation: "Investigate why the subsystem keeps needing restarts",
				Severity:       StatusDegraded,
			}
		}
	}
	return RuleResult{}
}

package analysis

import (
	"self-healing-kernel/internal/logs"
	"self-healing-kernel/internal/metrics"
	"self-healing-kernel/internal/subsystem"
)

// Tail gives access to the most recent audit records.
type Tail interface {
	GetLast(n int) []logs.Entry
}

const (
	tailWindow         = 100
	repeatedCrashWarns = 3
)

// HealthAnalyzer converts registry state, metrics and audit logs into a
// health report.
type HealthAnalyzer struct {
	registry *subsystem.Registry
	metrics  *metrics.Registry
	tails    []Tail
	rules    []Rule
}

// NewHealthAnalyzer creates a new analyzer reading the given audit tails.
func NewHealthAnalyzer(
	registry *subsystem.Registry,
	reg *metrics.Registry,
	tails ...Tail,
) *HealthAnalyzer {
	if reg == nil {
		reg = metrics.NewRegistry()
	}
	return &HealthAnalyzer{
		registry: registry,
		metrics:  reg,
		tails:    tails,
		rules: []Rule{
			FailedSubsystemRule,
			MajorityFailedRule,
			DroppedAuditRule,
			RestartChurnRule,
		},
	}
}

// Analyze evaluates the current state and returns a health report.
func (ha *HealthAnalyzer) Analyze() HealthReport {
	in := Input{
		Subsystems: ha.registry.Snapshot(),
		Metrics:    ha.metrics.Snapshot(),
	}

	var (
		signals         = []string{}
		recommendations = []string{}
		status          = StatusOK
	)

	/* ---------- STATE/METRICS RULES ---------- */

	for _, rule := range ha.rules {
		result := rule(in)
		if !result.Triggered {
			continue
		}

		signals = append(signals, result.Signal)
		recommendations = append(recommendations, result.Recommendation)
		status = escalate(status, result.Severity)
	}

	/* ---------- LOG-BASED SIGNALS ---------- */

	for _, tail := range ha.tails {
		warnings := 0
		for _, entry := range tail.GetLast(tailWindow) {
			if entry.Level == logs.WARNING {
				warnings++
			}
		}

		if warnings >= repeatedCrashWarns {
			signals = append(signals, "Repeated crashes detected in audit log")
			recommendations = append(recommendations, "Review the audit log for the crashing subsystems")
			status = escalate(status, StatusDegraded)
			break
		}
	}

	/* ---------- SUMMARY ---------- */

	summary := "System is healthy"
	if status != StatusOK {
		summary = "System health issues detected"
	}

	return HealthReport{
		OverallStatus:   status,
		Summary:         summary,
		Signals:         signals,
		Recommendations: recommendations,
	}
}

func escalate(cur, severity HealthStatus) HealthStatus {
	if severity == StatusCritical {
		return StatusCritical
	}
	if severity == StatusDegraded && cur == StatusOK {
		return StatusDegraded
	}
	return cur
}

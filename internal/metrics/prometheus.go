package metrics

import "github.com/prometheus/client_golang/prometheus"

// Namespace prefixes every exported metric name.
const Namespace = "kernel"

var help = map[MetricKey]string{
	SubsystemCrashesTotal:   "Subsystem crashes applied by the state machine",
	SubsystemHealsTotal:     "Subsystems healed from FAILED back to HEALTHY",
	SubsystemRestartsTotal:  "Forced subsystem restarts",
	OperationsIgnoredTotal:  "Operations addressed to an unknown subsystem id",
	OperationsNoopTotal:     "Guarded operations that did not apply to the current state",
	SubsystemsFailed:        "Subsystems currently in FAILED state",
	AutoTicksTotal:          "Automatic mode ticks executed",
	AutoInjectionsTotal:     "Failure injections that crashed a subsystem",
	AuditWritesTotal:        "Audit records written",
	AuditWritesDroppedTotal: "Audit records dropped because the destination was unwritable",
	AuditRotationsTotal:     "Audit log rotations",
}

// Describe sends no descriptors, which makes the registry an unchecked
// collector: keys are created lazily on first use.
func (r *Registry) Describe(chan<- *prometheus.Desc) {}

// Collect exports the current snapshot as constant metrics.
func (r *Registry) Collect(ch chan<- prometheus.Metric) {
	for name, v := range r.Snapshot() {
		key := MetricKey(name)

		text, ok := help[key]
		if !ok {
			text = "Kernel simulator metric " + name
		}

		valueType := prometheus.CounterValue
		if gauges[key] {
			valueType = prometheus.GaugeValue
		}

		desc := prometheus.NewDesc(prometheus.BuildFQName(Namespace, "", name), text, nil, nil)
		ch <- prometheus.MustNewConstMetric(desc, valueType, float64(v))
	}
}

var _ prometheus.Collector = (*Registry)(nil)

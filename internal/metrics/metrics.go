package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "civic_tracker"

// Metrics holds all Prometheus metrics for the complaint tracker.
type Metrics struct {
	TransitionsTotal   *prometheus.CounterVec
	ReassignmentsTotal *prometheus.CounterVec
	SubmissionsTotal   *prometheus.CounterVec
	DeletionsTotal     prometheus.Counter
	StoreErrorsTotal   *prometheus.CounterVec
	SnapshotHits       prometheus.Counter
	SnapshotMisses     prometheus.Counter

	ComplaintsByStatus    *prometheus.GaugeVec
	ComplaintsTotal       prometheus.Gauge
	AverageResolutionDays prometheus.Gauge
	AuditEntriesTotal     prometheus.Gauge
}

// New registers the metrics with reg. Pass prometheus.DefaultRegisterer in
// production and prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		TransitionsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "lifecycle",
			Name:      "status_transitions_total",
			Help:      "Total number of status transitions by target status.",
		}, []string{"status"}),
		ReassignmentsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "lifecycle",
			Name:      "department_reassignments_total",
			Help:      "Total number of department reassignments by target department.",
		}, []string{"department"}),
		SubmissionsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "lifecycle",
			Name:      "submissions_total",
			Help:      "Total number of complaint submissions by result.",
		}, []string{"result"}), // result: created, invalid, upload_error, store_error
		DeletionsTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "lifecycle",
			Name:      "deletions_total",
			Help:      "Total number of deleted complaints.",
		}),
		StoreErrorsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "errors_total",
			Help:      "Total number of failed store operations by operation.",
		}, []string{"op"}),
		SnapshotHits: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "snapshot",
			Name:      "cache_hits_total",
			Help:      "Total number of snapshot cache hits.",
		}),
		SnapshotMisses: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "snapshot",
			Name:      "cache_misses_total",
			Help:      "Total number of snapshot cache misses.",
		}),
		ComplaintsByStatus: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "report",
			Name:      "complaints",
			Help:      "Number of complaints by status at the last report run.",
		}, []string{"status"}),
		ComplaintsTotal: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "report",
			Name:      "complaints_total",
			Help:      "Total number of complaints at the last report run.",
		}),
		AverageResolutionDays: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "report",
			Name:      "average_resolution_days",
			Help:      "Average resolution time in days at the last report run.",
		}),
		AuditEntriesTotal: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "report",
			Name:      "audit_entries_total",
			Help:      "Number of status audit entries at the last report run.",
		}),
	}
}

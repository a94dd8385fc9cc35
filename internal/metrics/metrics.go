// Package metrics exposes Prometheus instrumentation for the data layer.
// Collectors are registered once at init and are safe for concurrent use.
// Label cardinality stays bounded: operation names come from a fixed set
// of catalog operations, outcomes are "ok"/"error", and audit levels are
// the closed log-level enum.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// catalogOps counts catalog operations by name and outcome.
	catalogOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_operations_total",
			Help: "Total number of catalog store operations.",
		},
		[]string{"operation", "outcome"},
	)

	// catalogOpDur records operation duration in seconds by operation.
	// Outcome is intentionally omitted to keep histogram cardinality low.
	catalogOpDur = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_operation_duration_seconds",
			Help:    "Duration of catalog store operations in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// auditEntries counts audit rows successfully appended, by level.
	auditEntries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_entries_total",
			Help: "Total number of audit log entries written.",
		},
		[]string{"level"},
	)

	// auditWriteFailures counts swallowed audit write failures.
	auditWriteFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "audit_write_failures_total",
			Help: "Total number of audit log writes that failed and were swallowed.",
		},
	)
)

func init() {
	prometheus.MustRegister(catalogOps, catalogOpDur, auditEntries, auditWriteFailures)
}

// CatalogOp records one catalog operation: a counter tick by outcome and
// a duration observation.
func CatalogOp(operation string, err error, dur time.Duration) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	catalogOps.WithLabelValues(operation, outcome).Inc()
	catalogOpDur.WithLabelValues(operation).Observe(dur.Seconds())
}

// AuditEntry records one successfully appended audit row.
func AuditEntry(level string) {
	auditEntries.WithLabelValues(level).Inc()
}

// AuditWriteFailure records one swallowed audit write failure.
func AuditWriteFailure() {
	auditWriteFailures.Inc()
}

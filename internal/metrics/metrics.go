// Package metrics defines the Prometheus instruments for the dispatch engine.
// Constructors return unregistered collectors; the composition root registers
// them on the registry served at /metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// NewJobsProcessedTotal returns a Prometheus counter vector for processed
// dispatch jobs, labeled by result (completed, failed).
func NewJobsProcessedTotal() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_jobs_processed_total",
		Help: "Total number of dispatch jobs processed, by result",
	}, []string{"result"})
}

// NewOffersExpiredTotal returns a Prometheus counter for offers released by
// the expiry sweep.
func NewOffersExpiredTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dispatch_offers_expired_total",
		Help: "Total number of offers released because their response deadline passed",
	})
}

// NewAssignmentsEnqueuedTotal returns a Prometheus counter for jobs published
// by the reconciliation scanner.
func NewAssignmentsEnqueuedTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dispatch_assignments_enqueued_total",
		Help: "Total number of processing jobs published for due assignments",
	})
}

// NewScanFailuresTotal returns a Prometheus counter for reconciliation scans
// that ended in error.
func NewScanFailuresTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dispatch_scan_failures_total",
		Help: "Total number of reconciliation scans that failed",
	})
}

// Package jobs provides the background machinery of the dispatch engine.
//
// This package implements cron-based scanning using github.com/robfig/cron/v3
// and a polling worker pool over the durable job queue.
//
// # Components
//
// 1. ReconciliationScannerJob - Periodically releases expired offers and publishes
// processing jobs for assignments whose next attempt time has arrived
// 2. AssignmentWorker - Consumes processing jobs and runs one matching attempt each
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	jobManager := jobs.NewJobManager(scannerJob, worker)
//
//	// Start all jobs
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//
//	// Stop all jobs when shutting down
//	defer jobManager.StopAll()
//
// # Crash recovery
//
// There are no process-local timers. Offer deadlines, retry backoff, and due
// times all live in the assignment store, and undelivered jobs stay in the
// queue; after a restart the next scan resumes exactly where the engine left
// off. The queue delivers at least once, so the processing handler
// revalidates durable state before acting on any job.
package jobs

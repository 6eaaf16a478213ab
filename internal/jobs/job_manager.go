package jobs

import (
	"fmt"
)

// JobManager coordinates the background machinery of the dispatch engine:
// the reconciliation scanner and the assignment worker pool.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	scannerJob *ReconciliationScannerJob
	worker     *AssignmentWorker
}

// NewJobManager creates a new job manager over the given scanner and worker.
func NewJobManager(scannerJob *ReconciliationScannerJob, worker *AssignmentWorker) *JobManager {
	return &JobManager{
		scannerJob: scannerJob,
		worker:     worker,
	}
}

// StartAll starts all background jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.worker.Start(); err != nil {
		return fmt.Errorf("failed to start assignment workers: %w", err)
	}

	if err := jm.scannerJob.Start(); err != nil {
		// Stop already started jobs if this one fails
		jm.worker.Stop()
		return fmt.Errorf("failed to start reconciliation scanner: %w", err)
	}

	return nil
}

// StopAll stops all background jobs gracefully. The scanner stops first so no
// new jobs are published while the workers drain.
func (jm *JobManager) StopAll() {
	jm.scannerJob.Stop()
	jm.worker.Stop()
}

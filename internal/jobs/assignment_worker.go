package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"dispatch/internal/adapters/out/postgres/jobqueue"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"

	"github.com/prometheus/client_golang/prometheus"
)

// Worker tuning. Claims are polled rather than pushed; with SKIP LOCKED on
// the claim query the poll is cheap even with several workers per instance.
const (
	workerPollInterval = time.Second
	workerClaimBatch   = 10
)

// claimQueue is the consuming side of the durable job queue.
type claimQueue interface {
	Claim(ctx context.Context, queue string, limit int) ([]jobqueue.ClaimedJob, error)
	Complete(ctx context.Context, jobID kernel.UUID) error
	Fail(ctx context.Context, jobID kernel.UUID) error
}

// AssignmentWorker consumes processing jobs from the durable queue and runs
// one matching attempt per job. Several workers may run concurrently, in one
// process or many; the claim query guarantees no job is processed twice at
// once, and the processing handler tolerates redelivery.
type AssignmentWorker struct {
	queue       claimQueue
	handler     commands.ProcessAssignmentCommandHandler
	concurrency int
	logger      *slog.Logger
	processed   *prometheus.CounterVec

	stop chan struct{}
	wg   sync.WaitGroup
}

// NewAssignmentWorker creates a worker pool of the given concurrency over the
// assignments queue.
func NewAssignmentWorker(
	queue claimQueue,
	handler commands.ProcessAssignmentCommandHandler,
	concurrency int,
	logger *slog.Logger,
	processed *prometheus.CounterVec,
) *AssignmentWorker {
	if concurrency < 1 {
		concurrency = 1
	}

	return &AssignmentWorker{
		queue:       queue,
		handler:     handler,
		concurrency: concurrency,
		logger:      logger.With("component", "assignment_worker"),
		processed:   processed,
		stop:        make(chan struct{}),
	}
}

// Start launches the worker goroutines.
func (w *AssignmentWorker) Start() error {
	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.run()
	}

	w.logger.InfoContext(context.Background(), "Assignment workers started", "concurrency", w.concurrency)
	return nil
}

// Stop signals the workers and waits for in-flight jobs to finish.
func (w *AssignmentWorker) Stop() {
	close(w.stop)
	w.wg.Wait()
	w.logger.InfoContext(context.Background(), "Assignment workers stopped")
}

func (w *AssignmentWorker) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(workerPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stop:
			return
		case <-ticker.C:
			w.drain()
		}
	}
}

// drain claims and processes jobs until the queue is empty or the worker is
// stopped.
func (w *AssignmentWorker) drain() {
	ctx := context.Background()

	for {
		select {
		case <-w.stop:
			return
		default:
		}

		claimed, err := w.queue.Claim(ctx, ports.QueueAssignments, workerClaimBatch)
		if err != nil {
			w.logger.ErrorContext(ctx, "Job claim failed", "error", err)
			return
		}
		if len(claimed) == 0 {
			return
		}

		for _, job := range claimed {
			w.process(ctx, job)
		}
	}
}

func (w *AssignmentWorker) process(ctx context.Context, job jobqueue.ClaimedJob) {
	cmd, err := commands.NewProcessAssignmentCommand(job.Payload.AssignmentID, job.Payload.OrderID)
	if err != nil {
		// Payload passed queue validation but not command validation;
		// retrying cannot help.
		w.logger.ErrorContext(ctx, "Dropping malformed job", "job_id", job.ID, "error", err)
		w.failJob(ctx, job.ID)
		return
	}

	if err = w.handler.Handle(ctx, cmd); err != nil {
		w.logger.ErrorContext(ctx, "Assignment processing failed",
			"job_id", job.ID,
			"order_id", job.Payload.OrderID,
			"error", err)
		w.failJob(ctx, job.ID)
		return
	}

	if err = w.queue.Complete(ctx, job.ID); err != nil {
		w.logger.ErrorContext(ctx, "Job completion failed", "job_id", job.ID, "error", err)
		return
	}

	w.processed.WithLabelValues("completed").Inc()
}

func (w *AssignmentWorker) failJob(ctx context.Context, jobID kernel.UUID) {
	w.processed.WithLabelValues("failed").Inc()
	if err := w.queue.Fail(ctx, jobID); err != nil {
		w.logger.ErrorContext(ctx, "Job failure bookkeeping failed", "job_id", jobID, "error", err)
	}
}

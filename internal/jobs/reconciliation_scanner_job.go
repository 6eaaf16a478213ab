package jobs

import (
	"context"
	"log/slog"

	"dispatch/internal/core/application/usecases/commands"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
)

// ReconciliationScannerJob is the engine's only clock. On each tick it runs
// two passes over durable state: release offers whose response deadline
// passed, then publish a processing job for every assignment that is due.
// Because both passes read only persisted state, a restart loses nothing;
// whatever was in flight simply shows up in the next scan.
type ReconciliationScannerJob struct {
	expireHandler  commands.ExpireOffersCommandHandler
	enqueueHandler commands.EnqueueDueAssignmentsCommandHandler
	cron           *cron.Cron
	spec           string
	logger         *slog.Logger

	offersExpired prometheus.Counter
	enqueued      prometheus.Counter
	scanFailures  prometheus.Counter
}

// NewReconciliationScannerJob creates the scanner with the given cron spec
// (seconds-resolution, e.g. "*/10 * * * * *").
func NewReconciliationScannerJob(
	expireHandler commands.ExpireOffersCommandHandler,
	enqueueHandler commands.EnqueueDueAssignmentsCommandHandler,
	spec string,
	logger *slog.Logger,
	offersExpired prometheus.Counter,
	enqueued prometheus.Counter,
	scanFailures prometheus.Counter,
) *ReconciliationScannerJob {
	return &ReconciliationScannerJob{
		expireHandler:  expireHandler,
		enqueueHandler: enqueueHandler,
		cron:           cron.New(cron.WithSeconds()),
		spec:           spec,
		logger:         logger.With("component", "reconciliation_scanner"),
		offersExpired:  offersExpired,
		enqueued:       enqueued,
		scanFailures:   scanFailures,
	}
}

// Start begins the periodic reconciliation scan.
func (j *ReconciliationScannerJob) Start() error {
	_, err := j.cron.AddFunc(j.spec, j.scan)
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Reconciliation scanner started", "spec", j.spec)
	return nil
}

// Stop stops the reconciliation scan.
func (j *ReconciliationScannerJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Reconciliation scanner stopped")
}

func (j *ReconciliationScannerJob) scan() {
	ctx := context.Background()

	expired, err := j.expireHandler.Handle(ctx, commands.NewExpireOffersCommand())
	if err != nil {
		j.scanFailures.Inc()
		j.logger.ErrorContext(ctx, "Offer expiry sweep failed", "error", err)
	} else if expired > 0 {
		j.offersExpired.Add(float64(expired))
		j.logger.InfoContext(ctx, "Released expired offers", "count", expired)
	}

	enqueued, err := j.enqueueHandler.Handle(ctx, commands.NewEnqueueDueAssignmentsCommand())
	if err != nil {
		j.scanFailures.Inc()
		j.logger.ErrorContext(ctx, "Due assignment scan failed", "error", err)
		return
	}

	if enqueued > 0 {
		j.enqueued.Add(float64(enqueued))
		j.logger.DebugContext(ctx, "Enqueued due assignments", "count", enqueued)
	}
}

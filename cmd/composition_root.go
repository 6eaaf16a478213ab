package cmd

import (
	"log/slog"

	httpin "dispatch/internal/adapters/in/http"
	"dispatch/internal/adapters/out/configstore"
	"dispatch/internal/adapters/out/notifier"
	"dispatch/internal/adapters/out/offerstore"
	"dispatch/internal/adapters/out/postgres"
	"dispatch/internal/adapters/out/postgres/courierdir"
	"dispatch/internal/adapters/out/postgres/jobqueue"
	"dispatch/internal/adapters/out/postgres/orderview"
	"dispatch/internal/adapters/out/registry"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/jobs"
	"dispatch/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

// CompositionRoot wires adapters into use case handlers. Stateful adapters
// (registry, offer history, notifier, constraints cache) are singletons
// shared by every handler; unit of work instances are created per command.
type CompositionRoot struct {
	gormDB     *gorm.DB
	uowFactory postgres.GormUnitOfWorkFactory
	logger     *slog.Logger

	orderStore   *orderview.GormOrderStore
	directory    *courierdir.GormCourierDirectory
	jobQueue     *jobqueue.GormJobQueue
	locations    *registry.InMemoryRegistry
	offerHistory *offerstore.InMemoryOfferHistory
	publisher    *notifier.InMemoryNotifier
	constraints  *configstore.CachedConstraintsProvider

	promRegistry  *prometheus.Registry
	jobsProcessed *prometheus.CounterVec
	offersExpired prometheus.Counter
	enqueued      prometheus.Counter
	scanFailures  prometheus.Counter
}

func NewCompositionRoot(configs Config, gormDB *gorm.DB, logger *slog.Logger) CompositionRoot {
	root := CompositionRoot{
		gormDB:     gormDB,
		uowFactory: *postgres.NewGormUnitOfWorkFactory(gormDB),
		logger:     logger,

		orderStore:   orderview.NewGormOrderStore(gormDB),
		directory:    courierdir.NewGormCourierDirectory(gormDB),
		jobQueue:     jobqueue.NewGormJobQueue(gormDB),
		locations:    registry.NewInMemoryRegistry(),
		offerHistory: offerstore.NewInMemoryOfferHistory(),
		publisher:    notifier.NewInMemoryNotifier(logger),
		constraints:  configstore.NewCachedConstraintsProvider(gormDB, configs.ConstraintsCacheTTL, logger),

		promRegistry:  prometheus.NewRegistry(),
		jobsProcessed: metrics.NewJobsProcessedTotal(),
		offersExpired: metrics.NewOffersExpiredTotal(),
		enqueued:      metrics.NewAssignmentsEnqueuedTotal(),
		scanFailures:  metrics.NewScanFailuresTotal(),
	}

	root.promRegistry.MustRegister(
		root.jobsProcessed,
		root.offersExpired,
		root.enqueued,
		root.scanFailures,
	)

	return root
}

// PrometheusRegistry exposes the metrics registry for the /metrics endpoint.
func (c *CompositionRoot) PrometheusRegistry() *prometheus.Registry {
	return c.promRegistry
}

func (c *CompositionRoot) createUoWFactory() commands.UoWFactory {
	return FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) CreateSubmitForAssignmentCommandHandler() commands.SubmitForAssignmentCommandHandler {
	return commands.NewSubmitForAssignmentCommandHandler(c.createUoWFactory(), c.orderStore, c.publisher)
}

func (c *CompositionRoot) CreateAcceptOfferCommandHandler() commands.AcceptOfferCommandHandler {
	return commands.NewAcceptOfferCommandHandler(
		c.createUoWFactory(), c.orderStore, c.offerHistory, c.constraints, c.publisher)
}

func (c *CompositionRoot) CreateRejectOfferCommandHandler() commands.RejectOfferCommandHandler {
	return commands.NewRejectOfferCommandHandler(c.createUoWFactory(), c.constraints)
}

func (c *CompositionRoot) CreateCancelAssignmentCommandHandler() commands.CancelAssignmentCommandHandler {
	return commands.NewCancelAssignmentCommandHandler(c.createUoWFactory(), c.offerHistory)
}

func (c *CompositionRoot) CreateProcessAssignmentCommandHandler() commands.ProcessAssignmentCommandHandler {
	return commands.NewProcessAssignmentCommandHandler(
		c.createUoWFactory(),
		c.orderStore,
		c.directory,
		c.locations,
		c.offerHistory,
		c.constraints,
		c.publisher,
	)
}

func (c *CompositionRoot) CreateExpireOffersCommandHandler() commands.ExpireOffersCommandHandler {
	return commands.NewExpireOffersCommandHandler(c.createUoWFactory(), c.constraints)
}

func (c *CompositionRoot) CreateEnqueueDueAssignmentsCommandHandler() commands.EnqueueDueAssignmentsCommandHandler {
	return commands.NewEnqueueDueAssignmentsCommandHandler(
		c.createUoWFactory(), c.orderStore, c.offerHistory, c.jobQueue, c.constraints)
}

func (c *CompositionRoot) CreateGetOutstandingOfferQueryHandler() queries.GetOutstandingOfferQueryHandler {
	return queries.NewGetOutstandingOfferQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateHTTPServer() *httpin.Server {
	return httpin.NewServer(
		c.CreateSubmitForAssignmentCommandHandler(),
		c.CreateAcceptOfferCommandHandler(),
		c.CreateRejectOfferCommandHandler(),
		c.CreateCancelAssignmentCommandHandler(),
		c.CreateGetOutstandingOfferQueryHandler(),
		c.locations,
	)
}

func (c *CompositionRoot) CreateJobManager(configs Config) *jobs.JobManager {
	scanner := jobs.NewReconciliationScannerJob(
		c.CreateExpireOffersCommandHandler(),
		c.CreateEnqueueDueAssignmentsCommandHandler(),
		configs.ScanCronSpec,
		c.logger,
		c.offersExpired,
		c.enqueued,
		c.scanFailures,
	)

	worker := jobs.NewAssignmentWorker(
		c.jobQueue,
		c.CreateProcessAssignmentCommandHandler(),
		configs.WorkerConcurrency,
		c.logger,
		c.jobsProcessed,
	)

	return jobs.NewJobManager(scanner, worker)
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}

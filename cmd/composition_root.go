package cmd

import (
	"fmt"

	httpadapter "courierhub/internal/adapters/in/http"
	"courierhub/internal/adapters/out/postgres"
	redisadapter "courierhub/internal/adapters/out/redis"
	"courierhub/internal/core/application/usecases/commands"
	"courierhub/internal/core/application/usecases/queries"
	"courierhub/internal/core/domain/model/credittask"
	"courierhub/internal/core/domain/model/kernel"
	"courierhub/internal/core/domain/services"
	"courierhub/internal/core/ports"
	"courierhub/internal/jobs"
	"courierhub/internal/pkg/metrics"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const sweepLockKey = "courierhub:lock:stale-order-sweep"

type CompositionRoot struct {
	cfg        Config
	gormDB     *gorm.DB
	redis      *redis.Client
	logger     *zap.Logger
	registry   *prometheus.Registry
	uowFactory ports.UnitOfWorkFactory
	pricing    services.PricingCalculator
	matcher    services.CourierMatcher
	zoneID     kernel.UUID
}

// NewCompositionRoot wires the application. redisClient may be nil, in which case events
// are only logged and the stale order sweep runs without a lock.
func NewCompositionRoot(cfg Config, gormDB *gorm.DB, redisClient *redis.Client, log *zap.Logger) (*CompositionRoot, error) {
	pricing, err := services.NewPricingCalculator(cfg.CommissionRate)
	if err != nil {
		return nil, err
	}
	zoneID, err := kernel.ParseUUID(cfg.DefaultZoneID)
	if err != nil {
		return nil, fmt.Errorf("default zone id: %w", err)
	}

	var publisher ports.EventPublisher = redisadapter.NewLogPublisher(log)
	if redisClient != nil {
		publisher = redisadapter.NewEventPublisher(redisClient, cfg.Redis.Channel, log)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &CompositionRoot{
		cfg:        cfg,
		gormDB:     gormDB,
		redis:      redisClient,
		logger:     log,
		registry:   registry,
		uowFactory: postgres.NewGormUnitOfWorkFactory(gormDB, publisher),
		pricing:    pricing,
		matcher:    services.NewCourierMatcher(),
		zoneID:     zoneID,
	}, nil
}

func (c *CompositionRoot) CreateReviewWithdrawalCommandHandler() commands.ReviewWithdrawalCommandHandler {
	return commands.NewReviewWithdrawalCommandHandler(c.uowFactory)
}

func (c *CompositionRoot) CreateProcessCreditTasksCommandHandler() (commands.ProcessCreditTasksCommandHandler, error) {
	policy := credittask.RetryPolicy{MaxRetries: c.cfg.Credit.MaxRetries, Backoff: c.cfg.Credit.Backoff}
	return commands.NewProcessCreditTasksCommandHandler(
		c.uowFactory,
		commands.NewCreditCourierCommandHandler(c.uowFactory, c.logger),
		policy,
		c.cfg.Credit.Workers,
		metrics.NewCreditMetrics(c.registry),
		c.logger,
	)
}

func (c *CompositionRoot) CreateHandlers() httpadapter.Handlers {
	review := c.CreateReviewWithdrawalCommandHandler()
	return httpadapter.Handlers{
		CreateOrder:       commands.NewCreateOrderCommandHandler(c.uowFactory, c.pricing, c.zoneID),
		AcceptOrder:       commands.NewAcceptOrderCommandHandler(c.uowFactory),
		ChangeOrderStatus: commands.NewChangeOrderStatusCommandHandler(c.uowFactory),
		CancelOrder:       commands.NewCancelOrderCommandHandler(c.uowFactory),
		UpdateLocation:    commands.NewUpdateCourierLocationCommandHandler(c.uowFactory),
		RequestWithdrawal: commands.NewRequestWithdrawalCommandHandler(c.uowFactory, kernel.Money(c.cfg.MinimumWithdrawal)),
		ReviewWithdrawal:  review,
		RecordSettlement:  commands.NewRecordSettlementCommandHandler(review, c.cfg.WebhookSecret, c.logger),
		RetryCreditTask:   commands.NewRetryFailedCreditTaskCommandHandler(c.uowFactory),
		GetOrder:          queries.NewGetOrderQueryHandler(c.uowFactory),
		AvailableOrders:   queries.NewAvailableOrdersQueryHandler(c.uowFactory, c.matcher),
		NearbyCouriers:    queries.NewNearbyCouriersQueryHandler(c.uowFactory, c.matcher),
		GetWallet:         queries.NewGetWalletQueryHandler(c.uowFactory),
		ListWithdrawals:   queries.NewListWithdrawalsQueryHandler(c.uowFactory),
		ListFailedTasks:   queries.NewListFailedCreditTasksQueryHandler(c.uowFactory),
	}
}

func (c *CompositionRoot) CreateRouter() (*echo.Echo, error) {
	spec, err := httpadapter.GetSwagger()
	if err != nil {
		return nil, fmt.Errorf("loading openapi document: %w", err)
	}
	return httpadapter.NewRouter(httpadapter.NewServer(c.CreateHandlers()), httpadapter.RouterConfig{
		Spec:     spec,
		Gatherer: c.registry,
		Metrics:  metrics.NewHTTPMetrics(c.registry),
		Log:      c.logger,
	}), nil
}

func (c *CompositionRoot) CreateJobManager() (*jobs.JobManager, error) {
	jobMetrics := metrics.NewJobMetrics(c.registry)

	process, err := c.CreateProcessCreditTasksCommandHandler()
	if err != nil {
		return nil, fmt.Errorf("credit dispatcher: %w", err)
	}
	creditDispatchJob := jobs.NewCreditDispatchJob(process, jobs.CreditDispatchJobConfig{
		Schedule:  c.cfg.Credit.Schedule,
		Lease:     c.cfg.Credit.Lease,
		BatchSize: c.cfg.Credit.BatchSize,
	}, jobMetrics, c.logger)

	var lock ports.DistributedLock
	if c.redis != nil {
		l, err := redisadapter.NewLock(c.redis, sweepLockKey, c.cfg.Redis.LockTTL)
		if err != nil {
			return nil, fmt.Errorf("sweep lock: %w", err)
		}
		lock = l
	}
	staleOrderSweepJob := jobs.NewStaleOrderSweepJob(
		commands.NewExpireStaleOrdersCommandHandler(c.uowFactory, c.logger),
		lock,
		jobs.StaleOrderSweepJobConfig{
			Schedule:  c.cfg.Sweep.Schedule,
			Window:    c.cfg.Sweep.Window,
			BatchSize: c.cfg.Sweep.BatchSize,
		},
		jobMetrics,
		c.logger,
	)

	return jobs.NewJobManager(creditDispatchJob, staleOrderSweepJob), nil
}

// Close releases the database pool and the Redis client.
func (c *CompositionRoot) Close() error {
	var err error
	if c.redis != nil {
		err = multierr.Append(err, c.redis.Close())
	}
	return multierr.Append(err, postgres.Close(c.gormDB))
}

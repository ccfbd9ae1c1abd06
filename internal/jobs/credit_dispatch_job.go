package jobs

import (
	"context"
	"time"

	"courierhub/internal/core/application/usecases/commands"
	"courierhub/internal/pkg/logger"
	"courierhub/internal/pkg/metrics"

	"go.uber.org/zap"
)

const (
	CreditDispatchJobName         = "credit_dispatch"
	DefaultCreditDispatchSchedule = "@every 5s"
)

type CreditDispatchJobConfig struct {
	Schedule  string
	Lease     time.Duration
	BatchSize int
}

// CreditDispatchJob drains the credit task queue. Each tick leases the due tasks and
// credits the couriers of delivered orders.
type CreditDispatchJob struct {
	handler   commands.ProcessCreditTasksCommandHandler
	lease     time.Duration
	batchSize int
	scheduler *scheduler
	logger    *zap.Logger
	now       func() time.Time
}

// NewCreditDispatchJob creates the dispatcher job. Zero config values select the defaults.
func NewCreditDispatchJob(
	handler commands.ProcessCreditTasksCommandHandler,
	cfg CreditDispatchJobConfig,
	m *metrics.JobMetrics,
	log *zap.Logger,
) *CreditDispatchJob {
	if cfg.Schedule == "" {
		cfg.Schedule = DefaultCreditDispatchSchedule
	}
	if cfg.Lease <= 0 {
		cfg.Lease = commands.DefaultCreditLease
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = commands.DefaultCreditBatchSize
	}

	l := logger.Component(log, "credit_dispatch_job")
	return &CreditDispatchJob{
		handler:   handler,
		lease:     cfg.Lease,
		batchSize: cfg.BatchSize,
		scheduler: newScheduler(CreditDispatchJobName, cfg.Schedule, m, l),
		logger:    l,
		now:       time.Now,
	}
}

// Run executes one dispatcher tick.
func (j *CreditDispatchJob) Run(ctx context.Context) error {
	cmd, err := commands.NewProcessCreditTasksCommand(j.now(), j.lease, j.batchSize)
	if err != nil {
		return err
	}

	result, err := j.handler.Handle(ctx, cmd)
	if result.Claimed > 0 {
		j.logger.Debug("credit tasks processed",
			zap.Int("claimed", result.Claimed),
			zap.Int("done", result.Done),
			zap.Int("retried", result.Retried),
			zap.Int("failed", result.Failed))
	}
	return err
}

func (j *CreditDispatchJob) Start() error {
	return j.scheduler.start(j.Run)
}

func (j *CreditDispatchJob) Stop() {
	j.scheduler.stop()
}

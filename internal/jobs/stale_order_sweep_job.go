package jobs

import (
	"context"
	"fmt"
	"time"

	"courierhub/internal/core/application/usecases/commands"
	"courierhub/internal/core/ports"
	"courierhub/internal/pkg/logger"
	"courierhub/internal/pkg/metrics"

	"go.uber.org/zap"
)

const (
	StaleOrderSweepJobName         = "stale_order_sweep"
	DefaultStaleOrderSweepSchedule = "@every 5m"
)

type StaleOrderSweepJobConfig struct {
	Schedule  string
	Window    time.Duration
	BatchSize int
}

// StaleOrderSweepJob cancels orders nobody accepted within the window. With a lock
// configured only the replica holding it sweeps; the others skip the tick.
type StaleOrderSweepJob struct {
	handler   commands.ExpireStaleOrdersCommandHandler
	lock      ports.DistributedLock
	window    time.Duration
	batchSize int
	scheduler *scheduler
	logger    *zap.Logger
	now       func() time.Time
}

// NewStaleOrderSweepJob creates the sweep job. lock may be nil when a single replica runs.
func NewStaleOrderSweepJob(
	handler commands.ExpireStaleOrdersCommandHandler,
	lock ports.DistributedLock,
	cfg StaleOrderSweepJobConfig,
	m *metrics.JobMetrics,
	log *zap.Logger,
) *StaleOrderSweepJob {
	if cfg.Schedule == "" {
		cfg.Schedule = DefaultStaleOrderSweepSchedule
	}
	if cfg.Window <= 0 {
		cfg.Window = commands.DefaultStaleWindow
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = commands.DefaultSweepBatch
	}

	l := logger.Component(log, "stale_order_sweep_job")
	return &StaleOrderSweepJob{
		handler:   handler,
		lock:      lock,
		window:    cfg.Window,
		batchSize: cfg.BatchSize,
		scheduler: newScheduler(StaleOrderSweepJobName, cfg.Schedule, m, l),
		logger:    l,
		now:       time.Now,
	}
}

// Run executes one sweep unless another replica holds the lock.
func (j *StaleOrderSweepJob) Run(ctx context.Context) error {
	if j.lock != nil {
		acquired, err := j.lock.TryAcquire(ctx)
		if err != nil {
			return fmt.Errorf("acquire sweep lock: %w", err)
		}
		if !acquired {
			j.logger.Debug("sweep lock held elsewhere, skipping")
			return nil
		}
		defer func() {
			if err := j.lock.Release(context.WithoutCancel(ctx)); err != nil {
				j.logger.Warn("failed to release sweep lock", zap.Error(err))
			}
		}()
	}

	cmd, err := commands.NewExpireStaleOrdersCommand(j.now(), j.window, j.batchSize)
	if err != nil {
		return err
	}
	result, err := j.handler.Handle(ctx, cmd)
	if result.Candidates > 0 {
		j.logger.Info("stale order sweep finished",
			zap.Int("candidates", result.Candidates),
			zap.Int("expired", result.Expired),
			zap.Int("skipped", result.Skipped))
	}
	return err
}

func (j *StaleOrderSweepJob) Start() error {
	return j.scheduler.start(j.Run)
}

func (j *StaleOrderSweepJob) Stop() {
	j.scheduler.stop()
}

package jobs

import (
	"context"
	"fmt"
	"time"

	"courierhub/internal/pkg/metrics"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	creditDispatchJob  *CreditDispatchJob
	staleOrderSweepJob *StaleOrderSweepJob
}

// NewJobManager creates a job manager for the credit dispatcher and the stale order sweep.
func NewJobManager(creditDispatchJob *CreditDispatchJob, staleOrderSweepJob *StaleOrderSweepJob) *JobManager {
	return &JobManager{
		creditDispatchJob:  creditDispatchJob,
		staleOrderSweepJob: staleOrderSweepJob,
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.creditDispatchJob.Start(); err != nil {
		return fmt.Errorf("failed to start credit dispatch job: %w", err)
	}

	if err := jm.staleOrderSweepJob.Start(); err != nil {
		// Stop already started jobs if this one fails
		jm.creditDispatchJob.Stop()
		return fmt.Errorf("failed to start stale order sweep job: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs and waits for running executions to return.
func (jm *JobManager) StopAll() {
	jm.staleOrderSweepJob.Stop()
	jm.creditDispatchJob.Stop()
}

// scheduler runs one function on a cron schedule. Executions never overlap: a tick that
// fires while the previous one is still running is skipped.
type scheduler struct {
	name     string
	schedule string
	cron     *cron.Cron
	metrics  *metrics.JobMetrics
	logger   *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

func newScheduler(name, schedule string, m *metrics.JobMetrics, logger *zap.Logger) *scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	cl := cronLogger{l: logger.Sugar()}
	return &scheduler{
		name:     name,
		schedule: schedule,
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		metrics: m,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
	}
}

func (s *scheduler) start(run func(ctx context.Context) error) error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		started := time.Now()
		err := run(s.ctx)
		s.metrics.Observe(s.name, time.Since(started), err)
		if err != nil && s.ctx.Err() == nil {
			s.logger.Error("job failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", s.schedule, err)
	}

	s.cron.Start()
	s.logger.Info("job started", zap.String("schedule", s.schedule))
	return nil
}

func (s *scheduler) stop() {
	s.cancel()
	<-s.cron.Stop().Done()
	s.logger.Info("job stopped")
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	l *zap.SugaredLogger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Errorw(msg, append(keysAndValues, "error", err)...)
}

package commands

import (
	"context"
	"sync"

	"courierhub/internal/core/domain/model/credittask"
	"courierhub/internal/core/ports"
	"courierhub/internal/pkg/errs"
	"courierhub/internal/pkg/logger"
	"courierhub/internal/pkg/metrics"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const DefaultCreditWorkers = 4

// ProcessCreditTasksResult summarizes one dispatcher tick.
type ProcessCreditTasksResult struct {
	Claimed int
	Done    int
	Retried int
	Failed  int
	// Superseded counts tasks whose lease expired and was taken over by another worker
	// before the outcome could be stored.
	Superseded int
}

// ProcessCreditTasksCommandHandler is the async credit dispatcher. Due tasks are leased
// in one short transaction and then executed on a bounded pool. A task whose worker dies
// is picked up again once its lease expires; the ledger makes the repeat a no-op.
type ProcessCreditTasksCommandHandler struct {
	uowFactory ports.UnitOfWorkFactory
	credit     CreditCourierCommandHandler
	policy     credittask.RetryPolicy
	workers    int
	metrics    *metrics.CreditMetrics
	log        *zap.Logger
}

func NewProcessCreditTasksCommandHandler(
	uowFactory ports.UnitOfWorkFactory,
	credit CreditCourierCommandHandler,
	policy credittask.RetryPolicy,
	workers int,
	m *metrics.CreditMetrics,
	log *zap.Logger,
) (ProcessCreditTasksCommandHandler, error) {
	if err := policy.Validate(); err != nil {
		return ProcessCreditTasksCommandHandler{}, err
	}
	if workers <= 0 {
		workers = DefaultCreditWorkers
	}
	return ProcessCreditTasksCommandHandler{
		uowFactory: uowFactory,
		credit:     credit,
		policy:     policy,
		workers:    workers,
		metrics:    m,
		log:        logger.Component(log, "credit_dispatcher"),
	}, nil
}

func (h ProcessCreditTasksCommandHandler) Handle(ctx context.Context, cmd ProcessCreditTasksCommand) (ProcessCreditTasksResult, error) {
	var result ProcessCreditTasksResult
	if err := cmd.Validate(); err != nil {
		return result, err
	}

	var claimed []*credittask.Task
	err := inTransaction(ctx, h.uowFactory, func(uow ports.UnitOfWork) error {
		var err error
		claimed, err = uow.CreditTaskRepository().ClaimDue(ctx, cmd.Now(), cmd.Lease(), cmd.Limit())
		return err
	})
	if err != nil {
		return result, err
	}
	result.Claimed = len(claimed)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(h.workers)
	for _, task := range claimed {
		g.Go(func() error {
			outcome, stored, err := h.run(gctx, task, cmd)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			switch {
			case !stored:
				result.Superseded++
			case outcome == credittask.Done:
				result.Done++
			case outcome == credittask.Failed:
				result.Failed++
			default:
				result.Retried++
			}
			return nil
		})
	}
	return result, g.Wait()
}

// run executes one task and stores its outcome unless the lease was lost meanwhile. Only
// storage errors are returned; a failed credit is recorded on the task. Failures other
// than system errors are final and skip the retries.
func (h ProcessCreditTasksCommandHandler) run(
	ctx context.Context,
	task *credittask.Task,
	cmd ProcessCreditTasksCommand,
) (credittask.Status, bool, error) {
	log := h.log.With(
		zap.String("task_id", task.ID.String()),
		zap.String("order_id", task.OrderID.String()),
	)
	leasedUntil := task.NextRunAt

	applied, creditErr := h.credit.execute(ctx, task)
	switch {
	case creditErr == nil:
		task.Succeed(cmd.Now())
	case !errs.IsRetryable(creditErr):
		task.Abandon(creditErr, cmd.Now())
	default:
		task.Fail(creditErr, h.policy, cmd.Now())
	}

	var stored bool
	err := inTransaction(ctx, h.uowFactory, func(uow ports.UnitOfWork) error {
		var err error
		stored, err = uow.CreditTaskRepository().UpdateLeased(ctx, task, leasedUntil)
		return err
	})
	if err != nil {
		log.Error("failed to store credit task outcome", zap.Error(err))
		return "", false, err
	}
	if !stored {
		log.Warn("credit task lease was taken over, outcome discarded",
			zap.String("outcome", string(task.Status)),
			zap.Error(creditErr))
		return task.Status, false, nil
	}

	switch task.Status {
	case credittask.Done:
		if applied {
			h.metrics.IncApplied()
		}
	case credittask.Failed:
		h.metrics.IncFailure()
		log.Error("credit task failed permanently",
			zap.Int("attempts", task.Attempts),
			zap.Bool("retryable", errs.IsRetryable(creditErr)),
			zap.Error(creditErr))
	default:
		h.metrics.IncRetry()
		log.Warn("credit attempt failed, retrying",
			zap.Int("attempts", task.Attempts),
			zap.Time("next_run_at", task.NextRunAt),
			zap.Error(creditErr))
	}
	return task.Status, true, nil
}

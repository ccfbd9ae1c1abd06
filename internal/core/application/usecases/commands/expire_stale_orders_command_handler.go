package commands

import (
	"context"

	"courierhub/internal/core/domain/model/kernel"
	"courierhub/internal/core/ports"
	"courierhub/internal/pkg/logger"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// ExpireStaleOrdersResult summarizes one sweep.
type ExpireStaleOrdersResult struct {
	Candidates int
	Expired    int
	Skipped    int
}

// ExpireStaleOrdersCommandHandler cancels stale pending orders one transaction per order.
// Each candidate is re-read under lock; an order that was accepted or cancelled in the
// meantime is skipped. Failures on single orders do not stop the sweep and are returned
// combined.
type ExpireStaleOrdersCommandHandler struct {
	uowFactory ports.UnitOfWorkFactory
	log        *zap.Logger
}

func NewExpireStaleOrdersCommandHandler(uowFactory ports.UnitOfWorkFactory, log *zap.Logger) ExpireStaleOrdersCommandHandler {
	return ExpireStaleOrdersCommandHandler{
		uowFactory: uowFactory,
		log:        logger.Component(log, "expire_stale_orders"),
	}
}

func (h ExpireStaleOrdersCommandHandler) Handle(ctx context.Context, cmd ExpireStaleOrdersCommand) (ExpireStaleOrdersResult, error) {
	var result ExpireStaleOrdersResult
	if err := cmd.Validate(); err != nil {
		return result, err
	}

	cutoff := cmd.Now().Add(-cmd.Window())
	ids, err := h.uowFactory.Create().OrderRepository().StalePendingIDs(ctx, cutoff, cmd.Batch())
	if err != nil {
		return result, err
	}
	result.Candidates = len(ids)

	var combined error
	for _, id := range ids {
		if ctx.Err() != nil {
			combined = multierr.Append(combined, ctx.Err())
			break
		}

		expired, err := h.expire(ctx, id, cmd)
		switch {
		case err != nil:
			h.log.Warn("failed to expire order", zap.String("order_id", id.String()), zap.Error(err))
			combined = multierr.Append(combined, err)
		case expired:
			result.Expired++
		default:
			result.Skipped++
		}
	}

	if result.Expired > 0 {
		h.log.Info("stale orders expired",
			zap.Int("expired", result.Expired),
			zap.Int("skipped", result.Skipped))
	}
	return result, combined
}

func (h ExpireStaleOrdersCommandHandler) expire(ctx context.Context, id kernel.UUID, cmd ExpireStaleOrdersCommand) (bool, error) {
	expired := false
	err := inTransaction(ctx, h.uowFactory, func(uow ports.UnitOfWork) error {
		orders := uow.OrderRepository()
		o, err := orders.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !o.IsStale(cmd.Now(), cmd.Window()) {
			return nil
		}

		system := kernel.SystemActor()
		change, err := o.Cancel(system, ExpiredReason, cmd.Now())
		if err != nil {
			return err
		}
		if err = saveTransition(ctx, orders, o, change, system, nil); err != nil {
			return err
		}

		expired = true
		return nil
	})
	return expired, err
}

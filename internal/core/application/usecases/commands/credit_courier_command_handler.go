package commands

import (
	"context"
	"errors"

	"courierhub/internal/core/domain/model/credittask"
	"courierhub/internal/core/domain/model/order"
	"courierhub/internal/core/ports"
	"courierhub/internal/pkg/errs"
	"courierhub/internal/pkg/logger"

	"go.uber.org/zap"
)

// CreditCourierCommandHandler credits the courier of a delivered order with its
// earnings. Orders that cannot be credited (missing, not delivered, no courier, nothing
// earned) are logged and acknowledged so the task does not retry forever.
type CreditCourierCommandHandler struct {
	uowFactory ports.UnitOfWorkFactory
	wallet     CreditWalletCommandHandler
	log        *zap.Logger
}

func NewCreditCourierCommandHandler(uowFactory ports.UnitOfWorkFactory, log *zap.Logger) CreditCourierCommandHandler {
	return CreditCourierCommandHandler{
		uowFactory: uowFactory,
		wallet:     NewCreditWalletCommandHandler(uowFactory),
		log:        logger.Component(log, "credit_courier"),
	}
}

// Handle reports whether a credit was applied by this call.
func (h CreditCourierCommandHandler) Handle(ctx context.Context, cmd CreditCourierCommand) (bool, error) {
	if err := cmd.Validate(); err != nil {
		return false, err
	}
	log := h.log.With(zap.String("order_id", cmd.OrderID().String()))

	o, err := h.uowFactory.Create().OrderRepository().Get(ctx, cmd.OrderID())
	if errors.Is(err, errs.ErrObjectNotFound) {
		log.Warn("skipping credit: order not found")
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if o.Status() != order.Delivered || o.CourierID() == nil {
		log.Warn("skipping credit: order is not delivered by a courier", zap.String("status", o.Status().String()))
		return false, nil
	}
	if !o.CourierEarnings().IsPositive() {
		log.Warn("skipping credit: order has no courier earnings",
			zap.Int64("courier_earnings", o.CourierEarnings().Int64()))
		return false, nil
	}

	credit, err := NewCreditWalletCommand(*o.CourierID(), o.CourierEarnings(), o.ID())
	if err != nil {
		return false, err
	}
	_, applied, err := h.wallet.Handle(ctx, credit)
	if err != nil {
		return false, err
	}

	if applied {
		log.Info("courier credited",
			zap.String("courier_id", o.CourierID().String()),
			zap.Int64("amount", o.CourierEarnings().Int64()))
	} else {
		log.Debug("order already credited")
	}
	return applied, nil
}

func (h CreditCourierCommandHandler) execute(ctx context.Context, task *credittask.Task) (bool, error) {
	cmd, err := NewCreditCourierCommand(task.OrderID)
	if err != nil {
		return false, err
	}
	return h.Handle(ctx, cmd)
}

package commands

import (
	"context"
	"time"

	"courierhub/internal/core/domain/model/credittask"
	"courierhub/internal/core/domain/model/order"
	"courierhub/internal/core/ports"
)

// ChangeOrderStatusCommandHandler drives participant transitions. Reaching delivered
// enqueues the courier credit task in the same transaction as the status change, so a
// delivered order always has exactly one pending credit.
type ChangeOrderStatusCommandHandler struct {
	uowFactory ports.UnitOfWorkFactory
}

func NewChangeOrderStatusCommandHandler(uowFactory ports.UnitOfWorkFactory) ChangeOrderStatusCommandHandler {
	return ChangeOrderStatusCommandHandler{uowFactory: uowFactory}
}

func (h ChangeOrderStatusCommandHandler) Handle(ctx context.Context, cmd ChangeOrderStatusCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	var changed *order.Order
	err := inTransaction(ctx, h.uowFactory, func(uow ports.UnitOfWork) error {
		orders := uow.OrderRepository()
		o, err := orders.GetForUpdate(ctx, cmd.OrderID())
		if err != nil {
			return err
		}

		now := time.Now()
		change, err := o.ChangeStatus(cmd.Actor(), cmd.Status(), now)
		if err != nil {
			return err
		}
		if err = saveTransition(ctx, orders, o, change, cmd.Actor(), cmd.GeoStamp()); err != nil {
			return err
		}

		if change.To == order.Delivered {
			task, err := credittask.NewTask(o.ID(), now)
			if err != nil {
				return err
			}
			if _, err = uow.CreditTaskRepository().Enqueue(ctx, task); err != nil {
				return err
			}
		}

		changed = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return changed, nil
}

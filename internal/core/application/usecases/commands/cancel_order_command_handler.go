package commands

import (
	"context"
	"time"

	"courierhub/internal/core/domain/model/order"
	"courierhub/internal/core/ports"
)

type CancelOrderCommandHandler struct {
	uowFactory ports.UnitOfWorkFactory
}

func NewCancelOrderCommandHandler(uowFactory ports.UnitOfWorkFactory) CancelOrderCommandHandler {
	return CancelOrderCommandHandler{uowFactory: uowFactory}
}

func (h CancelOrderCommandHandler) Handle(ctx context.Context, cmd CancelOrderCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	var cancelled *order.Order
	err := inTransaction(ctx, h.uowFactory, func(uow ports.UnitOfWork) error {
		orders := uow.OrderRepository()
		o, err := orders.GetForUpdate(ctx, cmd.OrderID())
		if err != nil {
			return err
		}

		change, err := o.Cancel(cmd.Actor(), cmd.Reason(), time.Now())
		if err != nil {
			return err
		}
		if err = saveTransition(ctx, orders, o, change, cmd.Actor(), nil); err != nil {
			return err
		}

		cancelled = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cancelled, nil
}

package commands

import (
	"context"
	"errors"
	"time"

	"courierhub/internal/core/domain/model/kernel"
	"courierhub/internal/core/domain/model/order"
	"courierhub/internal/core/ports"
	"courierhub/internal/pkg/errs"
)

var ErrCourierIsNotAvailable = errs.NewConflictError("courier is not available")

// AcceptOrderCommandHandler assigns a pending order to the accepting courier.
//
// The order row is locked for the whole transaction, so when several couriers accept
// the same order at once exactly one succeeds and the others get ErrAlreadyAssigned.
type AcceptOrderCommandHandler struct {
	uowFactory ports.UnitOfWorkFactory
}

func NewAcceptOrderCommandHandler(uowFactory ports.UnitOfWorkFactory) AcceptOrderCommandHandler {
	return AcceptOrderCommandHandler{uowFactory: uowFactory}
}

func (h AcceptOrderCommandHandler) Handle(ctx context.Context, cmd AcceptOrderCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	var accepted *order.Order
	err := inTransaction(ctx, h.uowFactory, func(uow ports.UnitOfWork) error {
		c, err := uow.CourierRepository().Get(ctx, cmd.CourierID())
		if errors.Is(err, errs.ErrObjectNotFound) {
			return ErrCourierIsNotAvailable
		}
		if err != nil {
			return err
		}
		if !c.IsAvailable() {
			return ErrCourierIsNotAvailable
		}

		orders := uow.OrderRepository()
		o, err := orders.GetForUpdate(ctx, cmd.OrderID())
		if err != nil {
			return err
		}

		change, err := o.Accept(cmd.CourierID(), time.Now())
		if err != nil {
			return err
		}

		courier := kernel.Actor{ID: cmd.CourierID(), Role: kernel.RoleCourier}
		if err = saveTransition(ctx, orders, o, change, courier, nil); err != nil {
			return err
		}

		accepted = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return accepted, nil
}

// saveTransition writes the order and the history entry describing change.
func saveTransition(
	ctx context.Context,
	orders ports.OrderRepository,
	o *order.Order,
	change order.StatusChange,
	actor kernel.Actor,
	geo *kernel.Location,
) error {
	entry, err := order.NewHistoryEntry(o.ID(), change, actor, geo)
	if err != nil {
		return err
	}
	if err = orders.Update(ctx, o); err != nil {
		return err
	}
	return orders.AddHistory(ctx, entry)
}

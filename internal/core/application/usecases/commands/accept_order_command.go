package commands

import (
	"errors"

	"courierhub/internal/core/domain/model/kernel"
	"courierhub/internal/pkg/guard"
)

var ErrAcceptOrderCommandIsNotConstructed = errors.New(
	"AcceptOrderCommand must be created via NewAcceptOrderCommand constructor",
)

// AcceptOrderCommand is a courier claiming a pending order.
type AcceptOrderCommand struct {
	courierID kernel.UUID
	orderID   kernel.UUID
	guard     guard.ConstructorGuard
}

func NewAcceptOrderCommand(courierID, orderID kernel.UUID) (AcceptOrderCommand, error) {
	if err := errors.Join(courierID.Validate(), orderID.Validate()); err != nil {
		return AcceptOrderCommand{}, err
	}
	return AcceptOrderCommand{courierID: courierID, orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

func (c AcceptOrderCommand) Validate() error {
	return c.guard.Validate(ErrAcceptOrderCommandIsNotConstructed)
}

func (c AcceptOrderCommand) CourierID() kernel.UUID {
	return c.courierID
}

func (c AcceptOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

package commands

import (
	"errors"

	"courierhub/internal/core/domain/model/kernel"
	"courierhub/internal/pkg/guard"
)

var ErrCreditCourierCommandIsNotConstructed = errors.New(
	"CreditCourierCommand must be created via NewCreditCourierCommand constructor",
)

// CreditCourierCommand is the credit task message. It carries only the order id; the
// courier and the amount are read from the delivered order.
type CreditCourierCommand struct {
	orderID kernel.UUID
	guard   guard.ConstructorGuard
}

func NewCreditCourierCommand(orderID kernel.UUID) (CreditCourierCommand, error) {
	if err := orderID.Validate(); err != nil {
		return CreditCourierCommand{}, err
	}
	return CreditCourierCommand{orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

func (c CreditCourierCommand) Validate() error {
	return c.guard.Validate(ErrCreditCourierCommandIsNotConstructed)
}

func (c CreditCourierCommand) OrderID() kernel.UUID {
	return c.orderID
}

package commands

import (
	"errors"
	"strings"

	"courierhub/internal/core/domain/model/kernel"
	"courierhub/internal/core/domain/model/withdrawal"
	"courierhub/internal/pkg/guard"
)

var ErrRequestWithdrawalCommandIsNotConstructed = errors.New(
	"RequestWithdrawalCommand must be created via NewRequestWithdrawalCommand constructor",
)

type RequestWithdrawalCommand struct {
	courierID   kernel.UUID
	amount      kernel.Money
	method      withdrawal.Method
	destination string

	guard guard.ConstructorGuard
}

func NewRequestWithdrawalCommand(
	courierID kernel.UUID,
	amount kernel.Money,
	method withdrawal.Method,
	destination string,
) (RequestWithdrawalCommand, error) {
	if err := errors.Join(
		courierID.Validate(),
		amount.ValidatePositive("amount"),
		method.Validate(),
	); err != nil {
		return RequestWithdrawalCommand{}, err
	}

	return RequestWithdrawalCommand{
		courierID:   courierID,
		amount:      amount,
		method:      method,
		destination: strings.TrimSpace(destination),
		guard:       guard.NewConstructorGuard(),
	}, nil
}

func (c RequestWithdrawalCommand) Validate() error {
	return c.guard.Validate(ErrRequestWithdrawalCommandIsNotConstructed)
}

func (c RequestWithdrawalCommand) CourierID() kernel.UUID {
	return c.courierID
}

func (c RequestWithdrawalCommand) Amount() kernel.Money {
	return c.amount
}

func (c RequestWithdrawalCommand) Method() withdrawal.Method {
	return c.method
}

func (c RequestWithdrawalCommand) Destination() string {
	return c.destination
}

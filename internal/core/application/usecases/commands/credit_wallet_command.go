package commands

import (
	"errors"

	"courierhub/internal/core/domain/model/kernel"
	"courierhub/internal/pkg/guard"
)

var ErrCreditWalletCommandIsNotConstructed = errors.New(
	"CreditWalletCommand must be created via NewCreditWalletCommand constructor",
)

// CreditWalletCommand credits amount earned on orderID to the courier's wallet.
type CreditWalletCommand struct {
	courierID kernel.UUID
	amount    kernel.Money
	orderID   kernel.UUID

	guard guard.ConstructorGuard
}

func NewCreditWalletCommand(courierID kernel.UUID, amount kernel.Money, orderID kernel.UUID) (CreditWalletCommand, error) {
	if err := errors.Join(courierID.Validate(), amount.ValidatePositive("amount"), orderID.Validate()); err != nil {
		return CreditWalletCommand{}, err
	}
	return CreditWalletCommand{
		courierID: courierID,
		amount:    amount,
		orderID:   orderID,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c CreditWalletCommand) Validate() error {
	return c.guard.Validate(ErrCreditWalletCommandIsNotConstructed)
}

func (c CreditWalletCommand) CourierID() kernel.UUID {
	return c.courierID
}

func (c CreditWalletCommand) Amount() kernel.Money {
	return c.amount
}

func (c CreditWalletCommand) OrderID() kernel.UUID {
	return c.orderID
}

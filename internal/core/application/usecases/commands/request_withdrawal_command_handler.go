package commands

import (
	"context"
	"time"

	"courierhub/internal/core/application/ledger"
	"courierhub/internal/core/domain/model/kernel"
	"courierhub/internal/core/domain/model/withdrawal"
	"courierhub/internal/core/ports"
)

// DefaultMinimumWithdrawal is used when the handler is built with a non-positive minimum.
const DefaultMinimumWithdrawal kernel.Money = 1000

// RequestWithdrawalCommandHandler creates a pending withdrawal and reserves its amount
// in the courier's wallet within one transaction.
type RequestWithdrawalCommandHandler struct {
	uowFactory ports.UnitOfWorkFactory
	minimum    kernel.Money
}

func NewRequestWithdrawalCommandHandler(uowFactory ports.UnitOfWorkFactory, minimum kernel.Money) RequestWithdrawalCommandHandler {
	if minimum <= 0 {
		minimum = DefaultMinimumWithdrawal
	}
	return RequestWithdrawalCommandHandler{uowFactory: uowFactory, minimum: minimum}
}

func (h RequestWithdrawalCommandHandler) Handle(ctx context.Context, cmd RequestWithdrawalCommand) (*withdrawal.Withdrawal, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	var requested *withdrawal.Withdrawal
	err := inTransaction(ctx, h.uowFactory, func(uow ports.UnitOfWork) error {
		now := time.Now()
		w, err := withdrawal.NewWithdrawal(kernel.NewUUID(), cmd.CourierID(),
			cmd.Amount(), h.minimum, cmd.Method(), cmd.Destination(), now)
		if err != nil {
			return err
		}

		l := ledger.New(uow.WalletRepository(), func() time.Time { return now })
		if _, err = l.ReserveForWithdrawal(ctx, cmd.CourierID(), cmd.Amount()); err != nil {
			return err
		}
		if err = uow.WithdrawalRepository().Add(ctx, w); err != nil {
			return err
		}

		requested = w
		return nil
	})
	if err != nil {
		return nil, err
	}
	return requested, nil
}

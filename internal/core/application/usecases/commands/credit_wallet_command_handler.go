package commands

import (
	"context"

	"courierhub/internal/core/application/ledger"
	"courierhub/internal/core/domain/model/wallet"
	"courierhub/internal/core/ports"
)

type CreditWalletCommandHandler struct {
	uowFactory ports.UnitOfWorkFactory
}

func NewCreditWalletCommandHandler(uowFactory ports.UnitOfWorkFactory) CreditWalletCommandHandler {
	return CreditWalletCommandHandler{uowFactory: uowFactory}
}

// Handle runs the ledger credit in its own transaction. applied is false when the order
// had already been credited.
func (h CreditWalletCommandHandler) Handle(ctx context.Context, cmd CreditWalletCommand) (w *wallet.Wallet, applied bool, err error) {
	if err = cmd.Validate(); err != nil {
		return nil, false, err
	}

	err = inTransaction(ctx, h.uowFactory, func(uow ports.UnitOfWork) error {
		var creditErr error
		w, applied, creditErr = ledger.New(uow.WalletRepository(), nil).
			Credit(ctx, cmd.CourierID(), cmd.Amount(), cmd.OrderID())
		return creditErr
	})
	if err != nil {
		return nil, false, err
	}
	return w, applied, nil
}

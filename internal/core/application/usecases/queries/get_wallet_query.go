package queries

import (
	"context"
	"errors"

	"courierhub/internal/core/domain/model/kernel"
	"courierhub/internal/core/domain/model/wallet"
	"courierhub/internal/core/ports"
	"courierhub/internal/pkg/errs"
	"courierhub/internal/pkg/guard"
)

var ErrGetWalletQueryIsNotConstructed = errors.New(
	"GetWalletQuery must be created via NewGetWalletQuery constructor",
)

type GetWalletQuery struct {
	courierID kernel.UUID
	page      ports.Page
	guard     guard.ConstructorGuard
}

// NewGetWalletQuery reads the courier's wallet and a page of its credit entries.
func NewGetWalletQuery(courierID kernel.UUID, page ports.Page) (GetWalletQuery, error) {
	if err := courierID.Validate(); err != nil {
		return GetWalletQuery{}, err
	}
	return GetWalletQuery{courierID: courierID, page: page.Normalize(), guard: guard.NewConstructorGuard()}, nil
}

func (q GetWalletQuery) Validate() error {
	return q.guard.Validate(ErrGetWalletQueryIsNotConstructed)
}

type GetWalletQueryResponse struct {
	Wallet  wallet.Snapshot
	Credits []wallet.CreditEntry
}

type GetWalletQueryHandler struct {
	uowFactory ports.UnitOfWorkFactory
}

func NewGetWalletQueryHandler(uowFactory ports.UnitOfWorkFactory) GetWalletQueryHandler {
	return GetWalletQueryHandler{uowFactory: uowFactory}
}

// Handle reports an empty wallet for a courier that has never been credited; reading
// never creates the wallet row.
func (h GetWalletQueryHandler) Handle(ctx context.Context, query GetWalletQuery) (GetWalletQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetWalletQueryResponse{}, err
	}

	wallets := h.uowFactory.Create().WalletRepository()
	w, err := wallets.Get(ctx, query.courierID)
	if errors.Is(err, errs.ErrObjectNotFound) {
		return GetWalletQueryResponse{
			Wallet:  wallet.Snapshot{CourierID: query.courierID},
			Credits: []wallet.CreditEntry{},
		}, nil
	}
	if err != nil {
		return GetWalletQueryResponse{}, err
	}

	credits, err := wallets.Credits(ctx, query.courierID, query.page)
	if err != nil {
		return GetWalletQueryResponse{}, err
	}
	return GetWalletQueryResponse{Wallet: w.Snapshot(), Credits: credits}, nil
}

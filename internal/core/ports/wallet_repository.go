package ports

import (
	"context"
	"time"

	"courierhub/internal/core/domain/model/kernel"
	"courierhub/internal/core/domain/model/wallet"
)

type WalletRepository interface {
	// GetForUpdate returns the courier's wallet with its row locked, creating an empty
	// wallet first if the courier has none.
	GetForUpdate(ctx context.Context, courierID kernel.UUID, now time.Time) (*wallet.Wallet, error)

	// Get returns ErrObjectNotFound when the courier has never been credited.
	Get(ctx context.Context, courierID kernel.UUID) (*wallet.Wallet, error)

	Update(ctx context.Context, w *wallet.Wallet) error

	// HasCredit reports whether orderID has already been credited.
	HasCredit(ctx context.Context, orderID kernel.UUID) (bool, error)

	// AddCredit records the credit entry. A second entry for the same order is a ConflictError.
	AddCredit(ctx context.Context, entry wallet.CreditEntry) error

	Credits(ctx context.Context, courierID kernel.UUID, page Page) ([]wallet.CreditEntry, error)
}

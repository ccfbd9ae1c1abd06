package ports

import (
	"context"

	"courierhub/internal/core/domain/model/kernel"
	"courierhub/internal/core/domain/model/withdrawal"
)

type WithdrawalRepository interface {
	Add(ctx context.Context, w *withdrawal.Withdrawal) error
	Update(ctx context.Context, w *withdrawal.Withdrawal) error
	Get(ctx context.Context, id kernel.UUID) (*withdrawal.Withdrawal, error)
	GetForUpdate(ctx context.Context, id kernel.UUID) (*withdrawal.Withdrawal, error)

	// ListByCourier returns the courier's withdrawals, newest first.
	ListByCourier(ctx context.Context, courierID kernel.UUID, page Page) ([]*withdrawal.Withdrawal, error)

	// List returns withdrawals in the given status (all when nil), newest first.
	List(ctx context.Context, status *withdrawal.Status, page Page) ([]*withdrawal.Withdrawal, error)
}

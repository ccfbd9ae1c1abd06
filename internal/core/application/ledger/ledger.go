// Package ledger applies money movements to courier wallets.
//
// A Ledger is bound to the wallet repository of one unit of work. Every operation
// starts by locking the wallet row, so operations on the same wallet are linearizable
// and the wallet invariant is checked before anything is written back.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"courierhub/internal/core/domain/model/kernel"
	"courierhub/internal/core/domain/model/wallet"
	"courierhub/internal/core/ports"
)

type Ledger struct {
	wallets ports.WalletRepository
	now     func() time.Time
}

// New binds a ledger to wallets. A nil clock means time.Now.
func New(wallets ports.WalletRepository, now func() time.Time) *Ledger {
	if now == nil {
		now = time.Now
	}
	return &Ledger{wallets: wallets, now: now}
}

// Credit adds amount earned on sourceOrderID to the courier's wallet, creating the wallet
// on first use. A second credit for the same order changes nothing and returns the
// current wallet with applied set to false.
func (l *Ledger) Credit(
	ctx context.Context,
	courierID kernel.UUID,
	amount kernel.Money,
	sourceOrderID kernel.UUID,
) (w *wallet.Wallet, applied bool, err error) {
	if err := errors.Join(
		courierID.Validate(),
		sourceOrderID.Validate(),
		amount.ValidatePositive("amount"),
	); err != nil {
		return nil, false, err
	}

	now := l.now()
	w, err = l.wallets.GetForUpdate(ctx, courierID, now)
	if err != nil {
		return nil, false, err
	}

	credited, err := l.wallets.HasCredit(ctx, sourceOrderID)
	if err != nil {
		return nil, false, err
	}
	if credited {
		return w, false, nil
	}

	if err := w.Credit(amount, now); err != nil {
		return nil, false, err
	}
	if err := l.wallets.AddCredit(ctx, wallet.NewCreditEntry(courierID, sourceOrderID, amount, now)); err != nil {
		return nil, false, fmt.Errorf("record credit for order %s: %w", sourceOrderID, err)
	}
	if err := l.wallets.Update(ctx, w); err != nil {
		return nil, false, err
	}
	return w, true, nil
}

// ReserveForWithdrawal moves amount from balance to pending_balance.
// It fails with InsufficientBalanceError when amount exceeds the balance.
func (l *Ledger) ReserveForWithdrawal(ctx context.Context, courierID kernel.UUID, amount kernel.Money) (*wallet.Wallet, error) {
	return l.apply(ctx, courierID, func(w *wallet.Wallet, now time.Time) error {
		return w.Reserve(amount, now)
	})
}

// ReleaseReservation moves amount from pending_balance back to balance.
func (l *Ledger) ReleaseReservation(ctx context.Context, courierID kernel.UUID, amount kernel.Money) (*wallet.Wallet, error) {
	return l.apply(ctx, courierID, func(w *wallet.Wallet, now time.Time) error {
		return w.Release(amount, now)
	})
}

// FinalizeWithdrawal moves amount from pending_balance to total_withdrawn.
func (l *Ledger) FinalizeWithdrawal(ctx context.Context, courierID kernel.UUID, amount kernel.Money) (*wallet.Wallet, error) {
	return l.apply(ctx, courierID, func(w *wallet.Wallet, now time.Time) error {
		return w.Finalize(amount, now)
	})
}

func (l *Ledger) apply(ctx context.Context, courierID kernel.UUID, op func(*wallet.Wallet, time.Time) error) (*wallet.Wallet, error) {
	if err := courierID.Validate(); err != nil {
		return nil, err
	}

	now := l.now()
	w, err := l.wallets.GetForUpdate(ctx, courierID, now)
	if err != nil {
		return nil, err
	}
	if err := op(w, now); err != nil {
		return nil, err
	}
	if err := l.wallets.Update(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

package wallet

import (
	"errors"
	"fmt"
	"time"

	"courierhub/internal/core/domain/model/kernel"
	"courierhub/internal/pkg/errs"
	"courierhub/internal/pkg/guard"
)

var (
	ErrWalletIsNotConstructed = errors.New("wallet must be created via NewWallet constructor")
	ErrInvariantViolated      = errors.New("wallet invariant violated")
)

// Wallet is one courier's account. Amounts are in minor currency units.
type Wallet struct {
	courierID      kernel.UUID
	balance        kernel.Money
	pendingBalance kernel.Money
	totalEarned    kernel.Money
	totalWithdrawn kernel.Money
	createdAt      time.Time
	updatedAt      time.Time
	guard          guard.ConstructorGuard
}

// NewWallet opens an empty wallet for the courier.
func NewWallet(courierID kernel.UUID, now time.Time) (*Wallet, error) {
	if err := courierID.Validate(); err != nil {
		return nil, err
	}
	now = now.UTC()
	return &Wallet{
		courierID: courierID,
		createdAt: now,
		updatedAt: now,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

type Snapshot struct {
	CourierID      kernel.UUID
	Balance        kernel.Money
	PendingBalance kernel.Money
	TotalEarned    kernel.Money
	TotalWithdrawn kernel.Money
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// RestoreWallet rebuilds a wallet from storage, refusing rows that break the invariant.
func RestoreWallet(s Snapshot) (*Wallet, error) {
	if err := s.CourierID.Validate(); err != nil {
		return nil, err
	}
	w := &Wallet{
		courierID:      s.CourierID,
		balance:        s.Balance,
		pendingBalance: s.PendingBalance,
		totalEarned:    s.TotalEarned,
		totalWithdrawn: s.TotalWithdrawn,
		createdAt:      s.CreatedAt,
		updatedAt:      s.UpdatedAt,
		guard:          guard.NewConstructorGuard(),
	}
	if err := w.CheckInvariant(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *Wallet) Snapshot() Snapshot {
	return Snapshot{
		CourierID:      w.courierID,
		Balance:        w.balance,
		PendingBalance: w.pendingBalance,
		TotalEarned:    w.totalEarned,
		TotalWithdrawn: w.totalWithdrawn,
		CreatedAt:      w.createdAt,
		UpdatedAt:      w.updatedAt,
	}
}

func (w *Wallet) Validate() error {
	if w == nil {
		return ErrWalletIsNotConstructed
	}
	return w.guard.Validate(ErrWalletIsNotConstructed)
}

func (w *Wallet) CourierID() kernel.UUID {
	return w.courierID
}

func (w *Wallet) Balance() kernel.Money {
	return w.balance
}

func (w *Wallet) PendingBalance() kernel.Money {
	return w.pendingBalance
}

func (w *Wallet) TotalEarned() kernel.Money {
	return w.totalEarned
}

func (w *Wallet) TotalWithdrawn() kernel.Money {
	return w.totalWithdrawn
}

func (w *Wallet) CreatedAt() time.Time {
	return w.createdAt
}

func (w *Wallet) UpdatedAt() time.Time {
	return w.updatedAt
}

// Credit adds earnings to the available balance.
func (w *Wallet) Credit(amount kernel.Money, now time.Time) error {
	if err := amount.ValidatePositive("amount"); err != nil {
		return err
	}
	return w.mutate(now, func() {
		w.balance += amount
		w.totalEarned += amount
	})
}

// Reserve moves amount from balance to pending_balance for an in-flight withdrawal.
func (w *Wallet) Reserve(amount kernel.Money, now time.Time) error {
	if err := amount.ValidatePositive("amount"); err != nil {
		return err
	}
	if amount > w.balance {
		return errs.NewInsufficientBalanceError(amount.Int64(), w.balance.Int64())
	}
	return w.mutate(now, func() {
		w.balance -= amount
		w.pendingBalance += amount
	})
}

// Release returns a reservation to the available balance.
func (w *Wallet) Release(amount kernel.Money, now time.Time) error {
	if err := w.checkPending(amount); err != nil {
		return err
	}
	return w.mutate(now, func() {
		w.pendingBalance -= amount
		w.balance += amount
	})
}

// Finalize pays a reservation out.
func (w *Wallet) Finalize(amount kernel.Money, now time.Time) error {
	if err := w.checkPending(amount); err != nil {
		return err
	}
	return w.mutate(now, func() {
		w.pendingBalance -= amount
		w.totalWithdrawn += amount
	})
}

// CheckInvariant verifies that no field is negative and the four fields balance out.
func (w *Wallet) CheckInvariant() error {
	if w.balance < 0 || w.pendingBalance < 0 || w.totalEarned < 0 || w.totalWithdrawn < 0 {
		return fmt.Errorf("%w: negative amount in wallet %s", ErrInvariantViolated, w.courierID)
	}
	if w.balance+w.pendingBalance+w.totalWithdrawn != w.totalEarned {
		return fmt.Errorf("%w: %d + %d + %d != %d in wallet %s", ErrInvariantViolated,
			w.balance, w.pendingBalance, w.totalWithdrawn, w.totalEarned, w.courierID)
	}
	return nil
}

func (w *Wallet) checkPending(amount kernel.Money) error {
	if err := amount.ValidatePositive("amount"); err != nil {
		return err
	}
	if amount > w.pendingBalance {
		return errs.NewValueIsOutOfRangeError("amount", amount.Int64(), 1, w.pendingBalance.Int64())
	}
	return nil
}

// mutate applies change and rolls it back if the result would break the invariant.
func (w *Wallet) mutate(now time.Time, change func()) error {
	before := *w
	change()
	if err := w.CheckInvariant(); err != nil {
		*w = before
		return err
	}
	w.updatedAt = now.UTC()
	return nil
}

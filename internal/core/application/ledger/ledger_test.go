package ledger_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"courierhub/internal/core/application/ledger"
	"courierhub/internal/core/domain/model/kernel"
	"courierhub/internal/core/domain/model/wallet"
	"courierhub/internal/core/ports/portstest"
	"courierhub/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = func() time.Time { return time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC) }

// inTx runs fn with a ledger inside a committed transaction, rolling back on error.
func inTx(t *testing.T, store *portstest.Store, fn func(ctx context.Context, l *ledger.Ledger) error) error {
	t.Helper()
	ctx := t.Context()
	uow := store.Factory().Create()
	require.NoError(t, uow.Begin(ctx))
	defer func() { _ = uow.Rollback(ctx) }()

	if err := fn(ctx, ledger.New(uow.WalletRepository(), fixedNow)); err != nil {
		return err
	}
	return uow.Commit(ctx)
}

func requireWallet(t *testing.T, store *portstest.Store, courierID kernel.UUID, balance, pending, earned, withdrawn kernel.Money) {
	t.Helper()
	snap, ok := store.Wallet(courierID)
	require.True(t, ok)
	assert.Equal(t, balance, snap.Balance, "balance")
	assert.Equal(t, pending, snap.PendingBalance, "pending balance")
	assert.Equal(t, earned, snap.TotalEarned, "total earned")
	assert.Equal(t, withdrawn, snap.TotalWithdrawn, "total withdrawn")
	assert.Equal(t, snap.TotalEarned, snap.Balance+snap.PendingBalance+snap.TotalWithdrawn)
}

func TestLedger_Credit(t *testing.T) {
	t.Run("creates wallet lazily", func(t *testing.T) {
		store := portstest.NewStore()
		courierID := kernel.NewUUID()

		err := inTx(t, store, func(ctx context.Context, l *ledger.Ledger) error {
			w, applied, err := l.Credit(ctx, courierID, 1360, kernel.NewUUID())
			require.NoError(t, err)
			assert.True(t, applied)
			assert.Equal(t, kernel.Money(1360), w.Balance())
			return nil
		})

		require.NoError(t, err)
		requireWallet(t, store, courierID, 1360, 0, 1360, 0)
		assert.Equal(t, 1, store.Credits())
	})

	t.Run("is idempotent per source order", func(t *testing.T) {
		store := portstest.NewStore()
		courierID := kernel.NewUUID()
		orderID := kernel.NewUUID()

		for range 3 {
			err := inTx(t, store, func(ctx context.Context, l *ledger.Ledger) error {
				_, _, err := l.Credit(ctx, courierID, 1360, orderID)
				return err
			})
			require.NoError(t, err)
		}

		requireWallet(t, store, courierID, 1360, 0, 1360, 0)
		assert.Equal(t, 1, store.Credits())
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		store := portstest.NewStore()

		err := inTx(t, store, func(ctx context.Context, l *ledger.Ledger) error {
			_, _, err := l.Credit(ctx, kernel.NewUUID(), 0, kernel.NewUUID())
			return err
		})

		require.Error(t, err)
		assert.Equal(t, errs.CodeValidation, errs.CodeOf(err))
		assert.Zero(t, store.Credits())
	})

	t.Run("storage failure leaves wallet untouched", func(t *testing.T) {
		store := portstest.NewStore()
		courierID := kernel.NewUUID()
		store.FailNext("wallets.AddCredit", errors.New("connection reset"))

		err := inTx(t, store, func(ctx context.Context, l *ledger.Ledger) error {
			_, _, err := l.Credit(ctx, courierID, 500, kernel.NewUUID())
			return err
		})

		require.Error(t, err)
		_, ok := store.Wallet(courierID)
		assert.False(t, ok)
	})

	t.Run("concurrent credits never lose an update", func(t *testing.T) {
		store := portstest.NewStore()
		courierID := kernel.NewUUID()

		var wg sync.WaitGroup
		for range 20 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ctx := context.Background()
				uow := store.Factory().Create()
				if err := uow.Begin(ctx); err != nil {
					return
				}
				defer func() { _ = uow.Rollback(ctx) }()
				if _, _, err := ledger.New(uow.WalletRepository(), nil).Credit(ctx, courierID, 100, kernel.NewUUID()); err != nil {
					return
				}
				_ = uow.Commit(ctx)
			}()
		}
		wg.Wait()

		requireWallet(t, store, courierID, 2000, 0, 2000, 0)
	})
}

func TestLedger_WithdrawalFlow(t *testing.T) {
	t.Run("empty wallet cannot reserve", func(t *testing.T) {
		store := portstest.NewStore()

		err := inTx(t, store, func(ctx context.Context, l *ledger.Ledger) error {
			_, err := l.ReserveForWithdrawal(ctx, kernel.NewUUID(), 5000)
			return err
		})

		var balanceErr *errs.InsufficientBalanceError
		require.ErrorAs(t, err, &balanceErr)
		assert.Equal(t, int64(0), balanceErr.Available)
	})

	t.Run("reserve, release, reserve, finalize", func(t *testing.T) {
		store := portstest.NewStore()
		courierID := kernel.NewUUID()

		steps := []func(ctx context.Context, l *ledger.Ledger) (*wallet.Wallet, error){
			func(ctx context.Context, l *ledger.Ledger) (*wallet.Wallet, error) {
				w, _, err := l.Credit(ctx, courierID, 10000, kernel.NewUUID())
				return w, err
			},
			func(ctx context.Context, l *ledger.Ledger) (*wallet.Wallet, error) {
				return l.ReserveForWithdrawal(ctx, courierID, 10000)
			},
			func(ctx context.Context, l *ledger.Ledger) (*wallet.Wallet, error) {
				return l.ReleaseReservation(ctx, courierID, 10000)
			},
			func(ctx context.Context, l *ledger.Ledger) (*wallet.Wallet, error) {
				return l.ReserveForWithdrawal(ctx, courierID, 4000)
			},
			func(ctx context.Context, l *ledger.Ledger) (*wallet.Wallet, error) {
				return l.FinalizeWithdrawal(ctx, courierID, 4000)
			},
		}
		for _, step := range steps {
			err := inTx(t, store, func(ctx context.Context, l *ledger.Ledger) error {
				w, err := step(ctx, l)
				if err != nil {
					return err
				}
				return w.CheckInvariant()
			})
			require.NoError(t, err)
		}

		requireWallet(t, store, courierID, 6000, 0, 10000, 4000)
	})

	t.Run("finalize without reservation fails", func(t *testing.T) {
		store := portstest.NewStore()

		err := inTx(t, store, func(ctx context.Context, l *ledger.Ledger) error {
			_, err := l.FinalizeWithdrawal(ctx, kernel.NewUUID(), 100)
			return err
		})

		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	})
}

package wallet_test

import (
	"testing"
	"time"

	"courierhub/internal/core/domain/model/kernel"
	"courierhub/internal/core/domain/model/wallet"
	"courierhub/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

func newWallet(t *testing.T, credit kernel.Money) *wallet.Wallet {
	t.Helper()
	w, err := wallet.NewWallet(kernel.NewUUID(), now)
	require.NoError(t, err)
	if credit > 0 {
		require.NoError(t, w.Credit(credit, now))
	}
	return w
}

func assertBalances(t *testing.T, w *wallet.Wallet, balance, pending, earned, withdrawn kernel.Money) {
	t.Helper()
	assert.Equal(t, balance, w.Balance(), "balance")
	assert.Equal(t, pending, w.PendingBalance(), "pending balance")
	assert.Equal(t, earned, w.TotalEarned(), "total earned")
	assert.Equal(t, withdrawn, w.TotalWithdrawn(), "total withdrawn")
	require.NoError(t, w.CheckInvariant())
}

func TestWallet_Credit(t *testing.T) {
	t.Run("should increase balance and total earned", func(t *testing.T) {
		w := newWallet(t, 0)

		require.NoError(t, w.Credit(1360, now))
		require.NoError(t, w.Credit(640, now))

		assertBalances(t, w, 2000, 0, 2000, 0)
	})

	t.Run("should reject non-positive amounts", func(t *testing.T) {
		w := newWallet(t, 0)

		require.ErrorIs(t, w.Credit(0, now), errs.ErrValueIsInvalid)
		require.ErrorIs(t, w.Credit(-5, now), errs.ErrValueIsInvalid)
		assertBalances(t, w, 0, 0, 0, 0)
	})
}

func TestWallet_Reserve(t *testing.T) {
	t.Run("empty wallet has insufficient balance", func(t *testing.T) {
		w := newWallet(t, 0)

		err := w.Reserve(5000, now)

		var balanceErr *errs.InsufficientBalanceError
		require.ErrorAs(t, err, &balanceErr)
		assert.Equal(t, int64(5000), balanceErr.Requested)
		assert.Equal(t, int64(0), balanceErr.Available)
		assertBalances(t, w, 0, 0, 0, 0)
	})

	t.Run("whole balance can be reserved", func(t *testing.T) {
		w := newWallet(t, 10000)

		require.NoError(t, w.Reserve(10000, now))

		assertBalances(t, w, 0, 10000, 10000, 0)
	})
}

func TestWallet_ReleaseAndFinalize(t *testing.T) {
	t.Run("release returns funds", func(t *testing.T) {
		w := newWallet(t, 10000)
		require.NoError(t, w.Reserve(4000, now))

		require.NoError(t, w.Release(4000, now))

		assertBalances(t, w, 10000, 0, 10000, 0)
	})

	t.Run("finalize pays out", func(t *testing.T) {
		w := newWallet(t, 10000)
		require.NoError(t, w.Reserve(10000, now))

		require.NoError(t, w.Finalize(10000, now))

		assertBalances(t, w, 0, 0, 10000, 10000)
	})

	t.Run("more than pending is refused", func(t *testing.T) {
		w := newWallet(t, 10000)
		require.NoError(t, w.Reserve(100, now))

		require.ErrorIs(t, w.Finalize(101, now), errs.ErrValueIsOutOfRange)
		require.ErrorIs(t, w.Release(101, now), errs.ErrValueIsOutOfRange)
		assertBalances(t, w, 9900, 100, 10000, 0)
	})
}

func TestRestoreWallet(t *testing.T) {
	t.Run("should accept balanced snapshot", func(t *testing.T) {
		w, err := wallet.RestoreWallet(wallet.Snapshot{
			CourierID: kernel.NewUUID(), Balance: 10, PendingBalance: 5, TotalEarned: 20, TotalWithdrawn: 5,
		})
		require.NoError(t, err)
		require.NoError(t, w.Validate())
	})

	t.Run("should refuse unbalanced snapshot", func(t *testing.T) {
		_, err := wallet.RestoreWallet(wallet.Snapshot{
			CourierID: kernel.NewUUID(), Balance: 10, TotalEarned: 5,
		})
		require.ErrorIs(t, err, wallet.ErrInvariantViolated)
	})

	t.Run("should refuse negative fields", func(t *testing.T) {
		_, err := wallet.RestoreWallet(wallet.Snapshot{
			CourierID: kernel.NewUUID(), Balance: -10, PendingBalance: 10,
		})
		require.ErrorIs(t, err, wallet.ErrInvariantViolated)
	})
}

package courier_test

import (
	"testing"
	"time"

	"courierhub/internal/core/domain/model/courier"
	"courierhub/internal/core/domain/model/kernel"
	"courierhub/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCourier(t *testing.T) {
	t.Run("should create offline courier without location", func(t *testing.T) {
		c, err := courier.NewCourier(kernel.NewUUID(), "  Bob ", courier.Bicycle)

		require.NoError(t, err)
		require.NoError(t, c.Validate())
		assert.Equal(t, "Bob", c.Name())
		assert.Nil(t, c.Location())
		assert.False(t, c.IsAvailable())
		assert.False(t, c.CanBeMatched())
	})

	t.Run("should join validation errors", func(t *testing.T) {
		_, err := courier.NewCourier(kernel.NewUUID(), " ", "rocket")

		require.ErrorIs(t, err, errs.ErrValueIsRequired)
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})
}

func TestCourier_ReportLocation(t *testing.T) {
	c, err := courier.NewCourier(kernel.NewUUID(), "Bob", courier.Car)
	require.NoError(t, err)
	loc, err := kernel.NewLocation(52.52, 13.405)
	require.NoError(t, err)
	at := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)

	t.Run("should make courier matchable", func(t *testing.T) {
		require.NoError(t, c.ReportLocation(loc, true, at))

		assert.True(t, c.CanBeMatched())
		require.NotNil(t, c.LocationUpdatedAt())
		assert.Equal(t, at, *c.LocationUpdatedAt())
	})

	t.Run("going offline keeps last location", func(t *testing.T) {
		c.SetAvailable(false)

		assert.False(t, c.CanBeMatched())
		assert.NotNil(t, c.Location())
	})

	t.Run("should reject zero location", func(t *testing.T) {
		var zero kernel.Location
		require.Error(t, c.ReportLocation(zero, true, at))
	})
}

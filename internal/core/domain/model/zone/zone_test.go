package zone_test

import (
	"testing"

	"courierhub/internal/core/domain/model/kernel"
	"courierhub/internal/core/domain/model/zone"
	"courierhub/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewZone(t *testing.T) {
	tariff := zone.Tariff{BasePrice: 500, PricePerKm: 200, SurgeMultiplier: decimal.NewFromInt(1)}

	t.Run("active zone exposes tariff", func(t *testing.T) {
		z, err := zone.NewZone(kernel.NewUUID(), "Center", true, tariff)
		require.NoError(t, err)

		got, err := z.ActiveTariff()
		require.NoError(t, err)
		assert.Equal(t, kernel.Money(500), got.BasePrice)
	})

	t.Run("inactive zone conflicts", func(t *testing.T) {
		z, err := zone.NewZone(kernel.NewUUID(), "Suburbs", false, tariff)
		require.NoError(t, err)

		_, err = z.ActiveTariff()
		require.ErrorIs(t, err, errs.ErrConflict)
	})

	t.Run("surge below one is invalid", func(t *testing.T) {
		bad := tariff
		bad.SurgeMultiplier = decimal.RequireFromString("0.5")

		_, err := zone.NewZone(kernel.NewUUID(), "Center", true, bad)
		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	})

	t.Run("name and prices are checked", func(t *testing.T) {
		bad := tariff
		bad.BasePrice = -1

		_, err := zone.NewZone(kernel.NewUUID(), "", true, bad)
		require.ErrorIs(t, err, errs.ErrValueIsRequired)
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})
}

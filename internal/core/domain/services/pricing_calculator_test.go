package services_test

import (
	"testing"

	"courierhub/internal/core/domain/model/kernel"
	"courierhub/internal/core/domain/model/order"
	"courierhub/internal/core/domain/model/zone"
	"courierhub/internal/core/domain/services"
	"courierhub/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseTariff() zone.Tariff {
	return zone.Tariff{
		BasePrice:        500,
		PricePerKm:       200,
		SurgeMultiplier:  decimal.NewFromInt(1),
		MediumSupplement: 150,
		LargeSupplement:  400,
	}
}

func newCalculator(t *testing.T) services.PricingCalculator {
	t.Helper()
	calc, err := services.NewPricingCalculator(services.DefaultCommissionRate)
	require.NoError(t, err)
	return calc
}

func TestPricingCalculator_QuoteDistance(t *testing.T) {
	calc := newCalculator(t)

	t.Run("should price 5.5 km in a 500 + 200/km zone", func(t *testing.T) {
		price, err := calc.QuoteDistance(5.5, order.SizeSmall, baseTariff())

		require.NoError(t, err)
		assert.Equal(t, kernel.Money(500), price.BasePrice)
		assert.Equal(t, kernel.Money(1100), price.DistancePrice)
		assert.Equal(t, kernel.Money(1600), price.TotalPrice)
		assert.Equal(t, kernel.Money(240), price.PlatformFee)
		assert.Equal(t, kernel.Money(1360), price.CourierEarnings)
	})

	t.Run("should round distance price half away from zero", func(t *testing.T) {
		price, err := calc.QuoteDistance(1.0025, order.SizeSmall, baseTariff())

		require.NoError(t, err)
		assert.Equal(t, kernel.Money(201), price.DistancePrice)
		assert.Equal(t, kernel.Money(701), price.TotalPrice)
		assert.Equal(t, kernel.Money(105), price.PlatformFee)
		assert.Equal(t, kernel.Money(596), price.CourierEarnings)
	})

	t.Run("should round commission half away from zero", func(t *testing.T) {
		tariff := baseTariff()
		tariff.BasePrice = 510

		price, err := calc.QuoteDistance(5.5, order.SizeSmall, tariff)

		require.NoError(t, err)
		assert.Equal(t, kernel.Money(1610), price.TotalPrice)
		assert.Equal(t, kernel.Money(242), price.PlatformFee)
		assert.Equal(t, kernel.Money(1368), price.CourierEarnings)
	})

	t.Run("should apply surge and size supplement", func(t *testing.T) {
		tariff := baseTariff()
		tariff.SurgeMultiplier = decimal.RequireFromString("1.5")

		price, err := calc.QuoteDistance(2, order.SizeLarge, tariff)

		require.NoError(t, err)
		assert.Equal(t, kernel.Money(600), price.DistancePrice)
		assert.Equal(t, kernel.Money(400), price.SizeSupplement)
		assert.Equal(t, kernel.Money(1500), price.TotalPrice)
		assert.InDelta(t, 1.5, price.SurgeMultiplier, 1e-9)
	})

	t.Run("fee and earnings always add up to total", func(t *testing.T) {
		for _, km := range []float64{0, 0.01, 0.333, 1.7, 12.345, 99.99} {
			price, err := calc.QuoteDistance(km, order.SizeMedium, baseTariff())
			require.NoError(t, err)
			assert.Equal(t, price.TotalPrice, price.PlatformFee+price.CourierEarnings, "km=%v", km)
		}
	})

	t.Run("should be deterministic", func(t *testing.T) {
		first, err := calc.QuoteDistance(7.777, order.SizeMedium, baseTariff())
		require.NoError(t, err)
		second, err := calc.QuoteDistance(7.777, order.SizeMedium, baseTariff())
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})

	t.Run("should reject negative distance", func(t *testing.T) {
		_, err := calc.QuoteDistance(-1, order.SizeSmall, baseTariff())
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})
}

func TestPricingCalculator_Quote(t *testing.T) {
	calc := newCalculator(t)
	pickup, _ := kernel.NewLocation(52.5200, 13.4050)
	dropoff, _ := kernel.NewLocation(52.5200, 13.4050)

	price, err := calc.Quote(pickup, dropoff, order.SizeSmall, baseTariff())

	require.NoError(t, err)
	assert.InDelta(t, 0, price.DistanceKm, 1e-9)
	assert.Equal(t, kernel.Money(500), price.TotalPrice)
	assert.Equal(t, kernel.Money(75), price.PlatformFee)
}

func TestNewPricingCalculator(t *testing.T) {
	_, err := services.NewPricingCalculator(decimal.NewFromInt(1))
	require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)

	_, err = services.NewPricingCalculator(decimal.NewFromInt(-1))
	require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)

	calc, err := services.NewPricingCalculator(decimal.Zero)
	require.NoError(t, err)
	assert.True(t, calc.CommissionRate().IsZero())
}

package services

import (
	"fmt"

	"courierhub/internal/core/domain/model/kernel"
	"courierhub/internal/core/domain/model/order"
	"courierhub/internal/core/domain/model/zone"
	"courierhub/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// DefaultCommissionRate is the platform share of every order.
var DefaultCommissionRate = decimal.RequireFromString("0.15")

// PricingCalculator computes the price breakdown of an order. The same inputs always produce
// the same output so that prices can be replayed during audits.
//
//	distance_price   = round(distance_km * price_per_km * surge)
//	total            = base + distance_price + size supplement
//	commission       = round(total * commission_rate)
//	courier_earnings = total - commission
//
// Rounding is half away from zero to the minor unit. Distance is never rounded before pricing.
type PricingCalculator struct {
	commissionRate decimal.Decimal
}

func NewPricingCalculator(commissionRate decimal.Decimal) (PricingCalculator, error) {
	if commissionRate.IsNegative() || commissionRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return PricingCalculator{}, errs.NewValueIsOutOfRangeError("commission rate", commissionRate.String(), 0, "1 (exclusive)")
	}
	return PricingCalculator{commissionRate: commissionRate}, nil
}

func (p PricingCalculator) CommissionRate() decimal.Decimal {
	return p.commissionRate
}

// Quote prices a trip from pickup to dropoff.
func (p PricingCalculator) Quote(pickup, dropoff kernel.Location, size order.Size, tariff zone.Tariff) (order.Price, error) {
	distance, err := pickup.DistanceKm(dropoff)
	if err != nil {
		return order.Price{}, err
	}
	return p.QuoteDistance(distance, size, tariff)
}

// QuoteDistance prices an already measured distance.
func (p PricingCalculator) QuoteDistance(distanceKm float64, size order.Size, tariff zone.Tariff) (order.Price, error) {
	if distanceKm < 0 {
		return order.Price{}, errs.NewValueIsInvalidErrorWithCause("distance", fmt.Errorf("%v is negative", distanceKm))
	}
	if err := size.Validate(); err != nil {
		return order.Price{}, err
	}
	if err := tariff.Validate(); err != nil {
		return order.Price{}, err
	}

	distancePrice := decimal.NewFromFloat(distanceKm).
		Mul(decimal.NewFromInt(tariff.PricePerKm.Int64())).
		Mul(tariff.SurgeMultiplier).
		Round(0)

	supplement := sizeSupplement(size, tariff)
	total := decimal.NewFromInt(tariff.BasePrice.Int64()).
		Add(distancePrice).
		Add(decimal.NewFromInt(supplement.Int64()))
	commission := total.Mul(p.commissionRate).Round(0)

	return order.Price{
		DistanceKm:      distanceKm,
		SurgeMultiplier: tariff.SurgeMultiplier.InexactFloat64(),
		BasePrice:       tariff.BasePrice,
		DistancePrice:   kernel.Money(distancePrice.IntPart()),
		SizeSupplement:  supplement,
		TotalPrice:      kernel.Money(total.IntPart()),
		PlatformFee:     kernel.Money(commission.IntPart()),
		CourierEarnings: kernel.Money(total.Sub(commission).IntPart()),
	}, nil
}

func sizeSupplement(size order.Size, tariff zone.Tariff) kernel.Money {
	switch size {
	case order.SizeMedium:
		return tariff.MediumSupplement
	case order.SizeLarge:
		return tariff.LargeSupplement
	default:
		return 0
	}
}

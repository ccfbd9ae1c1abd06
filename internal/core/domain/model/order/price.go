package order

import "courierhub/internal/core/domain/model/kernel"

// Price is the frozen breakdown computed when the order was created.
// All amounts are in minor currency units.
type Price struct {
	DistanceKm      float64
	SurgeMultiplier float64
	BasePrice       kernel.Money
	DistancePrice   kernel.Money
	SizeSupplement  kernel.Money
	TotalPrice      kernel.Money
	PlatformFee     kernel.Money
	CourierEarnings kernel.Money
}

// DisplayDistanceKm is the distance rounded for presentation.
func (p Price) DisplayDistanceKm() float64 {
	return kernel.RoundKm(p.DistanceKm)
}

package ports

import (
	"context"

	"courierhub/internal/core/domain/model/courier"
	"courierhub/internal/core/domain/model/kernel"
)

// CourierRepository is the courier directory.
type CourierRepository interface {
	// Save inserts or updates the courier.
	Save(ctx context.Context, c *courier.Courier) error

	Get(ctx context.Context, id kernel.UUID) (*courier.Courier, error)

	// AvailableCouriersNear returns available couriers with a known location inside box.
	// The exact radius is applied by the matcher.
	AvailableCouriersNear(ctx context.Context, box kernel.BoundingBox) ([]*courier.Courier, error)
}

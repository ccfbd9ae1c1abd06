package ports

import (
	"context"

	"courierhub/internal/core/domain/model/kernel"
	"courierhub/internal/core/domain/model/zone"
)

// ZoneRepository is the tariff source used by pricing.
type ZoneRepository interface {
	Get(ctx context.Context, id kernel.UUID) (zone.Zone, error)
	Save(ctx context.Context, z zone.Zone) error
}

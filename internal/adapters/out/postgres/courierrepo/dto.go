// Package courierrepo persists the courier directory with GORM.
package courierrepo

import (
	"errors"
	"time"

	"courierhub/internal/adapters/out/postgres/dbutil"
	"courierhub/internal/core/domain/model/courier"

	"github.com/google/uuid"
)

type CourierDTO struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name              string    `gorm:"type:varchar(255);not null"`
	Vehicle           string    `gorm:"type:varchar(16);not null"`
	LocationLat       *float64
	LocationLon       *float64
	Available         bool
	LocationUpdatedAt *time.Time
}

func (CourierDTO) TableName() string {
	return "couriers"
}

func fromDomain(c *courier.Courier) CourierDTO {
	lat, lon := dbutil.LocationColumns(c.Location())
	return CourierDTO{
		ID:                c.ID().Bytes(),
		Name:              c.Name(),
		Vehicle:           string(c.Vehicle()),
		LocationLat:       lat,
		LocationLon:       lon,
		Available:         c.IsAvailable(),
		LocationUpdatedAt: c.LocationUpdatedAt(),
	}
}

func toDomain(dto CourierDTO) (*courier.Courier, error) {
	id, idErr := dbutil.ID(dto.ID)
	loc, locErr := dbutil.OptionalLocation(dto.LocationLat, dto.LocationLon)
	if err := errors.Join(idErr, locErr); err != nil {
		return nil, err
	}
	return courier.RestoreCourier(
		id,
		dto.Name,
		courier.Vehicle(dto.Vehicle),
		loc,
		dto.Available,
		dbutil.UTC(dto.LocationUpdatedAt),
	)
}

// Package zonerepo stores pricing zones and their tariffs.
package zonerepo

import (
	"context"

	"courierhub/internal/adapters/out/postgres/dbutil"
	"courierhub/internal/core/domain/model/kernel"
	"courierhub/internal/core/domain/model/zone"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ZoneDTO struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Name             string          `gorm:"type:varchar(255);not null"`
	Active           bool            `gorm:"not null"`
	BasePrice        int64           `gorm:"not null"`
	PricePerKm       int64           `gorm:"not null"`
	SurgeMultiplier  decimal.Decimal `gorm:"type:numeric(6,3);not null"`
	MediumSupplement int64
	LargeSupplement  int64
}

func (ZoneDTO) TableName() string {
	return "zones"
}

// GormZoneRepository implements ports.ZoneRepository using GORM.
type GormZoneRepository struct {
	db *gorm.DB
}

func NewGormZoneRepository(db *gorm.DB) *GormZoneRepository {
	return &GormZoneRepository{db: db}
}

func (r *GormZoneRepository) Get(ctx context.Context, id kernel.UUID) (zone.Zone, error) {
	if err := id.Validate(); err != nil {
		return zone.Zone{}, err
	}

	var dto ZoneDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		return zone.Zone{}, dbutil.NotFound(err, "zone", id)
	}

	zoneID, err := dbutil.ID(dto.ID)
	if err != nil {
		return zone.Zone{}, err
	}
	return zone.NewZone(zoneID, dto.Name, dto.Active, zone.Tariff{
		BasePrice:        kernel.Money(dto.BasePrice),
		PricePerKm:       kernel.Money(dto.PricePerKm),
		SurgeMultiplier:  dto.SurgeMultiplier,
		MediumSupplement: kernel.Money(dto.MediumSupplement),
		LargeSupplement:  kernel.Money(dto.LargeSupplement),
	})
}

// Save upserts the zone. Orders already priced keep their frozen breakdown.
func (r *GormZoneRepository) Save(ctx context.Context, z zone.Zone) error {
	dto := ZoneDTO{
		ID:               z.ID.Bytes(),
		Name:             z.Name,
		Active:           z.Active,
		BasePrice:        z.Tariff.BasePrice.Int64(),
		PricePerKm:       z.Tariff.PricePerKm.Int64(),
		SurgeMultiplier:  z.Tariff.SurgeMultiplier,
		MediumSupplement: z.Tariff.MediumSupplement.Int64(),
		LargeSupplement:  z.Tariff.LargeSupplement.Int64(),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(&dto).Error
}

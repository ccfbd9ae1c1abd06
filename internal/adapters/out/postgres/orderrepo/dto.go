// Package orderrepo persists order aggregates and their status history with GORM.
package orderrepo

import (
	"errors"
	"time"

	"courierhub/internal/adapters/out/postgres/dbutil"
	"courierhub/internal/core/domain/model/kernel"
	"courierhub/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// OrderDTO is a row of the orders table.
type OrderDTO struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ClientID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	CourierID *uuid.UUID `gorm:"type:uuid;index"`
	ZoneID    uuid.UUID  `gorm:"type:uuid;not null"`
	Status    string     `gorm:"type:varchar(16);not null;index"`

	Pickup  StopDTO    `gorm:"embedded;embeddedPrefix:pickup_"`
	Dropoff StopDTO    `gorm:"embedded;embeddedPrefix:dropoff_"`
	Package PackageDTO `gorm:"embedded;embeddedPrefix:package_"`
	Price   PriceDTO   `gorm:"embedded"`

	CancellationReason string
	CreatedAt          time.Time
	AssignedAt         *time.Time
	PickedUpAt         *time.Time
	DeliveredAt        *time.Time
	CancelledAt        *time.Time
	Version            int
}

func (OrderDTO) TableName() string {
	return "orders"
}

type StopDTO struct {
	Lat          float64
	Lon          float64
	Address      string
	ContactName  string
	ContactPhone string
}

type PackageDTO struct {
	Description string
	Size        string
	WeightKg    float64
}

type PriceDTO struct {
	DistanceKm      float64
	SurgeMultiplier float64
	BasePrice       int64
	DistancePrice   int64
	SizeSupplement  int64
	TotalPrice      int64
	PlatformFee     int64
	CourierEarnings int64
}

// HistoryDTO is a row of order_status_histories. Seq orders entries written within the
// same timestamp.
type HistoryDTO struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID    uuid.UUID `gorm:"type:uuid;not null;index"`
	FromStatus string
	ToStatus   string
	ActorID    uuid.UUID `gorm:"type:uuid"`
	ActorRole  string
	GeoLat     *float64
	GeoLon     *float64
	OccurredAt time.Time
	Seq        int64 `gorm:"autoIncrement;<-:false"`
}

func (HistoryDTO) TableName() string {
	return "order_status_histories"
}

func fromDomain(o *order.Order) OrderDTO {
	s := o.Snapshot()
	return OrderDTO{
		ID:        s.ID.Bytes(),
		ClientID:  s.ClientID.Bytes(),
		CourierID: dbutil.RawOptionalID(s.CourierID),
		ZoneID:    s.ZoneID.Bytes(),
		Status:    string(s.Status),
		Pickup:    fromStop(s.Pickup),
		Dropoff:   fromStop(s.Dropoff),
		Package: PackageDTO{
			Description: s.Package.Description,
			Size:        string(s.Package.Size),
			WeightKg:    s.Package.WeightKg,
		},
		Price: PriceDTO{
			DistanceKm:      s.Price.DistanceKm,
			SurgeMultiplier: s.Price.SurgeMultiplier,
			BasePrice:       s.Price.BasePrice.Int64(),
			DistancePrice:   s.Price.DistancePrice.Int64(),
			SizeSupplement:  s.Price.SizeSupplement.Int64(),
			TotalPrice:      s.Price.TotalPrice.Int64(),
			PlatformFee:     s.Price.PlatformFee.Int64(),
			CourierEarnings: s.Price.CourierEarnings.Int64(),
		},
		CancellationReason: s.CancellationReason,
		CreatedAt:          s.CreatedAt,
		AssignedAt:         s.AssignedAt,
		PickedUpAt:         s.PickedUpAt,
		DeliveredAt:        s.DeliveredAt,
		CancelledAt:        s.CancelledAt,
		Version:            s.Version,
	}
}

func fromStop(s order.Stop) StopDTO {
	return StopDTO{
		Lat:          s.Location.Lat(),
		Lon:          s.Location.Lon(),
		Address:      s.Address,
		ContactName:  s.ContactName,
		ContactPhone: s.ContactPhone,
	}
}

func toDomain(dto OrderDTO) (*order.Order, error) {
	id, idErr := dbutil.ID(dto.ID)
	clientID, clientErr := dbutil.ID(dto.ClientID)
	zoneID, zoneErr := dbutil.ID(dto.ZoneID)
	courierID, courierErr := dbutil.OptionalID(dto.CourierID)
	pickup, pickupErr := toStop(dto.Pickup)
	dropoff, dropoffErr := toStop(dto.Dropoff)
	if err := errors.Join(idErr, clientErr, zoneErr, courierErr, pickupErr, dropoffErr); err != nil {
		return nil, err
	}

	return order.RestoreOrder(order.Snapshot{
		ID:        id,
		ClientID:  clientID,
		CourierID: courierID,
		ZoneID:    zoneID,
		Pickup:    pickup,
		Dropoff:   dropoff,
		Package: order.Package{
			Description: dto.Package.Description,
			Size:        order.Size(dto.Package.Size),
			WeightKg:    dto.Package.WeightKg,
		},
		Price: order.Price{
			DistanceKm:      dto.Price.DistanceKm,
			SurgeMultiplier: dto.Price.SurgeMultiplier,
			BasePrice:       kernel.Money(dto.Price.BasePrice),
			DistancePrice:   kernel.Money(dto.Price.DistancePrice),
			SizeSupplement:  kernel.Money(dto.Price.SizeSupplement),
			TotalPrice:      kernel.Money(dto.Price.TotalPrice),
			PlatformFee:     kernel.Money(dto.Price.PlatformFee),
			CourierEarnings: kernel.Money(dto.Price.CourierEarnings),
		},
		Status:             order.Status(dto.Status),
		CancellationReason: dto.CancellationReason,
		CreatedAt:          dto.CreatedAt.UTC(),
		AssignedAt:         dbutil.UTC(dto.AssignedAt),
		PickedUpAt:         dbutil.UTC(dto.PickedUpAt),
		DeliveredAt:        dbutil.UTC(dto.DeliveredAt),
		CancelledAt:        dbutil.UTC(dto.CancelledAt),
		Version:            dto.Version,
	})
}

func toStop(dto StopDTO) (order.Stop, error) {
	loc, err := kernel.NewLocation(dto.Lat, dto.Lon)
	if err != nil {
		return order.Stop{}, err
	}
	return order.Stop{
		Location:     loc,
		Address:      dto.Address,
		ContactName:  dto.ContactName,
		ContactPhone: dto.ContactPhone,
	}, nil
}

func historyFromDomain(e order.HistoryEntry) HistoryDTO {
	lat, lon := dbutil.LocationColumns(e.GeoStamp)
	return HistoryDTO{
		ID:         e.ID.Bytes(),
		OrderID:    e.OrderID.Bytes(),
		FromStatus: string(e.From),
		ToStatus:   string(e.To),
		ActorID:    e.Actor.ID.Bytes(),
		ActorRole:  string(e.Actor.Role),
		GeoLat:     lat,
		GeoLon:     lon,
		OccurredAt: e.OccurredAt,
	}
}

func historyToDomain(dto HistoryDTO) (order.HistoryEntry, error) {
	id, idErr := dbutil.ID(dto.ID)
	orderID, orderErr := dbutil.ID(dto.OrderID)
	actorID, actorErr := dbutil.ID(dto.ActorID)
	geo, geoErr := dbutil.OptionalLocation(dto.GeoLat, dto.GeoLon)
	if err := errors.Join(idErr, orderErr, actorErr, geoErr); err != nil {
		return order.HistoryEntry{}, err
	}
	return order.HistoryEntry{
		ID:         id,
		OrderID:    orderID,
		From:       order.Status(dto.FromStatus),
		To:         order.Status(dto.ToStatus),
		Actor:      kernel.Actor{ID: actorID, Role: kernel.Role(dto.ActorRole)},
		GeoStamp:   geo,
		OccurredAt: dto.OccurredAt.UTC(),
	}, nil
}

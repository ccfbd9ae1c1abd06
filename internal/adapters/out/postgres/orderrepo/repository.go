package orderrepo

import (
	"context"
	"time"

	"courierhub/internal/adapters/out/postgres/dbutil"
	"courierhub/internal/core/domain/model/kernel"
	"courierhub/internal/core/domain/model/order"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository implements ports.OrderRepository using GORM.
type GormOrderRepository struct {
	db      *gorm.DB
	tracker dbutil.Tracker
}

func NewGormOrderRepository(db *gorm.DB, tracker dbutil.Tracker) *GormOrderRepository {
	return &GormOrderRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new order to the database.
func (r *GormOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.Track(aggregate)
	return nil
}

// Update writes every column, so nullable fields cleared by the aggregate are cleared
// in the row too.
func (r *GormOrderRepository) Update(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).Model(&OrderDTO{}).Where("id = ?", dto.ID).Select("*").Updates(&dto)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return dbutil.NotFound(gorm.ErrRecordNotFound, "order", aggregate.ID())
	}

	r.tracker.Track(aggregate)
	return nil
}

func (r *GormOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	return r.get(r.db.WithContext(ctx), id)
}

// GetForUpdate takes a FOR UPDATE row lock held until the transaction ends.
func (r *GormOrderRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	return r.get(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}), id)
}

func (r *GormOrderRepository) get(db *gorm.DB, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto OrderDTO
	if err := db.First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		return nil, dbutil.NotFound(err, "order", id)
	}
	return toDomain(dto)
}

func (r *GormOrderRepository) AddHistory(ctx context.Context, entry order.HistoryEntry) error {
	dto := historyFromDomain(entry)
	return r.db.WithContext(ctx).Create(&dto).Error
}

func (r *GormOrderRepository) History(ctx context.Context, id kernel.UUID) ([]order.HistoryEntry, error) {
	var dtos []HistoryDTO
	err := r.db.WithContext(ctx).
		Where("order_id = ?", id.Bytes()).
		Order("occurred_at ASC").
		Order("seq ASC").
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	entries := make([]order.HistoryEntry, 0, len(dtos))
	for _, dto := range dtos {
		entry, err := historyToDomain(dto)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (r *GormOrderRepository) StalePendingIDs(ctx context.Context, cutoff time.Time, limit int) ([]kernel.UUID, error) {
	var dtos []OrderDTO
	err := r.db.WithContext(ctx).
		Select("id").
		Where("status = ? AND created_at < ?", order.Pending, cutoff).
		Order("created_at ASC").
		Order("id ASC").
		Limit(limit).
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	ids := make([]kernel.UUID, 0, len(dtos))
	for _, dto := range dtos {
		id, err := dbutil.ID(dto.ID)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (r *GormOrderRepository) PendingInBox(ctx context.Context, box kernel.BoundingBox) ([]*order.Order, error) {
	var dtos []OrderDTO
	err := r.db.WithContext(ctx).
		Where("status = ?", order.Pending).
		Where("pickup_lat BETWEEN ? AND ?", box.MinLat, box.MaxLat).
		Where("pickup_lon BETWEEN ? AND ?", box.MinLon, box.MaxLon).
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	orders := make([]*order.Order, 0, len(dtos))
	for _, dto := range dtos {
		o, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

package withdrawalrepo

import (
	"context"

	"courierhub/internal/adapters/out/postgres/dbutil"
	"courierhub/internal/core/domain/model/kernel"
	"courierhub/internal/core/domain/model/withdrawal"
	"courierhub/internal/core/ports"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormWithdrawalRepository implements ports.WithdrawalRepository using GORM.
type GormWithdrawalRepository struct {
	db      *gorm.DB
	tracker dbutil.Tracker
}

func NewGormWithdrawalRepository(db *gorm.DB, tracker dbutil.Tracker) *GormWithdrawalRepository {
	return &GormWithdrawalRepository{
		db:      db,
		tracker: tracker,
	}
}

func (r *GormWithdrawalRepository) Add(ctx context.Context, w *withdrawal.Withdrawal) error {
	if err := w.Validate(); err != nil {
		return err
	}

	dto := fromDomain(w)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.Track(w)
	return nil
}

func (r *GormWithdrawalRepository) Update(ctx context.Context, w *withdrawal.Withdrawal) error {
	if err := w.Validate(); err != nil {
		return err
	}

	dto := fromDomain(w)
	result := r.db.WithContext(ctx).Model(&WithdrawalDTO{}).Where("id = ?", dto.ID).Select("*").Updates(&dto)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return dbutil.NotFound(gorm.ErrRecordNotFound, "withdrawal", w.ID())
	}

	r.tracker.Track(w)
	return nil
}

func (r *GormWithdrawalRepository) Get(ctx context.Context, id kernel.UUID) (*withdrawal.Withdrawal, error) {
	return r.get(r.db.WithContext(ctx), id)
}

func (r *GormWithdrawalRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*withdrawal.Withdrawal, error) {
	return r.get(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}), id)
}

func (r *GormWithdrawalRepository) get(db *gorm.DB, id kernel.UUID) (*withdrawal.Withdrawal, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto WithdrawalDTO
	if err := db.First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		return nil, dbutil.NotFound(err, "withdrawal", id)
	}
	return toDomain(dto)
}

func (r *GormWithdrawalRepository) ListByCourier(ctx context.Context, courierID kernel.UUID, page ports.Page) ([]*withdrawal.Withdrawal, error) {
	return r.list(r.db.WithContext(ctx).Where("courier_id = ?", courierID.Bytes()), page)
}

func (r *GormWithdrawalRepository) List(ctx context.Context, status *withdrawal.Status, page ports.Page) ([]*withdrawal.Withdrawal, error) {
	db := r.db.WithContext(ctx)
	if status != nil {
		db = db.Where("status = ?", string(*status))
	}
	return r.list(db, page)
}

func (r *GormWithdrawalRepository) list(db *gorm.DB, page ports.Page) ([]*withdrawal.Withdrawal, error) {
	page = page.Normalize()

	var dtos []WithdrawalDTO
	err := db.Order("requested_at DESC").Order("id").Limit(page.Limit).Offset(page.Offset).Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	result := make([]*withdrawal.Withdrawal, 0, len(dtos))
	for _, dto := range dtos {
		w, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		result = append(result, w)
	}
	return result, nil
}

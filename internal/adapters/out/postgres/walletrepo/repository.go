package walletrepo

import (
	"context"
	"time"

	"courierhub/internal/adapters/out/postgres/dbutil"
	"courierhub/internal/core/domain/model/kernel"
	"courierhub/internal/core/domain/model/wallet"
	"courierhub/internal/core/ports"
	"courierhub/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const creditOrderConstraint = "ux_wallet_credits_order_id"

// GormWalletRepository implements ports.WalletRepository using GORM.
type GormWalletRepository struct {
	db *gorm.DB
}

func NewGormWalletRepository(db *gorm.DB) *GormWalletRepository {
	return &GormWalletRepository{db: db}
}

// GetForUpdate inserts an empty wallet if none exists and then locks the row, so two
// first credits for the same courier serialize on the same row.
func (r *GormWalletRepository) GetForUpdate(ctx context.Context, courierID kernel.UUID, now time.Time) (*wallet.Wallet, error) {
	empty, err := wallet.NewWallet(courierID, now)
	if err != nil {
		return nil, err
	}

	db := r.db.WithContext(ctx)
	dto := fromDomain(empty)
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&dto).Error; err != nil {
		return nil, err
	}

	var locked WalletDTO
	err = db.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		First(&locked, "courier_id = ?", courierID.Bytes()).Error
	if err != nil {
		return nil, dbutil.NotFound(err, "wallet", courierID)
	}
	return toDomain(locked)
}

func (r *GormWalletRepository) Get(ctx context.Context, courierID kernel.UUID) (*wallet.Wallet, error) {
	var dto WalletDTO
	if err := r.db.WithContext(ctx).First(&dto, "courier_id = ?", courierID.Bytes()).Error; err != nil {
		return nil, dbutil.NotFound(err, "wallet", courierID)
	}
	return toDomain(dto)
}

func (r *GormWalletRepository) Update(ctx context.Context, w *wallet.Wallet) error {
	if err := w.Validate(); err != nil {
		return err
	}

	dto := fromDomain(w)
	result := r.db.WithContext(ctx).Model(&WalletDTO{}).
		Where("courier_id = ?", dto.CourierID).
		Select("balance", "pending_balance", "total_earned", "total_withdrawn", "updated_at").
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return dbutil.NotFound(gorm.ErrRecordNotFound, "wallet", w.CourierID())
	}
	return nil
}

func (r *GormWalletRepository) HasCredit(ctx context.Context, orderID kernel.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&CreditDTO{}).Where("order_id = ?", orderID.Bytes()).Count(&count).Error
	return count > 0, err
}

// AddCredit relies on the unique order constraint as the last line against double credit.
func (r *GormWalletRepository) AddCredit(ctx context.Context, entry wallet.CreditEntry) error {
	dto := creditFromDomain(entry)
	err := r.db.WithContext(ctx).Create(&dto).Error
	if dbutil.IsUniqueViolation(err, creditOrderConstraint) {
		return errs.NewConflictError("order " + entry.OrderID.String() + " already credited")
	}
	return err
}

func (r *GormWalletRepository) Credits(ctx context.Context, courierID kernel.UUID, page ports.Page) ([]wallet.CreditEntry, error) {
	page = page.Normalize()

	var dtos []CreditDTO
	err := r.db.WithContext(ctx).
		Where("courier_id = ?", courierID.Bytes()).
		Order("created_at DESC").
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	entries := make([]wallet.CreditEntry, 0, len(dtos))
	for _, dto := range dtos {
		e, err := creditToDomain(dto)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

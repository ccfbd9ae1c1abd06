// Package walletrepo persists courier wallets and the credit ledger.
package walletrepo

import (
	"errors"
	"time"

	"courierhub/internal/adapters/out/postgres/dbutil"
	"courierhub/internal/core/domain/model/kernel"
	"courierhub/internal/core/domain/model/wallet"

	"github.com/google/uuid"
)

type WalletDTO struct {
	CourierID      uuid.UUID `gorm:"type:uuid;primaryKey"`
	Balance        int64
	PendingBalance int64
	TotalEarned    int64
	TotalWithdrawn int64
	CreatedAt      time.Time
	UpdatedAt      time.Time `gorm:"autoUpdateTime:false"`
}

func (WalletDTO) TableName() string {
	return "wallets"
}

type CreditDTO struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CourierID uuid.UUID `gorm:"type:uuid;not null"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null"`
	Amount    int64
	CreatedAt time.Time
}

func (CreditDTO) TableName() string {
	return "wallet_credits"
}

func fromDomain(w *wallet.Wallet) WalletDTO {
	s := w.Snapshot()
	return WalletDTO{
		CourierID:      s.CourierID.Bytes(),
		Balance:        s.Balance.Int64(),
		PendingBalance: s.PendingBalance.Int64(),
		TotalEarned:    s.TotalEarned.Int64(),
		TotalWithdrawn: s.TotalWithdrawn.Int64(),
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

func toDomain(dto WalletDTO) (*wallet.Wallet, error) {
	courierID, err := dbutil.ID(dto.CourierID)
	if err != nil {
		return nil, err
	}
	return wallet.RestoreWallet(wallet.Snapshot{
		CourierID:      courierID,
		Balance:        kernel.Money(dto.Balance),
		PendingBalance: kernel.Money(dto.PendingBalance),
		TotalEarned:    kernel.Money(dto.TotalEarned),
		TotalWithdrawn: kernel.Money(dto.TotalWithdrawn),
		CreatedAt:      dto.CreatedAt.UTC(),
		UpdatedAt:      dto.UpdatedAt.UTC(),
	})
}

func creditFromDomain(e wallet.CreditEntry) CreditDTO {
	return CreditDTO{
		ID:        e.ID.Bytes(),
		CourierID: e.CourierID.Bytes(),
		OrderID:   e.OrderID.Bytes(),
		Amount:    e.Amount.Int64(),
		CreatedAt: e.CreatedAt,
	}
}

func creditToDomain(dto CreditDTO) (wallet.CreditEntry, error) {
	id, idErr := dbutil.ID(dto.ID)
	courierID, courierErr := dbutil.ID(dto.CourierID)
	orderID, orderErr := dbutil.ID(dto.OrderID)
	if err := errors.Join(idErr, courierErr, orderErr); err != nil {
		return wallet.CreditEntry{}, err
	}
	return wallet.CreditEntry{
		ID:        id,
		CourierID: courierID,
		OrderID:   orderID,
		Amount:    kernel.Money(dto.Amount),
		CreatedAt: dto.CreatedAt.UTC(),
	}, nil
}

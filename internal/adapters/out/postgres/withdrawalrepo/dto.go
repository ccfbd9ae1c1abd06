// Package withdrawalrepo persists payout requests.
package withdrawalrepo

import (
	"errors"
	"time"

	"courierhub/internal/adapters/out/postgres/dbutil"
	"courierhub/internal/core/domain/model/kernel"
	"courierhub/internal/core/domain/model/withdrawal"

	"github.com/google/uuid"
)

type WithdrawalDTO struct {
	ID                   uuid.UUID `gorm:"type:uuid;primaryKey"`
	CourierID            uuid.UUID `gorm:"type:uuid;not null;index"`
	Amount               int64
	Method               string
	Destination          string
	Status               string
	ApproverID           *uuid.UUID `gorm:"type:uuid"`
	RejectionReason      string
	TransactionReference string
	RequestedAt          time.Time
	ApprovedAt           *time.Time
	RejectedAt           *time.Time
	CompletedAt          *time.Time
}

func (WithdrawalDTO) TableName() string {
	return "withdrawals"
}

func fromDomain(w *withdrawal.Withdrawal) WithdrawalDTO {
	s := w.Snapshot()
	return WithdrawalDTO{
		ID:                   s.ID.Bytes(),
		CourierID:            s.CourierID.Bytes(),
		Amount:               s.Amount.Int64(),
		Method:               string(s.Method),
		Destination:          s.Destination,
		Status:               string(s.Status),
		ApproverID:           dbutil.RawOptionalID(s.ApproverID),
		RejectionReason:      s.RejectionReason,
		TransactionReference: s.TransactionReference,
		RequestedAt:          s.RequestedAt,
		ApprovedAt:           s.ApprovedAt,
		RejectedAt:           s.RejectedAt,
		CompletedAt:          s.CompletedAt,
	}
}

func toDomain(dto WithdrawalDTO) (*withdrawal.Withdrawal, error) {
	id, idErr := dbutil.ID(dto.ID)
	courierID, courierErr := dbutil.ID(dto.CourierID)
	approverID, approverErr := dbutil.OptionalID(dto.ApproverID)
	if err := errors.Join(idErr, courierErr, approverErr); err != nil {
		return nil, err
	}
	return withdrawal.RestoreWithdrawal(withdrawal.Snapshot{
		ID:                   id,
		CourierID:            courierID,
		Amount:               kernel.Money(dto.Amount),
		Method:               withdrawal.Method(dto.Method),
		Destination:          dto.Destination,
		Status:               withdrawal.Status(dto.Status),
		ApproverID:           approverID,
		RejectionReason:      dto.RejectionReason,
		TransactionReference: dto.TransactionReference,
		RequestedAt:          dto.RequestedAt.UTC(),
		ApprovedAt:           dbutil.UTC(dto.ApprovedAt),
		RejectedAt:           dbutil.UTC(dto.RejectedAt),
		CompletedAt:          dbutil.UTC(dto.CompletedAt),
	})
}

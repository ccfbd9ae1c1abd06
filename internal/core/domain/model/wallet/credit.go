package wallet

import (
	"time"

	"courierhub/internal/core/domain/model/kernel"
)

// CreditEntry is the ledger row proving that an order has been paid out to a wallet.
// There is at most one entry per order.
type CreditEntry struct {
	ID        kernel.UUID
	CourierID kernel.UUID
	OrderID   kernel.UUID
	Amount    kernel.Money
	CreatedAt time.Time
}

func NewCreditEntry(courierID, orderID kernel.UUID, amount kernel.Money, now time.Time) CreditEntry {
	return CreditEntry{
		ID:        kernel.NewUUID(),
		CourierID: courierID,
		OrderID:   orderID,
		Amount:    amount,
		CreatedAt: now.UTC(),
	}
}

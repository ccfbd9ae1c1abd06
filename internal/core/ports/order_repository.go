// Package ports defines the contracts between the core and its adapters.
// Repositories returned by a UnitOfWork run inside its transaction.
package ports

import (
	"context"
	"time"

	"courierhub/internal/core/domain/model/kernel"
	"courierhub/internal/core/domain/model/order"
)

// OrderRepository persists order aggregates and their status history.
type OrderRepository interface {
	Add(ctx context.Context, aggregate *order.Order) error

	// Update writes the aggregate back. Callers must hold the row lock taken by GetForUpdate.
	Update(ctx context.Context, aggregate *order.Order) error

	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetForUpdate loads the order and locks its row until the transaction ends.
	// Concurrent accepts and transitions on the same order are serialized here.
	GetForUpdate(ctx context.Context, id kernel.UUID) (*order.Order, error)

	AddHistory(ctx context.Context, entry order.HistoryEntry) error

	// History returns the entries of an order in chronological order.
	History(ctx context.Context, id kernel.UUID) ([]order.HistoryEntry, error)

	// StalePendingIDs lists orders still pending that were created before cutoff, oldest first.
	StalePendingIDs(ctx context.Context, cutoff time.Time, limit int) ([]kernel.UUID, error)

	// PendingInBox returns pending orders whose pickup lies inside box.
	PendingInBox(ctx context.Context, box kernel.BoundingBox) ([]*order.Order, error)
}

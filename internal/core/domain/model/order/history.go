package order

import (
	"fmt"
	"time"

	"courierhub/internal/core/domain/model/kernel"
	"courierhub/internal/pkg/errs"
)

// HistoryEntry is the write-once audit record of a single status change.
type HistoryEntry struct {
	ID         kernel.UUID
	OrderID    kernel.UUID
	From       Status // empty for the creation entry
	To         Status
	Actor      kernel.Actor
	GeoStamp   *kernel.Location
	OccurredAt time.Time
}

// NewHistoryEntry records change performed by actor. Entries whose pair is not part of the
// transition table are refused, so the log can only contain legal moves.
func NewHistoryEntry(orderID kernel.UUID, change StatusChange, actor kernel.Actor, geo *kernel.Location) (HistoryEntry, error) {
	if err := orderID.Validate(); err != nil {
		return HistoryEntry{}, err
	}
	if change.From == "" {
		if change.To != Pending {
			return HistoryEntry{}, errs.NewStateError("order", "", string(change.To))
		}
	} else if !CanTransition(change.From, change.To) {
		return HistoryEntry{}, errs.NewStateError("order", string(change.From), string(change.To))
	}
	if geo != nil {
		if err := geo.Validate(); err != nil {
			return HistoryEntry{}, fmt.Errorf("geo stamp: %w", err)
		}
	}

	return HistoryEntry{
		ID:         kernel.NewUUID(),
		OrderID:    orderID,
		From:       change.From,
		To:         change.To,
		Actor:      actor,
		GeoStamp:   geo,
		OccurredAt: change.At,
	}, nil
}

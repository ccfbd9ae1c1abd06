package ports

import (
	"context"

	"courierhub/internal/core/domain/model/kernel"
)

// EventPublisher delivers domain events to notification consumers. Delivery is
// fire-and-forget: implementations log failures and never return them.
type EventPublisher interface {
	Publish(ctx context.Context, events ...kernel.DomainEvent)
}

// DistributedLock guards jobs that must run on a single replica at a time.
type DistributedLock interface {
	// TryAcquire reports whether the lock was taken. Release must be called when held.
	TryAcquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

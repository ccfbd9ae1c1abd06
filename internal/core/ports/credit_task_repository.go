package ports

import (
	"context"
	"time"

	"courierhub/internal/core/domain/model/credittask"
	"courierhub/internal/core/domain/model/kernel"
)

type CreditTaskRepository interface {
	// Enqueue stores the task unless a task with the same idempotency key exists.
	// It reports whether a new task was stored.
	Enqueue(ctx context.Context, task *credittask.Task) (bool, error)

	// ClaimDue leases up to limit due tasks, skipping rows locked by other workers.
	ClaimDue(ctx context.Context, now time.Time, lease time.Duration, limit int) ([]*credittask.Task, error)

	Get(ctx context.Context, id kernel.UUID) (*credittask.Task, error)
	GetForUpdate(ctx context.Context, id kernel.UUID) (*credittask.Task, error)
	Update(ctx context.Context, task *credittask.Task) error

	// UpdateLeased stores the outcome of a task claimed until leasedUntil. When the lease
	// has since been taken over by another worker nothing is written and false is returned.
	UpdateLeased(ctx context.Context, task *credittask.Task, leasedUntil time.Time) (bool, error)
	ListFailed(ctx context.Context, page Page) ([]*credittask.Task, error)
}

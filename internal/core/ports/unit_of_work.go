package ports

import (
	"context"
)

// UnitOfWorkFactory creates new UnitOfWork instances for each request/command.
// This ensures proper isolation between concurrent operations.
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UnitOfWork is a business transaction boundary. Aggregates written through its
// repositories are tracked, and their domain events are published once Commit succeeds.
type UnitOfWork interface {
	Begin(ctx context.Context) error

	// Commit commits the transaction and then publishes the tracked domain events.
	Commit(ctx context.Context) error

	// Rollback discards the transaction and the tracked events. It is a no-op after Commit.
	Rollback(ctx context.Context) error

	OrderRepository() OrderRepository
	CourierRepository() CourierRepository
	ZoneRepository() ZoneRepository
	WalletRepository() WalletRepository
	WithdrawalRepository() WithdrawalRepository
	CreditTaskRepository() CreditTaskRepository
}

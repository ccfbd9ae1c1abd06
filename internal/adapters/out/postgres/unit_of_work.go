// Package postgres provides the GORM-based implementation of the Unit of Work pattern.
// A unit of work wraps one database transaction and hands out repositories bound to it.
// Aggregates written through those repositories are tracked, and their domain events
// are published only once the transaction has committed.
//
// Usage:
//
//	factory := NewGormUnitOfWorkFactory(db, publisher)
//	uow := factory.Create()
//
//	if err := uow.Begin(ctx); err != nil {
//	    return err
//	}
//	defer uow.Rollback(ctx)
//
//	o, err := uow.OrderRepository().GetForUpdate(ctx, id)
//	if err != nil {
//	    return err
//	}
//	// mutate o ...
//	if err := uow.OrderRepository().Update(ctx, o); err != nil {
//	    return err
//	}
//
//	return uow.Commit(ctx)
//
// Concurrency:
//   - Each UnitOfWork instance owns one transaction and must not be shared between goroutines
//   - GetForUpdate takes row locks that are held until Commit or Rollback
//   - Credit tasks are claimed with SKIP LOCKED so several workers never take the same row
package postgres

import (
	"context"

	"courierhub/internal/adapters/out/postgres/courierrepo"
	"courierhub/internal/adapters/out/postgres/credittaskrepo"
	"courierhub/internal/adapters/out/postgres/dbutil"
	"courierhub/internal/adapters/out/postgres/orderrepo"
	"courierhub/internal/adapters/out/postgres/walletrepo"
	"courierhub/internal/adapters/out/postgres/withdrawalrepo"
	"courierhub/internal/adapters/out/postgres/zonerepo"
	"courierhub/internal/core/domain/model/kernel"
	"courierhub/internal/core/ports"

	"gorm.io/gorm"
)

// GormUnitOfWorkFactory creates UnitOfWork instances sharing one connection pool and
// one event publisher.
type GormUnitOfWorkFactory struct {
	db        *gorm.DB
	publisher ports.EventPublisher
}

// NewGormUnitOfWorkFactory creates a factory for GORM-based unit of work instances.
// publisher may be nil, in which case committed events are dropped.
//
// Example:
//
//	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
//	if err != nil {
//	    log.Fatal("failed to connect database")
//	}
//	factory := NewGormUnitOfWorkFactory(db, redisPublisher)
func NewGormUnitOfWorkFactory(db *gorm.DB, publisher ports.EventPublisher) *GormUnitOfWorkFactory {
	return &GormUnitOfWorkFactory{db: db, publisher: publisher}
}

// Create produces a new UnitOfWork with its own transaction state and tracked aggregates.
func (f *GormUnitOfWorkFactory) Create() ports.UnitOfWork {
	return &GormUnitOfWork{
		db:        f.db,
		publisher: f.publisher,
	}
}

// GormUnitOfWork coordinates one database transaction and the aggregates written in it.
type GormUnitOfWork struct {
	db        *gorm.DB
	tx        *gorm.DB
	publisher ports.EventPublisher
	tracked   []dbutil.EventSource
}

// Begin opens the transaction. Calling it again on an open unit of work is a no-op.
func (uow *GormUnitOfWork) Begin(ctx context.Context) error {
	if uow.tx != nil {
		return nil
	}

	tx := uow.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}

	uow.tx = tx
	return nil
}

// Commit finalizes the transaction and then publishes the events of every tracked
// aggregate. A failed commit drops the events.
//
// Returns gorm.ErrInvalidTransaction if no transaction is open.
func (uow *GormUnitOfWork) Commit(ctx context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Commit().Error
	uow.tx = nil
	tracked := uow.tracked
	uow.tracked = nil
	if err != nil {
		return err
	}

	uow.publish(ctx, drainEvents(tracked))
	return nil
}

// Rollback discards the transaction and its tracked aggregates. After Commit, or when
// Begin was never called, it does nothing.
func (uow *GormUnitOfWork) Rollback(_ context.Context) error {
	if uow.tx == nil {
		return nil
	}

	err := uow.tx.Rollback().Error
	uow.tx = nil
	uow.tracked = nil
	return err
}

// Track registers an aggregate written in this unit of work. Outside a transaction the
// write is already durable, so its events are published at once.
func (uow *GormUnitOfWork) Track(aggregate dbutil.EventSource) {
	if uow.tx != nil {
		uow.tracked = append(uow.tracked, aggregate)
		return
	}
	uow.publish(context.Background(), drainEvents([]dbutil.EventSource{aggregate}))
}

// OrderRepository returns the order repository bound to the current transaction,
// or to the connection pool when no transaction is open. The same applies to every
// repository getter below.
func (uow *GormUnitOfWork) OrderRepository() ports.OrderRepository {
	return orderrepo.NewGormOrderRepository(uow.conn(), uow)
}

func (uow *GormUnitOfWork) CourierRepository() ports.CourierRepository {
	return courierrepo.NewGormCourierRepository(uow.conn())
}

func (uow *GormUnitOfWork) ZoneRepository() ports.ZoneRepository {
	return zonerepo.NewGormZoneRepository(uow.conn())
}

func (uow *GormUnitOfWork) WalletRepository() ports.WalletRepository {
	return walletrepo.NewGormWalletRepository(uow.conn())
}

func (uow *GormUnitOfWork) WithdrawalRepository() ports.WithdrawalRepository {
	return withdrawalrepo.NewGormWithdrawalRepository(uow.conn(), uow)
}

func (uow *GormUnitOfWork) CreditTaskRepository() ports.CreditTaskRepository {
	return credittaskrepo.NewGormCreditTaskRepository(uow.conn(), uow)
}

func (uow *GormUnitOfWork) conn() *gorm.DB {
	if uow.tx != nil {
		return uow.tx
	}
	return uow.db
}

func (uow *GormUnitOfWork) publish(ctx context.Context, events []kernel.DomainEvent) {
	if uow.publisher == nil || len(events) == 0 {
		return
	}
	uow.publisher.Publish(ctx, events...)
}

func drainEvents(aggregates []dbutil.EventSource) []kernel.DomainEvent {
	events := make([]kernel.DomainEvent, 0)
	for _, agg := range aggregates {
		events = append(events, agg.DomainEvents()...)
		agg.ClearDomainEvents()
	}
	return events
}

package portstest

import (
	"context"
	"errors"

	"courierhub/internal/core/domain/model/kernel"
	"courierhub/internal/core/ports"
)

var ErrNoTransaction = errors.New("portstest: no active transaction")

type eventSource interface {
	DomainEvents() []kernel.DomainEvent
	ClearDomainEvents()
}

type factory struct {
	store *Store
}

func (f factory) Create() ports.UnitOfWork {
	return &UnitOfWork{store: f.store}
}

// UnitOfWork is the in-memory ports.UnitOfWork.
type UnitOfWork struct {
	store   *Store
	tx      *state
	tracked []eventSource
}

func (u *UnitOfWork) Begin(_ context.Context) error {
	if u.tx != nil {
		return nil
	}
	u.store.txMu.Lock()
	u.store.mu.Lock()
	u.tx = u.store.committed.clone()
	u.store.mu.Unlock()
	return nil
}

func (u *UnitOfWork) Commit(ctx context.Context) error {
	if u.tx == nil {
		return ErrNoTransaction
	}
	if err := u.store.takeFailure("uow.Commit"); err != nil {
		return err
	}

	u.store.mu.Lock()
	u.store.committed = u.tx
	u.store.mu.Unlock()
	u.tx = nil
	u.store.txMu.Unlock()

	events := make([]kernel.DomainEvent, 0)
	for _, agg := range u.tracked {
		events = append(events, agg.DomainEvents()...)
		agg.ClearDomainEvents()
	}
	u.tracked = nil
	u.store.publish(ctx, events)
	return nil
}

func (u *UnitOfWork) Rollback(_ context.Context) error {
	if u.tx == nil {
		return nil
	}
	u.tx = nil
	u.tracked = nil
	u.store.txMu.Unlock()
	return nil
}

func (u *UnitOfWork) OrderRepository() ports.OrderRepository {
	return orderRepo{u: u}
}

func (u *UnitOfWork) CourierRepository() ports.CourierRepository {
	return courierRepo{u: u}
}

func (u *UnitOfWork) ZoneRepository() ports.ZoneRepository {
	return zoneRepo{u: u}
}

func (u *UnitOfWork) WalletRepository() ports.WalletRepository {
	return walletRepo{u: u}
}

func (u *UnitOfWork) WithdrawalRepository() ports.WithdrawalRepository {
	return withdrawalRepo{u: u}
}

func (u *UnitOfWork) CreditTaskRepository() ports.CreditTaskRepository {
	return creditTaskRepo{u: u}
}

// run executes fn against the transaction copy, or against the committed state when
// no transaction is open. op names the call for failure injection.
func (u *UnitOfWork) run(op string, fn func(s *state) error) error {
	if err := u.store.takeFailure(op); err != nil {
		return err
	}
	if u.tx != nil {
		return fn(u.tx)
	}
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	return fn(u.store.committed)
}

func (u *UnitOfWork) track(ctx context.Context, agg eventSource) {
	if u.tx != nil {
		u.tracked = append(u.tracked, agg)
		return
	}
	events := agg.DomainEvents()
	agg.ClearDomainEvents()
	u.store.publish(ctx, events)
}

func paginate[T any](items []T, page ports.Page) []T {
	page = page.Normalize()
	if page.Offset >= len(items) {
		return []T{}
	}
	end := min(page.Offset+page.Limit, len(items))
	return items[page.Offset:end]
}

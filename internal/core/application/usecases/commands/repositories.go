// Package commands contains the business operations that modify system state.
// Every handler validates its command, runs inside one unit of work and relies on the
// unit of work to publish the domain events raised by the aggregates it saved.
package commands

import (
	"context"

	"courierhub/internal/core/ports"
)

// inTransaction runs fn inside a unit of work created by factory. fn's error rolls the
// transaction back; otherwise it is committed.
func inTransaction(ctx context.Context, factory ports.UnitOfWorkFactory, fn func(uow ports.UnitOfWork) error) error {
	uow := factory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err := fn(uow); err != nil {
		return err
	}

	return uow.Commit(ctx)
}

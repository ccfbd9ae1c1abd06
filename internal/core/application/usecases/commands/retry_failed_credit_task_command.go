package commands

import (
	"context"
	"errors"
	"time"

	"courierhub/internal/core/domain/model/credittask"
	"courierhub/internal/core/domain/model/kernel"
	"courierhub/internal/core/ports"
	"courierhub/internal/pkg/guard"
)

var ErrRetryFailedCreditTaskCommandIsNotConstructed = errors.New(
	"RetryFailedCreditTaskCommand must be created via NewRetryFailedCreditTaskCommand constructor",
)

// RetryFailedCreditTaskCommand puts a failed credit task back in the queue after an
// operator has fixed the cause.
type RetryFailedCreditTaskCommand struct {
	taskID kernel.UUID
	guard  guard.ConstructorGuard
}

func NewRetryFailedCreditTaskCommand(taskID kernel.UUID) (RetryFailedCreditTaskCommand, error) {
	if err := taskID.Validate(); err != nil {
		return RetryFailedCreditTaskCommand{}, err
	}
	return RetryFailedCreditTaskCommand{taskID: taskID, guard: guard.NewConstructorGuard()}, nil
}

func (c RetryFailedCreditTaskCommand) Validate() error {
	return c.guard.Validate(ErrRetryFailedCreditTaskCommandIsNotConstructed)
}

func (c RetryFailedCreditTaskCommand) TaskID() kernel.UUID {
	return c.taskID
}

type RetryFailedCreditTaskCommandHandler struct {
	uowFactory ports.UnitOfWorkFactory
}

func NewRetryFailedCreditTaskCommandHandler(uowFactory ports.UnitOfWorkFactory) RetryFailedCreditTaskCommandHandler {
	return RetryFailedCreditTaskCommandHandler{uowFactory: uowFactory}
}

func (h RetryFailedCreditTaskCommandHandler) Handle(ctx context.Context, cmd RetryFailedCreditTaskCommand) (*credittask.Task, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	var requeued *credittask.Task
	err := inTransaction(ctx, h.uowFactory, func(uow ports.UnitOfWork) error {
		tasks := uow.CreditTaskRepository()
		task, err := tasks.GetForUpdate(ctx, cmd.TaskID())
		if err != nil {
			return err
		}
		if err = task.Requeue(time.Now()); err != nil {
			return err
		}
		if err = tasks.Update(ctx, task); err != nil {
			return err
		}
		requeued = task
		return nil
	})
	if err != nil {
		return nil, err
	}
	return requeued, nil
}

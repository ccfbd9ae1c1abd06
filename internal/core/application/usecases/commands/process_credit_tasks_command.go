package commands

import (
	"errors"
	"time"

	"courierhub/internal/pkg/errs"
	"courierhub/internal/pkg/guard"
)

const (
	DefaultCreditLease     = 2 * time.Minute
	DefaultCreditBatchSize = 50
)

var ErrProcessCreditTasksCommandIsNotConstructed = errors.New(
	"ProcessCreditTasksCommand must be created via NewProcessCreditTasksCommand constructor",
)

// ProcessCreditTasksCommand runs one dispatcher tick at Now: up to Limit due tasks are
// leased for Lease and executed.
type ProcessCreditTasksCommand struct {
	now   time.Time
	lease time.Duration
	limit int

	guard guard.ConstructorGuard
}

func NewProcessCreditTasksCommand(now time.Time, lease time.Duration, limit int) (ProcessCreditTasksCommand, error) {
	if now.IsZero() {
		return ProcessCreditTasksCommand{}, errs.NewValueIsRequiredError("now")
	}
	if lease <= 0 {
		lease = DefaultCreditLease
	}
	if limit <= 0 {
		limit = DefaultCreditBatchSize
	}
	return ProcessCreditTasksCommand{now: now, lease: lease, limit: limit, guard: guard.NewConstructorGuard()}, nil
}

func (c ProcessCreditTasksCommand) Validate() error {
	return c.guard.Validate(ErrProcessCreditTasksCommandIsNotConstructed)
}

func (c ProcessCreditTasksCommand) Now() time.Time {
	return c.now
}

func (c ProcessCreditTasksCommand) Lease() time.Duration {
	return c.lease
}

func (c ProcessCreditTasksCommand) Limit() int {
	return c.limit
}

package commands

import (
	"errors"
	"time"

	"courierhub/internal/pkg/errs"
	"courierhub/internal/pkg/guard"
)

const (
	DefaultStaleWindow = 24 * time.Hour
	DefaultSweepBatch  = 500

	ExpiredReason = "expired: no courier accepted within 24h"
)

var ErrExpireStaleOrdersCommandIsNotConstructed = errors.New(
	"ExpireStaleOrdersCommand must be created via NewExpireStaleOrdersCommand constructor",
)

// ExpireStaleOrdersCommand cancels orders that stayed pending for longer than Window
// as of Now.
type ExpireStaleOrdersCommand struct {
	now    time.Time
	window time.Duration
	batch  int

	guard guard.ConstructorGuard
}

func NewExpireStaleOrdersCommand(now time.Time, window time.Duration, batch int) (ExpireStaleOrdersCommand, error) {
	if now.IsZero() {
		return ExpireStaleOrdersCommand{}, errs.NewValueIsRequiredError("now")
	}
	if window <= 0 {
		window = DefaultStaleWindow
	}
	if batch <= 0 {
		batch = DefaultSweepBatch
	}

	return ExpireStaleOrdersCommand{
		now:    now,
		window: window,
		batch:  batch,
		guard:  guard.NewConstructorGuard(),
	}, nil
}

func (c ExpireStaleOrdersCommand) Validate() error {
	return c.guard.Validate(ErrExpireStaleOrdersCommandIsNotConstructed)
}

func (c ExpireStaleOrdersCommand) Now() time.Time {
	return c.now
}

func (c ExpireStaleOrdersCommand) Window() time.Duration {
	return c.window
}

func (c ExpireStaleOrdersCommand) Batch() int {
	return c.batch
}

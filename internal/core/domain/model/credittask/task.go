// Package credittask models the queued job that credits a courier for a delivered order.
// A task carries only the order id; its idempotency key is derived from it so that the
// same order can never be queued twice.
package credittask

import (
	"errors"
	"fmt"
	"time"

	"courierhub/internal/core/domain/model/kernel"
	"courierhub/internal/pkg/errs"
)

const EventDispatchFailed = "CreditDispatchFailed"

type Status string

const (
	Queued  Status = "queued"
	Running Status = "running"
	Done    Status = "done"
	Failed  Status = "failed"
)

// RetryPolicy bounds how often a failing task is tried again.
type RetryPolicy struct {
	MaxRetries int
	Backoff    time.Duration
}

// DefaultRetryPolicy retries three times, one minute apart.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: 3, Backoff: time.Minute}
}

func (p RetryPolicy) Validate() error {
	if p.MaxRetries < 0 {
		return errs.NewValueIsOutOfRangeError("max retries", p.MaxRetries, 0, "unbounded")
	}
	if p.Backoff <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("backoff", errors.New("must be positive"))
	}
	return nil
}

// IdempotencyKey is the unique key of the credit task for orderID.
func IdempotencyKey(orderID kernel.UUID) string {
	return "credit:" + orderID.String()
}

type Task struct {
	kernel.EventRecorder

	ID             kernel.UUID
	OrderID        kernel.UUID
	IdempotencyKey string
	Status         Status
	Attempts       int
	NextRunAt      time.Time
	LastError      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewTask queues a credit for orderID, due immediately.
func NewTask(orderID kernel.UUID, now time.Time) (*Task, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}
	now = now.UTC()
	return &Task{
		ID:             kernel.NewUUID(),
		OrderID:        orderID,
		IdempotencyKey: IdempotencyKey(orderID),
		Status:         Queued,
		NextRunAt:      now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// Claim leases the task to a worker until now+lease. An expired lease makes the task
// claimable again.
func (t *Task) Claim(now time.Time, lease time.Duration) error {
	if t.Status != Queued && t.Status != Running {
		return errs.NewStateError("credit task", string(t.Status), string(Running))
	}
	now = now.UTC()
	t.Status = Running
	t.NextRunAt = now.Add(lease)
	t.UpdatedAt = now
	return nil
}

func (t *Task) Succeed(now time.Time) {
	t.Status = Done
	t.LastError = ""
	t.UpdatedAt = now.UTC()
}

// Fail records a failed attempt. The task is rescheduled after the backoff until the
// retries are used up; then it is marked failed and CreditDispatchFailed is raised.
// It reports whether the task is now failed for good.
func (t *Task) Fail(cause error, policy RetryPolicy, now time.Time) bool {
	now = t.recordAttempt(cause, now)
	if t.Attempts > policy.MaxRetries {
		t.markFailed(now)
		return true
	}

	t.Status = Queued
	t.NextRunAt = now.Add(policy.Backoff)
	return false
}

// Abandon records a failed attempt whose cause will not go away on retry and marks the
// task failed at once.
func (t *Task) Abandon(cause error, now time.Time) {
	t.markFailed(t.recordAttempt(cause, now))
}

func (t *Task) recordAttempt(cause error, now time.Time) time.Time {
	now = now.UTC()
	t.Attempts++
	t.UpdatedAt = now
	if cause != nil {
		t.LastError = cause.Error()
	}
	return now
}

func (t *Task) markFailed(now time.Time) {
	t.Status = Failed
	t.Raise(kernel.NewDomainEvent(EventDispatchFailed, t.ID, now, map[string]any{
		"task_id":  t.ID.String(),
		"order_id": t.OrderID.String(),
		"attempts": t.Attempts,
		"error":    t.LastError,
	}))
}

// Requeue gives a failed task a fresh set of attempts.
func (t *Task) Requeue(now time.Time) error {
	if t.Status != Failed {
		return errs.NewConflictError(fmt.Sprintf("credit task %s is %s, only failed tasks can be retried", t.ID, t.Status))
	}
	now = now.UTC()
	t.Status = Queued
	t.Attempts = 0
	t.NextRunAt = now
	t.UpdatedAt = now
	return nil
}

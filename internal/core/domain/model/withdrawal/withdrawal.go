package withdrawal

import (
	"errors"
	"strings"
	"time"

	"courierhub/internal/core/domain/model/kernel"
	"courierhub/internal/pkg/errs"
	"courierhub/internal/pkg/guard"
)

const (
	EventRequested     = "WithdrawalRequested"
	EventApproved      = "WithdrawalApproved"
	EventRejected      = "WithdrawalRejected"
	EventCompleted     = "WithdrawalCompleted"
	EventPaymentFailed = "WithdrawalPaymentFailed"
)

var ErrWithdrawalIsNotConstructed = errors.New("withdrawal must be created via NewWithdrawal constructor")

// Withdrawal is immutable once completed or rejected.
type Withdrawal struct {
	kernel.EventRecorder

	id                   kernel.UUID
	courierID            kernel.UUID
	amount               kernel.Money
	method               Method
	destination          string
	status               Status
	approverID           *kernel.UUID
	rejectionReason      string
	transactionReference string
	requestedAt          time.Time
	approvedAt           *time.Time
	rejectedAt           *time.Time
	completedAt          *time.Time
	guard                guard.ConstructorGuard
}

// NewWithdrawal creates a pending request. The minimum amount is a configuration value
// checked here so that every request path enforces it.
func NewWithdrawal(
	id, courierID kernel.UUID,
	amount, minimum kernel.Money,
	method Method,
	destination string,
	now time.Time,
) (*Withdrawal, error) {
	destination = strings.TrimSpace(destination)

	var destErr, amountErr error
	if destination == "" {
		destErr = errs.NewValueIsRequiredError("destination")
	}
	if amount < minimum || amount <= 0 {
		amountErr = errs.NewValueIsOutOfRangeError("amount", amount.Int64(), minimum.Int64(), "balance")
	}
	if err := errors.Join(id.Validate(), courierID.Validate(), amountErr, method.Validate(), destErr); err != nil {
		return nil, err
	}

	w := &Withdrawal{
		id:          id,
		courierID:   courierID,
		amount:      amount,
		method:      method,
		destination: destination,
		status:      Pending,
		requestedAt: now.UTC(),
		guard:       guard.NewConstructorGuard(),
	}
	w.raise(EventRequested, now, nil)
	return w, nil
}

type Snapshot struct {
	ID                   kernel.UUID
	CourierID            kernel.UUID
	Amount               kernel.Money
	Method               Method
	Destination          string
	Status               Status
	ApproverID           *kernel.UUID
	RejectionReason      string
	TransactionReference string
	RequestedAt          time.Time
	ApprovedAt           *time.Time
	RejectedAt           *time.Time
	CompletedAt          *time.Time
}

func RestoreWithdrawal(s Snapshot) (*Withdrawal, error) {
	if _, err := ParseStatus(string(s.Status)); err != nil {
		return nil, err
	}
	if err := errors.Join(s.ID.Validate(), s.CourierID.Validate()); err != nil {
		return nil, err
	}
	return &Withdrawal{
		id:                   s.ID,
		courierID:            s.CourierID,
		amount:               s.Amount,
		method:               s.Method,
		destination:          s.Destination,
		status:               s.Status,
		approverID:           s.ApproverID,
		rejectionReason:      s.RejectionReason,
		transactionReference: s.TransactionReference,
		requestedAt:          s.RequestedAt,
		approvedAt:           s.ApprovedAt,
		rejectedAt:           s.RejectedAt,
		completedAt:          s.CompletedAt,
		guard:                guard.NewConstructorGuard(),
	}, nil
}

func (w *Withdrawal) Snapshot() Snapshot {
	return Snapshot{
		ID:                   w.id,
		CourierID:            w.courierID,
		Amount:               w.amount,
		Method:               w.method,
		Destination:          w.destination,
		Status:               w.status,
		ApproverID:           w.approverID,
		RejectionReason:      w.rejectionReason,
		TransactionReference: w.transactionReference,
		RequestedAt:          w.requestedAt,
		ApprovedAt:           w.approvedAt,
		RejectedAt:           w.rejectedAt,
		CompletedAt:          w.completedAt,
	}
}

func (w *Withdrawal) Validate() error {
	if w == nil {
		return ErrWithdrawalIsNotConstructed
	}
	return w.guard.Validate(ErrWithdrawalIsNotConstructed)
}

func (w *Withdrawal) ID() kernel.UUID {
	return w.id
}

func (w *Withdrawal) CourierID() kernel.UUID {
	return w.courierID
}

func (w *Withdrawal) Amount() kernel.Money {
	return w.amount
}

func (w *Withdrawal) Method() Method {
	return w.method
}

func (w *Withdrawal) Destination() string {
	return w.destination
}

func (w *Withdrawal) Status() Status {
	return w.status
}

func (w *Withdrawal) ApproverID() *kernel.UUID {
	return w.approverID
}

func (w *Withdrawal) RejectionReason() string {
	return w.rejectionReason
}

func (w *Withdrawal) TransactionReference() string {
	return w.transactionReference
}

func (w *Withdrawal) RequestedAt() time.Time {
	return w.requestedAt
}

func (w *Withdrawal) ApprovedAt() *time.Time {
	return w.approvedAt
}

func (w *Withdrawal) RejectedAt() *time.Time {
	return w.rejectedAt
}

func (w *Withdrawal) CompletedAt() *time.Time {
	return w.completedAt
}

func (w *Withdrawal) Approve(adminID kernel.UUID, now time.Time) error {
	if err := adminID.Validate(); err != nil {
		return err
	}
	if err := w.move(Approved); err != nil {
		return err
	}
	at := now.UTC()
	w.approverID = &adminID
	w.approvedAt = &at
	w.raise(EventApproved, now, map[string]any{"approver_id": adminID.String()})
	return nil
}

// Reject records the reason; the caller releases the reservation in the same transaction.
func (w *Withdrawal) Reject(adminID kernel.UUID, reason string, now time.Time) error {
	if err := adminID.Validate(); err != nil {
		return err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return errs.NewValueIsRequiredError("reason")
	}
	if err := w.move(Rejected); err != nil {
		return err
	}
	at := now.UTC()
	w.approverID = &adminID
	w.rejectionReason = reason
	w.rejectedAt = &at
	w.raise(EventRejected, now, map[string]any{"reason": reason})
	return nil
}

// Complete records the provider reference; the caller finalizes the reservation.
func (w *Withdrawal) Complete(providerReference string, now time.Time) error {
	providerReference = strings.TrimSpace(providerReference)
	if providerReference == "" {
		return errs.NewValueIsRequiredError("provider reference")
	}
	if err := w.move(Completed); err != nil {
		return err
	}
	at := now.UTC()
	w.transactionReference = providerReference
	w.completedAt = &at
	w.raise(EventCompleted, now, map[string]any{"transaction_reference": providerReference})
	return nil
}

// PaymentFailed raises the failure event; the withdrawal stays approved so the payout can be retried.
func (w *Withdrawal) PaymentFailed(reason string, now time.Time) error {
	if w.status != Approved {
		return errs.NewConflictError("withdrawal " + w.id.String() + " is " + string(w.status) + ", not approved")
	}
	w.raise(EventPaymentFailed, now, map[string]any{"reason": strings.TrimSpace(reason)})
	return nil
}

func (w *Withdrawal) move(to Status) error {
	if !CanTransition(w.status, to) {
		return errs.NewConflictError("withdrawal " + w.id.String() + " is " + string(w.status) + ", cannot become " + string(to))
	}
	w.status = to
	return nil
}

func (w *Withdrawal) raise(name string, now time.Time, payload map[string]any) {
	if payload == nil {
		payload = map[string]any{}
	}
	payload["withdrawal_id"] = w.id.String()
	payload["courier_id"] = w.courierID.String()
	payload["amount"] = w.amount.Int64()
	payload["status"] = string(w.status)
	w.Raise(kernel.NewDomainEvent(name, w.id, now, payload))
}

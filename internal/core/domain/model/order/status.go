package order

import (
	"fmt"
	"slices"

	"courierhub/internal/pkg/errs"
)

// Status is the lifecycle state of an order.
type Status string

const (
	Pending   Status = "pending"
	Assigned  Status = "assigned"
	PickedUp  Status = "picked_up"
	Delivered Status = "delivered"
	Cancelled Status = "cancelled"
)

// transitions is the single source of truth for legal status changes.
// Terminal states map to an empty set.
var transitions = map[Status][]Status{
	Pending:   {Assigned, Cancelled},
	Assigned:  {PickedUp, Cancelled},
	PickedUp:  {Delivered, Cancelled},
	Delivered: {},
	Cancelled: {},
}

// Statuses lists every valid status in lifecycle order.
func Statuses() []Status {
	return []Status{Pending, Assigned, PickedUp, Delivered, Cancelled}
}

// CanTransition reports whether from -> to is in the transition table.
func CanTransition(from, to Status) bool {
	return slices.Contains(transitions[from], to)
}

// AllowedTransitions returns a copy of the statuses reachable from from.
// Unknown and terminal statuses yield an empty slice.
func AllowedTransitions(from Status) []Status {
	return slices.Clone(transitions[from])
}

// Transition validates from -> to and returns to, or a StateError.
func Transition(from, to Status) (Status, error) {
	if !CanTransition(from, to) {
		return from, errs.NewStateError("order", string(from), string(to))
	}
	return to, nil
}

func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if err := status.Validate(); err != nil {
		return "", err
	}
	return status, nil
}

func (s Status) Validate() error {
	if _, ok := transitions[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a valid order status", string(s)))
	}
	return nil
}

func (s Status) String() string {
	return string(s)
}

func (s Status) IsTerminal() bool {
	next, ok := transitions[s]
	return ok && len(next) == 0
}

// RequiresCourier reports whether an order in status s must reference a courier.
func (s Status) RequiresCourier() bool {
	return s == Assigned || s == PickedUp || s == Delivered
}

// IsCancellable reports whether an order in status s may still be cancelled.
func (s Status) IsCancellable() bool {
	return CanTransition(s, Cancelled)
}

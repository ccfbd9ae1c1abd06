package errs

import (
	"errors"
	"fmt"
)

var (
	ErrIllegalTransition   = errors.New("illegal state transition")
	ErrForbidden           = errors.New("forbidden")
	ErrConflict            = errors.New("conflict")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrExternal            = errors.New("external service error")
)

// StateError is returned whenever a status change is not part of the transition table.
type StateError struct {
	Entity string
	From   string
	To     string
}

func NewStateError(entity, from, to string) *StateError {
	return &StateError{Entity: entity, From: from, To: to}
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s: %s %s -> %s", ErrIllegalTransition, e.Entity, e.From, e.To)
}

func (e *StateError) Unwrap() error {
	return ErrIllegalTransition
}

// ForbiddenError is returned when the actor lacks permission for the action.
type ForbiddenError struct {
	ActorID string
	Action  string
}

func NewForbiddenError(actorID, action string) *ForbiddenError {
	return &ForbiddenError{ActorID: actorID, Action: action}
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("%s: actor %s may not %s", ErrForbidden, e.ActorID, e.Action)
}

func (e *ForbiddenError) Unwrap() error {
	return ErrForbidden
}

// ConflictError means a concurrent actor won the race or the entity is already settled.
type ConflictError struct {
	Reason string
}

func NewConflictError(reason string) *ConflictError {
	return &ConflictError{Reason: reason}
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: %s", ErrConflict, e.Reason)
}

func (e *ConflictError) Unwrap() error {
	return ErrConflict
}

// InsufficientBalanceError carries the requested and the available amount in minor units.
type InsufficientBalanceError struct {
	Requested int64
	Available int64
}

func NewInsufficientBalanceError(requested, available int64) *InsufficientBalanceError {
	return &InsufficientBalanceError{Requested: requested, Available: available}
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("%s: requested %d, available %d", ErrInsufficientBalance, e.Requested, e.Available)
}

func (e *InsufficientBalanceError) Unwrap() error {
	return ErrInsufficientBalance
}

// ExternalError wraps failures of payment providers and other collaborators.
type ExternalError struct {
	Service string
	Cause   error
}

func NewExternalError(service string, cause error) *ExternalError {
	return &ExternalError{Service: service, Cause: cause}
}

func (e *ExternalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", ErrExternal, e.Service, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrExternal, e.Service)
}

func (e *ExternalError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrExternal}
	}
	return []error{ErrExternal, e.Cause}
}

package errs

import "errors"

// Code is the stable machine-readable error identifier exposed to callers.
type Code string

const (
	CodeValidation          Code = "validation_error"
	CodeState               Code = "state_error"
	CodeForbidden           Code = "forbidden"
	CodeConflict            Code = "conflict"
	CodeInsufficientBalance Code = "insufficient_balance"
	CodeExternal            Code = "external_error"
	CodeNotFound            Code = "not_found"
	CodeSystem              Code = "system_error"
)

// CodeOf classifies err. Anything outside the taxonomy is a system error.
func CodeOf(err error) Code {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValueIsInvalid),
		errors.Is(err, ErrValueIsRequired),
		errors.Is(err, ErrValueIsOutOfRange):
		return CodeValidation
	case errors.Is(err, ErrIllegalTransition):
		return CodeState
	case errors.Is(err, ErrForbidden):
		return CodeForbidden
	case errors.Is(err, ErrConflict):
		return CodeConflict
	case errors.Is(err, ErrInsufficientBalance):
		return CodeInsufficientBalance
	case errors.Is(err, ErrExternal):
		return CodeExternal
	case errors.Is(err, ErrObjectNotFound):
		return CodeNotFound
	default:
		return CodeSystem
	}
}

// IsRetryable reports whether a background worker may try the operation again.
// Only system failures are transient. External failures are retried by the caller that
// reported them.
func IsRetryable(err error) bool {
	return CodeOf(err) == CodeSystem
}

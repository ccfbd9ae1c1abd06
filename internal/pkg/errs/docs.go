// Package errs provides the error taxonomy of the marketplace core.
//
// Validation failures use ValueIsRequiredError, ValueIsInvalidError and
// ValueIsOutOfRangeError. Business rule failures use StateError,
// ForbiddenError, ConflictError and InsufficientBalanceError. Failures of
// collaborators are wrapped in ExternalError. Each type unwraps to a
// sentinel so callers classify with errors.Is, and CodeOf maps any error
// to the stable code returned over the API.
package errs

package withdrawal

import (
	"fmt"
	"slices"

	"courierhub/internal/pkg/errs"
)

type Status string

const (
	Pending   Status = "pending"
	Approved  Status = "approved"
	Rejected  Status = "rejected"
	Completed Status = "completed"
)

var transitions = map[Status][]Status{
	Pending:   {Approved, Rejected},
	Approved:  {Completed},
	Rejected:  {},
	Completed: {},
}

func CanTransition(from, to Status) bool {
	return slices.Contains(transitions[from], to)
}

func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if _, ok := transitions[status]; !ok {
		return "", errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a valid withdrawal status", s))
	}
	return status, nil
}

func (s Status) String() string {
	return string(s)
}

func (s Status) IsTerminal() bool {
	next, ok := transitions[s]
	return ok && len(next) == 0
}

package kernel

import (
	"fmt"

	"courierhub/internal/pkg/errs"
)

// Money is an amount in the smallest currency unit.
type Money int64

func (m Money) Int64() int64 {
	return int64(m)
}

func (m Money) IsPositive() bool {
	return m > 0
}

// ValidatePositive rejects zero and negative amounts for the named parameter.
func (m Money) ValidatePositive(param string) error {
	if m <= 0 {
		return errs.NewValueIsInvalidErrorWithCause(param, fmt.Errorf("%d is not greater than 0", m))
	}
	return nil
}

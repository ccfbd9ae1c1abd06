package withdrawal

import (
	"fmt"

	"courierhub/internal/pkg/errs"
)

// Method is the payout rail requested by the courier.
type Method string

const (
	BankTransfer Method = "bank_transfer"
	Card         Method = "card"
	MobileMoney  Method = "mobile_money"
)

func (m Method) Validate() error {
	switch m {
	case BankTransfer, Card, MobileMoney:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("method", fmt.Errorf("%q is not a supported payout method", string(m)))
	}
}

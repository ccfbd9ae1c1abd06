package commands

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"courierhub/internal/pkg/errs"
	"courierhub/internal/pkg/guard"
)

const (
	SettlementSucceeded = "succeeded"
	SettlementFailed    = "failed"
)

var (
	ErrRecordSettlementCommandIsNotConstructed = errors.New(
		"RecordSettlementCommand must be created via NewRecordSettlementCommand constructor",
	)
	ErrInvalidSignature = errors.New("invalid settlement signature")
)

// RecordSettlementCommand carries a payment provider callback as received: the raw body
// and the hex encoded HMAC-SHA256 signature the provider computed over it.
type RecordSettlementCommand struct {
	body      []byte
	signature string

	guard guard.ConstructorGuard
}

func NewRecordSettlementCommand(body []byte, signature string) (RecordSettlementCommand, error) {
	if len(body) == 0 {
		return RecordSettlementCommand{}, errs.NewValueIsRequiredError("body")
	}
	return RecordSettlementCommand{
		body:      body,
		signature: strings.TrimSpace(signature),
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c RecordSettlementCommand) Validate() error {
	return c.guard.Validate(ErrRecordSettlementCommandIsNotConstructed)
}

func (c RecordSettlementCommand) Body() []byte {
	return c.body
}

func (c RecordSettlementCommand) Signature() string {
	return c.signature
}

// SignSettlement returns the signature a provider sends for body.
func SignSettlement(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func validSettlementSignature(secret string, body []byte, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}
	expected := SignSettlement(secret, body)
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(signature)))
}

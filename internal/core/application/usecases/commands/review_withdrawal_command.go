package commands

import (
	"errors"
	"strings"

	"courierhub/internal/core/domain/model/kernel"
	"courierhub/internal/pkg/guard"
)

var (
	ErrApproveWithdrawalCommandIsNotConstructed = errors.New(
		"ApproveWithdrawalCommand must be created via NewApproveWithdrawalCommand constructor",
	)
	ErrRejectWithdrawalCommandIsNotConstructed = errors.New(
		"RejectWithdrawalCommand must be created via NewRejectWithdrawalCommand constructor",
	)
	ErrCompleteWithdrawalCommandIsNotConstructed = errors.New(
		"CompleteWithdrawalCommand must be created via NewCompleteWithdrawalCommand constructor",
	)
)

type ApproveWithdrawalCommand struct {
	adminID      kernel.UUID
	withdrawalID kernel.UUID
	guard        guard.ConstructorGuard
}

func NewApproveWithdrawalCommand(adminID, withdrawalID kernel.UUID) (ApproveWithdrawalCommand, error) {
	if err := errors.Join(adminID.Validate(), withdrawalID.Validate()); err != nil {
		return ApproveWithdrawalCommand{}, err
	}
	return ApproveWithdrawalCommand{adminID: adminID, withdrawalID: withdrawalID, guard: guard.NewConstructorGuard()}, nil
}

func (c ApproveWithdrawalCommand) Validate() error {
	return c.guard.Validate(ErrApproveWithdrawalCommandIsNotConstructed)
}

func (c ApproveWithdrawalCommand) AdminID() kernel.UUID {
	return c.adminID
}

func (c ApproveWithdrawalCommand) WithdrawalID() kernel.UUID {
	return c.withdrawalID
}

type RejectWithdrawalCommand struct {
	adminID      kernel.UUID
	withdrawalID kernel.UUID
	reason       string
	guard        guard.ConstructorGuard
}

func NewRejectWithdrawalCommand(adminID, withdrawalID kernel.UUID, reason string) (RejectWithdrawalCommand, error) {
	if err := errors.Join(adminID.Validate(), withdrawalID.Validate()); err != nil {
		return RejectWithdrawalCommand{}, err
	}
	return RejectWithdrawalCommand{
		adminID:      adminID,
		withdrawalID: withdrawalID,
		reason:       strings.TrimSpace(reason),
		guard:        guard.NewConstructorGuard(),
	}, nil
}

func (c RejectWithdrawalCommand) Validate() error {
	return c.guard.Validate(ErrRejectWithdrawalCommandIsNotConstructed)
}

func (c RejectWithdrawalCommand) AdminID() kernel.UUID {
	return c.adminID
}

func (c RejectWithdrawalCommand) WithdrawalID() kernel.UUID {
	return c.withdrawalID
}

func (c RejectWithdrawalCommand) Reason() string {
	return c.reason
}

// CompleteWithdrawalCommand finalizes an approved payout with the provider's reference.
type CompleteWithdrawalCommand struct {
	withdrawalID      kernel.UUID
	providerReference string
	guard             guard.ConstructorGuard
}

func NewCompleteWithdrawalCommand(withdrawalID kernel.UUID, providerReference string) (CompleteWithdrawalCommand, error) {
	if err := withdrawalID.Validate(); err != nil {
		return CompleteWithdrawalCommand{}, err
	}
	return CompleteWithdrawalCommand{
		withdrawalID:      withdrawalID,
		providerReference: strings.TrimSpace(providerReference),
		guard:             guard.NewConstructorGuard(),
	}, nil
}

func (c CompleteWithdrawalCommand) Validate() error {
	return c.guard.Validate(ErrCompleteWithdrawalCommandIsNotConstructed)
}

func (c CompleteWithdrawalCommand) WithdrawalID() kernel.UUID {
	return c.withdrawalID
}

func (c CompleteWithdrawalCommand) ProviderReference() string {
	return c.providerReference
}

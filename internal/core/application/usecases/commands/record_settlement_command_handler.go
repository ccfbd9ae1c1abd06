package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"courierhub/internal/core/domain/model/kernel"
	"courierhub/internal/core/domain/model/withdrawal"
	"courierhub/internal/pkg/errs"
	"courierhub/internal/pkg/logger"

	"go.uber.org/zap"
)

// SettlementPayload is the provider neutral callback body.
type SettlementPayload struct {
	WithdrawalID      string `json:"withdrawal_id"`
	Status            string `json:"status"`
	ProviderReference string `json:"provider_reference"`
	Reason            string `json:"reason,omitempty"`
}

// RecordSettlementCommandHandler authenticates a settlement callback and applies it.
// A succeeded payout completes the withdrawal; a failed one only raises
// WithdrawalPaymentFailed and leaves the withdrawal approved.
type RecordSettlementCommandHandler struct {
	review ReviewWithdrawalCommandHandler
	secret string
	log    *zap.Logger
}

func NewRecordSettlementCommandHandler(
	review ReviewWithdrawalCommandHandler,
	secret string,
	log *zap.Logger,
) RecordSettlementCommandHandler {
	return RecordSettlementCommandHandler{
		review: review,
		secret: secret,
		log:    logger.Component(log, "settlement"),
	}
}

func (h RecordSettlementCommandHandler) Handle(ctx context.Context, cmd RecordSettlementCommand) (*withdrawal.Withdrawal, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	if !validSettlementSignature(h.secret, cmd.Body(), cmd.Signature()) {
		h.log.Warn("rejected settlement callback with invalid signature")
		return nil, errs.NewExternalError("settlement", ErrInvalidSignature)
	}

	var payload SettlementPayload
	if err := json.Unmarshal(cmd.Body(), &payload); err != nil {
		return nil, errs.NewValueIsInvalidErrorWithCause("body", err)
	}
	id, err := kernel.ParseUUID(payload.WithdrawalID)
	if err != nil {
		return nil, err
	}

	log := h.log.With(zap.String("withdrawal_id", id.String()), zap.String("status", payload.Status))
	switch payload.Status {
	case SettlementSucceeded:
		complete, err := NewCompleteWithdrawalCommand(id, payload.ProviderReference)
		if err != nil {
			return nil, err
		}
		w, err := h.review.Complete(ctx, complete)
		if err != nil {
			return nil, err
		}
		log.Info("withdrawal settled", zap.String("provider_reference", payload.ProviderReference))
		return w, nil
	case SettlementFailed:
		w, err := h.review.paymentFailed(ctx, id, payload.Reason)
		if err != nil {
			return nil, err
		}
		log.Warn("withdrawal payout failed", zap.String("reason", payload.Reason))
		return w, nil
	default:
		return nil, errs.NewValueIsInvalidErrorWithCause("status",
			fmt.Errorf("%q is not a settlement status", payload.Status))
	}
}

package commands

import (
	"context"
	"errors"
	"time"

	"courierhub/internal/core/application/ledger"
	"courierhub/internal/core/domain/model/kernel"
	"courierhub/internal/core/domain/model/withdrawal"
	"courierhub/internal/core/ports"
)

// errUnchanged aborts the transaction of a step that has nothing to write.
var errUnchanged = errors.New("unchanged")

// ReviewWithdrawalCommandHandler moves withdrawals through the admin and settlement
// steps. Each step locks the withdrawal row and applies the matching wallet movement in
// the same transaction: reject releases the reservation, complete finalizes it.
type ReviewWithdrawalCommandHandler struct {
	uowFactory ports.UnitOfWorkFactory
}

func NewReviewWithdrawalCommandHandler(uowFactory ports.UnitOfWorkFactory) ReviewWithdrawalCommandHandler {
	return ReviewWithdrawalCommandHandler{uowFactory: uowFactory}
}

func (h ReviewWithdrawalCommandHandler) Approve(ctx context.Context, cmd ApproveWithdrawalCommand) (*withdrawal.Withdrawal, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	return h.update(ctx, cmd.WithdrawalID(), func(_ ports.UnitOfWork, w *withdrawal.Withdrawal, now time.Time) error {
		return w.Approve(cmd.AdminID(), now)
	})
}

func (h ReviewWithdrawalCommandHandler) Reject(ctx context.Context, cmd RejectWithdrawalCommand) (*withdrawal.Withdrawal, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	return h.update(ctx, cmd.WithdrawalID(), func(uow ports.UnitOfWork, w *withdrawal.Withdrawal, now time.Time) error {
		if err := w.Reject(cmd.AdminID(), cmd.Reason(), now); err != nil {
			return err
		}
		_, err := ledger.New(uow.WalletRepository(), func() time.Time { return now }).
			ReleaseReservation(ctx, w.CourierID(), w.Amount())
		return err
	})
}

// Complete is idempotent for a withdrawal already completed with the same reference,
// so a provider redelivering its callback gets the stored withdrawal back.
func (h ReviewWithdrawalCommandHandler) Complete(ctx context.Context, cmd CompleteWithdrawalCommand) (*withdrawal.Withdrawal, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	return h.update(ctx, cmd.WithdrawalID(), func(uow ports.UnitOfWork, w *withdrawal.Withdrawal, now time.Time) error {
		if w.Status() == withdrawal.Completed && w.TransactionReference() == cmd.ProviderReference() {
			return errUnchanged
		}
		if err := w.Complete(cmd.ProviderReference(), now); err != nil {
			return err
		}
		_, err := ledger.New(uow.WalletRepository(), func() time.Time { return now }).
			FinalizeWithdrawal(ctx, w.CourierID(), w.Amount())
		return err
	})
}

// paymentFailed records a failed payout attempt. The withdrawal stays approved.
func (h ReviewWithdrawalCommandHandler) paymentFailed(ctx context.Context, id kernel.UUID, reason string) (*withdrawal.Withdrawal, error) {
	return h.update(ctx, id, func(_ ports.UnitOfWork, w *withdrawal.Withdrawal, now time.Time) error {
		return w.PaymentFailed(reason, now)
	})
}

func (h ReviewWithdrawalCommandHandler) update(
	ctx context.Context,
	id kernel.UUID,
	step func(uow ports.UnitOfWork, w *withdrawal.Withdrawal, now time.Time) error,
) (*withdrawal.Withdrawal, error) {
	var updated *withdrawal.Withdrawal
	err := inTransaction(ctx, h.uowFactory, func(uow ports.UnitOfWork) error {
		withdrawals := uow.WithdrawalRepository()
		w, err := withdrawals.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}

		updated = w
		if err = step(uow, w, time.Now()); err != nil {
			return err
		}
		return withdrawals.Update(ctx, w)
	})
	if errors.Is(err, errUnchanged) {
		return updated, nil
	}
	if err != nil {
		return nil, err
	}
	return updated, nil
}

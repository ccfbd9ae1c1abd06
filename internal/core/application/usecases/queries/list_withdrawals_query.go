package queries

import (
	"context"
	"errors"

	"courierhub/internal/core/domain/model/kernel"
	"courierhub/internal/core/domain/model/withdrawal"
	"courierhub/internal/core/ports"
	"courierhub/internal/pkg/guard"
)

var (
	ErrListWithdrawalsQueryIsNotConstructed = errors.New(
		"ListWithdrawalsQuery must be created via NewListWithdrawalsQuery or NewListCourierWithdrawalsQuery constructor",
	)
)

// ListWithdrawalsQuery lists withdrawals newest first. It is either scoped to one courier
// or, for admins, filtered by status.
type ListWithdrawalsQuery struct {
	courierID *kernel.UUID
	status    *withdrawal.Status
	page      ports.Page
	guard     guard.ConstructorGuard
}

func NewListCourierWithdrawalsQuery(courierID kernel.UUID, page ports.Page) (ListWithdrawalsQuery, error) {
	if err := courierID.Validate(); err != nil {
		return ListWithdrawalsQuery{}, err
	}
	return ListWithdrawalsQuery{courierID: &courierID, page: page.Normalize(), guard: guard.NewConstructorGuard()}, nil
}

// NewListWithdrawalsQuery builds the admin listing. An empty status lists every withdrawal.
func NewListWithdrawalsQuery(status string, page ports.Page) (ListWithdrawalsQuery, error) {
	q := ListWithdrawalsQuery{page: page.Normalize(), guard: guard.NewConstructorGuard()}
	if status != "" {
		parsed, err := withdrawal.ParseStatus(status)
		if err != nil {
			return ListWithdrawalsQuery{}, err
		}
		q.status = &parsed
	}
	return q, nil
}

func (q ListWithdrawalsQuery) Validate() error {
	return q.guard.Validate(ErrListWithdrawalsQueryIsNotConstructed)
}

type ListWithdrawalsQueryHandler struct {
	uowFactory ports.UnitOfWorkFactory
}

func NewListWithdrawalsQueryHandler(uowFactory ports.UnitOfWorkFactory) ListWithdrawalsQueryHandler {
	return ListWithdrawalsQueryHandler{uowFactory: uowFactory}
}

func (h ListWithdrawalsQueryHandler) Handle(ctx context.Context, query ListWithdrawalsQuery) ([]*withdrawal.Withdrawal, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	withdrawals := h.uowFactory.Create().WithdrawalRepository()
	if query.courierID != nil {
		return withdrawals.ListByCourier(ctx, *query.courierID, query.page)
	}
	return withdrawals.List(ctx, query.status, query.page)
}

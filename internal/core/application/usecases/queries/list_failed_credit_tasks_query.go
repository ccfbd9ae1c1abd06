package queries

import (
	"context"
	"errors"

	"courierhub/internal/core/domain/model/credittask"
	"courierhub/internal/core/ports"
	"courierhub/internal/pkg/guard"
)

var ErrListFailedCreditTasksQueryIsNotConstructed = errors.New(
	"ListFailedCreditTasksQuery must be created via NewListFailedCreditTasksQuery constructor",
)

// ListFailedCreditTasksQuery lists credit tasks that used up their retries, most
// recently failed first.
type ListFailedCreditTasksQuery struct {
	page  ports.Page
	guard guard.ConstructorGuard
}

func NewListFailedCreditTasksQuery(page ports.Page) ListFailedCreditTasksQuery {
	return ListFailedCreditTasksQuery{page: page.Normalize(), guard: guard.NewConstructorGuard()}
}

func (q ListFailedCreditTasksQuery) Validate() error {
	return q.guard.Validate(ErrListFailedCreditTasksQueryIsNotConstructed)
}

type ListFailedCreditTasksQueryHandler struct {
	uowFactory ports.UnitOfWorkFactory
}

func NewListFailedCreditTasksQueryHandler(uowFactory ports.UnitOfWorkFactory) ListFailedCreditTasksQueryHandler {
	return ListFailedCreditTasksQueryHandler{uowFactory: uowFactory}
}

func (h ListFailedCreditTasksQueryHandler) Handle(ctx context.Context, query ListFailedCreditTasksQuery) ([]*credittask.Task, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	return h.uowFactory.Create().CreditTaskRepository().ListFailed(ctx, query.page)
}

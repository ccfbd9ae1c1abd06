package queries

import (
	"context"
	"errors"

	"courierhub/internal/core/domain/model/kernel"
	"courierhub/internal/core/domain/model/order"
	"courierhub/internal/core/ports"
	"courierhub/internal/pkg/errs"
	"courierhub/internal/pkg/guard"
)

var ErrGetOrderQueryIsNotConstructed = errors.New(
	"GetOrderQuery must be created via NewGetOrderQuery constructor",
)

// GetOrderQuery reads one order with its status history on behalf of actor.
//
// Example:
//
//	query, err := NewGetOrderQuery(actor, orderID)
//	if err != nil {
//	    return err
//	}
//	view, err := NewGetOrderQueryHandler(uowFactory).Handle(ctx, query)
//	for _, entry := range view.History {
//	    fmt.Printf("%s -> %s by %s\n", entry.From, entry.To, entry.Actor)
//	}
type GetOrderQuery struct {
	actor   kernel.Actor
	orderID kernel.UUID
	guard   guard.ConstructorGuard
}

func NewGetOrderQuery(actor kernel.Actor, orderID kernel.UUID) (GetOrderQuery, error) {
	if err := errors.Join(actor.ID.Validate(), actor.Role.Validate(), orderID.Validate()); err != nil {
		return GetOrderQuery{}, err
	}
	return GetOrderQuery{actor: actor, orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetOrderQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderQueryIsNotConstructed)
}

// GetOrderQueryResponse holds the order and its history in chronological order.
type GetOrderQueryResponse struct {
	Order   *order.Order
	History []order.HistoryEntry
}

type GetOrderQueryHandler struct {
	uowFactory ports.UnitOfWorkFactory
}

func NewGetOrderQueryHandler(uowFactory ports.UnitOfWorkFactory) GetOrderQueryHandler {
	return GetOrderQueryHandler{uowFactory: uowFactory}
}

// Handle returns ForbiddenError when the actor may not see the order. Clients see their
// own orders, couriers see orders assigned to them and any pending order.
func (h GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (GetOrderQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetOrderQueryResponse{}, err
	}

	orders := h.uowFactory.Create().OrderRepository()
	o, err := orders.Get(ctx, query.orderID)
	if err != nil {
		return GetOrderQueryResponse{}, err
	}
	if !canView(query.actor, o) {
		return GetOrderQueryResponse{}, errs.NewForbiddenError(query.actor.ID.String(), "view order "+o.ID().String())
	}

	history, err := orders.History(ctx, o.ID())
	if err != nil {
		return GetOrderQueryResponse{}, err
	}
	return GetOrderQueryResponse{Order: o, History: history}, nil
}

func canView(actor kernel.Actor, o *order.Order) bool {
	switch actor.Role {
	case kernel.RoleAdmin, kernel.RoleSystem:
		return true
	case kernel.RoleCourier:
		return o.Status() == order.Pending || o.IsAssignedTo(actor.ID)
	default:
		return o.IsParticipant(actor)
	}
}

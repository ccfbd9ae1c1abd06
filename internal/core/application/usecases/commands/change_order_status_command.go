package commands

import (
	"errors"

	"courierhub/internal/core/domain/model/kernel"
	"courierhub/internal/core/domain/model/order"
	"courierhub/internal/pkg/guard"
)

var ErrChangeOrderStatusCommandIsNotConstructed = errors.New(
	"ChangeOrderStatusCommand must be created via NewChangeOrderStatusCommand constructor",
)

// ChangeOrderStatusCommand moves an order to a new status on behalf of actor.
// GeoStamp is the optional location reported with the change.
type ChangeOrderStatusCommand struct {
	actor    kernel.Actor
	orderID  kernel.UUID
	status   order.Status
	geoStamp *kernel.Location

	guard guard.ConstructorGuard
}

func NewChangeOrderStatusCommand(
	actor kernel.Actor,
	orderID kernel.UUID,
	status order.Status,
	geoStamp *kernel.Location,
) (ChangeOrderStatusCommand, error) {
	var geoErr error
	if geoStamp != nil {
		geoErr = geoStamp.Validate()
	}

	if err := errors.Join(
		actor.ID.Validate(),
		actor.Role.Validate(),
		orderID.Validate(),
		status.Validate(),
		geoErr,
	); err != nil {
		return ChangeOrderStatusCommand{}, err
	}

	return ChangeOrderStatusCommand{
		actor:    actor,
		orderID:  orderID,
		status:   status,
		geoStamp: geoStamp,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (c ChangeOrderStatusCommand) Validate() error {
	return c.guard.Validate(ErrChangeOrderStatusCommandIsNotConstructed)
}

func (c ChangeOrderStatusCommand) Actor() kernel.Actor {
	return c.actor
}

func (c ChangeOrderStatusCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c ChangeOrderStatusCommand) Status() order.Status {
	return c.status
}

func (c ChangeOrderStatusCommand) GeoStamp() *kernel.Location {
	return c.geoStamp
}

package commands

import (
	"errors"

	"courierhub/internal/core/domain/model/kernel"
	"courierhub/internal/core/domain/model/order"
	"courierhub/internal/pkg/guard"
)

var ErrCreateOrderCommandIsNotConstructed = errors.New(
	"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
)

// CreateOrderCommand places a new delivery request on behalf of a client.
// A nil zone selects the configured default zone.
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	clientID kernel.UUID
	pickup   order.Stop
	dropoff  order.Stop
	pkg      order.Package
	zoneID   *kernel.UUID

	guard guard.ConstructorGuard
}

func NewCreateOrderCommand(
	clientID kernel.UUID,
	pickup, dropoff order.Stop,
	pkg order.Package,
	zoneID *kernel.UUID,
) (CreateOrderCommand, error) {
	var zoneErr error
	if zoneID != nil {
		zoneErr = zoneID.Validate()
	}

	if err := errors.Join(
		clientID.Validate(),
		pickup.Validate(),
		dropoff.Validate(),
		pkg.Size.Validate(),
		zoneErr,
	); err != nil {
		return CreateOrderCommand{}, err
	}

	return CreateOrderCommand{
		clientID: clientID,
		pickup:   pickup,
		dropoff:  dropoff,
		pkg:      pkg,
		zoneID:   zoneID,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

func (c CreateOrderCommand) ClientID() kernel.UUID {
	return c.clientID
}

func (c CreateOrderCommand) Pickup() order.Stop {
	return c.pickup
}

func (c CreateOrderCommand) Dropoff() order.Stop {
	return c.dropoff
}

func (c CreateOrderCommand) Package() order.Package {
	return c.pkg
}

func (c CreateOrderCommand) ZoneID() *kernel.UUID {
	return c.zoneID
}

package commands

import (
	"errors"
	"strings"

	"courierhub/internal/core/domain/model/courier"
	"courierhub/internal/core/domain/model/kernel"
	"courierhub/internal/pkg/guard"
)

var ErrUpdateCourierLocationCommandIsNotConstructed = errors.New(
	"UpdateCourierLocationCommand must be created via NewUpdateCourierLocationCommand constructor",
)

// UpdateCourierLocationCommand is a courier reporting position and availability.
// Name and vehicle are only used to register a courier seen for the first time.
type UpdateCourierLocationCommand struct {
	courierID kernel.UUID
	location  kernel.Location
	available bool
	name      string
	vehicle   courier.Vehicle

	guard guard.ConstructorGuard
}

func NewUpdateCourierLocationCommand(
	courierID kernel.UUID,
	location kernel.Location,
	available bool,
	name string,
	vehicle courier.Vehicle,
) (UpdateCourierLocationCommand, error) {
	var vehicleErr error
	if vehicle != "" {
		vehicleErr = vehicle.Validate()
	}

	if err := errors.Join(courierID.Validate(), location.Validate(), vehicleErr); err != nil {
		return UpdateCourierLocationCommand{}, err
	}

	return UpdateCourierLocationCommand{
		courierID: courierID,
		location:  location,
		available: available,
		name:      strings.TrimSpace(name),
		vehicle:   vehicle,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c UpdateCourierLocationCommand) Validate() error {
	return c.guard.Validate(ErrUpdateCourierLocationCommandIsNotConstructed)
}

func (c UpdateCourierLocationCommand) CourierID() kernel.UUID {
	return c.courierID
}

func (c UpdateCourierLocationCommand) Location() kernel.Location {
	return c.location
}

func (c UpdateCourierLocationCommand) Available() bool {
	return c.available
}

func (c UpdateCourierLocationCommand) Name() string {
	return c.name
}

func (c UpdateCourierLocationCommand) Vehicle() courier.Vehicle {
	return c.vehicle
}

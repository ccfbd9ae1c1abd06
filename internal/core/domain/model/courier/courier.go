package courier

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"courierhub/internal/core/domain/model/kernel"
	"courierhub/internal/pkg/errs"
	"courierhub/internal/pkg/guard"
)

// Vehicle is how the courier moves around.
type Vehicle string

const (
	OnFoot  Vehicle = "on_foot"
	Bicycle Vehicle = "bicycle"
	Scooter Vehicle = "scooter"
	Car     Vehicle = "car"
)

func (v Vehicle) Validate() error {
	switch v {
	case OnFoot, Bicycle, Scooter, Car:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("vehicle", fmt.Errorf("%q is not a known vehicle type", string(v)))
	}
}

var (
	ErrNameIsRequired          = errs.NewValueIsRequiredError("name")
	ErrCourierIsNotConstructed = errors.New("courier must be created via NewCourier constructor")
)

// Courier is the directory entry the matcher works with: identity, vehicle,
// last reported position and the availability flag toggled by the courier app.
type Courier struct {
	id                kernel.UUID
	name              string
	vehicle           Vehicle
	location          *kernel.Location
	available         bool
	locationUpdatedAt *time.Time
	guard             guard.ConstructorGuard
}

// NewCourier registers a courier that has not reported a position yet and is offline.
func NewCourier(id kernel.UUID, name string, vehicle Vehicle) (*Courier, error) {
	name = strings.TrimSpace(name)

	var nameErr error
	if name == "" {
		nameErr = ErrNameIsRequired
	}
	if err := errors.Join(id.Validate(), nameErr, vehicle.Validate()); err != nil {
		return nil, err
	}

	return &Courier{
		id:      id,
		name:    name,
		vehicle: vehicle,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// RestoreCourier rebuilds a courier from persisted state.
func RestoreCourier(
	id kernel.UUID,
	name string,
	vehicle Vehicle,
	location *kernel.Location,
	available bool,
	locationUpdatedAt *time.Time,
) (*Courier, error) {
	c, err := NewCourier(id, name, vehicle)
	if err != nil {
		return nil, err
	}
	c.location = location
	c.available = available
	c.locationUpdatedAt = locationUpdatedAt
	return c, nil
}

func (c *Courier) Validate() error {
	if c == nil {
		return ErrCourierIsNotConstructed
	}
	return c.guard.Validate(ErrCourierIsNotConstructed)
}

func (c *Courier) IsEqual(other *Courier) bool {
	return other != nil && c.id.IsEqual(other.id)
}

func (c *Courier) ID() kernel.UUID {
	return c.id
}

func (c *Courier) Name() string {
	return c.name
}

func (c *Courier) Vehicle() Vehicle {
	return c.vehicle
}

// Location is nil until the courier reports a position.
func (c *Courier) Location() *kernel.Location {
	return c.location
}

func (c *Courier) LocationUpdatedAt() *time.Time {
	return c.locationUpdatedAt
}

func (c *Courier) IsAvailable() bool {
	return c.available
}

// CanBeMatched reports whether the matcher may offer work to this courier.
func (c *Courier) CanBeMatched() bool {
	return c.available && c.location != nil
}

// ReportLocation stores the latest position and the availability flag sent by the courier app.
func (c *Courier) ReportLocation(location kernel.Location, available bool, at time.Time) error {
	if err := location.Validate(); err != nil {
		return err
	}
	at = at.UTC()
	c.location = &location
	c.available = available
	c.locationUpdatedAt = &at
	return nil
}

// SetAvailable toggles availability without touching the position.
func (c *Courier) SetAvailable(available bool) {
	c.available = available
}

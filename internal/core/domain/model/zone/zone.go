// Package zone holds the geographic pricing areas and their tariffs.
package zone

import (
	"errors"
	"fmt"
	"strings"

	"courierhub/internal/core/domain/model/kernel"
	"courierhub/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

var ErrZoneIsInactive = errs.NewConflictError("zone is not active")

// Tariff is the price list of a zone. Amounts are in minor currency units.
type Tariff struct {
	BasePrice        kernel.Money
	PricePerKm       kernel.Money
	SurgeMultiplier  decimal.Decimal
	MediumSupplement kernel.Money
	LargeSupplement  kernel.Money
}

func (t Tariff) Validate() error {
	var errList []error
	if t.BasePrice < 0 {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause("base price", fmt.Errorf("%d is negative", t.BasePrice)))
	}
	if t.PricePerKm < 0 {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause("price per km", fmt.Errorf("%d is negative", t.PricePerKm)))
	}
	if t.SurgeMultiplier.LessThan(decimal.NewFromInt(1)) {
		errList = append(errList, errs.NewValueIsOutOfRangeError("surge multiplier", t.SurgeMultiplier.String(), 1, "unbounded"))
	}
	if t.MediumSupplement < 0 || t.LargeSupplement < 0 {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause("size supplement", errors.New("supplements must not be negative")))
	}
	return errors.Join(errList...)
}

// Zone is a named pricing area.
type Zone struct {
	ID     kernel.UUID
	Name   string
	Active bool
	Tariff Tariff
}

func NewZone(id kernel.UUID, name string, active bool, tariff Tariff) (Zone, error) {
	name = strings.TrimSpace(name)
	var nameErr error
	if name == "" {
		nameErr = errs.NewValueIsRequiredError("name")
	}
	if err := errors.Join(id.Validate(), nameErr, tariff.Validate()); err != nil {
		return Zone{}, err
	}
	return Zone{ID: id, Name: name, Active: active, Tariff: tariff}, nil
}

// ActiveTariff returns the tariff or ErrZoneIsInactive.
func (z Zone) ActiveTariff() (Tariff, error) {
	if !z.Active {
		return Tariff{}, ErrZoneIsInactive
	}
	return z.Tariff, nil
}

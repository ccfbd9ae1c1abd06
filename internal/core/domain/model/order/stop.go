package order

import (
	"errors"
	"strings"

	"courierhub/internal/core/domain/model/kernel"
	"courierhub/internal/pkg/errs"
)

// Stop is a pickup or dropoff point with the contact to meet there.
type Stop struct {
	Location     kernel.Location
	Address      string
	ContactName  string
	ContactPhone string
}

func NewStop(location kernel.Location, address, contactName, contactPhone string) (Stop, error) {
	stop := Stop{
		Location:     location,
		Address:      strings.TrimSpace(address),
		ContactName:  strings.TrimSpace(contactName),
		ContactPhone: strings.TrimSpace(contactPhone),
	}
	if err := stop.Validate(); err != nil {
		return Stop{}, err
	}
	return stop, nil
}

func (s Stop) Validate() error {
	var addrErr error
	if s.Address == "" {
		addrErr = errs.NewValueIsRequiredError("address")
	}
	return errors.Join(s.Location.Validate(), addrErr)
}

package order

import (
	"fmt"
	"strings"

	"courierhub/internal/pkg/errs"
)

// Size classifies the parcel for tariff supplements.
type Size string

const (
	SizeSmall  Size = "small"
	SizeMedium Size = "medium"
	SizeLarge  Size = "large"
)

func (s Size) Validate() error {
	switch s {
	case SizeSmall, SizeMedium, SizeLarge:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("package size", fmt.Errorf("%q is not a valid size", string(s)))
	}
}

// Package describes what is being delivered.
type Package struct {
	Description string
	Size        Size
	WeightKg    float64
}

func NewPackage(description string, size Size, weightKg float64) (Package, error) {
	if size == "" {
		size = SizeSmall
	}
	if err := size.Validate(); err != nil {
		return Package{}, err
	}
	if weightKg < 0 {
		return Package{}, errs.NewValueIsInvalidErrorWithCause("weight", fmt.Errorf("%v is negative", weightKg))
	}
	return Package{
		Description: strings.TrimSpace(description),
		Size:        size,
		WeightKg:    weightKg,
	}, nil
}

package kernel

import (
	"fmt"

	"courierhub/internal/pkg/errs"
)

// Role of the party performing an operation.
type Role string

const (
	RoleClient  Role = "client"
	RoleCourier Role = "courier"
	RoleAdmin   Role = "admin"
	RoleSystem  Role = "system"
)

func (r Role) Validate() error {
	switch r {
	case RoleClient, RoleCourier, RoleAdmin, RoleSystem:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("role", fmt.Errorf("%q is not a known role", string(r)))
	}
}

// Actor is who performed an operation; recorded in order history and withdrawals.
type Actor struct {
	ID   UUID
	Role Role
}

var systemActorID = UUID{id: [16]byte{15: 1}}

// SystemActor is used by scheduled jobs.
func SystemActor() Actor {
	return Actor{ID: systemActorID, Role: RoleSystem}
}

func NewActor(id UUID, role Role) (Actor, error) {
	if err := id.Validate(); err != nil {
		return Actor{}, err
	}
	if err := role.Validate(); err != nil {
		return Actor{}, err
	}
	return Actor{ID: id, Role: role}, nil
}

func (a Actor) Is(id UUID) bool {
	return a.ID.IsEqual(id)
}

func (a Actor) String() string {
	return fmt.Sprintf("%s:%s", a.Role, a.ID)
}

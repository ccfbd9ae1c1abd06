package http

import (
	"fmt"
	"slices"
	"strings"

	"courierhub/internal/core/domain/model/kernel"
	"courierhub/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

const (
	HeaderActorID   = "X-Actor-ID"
	HeaderActorRole = "X-Actor-Role"
)

// actorFrom reads the caller identity set by the gateway. Authentication happens upstream;
// this service only trusts the headers. When roles are given the actor must hold one of them.
func actorFrom(c echo.Context, roles ...kernel.Role) (kernel.Actor, error) {
	rawID := strings.TrimSpace(c.Request().Header.Get(HeaderActorID))
	rawRole := strings.TrimSpace(c.Request().Header.Get(HeaderActorRole))
	if rawID == "" || rawRole == "" {
		return kernel.Actor{}, ErrUnauthenticated
	}

	id, err := kernel.ParseUUID(rawID)
	if err != nil {
		return kernel.Actor{}, fmt.Errorf("%w: %s", ErrUnauthenticated, err)
	}
	role := kernel.Role(strings.ToLower(rawRole))
	if role == kernel.RoleSystem || role.Validate() != nil {
		return kernel.Actor{}, fmt.Errorf("%w: unknown role %q", ErrUnauthenticated, rawRole)
	}

	actor := kernel.Actor{ID: id, Role: role}
	if len(roles) > 0 && !slices.Contains(roles, role) {
		return kernel.Actor{}, errs.NewForbiddenError(id.String(), c.Request().Method+" "+c.Path())
	}
	return actor, nil
}

// Package dbutil holds the helpers shared by the GORM repositories.
package dbutil

import (
	"errors"
	"time"

	"courierhub/internal/core/domain/model/kernel"
	"courierhub/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const uniqueViolation = "23505"

// EventSource is an aggregate that records domain events.
type EventSource interface {
	DomainEvents() []kernel.DomainEvent
	ClearDomainEvents()
}

// Tracker collects aggregates written in a unit of work so their events can be
// published after commit.
type Tracker interface {
	Track(aggregate EventSource)
}

// IsUniqueViolation reports whether err is a Postgres unique violation, optionally of
// the named constraint.
func IsUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

// NotFound converts gorm.ErrRecordNotFound into an ObjectNotFoundError.
func NotFound(err error, entity string, id kernel.UUID) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.NewObjectNotFoundError(entity, id.String())
	}
	return err
}

func ID(u uuid.UUID) (kernel.UUID, error) {
	return kernel.UUIDFrom(u)
}

func OptionalID(u *uuid.UUID) (*kernel.UUID, error) {
	if u == nil {
		return nil, nil
	}
	id, err := kernel.UUIDFrom(*u)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func RawOptionalID(id *kernel.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	raw := id.Bytes()
	return &raw
}

// OptionalLocation builds a location from nullable columns; both must be set.
func OptionalLocation(lat, lon *float64) (*kernel.Location, error) {
	if lat == nil || lon == nil {
		return nil, nil
	}
	loc, err := kernel.NewLocation(*lat, *lon)
	if err != nil {
		return nil, err
	}
	return &loc, nil
}

func LocationColumns(loc *kernel.Location) (lat, lon *float64) {
	if loc == nil {
		return nil, nil
	}
	la, lo := loc.Lat(), loc.Lon()
	return &la, &lo
}

// UTC normalizes an optional timestamp read from the database.
func UTC(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

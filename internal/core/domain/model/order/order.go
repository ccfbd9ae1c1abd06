package order

import (
	"errors"
	"strings"
	"time"

	"courierhub/internal/core/domain/model/kernel"
	"courierhub/internal/pkg/errs"
	"courierhub/internal/pkg/guard"
)

const (
	EventCreated   = "OrderCreated"
	EventAssigned  = "OrderAssigned"
	EventPickedUp  = "OrderPickedUp"
	EventDelivered = "OrderDelivered"
	EventCancelled = "OrderCancelled"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not created through
	// NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("order must be created via NewOrder constructor")

	// ErrAlreadyAssigned is the conflict reported to every losing accept.
	ErrAlreadyAssigned = errs.NewConflictError("already assigned")
)

// StatusChange is returned by every mutating operation so the caller can append history.
// From is empty for the creation entry.
type StatusChange struct {
	From Status
	To   Status
	At   time.Time
}

// Order is the aggregate root of a single delivery request from pickup to dropoff.
//
// Invariants:
//   - status changes only through the transition table (Transition)
//   - courierID is set if and only if status is assigned, picked_up or delivered
//   - the price breakdown is frozen at creation
//   - orders are never deleted; cancelled is the retirement state
type Order struct {
	kernel.EventRecorder

	id        kernel.UUID
	clientID  kernel.UUID
	courierID *kernel.UUID
	zoneID    kernel.UUID

	pickup  Stop
	dropoff Stop
	pkg     Package
	price   Price

	status             Status
	cancellationReason string

	createdAt   time.Time
	assignedAt  *time.Time
	pickedUpAt  *time.Time
	deliveredAt *time.Time
	cancelledAt *time.Time

	version int

	guard guard.ConstructorGuard
}

// NewOrder creates a pending order and raises OrderCreated.
//
// Example:
//
//	o, change, err := order.NewOrder(kernel.NewUUID(), clientID, zoneID, pickup, dropoff, pkg, price, time.Now())
//	if err != nil {
//	    // missing or invalid coordinates, addresses or identifiers
//	}
//	history := order.NewHistoryEntry(o.ID(), change, actor, nil)
func NewOrder(
	id, clientID, zoneID kernel.UUID,
	pickup, dropoff Stop,
	pkg Package,
	price Price,
	now time.Time,
) (*Order, StatusChange, error) {
	if err := errors.Join(
		id.Validate(),
		clientID.Validate(),
		zoneID.Validate(),
		pickup.Validate(),
		dropoff.Validate(),
		pkg.Size.Validate(),
		validatePrice(price),
	); err != nil {
		return nil, StatusChange{}, err
	}

	o := &Order{
		id:        id,
		clientID:  clientID,
		zoneID:    zoneID,
		pickup:    pickup,
		dropoff:   dropoff,
		pkg:       pkg,
		price:     price,
		status:    Pending,
		createdAt: now.UTC(),
		version:   1,
		guard:     guard.NewConstructorGuard(),
	}

	o.raise(EventCreated, now, map[string]any{
		"client_id":   clientID.String(),
		"total_price": price.TotalPrice.Int64(),
	})

	return o, StatusChange{To: Pending, At: o.createdAt}, nil
}

// Snapshot is the full persisted state of an order.
type Snapshot struct {
	ID                 kernel.UUID
	ClientID           kernel.UUID
	CourierID          *kernel.UUID
	ZoneID             kernel.UUID
	Pickup             Stop
	Dropoff            Stop
	Package            Package
	Price              Price
	Status             Status
	CancellationReason string
	CreatedAt          time.Time
	AssignedAt         *time.Time
	PickedUpAt         *time.Time
	DeliveredAt        *time.Time
	CancelledAt        *time.Time
	Version            int
}

// RestoreOrder rebuilds an order loaded from storage and rejects rows that break the invariants.
func RestoreOrder(s Snapshot) (*Order, error) {
	if err := errors.Join(
		s.ID.Validate(),
		s.ClientID.Validate(),
		s.Status.Validate(),
	); err != nil {
		return nil, err
	}

	if s.Status.RequiresCourier() != (s.CourierID != nil) {
		return nil, errs.NewValueIsInvalidErrorWithCause("courier",
			errors.New("courier must be set exactly when the order is assigned, picked up or delivered"))
	}

	return &Order{
		id:                 s.ID,
		clientID:           s.ClientID,
		courierID:          s.CourierID,
		zoneID:             s.ZoneID,
		pickup:             s.Pickup,
		dropoff:            s.Dropoff,
		pkg:                s.Package,
		price:              s.Price,
		status:             s.Status,
		cancellationReason: s.CancellationReason,
		createdAt:          s.CreatedAt,
		assignedAt:         s.AssignedAt,
		pickedUpAt:         s.PickedUpAt,
		deliveredAt:        s.DeliveredAt,
		cancelledAt:        s.CancelledAt,
		version:            s.Version,
		guard:              guard.NewConstructorGuard(),
	}, nil
}

// Snapshot exports the state for persistence.
func (o *Order) Snapshot() Snapshot {
	return Snapshot{
		ID:                 o.id,
		ClientID:           o.clientID,
		CourierID:          o.courierID,
		ZoneID:             o.zoneID,
		Pickup:             o.pickup,
		Dropoff:            o.dropoff,
		Package:            o.pkg,
		Price:              o.price,
		Status:             o.status,
		CancellationReason: o.cancellationReason,
		CreatedAt:          o.createdAt,
		AssignedAt:         o.assignedAt,
		PickedUpAt:         o.pickedUpAt,
		DeliveredAt:        o.deliveredAt,
		CancelledAt:        o.cancelledAt,
		Version:            o.version,
	}
}

func (o *Order) Validate() error {
	if o == nil {
		return ErrOrderIsNotConstructed
	}
	return o.guard.Validate(ErrOrderIsNotConstructed)
}

func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

func (o *Order) ID() kernel.UUID {
	return o.id
}

func (o *Order) ClientID() kernel.UUID {
	return o.clientID
}

func (o *Order) CourierID() *kernel.UUID {
	return o.courierID
}

func (o *Order) ZoneID() kernel.UUID {
	return o.zoneID
}

func (o *Order) Pickup() Stop {
	return o.pickup
}

func (o *Order) Dropoff() Stop {
	return o.dropoff
}

func (o *Order) Package() Package {
	return o.pkg
}

func (o *Order) Price() Price {
	return o.price
}

func (o *Order) Status() Status {
	return o.status
}

func (o *Order) CancellationReason() string {
	return o.cancellationReason
}

func (o *Order) CreatedAt() time.Time {
	return o.createdAt
}

func (o *Order) AssignedAt() *time.Time {
	return o.assignedAt
}

func (o *Order) PickedUpAt() *time.Time {
	return o.pickedUpAt
}

func (o *Order) DeliveredAt() *time.Time {
	return o.deliveredAt
}

func (o *Order) CancelledAt() *time.Time {
	return o.cancelledAt
}

func (o *Order) Version() int {
	return o.version
}

func (o *Order) CourierEarnings() kernel.Money {
	return o.price.CourierEarnings
}

// IsAssignedTo reports whether courierID is the courier currently holding the order.
func (o *Order) IsAssignedTo(courierID kernel.UUID) bool {
	return o.courierID != nil && o.courierID.IsEqual(courierID)
}

// IsParticipant reports whether the actor is the client or the assigned courier.
func (o *Order) IsParticipant(actor kernel.Actor) bool {
	switch actor.Role {
	case kernel.RoleClient:
		return actor.Is(o.clientID)
	case kernel.RoleCourier:
		return o.IsAssignedTo(actor.ID)
	default:
		return false
	}
}

// IsStale reports whether the order has waited in pending longer than window.
func (o *Order) IsStale(now time.Time, window time.Duration) bool {
	return o.status == Pending && now.Sub(o.createdAt) > window
}

// Accept assigns the order to courierID. Only a pending order without a courier can be
// accepted; any other state is reported as already assigned or as an illegal transition.
func (o *Order) Accept(courierID kernel.UUID, now time.Time) (StatusChange, error) {
	if err := courierID.Validate(); err != nil {
		return StatusChange{}, err
	}
	if o.courierID != nil {
		return StatusChange{}, ErrAlreadyAssigned
	}

	change, err := o.apply(Assigned, now)
	if err != nil {
		return StatusChange{}, err
	}

	o.courierID = &courierID
	o.assignedAt = &change.At
	o.raise(EventAssigned, now, map[string]any{"courier_id": courierID.String()})
	return change, nil
}

// ChangeStatus performs a participant driven transition (picked_up, delivered or cancelled).
// Assignment is only possible through Accept.
func (o *Order) ChangeStatus(actor kernel.Actor, to Status, now time.Time) (StatusChange, error) {
	if err := to.Validate(); err != nil {
		return StatusChange{}, err
	}
	if err := o.AuthorizeTransition(actor, to); err != nil {
		return StatusChange{}, err
	}
	if to == Cancelled {
		return o.cancel("", now)
	}

	change, err := o.apply(to, now)
	if err != nil {
		return StatusChange{}, err
	}

	switch to {
	case PickedUp:
		o.pickedUpAt = &change.At
		o.raise(EventPickedUp, now, o.courierPayload())
	case Delivered:
		o.deliveredAt = &change.At
		payload := o.courierPayload()
		payload["courier_earnings"] = o.price.CourierEarnings.Int64()
		o.raise(EventDelivered, now, payload)
	}
	return change, nil
}

// Cancel retires the order. It is allowed while pending, assigned or picked up;
// a delivered or already cancelled order yields a ConflictError.
func (o *Order) Cancel(actor kernel.Actor, reason string, now time.Time) (StatusChange, error) {
	if err := o.AuthorizeTransition(actor, Cancelled); err != nil {
		return StatusChange{}, err
	}
	return o.cancel(reason, now)
}

// AuthorizeTransition checks that actor may request the move to `to`.
//
//   - nobody may move an order to assigned directly, accept is the only way in
//   - picked_up and delivered belong to the assigned courier (and admins)
//   - the client, the assigned courier, admins and the system may cancel
func (o *Order) AuthorizeTransition(actor kernel.Actor, to Status) error {
	action := "move order " + o.id.String() + " to " + string(to)

	switch to {
	case Assigned:
		return errs.NewForbiddenError(actor.ID.String(), "assign order "+o.id.String()+" without accepting it")
	case PickedUp, Delivered:
		if actor.Role == kernel.RoleAdmin {
			return nil
		}
		if actor.Role == kernel.RoleCourier && o.IsAssignedTo(actor.ID) {
			return nil
		}
	case Cancelled:
		if actor.Role == kernel.RoleAdmin || actor.Role == kernel.RoleSystem {
			return nil
		}
		if o.IsParticipant(actor) {
			return nil
		}
	default:
		if actor.Role == kernel.RoleAdmin {
			return nil
		}
	}
	return errs.NewForbiddenError(actor.ID.String(), action)
}

func (o *Order) cancel(reason string, now time.Time) (StatusChange, error) {
	if !o.status.IsCancellable() {
		return StatusChange{}, errs.NewConflictError("order is already " + string(o.status))
	}

	previousCourier := o.courierID
	change, err := o.apply(Cancelled, now)
	if err != nil {
		return StatusChange{}, err
	}

	o.courierID = nil
	o.cancelledAt = &change.At
	o.cancellationReason = strings.TrimSpace(reason)

	payload := map[string]any{"reason": o.cancellationReason, "previous_status": string(change.From)}
	if previousCourier != nil {
		payload["courier_id"] = previousCourier.String()
	}
	o.raise(EventCancelled, now, payload)
	return change, nil
}

// apply is the only place where the status field is written.
func (o *Order) apply(to Status, now time.Time) (StatusChange, error) {
	next, err := Transition(o.status, to)
	if err != nil {
		return StatusChange{}, err
	}

	change := StatusChange{From: o.status, To: next, At: now.UTC()}
	o.status = next
	o.version++
	return change, nil
}

func (o *Order) raise(name string, now time.Time, payload map[string]any) {
	if payload == nil {
		payload = map[string]any{}
	}
	payload["order_id"] = o.id.String()
	payload["status"] = string(o.status)
	o.Raise(kernel.NewDomainEvent(name, o.id, now, payload))
}

func (o *Order) courierPayload() map[string]any {
	payload := map[string]any{}
	if o.courierID != nil {
		payload["courier_id"] = o.courierID.String()
	}
	return payload
}

func validatePrice(p Price) error {
	if p.TotalPrice < 0 || p.PlatformFee < 0 || p.CourierEarnings < 0 {
		return errs.NewValueIsInvalidErrorWithCause("price", errors.New("amounts must not be negative"))
	}
	if p.PlatformFee+p.CourierEarnings != p.TotalPrice {
		return errs.NewValueIsInvalidErrorWithCause("price", errors.New("fee and earnings must add up to the total"))
	}
	return nil
}

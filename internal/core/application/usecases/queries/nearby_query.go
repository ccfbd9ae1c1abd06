package queries

import (
	"context"
	"errors"

	"courierhub/internal/core/domain/model/kernel"
	"courierhub/internal/core/domain/services"
	"courierhub/internal/core/ports"
	"courierhub/internal/pkg/guard"
)

var ErrNearbyQueryIsNotConstructed = errors.New(
	"NearbyQuery must be created via NewNearbyQuery constructor",
)

// NearbyQuery is a radius search around Origin. Zero radius and limit select the
// matcher defaults (5 km, 10 results).
type NearbyQuery struct {
	origin kernel.Location
	match  services.MatchQuery
	guard  guard.ConstructorGuard
}

func NewNearbyQuery(origin kernel.Location, radiusKm float64, limit int) (NearbyQuery, error) {
	match := services.MatchQuery{RadiusKm: radiusKm, Limit: limit}.WithDefaults()
	if err := errors.Join(origin.Validate(), match.Validate()); err != nil {
		return NearbyQuery{}, err
	}
	return NearbyQuery{origin: origin, match: match, guard: guard.NewConstructorGuard()}, nil
}

func (q NearbyQuery) Validate() error {
	return q.guard.Validate(ErrNearbyQueryIsNotConstructed)
}

func (q NearbyQuery) Origin() kernel.Location {
	return q.origin
}

func (q NearbyQuery) RadiusKm() float64 {
	return q.match.RadiusKm
}

func (q NearbyQuery) Limit() int {
	return q.match.Limit
}

// NearbyCouriersQueryHandler finds matchable couriers around a pickup point, closest first.
// Storage prefilters by bounding box; the exact radius and ordering come from the matcher.
type NearbyCouriersQueryHandler struct {
	uowFactory ports.UnitOfWorkFactory
	matcher    services.CourierMatcher
}

func NewNearbyCouriersQueryHandler(uowFactory ports.UnitOfWorkFactory, matcher services.CourierMatcher) NearbyCouriersQueryHandler {
	return NearbyCouriersQueryHandler{uowFactory: uowFactory, matcher: matcher}
}

func (h NearbyCouriersQueryHandler) Handle(ctx context.Context, query NearbyQuery) ([]services.CourierMatch, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	box, err := query.origin.BoundingBox(query.match.RadiusKm)
	if err != nil {
		return nil, err
	}
	candidates, err := h.uowFactory.Create().CourierRepository().AvailableCouriersNear(ctx, box)
	if err != nil {
		return nil, err
	}
	return h.matcher.RankCouriers(query.origin, candidates, query.match)
}

// AvailableOrdersQueryHandler lists pending orders whose pickup is near a courier.
type AvailableOrdersQueryHandler struct {
	uowFactory ports.UnitOfWorkFactory
	matcher    services.CourierMatcher
}

func NewAvailableOrdersQueryHandler(uowFactory ports.UnitOfWorkFactory, matcher services.CourierMatcher) AvailableOrdersQueryHandler {
	return AvailableOrdersQueryHandler{uowFactory: uowFactory, matcher: matcher}
}

func (h AvailableOrdersQueryHandler) Handle(ctx context.Context, query NearbyQuery) ([]services.OrderMatch, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	box, err := query.origin.BoundingBox(query.match.RadiusKm)
	if err != nil {
		return nil, err
	}
	candidates, err := h.uowFactory.Create().OrderRepository().PendingInBox(ctx, box)
	if err != nil {
		return nil, err
	}
	return h.matcher.RankOrders(query.origin, candidates, query.match)
}

package services

import (
	"cmp"
	"slices"

	"courierhub/internal/core/domain/model/courier"
	"courierhub/internal/core/domain/model/kernel"
	"courierhub/internal/core/domain/model/order"
	"courierhub/internal/pkg/errs"
)

const (
	DefaultRadiusKm = 5.0
	DefaultLimit    = 10
	MaxLimit        = 100
)

// MatchQuery bounds a search around a point. Zero values fall back to the defaults.
type MatchQuery struct {
	RadiusKm float64
	Limit    int
}

func (q MatchQuery) WithDefaults() MatchQuery {
	if q.RadiusKm == 0 {
		q.RadiusKm = DefaultRadiusKm
	}
	if q.Limit == 0 {
		q.Limit = DefaultLimit
	}
	return q
}

func (q MatchQuery) Validate() error {
	if q.RadiusKm <= 0 {
		return errs.NewValueIsOutOfRangeError("radius_km", q.RadiusKm, "0 (exclusive)", "unbounded")
	}
	if q.Limit < 1 || q.Limit > MaxLimit {
		return errs.NewValueIsOutOfRangeError("limit", q.Limit, 1, MaxLimit)
	}
	return nil
}

// Match is a candidate together with its distance from the search origin.
type Match[T any] struct {
	Candidate  T
	DistanceKm float64
}

type CourierMatch = Match[*courier.Courier]

type OrderMatch = Match[*order.Order]

// CourierMatcher ranks candidates by haversine distance. Candidates are usually
// prefiltered by a bounding box in storage; the matcher applies the exact radius.
type CourierMatcher struct{}

func NewCourierMatcher() CourierMatcher {
	return CourierMatcher{}
}

// RankCouriers returns couriers that are available, have a known location and lie within
// the radius of pickup, nearest first, ties broken by courier id. No match is not an error.
func (m CourierMatcher) RankCouriers(pickup kernel.Location, candidates []*courier.Courier, q MatchQuery) ([]CourierMatch, error) {
	return rank(pickup, candidates, q, func(c *courier.Courier) (*kernel.Location, kernel.UUID, error) {
		if err := c.Validate(); err != nil {
			return nil, kernel.UUID{}, err
		}
		if !c.CanBeMatched() {
			return nil, c.ID(), nil
		}
		return c.Location(), c.ID(), nil
	})
}

// RankOrders returns pending orders whose pickup lies within the radius of the courier,
// with the same ordering rules as RankCouriers.
func (m CourierMatcher) RankOrders(origin kernel.Location, candidates []*order.Order, q MatchQuery) ([]OrderMatch, error) {
	return rank(origin, candidates, q, func(o *order.Order) (*kernel.Location, kernel.UUID, error) {
		if err := o.Validate(); err != nil {
			return nil, kernel.UUID{}, err
		}
		if o.Status() != order.Pending {
			return nil, o.ID(), nil
		}
		pickup := o.Pickup().Location
		return &pickup, o.ID(), nil
	})
}

// locate returns nil location for candidates that must be skipped.
type locate[T any] func(T) (*kernel.Location, kernel.UUID, error)

func rank[T any](origin kernel.Location, candidates []T, q MatchQuery, at locate[T]) ([]Match[T], error) {
	if err := origin.Validate(); err != nil {
		return nil, err
	}
	q = q.WithDefaults()
	if err := q.Validate(); err != nil {
		return nil, err
	}

	type ranked struct {
		match Match[T]
		id    string
	}

	found := make([]ranked, 0, len(candidates))
	for _, c := range candidates {
		loc, id, err := at(c)
		if err != nil {
			return nil, err
		}
		if loc == nil {
			continue
		}

		distance, err := origin.DistanceKm(*loc)
		if err != nil {
			return nil, err
		}
		if distance > q.RadiusKm {
			continue
		}
		found = append(found, ranked{match: Match[T]{Candidate: c, DistanceKm: distance}, id: id.String()})
	}

	slices.SortFunc(found, func(a, b ranked) int {
		return cmp.Or(
			cmp.Compare(a.match.DistanceKm, b.match.DistanceKm),
			cmp.Compare(a.id, b.id),
		)
	})

	if len(found) > q.Limit {
		found = found[:q.Limit]
	}

	result := make([]Match[T], 0, len(found))
	for _, r := range found {
		result = append(result, r.match)
	}
	return result, nil
}

package kernel

import (
	"errors"
	"fmt"
	"math"

	"courierhub/internal/pkg/errs"
	"courierhub/internal/pkg/guard"
)

const (
	// EarthRadiusKm is the mean Earth radius used by the haversine formula.
	EarthRadiusKm = 6371.0

	LatitudeMin  = -90.0
	LatitudeMax  = 90.0
	LongitudeMin = -180.0
	LongitudeMax = 180.0
)

var ErrLocationIsNotConstructed = errs.NewValueIsRequiredError(
	"location must be created via NewLocation")

// Location is a WGS84 point. It is immutable once constructed.
type Location struct { //nolint:recvcheck //using for validation
	lat   float64
	lon   float64
	guard guard.ConstructorGuard
}

func NewLocation(lat, lon float64) (Location, error) {
	loc := Location{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(loc.setLat(lat), loc.setLon(lon)); err != nil {
		return Location{}, err
	}

	return loc, nil
}

func (l Location) Validate() error {
	return l.guard.Validate(ErrLocationIsNotConstructed)
}

func (l Location) Lat() float64 {
	return l.lat
}

func (l Location) Lon() float64 {
	return l.lon
}

func (l Location) String() string {
	return fmt.Sprintf("Location(%.6f,%.6f)", l.lat, l.lon)
}

func (l Location) IsEqual(other Location) (bool, error) {
	if err := errors.Join(l.Validate(), other.Validate()); err != nil {
		return false, err
	}

	return l.lat == other.lat && l.lon == other.lon, nil
}

// DistanceKm returns the great-circle distance to other using the haversine formula.
// The result is not rounded.
func (l Location) DistanceKm(other Location) (float64, error) {
	if err := errors.Join(l.Validate(), other.Validate()); err != nil {
		return 0, err
	}

	return haversineKm(l.lat, l.lon, other.lat, other.lon), nil
}

// BoundingBox returns a box that contains every point within radiusKm of l.
// The box is a superset; callers must still filter by DistanceKm.
func (l Location) BoundingBox(radiusKm float64) (BoundingBox, error) {
	if err := l.Validate(); err != nil {
		return BoundingBox{}, err
	}
	if radiusKm <= 0 {
		return BoundingBox{}, errs.NewValueIsInvalidErrorWithCause(
			"radius", fmt.Errorf("%v is not greater than 0", radiusKm))
	}

	latDelta := radiusKm / EarthRadiusKm * (180 / math.Pi)
	box := BoundingBox{
		MinLat: math.Max(l.lat-latDelta, LatitudeMin),
		MaxLat: math.Min(l.lat+latDelta, LatitudeMax),
		MinLon: LongitudeMin,
		MaxLon: LongitudeMax,
	}

	cosLat := math.Cos(l.lat * math.Pi / 180)
	if box.MinLat > LatitudeMin && box.MaxLat < LatitudeMax && cosLat > 0 {
		lonDelta := latDelta / cosLat
		if lonDelta < 180 && l.lon-lonDelta >= LongitudeMin && l.lon+lonDelta <= LongitudeMax {
			box.MinLon = l.lon - lonDelta
			box.MaxLon = l.lon + lonDelta
		}
	}

	return box, nil
}

// BoundingBox is a lat/lon rectangle used to prefilter candidates in storage.
type BoundingBox struct {
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64
}

// Contains reports whether l lies inside the box, edges included.
func (b BoundingBox) Contains(l Location) bool {
	return l.lat >= b.MinLat && l.lat <= b.MaxLat && l.lon >= b.MinLon && l.lon <= b.MaxLon
}

// RoundKm rounds a distance to two decimals for display. Pricing never uses it.
func RoundKm(km float64) float64 {
	return math.Round(km*100) / 100
}

func (l *Location) setLat(lat float64) error {
	if math.IsNaN(lat) || lat < LatitudeMin || lat > LatitudeMax {
		return errs.NewValueIsOutOfRangeError("latitude", lat, LatitudeMin, LatitudeMax)
	}

	l.lat = lat
	return nil
}

func (l *Location) setLon(lon float64) error {
	if math.IsNaN(lon) || lon < LongitudeMin || lon > LongitudeMax {
		return errs.NewValueIsOutOfRangeError("longitude", lon, LongitudeMin, LongitudeMax)
	}

	l.lon = lon
	return nil
}

func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	const rad = math.Pi / 180

	dLat := (lat2 - lat1) * rad
	dLon := (lon2 - lon1) * rad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLon/2)*math.Sin(dLon/2)

	return 2 * EarthRadiusKm * math.Asin(math.Min(1, math.Sqrt(a)))
}

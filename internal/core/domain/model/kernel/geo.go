package kernel

import (
	"errors"
	"fmt"
	"math"

	"marketplace/internal/pkg/errs"
	"marketplace/internal/pkg/guard"
)

const (
	// GeoMinLatitude and GeoMaxLatitude bound valid latitudes in degrees.
	GeoMinLatitude float64 = -90
	GeoMaxLatitude float64 = 90
	// GeoMinLongitude and GeoMaxLongitude bound valid longitudes in degrees.
	GeoMinLongitude float64 = -180
	GeoMaxLongitude float64 = 180

	// earthRadiusKm is the mean Earth radius used by the haversine formula.
	earthRadiusKm = 6371.0
)

// Delivery zone labels. Zones are a coarse quadrant heuristic around the
// market precinct, used to label newly created routes; they never gate route
// assignment.
const (
	ZoneNorth   = "NORTH"
	ZoneSouth   = "SOUTH"
	ZoneEast    = "EAST"
	ZoneWest    = "WEST"
	ZoneCentral = "CENTRAL"
)

// Quadrant thresholds around the market precinct.
const (
	zoneNorthLatitude = -33.85
	zoneSouthLatitude = -33.95
	zoneEastLongitude = 151.22
	zoneWestLongitude = 151.18
)

// ErrGeoPointIsNotConstructed is returned when using an improperly initialized
// GeoPoint. GeoPoints must be created via NewGeoPoint.
var ErrGeoPointIsNotConstructed = errs.NewValueIsRequiredError(
	"geo point must be created via NewGeoPoint constructor")

// GeoPoint is an immutable latitude/longitude pair with validated bounds.
// It locates delivery stops and is the basis of the great-circle distance used
// by the route assignment heuristic.
//
// Example:
//
//	point, err := kernel.NewGeoPoint(-33.87, 151.21)
//	if err != nil {
//	    // Handle validation error
//	}
//	fmt.Println(point.Zone()) // CENTRAL
type GeoPoint struct { //nolint:recvcheck //using for validation
	latitude  float64
	longitude float64
	guard     guard.ConstructorGuard
}

// NewGeoPoint creates a GeoPoint with the specified coordinates.
// Latitude must be within [-90, 90] and longitude within [-180, 180].
func NewGeoPoint(latitude, longitude float64) (GeoPoint, error) {
	point := GeoPoint{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(point.setLatitude(latitude), point.setLongitude(longitude)); err != nil {
		return GeoPoint{}, err
	}

	return point, nil
}

// Validate checks that the GeoPoint was created through its constructor.
func (p GeoPoint) Validate() error {
	return p.guard.Validate(ErrGeoPointIsNotConstructed)
}

// Latitude returns the latitude in degrees.
func (p GeoPoint) Latitude() float64 {
	return p.latitude
}

// Longitude returns the longitude in degrees.
func (p GeoPoint) Longitude() float64 {
	return p.longitude
}

// String returns a human-readable representation, e.g. "GeoPoint(-33.870000,151.210000)".
func (p GeoPoint) String() string {
	return fmt.Sprintf("GeoPoint(%f,%f)", p.latitude, p.longitude)
}

// IsEqual compares two geo points for coordinate equality.
// Both points must be properly constructed.
func (p GeoPoint) IsEqual(other GeoPoint) (bool, error) {
	if err := errors.Join(p.Validate(), other.Validate()); err != nil {
		return false, err
	}
	return p.latitude == other.latitude && p.longitude == other.longitude, nil
}

// DistanceTo calculates the great-circle distance to another point in
// kilometers using the haversine formula. Both points must be properly
// constructed.
func (p GeoPoint) DistanceTo(other GeoPoint) (float64, error) {
	if err := errors.Join(p.Validate(), other.Validate()); err != nil {
		return 0, err
	}

	latDiff := toRadians(other.latitude - p.latitude)
	lngDiff := toRadians(other.longitude - p.longitude)

	a := math.Sin(latDiff/2)*math.Sin(latDiff/2) +
		math.Cos(toRadians(p.latitude))*math.Cos(toRadians(other.latitude))*
			math.Sin(lngDiff/2)*math.Sin(lngDiff/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c, nil
}

// Zone derives the delivery zone label for this point from the quadrant
// thresholds. Checked north, south, east, west in that order; everything
// inside the thresholds is CENTRAL.
func (p GeoPoint) Zone() string {
	switch {
	case p.latitude > zoneNorthLatitude:
		return ZoneNorth
	case p.latitude < zoneSouthLatitude:
		return ZoneSouth
	case p.longitude > zoneEastLongitude:
		return ZoneEast
	case p.longitude < zoneWestLongitude:
		return ZoneWest
	default:
		return ZoneCentral
	}
}

func (p *GeoPoint) setLatitude(latitude float64) error {
	if latitude < GeoMinLatitude || latitude > GeoMaxLatitude {
		return errs.NewValueIsOutOfRangeError("latitude", latitude, GeoMinLatitude, GeoMaxLatitude)
	}
	p.latitude = latitude
	return nil
}

func (p *GeoPoint) setLongitude(longitude float64) error {
	if longitude < GeoMinLongitude || longitude > GeoMaxLongitude {
		return errs.NewValueIsOutOfRangeError("longitude", longitude, GeoMinLongitude, GeoMaxLongitude)
	}
	p.longitude = longitude
	return nil
}

func toRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}

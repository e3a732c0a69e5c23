package services

import (
	"errors"
	"math"

	"marketplace/internal/core/domain/model/fulfillment"
	"marketplace/internal/core/domain/model/kernel"
)

// ErrRouteNotFound is returned when no route can take the order: every
// candidate is full, dispatched, lacks refrigeration, or none exist for the
// delivery date.
var ErrRouteNotFound = errors.New("route not found")

// RouteSelector is a domain service that places a delivery order on the best
// open route for its destination.
//
// Selection rules:
//   - only routes that can accommodate the load are considered
//   - routes covering the destination's zone are preferred
//   - among those, the route whose last stop is closest to the destination
//     wins, so each route grows toward nearby addresses
type RouteSelector struct {
	depot kernel.GeoPoint
}

// NewRouteSelector creates a selector anchored at the warehouse location.
// Empty routes measure distance from the depot.
func NewRouteSelector(depot kernel.GeoPoint) RouteSelector {
	return RouteSelector{depot: depot}
}

// SelectRoute picks the best route for a stop and adds the stop to it.
func (s RouteSelector) SelectRoute(
	stop *fulfillment.Stop,
	routes []*fulfillment.Route,
) (*fulfillment.Route, error) {
	if err := stop.Validate(); err != nil {
		return nil, err
	}

	best, err := s.findBestRoute(stop, routes)
	if err != nil {
		return nil, err
	}

	if err := best.AddStop(stop); err != nil {
		return nil, err
	}
	return best, nil
}

func (s RouteSelector) findBestRoute(
	stop *fulfillment.Stop,
	routes []*fulfillment.Route,
) (*fulfillment.Route, error) {
	zone := stop.Location().Zone()

	var (
		bestRoute    *fulfillment.Route
		bestDistance = math.MaxFloat64
		bestInZone   bool
	)

	for _, route := range routes {
		if err := route.Validate(); err != nil {
			return nil, err
		}
		if !route.CanAccommodate(stop.WeightKg(), stop.VolumeM3(), stop.Refrigerated()) {
			continue
		}

		inZone := route.Zone() == zone
		if bestInZone && !inZone {
			continue
		}

		from := s.depot
		if last := route.LastLocation(); last != nil {
			from = *last
		}
		distance, err := from.DistanceTo(stop.Location())
		if err != nil {
			return nil, err
		}

		// An in-zone route always beats an out-of-zone one.
		if (inZone && !bestInZone) || distance < bestDistance {
			bestRoute = route
			bestDistance = distance
			bestInZone = inZone
		}
	}

	if bestRoute == nil {
		return nil, ErrRouteNotFound
	}
	return bestRoute, nil
}

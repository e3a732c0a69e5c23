package fulfillment

import (
	"errors"
	"fmt"
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/errs"
	"marketplace/internal/pkg/guard"
)

const (
	// MaxStopsPerRoute bounds a single vehicle's daily route.
	MaxStopsPerRoute = 20

	// stopBaseServiceTime is the minimum time at any stop.
	stopBaseServiceTime = 10 * time.Minute
	// stopPerPackageServiceTime is added per package unloaded.
	stopPerPackageServiceTime = 2 * time.Minute
)

var (
	// ErrRouteIsNotConstructed is returned when a Route was not created
	// through NewRoute or RestoreRoute.
	ErrRouteIsNotConstructed = errors.New("Route must be created via NewRoute constructor")

	// ErrStopIsNotConstructed is returned when a Stop was not created through
	// NewStop or RestoreStop.
	ErrStopIsNotConstructed = errors.New("Stop must be created via NewStop constructor")

	// ErrRouteCapacityExceeded is returned when a stop cannot be added because
	// the route reached its stop limit or vehicle capacity.
	ErrRouteCapacityExceeded = errors.New("route capacity exceeded")

	// ErrRouteIsDispatched is returned when changing stops on a route that
	// already left the depot.
	ErrRouteIsDispatched = errors.New("route is already dispatched")
)

// ServiceTimeFor returns the expected time spent at a stop unloading the
// given number of packages.
func ServiceTimeFor(packages int) time.Duration {
	if packages < 0 {
		packages = 0
	}
	return stopBaseServiceTime + time.Duration(packages)*stopPerPackageServiceTime
}

// Stop is one delivery on a route: the destination, its position in the
// visiting order, and the load it drops off.
type Stop struct { //nolint:recvcheck //using for validation
	id           kernel.UUID
	orderID      kernel.UUID
	location     kernel.GeoPoint
	sequence     int
	packages     int
	weightKg     float64
	volumeM3     float64
	refrigerated bool

	guard guard.ConstructorGuard
}

// NewStop creates an unsequenced stop; the route assigns the sequence when
// the stop is added.
func NewStop(
	id kernel.UUID,
	orderID kernel.UUID,
	location kernel.GeoPoint,
	packages int,
	weightKg float64,
	volumeM3 float64,
	refrigerated bool,
) (*Stop, error) {
	stop := &Stop{
		packages:     packages,
		weightKg:     weightKg,
		volumeM3:     volumeM3,
		refrigerated: refrigerated,
		guard:        guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		stop.setID(id),
		stop.setOrderID(orderID),
		stop.setLocation(location),
	); err != nil {
		return nil, err
	}

	return stop, nil
}

// RestoreStop reconstructs a stop from persistence with its sequence.
func RestoreStop(
	id kernel.UUID,
	orderID kernel.UUID,
	location kernel.GeoPoint,
	sequence int,
	packages int,
	weightKg float64,
	volumeM3 float64,
	refrigerated bool,
) (*Stop, error) {
	stop, err := NewStop(id, orderID, location, packages, weightKg, volumeM3, refrigerated)
	if err != nil {
		return nil, err
	}

	stop.sequence = sequence
	return stop, nil
}

// Validate ensures the Stop was created through a constructor.
func (s *Stop) Validate() error {
	if s == nil {
		return ErrStopIsNotConstructed
	}
	return s.guard.Validate(ErrStopIsNotConstructed)
}

func (s *Stop) ID() kernel.UUID           { return s.id }
func (s *Stop) OrderID() kernel.UUID      { return s.orderID }
func (s *Stop) Location() kernel.GeoPoint { return s.location }
func (s *Stop) Sequence() int             { return s.sequence }
func (s *Stop) Packages() int             { return s.packages }
func (s *Stop) WeightKg() float64         { return s.weightKg }
func (s *Stop) VolumeM3() float64         { return s.volumeM3 }
func (s *Stop) Refrigerated() bool        { return s.refrigerated }

// ServiceTime returns the expected time spent at this stop.
func (s *Stop) ServiceTime() time.Duration {
	return ServiceTimeFor(s.packages)
}

func (s *Stop) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	s.id = id
	return nil
}

func (s *Stop) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	s.orderID = orderID
	return nil
}

func (s *Stop) setLocation(location kernel.GeoPoint) error {
	if err := location.Validate(); err != nil {
		return err
	}
	s.location = location
	return nil
}

// RouteStatus is the lifecycle state of a delivery route.
type RouteStatus int

const (
	RouteStatusUnknown RouteStatus = iota
	RouteStatusPlanning
	RouteStatusDispatched
	RouteStatusCompleted
)

func getRouteStatusStrings() map[RouteStatus]string {
	return map[RouteStatus]string{
		RouteStatusUnknown:    "unknown",
		RouteStatusPlanning:   "planning",
		RouteStatusDispatched: "dispatched",
		RouteStatusCompleted:  "completed",
	}
}

// RouteStatusFromString parses a persisted route status.
func RouteStatusFromString(value string) (RouteStatus, error) {
	for rs, name := range getRouteStatusStrings() {
		if name == value && rs != RouteStatusUnknown {
			return rs, nil
		}
	}
	return RouteStatusUnknown, errs.NewValueIsInvalidError("route status")
}

// Validate returns an error for the zero value.
func (s RouteStatus) Validate() error {
	if _, ok := getRouteStatusStrings()[s]; !ok || s == RouteStatusUnknown {
		return errs.NewValueIsInvalidError("route status")
	}
	return nil
}

func (s RouteStatus) String() string {
	if name, ok := getRouteStatusStrings()[s]; ok {
		return name
	}
	return "unknown"
}

// Route is a vehicle's delivery run for one day. It owns its stops and
// enforces the vehicle's weight, volume, refrigeration, and stop count
// limits. Stops can only change while the route is still in planning.
type Route struct { //nolint:recvcheck //using for validation
	id               kernel.UUID
	vehicleID        kernel.UUID
	date             time.Time
	zone             string
	capacityWeightKg float64
	capacityVolumeM3 float64
	refrigerated     bool
	status           RouteStatus
	stops            []*Stop

	guard guard.ConstructorGuard
}

// NewRoute creates an empty route in the planning state.
func NewRoute(
	id kernel.UUID,
	vehicleID kernel.UUID,
	date time.Time,
	zone string,
	capacityWeightKg float64,
	capacityVolumeM3 float64,
	refrigerated bool,
) (*Route, error) {
	route := &Route{
		date:         date,
		zone:         zone,
		refrigerated: refrigerated,
		status:       RouteStatusPlanning,
		guard:        guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		route.setID(id),
		route.setVehicleID(vehicleID),
		route.setCapacity(capacityWeightKg, capacityVolumeM3),
	); err != nil {
		return nil, err
	}

	return route, nil
}

// RestoreRoute reconstructs a route with its stops from persistence.
func RestoreRoute(
	id kernel.UUID,
	vehicleID kernel.UUID,
	date time.Time,
	zone string,
	capacityWeightKg float64,
	capacityVolumeM3 float64,
	refrigerated bool,
	status RouteStatus,
	stops []*Stop,
) (*Route, error) {
	route, err := NewRoute(id, vehicleID, date, zone, capacityWeightKg, capacityVolumeM3, refrigerated)
	if err != nil {
		return nil, err
	}
	if err := status.Validate(); err != nil {
		return nil, err
	}
	for _, stop := range stops {
		if err := stop.Validate(); err != nil {
			return nil, err
		}
	}

	route.status = status
	route.stops = stops
	return route, nil
}

// Validate ensures the Route was created through a constructor.
func (r *Route) Validate() error {
	if r == nil {
		return ErrRouteIsNotConstructed
	}
	return r.guard.Validate(ErrRouteIsNotConstructed)
}

func (r *Route) ID() kernel.UUID           { return r.id }
func (r *Route) VehicleID() kernel.UUID    { return r.vehicleID }
func (r *Route) Date() time.Time           { return r.date }
func (r *Route) Zone() string              { return r.zone }
func (r *Route) CapacityWeightKg() float64 { return r.capacityWeightKg }
func (r *Route) CapacityVolumeM3() float64 { return r.capacityVolumeM3 }
func (r *Route) Refrigerated() bool        { return r.refrigerated }
func (r *Route) Status() RouteStatus       { return r.status }
func (r *Route) Stops() []*Stop            { return r.stops }

// LoadedWeightKg returns the weight committed to the route so far.
func (r *Route) LoadedWeightKg() float64 {
	total := 0.0
	for _, stop := range r.stops {
		total += stop.weightKg
	}
	return total
}

// LoadedVolumeM3 returns the volume committed to the route so far.
func (r *Route) LoadedVolumeM3() float64 {
	total := 0.0
	for _, stop := range r.stops {
		total += stop.volumeM3
	}
	return total
}

// CanAccommodate reports whether the route has room for a load of the given
// size. Refrigerated loads need a refrigerated vehicle.
func (r *Route) CanAccommodate(weightKg, volumeM3 float64, refrigerated bool) bool {
	if r.status != RouteStatusPlanning {
		return false
	}
	if len(r.stops) >= MaxStopsPerRoute {
		return false
	}
	if refrigerated && !r.refrigerated {
		return false
	}
	if r.LoadedWeightKg()+weightKg > r.capacityWeightKg {
		return false
	}
	if r.LoadedVolumeM3()+volumeM3 > r.capacityVolumeM3 {
		return false
	}
	return true
}

// LastLocation returns the location of the final stop, or nil for an empty
// route. Route planning appends each new stop closest to this point.
func (r *Route) LastLocation() *kernel.GeoPoint {
	if len(r.stops) == 0 {
		return nil
	}
	location := r.stops[len(r.stops)-1].location
	return &location
}

// AddStop appends a stop to the end of the route, assigning its sequence.
func (r *Route) AddStop(stop *Stop) error {
	if err := stop.Validate(); err != nil {
		return err
	}
	if r.status != RouteStatusPlanning {
		return ErrRouteIsDispatched
	}
	if !r.CanAccommodate(stop.weightKg, stop.volumeM3, stop.refrigerated) {
		return ErrRouteCapacityExceeded
	}

	stop.sequence = len(r.stops) + 1
	r.stops = append(r.stops, stop)
	return nil
}

// RemoveStop drops a stop and closes the gap in the sequence.
func (r *Route) RemoveStop(stopID kernel.UUID) error {
	if r.status != RouteStatusPlanning {
		return ErrRouteIsDispatched
	}

	for i, stop := range r.stops {
		if stop.id.IsEqual(stopID) {
			r.stops = append(r.stops[:i], r.stops[i+1:]...)
			for j := i; j < len(r.stops); j++ {
				r.stops[j].sequence = j + 1
			}
			return nil
		}
	}
	return errs.NewObjectNotFoundError("stop", stopID)
}

// UpdateStopLoad replaces a stop's load after the order behind it changed.
// The route must still be in planning and the new load must fit the vehicle
// once the stop's old load is taken off.
func (r *Route) UpdateStopLoad(stopID kernel.UUID, packages int, weightKg, volumeM3 float64) error {
	if r.status != RouteStatusPlanning {
		return ErrRouteIsDispatched
	}

	for _, stop := range r.stops {
		if !stop.id.IsEqual(stopID) {
			continue
		}
		if r.LoadedWeightKg()-stop.weightKg+weightKg > r.capacityWeightKg {
			return ErrRouteCapacityExceeded
		}
		if r.LoadedVolumeM3()-stop.volumeM3+volumeM3 > r.capacityVolumeM3 {
			return ErrRouteCapacityExceeded
		}
		stop.packages = packages
		stop.weightKg = weightKg
		stop.volumeM3 = volumeM3
		return nil
	}
	return errs.NewObjectNotFoundError("stop", stopID)
}

// Resequence applies a new visiting order. The given stops must be exactly
// the route's current stops; only their order changes.
func (r *Route) Resequence(ordered []*Stop) error {
	if r.status != RouteStatusPlanning {
		return ErrRouteIsDispatched
	}
	if len(ordered) != len(r.stops) {
		return errs.NewValueIsInvalidError("ordered stops")
	}

	current := make(map[kernel.UUID]bool, len(r.stops))
	for _, stop := range r.stops {
		current[stop.id] = true
	}
	for _, stop := range ordered {
		if err := stop.Validate(); err != nil {
			return err
		}
		if !current[stop.id] {
			return errs.NewObjectNotFoundError("stop", stop.id)
		}
		delete(current, stop.id)
	}

	for i, stop := range ordered {
		stop.sequence = i + 1
	}
	r.stops = ordered
	return nil
}

// Dispatch closes the route for planning once the vehicle leaves.
func (r *Route) Dispatch() error {
	if r.status != RouteStatusPlanning {
		return ErrRouteIsDispatched
	}
	r.status = RouteStatusDispatched
	return nil
}

// Complete marks the route as finished for the day.
func (r *Route) Complete() error {
	if r.status != RouteStatusDispatched {
		return fmt.Errorf("route is not dispatched: status is %s", r.status)
	}
	r.status = RouteStatusCompleted
	return nil
}

func (r *Route) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	r.id = id
	return nil
}

func (r *Route) setVehicleID(vehicleID kernel.UUID) error {
	if err := vehicleID.Validate(); err != nil {
		return err
	}
	r.vehicleID = vehicleID
	return nil
}

func (r *Route) setCapacity(weightKg, volumeM3 float64) error {
	if weightKg <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("capacity weight",
			fmt.Errorf("%f is not greater than 0", weightKg))
	}
	if volumeM3 <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("capacity volume",
			fmt.Errorf("%f is not greater than 0", volumeM3))
	}
	r.capacityWeightKg = weightKg
	r.capacityVolumeM3 = volumeM3
	return nil
}

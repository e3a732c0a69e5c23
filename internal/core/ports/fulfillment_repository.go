package ports

import (
	"context"
	"time"

	"marketplace/internal/core/domain/model/fulfillment"
	"marketplace/internal/core/domain/model/kernel"
)

// FulfillmentRepository defines the persistence contract for pickup bookings
// and delivery routes.
type FulfillmentRepository interface {
	// AddBooking persists a new pickup booking.
	AddBooking(ctx context.Context, booking *fulfillment.Booking) error

	// UpdateBooking persists a booking state change.
	UpdateBooking(ctx context.Context, booking *fulfillment.Booking) error

	// GetBooking retrieves a booking by its unique identifier.
	GetBooking(ctx context.Context, id kernel.UUID) (*fulfillment.Booking, error)

	// GetVendorBookingsBetween retrieves the vendor's active bookings
	// overlapping the window. The planner needs the whole calendar slice to
	// find a free slot at that vendor's bays.
	GetVendorBookingsBetween(ctx context.Context, vendorID kernel.UUID, from, to time.Time) ([]*fulfillment.Booking, error)

	// AddRoute persists a new route with its stops.
	AddRoute(ctx context.Context, route *fulfillment.Route) error

	// UpdateRoute persists route and stop changes.
	UpdateRoute(ctx context.Context, route *fulfillment.Route) error

	// GetRoute retrieves a route with its stops by its unique identifier.
	GetRoute(ctx context.Context, id kernel.UUID) (*fulfillment.Route, error)

	// GetRouteByStop retrieves the route carrying the given stop.
	GetRouteByStop(ctx context.Context, stopID kernel.UUID) (*fulfillment.Route, error)

	// GetOpenRoutesByDate retrieves routes still in planning for the given
	// date, locked for update so two assignments cannot overfill a vehicle.
	GetOpenRoutesByDate(ctx context.Context, date time.Time) ([]*fulfillment.Route, error)
}

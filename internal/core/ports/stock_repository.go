package ports

import (
	"context"
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/stock"
)

// StockRepository defines the persistence contract for stock levels and
// reservations.
//
// ReserveQuantity and ReturnQuantity are the two sides of the atomic stock
// ledger: the first decrements availability only when enough remains, the
// second gives it back on release or expiry.
type StockRepository interface {
	// ReserveQuantity atomically decrements a product's available quantity.
	// Fails without changing anything when less than the requested quantity
	// is available.
	ReserveQuantity(ctx context.Context, productID kernel.UUID, quantity int) error

	// ReturnQuantity atomically increments a product's available quantity.
	ReturnQuantity(ctx context.Context, productID kernel.UUID, quantity int) error

	// AddReservation persists a new reservation.
	AddReservation(ctx context.Context, reservation *stock.Reservation) error

	// UpdateReservation persists a reservation state change.
	UpdateReservation(ctx context.Context, reservation *stock.Reservation) error

	// GetReservationsByOrder retrieves all reservations for an order.
	GetReservationsByOrder(ctx context.Context, orderID kernel.UUID) ([]*stock.Reservation, error)

	// GetExpiredReservations retrieves active reservations whose expiry
	// passed, up to the given limit. Used by the sweep job.
	GetExpiredReservations(ctx context.Context, now time.Time, limit int) ([]*stock.Reservation, error)

	// AddBackorder records demand that could not be reserved so the vendor
	// can restock against it.
	AddBackorder(ctx context.Context, backorder *stock.Backorder) error
}

package ports

import (
	"context"
	"time"

	"marketplace/internal/core/domain/model/fulfillment"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
)

// PaymentResult reports the outcome of a successful charge. Deferred means
// the buyer pays on credit terms; Reference identifies the charge or the
// invoice to collect.
type PaymentResult struct {
	Reference string
	Deferred  bool
}

// PaymentGateway charges buyers for orders. Implementations fall back to
// credit terms when the buyer is approved for them and the charge declines.
type PaymentGateway interface {
	Charge(ctx context.Context, buyerID, orderID kernel.UUID, amount kernel.Money) (PaymentResult, error)

	// Refund returns a captured charge when an order is cancelled.
	Refund(ctx context.Context, orderID kernel.UUID, reference string, amount kernel.Money) error
}

// Notifier publishes order lifecycle events for interested consumers
// (buyer-facing notifications, vendor dashboards, back office).
type Notifier interface {
	// NotifyOrderCreated announces a new order from a checkout.
	NotifyOrderCreated(ctx context.Context, aggregate *order.Order) error

	// NotifyStatusChanged announces a status transition and who triggered it.
	NotifyStatusChanged(ctx context.Context, aggregate *order.Order, from order.Status, actorID kernel.UUID) error

	// NotifyHighValueOrder alerts the back office about an order above the
	// review threshold.
	NotifyHighValueOrder(ctx context.Context, aggregate *order.Order) error

	// RequestRating asks the buyer to rate a delivered order.
	RequestRating(ctx context.Context, aggregate *order.Order) error
}

// RouteOptimizer reorders a route's stops to shorten the driving distance.
// The in-process implementation runs a nearest neighbour pass.
type RouteOptimizer interface {
	Optimize(ctx context.Context, depot kernel.GeoPoint, stops []*fulfillment.Stop) ([]*fulfillment.Stop, error)
}

// DocumentKind selects which piece of paperwork to render.
type DocumentKind string

const (
	DocumentInvoice       DocumentKind = "invoice"
	DocumentPickingList   DocumentKind = "picking_list"
	DocumentPackingSlip   DocumentKind = "packing_slip"
	DocumentShippingLabel DocumentKind = "shipping_label"
)

// DocumentGenerator produces the paperwork attached to fulfillment events.
type DocumentGenerator interface {
	// Generate renders the document of the given kind for the order.
	Generate(ctx context.Context, kind DocumentKind, aggregate *order.Order) ([]byte, error)

	// GeneratePickupSheet renders the bay sheet handed to warehouse staff.
	GeneratePickupSheet(ctx context.Context, aggregate *order.Order, booking *fulfillment.Booking) ([]byte, error)
}

// PreparationTimer tracks how long an order has been in preparation so the
// vendor dashboard can surface overdue ones.
type PreparationTimer interface {
	// StartPreparation records when preparation began and its expected span.
	StartPreparation(ctx context.Context, orderID kernel.UUID, expected time.Duration) error

	// ClearPreparation removes the timer once the order moves on.
	ClearPreparation(ctx context.Context, orderID kernel.UUID) error
}

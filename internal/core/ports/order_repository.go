package ports

import (
	"context"
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates,
// including their line items.
type OrderRepository interface {
	// Add persists a new order aggregate with its items.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists changes to an existing order aggregate.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order aggregate by its unique identifier.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetByNumber retrieves an order by its human-facing order number.
	GetByNumber(ctx context.Context, orderNumber string) (*order.Order, error)

	// GetAllByCart retrieves every order produced by one cart checkout.
	GetAllByCart(ctx context.Context, cartID kernel.UUID) ([]*order.Order, error)

	// ExistsForBuyerAndVendor reports whether the buyer has ordered from the
	// vendor before. A first order triggers the approval workflow.
	ExistsForBuyerAndVendor(ctx context.Context, buyerID, vendorID kernel.UUID) (bool, error)

	// GetDeliveredBefore retrieves orders delivered before the cutoff that
	// have not yet been completed or cancelled.
	GetDeliveredBefore(ctx context.Context, cutoff time.Time) ([]*order.Order, error)

	// TrailingSpend sums what the buyer has spent with the vendor since the
	// given time, excluding cancelled orders. Pricing uses it to select the
	// volume discount tier.
	TrailingSpend(ctx context.Context, buyerID, vendorID kernel.UUID, since time.Time) (kernel.Money, error)
}

package ports

import (
	"context"
	"errors"

	"marketplace/internal/core/domain/model/kernel"
)

// ErrCartAlreadyCheckedOut is returned when reading or closing a cart that
// already produced orders.
var ErrCartAlreadyCheckedOut = errors.New("cart is already checked out")

// CartLine is one product in a buyer's cart, joined with the catalog data
// checkout needs to snapshot.
type CartLine struct {
	ProductID          kernel.UUID
	VendorID           kernel.UUID
	ProductName        string
	ProductSKU         string
	Quantity           int
	MinOrderQuantity   int
	UnitPriceCents     int64
	OriginalPriceCents int64
	UnitWeightKg       float64
	UnitVolumeM3       float64
	Refrigerated       bool
}

// Cart is the read model checkout consumes. The cart itself is owned by the
// storefront; order processing only reads it and marks it checked out.
type Cart struct {
	ID      kernel.UUID
	BuyerID kernel.UUID
	Lines   []CartLine
}

// LinesByVendor groups the cart's lines per vendor, the unit a checkout
// splits into orders.
func (c *Cart) LinesByVendor() map[kernel.UUID][]CartLine {
	groups := make(map[kernel.UUID][]CartLine)
	for _, line := range c.Lines {
		groups[line.VendorID] = append(groups[line.VendorID], line)
	}
	return groups
}

// CartRepository defines the read contract for carts during checkout.
type CartRepository interface {
	// Get retrieves a cart with its lines joined to catalog data.
	Get(ctx context.Context, id kernel.UUID) (*Cart, error)

	// MarkCheckedOut closes the cart once orders are created from it.
	MarkCheckedOut(ctx context.Context, id kernel.UUID) error
}
